package frame

import (
	"image"
	"image/color"
	"testing"
	"time"
)

func TestNew_KeepsNRGBA(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 5))
	f := New(img, 1, time.Unix(0, 0))

	if f.Image != img {
		t.Error("New copied an origin-anchored NRGBA image")
	}
	if f.Width() != 10 || f.Height() != 5 {
		t.Errorf("dimensions: got %dx%d, want 10x5", f.Width(), f.Height())
	}
	if f.Channels() != 4 {
		t.Errorf("Channels: got %d, want 4", f.Channels())
	}
}

func TestNew_KeepsGray(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	f := New(img, 1, time.Time{})

	if f.Image != img {
		t.Error("New copied an origin-anchored Gray image")
	}
	if f.Channels() != 1 {
		t.Errorf("Channels: got %d, want 1", f.Channels())
	}
}

func TestNew_NormalizesOtherTypes(t *testing.T) {
	tests := []struct {
		name string
		img  image.Image
	}{
		{"rgba", image.NewRGBA(image.Rect(0, 0, 8, 6))},
		{"offset nrgba", image.NewNRGBA(image.Rect(3, 4, 11, 10))},
		{"ycbcr", image.NewYCbCr(image.Rect(0, 0, 8, 6), image.YCbCrSubsampleRatio420)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(tt.img, 7, time.Time{})
			nrgba, ok := f.Image.(*image.NRGBA)
			if !ok {
				t.Fatalf("Image type: got %T, want *image.NRGBA", f.Image)
			}
			if nrgba.Rect.Min != (image.Point{}) {
				t.Errorf("bounds not anchored at origin: %v", nrgba.Rect)
			}
			if f.Width() != 8 || f.Height() != 6 {
				t.Errorf("dimensions: got %dx%d, want 8x6", f.Width(), f.Height())
			}
			if f.Seq != 7 {
				t.Errorf("Seq: got %d, want 7", f.Seq)
			}
		})
	}
}

func TestNew_PreservesPixels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(1, 1, color.RGBA{10, 20, 30, 255})

	f := New(img, 1, time.Time{})
	got := f.Image.(*image.NRGBA).NRGBAAt(1, 1)
	if got != (color.NRGBA{10, 20, 30, 255}) {
		t.Errorf("pixel: got %v, want {10 20 30 255}", got)
	}
}

func TestFrame_SameSize(t *testing.T) {
	a := New(image.NewGray(image.Rect(0, 0, 5, 5)), 1, time.Time{})
	b := New(image.NewNRGBA(image.Rect(0, 0, 5, 5)), 2, time.Time{})
	c := New(image.NewNRGBA(image.Rect(0, 0, 5, 6)), 3, time.Time{})

	if !a.SameSize(b) {
		t.Error("5x5 frames should match")
	}
	if a.SameSize(c) {
		t.Error("5x5 and 5x6 frames should not match")
	}
}
