package imaging

import (
	"encoding/base64"
	"image"
	"image/color"
	"testing"
)

func TestDrawPolygon(t *testing.T) {
	img := createInMemoryImage(50, 50, color.Black)
	pts := []image.Point{{10, 10}, {40, 10}, {40, 40}, {10, 40}}
	red := color.NRGBA{255, 0, 0, 255}

	out := DrawPolygon(img, pts, red)

	if got := out.NRGBAAt(25, 10); got != red {
		t.Errorf("top edge pixel: got %v, want red", got)
	}
	if got := out.NRGBAAt(40, 25); got != red {
		t.Errorf("right edge pixel: got %v, want red", got)
	}
	if got := out.NRGBAAt(25, 25); got != (color.NRGBA{0, 0, 0, 255}) {
		t.Errorf("interior pixel changed: got %v", got)
	}

	// Source untouched
	r, _, _, _ := img.At(25, 10).RGBA()
	if r != 0 {
		t.Error("DrawPolygon modified its input")
	}
}

func TestDrawPolygon_Clipped(t *testing.T) {
	img := createInMemoryImage(20, 20, color.White)
	// Vertices off-canvas must not panic.
	DrawPolygon(img, []image.Point{{-10, -10}, {30, -5}, {30, 30}}, color.Black)
}

func TestPolygonOverlay(t *testing.T) {
	img := createInMemoryImage(30, 20, color.White)
	res, err := PolygonOverlay(img, []image.Point{{2, 2}, {27, 2}, {27, 17}, {2, 17}}, "not-a-color")
	if err != nil {
		t.Fatalf("PolygonOverlay failed: %v", err)
	}
	if res.Width != 30 || res.Height != 20 {
		t.Errorf("dimensions: got %dx%d, want 30x20", res.Width, res.Height)
	}
	if _, err := base64.StdEncoding.DecodeString(res.ImageBase64); err != nil {
		t.Errorf("invalid base64: %v", err)
	}
}
