package frame

import (
	"image"
	"time"

	"github.com/disintegration/imaging"
)

// Frame is a single captured image plus ordering metadata.
type Frame struct {
	// Image holds the pixels. It is either *image.NRGBA or *image.Gray and
	// its bounds always start at (0,0).
	Image image.Image

	// Seq is a monotonically increasing sequence number assigned by the source.
	Seq uint64

	// Timestamp records when the frame was captured. Used for ordering only.
	Timestamp time.Time
}

// New wraps img in a Frame.
//
// Images that are not already *image.NRGBA or *image.Gray anchored at the
// origin are copied into a fresh *image.NRGBA, so the returned frame never
// aliases a caller-owned buffer of an unexpected type.
func New(img image.Image, seq uint64, ts time.Time) *Frame {
	return &Frame{
		Image:     normalize(img),
		Seq:       seq,
		Timestamp: ts,
	}
}

func normalize(img image.Image) image.Image {
	switch m := img.(type) {
	case *image.NRGBA:
		if m.Rect.Min == (image.Point{}) {
			return m
		}
	case *image.Gray:
		if m.Rect.Min == (image.Point{}) {
			return m
		}
	}
	return imaging.Clone(img)
}

// Width returns the frame width in pixels.
func (f *Frame) Width() int { return f.Image.Bounds().Dx() }

// Height returns the frame height in pixels.
func (f *Frame) Height() int { return f.Image.Bounds().Dy() }

// Channels returns the channel depth: 1 for grayscale frames, 4 for NRGBA.
func (f *Frame) Channels() int {
	if _, ok := f.Image.(*image.Gray); ok {
		return 1
	}
	return 4
}

// SameSize reports whether two frames have identical dimensions.
func (f *Frame) SameSize(other *Frame) bool {
	return f.Width() == other.Width() && f.Height() == other.Height()
}
