package imaging

import (
	"errors"
	"fmt"
	"image"
)

// ErrSizeMismatch is returned when two frames passed to Delta differ in size.
var ErrSizeMismatch = errors.New("frames differ in size")

// Delta measures how much the scene changed between two frames.
//
// It returns the mean squared difference of 8-bit intensities:
//
//	sum((last[i] - current[i])^2) / (width * height)
//
// The result is exactly 0 for pixel-identical frames and symmetric in its
// arguments. Callers compare it against a threshold to decide whether the
// scene is stable enough to capture.
//
// # Errors
//
//   - Returns ErrSizeMismatch (wrapped) if the frames differ in size
func Delta(last, current image.Image) (float64, error) {
	lb, cb := last.Bounds(), current.Bounds()
	if lb.Dx() != cb.Dx() || lb.Dy() != cb.Dy() {
		return 0, fmt.Errorf("%w: %dx%d vs %dx%d", ErrSizeMismatch, lb.Dx(), lb.Dy(), cb.Dx(), cb.Dy())
	}

	width, height := lb.Dx(), lb.Dy()
	if width == 0 || height == 0 {
		return 0, nil
	}

	a := Luma(last)
	b := Luma(current)

	var sum int64
	for y := 0; y < height; y++ {
		rowA := a.Pix[y*a.Stride : y*a.Stride+width]
		rowB := b.Pix[y*b.Stride : y*b.Stride+width]
		for x := range rowA {
			d := int64(rowA[x]) - int64(rowB[x])
			sum += d * d
		}
	}

	return float64(sum) / float64(width*height), nil
}
