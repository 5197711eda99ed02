package rectify

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/ironsheep/magicscan/internal/detection"
)

// Default output size of a rectified card, in pixels.
const (
	DefaultWidth  = 233
	DefaultHeight = 310
)

// Target returns the corners of a width x height output image in canonical
// order.
func Target(width, height int) detection.Quad {
	w, h := float64(width), float64(height)
	return detection.Quad{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}
}

// Rectify maps the quadrilateral q of img onto a new width x height image.
//
// q's corners land on (0,0), (width,0), (width,height) and (0,height) in that
// order. Each output pixel is sampled from img with bilinear interpolation;
// pixels whose preimage lies outside img are opaque black. q is given in
// img's coordinate space.
//
// # Errors
//
//   - Returns an error if width or height is not positive
//   - Returns ErrDegenerate (wrapped) if q does not define a projective map
func Rectify(img image.Image, q detection.Quad, width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", width, height)
	}

	// Inverse mapping: output pixel -> source point.
	h, err := PerspectiveTransform(Target(width, height), q)
	if err != nil {
		return nil, fmt.Errorf("failed to compute perspective transform: %w", err)
	}

	return Warp(img, h, width, height), nil
}

// Warp fills a width x height image by sampling img at h(x, y) for every
// output pixel (x, y).
func Warp(img image.Image, h Homography, width, height int) *image.NRGBA {
	min := img.Bounds().Min
	src := imaging.Clone(img)
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+width*4]
		for x := 0; x < width; x++ {
			sx, sy := h.Apply(float64(x), float64(y))
			sample(src, sx-float64(min.X), sy-float64(min.Y), row[x*4:x*4+4])
		}
	}
	return dst
}

// edgeTolerance absorbs rounding in the homography solve so that points on
// the last row or column are not treated as outside.
const edgeTolerance = 1e-6

// sample writes the bilinear interpolation of src at (sx, sy) into px.
func sample(src *image.NRGBA, sx, sy float64, px []uint8) {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	maxX, maxY := float64(w-1), float64(h-1)
	if math.IsNaN(sx) || math.IsNaN(sy) ||
		sx < -edgeTolerance || sy < -edgeTolerance ||
		sx > maxX+edgeTolerance || sy > maxY+edgeTolerance {
		px[0], px[1], px[2], px[3] = 0, 0, 0, 255
		return
	}
	sx = math.Max(0, math.Min(sx, maxX))
	sy = math.Max(0, math.Min(sy, maxY))

	x0 := int(sx)
	y0 := int(sy)
	fx := sx - float64(x0)
	fy := sy - float64(y0)
	x1 := x0 + 1
	if x1 > w-1 {
		x1 = w - 1
	}
	y1 := y0 + 1
	if y1 > h-1 {
		y1 = h - 1
	}

	p00 := src.Pix[y0*src.Stride+x0*4:]
	p10 := src.Pix[y0*src.Stride+x1*4:]
	p01 := src.Pix[y1*src.Stride+x0*4:]
	p11 := src.Pix[y1*src.Stride+x1*4:]

	for c := 0; c < 4; c++ {
		top := float64(p00[c])*(1-fx) + float64(p10[c])*fx
		bottom := float64(p01[c])*(1-fx) + float64(p11[c])*fx
		v := top*(1-fy) + bottom*fy
		px[c] = uint8(math.Min(255, math.Round(v)))
	}
}
