package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
)

// DefaultCannyThreshold is the single threshold fed to both hysteresis bounds
// when no explicit pair is configured.
const DefaultCannyThreshold = 100

// EdgeOptions configures the Canny edge extractor.
type EdgeOptions struct {
	// Low is the hysteresis lower bound. Pixels whose gradient magnitude is
	// at or below Low are never edges.
	Low float64

	// High is the hysteresis upper bound. Pixels above High are strong edges;
	// pixels between Low and High survive only when connected to a strong edge.
	High float64

	// BlurSigma enables a Gaussian pre-blur when positive. Disabled by default.
	BlurSigma float64
}

// DefaultEdgeOptions returns a single-threshold configuration with blur off.
func DefaultEdgeOptions() EdgeOptions {
	return SingleThreshold(DefaultCannyThreshold)
}

// SingleThreshold returns options using t for both hysteresis bounds.
func SingleThreshold(t float64) EdgeOptions {
	return EdgeOptions{Low: t, High: t}
}

// EdgeMap converts an image to a single-channel edge map using Canny.
//
// The result has the same dimensions as img, anchored at (0,0). Edge pixels
// are 255 and all others 0. The outermost row and column are never edges,
// which keeps every traced contour strictly inside the frame.
//
// # Algorithm
//
//  1. Intensity: ITU-R BT.601 luma (0.299*R + 0.587*G + 0.114*B), 0-255
//  2. Optional Gaussian blur when opts.BlurSigma > 0
//  3. Sobel 3x3 gradients with replicated borders; magnitude is the L1 norm
//     |Gx| + |Gy|, so thresholds are in that scale
//  4. Non-maximum suppression in one of four directions (0°, 45°, 90°, 135°)
//  5. Hysteresis: strong pixels seed a flood fill through weak pixels
//
// EdgeMap is a pure function of img and opts.
func EdgeMap(img image.Image, opts EdgeOptions) *image.Gray {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	result := image.NewGray(image.Rect(0, 0, width, height))
	if width < 3 || height < 3 {
		return result
	}

	gray := intensity(img, opts.BlurSigma)

	// Gradient magnitude and direction components
	mag := make([]float64, width*height)
	gxs := make([]float64, width*height)
	gys := make([]float64, width*height)
	for y := 0; y < height; y++ {
		ym := clamp(y-1, 0, height-1) * width
		y0 := y * width
		yp := clamp(y+1, 0, height-1) * width
		for x := 0; x < width; x++ {
			xm := clamp(x-1, 0, width-1)
			xp := clamp(x+1, 0, width-1)

			gx := (gray[ym+xp] + 2*gray[y0+xp] + gray[yp+xp]) -
				(gray[ym+xm] + 2*gray[y0+xm] + gray[yp+xm])
			gy := (gray[yp+xm] + 2*gray[yp+x] + gray[yp+xp]) -
				(gray[ym+xm] + 2*gray[ym+x] + gray[ym+xp])

			i := y0 + x
			gxs[i] = gx
			gys[i] = gy
			mag[i] = math.Abs(gx) + math.Abs(gy)
		}
	}

	const (
		strong = 2
		weak   = 1
	)
	tan22 := math.Tan(math.Pi / 8)
	tan67 := math.Tan(3 * math.Pi / 8)

	// Non-maximum suppression. Ties are broken toward one side so a symmetric
	// step edge yields a single-pixel line.
	state := make([]uint8, width*height)
	var stack []int
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			i := y*width + x
			m := mag[i]
			if m <= opts.Low {
				continue
			}

			ax := math.Abs(gxs[i])
			ay := math.Abs(gys[i])

			var keep bool
			switch {
			case ay <= ax*tan22:
				keep = m > mag[i-1] && m >= mag[i+1]
			case ay >= ax*tan67:
				keep = m > mag[i-width] && m >= mag[i+width]
			default:
				s := 1
				if (gxs[i] < 0) != (gys[i] < 0) {
					s = -1
				}
				keep = m > mag[i-width-s] && m > mag[i+width+s]
			}
			if !keep {
				continue
			}

			if m > opts.High {
				state[i] = strong
				stack = append(stack, i)
			} else {
				state[i] = weak
			}
		}
	}

	// Hysteresis: promote weak pixels 8-connected to a strong one
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		result.Pix[i] = 255

		x := i % width
		y := i / width
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx, ny := x+dx, y+dy
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				j := ny*width + nx
				if state[j] == weak {
					state[j] = strong
					stack = append(stack, j)
				}
			}
		}
	}

	return result
}

// intensity returns the 8-bit luma of every pixel as float64, row-major.
func intensity(img image.Image, blurSigma float64) []float64 {
	luma := Luma(img)
	if blurSigma > 0 {
		luma = blurGray(luma, blurSigma)
	}

	out := make([]float64, len(luma.Pix))
	w, h := luma.Rect.Dx(), luma.Rect.Dy()
	for y := 0; y < h; y++ {
		row := luma.Pix[y*luma.Stride : y*luma.Stride+w]
		for x, v := range row {
			out[y*w+x] = float64(v)
		}
	}
	return out[:w*h]
}

// Luma converts img to an 8-bit grayscale image anchored at (0,0).
//
// Grayscale inputs are returned as-is when already anchored. Colour inputs go
// through imaging.Grayscale, which applies the BT.601 weights.
func Luma(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Rect.Min == (image.Point{}) {
		return g
	}

	gs := imaging.Grayscale(img)
	w, h := gs.Rect.Dx(), gs.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		src := gs.Pix[y*gs.Stride:]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < w; x++ {
			dst[x] = src[x*4]
		}
	}
	return out
}

// blurGray applies a Gaussian blur. bild takes a radius; 3 sigma covers the
// kernel's significant support.
func blurGray(g *image.Gray, sigma float64) *image.Gray {
	blurred := blur.Gaussian(g, 3*sigma)
	w, h := g.Rect.Dx(), g.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		src := blurred.Pix[y*blurred.Stride:]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < w; x++ {
			dst[x] = src[x*4]
		}
	}
	return out
}

// EdgeDetectResult contains an edge map encoded as base64 PNG.
//
// The image is grayscale: white pixels (255) are edges, black pixels (0) are not.
type EdgeDetectResult struct {
	// Width of the output image in pixels (same as input).
	Width int `json:"width"`

	// Height of the output image in pixels (same as input).
	Height int `json:"height"`

	// EdgePixels is the number of pixels marked as edges.
	EdgePixels int `json:"edge_pixels"`

	// ImageBase64 is the edge image encoded as base64 PNG.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png" for edge detection results.
	MimeType string `json:"mime_type"`
}

// EdgeDetect runs EdgeMap and packages the result for transport.
//
// Parameters:
//   - img: Source image (color or grayscale).
//   - opts: Canny thresholds and optional blur.
//
// Returns:
//   - *EdgeDetectResult: Edge image as base64 PNG plus an edge pixel count.
//   - error: Non-nil if PNG encoding fails.
func EdgeDetect(img image.Image, opts EdgeOptions) (*EdgeDetectResult, error) {
	edges := EdgeMap(img, opts)

	count := 0
	for _, v := range edges.Pix {
		if v != 0 {
			count++
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, edges); err != nil {
		return nil, fmt.Errorf("failed to encode edge image: %w", err)
	}

	return &EdgeDetectResult{
		Width:       edges.Rect.Dx(),
		Height:      edges.Rect.Dy(),
		EdgePixels:  count,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
