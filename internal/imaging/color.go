package imaging

import (
	"fmt"
	"image"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorResult contains a color value in several representations.
type ColorResult struct {
	Hex string   `json:"hex"` // Hex format "#rrggbb"
	RGB RGBColor `json:"rgb"` // RGB components
	HSL HSLColor `json:"hsl"` // HSL representation
}

// NewColorResult describes c in hex, RGB and HSL form.
func NewColorResult(c colorful.Color) ColorResult {
	c = c.Clamped()
	r, g, b := c.RGB255()
	h, s, l := c.Hsl()
	return ColorResult{
		Hex: c.Hex(),
		RGB: RGBColor{R: r, G: g, B: b},
		HSL: HSLColor{H: int(h), S: int(s * 100), L: int(l * 100)},
	}
}

// SampleColor returns the color of the pixel at (x, y).
//
// # Errors
//
//   - Returns error if (x, y) lies outside the image bounds
func SampleColor(img image.Image, x, y int) (*ColorResult, error) {
	bounds := img.Bounds()
	if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}

	c, _ := colorful.MakeColor(img.At(x, y))
	res := NewColorResult(c)
	return &res, nil
}

// MeanColor averages every pixel of img in linear RGB.
//
// Averaging in linear space rather than on gamma-encoded sRGB values gives
// the perceived average colour of the card face, which is what the scan
// output reports. An empty image yields black.
func MeanColor(img image.Image) colorful.Color {
	bounds := img.Bounds()
	n := bounds.Dx() * bounds.Dy()
	if n == 0 {
		return colorful.Color{}
	}

	var sr, sg, sb float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c, _ := colorful.MakeColor(img.At(x, y))
			r, g, b := c.LinearRgb()
			sr += r
			sg += g
			sb += b
		}
	}

	fn := float64(n)
	return colorful.LinearRgb(sr/fn, sg/fn, sb/fn)
}

// ColorDistance returns the CIE76 distance between two colours in Lab space.
// Values below roughly 0.1 are hard to tell apart.
func ColorDistance(a, b colorful.Color) float64 {
	return a.DistanceLab(b)
}

// ParseHexColor parses "#rrggbb" or "#rgb".
func ParseHexColor(s string) (colorful.Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return c, nil
}
