package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/disintegration/imaging"
)

// OverlayResult contains an annotated copy of a frame as base64 PNG.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// DrawPolygon returns a copy of img with the closed polygon through pts drawn
// in c. Each vertex gets a small marker labelled with its index, which makes
// the corner order of a detected card visible at a glance.
func DrawPolygon(img image.Image, pts []image.Point, c color.Color) *image.NRGBA {
	out := imaging.Clone(img)
	if len(pts) == 0 {
		return out
	}

	for i := range pts {
		a := pts[i]
		b := pts[(i+1)%len(pts)]
		drawLine(out, a.X, a.Y, b.X, b.Y, c)
	}

	fg := color.NRGBA{255, 255, 255, 255}
	bg := color.NRGBA{0, 0, 0, 180}
	for i, p := range pts {
		for dy := -2; dy <= 2; dy++ {
			for dx := -2; dx <= 2; dx++ {
				setClipped(out, p.X+dx, p.Y+dy, c)
			}
		}
		drawLabel(out, p.X+4, p.Y+4, fmt.Sprintf("%d", i), fg, bg)
	}
	return out
}

// PolygonOverlay draws pts on img and encodes the result as base64 PNG.
//
// hexColor accepts "#rrggbb" or "#rgb"; an invalid value falls back to red.
func PolygonOverlay(img image.Image, pts []image.Point, hexColor string) (*OverlayResult, error) {
	var c color.Color = color.NRGBA{255, 0, 0, 255}
	if parsed, err := ParseHexColor(hexColor); err == nil {
		c = parsed
	}

	out := DrawPolygon(img, pts, c)

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &OverlayResult{
		Width:       out.Rect.Dx(),
		Height:      out.Rect.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// drawLine rasterizes a segment with Bresenham's algorithm.
func drawLine(img *image.NRGBA, x0, y0, x1, y1 int, c color.Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy

	for {
		setClipped(img, x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func setClipped(img *image.NRGBA, x, y int, c color.Color) {
	if image.Pt(x, y).In(img.Rect) {
		img.Set(x, y, c)
	}
}

// drawLabel draws a digit label with a 3x5 pixel font.
func drawLabel(img *image.NRGBA, x, y int, text string, fg, bg color.NRGBA) {
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
	}

	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			setClipped(img, x+dx, y+dy, bg)
		}
	}

	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel == '1' {
					setClipped(img, cx+col, y+row, fg)
				}
			}
		}
		cx += charWidth
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
