package detection

import (
	"image"
)

// Contour is one border traced from an edge map.
//
// Contours are stored in a flat arena; Parent is an index into that arena or
// -1 for a top-level contour.
type Contour struct {
	// Points are the border vertices after chain compression. Runs of pixels
	// in the same direction collapse to their end points.
	Points []Point `json:"points"`

	// Area is the absolute area enclosed by Points.
	Area float64 `json:"area"`

	// IsHole marks an inner border, the boundary of a background region
	// enclosed by edge pixels.
	IsHole bool `json:"is_hole"`

	// Parent is the index of the enclosing contour, or -1.
	Parent int `json:"parent"`
}

// TopLevel reports whether c is an outer border with no enclosing contour.
func (c Contour) TopLevel() bool {
	return !c.IsHole && c.Parent < 0
}

// neighbourhood directions, counter-clockwise on screen starting east.
var (
	dirX = [8]int{1, 1, 0, -1, -1, -1, 0, 1}
	dirY = [8]int{0, -1, -1, -1, 0, 1, 1, 1}
)

// FindContours traces all borders of the nonzero pixels in edges using the
// Suzuki-Abe border following algorithm.
//
// Every outer border and every hole border is returned, in the order their
// first pixel is met in a raster scan. Nesting is recorded through Parent.
// Points are compressed: only pixels where the chain direction changes are
// kept, so a straight edge contributes just its end points.
//
// The edge map is copied into a zero-padded label grid; edges is not
// modified.
func FindContours(edges *image.Gray) []Contour {
	width := edges.Rect.Dx()
	height := edges.Rect.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	t := newTracer(edges)

	// Border number 1 is the image frame. Border n > 1 is contours[n-2].
	contours := make([]Contour, 0)
	nbd := int32(1)

	for y := 1; y <= height; y++ {
		lnbd := int32(1)
		for x := 1; x <= width; x++ {
			p := y*t.stride + x
			v := t.grid[p]
			if v == 0 {
				continue
			}

			var from int
			var hole bool
			switch {
			case v == 1 && t.grid[p-1] == 0:
				from = 4 // west
			case v >= 1 && t.grid[p+1] == 0:
				from = 0 // east
				hole = true
				if v > 1 {
					lnbd = v
				}
			default:
				if v != 1 {
					lnbd = abs32(v)
				}
				continue
			}

			nbd++

			// Parent follows from the border last met on this row: a border of
			// the same kind is a sibling, a border of the other kind encloses.
			parent := -1
			if lnbd > 1 {
				last := int(lnbd) - 2
				if hole == contours[last].IsHole {
					parent = contours[last].Parent
				} else {
					parent = last
				}
			}

			pts := t.follow(p, from, nbd)
			contours = append(contours, Contour{
				Points: pts,
				Area:   ContourArea(pts),
				IsHole: hole,
				Parent: parent,
			})

			if t.grid[p] != 1 {
				lnbd = abs32(t.grid[p])
			}
		}
	}

	return contours
}

// tracer holds the label grid used while following borders. Pixel values
// are 0 (background), 1 (unvisited edge) or a signed border number.
type tracer struct {
	grid   []int32
	stride int
	offset [8]int
}

func newTracer(edges *image.Gray) *tracer {
	width := edges.Rect.Dx()
	height := edges.Rect.Dy()
	stride := width + 2

	grid := make([]int32, stride*(height+2))
	for y := 0; y < height; y++ {
		row := edges.Pix[y*edges.Stride : y*edges.Stride+width]
		for x, v := range row {
			if v != 0 {
				grid[(y+1)*stride+x+1] = 1
			}
		}
	}

	t := &tracer{grid: grid, stride: stride}
	for d := 0; d < 8; d++ {
		t.offset[d] = dirY[d]*stride + dirX[d]
	}
	return t
}

// follow traces the border starting at grid index start. from is the
// direction of the background pixel that triggered the border.
func (t *tracer) follow(start, from int, nbd int32) []Point {
	// Find the first nonzero neighbour clockwise from the trigger pixel.
	s := from
	for {
		s = (s - 1) & 7
		if t.grid[start+t.offset[s]] != 0 || s == from {
			break
		}
	}
	if s == from {
		t.grid[start] = -nbd
		return []Point{t.point(start)}
	}

	first := start + t.offset[s]
	cur := start
	prev := s ^ 4
	pts := make([]Point, 0, 16)

	for {
		// Search counter-clockwise, starting just after the pixel we came from.
		var next int
		for {
			s++
			next = cur + t.offset[s&7]
			if t.grid[next] != 0 {
				break
			}
		}
		eastExamined := s > 8
		s &= 7

		if eastExamined {
			t.grid[cur] = -nbd
		} else if t.grid[cur] == 1 {
			t.grid[cur] = nbd
		}

		if s != prev {
			pts = append(pts, t.point(cur))
			prev = s
		}

		if next == start && cur == first {
			break
		}
		cur = next
		s = (s + 4) & 7
	}

	return pts
}

func (t *tracer) point(i int) Point {
	return Point{X: float64(i%t.stride - 1), Y: float64(i/t.stride - 1)}
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
