package detection

import (
	"fmt"
	"image"
	"math"
	"sort"
)

// Point is a 2D coordinate in frame-pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// ImagePoint rounds p to the nearest pixel.
func (p Point) ImagePoint() image.Point {
	return image.Pt(int(math.Round(p.X)), int(math.Round(p.Y)))
}

func (p Point) String() string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Quad is a quadrilateral in canonical order: clockwise on screen, starting
// at the corner nearest the origin. For an upright card that is top-left,
// top-right, bottom-right, bottom-left.
type Quad [4]Point

// Top returns the length of the first edge, p0 to p1.
func (q Quad) Top() float64 {
	return Distance(q[0], q[1])
}

// Side returns the length of the closing edge, p0 to p3.
func (q Quad) Side() float64 {
	return Distance(q[0], q[3])
}

// Area returns the enclosed area.
func (q Quad) Area() float64 {
	return ContourArea(q[:])
}

// ImagePoints returns the corners rounded to pixels, in order.
func (q Quad) ImagePoints() []image.Point {
	out := make([]image.Point, len(q))
	for i, p := range q {
		out[i] = p.ImagePoint()
	}
	return out
}

// OrderCorners rotates the cyclic sequence pts so that the point nearest
// (0,0) comes first. The input winding is kept; when two points are equally
// near, the earlier one wins.
//
// Callers pass the points already wound clockwise on screen. OrderCorners
// never re-sorts them.
func OrderCorners(pts [4]Point) Quad {
	first := 0
	best := math.Inf(1)
	origin := Point{}
	for i, p := range pts {
		if d := Distance(p, origin); d < best {
			first, best = i, d
		}
	}

	var q Quad
	for i := range q {
		q[i] = pts[(first+i)%4]
	}
	return q
}

// OrderCornersByAngle sorts pts clockwise on screen by their angle around
// the centroid, then rotates the result like OrderCorners. Unlike
// OrderCorners it accepts the points in any order.
func OrderCornersByAngle(pts [4]Point) Quad {
	var cx, cy float64
	for _, p := range pts {
		cx += p.X
		cy += p.Y
	}
	cx /= 4
	cy /= 4

	sorted := pts
	// atan2 with Y down increases clockwise on screen.
	sort.SliceStable(sorted[:], func(i, j int) bool {
		return math.Atan2(sorted[i].Y-cy, sorted[i].X-cx) < math.Atan2(sorted[j].Y-cy, sorted[j].X-cx)
	})
	return OrderCorners(sorted)
}
