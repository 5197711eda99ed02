package detection

import (
	"math"
	"sort"
)

// ContourArea returns the absolute area of the closed polygon pts using the
// shoelace formula. Fewer than three points enclose no area.
func ContourArea(pts []Point) float64 {
	return math.Abs(signedArea(pts))
}

// Clockwise returns pts wound clockwise on screen, reversing the order when
// they run the other way. The first point stays first.
func Clockwise(pts [4]Point) [4]Point {
	if signedArea(pts[:]) < 0 {
		pts[1], pts[3] = pts[3], pts[1]
	}
	return pts
}

// signedArea is positive for polygons that run clockwise on screen.
func signedArea(pts []Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	var sum float64
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return sum / 2
}

// ArcLength returns the perimeter of the closed polygon pts, including the
// segment from the last point back to the first.
func ArcLength(pts []Point) float64 {
	if len(pts) < 2 {
		return 0
	}
	var length float64
	for i, p := range pts {
		length += Distance(p, pts[(i+1)%len(pts)])
	}
	return length
}

// ApproxPoly simplifies the closed polygon pts with the Douglas-Peucker
// algorithm. Every point dropped lies within epsilon of the simplified
// outline.
//
// The ring is split at two points far apart: a few rounds of farthest-point
// search starting from pts[0] settle on a near-diameter pair. Each half is
// simplified as an open polyline, so pts[0] survives only when it is a real
// vertex. The result keeps the input's winding and starts at the split
// point with the lower index.
func ApproxPoly(pts []Point, epsilon float64) []Point {
	n := len(pts)
	if n < 3 {
		return append([]Point(nil), pts...)
	}

	a, b := 0, farthest(pts, 0)
	if a == b {
		return []Point{pts[0]}
	}
	for i := 0; i < 2; i++ {
		a, b = b, farthest(pts, b)
	}
	if a > b {
		a, b = b, a
	}

	ring := make([]Point, 0, n+1)
	ring = append(ring, pts[a:]...)
	ring = append(ring, pts[:a]...)
	ring = append(ring, pts[a])
	mid := b - a

	keep := make([]bool, n+1)
	keep[0], keep[mid], keep[n] = true, true, true
	simplify(ring, 0, mid, epsilon, keep)
	simplify(ring, mid, n, epsilon, keep)

	out := make([]Point, 0, 8)
	for i := 0; i < n; i++ {
		if keep[i] {
			out = append(out, ring[i])
		}
	}
	return out
}

// farthest returns the index of the point farthest from pts[from], or from
// itself when every point coincides with it.
func farthest(pts []Point, from int) int {
	best, bestDist := from, 0.0
	for i, p := range pts {
		if d := Distance(pts[from], p); d > bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// simplify marks the points of pts[first:last+1] that survive
// Douglas-Peucker. It uses an explicit stack rather than recursion, so long
// contours cannot exhaust the goroutine stack.
func simplify(pts []Point, first, last int, epsilon float64, keep []bool) {
	type span struct{ a, b int }
	stack := []span{{first, last}}

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.b-s.a < 2 {
			continue
		}

		idx, maxDist := -1, -1.0
		for i := s.a + 1; i < s.b; i++ {
			if d := segmentDistance(pts[i], pts[s.a], pts[s.b]); d > maxDist {
				idx, maxDist = i, d
			}
		}

		if maxDist > epsilon {
			keep[idx] = true
			stack = append(stack, span{s.a, idx}, span{idx, s.b})
		}
	}
}

// segmentDistance is the perpendicular distance from p to the line through
// a and b, or the distance to a when a and b coincide.
func segmentDistance(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return Distance(p, a)
	}
	return math.Abs(dy*(p.X-a.X)-dx*(p.Y-a.Y)) / length
}

// ConvexHull returns the convex hull of pts using Andrew's monotone chain.
//
// Vertices are returned counter-clockwise on screen, starting with the
// leftmost (then topmost) point. Collinear and duplicate points are
// dropped. Inputs with fewer than three points are returned as a copy.
func ConvexHull(pts []Point) []Point {
	if len(pts) < 3 {
		return append([]Point(nil), pts...)
	}

	sorted := make([]Point, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	// With Y down, cross > 0 is a clockwise turn on screen.
	cross := func(o, a, b Point) float64 {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	var lower []Point
	for _, p := range sorted {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) >= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	var upper []Point
	for i := len(sorted) - 1; i >= 0; i-- {
		p := sorted[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) >= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	// Collinear input degenerates to its two end points.
	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}
