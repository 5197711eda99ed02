package detection

import (
	"image"
)

// newEdgeMap creates a blank edge map.
func newEdgeMap(width, height int) *image.Gray {
	return image.NewGray(image.Rect(0, 0, width, height))
}

// drawRectOutline draws a one pixel wide rectangle outline with corners
// (x1,y1) and (x2,y2), both inclusive.
func drawRectOutline(g *image.Gray, x1, y1, x2, y2 int) {
	for x := x1; x <= x2; x++ {
		g.Pix[y1*g.Stride+x] = 255
		g.Pix[y2*g.Stride+x] = 255
	}
	for y := y1; y <= y2; y++ {
		g.Pix[y*g.Stride+x1] = 255
		g.Pix[y*g.Stride+x2] = 255
	}
}

// fillConvex sets every pixel whose centre lies inside the convex polygon
// pts (either winding).
func fillConvex(g *image.Gray, pts []Point) {
	b := g.Rect
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if insideConvex(pts, Pt(float64(x), float64(y))) {
				g.Pix[y*g.Stride+x] = 255
			}
		}
	}
}

func insideConvex(pts []Point, p Point) bool {
	var pos, neg bool
	for i, a := range pts {
		b := pts[(i+1)%len(pts)]
		c := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
		if c > 0 {
			pos = true
		}
		if c < 0 {
			neg = true
		}
	}
	return !(pos && neg)
}

func near(a, b Point, tol float64) bool {
	return Distance(a, b) <= tol
}
