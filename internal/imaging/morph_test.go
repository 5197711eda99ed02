package imaging

import (
	"image"
	"testing"
)

func TestCloseEdges_BridgesGap(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 20, 20))
	for x := 3; x <= 15; x++ {
		if x != 9 {
			g.Pix[10*g.Stride+x] = 255
		}
	}

	out := CloseEdges(g)
	if out.Pix[10*out.Stride+9] != 255 {
		t.Error("one-pixel gap was not bridged")
	}
	for _, p := range []image.Point{{9, 9}, {9, 11}, {2, 10}, {16, 10}} {
		if out.GrayAt(p.X, p.Y).Y != 0 {
			t.Errorf("pixel %v: line grew", p)
		}
	}
}

func TestCloseEdges_KeepsOutline(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 60, 50))
	for x := 10; x <= 50; x++ {
		g.Pix[5*g.Stride+x] = 255
		g.Pix[40*g.Stride+x] = 255
	}
	for y := 5; y <= 40; y++ {
		g.Pix[y*g.Stride+10] = 255
		g.Pix[y*g.Stride+50] = 255
	}

	out := CloseEdges(g)
	for i := range g.Pix {
		if out.Pix[i] != g.Pix[i] {
			t.Fatalf("pixel (%d,%d) changed from %d to %d", i%g.Stride, i/g.Stride, g.Pix[i], out.Pix[i])
		}
	}
}

func TestCloseEdges_ClosesCardOutline(t *testing.T) {
	img := createQuadImage(500, 560, [][2]float64{{100, 50}, {400, 60}, {410, 500}, {90, 490}})
	out := CloseEdges(EdgeMap(img, DefaultEdgeOptions()))

	// With a closed outline the background reachable from the frame border
	// stays outside the card.
	if reachable(out, image.Pt(0, 0), image.Pt(250, 280)) {
		t.Error("card interior is connected to the background: outline is open")
	}
}

// reachable reports whether to can be reached from from through zero pixels,
// moving in four directions.
func reachable(g *image.Gray, from, to image.Point) bool {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	seen := make([]bool, w*h)
	stack := []image.Point{from}
	seen[from.Y*w+from.X] = true
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p == to {
			return true
		}
		for _, d := range []image.Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			n := p.Add(d)
			if n.X < 0 || n.Y < 0 || n.X >= w || n.Y >= h {
				continue
			}
			i := n.Y*w + n.X
			if seen[i] || g.Pix[n.Y*g.Stride+n.X] != 0 {
				continue
			}
			seen[i] = true
			stack = append(stack, n)
		}
	}
	return false
}
