package detection

import (
	"testing"
)

func TestOrderCorners_Rotations(t *testing.T) {
	canonical := Quad{{10, 12}, {200, 15}, {205, 300}, {8, 295}}

	for shift := 0; shift < 4; shift++ {
		var in [4]Point
		for i := range in {
			in[i] = canonical[(i+shift)%4]
		}

		got := OrderCorners(in)
		if got != canonical {
			t.Errorf("shift %d: got %v, want %v", shift, got, canonical)
		}
	}
}

func TestOrderCorners_IsRotationOfInput(t *testing.T) {
	in := [4]Point{{300, 40}, {310, 400}, {20, 390}, {30, 35}}
	got := OrderCorners(in)

	if got[0] != in[3] {
		t.Fatalf("first corner: got %v, want nearest to origin %v", got[0], in[3])
	}
	for i := range got {
		if got[i] != in[(3+i)%4] {
			t.Errorf("corner %d: got %v, want %v", i, got[i], in[(3+i)%4])
		}
	}
}

func TestOrderCorners_TieKeepsFirst(t *testing.T) {
	in := [4]Point{{50, 50}, {0, 10}, {40, 40}, {10, 0}}
	got := OrderCorners(in)

	if got[0] != Pt(0, 10) {
		t.Errorf("tie: got %v first, want (0,10)", got[0])
	}
}

func TestOrderCornersByAngle(t *testing.T) {
	want := Quad{{10, 10}, {100, 12}, {98, 150}, {12, 148}}

	tests := []struct {
		name string
		in   [4]Point
	}{
		{"canonical", [4]Point(want)},
		{"counter-clockwise", [4]Point{want[0], want[3], want[2], want[1]}},
		{"shuffled", [4]Point{want[2], want[0], want[3], want[1]}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OrderCornersByAngle(tt.in); got != want {
				t.Errorf("got %v, want %v", got, want)
			}
		})
	}
}

func TestQuad_Measurements(t *testing.T) {
	q := Quad{{0, 0}, {30, 0}, {30, 40}, {0, 40}}

	if q.Top() != 30 {
		t.Errorf("Top: got %v, want 30", q.Top())
	}
	if q.Side() != 40 {
		t.Errorf("Side: got %v, want 40", q.Side())
	}
	if q.Area() != 1200 {
		t.Errorf("Area: got %v, want 1200", q.Area())
	}
	if signedArea(q[:]) <= 0 {
		t.Error("canonical quad should be clockwise on screen")
	}
}

func TestPoint_ImagePoint(t *testing.T) {
	p := Pt(10.4, 19.6)
	if got := p.ImagePoint(); got.X != 10 || got.Y != 20 {
		t.Errorf("ImagePoint: got %v, want (10,20)", got)
	}
}
