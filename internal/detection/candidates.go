package detection

import (
	"image"
	"math"
	"sort"
)

// Bounds represents a rectangular bounding box in pixel coordinates.
//
// (X1, Y1) is the top-left corner and (X2, Y2) the bottom-right corner,
// both inclusive.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Candidate is one top-level contour together with the detector's verdict.
type Candidate struct {
	// Bounds is the bounding box of the contour.
	Bounds Bounds `json:"bounds"`

	// Area is the contour's enclosed area in square pixels.
	Area float64 `json:"area"`

	// Rectangularity compares the contour perimeter with the perimeter of
	// its bounding box (1.0 for an axis-aligned rectangle).
	Rectangularity float64 `json:"rectangularity"`

	// Quad holds the ordered corners once the contour reduced to four
	// vertices, even when the orientation check rejected it.
	Quad *Quad `json:"quad,omitempty"`

	// Reason is the detector's verdict for this contour alone.
	Reason Reason `json:"reason"`
}

// CandidatesResult lists every top-level contour of an edge map.
type CandidatesResult struct {
	// Candidates are sorted by area, largest first. The first entry is the
	// one Detect would judge.
	Candidates []Candidate `json:"candidates"`

	// Count is the number of candidates.
	Count int `json:"count"`
}

// Candidates runs the detector's checks on every top-level outer contour
// instead of only the largest one. It is a diagnostic view of Detect: use it
// to see why a card in a frame was missed.
//
// Contours whose area does not exceed limit are skipped entirely; pass 0 to
// keep them all.
func (d *Detector) Candidates(edges *image.Gray, limit float64) *CandidatesResult {
	contours := FindContours(edges)

	candidates := make([]Candidate, 0)
	for _, c := range contours {
		if !c.TopLevel() || c.Area <= limit {
			continue
		}

		b := contourBounds(c.Points)
		cand := Candidate{
			Bounds:         b,
			Area:           c.Area,
			Rectangularity: rectangularity(c.Points, b),
		}

		q, reason, _ := d.Evaluate(c)
		cand.Reason = reason
		if reason == Accepted || reason == WrongOrientation {
			cand.Quad = &q
		}
		candidates = append(candidates, cand)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Area > candidates[j].Area
	})

	return &CandidatesResult{
		Candidates: candidates,
		Count:      len(candidates),
	}
}

func contourBounds(pts []Point) Bounds {
	if len(pts) == 0 {
		return Bounds{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Bounds{X1: int(minX), Y1: int(minY), X2: int(maxX), Y2: int(maxY)}
}

// rectangularity scores 1 - |perimeter - expected| / expected, where
// expected is the bounding box perimeter. Rotated or rounded outlines score
// lower. The score is clamped at 0.
func rectangularity(pts []Point, b Bounds) float64 {
	expected := 2 * float64((b.X2-b.X1)+(b.Y2-b.Y1))
	if expected == 0 {
		return 0
	}
	score := 1 - math.Abs(ArcLength(pts)-expected)/expected
	return math.Max(score, 0)
}
