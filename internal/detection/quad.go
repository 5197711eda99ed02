package detection

import (
	"image"
)

// DefaultMinArea is the smallest contour area, in square pixels, that can
// be a card.
const DefaultMinArea = 10000

// DefaultEpsilonRatio scales the contour perimeter into the Douglas-Peucker
// tolerance.
const DefaultEpsilonRatio = 0.02

// Orientation constrains the aspect of an accepted quadrilateral.
type Orientation int

const (
	// Portrait requires the top edge to be strictly shorter than the side.
	Portrait Orientation = iota
	// Landscape requires the top edge to be strictly longer than the side.
	Landscape
	// AnyOrientation accepts every quadrilateral.
	AnyOrientation
)

func (o Orientation) String() string {
	switch o {
	case Portrait:
		return "portrait"
	case Landscape:
		return "landscape"
	case AnyOrientation:
		return "any"
	default:
		return "unknown"
	}
}

// ParseOrientation maps "portrait", "landscape" or "any" to an Orientation.
func ParseOrientation(s string) (Orientation, bool) {
	switch s {
	case "portrait", "":
		return Portrait, true
	case "landscape":
		return Landscape, true
	case "any":
		return AnyOrientation, true
	}
	return Portrait, false
}

// Accepts reports whether q satisfies the orientation constraint.
func (o Orientation) Accepts(q Quad) bool {
	top, side := q.Top(), q.Side()
	switch o {
	case Portrait:
		return top < side
	case Landscape:
		return top > side
	default:
		return true
	}
}

// Reason explains why a frame produced no quadrilateral.
type Reason string

const (
	Accepted         Reason = "accepted"
	NoContour        Reason = "no_contour"
	AreaTooSmall     Reason = "area_too_small"
	NotQuadrilateral Reason = "not_quadrilateral"
	WrongOrientation Reason = "wrong_orientation"
)

// DetectorOptions tunes the quadrilateral detector.
type DetectorOptions struct {
	// MinArea rejects contours whose area is not above it.
	MinArea float64

	// EpsilonRatio is the Douglas-Peucker tolerance as a fraction of the
	// contour perimeter.
	EpsilonRatio float64

	// Orientation is the accepted card aspect.
	Orientation Orientation

	// AngleSort orders the hull corners by angle around their centroid
	// instead of trusting the hull winding.
	AngleSort bool
}

// DefaultDetectorOptions returns the detector defaults: portrait cards of
// more than 10,000 px² with a 2% simplification tolerance.
func DefaultDetectorOptions() DetectorOptions {
	return DetectorOptions{
		MinArea:      DefaultMinArea,
		EpsilonRatio: DefaultEpsilonRatio,
		Orientation:  Portrait,
	}
}

// Detector finds the most plausible card outline in an edge map.
// A Detector is stateless and safe for concurrent use.
type Detector struct {
	opts DetectorOptions
}

// NewDetector creates a Detector. Zero MinArea or EpsilonRatio fall back to
// the defaults.
func NewDetector(opts DetectorOptions) *Detector {
	if opts.MinArea <= 0 {
		opts.MinArea = DefaultMinArea
	}
	if opts.EpsilonRatio <= 0 {
		opts.EpsilonRatio = DefaultEpsilonRatio
	}
	return &Detector{opts: opts}
}

// Options returns the effective options.
func (d *Detector) Options() DetectorOptions {
	return d.opts
}

// Detect returns the card quadrilateral in edges, if any.
//
// Only the largest top-level outer contour is considered. When it fails any
// check the frame is rejected: ok is false and reason says which check
// failed. On success reason is Accepted.
//
// The card outline must be a closed curve in edges. Raw Canny output can
// break at a corner; imaging.CloseEdges repairs that.
func (d *Detector) Detect(edges *image.Gray) (q Quad, reason Reason, ok bool) {
	best, found := LargestContour(FindContours(edges))
	if !found {
		return Quad{}, NoContour, false
	}
	return d.Evaluate(best)
}

// Evaluate runs the area, shape and orientation checks on one contour.
func (d *Detector) Evaluate(c Contour) (Quad, Reason, bool) {
	if c.Area <= d.opts.MinArea {
		return Quad{}, AreaTooSmall, false
	}

	epsilon := d.opts.EpsilonRatio * ArcLength(c.Points)
	hull := ConvexHull(ApproxPoly(c.Points, epsilon))
	if len(hull) != 4 {
		return Quad{}, NotQuadrilateral, false
	}

	// The hull runs counter-clockwise on screen.
	pts := [4]Point{hull[3], hull[2], hull[1], hull[0]}

	var q Quad
	if d.opts.AngleSort {
		q = OrderCornersByAngle(pts)
	} else {
		q = OrderCorners(pts)
	}

	if !d.opts.Orientation.Accepts(q) {
		return q, WrongOrientation, false
	}
	return q, Accepted, true
}

// LargestContour picks the top-level outer contour with the largest area.
// The first one wins a tie.
func LargestContour(contours []Contour) (Contour, bool) {
	best := -1
	for i, c := range contours {
		if !c.TopLevel() {
			continue
		}
		if best < 0 || c.Area > contours[best].Area {
			best = i
		}
	}
	if best < 0 {
		return Contour{}, false
	}
	return contours[best], true
}
