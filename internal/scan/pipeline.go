package scan

import (
	"image"

	"github.com/ironsheep/magicscan/internal/detection"
	"github.com/ironsheep/magicscan/internal/frame"
	"github.com/ironsheep/magicscan/internal/imaging"
	"github.com/ironsheep/magicscan/internal/rectify"
)

// Locator finds the card outline in a frame. ok is false when the frame
// holds no acceptable card; reason then says why.
type Locator interface {
	Locate(f *frame.Frame) (q detection.Quad, reason detection.Reason, ok bool)
}

// Warper produces the rectified card image for a located quadrilateral.
type Warper interface {
	Warp(f *frame.Frame, q detection.Quad, width, height int) (*image.NRGBA, error)
}

// EdgeLocator is the pure-Go Locator: Canny edges, closed with a 3x3
// morphological closing, followed by contour based quadrilateral detection.
type EdgeLocator struct {
	Edges    imaging.EdgeOptions
	Detector *detection.Detector
}

// NewEdgeLocator creates an EdgeLocator.
func NewEdgeLocator(edges imaging.EdgeOptions, det detection.DetectorOptions) *EdgeLocator {
	return &EdgeLocator{
		Edges:    edges,
		Detector: detection.NewDetector(det),
	}
}

// EdgeMap returns the edge map the detector traces: Canny output with
// one-pixel breaks closed, so a card outline is a closed curve.
func (l *EdgeLocator) EdgeMap(f *frame.Frame) *image.Gray {
	return imaging.CloseEdges(imaging.EdgeMap(f.Image, l.Edges))
}

// Locate implements Locator.
func (l *EdgeLocator) Locate(f *frame.Frame) (detection.Quad, detection.Reason, bool) {
	return l.Detector.Detect(l.EdgeMap(f))
}

// PerspectiveWarper is the pure-Go Warper built on rectify.Rectify.
type PerspectiveWarper struct{}

// Warp implements Warper.
func (PerspectiveWarper) Warp(f *frame.Frame, q detection.Quad, width, height int) (*image.NRGBA, error) {
	return rectify.Rectify(f.Image, q, width, height)
}
