//go:build gocv

package cvscan

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/ironsheep/magicscan/internal/detection"
	"github.com/ironsheep/magicscan/internal/frame"
	"github.com/ironsheep/magicscan/internal/rectify"
	"gocv.io/x/gocv"
)

// Locator finds the card with OpenCV primitives.
type Locator struct {
	Low, High float64
	Opts      detection.DetectorOptions
}

// NewLocator creates a Locator. Zero detector options fall back to the
// detection defaults.
func NewLocator(low, high float64, opts detection.DetectorOptions) *Locator {
	opts = detection.NewDetector(opts).Options()
	return &Locator{Low: low, High: high, Opts: opts}
}

// Locate implements scan.Locator.
func (l *Locator) Locate(f *frame.Frame) (detection.Quad, detection.Reason, bool) {
	src, err := toMat(f.Image)
	if err != nil {
		return detection.Quad{}, detection.NoContour, false
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, float32(l.Low), float32(l.High))

	// Same 3x3 closing as the pure-Go locator.
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	defer kernel.Close()
	gocv.MorphologyEx(edges, &edges, gocv.MorphClose, kernel)

	hierarchy := gocv.NewMat()
	defer hierarchy.Close()
	contours := gocv.FindContoursWithParams(edges, &hierarchy, gocv.RetrievalTree, gocv.ChainApproxSimple)
	defer contours.Close()

	// Largest top-level contour. Holes always have a parent in tree mode.
	best, bestArea := -1, 0.0
	for i := 0; i < contours.Size(); i++ {
		if hierarchy.GetVeciAt(0, i)[3] >= 0 {
			continue
		}
		if area := gocv.ContourArea(contours.At(i)); best < 0 || area > bestArea {
			best, bestArea = i, area
		}
	}
	if best < 0 {
		return detection.Quad{}, detection.NoContour, false
	}
	if bestArea <= l.Opts.MinArea {
		return detection.Quad{}, detection.AreaTooSmall, false
	}

	contour := contours.At(best)
	epsilon := l.Opts.EpsilonRatio * gocv.ArcLength(contour, true)
	approx := gocv.ApproxPolyDP(contour, epsilon, true)
	defer approx.Close()

	hull := gocv.NewMat()
	defer hull.Close()
	gocv.ConvexHull(approx, &hull, false, true)
	if hull.Rows() != 4 {
		return detection.Quad{}, detection.NotQuadrilateral, false
	}

	// The hull winding flag is defined for a Y-up frame; normalise instead of
	// trusting it.
	var pts [4]detection.Point
	for i := 0; i < 4; i++ {
		v := hull.GetVeciAt(i, 0)
		pts[i] = detection.Pt(float64(v[0]), float64(v[1]))
	}
	pts = detection.Clockwise(pts)

	var q detection.Quad
	if l.Opts.AngleSort {
		q = detection.OrderCornersByAngle(pts)
	} else {
		q = detection.OrderCorners(pts)
	}
	if !l.Opts.Orientation.Accepts(q) {
		return q, detection.WrongOrientation, false
	}
	return q, detection.Accepted, true
}

// Warper rectifies with cv::warpPerspective and bilinear interpolation.
type Warper struct{}

// Warp implements scan.Warper.
func (Warper) Warp(f *frame.Frame, q detection.Quad, width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", width, height)
	}
	// Reject what the pure-Go solver rejects.
	if _, err := rectify.PerspectiveTransform(q, rectify.Target(width, height)); err != nil {
		return nil, err
	}

	src, err := toMat(f.Image)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	from := gocv.NewPoint2fVectorFromPoints(point2f(q))
	defer from.Close()
	to := gocv.NewPoint2fVectorFromPoints(point2f(rectify.Target(width, height)))
	defer to.Close()

	m := gocv.GetPerspectiveTransform2f(from, to)
	defer m.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.WarpPerspective(src, &dst, m, image.Pt(width, height))

	img, err := dst.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert warped image: %w", err)
	}
	return imaging.Clone(img), nil
}

func toMat(img image.Image) (gocv.Mat, error) {
	m, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to convert frame to Mat: %w", err)
	}
	return m, nil
}

func point2f(q detection.Quad) []gocv.Point2f {
	out := make([]gocv.Point2f, len(q))
	for i, p := range q {
		out[i] = gocv.Point2f{X: float32(p.X), Y: float32(p.Y)}
	}
	return out
}
