package rectify

import (
	"errors"
	"fmt"
	"math"

	"github.com/ironsheep/magicscan/internal/detection"
	"gonum.org/v1/gonum/mat"
)

// ErrDegenerate is returned when four point correspondences do not define a
// projective transform, for example when three corners are collinear.
var ErrDegenerate = errors.New("degenerate quadrilateral")

// Homography is a 3x3 projective transform in row-major order with the last
// element fixed at 1.
type Homography [9]float64

// Identity is the transform that maps every point to itself.
var Identity = Homography{1, 0, 0, 0, 1, 0, 0, 0, 1}

// Apply maps (x, y) through h. A point on the line at infinity maps to NaN.
func (h Homography) Apply(x, y float64) (float64, float64) {
	w := h[6]*x + h[7]*y + h[8]
	if w == 0 {
		return math.NaN(), math.NaN()
	}
	return (h[0]*x + h[1]*y + h[2]) / w, (h[3]*x + h[4]*y + h[5]) / w
}

// PerspectiveTransform returns the homography that maps each src corner to
// the dst corner with the same index.
//
// The eight unknowns come from the linear system
//
//	u = (h0 x + h1 y + h2) / (h6 x + h7 y + 1)
//	v = (h3 x + h4 y + h5) / (h6 x + h7 y + 1)
//
// written out for the four correspondences (x, y) -> (u, v).
//
// # Errors
//
//   - Returns ErrDegenerate (wrapped) if the system is singular or the
//     resulting transform is not invertible
func PerspectiveTransform(src, dst detection.Quad) (Homography, error) {
	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)

	for i := 0; i < 4; i++ {
		x, y := src[i].X, src[i].Y
		u, v := dst[i].X, dst[i].Y

		a.SetRow(2*i, []float64{x, y, 1, 0, 0, 0, -u * x, -u * y})
		b.SetVec(2*i, u)
		a.SetRow(2*i+1, []float64{0, 0, 0, x, y, 1, -v * x, -v * y})
		b.SetVec(2*i+1, v)
	}

	var sol mat.VecDense
	if err := sol.SolveVec(a, b); err != nil {
		return Homography{}, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}

	var h Homography
	for i := 0; i < 8; i++ {
		h[i] = sol.AtVec(i)
		if math.IsNaN(h[i]) || math.IsInf(h[i], 0) {
			return Homography{}, fmt.Errorf("%w: non-finite coefficient", ErrDegenerate)
		}
	}
	h[8] = 1

	// A solvable system can still collapse the plane onto a line or a point.
	if math.Abs(h.Determinant()) < minDeterminant {
		return Homography{}, fmt.Errorf("%w: transform is not invertible", ErrDegenerate)
	}
	return h, nil
}

// minDeterminant is the smallest |det H| accepted as invertible.
const minDeterminant = 1e-10

// Determinant returns the determinant of h as a 3x3 matrix.
func (h Homography) Determinant() float64 {
	return mat.Det(mat.NewDense(3, 3, h[:]))
}
