// Package rectify warps a detected card quadrilateral into an upright,
// fixed-size image.
//
// The warp is a true projective transform: Homography maps each output
// pixel back into the source frame and the source is resampled with
// bilinear interpolation. Output pixels whose preimage falls outside the
// frame are opaque black. The source image is never modified.
package rectify
