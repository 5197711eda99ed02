// Package imaging provides the pixel-level stages of the card scanner.
//
// It implements the edge extractor (Canny over BT.601 luma), the frame-delta
// estimator used to judge scene stability, and a few colour and annotation
// helpers used by the CLI and the MCP server. All functions accept standard
// image.Image values and treat them as read-only; results are fresh buffers
// anchored at (0,0), where X increases rightward and Y increases downward.
//
// # Edge Extraction
//
// EdgeMap takes two hysteresis thresholds. The scanner feeds the same value
// to both (DefaultCannyThreshold, 100), so in practice every local maximum
// above the threshold is an edge and nothing is "weak". Smoothing is off by
// default; EdgeOptions.BlurSigma turns on a Gaussian pre-blur for noisy
// cameras.
//
// # Frame Delta
//
// Delta returns the mean squared intensity difference between two frames of
// the same size. It is zero for identical frames and symmetric.
//
// # Thread Safety
//
// Every function here is stateless and may be called concurrently on
// different images.
package imaging
