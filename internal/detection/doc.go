// Package detection locates a card-shaped quadrilateral in an edge map.
//
// The pipeline mirrors the classic OpenCV recipe for document scanning:
//
//  1. Border following: trace every contour of the edge map, with nesting
//     (FindContours)
//  2. Selection: keep top-level outer contours and pick the largest by area
//  3. Simplification: Douglas-Peucker with a tolerance proportional to the
//     perimeter (ApproxPoly)
//  4. Convexity: the convex hull of the simplified polygon must have exactly
//     four vertices (ConvexHull)
//  5. Ordering: rotate the corners into a canonical clockwise sequence
//     starting nearest the origin (OrderCorners)
//  6. Orientation: compare the top edge against the left edge
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// "Clockwise" always means clockwise as seen on screen. With Y pointing down a
// clockwise polygon has a positive shoelace sum.
//
// # Rejections
//
// A frame without an acceptable card is not an error. Detector.Detect reports
// why the frame was rejected through a Reason so callers can log it and move
// on to the next frame.
package detection
