// Package scan drives the card pipeline over a frame stream.
//
// A Scanner pulls one frame at a time from a frame.Source and runs it
// through locate (edges, contours, quadrilateral) and warp (perspective
// rectification). Frames that yield no card are skipped silently, with the
// reason logged at debug level. Only source failures end the scan.
//
//	s := scan.New(src, scan.DefaultOptions())
//	for {
//		c, err := s.Next(ctx)
//		if errors.Is(err, io.EOF) {
//			break
//		}
//		...
//	}
//
// The scanner is synchronous and single-threaded. Hand captures to other
// goroutines if downstream work such as fingerprinting is slow; a Capture's
// Image is never touched again by the scanner.
package scan
