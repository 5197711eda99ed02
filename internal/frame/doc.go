// Package frame defines the unit of work flowing through the scan pipeline
// and the sources that produce it.
//
// A Frame wraps a decoded image together with a sequence number and a capture
// timestamp. Frames are immutable once produced: no stage writes into
// Frame.Image, so a frame may be retained by the caller (for example as the
// previous frame for delta computation) while the next one is processed.
//
// # Sources
//
// Source is the blocking "give me the next frame" contract. The camera device
// itself lives outside this module; the package ships three implementations
// useful for replay and tests:
//   - DirSource: stills from a directory, in lexical file name order
//   - MemorySource: an in-memory slice of images
//   - SourceFunc: adapts a plain function
//
// A source signals the end of the stream by returning ErrEndOfStream (which
// is io.EOF). Any other error is treated by the scanner as fatal.
//
// # Coordinate System
//
// Frames are normalized so that their bounds start at (0,0): X increases
// rightward and Y increases downward, matching the detection package.
package frame
