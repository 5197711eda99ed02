package frame

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/ironsheep/magicscan/internal/log"
)

// ErrEndOfStream is returned by Source.Next once no more frames will arrive.
// It is io.EOF so callers may test for either.
var ErrEndOfStream = io.EOF

// Source produces frames on demand. Next may block until a frame is
// available; it returns ErrEndOfStream when the stream is exhausted and any
// other error for an unrecoverable device failure.
type Source interface {
	Next(ctx context.Context) (*Frame, error)
}

// SourceFunc adapts an ordinary function to the Source interface.
type SourceFunc func(ctx context.Context) (*Frame, error)

// Next calls f(ctx).
func (f SourceFunc) Next(ctx context.Context) (*Frame, error) {
	return f(ctx)
}

// clock is swapped in tests.
var clock = time.Now

// MemorySource replays a fixed list of images. It is not safe for
// concurrent use.
type MemorySource struct {
	images []image.Image
	next   int
	seq    uint64
}

// NewMemorySource creates a source over images, yielded in order.
func NewMemorySource(images ...image.Image) *MemorySource {
	return &MemorySource{images: images}
}

// Next returns the next image as a frame, or ErrEndOfStream.
func (s *MemorySource) Next(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.next >= len(s.images) {
		return nil, ErrEndOfStream
	}
	img := s.images[s.next]
	s.next++
	s.seq++
	return New(img, s.seq, clock()), nil
}

// DirSource replays the still images of a directory as a frame stream.
//
// Files are read lazily, one per Next call, in lexical name order. Supported
// extensions are .png, .jpg, .jpeg and .gif. With Loop set the directory is
// replayed indefinitely, which approximates an unbounded camera feed.
type DirSource struct {
	// Loop restarts from the first file after the last one.
	Loop bool

	paths []string
	next  int
	seq   uint64
}

// NewDirSource lists the images under path. If path is a single file the
// source yields that one image.
//
// # Errors
//
//   - Returns error if path does not exist or cannot be read
//   - Returns error if the directory holds no supported images
func NewDirSource(path string) (*DirSource, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat frame source: %w", err)
	}

	var paths []string
	if fi.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read frame directory: %w", err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && isImageFile(entry.Name()) {
				paths = append(paths, filepath.Join(path, entry.Name()))
			}
		}
		sort.Strings(paths)
	} else {
		paths = []string{path}
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("no images found in %s", path)
	}

	return &DirSource{paths: paths}, nil
}

// Current returns the path of the file most recently read by Next, or ""
// before the first call.
func (s *DirSource) Current() string {
	if s.next == 0 {
		return ""
	}
	return s.paths[s.next-1]
}

// Len returns the number of files in one pass over the directory.
func (s *DirSource) Len() int {
	return len(s.paths)
}

// ErrNoDecodableFrames is returned when a full pass over a DirSource found no
// file that decodes.
var ErrNoDecodableFrames = errors.New("no decodable frames")

// Next decodes the next file into a frame.
//
// A file that fails to decode is logged and skipped, so one bad frame does
// not end the stream. Only a whole pass of undecodable files is an error.
func (s *DirSource) Next(ctx context.Context) (*Frame, error) {
	for failed := 0; failed < len(s.paths); failed++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.next >= len(s.paths) {
			if !s.Loop {
				return nil, ErrEndOfStream
			}
			s.next = 0
		}

		path := s.paths[s.next]
		s.next++

		img, err := imaging.Open(path)
		if err != nil {
			log.Warn("skipping undecodable frame", "path", path, "error", err)
			continue
		}

		s.seq++
		return New(img, s.seq, clock()), nil
	}
	return nil, fmt.Errorf("%w in %d files", ErrNoDecodableFrames, len(s.paths))
}

func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif":
		return true
	}
	return false
}
