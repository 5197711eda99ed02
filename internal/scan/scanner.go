package scan

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/ironsheep/magicscan/internal/config"
	"github.com/ironsheep/magicscan/internal/detection"
	"github.com/ironsheep/magicscan/internal/frame"
	"github.com/ironsheep/magicscan/internal/imaging"
	"github.com/ironsheep/magicscan/internal/log"
	"github.com/ironsheep/magicscan/internal/rectify"
)

// Scanner-level rejection reasons, in addition to the detector's.
const (
	// Unstable means the frame changed too much since the previous one.
	Unstable detection.Reason = "unstable"
	// WarpFailed means the located quadrilateral could not be rectified.
	WarpFailed detection.Reason = "warp_failed"
)

// Options configures a Scanner.
type Options struct {
	// Locator finds the card. Nil uses an EdgeLocator built from Edges and
	// Detector.
	Locator Locator

	// Warper rectifies the card. Nil uses PerspectiveWarper.
	Warper Warper

	Edges    imaging.EdgeOptions
	Detector detection.DetectorOptions

	// Width and Height are the rectified image size.
	Width, Height int

	// MaxDelta enables the stability gate when positive: a frame whose
	// delta against the previous frame exceeds it is skipped.
	MaxDelta float64

	// Logger receives per-frame debug output. Nil uses the global logger.
	Logger *slog.Logger
}

// DefaultOptions returns the pure-Go pipeline with default parameters.
func DefaultOptions() Options {
	return Options{
		Edges:    imaging.DefaultEdgeOptions(),
		Detector: detection.DefaultDetectorOptions(),
		Width:    rectify.DefaultWidth,
		Height:   rectify.DefaultHeight,
	}
}

// OptionsFromConfig maps a loaded configuration onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Edges:    cfg.EdgeOptions(),
		Detector: cfg.DetectorOptions(),
		Width:    cfg.Output.Width,
		Height:   cfg.Output.Height,
		MaxDelta: cfg.MaxDelta,
	}
}

// Capture is one successfully rectified card.
type Capture struct {
	// Frame is the source frame the card was found in.
	Frame *frame.Frame

	// Quad is the card outline in frame coordinates, canonical order.
	Quad detection.Quad

	// Image is the rectified card, exactly Width x Height.
	Image *image.NRGBA

	// Delta is the frame delta against the previous frame. HasDelta is false
	// for the first frame and after a change of frame size.
	Delta    float64
	HasDelta bool
}

// Stats counts what the scanner did with the frames it pulled.
type Stats struct {
	Frames   int                      `json:"frames"`
	Captures int                      `json:"captures"`
	Skipped  map[detection.Reason]int `json:"skipped"`
}

// Scanner runs the pipeline over a frame source. It is not safe for
// concurrent use; a scanner is restartable only by creating a new one over
// a fresh source.
type Scanner struct {
	src    frame.Source
	opts   Options
	logger *slog.Logger

	prev  *frame.Frame
	stats Stats
}

// New creates a Scanner over src.
func New(src frame.Source, opts Options) *Scanner {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = rectify.DefaultWidth, rectify.DefaultHeight
	}
	if opts.Locator == nil {
		opts.Locator = NewEdgeLocator(opts.Edges, opts.Detector)
	}
	if opts.Warper == nil {
		opts.Warper = PerspectiveWarper{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.L()
	}

	return &Scanner{
		src:    src,
		opts:   opts,
		logger: logger,
		stats:  Stats{Skipped: make(map[detection.Reason]int)},
	}
}

// Step pulls exactly one frame and runs it through the pipeline.
//
// It returns (capture, true, nil) when a card was rectified and
// (nil, false, nil) when the frame was skipped. A non-nil error comes only
// from the source or ctx; it wraps the original, so errors.Is(err, io.EOF)
// detects the end of the stream.
func (s *Scanner) Step(ctx context.Context) (*Capture, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	f, err := s.src.Next(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read frame: %w", err)
	}
	s.stats.Frames++

	c := &Capture{Frame: f}
	prev := s.prev
	s.prev = f

	if prev != nil {
		delta, err := imaging.Delta(prev.Image, f.Image)
		switch {
		case errors.Is(err, imaging.ErrSizeMismatch):
			s.logger.Warn("frame size changed", "seq", f.Seq, "error", err)
		case err != nil:
			return nil, false, fmt.Errorf("failed to compute frame delta: %w", err)
		default:
			c.Delta, c.HasDelta = delta, true
		}
	}

	if s.opts.MaxDelta > 0 && c.HasDelta && c.Delta > s.opts.MaxDelta {
		s.skip(f, Unstable, "delta", c.Delta)
		return nil, false, nil
	}

	q, reason, ok := s.opts.Locator.Locate(f)
	if !ok {
		s.skip(f, reason)
		return nil, false, nil
	}

	img, err := s.opts.Warper.Warp(f, q, s.opts.Width, s.opts.Height)
	if err != nil {
		s.skip(f, WarpFailed, "error", err)
		return nil, false, nil
	}

	c.Quad = q
	c.Image = img
	s.stats.Captures++
	s.logger.Debug("card captured", "seq", f.Seq, "quad", q[:])
	return c, true, nil
}

// Next returns the next capture, skipping frames without a card. It blocks
// for as long as the source keeps producing cardless frames.
func (s *Scanner) Next(ctx context.Context) (*Capture, error) {
	for {
		c, ok, err := s.Step(ctx)
		if err != nil {
			return nil, err
		}
		if ok {
			return c, nil
		}
	}
}

// Run calls fn for every capture until the source ends, ctx is cancelled or
// fn returns an error. The end of the stream is not an error.
func (s *Scanner) Run(ctx context.Context, fn func(*Capture) error) error {
	for {
		c, err := s.Next(ctx)
		if errors.Is(err, frame.ErrEndOfStream) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
	}
}

// Stats returns a snapshot of the counters.
func (s *Scanner) Stats() Stats {
	out := s.stats
	out.Skipped = make(map[detection.Reason]int, len(s.stats.Skipped))
	for k, v := range s.stats.Skipped {
		out.Skipped[k] = v
	}
	return out
}

func (s *Scanner) skip(f *frame.Frame, reason detection.Reason, args ...any) {
	s.stats.Skipped[reason]++
	s.logger.Debug("frame skipped", append([]any{"seq", f.Seq, "reason", string(reason)}, args...)...)
}
