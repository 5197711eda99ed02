package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/magicscan/internal/detection"
	"github.com/ironsheep/magicscan/internal/fingerprint"
	"github.com/ironsheep/magicscan/internal/frame"
	"github.com/ironsheep/magicscan/internal/imaging"
	"github.com/ironsheep/magicscan/internal/log"
	"github.com/ironsheep/magicscan/internal/scan"
)

// record is one line of scan output.
type record struct {
	Seq       uint64             `json:"seq"`
	File      string             `json:"file,omitempty"`
	Corners   detection.Quad     `json:"corners"`
	Delta     *float64           `json:"delta,omitempty"`
	Digest    fingerprint.Digest `json:"digest"`
	MeanColor string             `json:"mean_color"`
}

type job struct {
	capture *scan.Capture
	file    string
}

// runScan scans a directory of frames and writes one JSON record per card
// to stdout. The scanner runs in one goroutine and hands each capture to a
// fingerprint worker, so JPEG encoding and hashing overlap with detection.
func runScan(ctx context.Context, args []string, stdout io.Writer) error {
	fl := newFlags("scan", os.Stderr)
	loop := fl.fs.Bool("loop", false, "replay the directory until interrupted")
	if err := fl.fs.Parse(args); err != nil {
		return err
	}
	if fl.fs.NArg() != 1 {
		return fmt.Errorf("scan needs exactly one frame directory, got %d arguments", fl.fs.NArg())
	}

	cfg, err := fl.config()
	if err != nil {
		return err
	}

	src, err := frame.NewDirSource(fl.fs.Arg(0))
	if err != nil {
		return err
	}
	src.Loop = *loop

	opts := scan.OptionsFromConfig(cfg)
	if err := applyBackend(fl.backend, cfg, &opts); err != nil {
		return err
	}
	hasher, err := fingerprint.New(cfg.Output.Hasher)
	if err != nil {
		return err
	}

	log.Info("scan started", "dir", fl.fs.Arg(0), "frames", src.Len(), "backend", fl.backend, "hasher", cfg.Output.Hasher)
	scanner := scan.New(src, opts)

	jobs := make(chan job, 4)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		return scanner.Run(gctx, func(c *scan.Capture) error {
			select {
			case jobs <- job{capture: c, file: src.Current()}:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	})

	g.Go(func() error {
		enc := json.NewEncoder(stdout)
		for j := range jobs {
			rec, err := newRecord(j, hasher, cfg.Output.JPEGQuality)
			if err != nil {
				return err
			}
			if err := enc.Encode(rec); err != nil {
				return fmt.Errorf("failed to write record: %w", err)
			}
		}
		return nil
	})

	err = g.Wait()
	stats := scanner.Stats()
	log.Info("scan finished", "frames", stats.Frames, "captures", stats.Captures, "skipped", stats.Skipped)

	// Interrupting a looping scan is the normal way to stop it
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func newRecord(j job, h fingerprint.Hasher, quality int) (*record, error) {
	c := j.capture
	digest, err := fingerprint.Fingerprint(c.Image, h, quality)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint frame %d: %w", c.Frame.Seq, err)
	}

	rec := &record{
		Seq:       c.Frame.Seq,
		File:      j.file,
		Corners:   c.Quad,
		Digest:    digest,
		MeanColor: imaging.MeanColor(c.Image).Clamped().Hex(),
	}
	if c.HasDelta {
		delta := c.Delta
		rec.Delta = &delta
	}
	return rec, nil
}
