package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/ironsheep/magicscan/internal/config"
	"github.com/ironsheep/magicscan/internal/log"
)

// cliFlags are the flags shared by every command. A flag overrides the
// config file and the environment only when it is given explicitly.
type cliFlags struct {
	fs *flag.FlagSet

	configPath  string
	logLevel    string
	backend     string
	threshold   float64
	blurSigma   float64
	minArea     float64
	orientation string
	angleSort   bool
	width       int
	height      int
	quality     int
	hasher      string
	maxDelta    float64
}

func newFlags(name string, output io.Writer) *cliFlags {
	f := &cliFlags{fs: flag.NewFlagSet(name, flag.ContinueOnError)}
	f.fs.SetOutput(output)

	f.fs.StringVar(&f.configPath, "config", "", "YAML config file")
	f.fs.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	f.fs.StringVar(&f.backend, "backend", "go", "pipeline backend: "+strings.Join(backendNames(), ", "))
	f.fs.Float64Var(&f.threshold, "threshold", 0, "Canny threshold for both hysteresis bounds")
	f.fs.Float64Var(&f.blurSigma, "blur", 0, "Gaussian pre-blur sigma, 0 disables")
	f.fs.Float64Var(&f.minArea, "min-area", 0, "minimum card area in square pixels")
	f.fs.StringVar(&f.orientation, "orientation", "", "portrait, landscape or any")
	f.fs.BoolVar(&f.angleSort, "angle-sort", false, "sort corners by angle before ordering")
	f.fs.IntVar(&f.width, "width", 0, "rectified card width")
	f.fs.IntVar(&f.height, "height", 0, "rectified card height")
	f.fs.IntVar(&f.quality, "quality", 0, "JPEG quality for fingerprinting (1-100)")
	f.fs.StringVar(&f.hasher, "hasher", "", "fingerprint hash: phash, dhash or ahash")
	f.fs.Float64Var(&f.maxDelta, "max-delta", 0, "skip frames whose delta exceeds this, 0 disables")
	return f
}

// config resolves defaults, the config file, the environment and the flags
// in that order, validates the result and initializes logging.
func (f *cliFlags) config() (*config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()

	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "log-level":
			cfg.LogLevel = f.logLevel
		case "threshold":
			cfg.Edges.Threshold = f.threshold
			cfg.Edges.Low, cfg.Edges.High = 0, 0
		case "blur":
			cfg.Edges.BlurSigma = f.blurSigma
		case "min-area":
			cfg.Detector.MinArea = f.minArea
		case "orientation":
			cfg.Detector.Orientation = f.orientation
		case "angle-sort":
			cfg.Detector.AngleSort = f.angleSort
		case "width":
			cfg.Output.Width = f.width
		case "height":
			cfg.Output.Height = f.height
		case "quality":
			cfg.Output.JPEGQuality = f.quality
		case "hasher":
			cfg.Output.Hasher = f.hasher
		case "max-delta":
			cfg.MaxDelta = f.maxDelta
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	log.Init(cfg.LogLevel)
	return cfg, nil
}
