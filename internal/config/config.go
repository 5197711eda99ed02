// Package config holds the tunable parameters of the scan pipeline and loads
// them from YAML.
package config

import (
	"fmt"
	"os"

	"github.com/ironsheep/magicscan/internal/detection"
	"github.com/ironsheep/magicscan/internal/fingerprint"
	"github.com/ironsheep/magicscan/internal/imaging"
	"github.com/ironsheep/magicscan/internal/rectify"
	"gopkg.in/yaml.v3"
)

// EnvLogLevel names the environment variable that overrides the log level.
const EnvLogLevel = "MAGICSCAN_LOG_LEVEL"

// Edges configures the Canny edge extractor.
type Edges struct {
	Threshold float64 `yaml:"threshold"`  // Used for both bounds unless Low/High are set
	Low       float64 `yaml:"low"`        // Optional explicit lower bound
	High      float64 `yaml:"high"`       // Optional explicit upper bound
	BlurSigma float64 `yaml:"blur_sigma"` // Gaussian pre-blur, 0 disables
}

// Detector configures the quadrilateral detector.
type Detector struct {
	MinArea      float64 `yaml:"min_area"`
	EpsilonRatio float64 `yaml:"epsilon_ratio"`
	Orientation  string  `yaml:"orientation"` // portrait, landscape or any
	AngleSort    bool    `yaml:"angle_sort"`
}

// Output configures the rectified image and its fingerprint.
type Output struct {
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	JPEGQuality int    `yaml:"jpeg_quality"`
	Hasher      string `yaml:"hasher"`
}

// Config is the complete scanner configuration.
type Config struct {
	Edges    Edges    `yaml:"edges"`
	Detector Detector `yaml:"detector"`
	Output   Output   `yaml:"output"`

	// MaxDelta skips captures whose frame delta against the previous frame
	// exceeds it. 0 disables the stability gate.
	MaxDelta float64 `yaml:"max_delta"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Edges: Edges{
			Threshold: imaging.DefaultCannyThreshold,
		},
		Detector: Detector{
			MinArea:      detection.DefaultMinArea,
			EpsilonRatio: detection.DefaultEpsilonRatio,
			Orientation:  detection.Portrait.String(),
		},
		Output: Output{
			Width:       rectify.DefaultWidth,
			Height:      rectify.DefaultHeight,
			JPEGQuality: fingerprint.DefaultQuality,
			Hasher:      "phash",
		},
		LogLevel: "info",
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Write stores cfg as YAML at path.
func (c *Config) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overlays environment overrides.
func (c *Config) ApplyEnv() {
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.LogLevel = level
	}
}

// Validate checks that every value is usable.
func (c *Config) Validate() error {
	if c.Edges.Threshold <= 0 && (c.Edges.Low <= 0 || c.Edges.High <= 0) {
		return fmt.Errorf("edges.threshold must be positive")
	}
	if c.Edges.Low < 0 || c.Edges.High < 0 {
		return fmt.Errorf("edges.low and edges.high must not be negative")
	}
	if c.Edges.High > 0 && c.Edges.Low > c.Edges.High {
		return fmt.Errorf("edges.low (%g) exceeds edges.high (%g)", c.Edges.Low, c.Edges.High)
	}
	if c.Edges.BlurSigma < 0 {
		return fmt.Errorf("edges.blur_sigma must not be negative")
	}
	if c.Detector.MinArea <= 0 {
		return fmt.Errorf("detector.min_area must be positive, got %g", c.Detector.MinArea)
	}
	if c.Detector.EpsilonRatio <= 0 || c.Detector.EpsilonRatio >= 1 {
		return fmt.Errorf("detector.epsilon_ratio must be in (0, 1), got %g", c.Detector.EpsilonRatio)
	}
	if _, ok := detection.ParseOrientation(c.Detector.Orientation); !ok {
		return fmt.Errorf("unknown detector.orientation %q", c.Detector.Orientation)
	}
	if c.Output.Width <= 0 || c.Output.Height <= 0 {
		return fmt.Errorf("output size must be positive, got %dx%d", c.Output.Width, c.Output.Height)
	}
	if c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100 {
		return fmt.Errorf("output.jpeg_quality must be in [1, 100], got %d", c.Output.JPEGQuality)
	}
	if _, err := fingerprint.New(c.Output.Hasher); err != nil {
		return err
	}
	if c.MaxDelta < 0 {
		return fmt.Errorf("max_delta must not be negative")
	}
	return nil
}

// EdgeOptions converts the edge section for imaging.EdgeMap.
func (c *Config) EdgeOptions() imaging.EdgeOptions {
	opts := imaging.SingleThreshold(c.Edges.Threshold)
	if c.Edges.Low > 0 && c.Edges.High > 0 {
		opts.Low, opts.High = c.Edges.Low, c.Edges.High
	}
	opts.BlurSigma = c.Edges.BlurSigma
	return opts
}

// DetectorOptions converts the detector section. An invalid orientation
// falls back to portrait; Validate reports it.
func (c *Config) DetectorOptions() detection.DetectorOptions {
	o, _ := detection.ParseOrientation(c.Detector.Orientation)
	return detection.DetectorOptions{
		MinArea:      c.Detector.MinArea,
		EpsilonRatio: c.Detector.EpsilonRatio,
		Orientation:  o,
		AngleSort:    c.Detector.AngleSort,
	}
}
