package quill

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Backend names accepted by Config.Backend.
const (
	BackendRaster = "raster"
	BackendGPU    = "gpu"
)

// Config is the read-only playback configuration handed to a Scene.
type Config struct {
	FrameRate       int     `yaml:"frame_rate"`
	Width           int     `yaml:"width"`
	Height          int     `yaml:"height"`
	BackgroundColor Color   `yaml:"background"`
	FrameWidth      float64 `yaml:"frame_width"`
	Backend         string  `yaml:"backend"`
	Seed            uint64  `yaml:"seed"`
}

// DefaultConfig returns the medium-quality configuration: 30 fps at
// 1280×720, a black background and a 14.2-unit wide frame.
func DefaultConfig() Config {
	return Config{
		FrameRate:       30,
		Width:           1280,
		Height:          720,
		BackgroundColor: ColorBlack,
		FrameWidth:      14.2,
		Backend:         BackendRaster,
	}
}

// Quality is a named frame rate and resolution preset.
type Quality string

const (
	QualityLow        Quality = "low"
	QualityMedium     Quality = "medium"
	QualityHigh       Quality = "high"
	QualityProduction Quality = "production"
)

type qualityPreset struct {
	fps, width, height int
}

var qualityPresets = map[Quality]qualityPreset{
	QualityLow:        {15, 854, 480},
	QualityMedium:     {30, 1280, 720},
	QualityHigh:       {60, 1920, 1080},
	QualityProduction: {60, 2560, 1440},
}

// WithQuality returns c with the preset's frame rate and resolution.
func (c Config) WithQuality(q Quality) (Config, error) {
	p, ok := qualityPresets[q]
	if !ok {
		return c, &ConfigError{Field: "quality", Reason: fmt.Sprintf("unknown preset %q", q)}
	}
	c.FrameRate, c.Width, c.Height = p.fps, p.width, p.height
	return c, nil
}

// Validate reports the first invalid field as a *ConfigError.
func (c Config) Validate() error {
	switch {
	case c.FrameRate <= 0:
		return &ConfigError{Field: "frame_rate", Reason: fmt.Sprintf("must be positive, got %d", c.FrameRate)}
	case c.Width <= 0 || c.Height <= 0:
		return &ConfigError{Field: "width/height", Reason: fmt.Sprintf("must be positive, got %dx%d", c.Width, c.Height)}
	case !(c.FrameWidth > 0):
		return &ConfigError{Field: "frame_width", Reason: fmt.Sprintf("must be positive, got %v", c.FrameWidth)}
	}
	switch c.Backend {
	case "", BackendRaster, BackendGPU:
	default:
		return &ConfigError{Field: "backend", Reason: fmt.Sprintf("unknown backend %q", c.Backend)}
	}
	return nil
}

// FrameDelta returns the fixed tick length in seconds.
func (c Config) FrameDelta() float64 { return 1 / float64(c.FrameRate) }

// ReadConfig reads a YAML configuration file. Missing fields keep their
// DefaultConfig values.
func ReadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// WriteConfig writes c to a YAML file.
func WriteConfig(c Config, path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// UnmarshalYAML accepts a palette name or hex string.
func (c *Color) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalYAML writes the color as #RRGGBBAA.
func (c Color) MarshalYAML() (any, error) {
	return c.Hex(), nil
}
