package quill

import (
	"fmt"
	"image"
)

// Framebuffer is one rendered frame. Image holds premultiplied RGBA pixels
// at the configured resolution.
type Framebuffer struct {
	Index int
	Image *image.RGBA
}

// Renderer turns a Snapshot into pixels. The CPU rasterizer and the GPU
// tessellator both satisfy it; the Scene only sees this contract. A
// Renderer is used from one goroutine at a time.
type Renderer interface {
	Render(s *Snapshot) (*Framebuffer, error)
	Close() error
}

// NewRenderer returns the backend named by cfg.Backend. The GPU backend
// must be driven from inside an ebiten game loop (see Player).
func NewRenderer(cfg Config) (Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case "", BackendRaster:
		return NewRasterRenderer(cfg.Width, cfg.Height), nil
	case BackendGPU:
		return NewGPURenderer(cfg.Width, cfg.Height), nil
	}
	return nil, &ConfigError{Field: "backend", Reason: fmt.Sprintf("unknown backend %q", cfg.Backend)}
}

// flattenTolerance is the maximum deviation, in pixels, of flattened curves
// from the true curve.
const flattenTolerance = 0.2

// premultiplied returns c with opacity folded into alpha and the color
// channels premultiplied, as float32 for vertex colors.
func premultiplied(c Color, opacity float64) (r, g, b, a float32) {
	alpha := clamp01(c.A * opacity)
	return float32(clamp01(c.R) * alpha), float32(clamp01(c.G) * alpha), float32(clamp01(c.B) * alpha), float32(alpha)
}
