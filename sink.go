package quill

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FrameSink receives rendered frames in index order. buf holds premultiplied
// RGBA pixels and is owned by the sink once delivered.
type FrameSink interface {
	OnFrame(buf *image.RGBA, index int) error
}

// FrameSinkFunc adapts a function to the FrameSink interface.
type FrameSinkFunc func(buf *image.RGBA, index int) error

// OnFrame calls f(buf, index).
func (f FrameSinkFunc) OnFrame(buf *image.RGBA, index int) error { return f(buf, index) }

// PNGSequence writes each frame to Dir as <Prefix>_<index>.png, with the
// index zero-padded to five digits.
type PNGSequence struct {
	Dir    string
	Prefix string

	made bool
}

// NewPNGSequence returns a sink writing into dir. The prefix is sanitized
// for use in file names.
func NewPNGSequence(dir, prefix string) *PNGSequence {
	return &PNGSequence{Dir: dir, Prefix: sanitizeLabel(prefix)}
}

// OnFrame encodes buf as a straight-alpha PNG.
func (p *PNGSequence) OnFrame(buf *image.RGBA, index int) error {
	if !p.made {
		if err := os.MkdirAll(p.Dir, 0o755); err != nil {
			return fmt.Errorf("png sequence: mkdir %s: %w", p.Dir, err)
		}
		p.made = true
	}
	return writePNG(p.Path(index), unpremultiply(buf))
}

// Path returns the file written for frame index.
func (p *PNGSequence) Path(index int) string {
	return filepath.Join(p.Dir, fmt.Sprintf("%s_%05d.png", p.Prefix, index))
}

// FrameCollector keeps every delivered frame in memory.
type FrameCollector struct {
	Frames  []*image.RGBA
	Indices []int
}

// OnFrame appends buf.
func (c *FrameCollector) OnFrame(buf *image.RGBA, index int) error {
	c.Frames = append(c.Frames, buf)
	c.Indices = append(c.Indices, index)
	return nil
}

// Last returns the most recent frame, or nil.
func (c *FrameCollector) Last() *image.RGBA {
	if len(c.Frames) == 0 {
		return nil
	}
	return c.Frames[len(c.Frames)-1]
}

// Screenshot queues a labeled capture of the next rendered frame. The PNG is
// written to ScreenshotDir with a timestamped filename.
func (s *Scene) Screenshot(label string) {
	s.screenshotQueue = append(s.screenshotQueue, label)
}

// writeScreenshots writes buf once for every label. Failures are logged and
// never stop playback.
func (s *Scene) writeScreenshots(buf *image.RGBA, labels []string) {
	if len(labels) == 0 {
		return
	}
	if err := os.MkdirAll(s.ScreenshotDir, 0o755); err != nil {
		s.log.Warn("screenshot mkdir failed", "dir", s.ScreenshotDir, "err", err)
		return
	}
	img := unpremultiply(buf)
	stamp := time.Now().Format("20060102_150405")
	for _, label := range labels {
		path := filepath.Join(s.ScreenshotDir, fmt.Sprintf("%s_%s.png", stamp, sanitizeLabel(label)))
		if err := writePNG(path, img); err != nil {
			s.log.Warn("screenshot failed", "path", path, "err", err)
		}
	}
}

// unpremultiply converts premultiplied RGBA to straight-alpha NRGBA.
func unpremultiply(src *image.RGBA) *image.NRGBA {
	b := src.Bounds()
	img := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+4*b.Dx()]
		out := img.Pix[y*img.Stride:]
		for i := 0; i < len(row); i += 4 {
			r, g, bl, a := row[i], row[i+1], row[i+2], row[i+3]
			if a > 0 && a < 255 {
				r = uint8(min(int(r)*255/int(a), 255))
				g = uint8(min(int(g)*255/int(a), 255))
				bl = uint8(min(int(bl)*255/int(a), 255))
			}
			out[i] = r
			out[i+1] = g
			out[i+2] = bl
			out[i+3] = a
		}
	}
	return img
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
