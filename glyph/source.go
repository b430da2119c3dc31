// Package glyph supplies quill text with glyph outlines read from TrueType
// and OpenType fonts.
package glyph

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/phanxgames/quill"
)

// ErrUnknownFont is returned for a font name that was never registered.
var ErrUnknownFont = errors.New("glyph: unknown font")

// Source converts sfnt glyph outlines into quill paths. Fonts are
// registered by name. A Source is safe for concurrent use.
type Source struct {
	mu    sync.Mutex
	fonts map[string]*sfnt.Font
	buf   sfnt.Buffer
}

// NewSource returns a Source with no fonts.
func NewSource() *Source {
	return &Source{fonts: make(map[string]*sfnt.Font)}
}

// Default returns a Source with Go Regular registered as "goregular".
func Default() *Source {
	s := NewSource()
	if err := s.Register("goregular", goregular.TTF); err != nil {
		panic("glyph: embedded Go Regular failed to parse: " + err.Error())
	}
	return s
}

// Register parses ttf and makes it available under name, replacing any
// font registered under the same name.
func (s *Source) Register(name string, ttf []byte) error {
	f, err := sfnt.Parse(ttf)
	if err != nil {
		return fmt.Errorf("glyph: parse %s: %w", name, err)
	}
	s.mu.Lock()
	s.fonts[name] = f
	s.mu.Unlock()
	return nil
}

// Fonts returns the number of registered fonts.
func (s *Source) Fonts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fonts)
}

// Glyph returns the outline of r in font scaled so one em spans size scene
// units. The path has Y up and its pen origin on the baseline. Runes the
// font lacks map to its .notdef glyph.
func (s *Source) Glyph(name string, r rune, size float64) (quill.GlyphOutline, error) {
	if !(size > 0) {
		return quill.GlyphOutline{}, fmt.Errorf("glyph: size must be positive, got %v", size)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.fonts[name]
	if !ok {
		return quill.GlyphOutline{}, fmt.Errorf("%w %q", ErrUnknownFont, name)
	}
	gid, err := f.GlyphIndex(&s.buf, r)
	if err != nil {
		return quill.GlyphOutline{}, fmt.Errorf("glyph: index %q: %w", r, err)
	}

	// Load at one pixel per font unit for full precision, then scale.
	upem := float64(f.UnitsPerEm())
	ppem := fixed.Int26_6(f.UnitsPerEm()) << 6
	scale := size / upem

	adv, err := f.GlyphAdvance(&s.buf, gid, ppem, font.HintingNone)
	if err != nil {
		return quill.GlyphOutline{}, fmt.Errorf("glyph: advance %q: %w", r, err)
	}
	segs, err := f.LoadGlyph(&s.buf, gid, ppem, nil)
	if err != nil {
		return quill.GlyphOutline{}, fmt.Errorf("glyph: load %q: %w", r, err)
	}
	return quill.GlyphOutline{
		Path:    outlinePath(segs, scale),
		Advance: fixedToFloat(adv) * scale,
	}, nil
}

// outlinePath converts sfnt segments (Y down) into a closed quill path
// (Y up). Quadratic curves are elevated to cubics, and every contour gets
// an explicit closing line when its last point misses its first.
func outlinePath(segs sfnt.Segments, scale float64) quill.Path {
	pt := func(p fixed.Point26_6) quill.Vec2 {
		return quill.Vec2{X: fixedToFloat(p.X) * scale, Y: -fixedToFloat(p.Y) * scale}
	}
	var out []quill.Segment
	var start, pen quill.Vec2
	closeContour := func() {
		if len(out) > 0 && !pen.Eq(start, 1e-12) {
			out = append(out, quill.LineSegment(pen, start))
		}
		pen = start
	}
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			closeContour()
			start, pen = pt(seg.Args[0]), pt(seg.Args[0])
		case sfnt.SegmentOpLineTo:
			to := pt(seg.Args[0])
			out = append(out, quill.LineSegment(pen, to))
			pen = to
		case sfnt.SegmentOpQuadTo:
			to := pt(seg.Args[1])
			out = append(out, quill.QuadSegment(pen, pt(seg.Args[0]), to))
			pen = to
		case sfnt.SegmentOpCubeTo:
			to := pt(seg.Args[2])
			out = append(out, quill.Segment{pen, pt(seg.Args[0]), pt(seg.Args[1]), to})
			pen = to
		}
	}
	closeContour()
	if len(out) == 0 {
		return quill.Path{}
	}
	return quill.Path{Segments: out, Closed: true}
}

// fixedToFloat converts fixed.Int26_6 to float64.
func fixedToFloat(x fixed.Int26_6) float64 {
	return float64(x) / 64
}
