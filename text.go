package quill

import (
	"fmt"
	"strings"
)

// GlyphOutline is a glyph converted to a path. The path is in scene units
// for the requested size, with the pen at the origin on the baseline and Y
// pointing up. Advance is the horizontal pen movement after the glyph.
type GlyphOutline struct {
	Path    Path
	Advance float64
}

// GlyphSource supplies glyph outlines keyed by font name, codepoint and
// size. Text layout asks for every glyph it places and never caches;
// sources that are expensive should cache themselves.
type GlyphSource interface {
	Glyph(font string, r rune, size float64) (GlyphOutline, error)
}

// TextAlign controls horizontal alignment of text lines.
type TextAlign uint8

const (
	TextAlignLeft TextAlign = iota
	TextAlignCenter
	TextAlignRight
)

// TextStyle configures text layout.
type TextStyle struct {
	Size float64
	// LineHeight is the baseline-to-baseline distance as a multiple of
	// Size. Zero means 1.2.
	LineHeight float64
	Align      TextAlign
	Fill       Color
}

// NewText lays content out with the glyphs of font at the given size,
// center-aligned and filled white. See NewTextStyled.
func NewText(src GlyphSource, font, content string, size float64) (*Mobject, error) {
	return NewTextStyled(src, font, content, TextStyle{Size: size, Align: TextAlignCenter, Fill: ColorWhite})
}

// NewTextStyled builds a group with one child per visible glyph, placed
// along the baseline by the advances the source reports. Lines are split on
// '\n'. The block is centered on the group's origin.
func NewTextStyled(src GlyphSource, font, content string, st TextStyle) (*Mobject, error) {
	if src == nil {
		return nil, fmt.Errorf("text %q: nil glyph source", content)
	}
	if !(st.Size > 0) {
		return nil, fmt.Errorf("text %q: size must be positive, got %v", content, st.Size)
	}
	lh := st.LineHeight
	if lh <= 0 {
		lh = 1.2
	}
	lh *= st.Size

	group := NewMobject(content)
	type line struct {
		glyphs []*Mobject
		width  float64
	}
	var lines []line
	maxW := 0.0
	for li, text := range strings.Split(content, "\n") {
		var ln line
		pen := 0.0
		for _, r := range text {
			g, err := src.Glyph(font, r, st.Size)
			if err != nil {
				return nil, fmt.Errorf("text %q: glyph %q: %w", content, r, err)
			}
			if !g.Path.IsEmpty() {
				p := g.Path.Clone()
				p.Style = Style{FillColor: st.Fill, Opacity: 1}
				gm := NewMobject(string(r), p)
				gm.X, gm.Y = pen, -float64(li)*lh
				ln.glyphs = append(ln.glyphs, gm)
			}
			pen += g.Advance
		}
		ln.width = pen
		maxW = max(maxW, pen)
		lines = append(lines, ln)
	}

	for _, ln := range lines {
		offset := 0.0
		switch st.Align {
		case TextAlignCenter:
			offset = (maxW - ln.width) / 2
		case TextAlignRight:
			offset = maxW - ln.width
		}
		for _, gm := range ln.glyphs {
			gm.X += offset
			if err := group.AddChild(gm); err != nil {
				return nil, err
			}
		}
	}

	// Center the ink box on the origin.
	if group.NumChildren() > 0 {
		c := group.Bounds().Center()
		for _, gm := range group.children {
			gm.X -= c.X
			gm.Y -= c.Y
		}
	}
	return group, nil
}
