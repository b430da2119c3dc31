package glyph

import (
	"errors"
	"testing"

	"golang.org/x/image/font/gofont/gomono"
)

func TestDefaultGlyph(t *testing.T) {
	src := Default()
	if src.Fonts() != 1 {
		t.Fatalf("fonts = %d, want 1", src.Fonts())
	}
	g, err := src.Glyph("goregular", 'A', 1)
	if err != nil {
		t.Fatal(err)
	}
	if g.Path.IsEmpty() || !g.Path.Closed {
		t.Fatalf("'A' outline: %d segments, closed=%v", len(g.Path.Segments), g.Path.Closed)
	}
	if !(g.Advance > 0 && g.Advance < 1) {
		t.Errorf("advance = %v, want within (0, 1) em", g.Advance)
	}
	// 'A' sits on the baseline and rises above it.
	b := g.Path.Bounds()
	if b.Y < -0.01 || b.Y+b.Height < 0.5 {
		t.Errorf("bounds = %+v, want ink above the baseline", b)
	}
}

func TestGlyphScalesWithSize(t *testing.T) {
	src := Default()
	small, err := src.Glyph("goregular", 'H', 1)
	if err != nil {
		t.Fatal(err)
	}
	big, err := src.Glyph("goregular", 'H', 3)
	if err != nil {
		t.Fatal(err)
	}
	if d := big.Advance - 3*small.Advance; d > 1e-9 || d < -1e-9 {
		t.Errorf("advance %v at size 3, want %v", big.Advance, 3*small.Advance)
	}
	if d := big.Path.Bounds().Height - 3*small.Path.Bounds().Height; d > 1e-9 || d < -1e-9 {
		t.Errorf("height did not scale: %v vs %v", big.Path.Bounds().Height, small.Path.Bounds().Height)
	}
}

func TestGlyphSpace(t *testing.T) {
	g, err := Default().Glyph("goregular", ' ', 1)
	if err != nil {
		t.Fatal(err)
	}
	if !g.Path.IsEmpty() {
		t.Errorf("space has %d segments, want none", len(g.Path.Segments))
	}
	if !(g.Advance > 0) {
		t.Errorf("space advance = %v", g.Advance)
	}
}

func TestGlyphErrors(t *testing.T) {
	src := Default()
	if _, err := src.Glyph("comic", 'A', 1); !errors.Is(err, ErrUnknownFont) {
		t.Errorf("unknown font err = %v", err)
	}
	if _, err := src.Glyph("goregular", 'A', 0); err == nil {
		t.Error("zero size should fail")
	}
	if err := src.Register("broken", []byte("not a font")); err == nil {
		t.Error("Register with garbage should fail")
	}
}

func TestRegister(t *testing.T) {
	src := NewSource()
	if err := src.Register("mono", gomono.TTF); err != nil {
		t.Fatal(err)
	}
	i, err := src.Glyph("mono", 'i', 1)
	if err != nil {
		t.Fatal(err)
	}
	m, err := src.Glyph("mono", 'm', 1)
	if err != nil {
		t.Fatal(err)
	}
	if i.Advance != m.Advance {
		t.Errorf("monospace advances differ: %v vs %v", i.Advance, m.Advance)
	}
}
