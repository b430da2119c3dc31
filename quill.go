package quill

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// Palette used by the shape constructors and scene scripts.
var (
	ColorWhite       = Color{1, 1, 1, 1}
	ColorBlack       = Color{0, 0, 0, 1}
	ColorTransparent = Color{}
	ColorRed         = Color{0.988, 0.384, 0.333, 1}
	ColorGreen       = Color{0.514, 0.757, 0.404, 1}
	ColorBlue        = Color{0.345, 0.769, 0.867, 1}
	ColorYellow      = Color{1, 1, 0.4, 1}
	ColorPurple      = Color{0.604, 0.447, 0.675, 1}
	ColorOrange      = Color{1, 0.525, 0.184, 1}
	ColorGray        = Color{0.533, 0.533, 0.533, 1}
)

var namedColors = map[string]Color{
	"white":       ColorWhite,
	"black":       ColorBlack,
	"transparent": ColorTransparent,
	"red":         ColorRed,
	"green":       ColorGreen,
	"blue":        ColorBlue,
	"yellow":      ColorYellow,
	"purple":      ColorPurple,
	"orange":      ColorOrange,
	"gray":        ColorGray,
	"grey":        ColorGray,
}

// ParseColor accepts a palette name ("red", "blue", ...) or a hex string in
// the forms #RGB, #RRGGBB or #RRGGBBAA.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	hex := strings.TrimPrefix(s, "#")
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]}) + "ff"
	case 6:
		hex += "ff"
	case 8:
	default:
		return Color{}, fmt.Errorf("parse color %q: unknown name or hex length", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return Color{
		R: float64(v>>24&0xff) / 255,
		G: float64(v>>16&0xff) / 255,
		B: float64(v>>8&0xff) / 255,
		A: float64(v&0xff) / 255,
	}, nil
}

// Lerp interpolates each component linearly. alpha=0 returns c and alpha=1
// returns to exactly.
func (c Color) Lerp(to Color, alpha float64) Color {
	switch alpha {
	case 0:
		return c
	case 1:
		return to
	}
	return Color{
		R: c.R + (to.R-c.R)*alpha,
		G: c.G + (to.G-c.G)*alpha,
		B: c.B + (to.B-c.B)*alpha,
		A: c.A + (to.A-c.A)*alpha,
	}
}

// Hex formats c as #RRGGBBAA.
func (c Color) Hex() string {
	b := func(v float64) uint8 { return uint8(math.Round(clamp01(v) * 255)) }
	return fmt.Sprintf("#%02x%02x%02x%02x", b(c.R), b(c.G), b(c.B), b(c.A))
}

// WithAlpha returns c with its alpha replaced.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// RGBA converts c to a premultiplied color.RGBA.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{
		R: uint8(math.Round(clamp01(c.R*c.A) * 255)),
		G: uint8(math.Round(clamp01(c.G*c.A) * 255)),
		B: uint8(math.Round(clamp01(c.B*c.A) * 255)),
		A: uint8(math.Round(clamp01(c.A) * 255)),
	}
}

// Vec2 is a 2D vector used for positions, offsets, sizes, and directions
// throughout the API. Scene space has Y pointing up.
type Vec2 struct {
	X, Y float64
}

// Direction constants in scene units.
var (
	Origin = Vec2{}
	Up     = Vec2{0, 1}
	Down   = Vec2{0, -1}
	Left   = Vec2{-1, 0}
	Right  = Vec2{1, 0}
)

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Dot(o Vec2) float64   { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Cross(o Vec2) float64 { return v.X*o.Y - v.Y*o.X }
func (v Vec2) Len() float64         { return math.Hypot(v.X, v.Y) }
func (v Vec2) Dist(o Vec2) float64  { return math.Hypot(o.X-v.X, o.Y-v.Y) }
func (v Vec2) Perp() Vec2           { return Vec2{-v.Y, v.X} }
func (v Vec2) Eq(o Vec2, eps float64) bool {
	return math.Abs(v.X-o.X) <= eps && math.Abs(v.Y-o.Y) <= eps
}

// Lerp interpolates between v and o. alpha=0 returns v and alpha=1 returns o
// exactly.
func (v Vec2) Lerp(o Vec2, alpha float64) Vec2 {
	switch alpha {
	case 0:
		return v
	case 1:
		return o
	}
	return Vec2{v.X + (o.X-v.X)*alpha, v.Y + (o.Y-v.Y)*alpha}
}

// Normalize returns the unit vector in v's direction, or the zero vector
// when v is (nearly) zero.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l < 1e-12 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

func (v Vec2) finite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// Rect is an axis-aligned rectangle given by its minimum corner and size.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Union returns the smallest rect containing both rects. The zero Rect
// contributes nothing.
func (r Rect) Union(other Rect) Rect {
	if r == (Rect{}) {
		return other
	}
	if other == (Rect{}) {
		return r
	}
	minX := min(r.X, other.X)
	minY := min(r.Y, other.Y)
	maxX := max(r.X+r.Width, other.X+other.Width)
	maxY := max(r.Y+r.Height, other.Y+other.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Center returns the center point of the rect.
func (r Rect) Center() Vec2 {
	return Vec2{r.X + r.Width/2, r.Y + r.Height/2}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
