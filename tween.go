package quill

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 float64 fields of a Mobject toward absolute
// target values using gween tweens. Start values are read when the
// animation begins. Unlike the transform-channel animations it writes
// absolute values, so it overrides anything else driving the same fields.
//
// The easing comes from the gween function; the timeline rate is Linear.
type TweenGroup struct {
	Base
	tweens [4]*gween.Tween
	count  int
	fields [4]*float64
	to     [4]float64
	fn     ease.TweenFunc
}

func newTweenGroup(name string, m *Mobject, duration float64, fn ease.TweenFunc) *TweenGroup {
	if fn == nil {
		fn = ease.Linear
	}
	return &TweenGroup{
		Base: NewBase(name, m, WithDuration(duration), WithRate(Linear)),
		fn:   fn,
	}
}

func (g *TweenGroup) add(field *float64, to float64) {
	g.fields[g.count] = field
	g.to[g.count] = to
	g.count++
}

// Begin creates the tweens from the fields' current values.
func (g *TweenGroup) Begin() error {
	for i := 0; i < g.count; i++ {
		g.tweens[i] = gween.New(float32(*g.fields[i]), float32(g.to[i]), float32(g.duration), g.fn)
	}
	return nil
}

// Interpolate seeks every tween to alpha·duration and writes the values.
func (g *TweenGroup) Interpolate(alpha float64) error {
	if g.duration <= 0 {
		return nil
	}
	for i := 0; i < g.count; i++ {
		val, _ := g.tweens[i].Set(float32(alpha * g.duration))
		*g.fields[i] = float64(val)
	}
	return nil
}

// Finish writes the exact float64 targets, removing float32 rounding.
func (g *TweenGroup) Finish() error {
	for i := 0; i < g.count; i++ {
		*g.fields[i] = g.to[i]
	}
	return nil
}

// TweenPosition animates m.X and m.Y to to.
func TweenPosition(m *Mobject, to Vec2, duration float64, fn ease.TweenFunc) *TweenGroup {
	g := newTweenGroup("TweenPosition", m, duration, fn)
	g.add(&m.X, to.X)
	g.add(&m.Y, to.Y)
	return g
}

// TweenScale animates m.ScaleX and m.ScaleY.
func TweenScale(m *Mobject, sx, sy float64, duration float64, fn ease.TweenFunc) *TweenGroup {
	g := newTweenGroup("TweenScale", m, duration, fn)
	g.add(&m.ScaleX, sx)
	g.add(&m.ScaleY, sy)
	return g
}

// TweenOpacity animates m.Opacity.
func TweenOpacity(m *Mobject, to float64, duration float64, fn ease.TweenFunc) *TweenGroup {
	g := newTweenGroup("TweenOpacity", m, duration, fn)
	g.add(&m.Opacity, to)
	return g
}

// TweenRotation animates m.Rotation to an absolute angle in radians.
func TweenRotation(m *Mobject, to float64, duration float64, fn ease.TweenFunc) *TweenGroup {
	g := newTweenGroup("TweenRotation", m, duration, fn)
	g.add(&m.Rotation, to)
	return g
}

// TweenColor animates all four components of m's fill color. m gets a
// style override seeded from its first path when it has none.
func TweenColor(m *Mobject, to Color, duration float64, fn ease.TweenFunc) *TweenGroup {
	if m.Style == nil {
		s := DefaultStyle
		if len(m.Paths) > 0 {
			s = m.Paths[0].Style
		}
		m.Style = &s
	}
	g := newTweenGroup("TweenColor", m, duration, fn)
	g.add(&m.Style.FillColor.R, to.R)
	g.add(&m.Style.FillColor.G, to.G)
	g.add(&m.Style.FillColor.B, to.B)
	g.add(&m.Style.FillColor.A, to.A)
	return g
}
