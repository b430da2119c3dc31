package quill

import "math"

// --- Transform channel ---
//
// Transform-channel animations apply the change since their previous sample
// instead of writing absolute values, so overlapping animations and updaters
// on the same channel add up.

type shiftAnim struct {
	Base
	delta Vec2
	to    *Vec2
	prev  float64
}

// Shift moves m by d over the animation.
func Shift(m *Mobject, d Vec2, opts ...AnimOption) Animation {
	return &shiftAnim{Base: NewBase("Shift", m, opts...), delta: d}
}

// MoveTo moves m's local origin to p. The offset is measured when the
// animation begins.
func MoveTo(m *Mobject, p Vec2, opts ...AnimOption) Animation {
	return &shiftAnim{Base: NewBase("MoveTo", m, opts...), to: &p}
}

func (a *shiftAnim) Begin() error {
	a.prev = 0
	if a.to != nil {
		a.delta = a.to.Sub(a.target.Position())
	}
	return nil
}

func (a *shiftAnim) Interpolate(alpha float64) error {
	a.target.Shift(a.delta.Scale(alpha - a.prev))
	a.prev = alpha
	return nil
}

type rotateAnim struct {
	Base
	angle float64
	prev  float64
}

// Rotate turns m by angle radians (counter-clockwise) about its pivot.
func Rotate(m *Mobject, angle float64, opts ...AnimOption) Animation {
	return &rotateAnim{Base: NewBase("Rotate", m, opts...), angle: angle}
}

func (a *rotateAnim) Begin() error {
	a.prev = 0
	return nil
}

func (a *rotateAnim) Interpolate(alpha float64) error {
	a.target.Rotation += a.angle * (alpha - a.prev)
	a.prev = alpha
	return nil
}

type scaleAnim struct {
	Base
	factor float64
	prev   float64
	baseX  float64
	baseY  float64
}

// Scale multiplies m's scale by factor about its pivot.
func Scale(m *Mobject, factor float64, opts ...AnimOption) Animation {
	return &scaleAnim{Base: NewBase("Scale", m, opts...), factor: factor}
}

func (a *scaleAnim) Begin() error {
	a.prev = 0
	a.baseX, a.baseY = a.target.ScaleX, a.target.ScaleY
	return nil
}

func (a *scaleAnim) Interpolate(alpha float64) error {
	prevF := lerp(1, a.factor, a.prev)
	curF := lerp(1, a.factor, alpha)
	if math.Abs(prevF) < singularEpsilon {
		// The previous sample collapsed the scale; ratios are lost.
		a.target.ScaleX = a.baseX * curF
		a.target.ScaleY = a.baseY * curF
	} else {
		r := curF / prevF
		a.target.ScaleX *= r
		a.target.ScaleY *= r
	}
	a.prev = alpha
	return nil
}

type matrixAnim struct {
	Base
	m     Affine
	start Affine
	// Components written on the previous frame, and the sum of changes
	// other animations and updaters made since Begin.
	written Components
	ext     Components
}

// ApplyMatrix applies the affine m on top of the target's local transform.
// Intermediate frames follow InterpolateAffine(Identity, m, alpha); changes
// made to the target by other writers while it runs are carried over.
func ApplyMatrix(target *Mobject, m Affine, opts ...AnimOption) Animation {
	return &matrixAnim{Base: NewBase("ApplyMatrix", target, opts...), m: m}
}

func (a *matrixAnim) Begin() error {
	a.start = a.target.Local()
	a.written = a.target.components()
	a.ext = Components{}
	return nil
}

func (a *matrixAnim) Interpolate(alpha float64) error {
	a.ext = a.ext.add(a.target.components().sub(a.written))
	a.target.SetLocal(Compose(InterpolateAffine(Identity, a.m, alpha), a.start))
	a.written = a.target.components().add(a.ext)
	a.target.setComponents(a.written)
	return nil
}

// --- Opacity and color ---

type fadeAnim struct {
	Base
	in      bool
	opacity float64
}

// FadeIn raises m's opacity from 0 to its current value, adding m to the
// scene first if needed.
func FadeIn(m *Mobject, opts ...AnimOption) Animation {
	a := &fadeAnim{Base: NewBase("FadeIn", m, opts...), in: true}
	a.introducer = true
	return a
}

// FadeOut lowers m's opacity to 0 and removes m from the scene when done.
// The opacity is restored after removal so m can be added again.
func FadeOut(m *Mobject, opts ...AnimOption) Animation {
	a := &fadeAnim{Base: NewBase("FadeOut", m, opts...)}
	a.remover = true
	return a
}

func (a *fadeAnim) Begin() error {
	a.opacity = a.target.Opacity
	return nil
}

func (a *fadeAnim) Interpolate(alpha float64) error {
	if a.in {
		a.target.Opacity = a.opacity * alpha
	} else {
		a.target.Opacity = a.opacity * (1 - alpha)
	}
	return nil
}

// Finish pins the exact end opacity. FadeOut restores the original value;
// the target is detached on the same tick so it is never drawn.
func (a *fadeAnim) Finish() error {
	a.target.Opacity = a.opacity
	return nil
}

// styleSnapshot records the style of every path in a family.
type styleSnapshot struct {
	mobs   []*Mobject
	styles [][]Style
	over   []*Style
}

func captureStyles(m *Mobject) styleSnapshot {
	var s styleSnapshot
	for _, f := range m.Family() {
		st := make([]Style, len(f.Paths))
		for i := range f.Paths {
			st[i] = f.Paths[i].Style
		}
		var over *Style
		if f.Style != nil {
			o := *f.Style
			over = &o
		}
		s.mobs = append(s.mobs, f)
		s.styles = append(s.styles, st)
		s.over = append(s.over, over)
	}
	return s
}

type colorAnim struct {
	Base
	color Color
	start styleSnapshot
}

// FadeToColor blends the fill and stroke colors of m's family toward c.
// Each color keeps its own alpha.
func FadeToColor(m *Mobject, c Color, opts ...AnimOption) Animation {
	return &colorAnim{Base: NewBase("FadeToColor", m, opts...), color: c}
}

func (a *colorAnim) Begin() error {
	a.start = captureStyles(a.target)
	return nil
}

func (a *colorAnim) Interpolate(alpha float64) error {
	blend := func(from Style) Style {
		from.FillColor = from.FillColor.Lerp(a.color.WithAlpha(from.FillColor.A), alpha)
		from.StrokeColor = from.StrokeColor.Lerp(a.color.WithAlpha(from.StrokeColor.A), alpha)
		return from
	}
	for i, f := range a.start.mobs {
		for j := range f.Paths {
			if j < len(a.start.styles[i]) {
				f.Paths[j].Style = blend(a.start.styles[i][j])
			}
		}
		if a.start.over[i] != nil && f.Style != nil {
			*f.Style = blend(*a.start.over[i])
		}
	}
	return nil
}

// --- Geometry ---

// pathSnapshot records the paths of every member of a family.
type pathSnapshot struct {
	mobs  []*Mobject
	paths [][]Path
}

func capturePaths(m *Mobject) pathSnapshot {
	var s pathSnapshot
	for _, f := range m.Family() {
		ps := make([]Path, len(f.Paths))
		for i, p := range f.Paths {
			ps[i] = p.Clone()
		}
		s.mobs = append(s.mobs, f)
		s.paths = append(s.paths, ps)
	}
	return s
}

func (s pathSnapshot) restore() {
	for i, f := range s.mobs {
		f.Paths = make([]Path, len(s.paths[i]))
		for j, p := range s.paths[i] {
			f.Paths[j] = p.Clone()
		}
	}
}

type createAnim struct {
	Base
	reverse bool
	orig    pathSnapshot
}

// Create draws m's family progressively along each path, adding m to the
// scene first if needed.
func Create(m *Mobject, opts ...AnimOption) Animation {
	a := &createAnim{Base: NewBase("Create", m, opts...)}
	a.introducer = true
	return a
}

// Uncreate erases m's family progressively and removes m when done.
func Uncreate(m *Mobject, opts ...AnimOption) Animation {
	a := &createAnim{Base: NewBase("Uncreate", m, opts...), reverse: true}
	a.remover = true
	return a
}

func (a *createAnim) Begin() error {
	a.orig = capturePaths(a.target)
	return nil
}

func (a *createAnim) Interpolate(alpha float64) error {
	end := alpha
	if a.reverse {
		end = 1 - alpha
	}
	for i, f := range a.orig.mobs {
		for j, p := range a.orig.paths[i] {
			if j < len(f.Paths) {
				f.Paths[j] = p.Partial(0, end)
			}
		}
	}
	return nil
}

func (a *createAnim) Finish() error {
	a.orig.restore()
	return nil
}

type morphAnim struct {
	Base
	into    *Mobject
	replace bool
	start   []Path
	end     []Path
	final   []Path
}

// Transform morphs m's own paths into the geometry and style of into's
// family. into is not added to the scene; m keeps its identity.
func Transform(m, into *Mobject, opts ...AnimOption) Animation {
	return &morphAnim{Base: NewBase("Transform", m, opts...), into: into}
}

// ReplacementTransform morphs m into into and then puts into in m's place
// in the tree.
func ReplacementTransform(m, into *Mobject, opts ...AnimOption) Animation {
	return &morphAnim{Base: NewBase("ReplacementTransform", m, opts...), into: into, replace: true}
}

func (a *morphAnim) Begin() error {
	if a.into == nil {
		return &GeometryError{Op: "transform", Mobject: a.target.label(), Reason: "nil destination"}
	}
	inv, err := a.target.WorldTransform().Invert()
	if err != nil {
		return err
	}
	// Destination geometry expressed in the target's local space.
	var dest []Path
	for _, f := range a.into.Family() {
		toLocal := Compose(inv, f.WorldTransform())
		for i, p := range f.Paths {
			q := p.Transform(toLocal)
			q.Style = f.pathStyle(i)
			dest = append(dest, q)
		}
	}
	a.final = dest
	src := make([]Path, len(a.target.Paths))
	for i := range a.target.Paths {
		src[i] = a.target.Paths[i].Clone()
		src[i].Style = a.target.pathStyle(i)
	}
	a.start, a.end, err = AlignPaths(src, dest, a.align)
	if err != nil {
		return &GeometryError{Op: "transform", Mobject: a.target.label(), Reason: err.Error()}
	}
	a.target.Style = nil
	return nil
}

func (a *morphAnim) Interpolate(alpha float64) error {
	paths := make([]Path, len(a.start))
	for i := range a.start {
		p, err := PointwiseInterpolate(a.start[i], a.end[i], alpha)
		if err != nil {
			return err
		}
		paths[i] = p
	}
	a.target.Paths = paths
	return nil
}

func (a *morphAnim) Finish() error {
	if !a.replace {
		a.target.Paths = make([]Path, len(a.final))
		for i, p := range a.final {
			a.target.Paths[i] = p.Clone()
		}
		return nil
	}
	parent := a.target.Parent()
	if parent == nil {
		return nil
	}
	return parent.ReplaceChild(a.target, a.into)
}
