package quill

import "math"

// Affine is a 2D affine matrix in the layout [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type Affine [6]float64

// Identity is the identity transform.
var Identity = Affine{1, 0, 0, 1, 0, 0}

// singularEpsilon is the |det| threshold below which a matrix is treated as
// non-invertible.
const singularEpsilon = 1e-12

// Translate returns a translation matrix.
func Translate(x, y float64) Affine { return Affine{1, 0, 0, 1, x, y} }

// ScaleXY returns a scale matrix about the origin.
func ScaleXY(sx, sy float64) Affine { return Affine{sx, 0, 0, sy, 0, 0} }

// Shear returns a horizontal shear matrix: x' = x + k*y.
func Shear(k float64) Affine { return Affine{1, 0, k, 1, 0, 0} }

// Rotation returns a counter-clockwise rotation matrix (radians, Y up).
func Rotation(theta float64) Affine {
	sin, cos := math.Sincos(theta)
	return Affine{cos, sin, -sin, cos, 0, 0}
}

// Compose returns parent ∘ child: the child transform is applied first.
func Compose(parent, child Affine) Affine {
	p, c := parent, child
	return Affine{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// Then returns m followed by next (next ∘ m).
func (m Affine) Then(next Affine) Affine {
	return Compose(next, m)
}

// Det returns the determinant of the linear part.
func (m Affine) Det() float64 {
	return m[0]*m[3] - m[2]*m[1]
}

// Invert returns the inverse matrix, or a *SingularTransformError when the
// determinant is (nearly) zero.
func (m Affine) Invert() (Affine, error) {
	det := m.Det()
	if det > -singularEpsilon && det < singularEpsilon {
		return Identity, &SingularTransformError{Matrix: m, Det: det}
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return Affine{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}, nil
}

// Apply transforms a point.
func (m Affine) Apply(p Vec2) Vec2 {
	return Vec2{m[0]*p.X + m[2]*p.Y + m[4], m[1]*p.X + m[3]*p.Y + m[5]}
}

// ApplyVector transforms a direction, ignoring translation.
func (m Affine) ApplyVector(v Vec2) Vec2 {
	return Vec2{m[0]*v.X + m[2]*v.Y, m[1]*v.X + m[3]*v.Y}
}

// IsIdentity reports whether m is exactly the identity.
func (m Affine) IsIdentity() bool {
	return m == Identity
}

// Near reports whether every element of m is within eps of o.
func (m Affine) Near(o Affine, eps float64) bool {
	for i := range m {
		if math.Abs(m[i]-o[i]) > eps {
			return false
		}
	}
	return true
}

func (m Affine) finite() bool {
	for _, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Components is the decomposed form of an affine matrix:
//
//	Translate(X, Y) · Rotation(Rotation) · Shear(Shear) · Scale(ScaleX, ScaleY)
//
// A reflection is carried as a negative ScaleY.
type Components struct {
	X, Y           float64
	Rotation       float64
	ScaleX, ScaleY float64
	Shear          float64
}

func (c Components) add(o Components) Components {
	return Components{
		X: c.X + o.X, Y: c.Y + o.Y,
		Rotation: c.Rotation + o.Rotation,
		ScaleX:   c.ScaleX + o.ScaleX, ScaleY: c.ScaleY + o.ScaleY,
		Shear: c.Shear + o.Shear,
	}
}

func (c Components) sub(o Components) Components {
	return c.add(Components{
		X: -o.X, Y: -o.Y,
		Rotation: -o.Rotation,
		ScaleX:   -o.ScaleX, ScaleY: -o.ScaleY,
		Shear: -o.Shear,
	})
}

// Matrix recomposes the components.
func (c Components) Matrix() Affine {
	sin, cos := math.Sincos(c.Rotation)
	// Shear·Scale = | sx  k*sy |
	//               | 0   sy   |
	a, b := c.ScaleX, 0.0
	cc, d := c.Shear*c.ScaleY, c.ScaleY
	return Affine{
		cos*a - sin*b,
		sin*a + cos*b,
		cos*cc - sin*d,
		sin*cc + cos*d,
		c.X, c.Y,
	}
}

// Decompose splits m into translation, rotation, shear and scale.
func (m Affine) Decompose() Components {
	a, b, c, d := m[0], m[1], m[2], m[3]
	out := Components{X: m[4], Y: m[5]}
	sx := math.Hypot(a, b)
	if sx < singularEpsilon {
		// Degenerate first column: keep what the second column says.
		out.ScaleY = math.Hypot(c, d)
		if out.ScaleY > singularEpsilon {
			out.Rotation = math.Atan2(-c, d)
		}
		return out
	}
	out.ScaleX = sx
	out.Rotation = math.Atan2(b, a)
	out.ScaleY = (a*d - b*c) / sx
	if math.Abs(out.ScaleY) > singularEpsilon {
		out.Shear = (a*c + b*d) / (sx * out.ScaleY)
	}
	return out
}

// InterpolateAffine blends two transforms. Translation, scale and shear are
// interpolated linearly; rotation follows the shortest arc so intermediate
// matrices never pick up the shearing a naive element-wise blend produces.
// alpha=0 returns a and alpha=1 returns b exactly.
func InterpolateAffine(a, b Affine, alpha float64) Affine {
	switch alpha {
	case 0:
		return a
	case 1:
		return b
	}
	ca, cb := a.Decompose(), b.Decompose()
	return Components{
		X:        lerp(ca.X, cb.X, alpha),
		Y:        lerp(ca.Y, cb.Y, alpha),
		Rotation: ca.Rotation + shortestAngle(ca.Rotation, cb.Rotation)*alpha,
		ScaleX:   lerp(ca.ScaleX, cb.ScaleX, alpha),
		ScaleY:   lerp(ca.ScaleY, cb.ScaleY, alpha),
		Shear:    lerp(ca.Shear, cb.Shear, alpha),
	}.Matrix()
}

// shortestAngle returns the signed angle in (-π, π] that rotates from to to.
func shortestAngle(from, to float64) float64 {
	d := math.Mod(to-from, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	} else if d <= -math.Pi {
		d += 2 * math.Pi
	}
	return d
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// TransformStack accumulates composed transforms during a depth-first walk.
// Push composes a local transform onto the current top.
type TransformStack struct {
	stack []Affine
}

// NewTransformStack returns a stack whose bottom entry is base.
func NewTransformStack(base Affine) *TransformStack {
	s := &TransformStack{stack: make([]Affine, 1, 16)}
	s.stack[0] = base
	return s
}

// Push composes local onto the top and returns the new top.
func (s *TransformStack) Push(local Affine) Affine {
	top := Compose(s.stack[len(s.stack)-1], local)
	s.stack = append(s.stack, top)
	return top
}

// Pop discards the top entry. Panics when only the base remains.
func (s *TransformStack) Pop() {
	if len(s.stack) <= 1 {
		panic("quill: transform stack underflow")
	}
	s.stack = s.stack[:len(s.stack)-1]
}

// Top returns the current accumulated transform.
func (s *TransformStack) Top() Affine {
	return s.stack[len(s.stack)-1]
}

// Depth returns the number of pushed entries above the base.
func (s *TransformStack) Depth() int {
	return len(s.stack) - 1
}

// Reset drops every pushed entry and replaces the base.
func (s *TransformStack) Reset(base Affine) {
	s.stack = s.stack[:1]
	s.stack[0] = base
}

// computeLocalTransform computes the local affine matrix from the mobject's
// transform properties.
//
// Composition order:
//
//	Translate(-PivotX, -PivotY) -> Scale -> Shear -> Rotate -> Translate(X, Y)
func computeLocalTransform(m *Mobject) Affine {
	sin, cos := math.Sincos(m.Rotation)

	// After Scale and Shear (pivot folded into the translation):
	a := m.ScaleX
	c := m.Shear * m.ScaleY
	d := m.ScaleY
	preTx := -(a*m.PivotX + c*m.PivotY)
	preTy := -d * m.PivotY

	// After Rotate (b is zero before rotation):
	ra := cos * a
	rb := sin * a
	rc := cos*c - sin*d
	rd := sin*c + cos*d
	rtx := cos*preTx - sin*preTy
	rty := sin*preTx + cos*preTy

	// After Translate(X, Y):
	return Affine{ra, rb, rc, rd, rtx + m.X, rty + m.Y}
}
