package quill

import "math"

// Segment is one cubic Bézier curve: anchor, handle, handle, anchor.
type Segment [4]Vec2

const (
	// maxLengthSamples caps the doubling refinement of Segment.Length.
	maxLengthSamples = 1 << 12
	// maxFlattenDepth caps recursive subdivision while flattening.
	maxFlattenDepth = 16
)

// LineSegment returns a straight segment from a to b with handles at the
// thirds, so that evaluation is uniform along the line.
func LineSegment(a, b Vec2) Segment {
	return Segment{a, a.Lerp(b, 1.0/3), a.Lerp(b, 2.0/3), b}
}

// QuadSegment elevates a quadratic Bézier (a, ctrl, b) to a cubic.
func QuadSegment(a, ctrl, b Vec2) Segment {
	return Segment{
		a,
		a.Add(ctrl.Sub(a).Scale(2.0 / 3)),
		b.Add(ctrl.Sub(b).Scale(2.0 / 3)),
		b,
	}
}

// Start returns the first anchor.
func (s Segment) Start() Vec2 { return s[0] }

// End returns the last anchor.
func (s Segment) End() Vec2 { return s[3] }

// Eval returns the point at parameter t using De Casteljau's algorithm.
// Only convex combinations are formed, and t=0 and t=1 return the anchors
// exactly, so repeated subdivision near the ends does not drift.
func (s Segment) Eval(t float64) Vec2 {
	if t <= 0 {
		return s[0]
	}
	if t >= 1 {
		return s[3]
	}
	p01 := s[0].Lerp(s[1], t)
	p12 := s[1].Lerp(s[2], t)
	p23 := s[2].Lerp(s[3], t)
	p012 := p01.Lerp(p12, t)
	p123 := p12.Lerp(p23, t)
	return p012.Lerp(p123, t)
}

// Split subdivides the segment at t, returning the halves [0,t] and [t,1].
// The shared point is identical in both halves.
func (s Segment) Split(t float64) (Segment, Segment) {
	t = clamp01(t)
	p01 := s[0].Lerp(s[1], t)
	p12 := s[1].Lerp(s[2], t)
	p23 := s[2].Lerp(s[3], t)
	p012 := p01.Lerp(p12, t)
	p123 := p12.Lerp(p23, t)
	mid := p012.Lerp(p123, t)
	return Segment{s[0], p01, p012, mid}, Segment{mid, p123, p23, s[3]}
}

// Sub returns the portion of the curve between parameters t0 and t1.
func (s Segment) Sub(t0, t1 float64) Segment {
	t0, t1 = clamp01(t0), clamp01(t1)
	if t0 > t1 {
		return s.Sub(t1, t0).Reverse()
	}
	if t1 <= 0 {
		return Segment{s[0], s[0], s[0], s[0]}
	}
	left, _ := s.Split(t1)
	if t0 <= 0 {
		return left
	}
	_, mid := left.Split(t0 / t1)
	return mid
}

// Derivative returns the tangent vector at t.
func (s Segment) Derivative(t float64) Vec2 {
	u := 1 - t
	d0 := s[1].Sub(s[0]).Scale(3 * u * u)
	d1 := s[2].Sub(s[1]).Scale(6 * u * t)
	d2 := s[3].Sub(s[2]).Scale(3 * t * t)
	return d0.Add(d1).Add(d2)
}

// Reverse returns the same curve traversed backwards.
func (s Segment) Reverse() Segment {
	return Segment{s[3], s[2], s[1], s[0]}
}

// Transform applies m to all four control points. Affine maps preserve
// Bézier curves, so the result is exact.
func (s Segment) Transform(m Affine) Segment {
	return Segment{m.Apply(s[0]), m.Apply(s[1]), m.Apply(s[2]), m.Apply(s[3])}
}

// Lerp interpolates control points pointwise.
func (s Segment) Lerp(o Segment, alpha float64) Segment {
	return Segment{
		s[0].Lerp(o[0], alpha),
		s[1].Lerp(o[1], alpha),
		s[2].Lerp(o[2], alpha),
		s[3].Lerp(o[3], alpha),
	}
}

// IsDegenerate reports whether all control points coincide within eps.
func (s Segment) IsDegenerate(eps float64) bool {
	return s[1].Eq(s[0], eps) && s[2].Eq(s[0], eps) && s[3].Eq(s[0], eps)
}

func (s Segment) finite() bool {
	return s[0].finite() && s[1].finite() && s[2].finite() && s[3].finite()
}

// flatness returns the largest distance of the handles from the chord.
func (s Segment) flatness() float64 {
	chord := s[3].Sub(s[0])
	l := chord.Len()
	if l < 1e-12 {
		return max(s[1].Dist(s[0]), s[2].Dist(s[0]))
	}
	d1 := math.Abs(chord.Cross(s[1].Sub(s[0]))) / l
	d2 := math.Abs(chord.Cross(s[2].Sub(s[0]))) / l
	return max(d1, d2)
}

// Flat reports whether both handles lie within tol of the chord.
func (s Segment) Flat(tol float64) bool { return s.flatness() <= tol }

// chordSum evaluates the curve at n+1 uniform parameters and sums the
// distances between consecutive samples.
func (s Segment) chordSum(n int) float64 {
	sum := 0.0
	prev := s[0]
	for i := 1; i <= n; i++ {
		p := s.Eval(float64(i) / float64(n))
		sum += prev.Dist(p)
		prev = p
	}
	return sum
}

// Length estimates the arc length. The sample count doubles until two
// consecutive chord-sum estimates differ by less than tol.
func (s Segment) Length(tol float64) float64 {
	if tol <= 0 {
		tol = 1e-6
	}
	if s.IsDegenerate(0) {
		return 0
	}
	prev := s.chordSum(1)
	for n := 2; n <= maxLengthSamples; n *= 2 {
		cur := s.chordSum(n)
		if math.Abs(cur-prev) < tol {
			return cur
		}
		prev = cur
	}
	return prev
}

// Bounds returns the exact axis-aligned bounds of the curve, found from the
// roots of the derivative on each axis.
func (s Segment) Bounds() Rect {
	minX, maxX := min(s[0].X, s[3].X), max(s[0].X, s[3].X)
	minY, maxY := min(s[0].Y, s[3].Y), max(s[0].Y, s[3].Y)
	for _, t := range s.extremaT() {
		p := s.Eval(t)
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// extremaT returns the parameters in (0,1) where either coordinate of the
// derivative vanishes.
func (s Segment) extremaT() []float64 {
	var out []float64
	axis := func(p0, p1, p2, p3 float64) {
		// B'(t)/3 = a t² + b t + c
		a := -p0 + 3*p1 - 3*p2 + p3
		b := 2 * (p0 - 2*p1 + p2)
		c := p1 - p0
		for _, t := range solveQuadratic(a, b, c) {
			if t > 0 && t < 1 {
				out = append(out, t)
			}
		}
	}
	axis(s[0].X, s[1].X, s[2].X, s[3].X)
	axis(s[0].Y, s[1].Y, s[2].Y, s[3].Y)
	return out
}

// solveQuadratic returns the real roots of a t² + b t + c = 0, using the
// cancellation-free form of the quadratic formula.
func solveQuadratic(a, b, c float64) []float64 {
	const eps = 1e-12
	if math.Abs(a) < eps {
		if math.Abs(b) < eps {
			return nil
		}
		return []float64{-c / b}
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return nil
	}
	sq := math.Sqrt(disc)
	q := -0.5 * (b + math.Copysign(sq, b))
	r1 := q / a
	if math.Abs(q) < eps {
		return []float64{r1}
	}
	return []float64{r1, c / q}
}

// flattenInto appends points approximating the curve (excluding its start
// point) to dst, subdividing until each piece is flat within tol.
func (s Segment) flattenInto(dst []Vec2, tol float64, depth int) []Vec2 {
	if depth >= maxFlattenDepth || s.flatness() <= tol {
		return append(dst, s[3])
	}
	l, r := s.Split(0.5)
	dst = l.flattenInto(dst, tol, depth+1)
	return r.flattenInto(dst, tol, depth+1)
}

// closestT returns the parameter of the point on s nearest q: a coarse scan
// followed by bisection-style refinement around the best sample.
func (s Segment) closestT(q Vec2) (float64, float64) {
	const samples = 16
	bestT, bestD := 0.0, math.Inf(1)
	for i := 0; i <= samples; i++ {
		t := float64(i) / samples
		if d := s.Eval(t).Dist(q); d < bestD {
			bestT, bestD = t, d
		}
	}
	step := 1.0 / samples
	for step > 1e-9 {
		step /= 2
		for _, t := range [2]float64{bestT - step, bestT + step} {
			if t < 0 || t > 1 {
				continue
			}
			if d := s.Eval(t).Dist(q); d < bestD {
				bestT, bestD = t, d
			}
		}
	}
	return bestT, bestD
}

// Offset returns the polyline displaced by d along its left-hand normal.
// Interior vertices use the averaged (mitered) normal, clamped to twice the
// offset distance so sharp corners do not spike. When closed is true the
// first and last vertices are joined as well.
func Offset(points []Vec2, d float64, closed bool) []Vec2 {
	n := len(points)
	if n < 2 {
		return append([]Vec2(nil), points...)
	}
	out := make([]Vec2, n)
	for i := 0; i < n; i++ {
		var prev, next Vec2
		hasPrev, hasNext := i > 0 || closed, i < n-1 || closed
		if hasPrev {
			prev = points[(i-1+n)%n]
		}
		if hasNext {
			next = points[(i+1)%n]
		}
		var normal Vec2
		switch {
		case hasPrev && hasNext:
			n0 := leftNormal(prev, points[i])
			n1 := leftNormal(points[i], next)
			normal = n0.Add(n1).Normalize()
			if normal == (Vec2{}) {
				normal = n1
			} else if dot := n0.Dot(normal); dot > 0.1 {
				normal = normal.Scale(min(1/dot, 2))
			}
		case hasNext:
			normal = leftNormal(points[i], next)
		default:
			normal = leftNormal(prev, points[i])
		}
		out[i] = points[i].Add(normal.Scale(d))
	}
	return out
}

// leftNormal returns the unit left-perpendicular of the segment from a to b.
func leftNormal(a, b Vec2) Vec2 {
	return b.Sub(a).Normalize().Perp()
}
