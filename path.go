package quill

import (
	"fmt"
	"math"
)

// continuityEpsilon is the distance below which two anchors are considered
// the same point when splitting a path into sub-paths.
const continuityEpsilon = 1e-9

// Style holds the paint attributes of a Path. StrokeWidth is measured in
// output pixels and is not affected by transforms.
type Style struct {
	FillColor   Color
	StrokeColor Color
	StrokeWidth float64
	Opacity     float64
}

// DefaultStyle strokes in white with no fill.
var DefaultStyle = Style{
	StrokeColor: ColorWhite,
	StrokeWidth: 4,
	Opacity:     1,
}

// Lerp interpolates colors, width and opacity.
func (s Style) Lerp(o Style, alpha float64) Style {
	return Style{
		FillColor:   s.FillColor.Lerp(o.FillColor, alpha),
		StrokeColor: s.StrokeColor.Lerp(o.StrokeColor, alpha),
		StrokeWidth: lerp(s.StrokeWidth, o.StrokeWidth, alpha),
		Opacity:     lerp(s.Opacity, o.Opacity, alpha),
	}
}

// HasFill reports whether the style paints any fill.
func (s Style) HasFill() bool { return s.FillColor.A > 0 && s.Opacity > 0 }

// HasStroke reports whether the style paints any stroke.
func (s Style) HasStroke() bool {
	return s.StrokeWidth > 0 && s.StrokeColor.A > 0 && s.Opacity > 0
}

// Path is an ordered sequence of cubic Bézier segments. Consecutive segments
// whose anchors meet form a continuous sub-path; a gap starts a new one.
// Closed closes every sub-path for filling and stroking.
type Path struct {
	Segments []Segment
	Closed   bool
	Style    Style
}

// NewPath returns a path over segs with the default style. The slice is
// owned by the path afterwards.
func NewPath(closed bool, segs ...Segment) Path {
	return Path{Segments: segs, Closed: closed, Style: DefaultStyle}
}

// Clone returns a deep copy of p.
func (p Path) Clone() Path {
	p.Segments = append([]Segment(nil), p.Segments...)
	return p
}

// Len returns the segment count.
func (p Path) Len() int { return len(p.Segments) }

// IsEmpty reports whether the path has no segments.
func (p Path) IsEmpty() bool { return len(p.Segments) == 0 }

// Start returns the first anchor, or the origin for an empty path.
func (p Path) Start() Vec2 {
	if len(p.Segments) == 0 {
		return Vec2{}
	}
	return p.Segments[0][0]
}

// End returns the last anchor, or the origin for an empty path.
func (p Path) End() Vec2 {
	if len(p.Segments) == 0 {
		return Vec2{}
	}
	return p.Segments[len(p.Segments)-1][3]
}

// Eval returns the point at t ∈ [0,1], with t spread uniformly over the
// segments (each segment covers 1/n of the range).
func (p Path) Eval(t float64) Vec2 {
	n := len(p.Segments)
	if n == 0 {
		return Vec2{}
	}
	i, local := p.segmentAt(t)
	return p.Segments[i].Eval(local)
}

// segmentAt maps a path parameter onto a segment index and local parameter.
func (p Path) segmentAt(t float64) (int, float64) {
	n := len(p.Segments)
	t = clamp01(t)
	if t >= 1 {
		return n - 1, 1
	}
	scaled := t * float64(n)
	i := int(scaled)
	return i, scaled - float64(i)
}

// SubPaths splits p at every discontinuity. Each result shares p's style
// and closed flag.
func (p Path) SubPaths() []Path {
	if len(p.Segments) == 0 {
		return nil
	}
	var out []Path
	start := 0
	for i := 1; i < len(p.Segments); i++ {
		if !p.Segments[i-1][3].Eq(p.Segments[i][0], continuityEpsilon) {
			out = append(out, Path{Segments: p.Segments[start:i:i], Closed: p.Closed, Style: p.Style})
			start = i
		}
	}
	out = append(out, Path{Segments: p.Segments[start:len(p.Segments):len(p.Segments)], Closed: p.Closed, Style: p.Style})
	return out
}

// IsClosedShape reports whether every sub-path is closed, either by the
// Closed flag or because it ends where it starts.
func (p Path) IsClosedShape() bool {
	if p.Closed {
		return true
	}
	subs := p.SubPaths()
	if len(subs) == 0 {
		return false
	}
	for _, sp := range subs {
		if !sp.Start().Eq(sp.End(), continuityEpsilon) {
			return false
		}
	}
	return true
}

// ArcLength estimates the total length of p. Each segment is refined until
// consecutive estimates differ by less than tol / n, so the total stays
// within tol.
func (p Path) ArcLength(tol float64) float64 {
	n := len(p.Segments)
	if n == 0 {
		return 0
	}
	per := tol / float64(n)
	total := 0.0
	for _, s := range p.Segments {
		total += s.Length(per)
	}
	return total
}

// PointAtProportion returns the point at the given fraction of the path's
// arc length.
func (p Path) PointAtProportion(prop float64) Vec2 {
	n := len(p.Segments)
	if n == 0 {
		return Vec2{}
	}
	prop = clamp01(prop)
	lengths := make([]float64, n)
	total := 0.0
	for i, s := range p.Segments {
		lengths[i] = s.Length(1e-6)
		total += lengths[i]
	}
	if total == 0 {
		return p.Segments[0][0]
	}
	target := prop * total
	for i, l := range lengths {
		if target <= l || i == n-1 {
			if l == 0 {
				return p.Segments[i][0]
			}
			return p.Segments[i].Eval(segmentParamAtLength(p.Segments[i], target, l))
		}
		target -= l
	}
	return p.End()
}

// segmentParamAtLength inverts the arc-length function of s by bisection.
func segmentParamAtLength(s Segment, target, total float64) float64 {
	lo, hi := 0.0, 1.0
	for range 40 {
		mid := (lo + hi) / 2
		left, _ := s.Split(mid)
		if left.Length(total*1e-7) < target {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// ClosestPoint returns the point on p nearest q and its path parameter
// (in the same uniform-per-segment parameterisation as Eval).
func (p Path) ClosestPoint(q Vec2) (Vec2, float64) {
	n := len(p.Segments)
	if n == 0 {
		return Vec2{}, 0
	}
	bestI, bestT, bestD := 0, 0.0, math.Inf(1)
	for i, s := range p.Segments {
		t, d := s.closestT(q)
		if d < bestD {
			bestI, bestT, bestD = i, t, d
		}
	}
	return p.Segments[bestI].Eval(bestT), (float64(bestI) + bestT) / float64(n)
}

// Flatten approximates each sub-path by a polyline whose pieces deviate
// from the curve by at most tol.
func (p Path) Flatten(tol float64) [][]Vec2 {
	if tol <= 0 {
		tol = 0.25
	}
	subs := p.SubPaths()
	out := make([][]Vec2, 0, len(subs))
	for _, sp := range subs {
		pts := []Vec2{sp.Segments[0][0]}
		for _, s := range sp.Segments {
			pts = s.flattenInto(pts, tol, 0)
		}
		out = append(out, pts)
	}
	return out
}

// Reverse returns p traversed backwards.
func (p Path) Reverse() Path {
	n := len(p.Segments)
	segs := make([]Segment, n)
	for i, s := range p.Segments {
		segs[n-1-i] = s.Reverse()
	}
	p.Segments = segs
	return p
}

// Transform returns a copy of p with every control point mapped through m.
func (p Path) Transform(m Affine) Path {
	segs := make([]Segment, len(p.Segments))
	for i, s := range p.Segments {
		segs[i] = s.Transform(m)
	}
	p.Segments = segs
	return p
}

// Bounds returns the exact axis-aligned bounds of the curves.
func (p Path) Bounds() Rect {
	if len(p.Segments) == 0 {
		return Rect{}
	}
	r := p.Segments[0].Bounds()
	for _, s := range p.Segments[1:] {
		r = r.Union(s.Bounds())
	}
	return r
}

// Partial returns the part of p between path parameters a and b (uniform
// per segment, as in Eval). Segment count is preserved: segments outside
// the range collapse onto the nearest boundary point, so partials of one
// path always interpolate with each other.
func (p Path) Partial(a, b float64) Path {
	n := len(p.Segments)
	out := p.Clone()
	if n == 0 {
		return out
	}
	a, b = clamp01(a), clamp01(b)
	if b < a {
		a, b = b, a
	}
	ia, ta := p.segmentAt(a)
	ib, tb := p.segmentAt(b)
	startPt := p.Segments[ia].Eval(ta)
	endPt := p.Segments[ib].Eval(tb)
	for i := range out.Segments {
		switch {
		case i < ia:
			out.Segments[i] = Segment{startPt, startPt, startPt, startPt}
		case i > ib:
			out.Segments[i] = Segment{endPt, endPt, endPt, endPt}
		case i == ia && i == ib:
			out.Segments[i] = p.Segments[i].Sub(ta, tb)
		case i == ia:
			out.Segments[i] = p.Segments[i].Sub(ta, 1)
		case i == ib:
			out.Segments[i] = p.Segments[i].Sub(0, tb)
		}
	}
	if a > 0 || b < 1 {
		out.Closed = false
	}
	return out
}

// Append returns the union of p and other under non-zero filling: other's
// segments become additional sub-paths. p's style is kept.
func (p Path) Append(other Path) Path {
	out := p.Clone()
	out.Segments = append(out.Segments, other.Segments...)
	return out
}

// CutOut returns p with hole added as reversed sub-paths, so that non-zero
// filling leaves the hole empty wherever it lies inside p and winds the
// same way.
func (p Path) CutOut(hole Path) Path {
	return p.Append(hole.Reverse())
}

// Validate reports non-finite control points as a *GeometryError.
func (p Path) Validate() error {
	for i, s := range p.Segments {
		if !s.finite() {
			return &GeometryError{Op: "validate", Reason: fmt.Sprintf("segment %d has non-finite control points", i)}
		}
	}
	return nil
}

// PointwiseInterpolate blends two paths control point by control point.
// Both paths must have the same segment count; use Align first. The closed
// flag follows a until alpha reaches 1.
func PointwiseInterpolate(a, b Path, alpha float64) (Path, error) {
	if len(a.Segments) != len(b.Segments) {
		return Path{}, &GeometryError{
			Op:     "interpolate",
			Reason: fmt.Sprintf("segment counts differ (%d vs %d); align first", len(a.Segments), len(b.Segments)),
		}
	}
	out := Path{
		Segments: make([]Segment, len(a.Segments)),
		Closed:   a.Closed,
		Style:    a.Style.Lerp(b.Style, alpha),
	}
	if alpha >= 1 {
		out.Closed = b.Closed
	}
	for i := range a.Segments {
		out.Segments[i] = a.Segments[i].Lerp(b.Segments[i], alpha)
	}
	return out, nil
}
