package quill

import "math"

// Line returns an open single-segment path from a to b.
func Line(a, b Vec2) Path {
	return NewPath(false, LineSegment(a, b))
}

// Polyline returns an open path through points. Fewer than two points give
// an empty path.
func Polyline(points ...Vec2) Path {
	if len(points) < 2 {
		return NewPath(false)
	}
	segs := make([]Segment, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		segs = append(segs, LineSegment(points[i-1], points[i]))
	}
	return NewPath(false, segs...)
}

// Polygon returns a closed path through points, including the closing edge.
func Polygon(points ...Vec2) Path {
	if len(points) < 2 {
		return NewPath(true)
	}
	segs := make([]Segment, 0, len(points))
	for i := range points {
		segs = append(segs, LineSegment(points[i], points[(i+1)%len(points)]))
	}
	return NewPath(true, segs...)
}

// Rectangle returns an axis-aligned rectangle centred on center, wound
// counter-clockwise from the upper-right corner.
func Rectangle(center Vec2, width, height float64) Path {
	hw, hh := width/2, height/2
	return Polygon(
		Vec2{center.X + hw, center.Y + hh},
		Vec2{center.X - hw, center.Y + hh},
		Vec2{center.X - hw, center.Y - hh},
		Vec2{center.X + hw, center.Y - hh},
	)
}

// Square returns a square of the given side length centred on center.
func Square(center Vec2, side float64) Path {
	return Rectangle(center, side, side)
}

// RegularPolygon returns an n-gon inscribed in a circle of radius r. The
// first vertex sits at startAngle (radians, counter-clockwise from +X).
func RegularPolygon(center Vec2, n int, r, startAngle float64) Path {
	if n < 3 {
		n = 3
	}
	pts := make([]Vec2, n)
	for i := range pts {
		sin, cos := math.Sincos(startAngle + 2*math.Pi*float64(i)/float64(n))
		pts[i] = Vec2{center.X + r*cos, center.Y + r*sin}
	}
	return Polygon(pts...)
}

// Arc returns an open circular arc of radius r from startAngle sweeping by
// angle (negative sweeps clockwise). Each segment spans at most 90°, using
// the 4/3·tan(θ/4) handle length.
func Arc(center Vec2, r, startAngle, angle float64) Path {
	n := int(math.Ceil(math.Abs(angle) / (math.Pi / 2)))
	if n == 0 {
		p := Vec2{center.X + r*math.Cos(startAngle), center.Y + r*math.Sin(startAngle)}
		return NewPath(false, Segment{p, p, p, p})
	}
	step := angle / float64(n)
	k := 4.0 / 3 * math.Tan(step/4) * r
	segs := make([]Segment, n)
	for i := range segs {
		a0 := startAngle + step*float64(i)
		a1 := a0 + step
		s0, c0 := math.Sincos(a0)
		s1, c1 := math.Sincos(a1)
		p0 := Vec2{center.X + r*c0, center.Y + r*s0}
		p3 := Vec2{center.X + r*c1, center.Y + r*s1}
		segs[i] = Segment{
			p0,
			{p0.X - k*s0, p0.Y + k*c0},
			{p3.X + k*s1, p3.Y - k*c1},
			p3,
		}
		if i > 0 {
			segs[i][0] = segs[i-1][3]
		}
	}
	return NewPath(false, segs...)
}

// Circle returns a closed circle of four quarter arcs starting at +X.
func Circle(center Vec2, r float64) Path {
	p := Arc(center, r, 0, 2*math.Pi)
	p.Segments[len(p.Segments)-1][3] = p.Segments[0][0]
	p.Closed = true
	return p
}

// Ellipse returns a closed axis-aligned ellipse with the given width and
// height.
func Ellipse(center Vec2, width, height float64) Path {
	unit := Circle(Vec2{}, 1)
	return unit.Transform(ScaleXY(width/2, height/2).Then(Translate(center.X, center.Y)))
}

// Arrow returns a line from a to b with a triangular head of the given
// length at b. The shaft and head are separate sub-paths; the head ends
// where it starts so fills close it. The fill defaults to the stroke color.
func Arrow(a, b Vec2, tipLength float64) Path {
	dir := b.Sub(a)
	l := dir.Len()
	if l == 0 {
		return Line(a, b)
	}
	tipLength = min(tipLength, l/2)
	u := dir.Scale(1 / l)
	n := u.Perp().Scale(tipLength / 2)
	base := b.Sub(u.Scale(tipLength))
	left, right := base.Add(n), base.Sub(n)
	p := NewPath(false,
		LineSegment(a, base),
		LineSegment(b, left),
		LineSegment(left, right),
		LineSegment(right, b),
	)
	p.Style.FillColor = p.Style.StrokeColor
	return p
}
