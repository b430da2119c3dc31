package quill

import (
	"errors"
	"math"
	"testing"
)

func TestPathSubPaths(t *testing.T) {
	p := Arrow(Vec2{0, 0}, Vec2{4, 0}, 1)
	subs := p.SubPaths()
	if len(subs) != 2 {
		t.Fatalf("arrow sub-paths = %d, want 2 (shaft, head)", len(subs))
	}
	if subs[0].Len() != 1 || subs[1].Len() != 3 {
		t.Errorf("segment split = %d/%d, want 1/3", subs[0].Len(), subs[1].Len())
	}
	if !subs[1].Start().Eq(subs[1].End(), epsilon) {
		t.Error("arrow head should end where it starts")
	}
}

func TestPathEvalUniformPerSegment(t *testing.T) {
	p := Polyline(Vec2{0, 0}, Vec2{1, 0}, Vec2{1, 10})
	// Half the parameter range is the first segment regardless of length.
	assertVec(t, "t=0.5", p.Eval(0.5), Vec2{1, 0})
	assertVec(t, "t=0.75", p.Eval(0.75), Vec2{1, 5})
	assertVec(t, "t=1", p.Eval(1), Vec2{1, 10})
}

func TestPathPointAtProportion(t *testing.T) {
	p := Polyline(Vec2{0, 0}, Vec2{1, 0}, Vec2{1, 9})
	// By arc length, 10% of 10 units lands at the first corner.
	if got := p.PointAtProportion(0.1); !got.Eq(Vec2{1, 0}, 1e-6) {
		t.Errorf("PointAtProportion(0.1) = %v, want (1, 0)", got)
	}
	if got := p.PointAtProportion(0.55); !got.Eq(Vec2{1, 4.5}, 1e-6) {
		t.Errorf("PointAtProportion(0.55) = %v, want (1, 4.5)", got)
	}
}

func TestPathClosestPoint(t *testing.T) {
	p := Line(Vec2{0, 0}, Vec2{10, 0})
	pt, param := p.ClosestPoint(Vec2{3, 5})
	if !pt.Eq(Vec2{3, 0}, 1e-6) {
		t.Errorf("closest = %v, want (3, 0)", pt)
	}
	if math.Abs(param-0.3) > 1e-6 {
		t.Errorf("param = %v, want 0.3", param)
	}
}

func TestPathFlattenSquare(t *testing.T) {
	polys := Square(Vec2{}, 2).Flatten(0.01)
	if len(polys) != 1 {
		t.Fatalf("polylines = %d, want 1", len(polys))
	}
	// Straight segments never subdivide: start + 4 corners.
	if len(polys[0]) != 5 {
		t.Errorf("points = %d, want 5", len(polys[0]))
	}
}

func TestPathFlattenTolerance(t *testing.T) {
	tol := 0.001
	polys := Circle(Vec2{}, 1).Flatten(tol)
	if len(polys) != 1 || len(polys[0]) < 16 {
		t.Fatalf("circle flattened too coarsely: %d polylines", len(polys))
	}
	for _, p := range polys[0] {
		if d := math.Abs(p.Len() - 1); d > 0.01 {
			t.Errorf("point %v is %v off the circle", p, d)
		}
	}
}

func TestPathArcLengthCircle(t *testing.T) {
	got := Circle(Vec2{}, 1).ArcLength(1e-6)
	if math.Abs(got-2*math.Pi) > 1e-3 {
		t.Errorf("circumference = %v, want ~%v", got, 2*math.Pi)
	}
}

func TestPathBounds(t *testing.T) {
	b := Circle(Vec2{1, 1}, 2).Bounds()
	assertNear(t, "x", b.X, -1)
	assertNear(t, "y", b.Y, -1)
	assertNear(t, "width", b.Width, 4)
	assertNear(t, "height", b.Height, 4)
}

func TestPathReverse(t *testing.T) {
	p := Polyline(Vec2{0, 0}, Vec2{1, 0}, Vec2{1, 1})
	r := p.Reverse()
	assertVec(t, "start", r.Start(), p.End())
	assertVec(t, "end", r.End(), p.Start())
	assertVec(t, "mid", r.Eval(0.25), p.Eval(0.75))
}

func TestPathPartial(t *testing.T) {
	sq := Square(Vec2{}, 2)
	half := sq.Partial(0, 0.5)
	if half.Len() != sq.Len() {
		t.Fatalf("partial changed segment count: %d vs %d", half.Len(), sq.Len())
	}
	if half.Closed {
		t.Error("partial of a closed path should be open")
	}
	assertVec(t, "end", half.Segments[3].End(), sq.Segments[2].Start())
	if !half.Segments[3].IsDegenerate(epsilon) {
		t.Error("segments past the end should collapse")
	}

	full := sq.Partial(0, 1)
	if !full.Closed {
		t.Error("full partial should stay closed")
	}
}

func TestPathCloneIndependent(t *testing.T) {
	p := Square(Vec2{}, 2)
	c := p.Clone()
	c.Segments[0][0] = Vec2{99, 99}
	if p.Segments[0][0] == c.Segments[0][0] {
		t.Error("Clone shares segment storage")
	}
}

func TestPathCutOut(t *testing.T) {
	outer := Square(Vec2{}, 4)
	hole := Square(Vec2{}, 2)
	p := outer.CutOut(hole)
	if len(p.SubPaths()) != 2 {
		t.Fatalf("sub-paths = %d, want 2", len(p.SubPaths()))
	}
	if p.Style != outer.Style {
		t.Error("CutOut should keep the outer style")
	}
}

func TestPathValidate(t *testing.T) {
	p := Line(Vec2{0, 0}, Vec2{math.NaN(), 1})
	var ge *GeometryError
	if err := p.Validate(); !errors.As(err, &ge) {
		t.Fatalf("Validate = %v, want *GeometryError", err)
	}
	if err := Circle(Vec2{}, 1).Validate(); err != nil {
		t.Errorf("Validate(circle) = %v", err)
	}
}

func TestPointwiseInterpolate(t *testing.T) {
	a := Line(Vec2{0, 0}, Vec2{2, 0})
	b := Line(Vec2{0, 2}, Vec2{2, 2})
	b.Style.StrokeWidth = 8

	mid, err := PointwiseInterpolate(a, b, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	assertVec(t, "start", mid.Start(), Vec2{0, 1})
	assertNear(t, "width", mid.Style.StrokeWidth, 6)

	_, err = PointwiseInterpolate(a, Square(Vec2{}, 1), 0.5)
	var ge *GeometryError
	if !errors.As(err, &ge) {
		t.Fatalf("mismatched counts: err = %v, want *GeometryError", err)
	}
}

func TestStyleHasFillStroke(t *testing.T) {
	if DefaultStyle.HasFill() {
		t.Error("default style should not fill")
	}
	if !DefaultStyle.HasStroke() {
		t.Error("default style should stroke")
	}
	s := DefaultStyle
	s.Opacity = 0
	if s.HasStroke() {
		t.Error("zero opacity should not stroke")
	}
}

// --- shapes ---

func TestRegularPolygonVertices(t *testing.T) {
	p := RegularPolygon(Vec2{}, 4, 1, math.Pi/2)
	if p.Len() != 4 || !p.Closed {
		t.Fatalf("len=%d closed=%v, want 4 closed", p.Len(), p.Closed)
	}
	assertVec(t, "first", p.Start(), Vec2{0, 1})
	assertVec(t, "second", p.Segments[1].Start(), Vec2{-1, 0})

	if got := RegularPolygon(Vec2{}, 1, 1, 0).Len(); got != 3 {
		t.Errorf("n<3 clamps to triangle, got %d sides", got)
	}
}

func TestCircleClosesExactly(t *testing.T) {
	c := Circle(Vec2{2, 3}, 1.5)
	if c.Start() != c.End() {
		t.Errorf("circle end %v != start %v", c.End(), c.Start())
	}
	for _, tt := range []float64{0.1, 0.37, 0.8} {
		if d := math.Abs(c.Eval(tt).Dist(Vec2{2, 3}) - 1.5); d > 1e-3 {
			t.Errorf("Eval(%v) is %v off the radius", tt, d)
		}
	}
}

func TestArcZeroSweep(t *testing.T) {
	a := Arc(Vec2{}, 1, 0, 0)
	if a.Len() != 1 || !a.Segments[0].IsDegenerate(0) {
		t.Errorf("zero sweep should give one degenerate segment, got %v", a.Segments)
	}
}

func TestArcClockwise(t *testing.T) {
	a := Arc(Vec2{}, 1, 0, -math.Pi/2)
	assertVec(t, "end", a.End(), Vec2{0, -1})
}

func TestEllipseBounds(t *testing.T) {
	b := Ellipse(Vec2{1, 0}, 4, 2).Bounds()
	assertNear(t, "x", b.X, -1)
	assertNear(t, "width", b.Width, 4)
	assertNear(t, "height", b.Height, 2)
}

func TestRectangleWinding(t *testing.T) {
	r := Rectangle(Vec2{}, 4, 2)
	assertVec(t, "first corner", r.Start(), Vec2{2, 1})
	// Shoelace over the corners: positive means counter-clockwise.
	area := 0.0
	for _, s := range r.Segments {
		area += s.Start().Cross(s.End())
	}
	if area <= 0 {
		t.Errorf("signed area = %v, want counter-clockwise", area)
	}
}

func TestArrowDegenerate(t *testing.T) {
	p := Arrow(Vec2{1, 1}, Vec2{1, 1}, 0.25)
	if p.Len() != 1 {
		t.Errorf("zero-length arrow segments = %d, want plain line", p.Len())
	}
}

// --- align ---

func TestAlignPad(t *testing.T) {
	a, b, err := Align(Square(Vec2{}, 2), Circle(Vec2{}, 1).Append(Circle(Vec2{5, 0}, 1)), AlignPad)
	if err != nil {
		t.Fatal(err)
	}
	if a.Len() != 8 || b.Len() != 8 {
		t.Fatalf("lens = %d/%d, want 8/8", a.Len(), b.Len())
	}
	for _, s := range a.Segments[4:] {
		if !s.IsDegenerate(0) {
			t.Error("padded segments should be degenerate")
		}
	}
}

func TestAlignSubdivide(t *testing.T) {
	a := Square(Vec2{}, 2)
	b := RegularPolygon(Vec2{}, 6, 1, 0)
	ga, gb, err := Align(a, b, AlignSubdivide)
	if err != nil {
		t.Fatal(err)
	}
	if ga.Len() != 6 || gb.Len() != 6 {
		t.Fatalf("lens = %d/%d, want 6/6", ga.Len(), gb.Len())
	}
	for i, s := range ga.Segments {
		if s.IsDegenerate(epsilon) {
			t.Errorf("segment %d is degenerate; subdivision should carry geometry", i)
		}
	}
	// Subdivision does not change the shape.
	assertNear(t, "width", ga.Bounds().Width, 2)
	if a.Len() != 4 {
		t.Error("Align mutated its input")
	}
}

func TestAlignEmpty(t *testing.T) {
	a, b, err := Align(Path{}, Square(Vec2{3, 0}, 2), AlignPad)
	if err != nil {
		t.Fatal(err)
	}
	if a.Len() != 4 || !a.Closed {
		t.Fatalf("empty side: len=%d closed=%v", a.Len(), a.Closed)
	}
	assertVec(t, "collapsed at start", a.Segments[2].Start(), b.Start())
}

func TestAlignWindingMismatch(t *testing.T) {
	_, _, err := Align(Line(Vec2{}, Vec2{1, 0}), Square(Vec2{}, 1), AlignPad)
	var ge *GeometryError
	if !errors.As(err, &ge) {
		t.Fatalf("err = %v, want *GeometryError", err)
	}
}

func TestAlignPathsFadesMissing(t *testing.T) {
	a := []Path{Square(Vec2{}, 1)}
	b := []Path{Square(Vec2{}, 1), Circle(Vec2{}, 1)}
	ga, gb, err := AlignPaths(a, b, AlignPad)
	if err != nil {
		t.Fatal(err)
	}
	if len(ga) != 2 || len(gb) != 2 {
		t.Fatalf("lists = %d/%d, want 2/2", len(ga), len(gb))
	}
	if ga[1].Style.Opacity != 0 {
		t.Errorf("missing path opacity = %v, want 0", ga[1].Style.Opacity)
	}
}

func TestParseAlignPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    AlignPolicy
		wantErr bool
	}{
		{"", AlignPad, false},
		{"pad", AlignPad, false},
		{"subdivide", AlignSubdivide, false},
		{"bogus", AlignPad, true},
	}
	for _, tt := range tests {
		got, err := ParseAlignPolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseAlignPolicy(%q) = %v, %v", tt.in, got, err)
		}
	}
}
