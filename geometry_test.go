package quill

import (
	"math"
	"sort"
	"testing"
)

func TestSegmentEvalEndpoints(t *testing.T) {
	s := Segment{{0, 0}, {1, 2}, {3, 2}, {4, 0}}
	if s.Eval(0) != s[0] || s.Eval(1) != s[3] {
		t.Errorf("Eval endpoints = %v, %v; want anchors", s.Eval(0), s.Eval(1))
	}
	// Symmetric curve peaks at t=0.5: y = 3/4 * 2.
	assertVec(t, "mid", s.Eval(0.5), Vec2{2, 1.5})
}

func TestLineSegmentUniform(t *testing.T) {
	s := LineSegment(Vec2{0, 0}, Vec2{9, 3})
	for _, tt := range []float64{0.1, 0.25, 0.5, 0.9} {
		assertVec(t, "eval", s.Eval(tt), Vec2{9 * tt, 3 * tt})
	}
}

func TestQuadSegmentMatchesQuadratic(t *testing.T) {
	a, c, b := Vec2{0, 0}, Vec2{1, 2}, Vec2{2, 0}
	s := QuadSegment(a, c, b)
	for _, tt := range []float64{0.2, 0.5, 0.7} {
		u := 1 - tt
		want := a.Scale(u * u).Add(c.Scale(2 * u * tt)).Add(b.Scale(tt * tt))
		assertVec(t, "quad", s.Eval(tt), want)
	}
}

func TestSegmentSplitContinuity(t *testing.T) {
	s := Segment{{0, 0}, {0, 3}, {5, 3}, {5, 0}}
	for _, tt := range []float64{0.1, 0.5, 0.83} {
		l, r := s.Split(tt)
		if l[3] != r[0] {
			t.Errorf("split(%v): halves do not meet: %v vs %v", tt, l[3], r[0])
		}
		assertVec(t, "split point", l[3], s.Eval(tt))
		assertVec(t, "left mid", l.Eval(0.5), s.Eval(tt/2))
	}
}

func TestSegmentSub(t *testing.T) {
	s := Segment{{0, 0}, {1, 4}, {3, -2}, {4, 1}}
	sub := s.Sub(0.25, 0.75)
	assertVec(t, "start", sub.Start(), s.Eval(0.25))
	assertVec(t, "end", sub.End(), s.Eval(0.75))
	rev := s.Sub(0.75, 0.25)
	assertVec(t, "reversed start", rev.Start(), s.Eval(0.75))
}

func TestSegmentLength(t *testing.T) {
	assertNear(t, "line", LineSegment(Vec2{}, Vec2{3, 4}).Length(1e-9), 5)
	if l := (Segment{{1, 1}, {1, 1}, {1, 1}, {1, 1}}).Length(1e-9); l != 0 {
		t.Errorf("degenerate length = %v, want 0", l)
	}
	quarter := Arc(Vec2{}, 1, 0, math.Pi/2).Segments[0]
	if got := quarter.Length(1e-9); math.Abs(got-math.Pi/2) > 1e-3 {
		t.Errorf("quarter arc length = %v, want ~%v", got, math.Pi/2)
	}
}

func TestSegmentBounds(t *testing.T) {
	s := Segment{{0, 0}, {0, 4}, {4, 4}, {4, 0}}
	b := s.Bounds()
	assertNear(t, "x", b.X, 0)
	assertNear(t, "width", b.Width, 4)
	// Peak of the symmetric curve is at t=0.5: 3/4 of the handle height.
	assertNear(t, "height", b.Height, 3)
}

func TestSegmentTransformExact(t *testing.T) {
	s := Segment{{0, 0}, {1, 2}, {3, 2}, {4, 0}}
	m := Compose(Translate(2, 1), Rotation(0.6))
	got := s.Transform(m)
	for _, tt := range []float64{0.3, 0.6} {
		assertVec(t, "transform", got.Eval(tt), m.Apply(s.Eval(tt)))
	}
}

func TestSolveQuadratic(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c float64
		want    []float64
	}{
		{"two roots", 1, -3, 2, []float64{1, 2}},
		{"linear", 0, 2, -1, []float64{0.5}},
		{"none", 1, 0, 1, nil},
		{"constant", 0, 0, 1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := solveQuadratic(tt.a, tt.b, tt.c)
			sort.Float64s(got)
			if len(got) != len(tt.want) {
				t.Fatalf("roots = %v, want %v", got, tt.want)
			}
			for i := range got {
				assertNear(t, "root", got[i], tt.want[i])
			}
		})
	}
}

func TestOffsetOpenLine(t *testing.T) {
	got := Offset([]Vec2{{0, 0}, {1, 0}, {2, 0}}, 1, false)
	want := []Vec2{{0, 1}, {1, 1}, {2, 1}}
	for i := range want {
		assertVec(t, "offset", got[i], want[i])
	}
}

func TestOffsetClosedSquareMiters(t *testing.T) {
	// Counter-clockwise square: the left normal points inward.
	sq := []Vec2{{1, 1}, {-1, 1}, {-1, -1}, {1, -1}}
	got := Offset(sq, 0.5, true)
	want := []Vec2{{0.5, 0.5}, {-0.5, 0.5}, {-0.5, -0.5}, {0.5, -0.5}}
	for i := range want {
		assertVec(t, "corner", got[i], want[i])
	}
}

func TestOffsetShortInput(t *testing.T) {
	pts := []Vec2{{1, 2}}
	got := Offset(pts, 3, false)
	if len(got) != 1 || got[0] != pts[0] {
		t.Errorf("Offset(single) = %v, want copy of input", got)
	}
}
