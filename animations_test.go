package quill

import (
	"errors"
	"math"
	"testing"
)

// play schedules anims in parallel at t=0 on a fresh timeline and samples
// it at each of times.
func play(t *testing.T, times []float64, anims ...Animation) *Timeline {
	t.Helper()
	tl := NewTimeline()
	if err := tl.Add(0, Parallel(anims...)); err != nil {
		t.Fatal(err)
	}
	for _, now := range times {
		if _, err := tl.Apply(now); err != nil {
			t.Fatalf("Apply(%v): %v", now, err)
		}
	}
	return tl
}

func TestShiftEndpoints(t *testing.T) {
	m := NewSquare("sq", 1)
	tl := NewTimeline()
	tl.Add(0, Parallel(Shift(m, Vec2{10, 0}, WithRate(Linear))))

	tl.Apply(0)
	assertVec(t, "t=0", m.Position(), Vec2{})
	tl.Apply(0.5)
	assertVec(t, "t=0.5", m.Position(), Vec2{5, 0})
	tl.Apply(1)
	assertVec(t, "t=1", m.Position(), Vec2{10, 0})
	if tl.Entries()[0].State() != Completed {
		t.Error("entry should be completed at its end")
	}
}

func TestMoveToMeasuresAtBegin(t *testing.T) {
	m := NewSquare("sq", 1)
	m.X = 2
	a := MoveTo(m, Vec2{5, 5})
	m.X = 4 // moved before the animation begins
	play(t, []float64{0, 1}, a)
	assertVec(t, "end", m.Position(), Vec2{5, 5})
}

func TestOverlappingShiftsAdd(t *testing.T) {
	m := NewSquare("sq", 1)
	play(t, []float64{0, 0.3, 0.7, 1},
		Shift(m, Vec2{1, 0}),
		Shift(m, Vec2{0, 2}, WithRate(Linear)),
	)
	assertVec(t, "end", m.Position(), Vec2{1, 2})
}

func TestMoveAndFadeDoNotInterfere(t *testing.T) {
	m := NewSquare("sq", 1)
	tl := play(t, []float64{0, 0.5}, Shift(m, Vec2{4, 0}, WithRate(Linear)), FadeIn(m, WithRate(Linear)))
	assertVec(t, "mid position", m.Position(), Vec2{2, 0})
	assertNear(t, "mid opacity", m.Opacity, 0.5)
	tl.Apply(1)
	assertVec(t, "end position", m.Position(), Vec2{4, 0})
	assertNear(t, "end opacity", m.Opacity, 1)
}

func TestRotateAndScale(t *testing.T) {
	m := NewSquare("sq", 1)
	play(t, []float64{0, 0.25, 0.5, 1},
		Rotate(m, math.Pi/2),
		Scale(m, 3),
	)
	assertNear(t, "rotation", m.Rotation, math.Pi/2)
	assertNear(t, "scaleX", m.ScaleX, 3)
	assertNear(t, "scaleY", m.ScaleY, 3)
}

func TestScaleThroughZero(t *testing.T) {
	m := NewSquare("sq", 1)
	m.ScaleX = 2
	play(t, []float64{0, 0.5, 0.75, 1}, Scale(m, -1, WithRate(Linear)))
	assertNear(t, "scaleX", m.ScaleX, -2)
}

func TestApplyMatrix(t *testing.T) {
	m := NewSquare("sq", 1)
	want := Compose(Translate(1, 2), Rotation(math.Pi/3))
	play(t, []float64{0, 0.4, 1}, ApplyMatrix(m, want))
	assertMatrix(t, "local", m.Local(), want)
}

func TestApplyMatrixReflection(t *testing.T) {
	m := NewSquare("sq", 1)
	want := ScaleXY(-1, 1)
	// The midpoint sample is singular.
	play(t, []float64{0, 0.25, 0.5, 0.75, 1}, ApplyMatrix(m, want, WithRate(Linear)))
	assertMatrix(t, "local", m.Local(), want)
	assertVec(t, "point", m.Local().Apply(Vec2{1, 0}), Vec2{-1, 0})
}

func TestApplyMatrixHalfTurn(t *testing.T) {
	m := NewSquare("sq", 1)
	tl := NewTimeline()
	tl.Add(0, Parallel(ApplyMatrix(m, Rotation(math.Pi), WithRate(Linear))))
	for _, now := range []float64{0, 0.5} {
		if _, err := tl.Apply(now); err != nil {
			t.Fatalf("Apply(%v): %v", now, err)
		}
	}
	assertNear(t, "mid rotation", m.Rotation, math.Pi/2)
	if _, err := tl.Apply(1); err != nil {
		t.Fatal(err)
	}
	assertMatrix(t, "local", m.Local(), Rotation(math.Pi))
}

func TestApplyMatrixKeepsPivot(t *testing.T) {
	m := NewSquare("sq", 1)
	m.PivotX, m.PivotY = 0.5, 0.5
	start := m.Local()
	want := Compose(ScaleXY(2, 2), start)
	play(t, []float64{0, 0.3, 1}, ApplyMatrix(m, ScaleXY(2, 2)))
	assertMatrix(t, "local", m.Local(), want)
	if m.PivotX != 0.5 || m.PivotY != 0.5 {
		t.Fatalf("pivot = (%v, %v)", m.PivotX, m.PivotY)
	}
}

func TestApplyMatrixWithOverlappingRotate(t *testing.T) {
	m := NewSquare("sq", 1)
	play(t, []float64{0, 0.2, 0.5, 0.9, 1},
		ApplyMatrix(m, ScaleXY(2, 2), WithRate(Linear)),
		Rotate(m, math.Pi/2, WithRate(Linear)),
	)
	assertNear(t, "rotation", m.Rotation, math.Pi/2)
	assertNear(t, "scale x", m.ScaleX, 2)
	assertNear(t, "scale y", m.ScaleY, 2)
	assertMatrix(t, "local", m.Local(), Compose(Rotation(math.Pi/2), ScaleXY(2, 2)))
}

func TestFadeOutRemovesAndRestores(t *testing.T) {
	parent := NewMobject("root")
	m := NewCircle("c", 1)
	m.Opacity = 0.8
	parent.AddChild(m)

	tl := NewTimeline()
	tl.Add(0, Parallel(FadeOut(m, WithRate(Linear))))
	tl.Apply(0)
	tl.Apply(0.5)
	assertNear(t, "mid", m.Opacity, 0.4)

	removed, err := tl.Apply(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(removed) != 1 || removed[0] != m || m.Parent() != nil {
		t.Fatalf("FadeOut did not detach its target: %v", removed)
	}
	assertNear(t, "restored", m.Opacity, 0.8)
}

func TestFadeToColorKeepsAlpha(t *testing.T) {
	m := NewSquare("sq", 1)
	m.SetFill(ColorBlue.WithAlpha(0.5))
	play(t, []float64{0, 1}, FadeToColor(m, ColorRed))
	st := m.Paths[0].Style
	if st.FillColor != ColorRed.WithAlpha(0.5) {
		t.Errorf("fill = %+v, want red at 0.5 alpha", st.FillColor)
	}
	if st.StrokeColor != ColorRed {
		t.Errorf("stroke = %+v, want red", st.StrokeColor)
	}
}

func TestCreateDrawsProgressively(t *testing.T) {
	m := NewSquare("sq", 2)
	orig := m.Paths[0].Clone()
	tl := play(t, []float64{0}, Create(m, WithRate(Linear)))

	if !m.Paths[0].Segments[3].IsDegenerate(epsilon) {
		t.Error("nothing should be drawn at t=0")
	}
	tl.Apply(0.5)
	if m.Paths[0].Closed {
		t.Error("partial path should be open")
	}
	assertVec(t, "half", m.Paths[0].Segments[3].End(), orig.Segments[2].Start())

	tl.Apply(1)
	if !m.Paths[0].Closed || m.Paths[0].Segments[3] != orig.Segments[3] {
		t.Error("Create should restore the full path at the end")
	}
}

func TestUncreateIsRemover(t *testing.T) {
	root := NewMobject("root")
	m := NewSquare("sq", 1)
	root.AddChild(m)
	play(t, []float64{0, 0.5, 1}, Uncreate(m))
	if m.Parent() != nil {
		t.Error("Uncreate should detach its target")
	}
	if m.Paths[0].Segments[3].IsDegenerate(epsilon) {
		t.Error("geometry should be restored after removal")
	}
}

func TestTransformMorphsIntoDestination(t *testing.T) {
	sq := NewSquare("sq", 2)
	circle := NewCircle("c", 1)
	circle.X = 3
	circle.SetFill(ColorGreen)

	tl := play(t, []float64{0}, Transform(sq, circle, WithRate(Linear)))
	first := sq.Paths[0].Segments[0]
	tl.Apply(0.5)
	if sq.Paths[0].Segments[0] == first {
		t.Error("paths should move mid-transform")
	}
	tl.Apply(1)

	want := circle.Paths[0].Transform(Translate(3, 0))
	if len(sq.Paths) != 1 || sq.Paths[0].Len() != want.Len() {
		t.Fatalf("paths = %d, segments = %d", len(sq.Paths), sq.Paths[0].Len())
	}
	for i := range want.Segments {
		for j := range 4 {
			assertVec(t, "control point", sq.Paths[0].Segments[i][j], want.Segments[i][j])
		}
	}
	if sq.Paths[0].Style.FillColor != ColorGreen {
		t.Error("style should follow the destination")
	}
	if circle.Parent() != nil {
		t.Error("Transform must not attach the destination")
	}
}

func TestTransformGroupIntoSingle(t *testing.T) {
	g := NewSquare("g", 1)
	g.Paths = append(g.Paths, Circle(Vec2{2, 0}, 0.5))
	dest := NewCircle("dest", 1)
	play(t, []float64{0, 0.5, 1}, Transform(g, dest))
	if len(g.Paths) != 1 {
		t.Errorf("paths after transform = %d, want 1", len(g.Paths))
	}
}

func TestReplacementTransformSwapsInTree(t *testing.T) {
	root := NewMobject("root")
	sq := NewSquare("sq", 1)
	root.AddChild(sq)
	c := NewCircle("c", 1)

	play(t, []float64{0, 1}, ReplacementTransform(sq, c))
	if root.ChildAt(0) != c || sq.Parent() != nil {
		t.Error("destination should take the target's place")
	}
}

func TestTransformNilDestination(t *testing.T) {
	tl := NewTimeline()
	tl.Add(0, Parallel(Transform(NewSquare("sq", 1), nil)))
	_, err := tl.Apply(0)
	var pe *PlaybackError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *PlaybackError", err)
	}
	if pe.Phase != "begin" || pe.Animation != "Transform" || pe.Mobject != "sq" {
		t.Errorf("error = %+v", pe)
	}
	var ge *GeometryError
	if !errors.As(err, &ge) {
		t.Error("cause should be a *GeometryError")
	}
}

func TestTransformWindingMismatch(t *testing.T) {
	tl := NewTimeline()
	tl.Add(0, Parallel(Transform(NewSquare("sq", 1), NewLine("l", Vec2{}, Vec2{1, 0}))))
	if _, err := tl.Apply(0); err == nil {
		t.Error("closed into open should fail")
	}
}

func TestUpdateFromAlpha(t *testing.T) {
	m := NewMobject("m")
	var seen []float64
	fn := func(_ *Mobject, alpha float64) error {
		seen = append(seen, alpha)
		return nil
	}
	play(t, []float64{0, 0.5, 1}, UpdateFromAlpha(m, fn, WithRate(Linear)))
	if len(seen) != 3 || seen[1] != 0.5 || seen[2] != 1 {
		t.Errorf("alphas = %v", seen)
	}
}

func TestAnimOptions(t *testing.T) {
	a := Shift(NewMobject("m"), Vec2{}, WithDuration(3), WithName("slide"), WithRate(nil))
	if a.Duration() != 3 || a.Name() != "slide" {
		t.Errorf("duration=%v name=%q", a.Duration(), a.Name())
	}
	if a.Rate()(0.3) != Smooth(0.3) {
		t.Error("nil rate should keep the default")
	}
	if Wait(2).Target() != nil {
		t.Error("Wait has no target")
	}
}

func TestIntroduceAndDismiss(t *testing.T) {
	m := NewMobject("m")
	in, out := Introduce(m), Dismiss(m)
	if in.Duration() != 0 || !in.Introducer() || in.Remover() {
		t.Error("Introduce flags")
	}
	if out.Duration() != 0 || !out.Remover() || out.Introducer() {
		t.Error("Dismiss flags")
	}
}
