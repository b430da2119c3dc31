package quill

import (
	"math"
	"testing"
)

func styled(p Path, st Style) Path {
	p.Style = st
	return p
}

func singleItem(p Path) *Snapshot {
	return &Snapshot{View: Identity, Items: []DrawItem{{Mobject: "m", Path: p}}}
}

func TestTessellateSquareFill(t *testing.T) {
	sq := styled(Square(Vec2{}, 2), Style{FillColor: ColorWhite, Opacity: 1})
	meshes := Tessellate(singleItem(sq))
	if len(meshes) != 1 {
		t.Fatalf("meshes = %d, want 1", len(meshes))
	}
	m := meshes[0]
	if m.Kind != MeshFill || m.Mobject != "m" {
		t.Errorf("mesh kind=%d mobject=%q", m.Kind, m.Mobject)
	}
	if len(m.Vertices) != 4 || len(m.Indices) != 6 {
		t.Errorf("fill: %d vertices, %d indices; want 4, 6", len(m.Vertices), len(m.Indices))
	}
}

func TestTessellateClosedStroke(t *testing.T) {
	sq := styled(Square(Vec2{}, 2), Style{StrokeColor: ColorWhite, StrokeWidth: 0.5, Opacity: 1})
	meshes := Tessellate(singleItem(sq))
	if len(meshes) != 1 || meshes[0].Kind != MeshStroke {
		t.Fatalf("meshes = %+v, want one stroke", meshes)
	}
	if got := meshes[0]; len(got.Vertices) != 8 || len(got.Indices) != 24 {
		t.Errorf("stroke: %d vertices, %d indices; want 8, 24", len(got.Vertices), len(got.Indices))
	}
}

func TestTessellateOpenLine(t *testing.T) {
	// An open line has nothing to fill even with a fill color.
	ln := styled(Line(Vec2{0, 0}, Vec2{10, 0}), Style{FillColor: ColorRed, StrokeColor: ColorWhite, StrokeWidth: 4, Opacity: 1})
	meshes := Tessellate(singleItem(ln))
	if len(meshes) != 1 || meshes[0].Kind != MeshStroke {
		t.Fatalf("meshes = %+v, want one stroke", meshes)
	}
	m := meshes[0]
	if len(m.Vertices) != 4 || len(m.Indices) != 6 {
		t.Fatalf("line: %d vertices, %d indices; want 4, 6", len(m.Vertices), len(m.Indices))
	}
	for i, v := range m.Vertices {
		if math.Abs(math.Abs(float64(v.DstY))-2) > 1e-6 {
			t.Errorf("vertex %d y = %v, want ±2", i, v.DstY)
		}
	}
}

func TestTessellateFillBeforeStroke(t *testing.T) {
	sq := styled(Square(Vec2{}, 2), Style{FillColor: ColorBlue, StrokeColor: ColorWhite, StrokeWidth: 1, Opacity: 1})
	meshes := Tessellate(singleItem(sq))
	if len(meshes) != 2 || meshes[0].Kind != MeshFill || meshes[1].Kind != MeshStroke {
		t.Fatalf("meshes = %d, want fill then stroke", len(meshes))
	}
}

func TestTessellatePremultipliedColor(t *testing.T) {
	sq := styled(Square(Vec2{}, 2), Style{FillColor: Color{1, 0.5, 0, 1}, Opacity: 0.5})
	v := Tessellate(singleItem(sq))[0].Vertices[0]
	if v.ColorR != 0.5 || v.ColorG != 0.25 || v.ColorB != 0 || v.ColorA != 0.5 {
		t.Errorf("vertex color = (%v,%v,%v,%v), want (0.5,0.25,0,0.5)", v.ColorR, v.ColorG, v.ColorB, v.ColorA)
	}
	if v.SrcX != 0.5 || v.SrcY != 0.5 {
		t.Errorf("src = (%v,%v), want white pixel center", v.SrcX, v.SrcY)
	}
}

func TestTessellateInvisible(t *testing.T) {
	tests := []Style{
		{},
		{FillColor: ColorWhite, Opacity: 0},
		{StrokeColor: ColorWhite, StrokeWidth: 0, Opacity: 1},
	}
	for i, st := range tests {
		if meshes := Tessellate(singleItem(styled(Square(Vec2{}, 2), st))); len(meshes) != 0 {
			t.Errorf("style %d: %d meshes, want 0", i, len(meshes))
		}
	}
}

func TestTessellateAppliesView(t *testing.T) {
	cam := NewCamera(64, 36, 8)
	s := singleItem(styled(Square(Vec2{}, 2), Style{FillColor: ColorWhite, Opacity: 1}))
	s.View = cam.View()
	m := Tessellate(s)[0]
	for i, v := range m.Vertices {
		// A side-2 square spans 16 pixels around the frame center.
		if math.Abs(float64(v.DstX)-32) != 8 || math.Abs(float64(v.DstY)-18) != 8 {
			t.Errorf("vertex %d = (%v,%v)", i, v.DstX, v.DstY)
		}
	}
}

func TestTessellateIndicesInRange(t *testing.T) {
	c := styled(Circle(Vec2{}, 50), Style{FillColor: ColorWhite, StrokeColor: ColorRed, StrokeWidth: 3, Opacity: 1})
	for _, m := range Tessellate(singleItem(c)) {
		if len(m.Indices)%3 != 0 {
			t.Errorf("kind %d: %d indices, not a triangle list", m.Kind, len(m.Indices))
		}
		for _, idx := range m.Indices {
			if int(idx) >= len(m.Vertices) {
				t.Fatalf("kind %d: index %d out of range (%d vertices)", m.Kind, idx, len(m.Vertices))
			}
		}
	}
}

func BenchmarkTessellateCircle(b *testing.B) {
	s := singleItem(styled(Circle(Vec2{}, 200), Style{FillColor: ColorWhite, StrokeColor: ColorRed, StrokeWidth: 3, Opacity: 1}))
	for b.Loop() {
		Tessellate(s)
	}
}
