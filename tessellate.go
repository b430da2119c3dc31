package quill

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// MeshKind says which part of a styled path a Mesh draws.
type MeshKind uint8

const (
	MeshFill MeshKind = iota
	MeshStroke
)

// Mesh is one triangle list in pixel space, ready for DrawTriangles32.
// Vertex colors are premultiplied and sample the center of a white pixel.
// Every mesh is drawn with the non-zero fill rule: overlapping fan
// triangles resolve to the path's winding, and overlapping ribbon quads
// are covered once.
type Mesh struct {
	Kind     MeshKind
	Mobject  string
	Vertices []ebiten.Vertex
	Indices  []uint32
}

// Tessellate converts every item of s into fill and stroke meshes, in draw
// order. Fills come before strokes for the same item. Items with neither a
// visible fill nor a visible stroke produce nothing.
func Tessellate(s *Snapshot) []Mesh {
	var meshes []Mesh
	for i := range s.Items {
		item := &s.Items[i]
		st := item.Path.Style
		if !st.HasFill() && !st.HasStroke() {
			continue
		}
		polys := item.Path.Transform(s.View).Flatten(flattenTolerance)
		if st.HasFill() {
			if m, ok := fillMesh(polys, st.FillColor, st.Opacity); ok {
				m.Mobject = item.Mobject
				meshes = append(meshes, m)
			}
		}
		if st.HasStroke() {
			if m, ok := strokeMesh(polys, item.Path.Closed, st); ok {
				m.Mobject = item.Mobject
				meshes = append(meshes, m)
			}
		}
	}
	return meshes
}

// fillMesh fan-triangulates every polyline around its first vertex. Open
// polylines are closed implicitly, matching the raster backend.
func fillMesh(polys [][]Vec2, c Color, opacity float64) (Mesh, bool) {
	r, g, b, a := premultiplied(c, opacity)
	m := Mesh{Kind: MeshFill}
	for _, pts := range polys {
		pts = trimClosingPoint(pts)
		n := len(pts)
		if n < 3 {
			continue
		}
		base := uint32(len(m.Vertices))
		for _, p := range pts {
			m.Vertices = append(m.Vertices, solidVertex(p, r, g, b, a))
		}
		// Fan triangulation: vertex 0 is the hub.
		for i := 1; i < n-1; i++ {
			m.Indices = append(m.Indices, base, base+uint32(i), base+uint32(i+1))
		}
	}
	return m, len(m.Indices) > 0
}

// strokeMesh builds a quad ribbon of the stroke width along each polyline.
func strokeMesh(polys [][]Vec2, closed bool, st Style) (Mesh, bool) {
	r, g, b, a := premultiplied(st.StrokeColor, st.Opacity)
	halfW := st.StrokeWidth / 2
	m := Mesh{Kind: MeshStroke}
	for _, pts := range polys {
		if closed {
			pts = trimClosingPoint(pts)
		}
		n := len(pts)
		if n < 2 {
			continue
		}
		left := Offset(pts, halfW, closed)
		right := Offset(pts, -halfW, closed)
		base := uint32(len(m.Vertices))
		for i := 0; i < n; i++ {
			m.Vertices = append(m.Vertices,
				solidVertex(left[i], r, g, b, a),
				solidVertex(right[i], r, g, b, a))
		}
		quads := n - 1
		if closed && n > 2 {
			quads = n
		}
		// Two triangles per quad; the last quad of a closed ribbon wraps.
		for i := 0; i < quads; i++ {
			v0 := base + uint32(i*2)
			v1 := base + uint32(((i+1)%n)*2)
			m.Indices = append(m.Indices, v0, v0+1, v1, v0+1, v1+1, v1)
		}
	}
	return m, len(m.Indices) > 0
}

// trimClosingPoint drops a final vertex that repeats the first.
func trimClosingPoint(pts []Vec2) []Vec2 {
	if n := len(pts); n > 1 && pts[n-1].Eq(pts[0], 1e-9) {
		return pts[:n-1]
	}
	return pts
}

func solidVertex(p Vec2, r, g, b, a float32) ebiten.Vertex {
	return ebiten.Vertex{
		DstX:   float32(p.X),
		DstY:   float32(p.Y),
		SrcX:   0.5,
		SrcY:   0.5,
		ColorR: r,
		ColorG: g,
		ColorB: b,
		ColorA: a,
	}
}
