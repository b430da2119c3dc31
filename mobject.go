package quill

import (
	"fmt"
	"log/slog"
)

// mobjectIDCounter is a plain counter (no atomic: the object model is only
// mutated from the scene's goroutine).
var mobjectIDCounter uint32

func nextMobjectID() uint32 {
	mobjectIDCounter++
	return mobjectIDCounter
}

// Mobject is a drawable node in the scene tree. It owns zero or more Paths in
// local coordinates plus an ordered list of children. A single flat struct is
// used for shapes, groups and text alike.
type Mobject struct {
	// Identity
	ID   uint32
	Name string

	// Geometry, in local coordinates.
	Paths []Path

	// Transform (local). World = parent world ∘ local.
	X, Y           float64
	Rotation       float64
	ScaleX, ScaleY float64
	Shear          float64
	PivotX, PivotY float64

	// Draw order and visibility. ZIndex accumulates down the tree and is
	// applied as a stable sort key when the scene is flattened.
	ZIndex  int
	Visible bool
	Opacity float64

	// Style, when non-nil, replaces the style of every owned path.
	Style *Style

	// UserData is never read by the engine.
	UserData any

	parent   *Mobject
	children []*Mobject
	updaters []updaterEntry

	// debugLog is set on the root of a scene running in debug mode.
	debugLog *slog.Logger
}

// mobjectDefaults sets the field values shared by all constructors.
func mobjectDefaults(m *Mobject) {
	m.ID = nextMobjectID()
	m.ScaleX = 1
	m.ScaleY = 1
	m.Opacity = 1
	m.Visible = true
}

// NewMobject creates a mobject owning the given paths.
func NewMobject(name string, paths ...Path) *Mobject {
	m := &Mobject{Name: name, Paths: paths}
	mobjectDefaults(m)
	return m
}

// NewGroup creates a mobject with no geometry of its own.
func NewGroup(name string, children ...*Mobject) (*Mobject, error) {
	m := NewMobject(name)
	for _, c := range children {
		if err := m.AddChild(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// NewCircle creates a circle of radius r centred on the local origin.
func NewCircle(name string, r float64) *Mobject {
	return NewMobject(name, Circle(Vec2{}, r))
}

// NewSquare creates a square of the given side centred on the local origin.
func NewSquare(name string, side float64) *Mobject {
	return NewMobject(name, Square(Vec2{}, side))
}

// NewRectangle creates a width×height rectangle centred on the local origin.
func NewRectangle(name string, width, height float64) *Mobject {
	return NewMobject(name, Rectangle(Vec2{}, width, height))
}

// NewLine creates a line from a to b.
func NewLine(name string, a, b Vec2) *Mobject {
	return NewMobject(name, Line(a, b))
}

// NewPolygon creates a closed polygon through points.
func NewPolygon(name string, points ...Vec2) *Mobject {
	return NewMobject(name, Polygon(points...))
}

// NewDot creates a small filled circle at p.
func NewDot(name string, p Vec2) *Mobject {
	c := Circle(Vec2{}, 0.08)
	c.Style.FillColor = ColorWhite
	c.Style.StrokeWidth = 0
	m := NewMobject(name, c)
	m.X, m.Y = p.X, p.Y
	return m
}

// NewArrow creates an arrow from a to b.
func NewArrow(name string, a, b Vec2) *Mobject {
	return NewMobject(name, Arrow(a, b, 0.25))
}

// String returns the name and ID, used in error messages.
func (m *Mobject) String() string {
	if m == nil {
		return "<nil>"
	}
	if m.Name == "" {
		return fmt.Sprintf("mobject#%d", m.ID)
	}
	return m.Name
}

// label is the name used in errors: the name when set, else the ID.
func (m *Mobject) label() string { return m.String() }

// --- Tree manipulation ---

// AddChild appends child to m's children. A mobject has at most one owner:
// adding a child that already has a parent fails, as do nil, self and
// ancestor (cycle) attachments. Detach the child first to reparent it.
func (m *Mobject) AddChild(child *Mobject) error {
	return m.insertChild(child, len(m.children), "add child")
}

// AddChildAt inserts child at index. Same rules as AddChild; panics when
// index is out of range.
func (m *Mobject) AddChildAt(child *Mobject, index int) error {
	if index < 0 || index > len(m.children) {
		panic("quill: child index out of range")
	}
	return m.insertChild(child, index, "add child")
}

func (m *Mobject) insertChild(child *Mobject, index int, op string) error {
	if err := m.checkAttach(child, op); err != nil {
		return err
	}
	child.parent = m
	m.children = append(m.children, nil)
	copy(m.children[index+1:], m.children[index:])
	m.children[index] = child
	if l := m.Root().debugLog; l != nil {
		debugCheckTreeDepth(l, child)
		debugCheckChildCount(l, m)
	}
	return nil
}

// checkAttach validates that child may become a child of m.
func (m *Mobject) checkAttach(child *Mobject, op string) error {
	switch {
	case child == nil:
		return &TreeInvariantError{Op: op, Parent: m.label(), Child: "<nil>", Reason: "child is nil"}
	case child == m:
		return &TreeInvariantError{Op: op, Parent: m.label(), Child: child.label(), Reason: "mobject cannot be its own child"}
	case child.parent != nil:
		return &TreeInvariantError{Op: op, Parent: m.label(), Child: child.label(),
			Reason: fmt.Sprintf("already a child of %q", child.parent.label())}
	case isAncestor(child, m):
		return &TreeInvariantError{Op: op, Parent: m.label(), Child: child.label(), Reason: "attachment would create a cycle"}
	}
	return nil
}

// RemoveChild detaches child from m.
func (m *Mobject) RemoveChild(child *Mobject) error {
	if child == nil || child.parent != m {
		return &TreeInvariantError{Op: "remove child", Parent: m.label(), Child: child.label(), Reason: "not a child of this mobject"}
	}
	m.removeChildByPtr(child)
	child.parent = nil
	return nil
}

// Detach removes m from its parent. No-op when m has no parent.
func (m *Mobject) Detach() {
	if m.parent == nil {
		return
	}
	m.parent.removeChildByPtr(m)
	m.parent = nil
}

// ReplaceChild swaps old for replacement at the same index. replacement must
// be unattached.
func (m *Mobject) ReplaceChild(old, replacement *Mobject) error {
	if old == nil || old.parent != m {
		return &TreeInvariantError{Op: "replace child", Parent: m.label(), Child: old.label(), Reason: "not a child of this mobject"}
	}
	if old == replacement {
		return nil
	}
	if err := m.checkAttach(replacement, "replace child"); err != nil {
		return err
	}
	i := m.childIndex(old)
	m.children[i] = replacement
	old.parent = nil
	replacement.parent = m
	return nil
}

// RemoveChildren detaches every child of m.
func (m *Mobject) RemoveChildren() {
	for _, c := range m.children {
		c.parent = nil
	}
	clear(m.children)
	m.children = m.children[:0]
}

// SetChildIndex moves child to a new index among its siblings. Panics when
// child does not belong to m or index is out of range.
func (m *Mobject) SetChildIndex(child *Mobject, index int) {
	if child.parent != m {
		panic("quill: child's parent is not this mobject")
	}
	if index < 0 || index >= len(m.children) {
		panic("quill: child index out of range")
	}
	old := m.childIndex(child)
	if old == index {
		return
	}
	if old < index {
		copy(m.children[old:], m.children[old+1:index+1])
	} else {
		copy(m.children[index+1:], m.children[index:old])
	}
	m.children[index] = child
}

// Children returns the child list. The returned slice must not be mutated.
func (m *Mobject) Children() []*Mobject { return m.children }

// NumChildren returns the number of children.
func (m *Mobject) NumChildren() int { return len(m.children) }

// ChildAt returns the child at index. It panics if index is out of range.
func (m *Mobject) ChildAt(index int) *Mobject { return m.children[index] }

// Find returns the first mobject named name in m's family, depth-first, or
// nil.
func (m *Mobject) Find(name string) *Mobject {
	if m.Name == name {
		return m
	}
	for _, c := range m.children {
		if f := c.Find(name); f != nil {
			return f
		}
	}
	return nil
}

// Parent returns the owning mobject, or nil.
func (m *Mobject) Parent() *Mobject { return m.parent }

// Root returns the topmost ancestor of m (m itself when unattached).
func (m *Mobject) Root() *Mobject {
	r := m
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Family returns m followed by all of its descendants in depth-first order.
func (m *Mobject) Family() []*Mobject {
	var out []*Mobject
	var walk func(*Mobject)
	walk = func(n *Mobject) {
		out = append(out, n)
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(m)
	return out
}

// SetZIndex sets the draw-order key.
func (m *Mobject) SetZIndex(z int) { m.ZIndex = z }

// Copy returns a deep copy of m and its subtree. The copy is unattached,
// gets fresh IDs and carries no updaters.
func (m *Mobject) Copy() *Mobject {
	c := *m
	c.ID = nextMobjectID()
	c.parent = nil
	c.updaters = nil
	c.debugLog = nil
	c.Paths = make([]Path, len(m.Paths))
	for i, p := range m.Paths {
		c.Paths[i] = p.Clone()
	}
	if m.Style != nil {
		s := *m.Style
		c.Style = &s
	}
	c.children = make([]*Mobject, 0, len(m.children))
	for _, ch := range m.children {
		cc := ch.Copy()
		cc.parent = &c
		c.children = append(c.children, cc)
	}
	return &c
}

// --- Transform ---

// Local returns the local affine matrix.
func (m *Mobject) Local() Affine { return computeLocalTransform(m) }

// SetLocal replaces the local transform with an arbitrary affine matrix. The
// pivot is kept; X and Y absorb it so Local() returns a.
func (m *Mobject) SetLocal(a Affine) {
	m.setComponents(a.Decompose())
	m.X += a[0]*m.PivotX + a[2]*m.PivotY
	m.Y += a[1]*m.PivotX + a[3]*m.PivotY
}

func (m *Mobject) components() Components {
	return Components{
		X: m.X, Y: m.Y,
		Rotation: m.Rotation,
		ScaleX:   m.ScaleX, ScaleY: m.ScaleY,
		Shear: m.Shear,
	}
}

func (m *Mobject) setComponents(c Components) {
	m.X, m.Y = c.X, c.Y
	m.Rotation = c.Rotation
	m.ScaleX, m.ScaleY = c.ScaleX, c.ScaleY
	m.Shear = c.Shear
}

// WorldTransform composes the local transforms from the root down to m.
func (m *Mobject) WorldTransform() Affine {
	if m.parent == nil {
		return m.Local()
	}
	return Compose(m.parent.WorldTransform(), m.Local())
}

// LocalToWorld converts a local point to world (scene) space.
func (m *Mobject) LocalToWorld(p Vec2) Vec2 {
	return m.WorldTransform().Apply(p)
}

// WorldToLocal converts a world point into m's local space. Fails with
// *SingularTransformError when the world transform is not invertible.
func (m *Mobject) WorldToLocal(p Vec2) (Vec2, error) {
	inv, err := m.WorldTransform().Invert()
	if err != nil {
		return Vec2{}, err
	}
	return inv.Apply(p), nil
}

// Position returns the local translation.
func (m *Mobject) Position() Vec2 { return Vec2{m.X, m.Y} }

// Shift translates m by d in its parent's space.
func (m *Mobject) Shift(d Vec2) *Mobject {
	m.X += d.X
	m.Y += d.Y
	return m
}

// MoveTo places m's local origin at p in its parent's space.
func (m *Mobject) MoveTo(p Vec2) *Mobject {
	m.X, m.Y = p.X, p.Y
	return m
}

// RotateBy adds theta radians (counter-clockwise) to the rotation.
func (m *Mobject) RotateBy(theta float64) *Mobject {
	m.Rotation += theta
	return m
}

// ScaleBy multiplies both scale factors by f.
func (m *Mobject) ScaleBy(f float64) *Mobject {
	m.ScaleX *= f
	m.ScaleY *= f
	return m
}

// --- Style ---

// SetFill sets the fill color of every path in m's family.
func (m *Mobject) SetFill(c Color) *Mobject {
	for _, f := range m.Family() {
		f.editStyle(func(s *Style) { s.FillColor = c })
	}
	return m
}

// SetStroke sets the stroke color and width (pixels) of every path in m's
// family.
func (m *Mobject) SetStroke(c Color, width float64) *Mobject {
	for _, f := range m.Family() {
		f.editStyle(func(s *Style) {
			s.StrokeColor = c
			s.StrokeWidth = width
		})
	}
	return m
}

func (m *Mobject) editStyle(fn func(*Style)) {
	for i := range m.Paths {
		fn(&m.Paths[i].Style)
	}
	if m.Style != nil {
		fn(m.Style)
	}
}

// pathStyle returns the style path i is drawn with.
func (m *Mobject) pathStyle(i int) Style {
	if m.Style != nil {
		return *m.Style
	}
	return m.Paths[i].Style
}

// --- Bounds ---

// Bounds returns the world-space bounds of m's family, including invisible
// descendants. The zero Rect is returned when there is no geometry.
func (m *Mobject) Bounds() Rect {
	var r Rect
	var walk func(n *Mobject, parent Affine)
	walk = func(n *Mobject, parent Affine) {
		w := Compose(parent, n.Local())
		for _, p := range n.Paths {
			if p.IsEmpty() {
				continue
			}
			r = r.Union(p.Transform(w).Bounds())
		}
		for _, c := range n.children {
			walk(c, w)
		}
	}
	base := Identity
	if m.parent != nil {
		base = m.parent.WorldTransform()
	}
	walk(m, base)
	return r
}

// Center returns the center of m's world-space bounds.
func (m *Mobject) Center() Vec2 { return m.Bounds().Center() }

// --- Helpers ---

// isAncestor reports whether candidate is m or one of m's ancestors.
func isAncestor(candidate, m *Mobject) bool {
	for p := m; p != nil; p = p.parent {
		if p == candidate {
			return true
		}
	}
	return false
}

func (m *Mobject) childIndex(child *Mobject) int {
	for i, c := range m.children {
		if c == child {
			return i
		}
	}
	return -1
}

// removeChildByPtr removes child from m.children without clearing its
// parent link. copy+nil keeps no dangling pointer in the backing array.
func (m *Mobject) removeChildByPtr(child *Mobject) {
	if i := m.childIndex(child); i >= 0 {
		copy(m.children[i:], m.children[i+1:])
		m.children[len(m.children)-1] = nil
		m.children = m.children[:len(m.children)-1]
	}
}
