package quill

import (
	"errors"
	"fmt"
)

// DrawItem is one world-space path in a Snapshot with its fully resolved
// style (mobject opacity already folded into Style.Opacity).
type DrawItem struct {
	MobjectID uint32
	Mobject   string
	Path      Path
	Z         int

	treeOrder int // traversal order, breaks Z ties
}

// Snapshot is the immutable, flattened description of one frame. Items are
// in draw order (back to front). Every path is a deep copy: nothing in a
// Snapshot aliases the live object tree, so it may be rendered on another
// goroutine while the next tick mutates the scene.
type Snapshot struct {
	Index      int
	Time       float64
	Width      int
	Height     int
	Background Color
	// View maps scene units to output pixels.
	View  Affine
	Items []DrawItem
}

// Len returns the number of draw items.
func (s *Snapshot) Len() int { return len(s.Items) }

// Equal reports whether two snapshots describe identical frames. Mobject
// identity is ignored: only what would be drawn is compared.
func (s *Snapshot) Equal(o *Snapshot) bool {
	if s.Index != o.Index || s.Time != o.Time || s.Width != o.Width || s.Height != o.Height ||
		s.Background != o.Background || s.View != o.View || len(s.Items) != len(o.Items) {
		return false
	}
	for i := range s.Items {
		a, b := &s.Items[i], &o.Items[i]
		if a.Z != b.Z || a.Path.Closed != b.Path.Closed ||
			a.Path.Style != b.Path.Style || len(a.Path.Segments) != len(b.Path.Segments) {
			return false
		}
		for j := range a.Path.Segments {
			if a.Path.Segments[j] != b.Path.Segments[j] {
				return false
			}
		}
	}
	return true
}

// resolver carries traversal state for ResolveWorldGeometry.
type resolver struct {
	stack     *TransformStack
	items     []DrawItem
	sortBuf   []DrawItem
	treeOrder int
}

// ResolveWorldGeometry walks the tree under root depth-first, composing
// transforms on a stack, and returns the flattened world-space paths.
// Invisible subtrees are skipped entirely. Opacity multiplies down the tree.
// Items are stably sorted by accumulated ZIndex, ties keeping traversal
// order. A non-finite transform or path fails with *GeometryError naming
// the mobject. The tree is only read.
func ResolveWorldGeometry(root *Mobject, view Affine) (*Snapshot, error) {
	if root == nil {
		return &Snapshot{View: view}, nil
	}
	r := resolver{stack: NewTransformStack(Identity)}
	if root.parent != nil {
		r.stack.Reset(root.parent.WorldTransform())
	}
	if err := r.walk(root, 1, 0); err != nil {
		return nil, err
	}
	r.mergeSort()
	return &Snapshot{View: view, Items: r.items}, nil
}

func (r *resolver) walk(m *Mobject, parentOpacity float64, parentZ int) error {
	if !m.Visible {
		return nil
	}
	world := r.stack.Push(m.Local())
	defer r.stack.Pop()
	if !world.finite() {
		return &GeometryError{Op: "resolve", Mobject: m.label(), Reason: fmt.Sprintf("non-finite world transform %v", [6]float64(world))}
	}
	opacity := parentOpacity * m.Opacity
	z := parentZ + m.ZIndex

	for i, p := range m.Paths {
		if err := p.Validate(); err != nil {
			var ge *GeometryError
			if errors.As(err, &ge) {
				ge.Op, ge.Mobject = "resolve", m.label()
				ge.Reason = fmt.Sprintf("path %d: %s", i, ge.Reason)
			}
			return err
		}
		if p.IsEmpty() {
			continue
		}
		wp := p.Transform(world)
		wp.Style = m.pathStyle(i)
		wp.Style.Opacity *= opacity
		r.treeOrder++
		r.items = append(r.items, DrawItem{
			MobjectID: m.ID,
			Mobject:   m.Name,
			Path:      wp,
			Z:         z,
			treeOrder: r.treeOrder,
		})
	}
	for _, c := range m.children {
		if err := r.walk(c, opacity, z); err != nil {
			return err
		}
	}
	return nil
}

// --- Merge sort ---

// itemLessOrEqual reports whether a sorts at or before b. Using <= on
// treeOrder keeps the sort stable.
func itemLessOrEqual(a, b *DrawItem) bool {
	if a.Z != b.Z {
		return a.Z < b.Z
	}
	return a.treeOrder <= b.treeOrder
}

// mergeSort sorts r.items in place by (Z, treeOrder) with a bottom-up merge
// sort using r.sortBuf as scratch space.
func (r *resolver) mergeSort() {
	n := len(r.items)
	if n <= 1 {
		return
	}
	sorted := true
	for i := 1; i < n; i++ {
		if r.items[i-1].Z > r.items[i].Z {
			sorted = false
			break
		}
	}
	if sorted {
		return
	}
	if cap(r.sortBuf) < n {
		r.sortBuf = make([]DrawItem, n)
	}
	r.sortBuf = r.sortBuf[:n]

	a, b := r.items, r.sortBuf
	swapped := false
	for width := 1; width < n; width *= 2 {
		for lo := 0; lo < n; lo += 2 * width {
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeRun(a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}
	if swapped {
		copy(r.items, r.sortBuf)
	}
}

// mergeRun merges the sorted runs [lo, mid) and [mid, hi) of src into dst.
func mergeRun(src, dst []DrawItem, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if itemLessOrEqual(&src[i], &src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	k += copy(dst[k:], src[i:mid])
	copy(dst[k:], src[j:hi])
}
