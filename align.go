package quill

import "fmt"

// AlignPolicy selects how two paths with different segment counts are made
// compatible before pointwise interpolation.
type AlignPolicy int

const (
	// AlignPad repeats the last point of the shorter path as degenerate
	// zero-length segments until the counts match.
	AlignPad AlignPolicy = iota
	// AlignSubdivide splits the longest segments of the shorter path at
	// their midpoint until the counts match. Morphs look smoother because
	// the added segments carry real geometry.
	AlignSubdivide
)

func (p AlignPolicy) String() string {
	switch p {
	case AlignPad:
		return "pad"
	case AlignSubdivide:
		return "subdivide"
	default:
		return fmt.Sprintf("AlignPolicy(%d)", int(p))
	}
}

// ParseAlignPolicy maps "pad" or "subdivide" onto a policy.
func ParseAlignPolicy(s string) (AlignPolicy, error) {
	switch s {
	case "", "pad":
		return AlignPad, nil
	case "subdivide":
		return AlignSubdivide, nil
	}
	return AlignPad, fmt.Errorf("unknown align policy %q", s)
}

// Align returns copies of a and b with equal segment counts. An empty path
// is expanded into degenerate segments at the other path's start. Paths with
// different winding (one closed, one open) fail with *GeometryError unless
// the open one ends where it starts.
func Align(a, b Path, policy AlignPolicy) (Path, Path, error) {
	a, b = a.Clone(), b.Clone()
	if !a.IsEmpty() && !b.IsEmpty() && a.IsClosedShape() != b.IsClosedShape() {
		return a, b, &GeometryError{
			Op:     "align",
			Reason: fmt.Sprintf("winding mismatch (closed=%v vs closed=%v)", a.IsClosedShape(), b.IsClosedShape()),
		}
	}
	switch {
	case a.IsEmpty() && b.IsEmpty():
		return a, b, nil
	case a.IsEmpty():
		a.Segments = degenerateSegments(b.Start(), len(b.Segments))
		a.Closed = b.Closed
		return a, b, nil
	case b.IsEmpty():
		b.Segments = degenerateSegments(a.End(), len(a.Segments))
		b.Closed = a.Closed
		return a, b, nil
	}
	n := max(len(a.Segments), len(b.Segments))
	var err error
	if a.Segments, err = growSegments(a.Segments, n, policy); err != nil {
		return a, b, err
	}
	if b.Segments, err = growSegments(b.Segments, n, policy); err != nil {
		return a, b, err
	}
	return a, b, nil
}

// AlignPaths aligns two path lists element by element. The shorter list is
// extended with empty paths, which Align then collapses onto the partner.
func AlignPaths(a, b []Path, policy AlignPolicy) ([]Path, []Path, error) {
	n := max(len(a), len(b))
	outA := make([]Path, n)
	outB := make([]Path, n)
	for i := 0; i < n; i++ {
		var pa, pb Path
		if i < len(a) {
			pa = a[i]
		} else {
			pa = Path{Style: b[i].Style.withOpacity(0)}
		}
		if i < len(b) {
			pb = b[i]
		} else {
			pb = Path{Style: a[i].Style.withOpacity(0)}
		}
		ra, rb, err := Align(pa, pb, policy)
		if err != nil {
			return nil, nil, fmt.Errorf("path %d: %w", i, err)
		}
		outA[i], outB[i] = ra, rb
	}
	return outA, outB, nil
}

func (s Style) withOpacity(o float64) Style {
	s.Opacity = o
	return s
}

func degenerateSegments(p Vec2, n int) []Segment {
	segs := make([]Segment, n)
	for i := range segs {
		segs[i] = Segment{p, p, p, p}
	}
	return segs
}

// growSegments returns segs extended to n segments.
func growSegments(segs []Segment, n int, policy AlignPolicy) ([]Segment, error) {
	if len(segs) >= n {
		return segs, nil
	}
	switch policy {
	case AlignPad:
		last := segs[len(segs)-1][3]
		for len(segs) < n {
			segs = append(segs, Segment{last, last, last, last})
		}
		return segs, nil
	case AlignSubdivide:
		for len(segs) < n {
			longest, best := 0, -1.0
			for i, s := range segs {
				if l := s.chordSum(4); l > best {
					longest, best = i, l
				}
			}
			left, right := segs[longest].Split(0.5)
			segs = append(segs, Segment{})
			copy(segs[longest+2:], segs[longest+1:])
			segs[longest], segs[longest+1] = left, right
		}
		return segs, nil
	}
	return nil, &GeometryError{Op: "align", Reason: "unknown policy " + policy.String()}
}
