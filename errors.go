package quill

import (
	"fmt"
	"strings"
)

// GeometryError reports malformed or incompatible path data.
type GeometryError struct {
	Op      string // operation that failed, e.g. "interpolate"
	Mobject string // owning mobject name, when known
	Reason  string
}

func (e *GeometryError) Error() string {
	if e.Mobject != "" {
		return fmt.Sprintf("quill: geometry: %s on %q: %s", e.Op, e.Mobject, e.Reason)
	}
	return fmt.Sprintf("quill: geometry: %s: %s", e.Op, e.Reason)
}

// SingularTransformError reports an attempt to invert a non-invertible
// transform.
type SingularTransformError struct {
	Matrix Affine
	Det    float64
}

func (e *SingularTransformError) Error() string {
	return fmt.Sprintf("quill: singular transform %v (det %g)", [6]float64(e.Matrix), e.Det)
}

// TreeInvariantError reports an attachment that would break the strict tree
// shape of the mobject hierarchy: double parenting or a cycle.
type TreeInvariantError struct {
	Op     string
	Parent string
	Child  string
	Reason string
}

func (e *TreeInvariantError) Error() string {
	return fmt.Sprintf("quill: tree: %s %q -> %q: %s", e.Op, e.Parent, e.Child, e.Reason)
}

// UpdaterRuntimeError wraps a failure raised by an updater. The scheduler
// logs it and drops the updater; it never aborts a frame.
type UpdaterRuntimeError struct {
	Mobject string
	Updater UpdaterID
	Frame   int
	Err     error
}

func (e *UpdaterRuntimeError) Error() string {
	return fmt.Sprintf("quill: updater %d on %q failed at frame %d: %v", e.Updater, e.Mobject, e.Frame, e.Err)
}

func (e *UpdaterRuntimeError) Unwrap() error { return e.Err }

// PlaybackError is returned when a tick cannot produce a consistent frame.
// Playback halts; the offending frame is never handed to the renderer.
type PlaybackError struct {
	Frame     int
	Time      float64
	Phase     string
	Animation string
	Mobject   string
	Err       error
}

func (e *PlaybackError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "quill: playback halted at frame %d (t=%.4gs) during %s", e.Frame, e.Time, e.Phase)
	if e.Animation != "" {
		fmt.Fprintf(&b, ", animation %q", e.Animation)
	}
	if e.Mobject != "" {
		fmt.Fprintf(&b, ", mobject %q", e.Mobject)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *PlaybackError) Unwrap() error { return e.Err }

// ConfigError reports an invalid scene configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("quill: config: %s: %s", e.Field, e.Reason)
}
