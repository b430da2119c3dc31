package quill

import (
	"fmt"
	"math"
)

// timeEpsilon absorbs float error when comparing the clock to entry bounds
// built from sums of durations.
const timeEpsilon = 1e-9

// EntryState is the lifecycle state of a timeline entry.
type EntryState uint8

const (
	Scheduled EntryState = iota
	Running
	Completed
)

func (s EntryState) String() string {
	switch s {
	case Scheduled:
		return "scheduled"
	case Running:
		return "running"
	case Completed:
		return "completed"
	}
	return fmt.Sprintf("EntryState(%d)", uint8(s))
}

// Entry places an animation on the global clock over [Start, End).
// A looping entry restarts at End instead of completing; it never keeps
// playback alive on its own.
type Entry struct {
	Animation Animation
	Start     float64
	End       float64
	Loop      bool

	state EntryState
	cycle int
}

// State returns the entry's lifecycle state.
func (e *Entry) State() EntryState { return e.state }

// Block is a composed group of entries with start offsets relative to the
// block start.
type Block []Entry

// End returns the latest end offset in the block.
func (b Block) End() float64 {
	end := 0.0
	for _, e := range b {
		end = max(end, e.End)
	}
	return end
}

func single(a Animation) Entry {
	return Entry{Animation: a, Start: 0, End: a.Duration()}
}

// Parallel starts every animation at the same time.
func Parallel(anims ...Animation) Block {
	b := make(Block, 0, len(anims))
	for _, a := range anims {
		b = append(b, single(a))
	}
	return b
}

// Sequential chains animations so each starts when the previous ends.
func Sequential(anims ...Animation) Block {
	b := make(Block, 0, len(anims))
	t := 0.0
	for _, a := range anims {
		e := single(a)
		e.Start, e.End = t, t+a.Duration()
		b = append(b, e)
		t = e.End
	}
	return b
}

// Staggered starts animation i at i·lag.
func Staggered(lag float64, anims ...Animation) Block {
	b := make(Block, 0, len(anims))
	for i, a := range anims {
		start := float64(i) * lag
		b = append(b, Entry{Animation: a, Start: start, End: start + a.Duration()})
	}
	return b
}

// Looping marks every entry of b as looping.
func Looping(b Block) Block {
	out := make(Block, len(b))
	copy(out, b)
	for i := range out {
		out[i].Loop = true
	}
	return out
}

// Timeline owns the scheduled entries of a scene. Entries are applied in
// the order they were added.
type Timeline struct {
	entries []*Entry

	// attach adds an animated target to the scene. Nil means targets are
	// never attached.
	attach func(*Mobject) error
	// inScene reports whether a mobject is attached to the scene.
	inScene func(*Mobject) bool
}

// NewTimeline returns an empty timeline.
func NewTimeline() *Timeline { return &Timeline{} }

// Add places a block at global time start. Animations with negative
// duration, nil animations and negative starts are rejected.
func (tl *Timeline) Add(start float64, b Block) error {
	if start < 0 || math.IsNaN(start) {
		return fmt.Errorf("timeline: invalid start %v", start)
	}
	for _, e := range b {
		if e.Animation == nil {
			return fmt.Errorf("timeline: nil animation")
		}
		if d := e.Animation.Duration(); d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			return fmt.Errorf("timeline: animation %q has invalid duration %v", e.Animation.Name(), d)
		}
	}
	for _, e := range b {
		e.Start += start
		e.End += start
		e.state = Scheduled
		tl.entries = append(tl.entries, &e)
	}
	return nil
}

// End returns the latest end time of any non-looping entry.
func (tl *Timeline) End() float64 {
	end := 0.0
	for _, e := range tl.entries {
		if !e.Loop {
			end = max(end, e.End)
		}
	}
	return end
}

// Pending reports whether any non-looping entry is not yet completed.
func (tl *Timeline) Pending() bool {
	for _, e := range tl.entries {
		if !e.Loop && e.state != Completed {
			return true
		}
	}
	return false
}

// Entries returns the live entries. The slice must not be mutated.
func (tl *Timeline) Entries() []*Entry { return tl.entries }

// Prune drops completed entries.
func (tl *Timeline) Prune() {
	kept := tl.entries[:0]
	for _, e := range tl.entries {
		if e.state != Completed {
			kept = append(kept, e)
		}
	}
	clear(tl.entries[len(kept):])
	tl.entries = kept
}

// Apply advances every entry to global time now: entries whose window has
// opened begin, running entries interpolate at rate(t), and entries past
// their end finish. Removers have their target detached at completion; the
// detached mobjects are returned. The first error stops the pass and is
// returned as a *PlaybackError without Frame and Time set.
func (tl *Timeline) Apply(now float64) ([]*Mobject, error) {
	var removed []*Mobject
	for _, e := range tl.entries {
		if e.state == Completed || now+timeEpsilon < e.Start {
			continue
		}
		a := e.Animation
		if e.state == Scheduled {
			if err := guard(func() error { return tl.begin(a) }); err != nil {
				return removed, entryError("begin", a, err)
			}
			e.state = Running
		}

		dur := e.End - e.Start
		t := 1.0
		done := now+timeEpsilon >= e.End
		if dur > 0 && !done {
			t = clamp01((now - e.Start) / dur)
		}
		if e.Loop && done && dur > 0 {
			cycle := int(math.Floor((now - e.Start + timeEpsilon) / dur))
			for e.cycle < cycle {
				// Close the finished cycle and start the next one.
				if err := interpolate(a, 1); err != nil {
					return removed, entryError("interpolate", a, err)
				}
				if err := guard(a.Finish); err != nil {
					return removed, entryError("finish", a, err)
				}
				if err := guard(a.Begin); err != nil {
					return removed, entryError("begin", a, err)
				}
				e.cycle++
			}
			t = clamp01((now - e.Start - float64(cycle)*dur) / dur)
			done = false
		}

		if err := interpolate(a, t); err != nil {
			return removed, entryError("interpolate", a, err)
		}
		if !done {
			continue
		}
		if err := guard(a.Finish); err != nil {
			return removed, entryError("finish", a, err)
		}
		e.state = Completed
		if a.Remover() {
			if m := a.Target(); m != nil {
				m.Detach()
				removed = append(removed, m)
			}
		}
	}
	return removed, nil
}

// Skip drives every pending non-looping entry straight to its end state in
// order, as if the clock had jumped past all of them.
func (tl *Timeline) Skip() ([]*Mobject, error) {
	return tl.Apply(tl.End())
}

// begin attaches the target of any animation other than a remover when it
// is not yet part of the scene.
func (tl *Timeline) begin(a Animation) error {
	if !a.Remover() && tl.attach != nil {
		if m := a.Target(); m != nil && (tl.inScene == nil || !tl.inScene(m)) {
			if err := tl.attach(m); err != nil {
				return err
			}
		}
	}
	return a.Begin()
}

func interpolate(a Animation, t float64) error {
	return guard(func() error { return a.Interpolate(a.Rate()(t)) })
}

// guard converts a panic in fn into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

func entryError(phase string, a Animation, err error) *PlaybackError {
	pe := &PlaybackError{Phase: phase, Animation: a.Name(), Err: err}
	if m := a.Target(); m != nil {
		pe.Mobject = m.label()
	}
	return pe
}
