package quill

import (
	"fmt"
	"math"
	"sort"
)

// Updater is a persistent per-tick mutation attached to a mobject. It runs
// after every animation of the tick with the frame delta in seconds.
// Updaters may rely on registration order and nothing else.
type Updater interface {
	Update(m *Mobject, dt float64) error
}

// UpdaterFunc adapts a function to the Updater interface.
type UpdaterFunc func(m *Mobject, dt float64) error

// Update calls f(m, dt).
func (f UpdaterFunc) Update(m *Mobject, dt float64) error { return f(m, dt) }

// UpdaterID identifies a registered updater. IDs increase with registration
// order across all mobjects.
type UpdaterID uint64

// updaterIDCounter is a plain counter, like mobjectIDCounter.
var updaterIDCounter UpdaterID

type updaterEntry struct {
	id UpdaterID
	u  Updater
}

// AddUpdater registers u on m and returns its ID.
func (m *Mobject) AddUpdater(u Updater) UpdaterID {
	updaterIDCounter++
	m.updaters = append(m.updaters, updaterEntry{id: updaterIDCounter, u: u})
	return updaterIDCounter
}

// RemoveUpdater unregisters the updater with the given ID. It reports
// whether the updater was found.
func (m *Mobject) RemoveUpdater(id UpdaterID) bool {
	for i, e := range m.updaters {
		if e.id == id {
			m.updaters = append(m.updaters[:i], m.updaters[i+1:]...)
			return true
		}
	}
	return false
}

// ClearUpdaters removes every updater from m.
func (m *Mobject) ClearUpdaters() { m.updaters = nil }

// NumUpdaters returns the number of updaters registered on m.
func (m *Mobject) NumUpdaters() int { return len(m.updaters) }

// --- Built-in updaters ---

// Spin rotates the mobject at Rate radians per second.
type Spin struct {
	Rate float64
}

func (s Spin) Update(m *Mobject, dt float64) error {
	m.Rotation += s.Rate * dt
	return nil
}

// Drift translates the mobject at Velocity scene units per second.
type Drift struct {
	Velocity Vec2
}

func (d Drift) Update(m *Mobject, dt float64) error {
	m.Shift(d.Velocity.Scale(dt))
	return nil
}

// Follow keeps the mobject's origin at Target's world origin plus Offset.
type Follow struct {
	Target *Mobject
	Offset Vec2
}

func (f Follow) Update(m *Mobject, dt float64) error {
	if f.Target == nil {
		return fmt.Errorf("follow: nil target")
	}
	p := f.Target.LocalToWorld(Vec2{}).Add(f.Offset)
	if parent := m.Parent(); parent != nil {
		var err error
		if p, err = parent.WorldToLocal(p); err != nil {
			return err
		}
	}
	m.MoveTo(p)
	return nil
}

// Pulse oscillates the scale between 1-Amplitude and 1+Amplitude of the
// scale it first saw, with the given period in seconds. It keeps state, so
// register a *Pulse.
type Pulse struct {
	Amplitude float64
	Period    float64

	elapsed float64
	base    Vec2
	started bool
}

func (p *Pulse) Update(m *Mobject, dt float64) error {
	if p.Period <= 0 {
		return fmt.Errorf("pulse: period must be positive, got %v", p.Period)
	}
	if !p.started {
		p.base = Vec2{m.ScaleX, m.ScaleY}
		p.started = true
	}
	p.elapsed += dt
	f := 1 + p.Amplitude*math.Sin(2*math.Pi*p.elapsed/p.Period)
	m.ScaleX, m.ScaleY = p.base.X*f, p.base.Y*f
	return nil
}

// --- Scheduling ---

// scheduledUpdater is one updater bound to its mobject for a tick.
type scheduledUpdater struct {
	m *Mobject
	updaterEntry
}

// collectUpdaters gathers the updaters of every mobject under root in global
// registration order.
func collectUpdaters(root *Mobject) []scheduledUpdater {
	var out []scheduledUpdater
	var walk func(*Mobject)
	walk = func(m *Mobject) {
		for _, e := range m.updaters {
			out = append(out, scheduledUpdater{m: m, updaterEntry: e})
		}
		for _, c := range m.children {
			walk(c)
		}
	}
	walk(root)
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// runUpdaters invokes every updater of the attached tree under root. A
// failing or panicking updater is removed and reported; the remaining
// updaters still run. Updaters whose mobject was detached by an earlier
// updater in the same pass are skipped.
func runUpdaters(root *Mobject, dt float64, frame int) []*UpdaterRuntimeError {
	var failures []*UpdaterRuntimeError
	for _, su := range collectUpdaters(root) {
		if su.m.Root() != root {
			continue
		}
		if err := safeUpdate(su.u, su.m, dt); err != nil {
			su.m.RemoveUpdater(su.id)
			failures = append(failures, &UpdaterRuntimeError{
				Mobject: su.m.label(),
				Updater: su.id,
				Frame:   frame,
				Err:     err,
			})
		}
	}
	return failures
}

func safeUpdate(u Updater, m *Mobject, dt float64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return u.Update(m, dt)
}
