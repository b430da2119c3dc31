package quill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Scene owns the mobject tree, the timeline, the camera and the output
// pipeline, and advances them on a fixed clock. A Scene is driven from one
// goroutine; only rendering may overlap with the next tick (see
// WithPipelining).
type Scene struct {
	// ScreenshotDir is where Screenshot writes its PNGs.
	ScreenshotDir string

	cfg        Config
	root       *Mobject
	foreground []*Mobject
	camera     *Camera
	timeline   *Timeline
	rng        *rand.Rand

	renderer Renderer
	noRender bool
	sink     FrameSink
	log      *slog.Logger
	runID    string
	debug    bool
	skip     bool
	depth    int

	frame    int     // index of the next tick
	prevTime float64 // time of the previous tick
	cursor   float64 // scripting cursor in seconds
	started  bool
	halted   error

	last            *Snapshot
	failures        []*UpdaterRuntimeError
	screenshotQueue []string

	ctx  context.Context
	pipe *pipeline
}

// SceneOption configures a Scene at construction.
type SceneOption func(*Scene)

// WithRenderer sets the backend. Passing nil disables rendering: ticks
// still produce snapshots but no frames reach the sink.
func WithRenderer(r Renderer) SceneOption {
	return func(s *Scene) {
		s.renderer = r
		s.noRender = r == nil
	}
}

// WithSink sets the consumer of rendered frames.
func WithSink(sink FrameSink) SceneOption {
	return func(s *Scene) { s.sink = sink }
}

// WithLogger overrides the package logger for this scene.
func WithLogger(l *slog.Logger) SceneOption {
	return func(s *Scene) { s.log = l }
}

// WithPipelining renders frames on a background goroutine with up to depth
// snapshots queued. Frames are still delivered in index order. A depth of 0
// renders synchronously inside Tick.
func WithPipelining(depth int) SceneOption {
	return func(s *Scene) { s.depth = max(depth, 0) }
}

// WithDebug enables per-tick timing logs and tree shape warnings.
func WithDebug(enabled bool) SceneOption {
	return func(s *Scene) { s.debug = enabled }
}

// WithSkipAnimations makes Run jump every scheduled animation to its end
// state and emit only the final frame.
func WithSkipAnimations(enabled bool) SceneOption {
	return func(s *Scene) { s.skip = enabled }
}

// NewScene creates a scene for cfg. Unless WithRenderer is given, the
// backend is chosen by cfg.Backend.
func NewScene(cfg Config, opts ...SceneOption) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Scene{
		ScreenshotDir: "screenshots",
		cfg:           cfg,
		root:          NewMobject("root"),
		camera:        NewCamera(cfg.Width, cfg.Height, cfg.FrameWidth),
		timeline:      NewTimeline(),
		rng:           rand.New(rand.NewPCG(cfg.Seed, cfg.Seed)),
		runID:         uuid.NewString(),
		ctx:           context.Background(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.renderer == nil && !s.noRender {
		r, err := NewRenderer(cfg)
		if err != nil {
			return nil, err
		}
		s.renderer = r
	}
	if s.log == nil {
		s.log = Logger()
	}
	s.log = s.log.With("run", s.runID)
	if s.debug {
		s.root.debugLog = s.log
	}
	s.timeline.attach = s.attach
	s.timeline.inScene = s.Contains
	return s, nil
}

// Config returns the scene configuration.
func (s *Scene) Config() Config { return s.cfg }

// Root returns the scene's root mobject.
func (s *Scene) Root() *Mobject { return s.root }

// Camera returns the scene camera.
func (s *Scene) Camera() *Camera { return s.camera }

// Timeline returns the scene timeline.
func (s *Scene) Timeline() *Timeline { return s.timeline }

// Rand returns the scene's deterministic random source, seeded from
// Config.Seed.
func (s *Scene) Rand() *rand.Rand { return s.rng }

// RunID returns the identifier attached to this scene's log records.
func (s *Scene) RunID() string { return s.runID }

// Frame returns the number of ticks completed.
func (s *Scene) Frame() int { return s.frame }

// Time returns the clock time of the most recent tick.
func (s *Scene) Time() float64 { return s.prevTime }

// Last returns the snapshot of the most recent tick, or nil.
func (s *Scene) Last() *Snapshot { return s.last }

// UpdaterErrors returns every updater failure recorded so far.
func (s *Scene) UpdaterErrors() []*UpdaterRuntimeError { return s.failures }

// --- Object management ---

// Add attaches mobs to the scene root. Later additions draw above earlier
// ones; adding a mobject already at the top level moves it to the front.
// Foreground mobjects stay above everything added this way. A mobject owned
// by another parent is rejected.
func (s *Scene) Add(mobs ...*Mobject) error {
	defer s.raiseForeground()
	for _, m := range mobs {
		if m != nil && m.parent == s.root {
			s.root.SetChildIndex(m, len(s.root.children)-1)
			continue
		}
		if err := s.root.AddChild(m); err != nil {
			return err
		}
	}
	return nil
}

// AddForeground adds mobs to the scene and keeps them above every other
// top-level mobject, in the order given, until RemoveForeground. Adding a
// mobject that is already in the foreground moves it to the top.
func (s *Scene) AddForeground(mobs ...*Mobject) error {
	if err := s.Add(mobs...); err != nil {
		return err
	}
	for _, m := range mobs {
		s.dropForeground(m)
		s.foreground = append(s.foreground, m)
	}
	s.raiseForeground()
	return nil
}

// RemoveForeground returns mobs to the normal draw order. They stay in the
// scene at their current position.
func (s *Scene) RemoveForeground(mobs ...*Mobject) {
	for _, m := range mobs {
		s.dropForeground(m)
	}
}

// Foreground returns a copy of the foreground mobjects, bottom first.
func (s *Scene) Foreground() []*Mobject { return slices.Clone(s.foreground) }

func (s *Scene) dropForeground(m *Mobject) {
	s.foreground = slices.DeleteFunc(s.foreground, func(f *Mobject) bool { return f == m })
}

// raiseForeground moves the top-level foreground mobjects to the end of the
// root's children.
func (s *Scene) raiseForeground() {
	for _, f := range s.foreground {
		if f.parent == s.root {
			s.root.SetChildIndex(f, len(s.root.children)-1)
		}
	}
}

// Remove detaches mobs from wherever they sit in the scene tree and from
// the foreground. Mobjects not in the scene are ignored.
func (s *Scene) Remove(mobs ...*Mobject) {
	for _, m := range mobs {
		s.dropForeground(m)
		if s.Contains(m) {
			m.Detach()
		}
	}
}

// Replace puts replacement at old's position in the tree, keeping draw
// order. A foreground old hands its place in the foreground over.
func (s *Scene) Replace(old, replacement *Mobject) error {
	if !s.Contains(old) {
		return &TreeInvariantError{Op: "Replace", Parent: s.root.label(), Child: old.label(), Reason: "mobject is not in the scene"}
	}
	if err := old.parent.ReplaceChild(old, replacement); err != nil {
		return err
	}
	if i := slices.Index(s.foreground, old); i >= 0 {
		s.foreground[i] = replacement
	}
	return nil
}

// BringToFront moves m to the top of its siblings, below any foreground
// mobjects.
func (s *Scene) BringToFront(m *Mobject) {
	if s.Contains(m) {
		m.parent.SetChildIndex(m, len(m.parent.children)-1)
		s.raiseForeground()
	}
}

// BringToBack moves m to the bottom of its siblings.
func (s *Scene) BringToBack(m *Mobject) {
	if s.Contains(m) {
		m.parent.SetChildIndex(m, 0)
	}
}

// Clear detaches every top-level mobject and empties the foreground.
func (s *Scene) Clear() {
	s.root.RemoveChildren()
	s.foreground = nil
}

// Mobjects returns a copy of the top-level mobjects in draw order.
func (s *Scene) Mobjects() []*Mobject {
	return append([]*Mobject(nil), s.root.children...)
}

// Contains reports whether m is attached somewhere under the scene root.
func (s *Scene) Contains(m *Mobject) bool {
	return m != nil && m != s.root && m.Root() == s.root
}

// attach adds the detached tree holding m to the scene.
func (s *Scene) attach(m *Mobject) error {
	r := m.Root()
	if r == s.root {
		return nil
	}
	if err := s.root.AddChild(r); err != nil {
		return err
	}
	s.raiseForeground()
	return nil
}

// --- Scripting ---

// Play runs anims in parallel starting at the scripting cursor and moves
// the cursor to the end of the longest one.
func (s *Scene) Play(anims ...Animation) error {
	return s.PlayBlock(Parallel(anims...))
}

// PlaySequence runs anims one after another from the cursor.
func (s *Scene) PlaySequence(anims ...Animation) error {
	return s.PlayBlock(Sequential(anims...))
}

// PlayStaggered starts anims lag seconds apart from the cursor.
func (s *Scene) PlayStaggered(lag float64, anims ...Animation) error {
	if lag < 0 || math.IsNaN(lag) {
		return fmt.Errorf("quill: invalid stagger lag %v", lag)
	}
	return s.PlayBlock(Staggered(lag, anims...))
}

// PlayBlock schedules a composed block at the cursor and advances the
// cursor past it. Looping entries do not advance the cursor.
func (s *Scene) PlayBlock(b Block) error {
	start := s.scriptStart()
	if err := s.timeline.Add(start, b); err != nil {
		return err
	}
	end := 0.0
	for _, e := range b {
		if !e.Loop {
			end = max(end, e.End)
		}
	}
	s.cursor = start + end
	return nil
}

// Loop schedules anims to repeat in parallel from the cursor for as long
// as playback continues. It does not advance the cursor.
func (s *Scene) Loop(anims ...Animation) error {
	return s.timeline.Add(s.scriptStart(), Looping(Parallel(anims...)))
}

// Wait advances the cursor by d seconds. Playback keeps ticking until the
// wait has elapsed.
func (s *Scene) Wait(d float64) error {
	if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return fmt.Errorf("quill: invalid wait %v", d)
	}
	s.cursor = s.scriptStart() + d
	return nil
}

// Schedule runs anims in parallel from the absolute time start without
// moving the cursor.
func (s *Scene) Schedule(start float64, anims ...Animation) error {
	return s.timeline.Add(start, Parallel(anims...))
}

// Cursor returns the time at which the next Play starts.
func (s *Scene) Cursor() float64 { return s.scriptStart() }

// scriptStart is the cursor, never earlier than the next tick.
func (s *Scene) scriptStart() float64 {
	return max(s.cursor, s.timeAt(s.frame))
}

// Done reports whether at least one frame was produced, no animation is
// scheduled or running, and the last pending wait has elapsed.
func (s *Scene) Done() bool {
	return s.frame > 0 && !s.timeline.Pending() && s.prevTime+timeEpsilon >= s.cursor
}

// --- Playback ---

// timeAt returns the clock time of frame index. Time is derived from the
// integer index, so it never accumulates drift.
func (s *Scene) timeAt(index int) float64 {
	return float64(index) / float64(s.cfg.FrameRate)
}

// Tick advances the scene by one fixed step: running animations are applied
// and completed ones transitioned, updaters run, world geometry is
// resolved, and the snapshot is handed to the renderer and sink. After an
// error the scene is halted and every later Tick returns the same error.
func (s *Scene) Tick() (*Snapshot, error) {
	if s.halted != nil {
		return nil, s.halted
	}
	if !s.started {
		s.started = true
		s.log.Info("playback started",
			"fps", s.cfg.FrameRate, "width", s.cfg.Width, "height", s.cfg.Height, "backend", s.cfg.Backend)
	}

	var stats debugStats
	index := s.frame
	now := s.timeAt(index)
	dt := now - s.prevTime

	mark := time.Now()
	stats.entryCount = len(s.timeline.entries)
	if _, err := s.timeline.Apply(now); err != nil {
		return nil, s.halt(index, now, err)
	}
	s.timeline.Prune()
	if s.debug {
		stats.animateTime = time.Since(mark)
		mark = time.Now()
	}

	for _, f := range runUpdaters(s.root, dt, index) {
		s.log.Warn("updater removed", "mobject", f.Mobject, "updater", uint64(f.Updater), "frame", f.Frame, "err", f.Err)
		s.failures = append(s.failures, f)
	}
	s.camera.update(float32(dt))
	if s.debug {
		stats.updateTime = time.Since(mark)
		mark = time.Now()
	}

	snap, err := ResolveWorldGeometry(s.root, s.camera.View())
	if err != nil {
		return nil, s.halt(index, now, &PlaybackError{Phase: "resolve", Mobject: mobjectOf(err), Err: err})
	}
	snap.Index = index
	snap.Time = now
	snap.Width, snap.Height = s.cfg.Width, s.cfg.Height
	snap.Background = s.cfg.BackgroundColor
	stats.itemCount = snap.Len()
	if s.debug {
		stats.resolveTime = time.Since(mark)
		mark = time.Now()
	}

	if err := s.submit(snap); err != nil {
		return nil, s.halt(index, now, err)
	}
	if s.debug {
		stats.deliverTime = time.Since(mark)
	}
	s.debugLog(index, stats)

	s.last = snap
	s.prevTime = now
	s.frame++
	return snap, nil
}

// Run ticks until Done, then flushes the output. ctx is checked between
// ticks only; a frame in progress always completes. With
// WithSkipAnimations, every animation jumps to its end state and a single
// frame is produced.
func (s *Scene) Run(ctx context.Context) error {
	s.ctx = ctx
	begin := time.Now()
	if s.skip {
		if err := s.skipToEnd(); err != nil {
			return s.finish(err)
		}
	}
	for {
		if err := ctx.Err(); err != nil {
			return s.finish(err)
		}
		if _, err := s.Tick(); err != nil {
			return s.finish(err)
		}
		if s.Done() {
			break
		}
	}
	if err := s.Flush(); err != nil {
		return err
	}
	s.log.Info("playback finished", "frames", s.frame, "duration", s.prevTime, "elapsed", time.Since(begin))
	return nil
}

// finish flushes after a failed run. A flush error that is not already err
// is joined to it.
func (s *Scene) finish(err error) error {
	ferr := s.Flush()
	if ferr == nil || errors.Is(err, ferr) {
		return err
	}
	return errors.Join(err, ferr)
}

// skipToEnd completes every scheduled animation and moves the clock to the
// frame at which the script ends.
func (s *Scene) skipToEnd() error {
	end := max(s.timeline.End(), s.cursor)
	index := int(math.Ceil(end*float64(s.cfg.FrameRate) - timeEpsilon))
	if _, err := s.timeline.Skip(); err != nil {
		return s.halt(index, end, err)
	}
	s.timeline.Prune()
	s.frame = max(s.frame, index)
	s.prevTime = s.timeAt(s.frame)
	return nil
}

// Flush waits for every queued frame to be rendered and delivered.
func (s *Scene) Flush() error {
	if s.pipe == nil {
		return nil
	}
	err := s.pipe.stop()
	s.pipe = nil
	return err
}

// Close flushes pending frames and releases the renderer.
func (s *Scene) Close() error {
	err := s.Flush()
	if s.renderer != nil {
		err = errors.Join(err, s.renderer.Close())
	}
	return err
}

// submit hands snap to the renderer, inline or through the pipeline.
func (s *Scene) submit(snap *Snapshot) error {
	if s.noRender {
		return nil
	}
	job := frameJob{snap: snap}
	if len(s.screenshotQueue) > 0 {
		job.screenshots = append([]string(nil), s.screenshotQueue...)
		s.screenshotQueue = s.screenshotQueue[:0]
	}
	if s.depth == 0 {
		return s.deliver(job)
	}
	if s.pipe == nil {
		s.pipe = startPipeline(s.ctx, s.depth, s.deliver)
	}
	return s.pipe.submit(job)
}

// deliver renders one frame and passes it to the sink. It runs on the
// pipeline goroutine when pipelining is enabled and only reads the
// immutable snapshot.
func (s *Scene) deliver(job frameJob) error {
	fb, err := s.renderer.Render(job.snap)
	if err != nil {
		return &PlaybackError{Frame: job.snap.Index, Time: job.snap.Time, Phase: "render", Err: err}
	}
	s.writeScreenshots(fb.Image, job.screenshots)
	if s.sink != nil {
		if err := s.sink.OnFrame(fb.Image, fb.Index); err != nil {
			return &PlaybackError{Frame: job.snap.Index, Time: job.snap.Time, Phase: "sink", Err: err}
		}
	}
	return nil
}

// halt records err as the terminal playback error, filling in the frame and
// time when err is a *PlaybackError.
func (s *Scene) halt(index int, now float64, err error) error {
	var pe *PlaybackError
	if errors.As(err, &pe) {
		if pe.Frame == 0 && pe.Time == 0 {
			pe.Frame, pe.Time = index, now
		}
	} else {
		pe = &PlaybackError{Frame: index, Time: now, Phase: "tick", Err: err}
		err = pe
	}
	s.halted = err
	s.log.Error("playback halted", "frame", pe.Frame, "time", pe.Time, "phase", pe.Phase, "err", pe.Err)
	return err
}

// mobjectOf extracts the mobject named by a geometry or tree error.
func mobjectOf(err error) string {
	var ge *GeometryError
	if errors.As(err, &ge) {
		return ge.Mobject
	}
	var te *TreeInvariantError
	if errors.As(err, &te) {
		return te.Child
	}
	return ""
}
