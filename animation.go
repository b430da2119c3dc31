package quill

// DefaultDuration is the run time of an animation created without
// WithDuration, in seconds.
const DefaultDuration = 1.0

// Animation binds a target mobject, a duration, a rate function and a
// mutation rule. The timeline calls Begin once when the animation starts,
// Interpolate with the rate-mapped progress on every tick it is running
// (alpha is 0 at the start and 1 at the end), and Finish once on the tick it
// completes. Any returned error halts playback.
type Animation interface {
	Name() string
	// Target returns the animated mobject, or nil for animations that only
	// occupy time.
	Target() *Mobject
	Duration() float64
	Rate() RateFunc
	Begin() error
	Interpolate(alpha float64) error
	Finish() error
	// Remover animations detach their target when they complete.
	Remover() bool
	// Introducer animations bring their target into view (FadeIn, Create).
	// Like every non-remover, they attach the target when they begin.
	Introducer() bool
}

// Base implements the bookkeeping half of Animation. Embed it in custom
// animations and initialise it with NewBase.
type Base struct {
	name       string
	target     *Mobject
	duration   float64
	rate       RateFunc
	remover    bool
	introducer bool
	align      AlignPolicy
}

// AnimOption configures an animation at construction.
type AnimOption func(*Base)

// WithDuration sets the run time in seconds. Negative values are rejected
// when the animation is scheduled.
func WithDuration(d float64) AnimOption {
	return func(b *Base) { b.duration = d }
}

// WithRate sets the rate function. nil keeps the default.
func WithRate(f RateFunc) AnimOption {
	return func(b *Base) {
		if f != nil {
			b.rate = f
		}
	}
}

// WithName overrides the name reported in logs and errors.
func WithName(name string) AnimOption {
	return func(b *Base) { b.name = name }
}

// WithAlign selects the segment alignment policy used by morphing
// animations.
func WithAlign(p AlignPolicy) AnimOption {
	return func(b *Base) { b.align = p }
}

// NewBase returns a Base with DefaultDuration and the Smooth rate function,
// then applies opts.
func NewBase(name string, target *Mobject, opts ...AnimOption) Base {
	b := Base{name: name, target: target, duration: DefaultDuration, rate: Smooth}
	for _, o := range opts {
		o(&b)
	}
	return b
}

func (b *Base) Name() string             { return b.name }
func (b *Base) Target() *Mobject         { return b.target }
func (b *Base) Duration() float64        { return b.duration }
func (b *Base) Rate() RateFunc           { return b.rate }
func (b *Base) Remover() bool            { return b.remover }
func (b *Base) Introducer() bool         { return b.introducer }
func (b *Base) Begin() error             { return nil }
func (b *Base) Finish() error            { return nil }
func (b *Base) AlignPolicy() AlignPolicy { return b.align }

// --- Wait ---

type waitAnim struct {
	Base
}

// Wait returns an animation that mutates nothing and lasts d seconds.
func Wait(d float64) Animation {
	return &waitAnim{Base: NewBase("Wait", nil, WithDuration(d), WithRate(Linear))}
}

func (a *waitAnim) Interpolate(float64) error { return nil }

// --- Introduce / Dismiss ---

type instantAnim struct {
	Base
}

func (a *instantAnim) Interpolate(float64) error { return nil }

// Introduce returns a zero-duration animation that attaches m to the scene
// when the timeline reaches it.
func Introduce(m *Mobject, opts ...AnimOption) Animation {
	a := &instantAnim{Base: NewBase("Introduce", m, append([]AnimOption{WithDuration(0)}, opts...)...)}
	a.introducer = true
	return a
}

// Dismiss returns a zero-duration animation that detaches m when the
// timeline reaches it.
func Dismiss(m *Mobject, opts ...AnimOption) Animation {
	a := &instantAnim{Base: NewBase("Dismiss", m, append([]AnimOption{WithDuration(0)}, opts...)...)}
	a.remover = true
	return a
}

// --- UpdateFromAlpha ---

type alphaFuncAnim struct {
	Base
	fn func(m *Mobject, alpha float64) error
}

// UpdateFromAlpha returns an animation that calls fn with the target and the
// rate-mapped progress on every tick.
func UpdateFromAlpha(m *Mobject, fn func(m *Mobject, alpha float64) error, opts ...AnimOption) Animation {
	return &alphaFuncAnim{Base: NewBase("UpdateFromAlpha", m, opts...), fn: fn}
}

func (a *alphaFuncAnim) Interpolate(alpha float64) error {
	return a.fn(a.target, alpha)
}
