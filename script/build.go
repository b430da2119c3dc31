package script

import (
	"fmt"
	"math"

	"github.com/tanema/gween/ease"

	"github.com/phanxgames/quill"
	"github.com/phanxgames/quill/glyph"
)

const defaultFont = "goregular"

// builder holds the state of one Build call.
type builder struct {
	scene  *quill.Scene
	byName map[string]*quill.Mobject
	glyphs quill.GlyphSource
}

// Build creates a scene from the script: the configuration is resolved,
// every mobject is constructed and parented, updaters are attached and the
// steps are scheduled on the scene's timeline. opts are passed to
// quill.NewScene.
func (s *Script) Build(opts ...quill.SceneOption) (*quill.Scene, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	cfg, err := s.Config.resolve()
	if err != nil {
		return nil, fmt.Errorf("script: config: %w", err)
	}
	scene, err := quill.NewScene(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}
	b := &builder{
		scene:  scene,
		byName: make(map[string]*quill.Mobject, len(s.Mobjects)),
		glyphs: glyph.NewCache(glyph.Default()),
	}
	for _, spec := range s.Mobjects {
		m, err := b.mobject(spec)
		if err != nil {
			return nil, fmt.Errorf("script: mobject %q: %w", spec.Name, err)
		}
		b.byName[spec.Name] = m
	}
	for _, spec := range s.Mobjects {
		if err := b.link(spec); err != nil {
			return nil, fmt.Errorf("script: mobject %q: %w", spec.Name, err)
		}
	}
	for i, st := range s.Steps {
		if err := b.step(st); err != nil {
			return nil, fmt.Errorf("script: step %d: %w", i, err)
		}
	}
	return scene, nil
}

func (c ConfigSpec) resolve() (quill.Config, error) {
	cfg := quill.DefaultConfig()
	if c.Quality != "" {
		var err error
		if cfg, err = cfg.WithQuality(quill.Quality(c.Quality)); err != nil {
			return cfg, err
		}
	}
	if c.FrameRate != 0 {
		cfg.FrameRate = c.FrameRate
	}
	if c.Width != 0 {
		cfg.Width = c.Width
	}
	if c.Height != 0 {
		cfg.Height = c.Height
	}
	if c.FrameWidth != 0 {
		cfg.FrameWidth = c.FrameWidth
	}
	if c.Backend != "" {
		cfg.Backend = c.Backend
	}
	if c.Background != "" {
		bg, err := quill.ParseColor(c.Background)
		if err != nil {
			return cfg, err
		}
		cfg.BackgroundColor = bg
	}
	cfg.Seed = c.Seed
	return cfg, cfg.Validate()
}

// --- Mobjects ---

func (b *builder) mobject(spec MobjectSpec) (*quill.Mobject, error) {
	m, err := b.shape(spec)
	if err != nil {
		return nil, err
	}
	if spec.Fill != "" {
		c, err := quill.ParseColor(spec.Fill)
		if err != nil {
			return nil, err
		}
		m.SetFill(c)
	}
	if spec.Stroke != "" || spec.StrokeWidth != nil {
		c := quill.ColorWhite
		if spec.Stroke != "" {
			if c, err = quill.ParseColor(spec.Stroke); err != nil {
				return nil, err
			}
		}
		w := quill.DefaultStyle.StrokeWidth
		if spec.StrokeWidth != nil {
			w = *spec.StrokeWidth
		}
		m.SetStroke(c, w)
	}
	if spec.Opacity != nil {
		m.Opacity = *spec.Opacity
	}
	if spec.Position != nil {
		p, err := vec(spec.Position)
		if err != nil {
			return nil, fmt.Errorf("position: %w", err)
		}
		m.MoveTo(p)
	}
	m.Rotation = radians(spec.Rotation)
	if spec.Scale != 0 {
		m.ScaleBy(spec.Scale)
	}
	m.ZIndex = spec.Z
	return m, nil
}

func (b *builder) shape(spec MobjectSpec) (*quill.Mobject, error) {
	size := spec.Size
	if size == 0 {
		size = 1
	}
	switch spec.Shape {
	case "", "group":
		return quill.NewMobject(spec.Name), nil
	case "circle":
		return quill.NewCircle(spec.Name, size), nil
	case "square":
		return quill.NewSquare(spec.Name, size), nil
	case "rectangle":
		return quill.NewRectangle(spec.Name, spec.Width, spec.Height), nil
	case "ellipse":
		return quill.NewMobject(spec.Name, quill.Ellipse(quill.Vec2{}, spec.Width, spec.Height)), nil
	case "dot":
		return quill.NewDot(spec.Name, quill.Vec2{}), nil
	case "regular_polygon":
		if spec.Sides < 3 {
			return nil, fmt.Errorf("regular_polygon needs at least 3 sides, got %d", spec.Sides)
		}
		return quill.NewMobject(spec.Name, quill.RegularPolygon(quill.Vec2{}, spec.Sides, size, math.Pi/2)), nil
	case "arc":
		return quill.NewMobject(spec.Name, quill.Arc(quill.Vec2{}, size, 0, radians(spec.Angle))), nil
	case "polygon", "polyline":
		pts, err := vecs(spec.Points)
		if err != nil {
			return nil, fmt.Errorf("points: %w", err)
		}
		if len(pts) < 2 {
			return nil, fmt.Errorf("%s needs at least 2 points", spec.Shape)
		}
		if spec.Shape == "polygon" {
			return quill.NewPolygon(spec.Name, pts...), nil
		}
		return quill.NewMobject(spec.Name, quill.Polyline(pts...)), nil
	case "line", "arrow":
		from, err := vec(spec.From)
		if err != nil {
			return nil, fmt.Errorf("from: %w", err)
		}
		to, err := vec(spec.To)
		if err != nil {
			return nil, fmt.Errorf("to: %w", err)
		}
		if spec.Shape == "arrow" {
			return quill.NewArrow(spec.Name, from, to), nil
		}
		return quill.NewLine(spec.Name, from, to), nil
	case "text":
		font := spec.Font
		if font == "" {
			font = defaultFont
		}
		m, err := quill.NewText(b.glyphs, font, spec.Text, size)
		if err != nil {
			return nil, err
		}
		m.Name = spec.Name
		return m, nil
	}
	return nil, fmt.Errorf("unknown shape %q", spec.Shape)
}

// link attaches spec's mobject to its parent and registers its updaters.
func (b *builder) link(spec MobjectSpec) error {
	m := b.byName[spec.Name]
	if spec.Parent != "" {
		p, err := b.lookup(spec.Parent)
		if err != nil {
			return fmt.Errorf("parent: %w", err)
		}
		if err := p.AddChild(m); err != nil {
			return err
		}
	}
	for i, us := range spec.Updaters {
		u, err := b.updater(us)
		if err != nil {
			return fmt.Errorf("updater %d: %w", i, err)
		}
		m.AddUpdater(u)
	}
	return nil
}

func (b *builder) updater(us UpdaterSpec) (quill.Updater, error) {
	switch us.Kind {
	case "spin":
		return quill.Spin{Rate: radians(us.Rate)}, nil
	case "drift":
		v, err := vec(us.Velocity)
		if err != nil {
			return nil, fmt.Errorf("velocity: %w", err)
		}
		return quill.Drift{Velocity: v}, nil
	case "pulse":
		return &quill.Pulse{Amplitude: us.Amplitude, Period: us.Period}, nil
	case "follow":
		t, err := b.lookup(us.Target)
		if err != nil {
			return nil, fmt.Errorf("target: %w", err)
		}
		var off quill.Vec2
		if us.Offset != nil {
			if off, err = vec(us.Offset); err != nil {
				return nil, fmt.Errorf("offset: %w", err)
			}
		}
		return quill.Follow{Target: t, Offset: off}, nil
	}
	return nil, fmt.Errorf("unknown updater %q", us.Kind)
}

func (b *builder) lookup(name string) (*quill.Mobject, error) {
	m, ok := b.byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown mobject %q", name)
	}
	return m, nil
}

// --- Steps ---

func (b *builder) step(st Step) error {
	switch {
	case len(st.Play) > 0:
		anims, err := b.animations(st.Play)
		if err != nil {
			return err
		}
		return b.scene.Play(anims...)
	case len(st.Sequence) > 0:
		anims, err := b.animations(st.Sequence)
		if err != nil {
			return err
		}
		return b.scene.PlaySequence(anims...)
	case st.Stagger != nil:
		anims, err := b.animations(st.Stagger.Anims)
		if err != nil {
			return err
		}
		return b.scene.PlayStaggered(st.Stagger.Lag, anims...)
	case len(st.Loop) > 0:
		anims, err := b.animations(st.Loop)
		if err != nil {
			return err
		}
		return b.scene.Loop(anims...)
	case st.Wait != 0:
		return b.scene.Wait(st.Wait)
	case len(st.Add) > 0:
		return b.instant(st.Add, quill.Introduce)
	case len(st.Remove) > 0:
		return b.instant(st.Remove, quill.Dismiss)
	case st.Screenshot != "":
		label, scene := st.Screenshot, b.scene
		return scene.Play(quill.UpdateFromAlpha(nil, func(*quill.Mobject, float64) error {
			scene.Screenshot(label)
			return nil
		}, quill.WithDuration(0), quill.WithName("Screenshot")))
	}
	return fmt.Errorf("empty step")
}

// instant schedules a zero-duration add or remove for every named mobject
// at the cursor.
func (b *builder) instant(names []string, fn func(*quill.Mobject, ...quill.AnimOption) quill.Animation) error {
	anims := make([]quill.Animation, 0, len(names))
	for _, name := range names {
		m, err := b.lookup(name)
		if err != nil {
			return err
		}
		anims = append(anims, fn(m))
	}
	return b.scene.Play(anims...)
}

func (b *builder) animations(specs []AnimSpec) ([]quill.Animation, error) {
	out := make([]quill.Animation, 0, len(specs))
	for i, spec := range specs {
		a, err := b.animation(spec)
		if err != nil {
			return nil, fmt.Errorf("animation %d (%s): %w", i, spec.Anim, err)
		}
		out = append(out, a)
	}
	return out, nil
}

func (b *builder) animation(spec AnimSpec) (quill.Animation, error) {
	opts, err := animOptions(spec)
	if err != nil {
		return nil, err
	}
	if spec.Anim == "wait" {
		d := quill.DefaultDuration
		if spec.Duration != nil {
			d = *spec.Duration
		}
		return quill.Wait(d), nil
	}
	m, err := b.lookup(spec.Target)
	if err != nil {
		return nil, err
	}
	switch spec.Anim {
	case "create":
		return quill.Create(m, opts...), nil
	case "uncreate":
		return quill.Uncreate(m, opts...), nil
	case "fade_in":
		return quill.FadeIn(m, opts...), nil
	case "fade_out":
		return quill.FadeOut(m, opts...), nil
	case "shift":
		d, err := vec(spec.By)
		if err != nil {
			return nil, fmt.Errorf("by: %w", err)
		}
		return quill.Shift(m, d, opts...), nil
	case "move_to":
		p, err := vec(spec.To)
		if err != nil {
			return nil, fmt.Errorf("to: %w", err)
		}
		return quill.MoveTo(m, p, opts...), nil
	case "rotate":
		return quill.Rotate(m, radians(spec.Angle), opts...), nil
	case "scale":
		if spec.Factor == 0 {
			return nil, fmt.Errorf("scale factor must be non-zero")
		}
		return quill.Scale(m, spec.Factor, opts...), nil
	case "fade_to_color":
		c, err := quill.ParseColor(spec.Color)
		if err != nil {
			return nil, err
		}
		return quill.FadeToColor(m, c, opts...), nil
	case "tween_to", "tween_color":
		fn, err := easeByName(spec.Ease)
		if err != nil {
			return nil, err
		}
		d := quill.DefaultDuration
		if spec.Duration != nil {
			d = *spec.Duration
		}
		if spec.Anim == "tween_color" {
			c, err := quill.ParseColor(spec.Color)
			if err != nil {
				return nil, err
			}
			return quill.TweenColor(m, c, d, fn), nil
		}
		p, err := vec(spec.To)
		if err != nil {
			return nil, fmt.Errorf("to: %w", err)
		}
		return quill.TweenPosition(m, p, d, fn), nil
	case "transform", "replacement_transform":
		into, err := b.lookup(spec.Into)
		if err != nil {
			return nil, fmt.Errorf("into: %w", err)
		}
		if spec.Anim == "transform" {
			return quill.Transform(m, into, opts...), nil
		}
		return quill.ReplacementTransform(m, into, opts...), nil
	}
	return nil, fmt.Errorf("unknown animation %q", spec.Anim)
}

func animOptions(spec AnimSpec) ([]quill.AnimOption, error) {
	var opts []quill.AnimOption
	if spec.Duration != nil {
		opts = append(opts, quill.WithDuration(*spec.Duration))
	}
	if spec.Rate != "" {
		f, err := quill.RateByName(spec.Rate)
		if err != nil {
			return nil, err
		}
		opts = append(opts, quill.WithRate(f))
	}
	if spec.Align != "" {
		p, err := quill.ParseAlignPolicy(spec.Align)
		if err != nil {
			return nil, err
		}
		opts = append(opts, quill.WithAlign(p))
	}
	return opts, nil
}

// --- Helpers ---

var easings = map[string]ease.TweenFunc{
	"linear":      ease.Linear,
	"in_quad":     ease.InQuad,
	"out_quad":    ease.OutQuad,
	"in_out_quad": ease.InOutQuad,
	"out_cubic":   ease.OutCubic,
	"in_out_sine": ease.InOutSine,
	"out_back":    ease.OutBack,
	"out_bounce":  ease.OutBounce,
	"out_elastic": ease.OutElastic,
}

// easeByName resolves a gween easing. The empty name selects in_out_sine.
func easeByName(name string) (ease.TweenFunc, error) {
	if name == "" {
		return ease.InOutSine, nil
	}
	if fn, ok := easings[name]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("unknown easing %q", name)
}

func vec(v []float64) (quill.Vec2, error) {
	if len(v) != 2 {
		return quill.Vec2{}, fmt.Errorf("want [x, y], got %d values", len(v))
	}
	return quill.Vec2{X: v[0], Y: v[1]}, nil
}

func vecs(vs [][]float64) ([]quill.Vec2, error) {
	out := make([]quill.Vec2, 0, len(vs))
	for i, v := range vs {
		p, err := vec(v)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
