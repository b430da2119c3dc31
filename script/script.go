// Package script loads quill scenes from YAML documents: a config block, a
// list of named mobjects and a list of steps played in order.
//
//	config:
//	  quality: low
//	  background: "#101018"
//	mobjects:
//	  - name: box
//	    shape: square
//	    size: 2
//	    fill: blue
//	steps:
//	  - play:
//	      - {anim: create, target: box}
//	  - wait: 0.5
//	  - play:
//	      - {anim: shift, target: box, by: [3, 0], rate: linear}
package script

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Script is a parsed scene document.
type Script struct {
	Config   ConfigSpec    `yaml:"config"`
	Mobjects []MobjectSpec `yaml:"mobjects"`
	Steps    []Step        `yaml:"steps"`
}

// ConfigSpec overrides quill.DefaultConfig. Zero values keep the default;
// Quality is applied before the explicit fields.
type ConfigSpec struct {
	Quality    string  `yaml:"quality,omitempty"`
	FrameRate  int     `yaml:"frame_rate,omitempty"`
	Width      int     `yaml:"width,omitempty"`
	Height     int     `yaml:"height,omitempty"`
	Background string  `yaml:"background,omitempty"`
	FrameWidth float64 `yaml:"frame_width,omitempty"`
	Backend    string  `yaml:"backend,omitempty"`
	Seed       uint64  `yaml:"seed,omitempty"`
}

// MobjectSpec declares one named mobject. Which size fields apply depends
// on Shape.
type MobjectSpec struct {
	Name  string `yaml:"name"`
	Shape string `yaml:"shape"`

	Size   float64     `yaml:"size,omitempty"`   // square side, circle radius, polygon radius
	Width  float64     `yaml:"width,omitempty"`  // rectangle, ellipse
	Height float64     `yaml:"height,omitempty"` // rectangle, ellipse
	Sides  int         `yaml:"sides,omitempty"`  // regular_polygon
	Angle  float64     `yaml:"angle,omitempty"`  // arc sweep, degrees
	Points [][]float64 `yaml:"points,omitempty"` // polygon, polyline
	From   []float64   `yaml:"from,omitempty"`   // line, arrow
	To     []float64   `yaml:"to,omitempty"`     // line, arrow
	Text   string      `yaml:"text,omitempty"`
	Font   string      `yaml:"font,omitempty"`

	Fill        string    `yaml:"fill,omitempty"`
	Stroke      string    `yaml:"stroke,omitempty"`
	StrokeWidth *float64  `yaml:"stroke_width,omitempty"`
	Opacity     *float64  `yaml:"opacity,omitempty"`
	Position    []float64 `yaml:"position,omitempty"`
	Rotation    float64   `yaml:"rotation,omitempty"` // degrees
	Scale       float64   `yaml:"scale,omitempty"`
	Z           int       `yaml:"z,omitempty"`
	Parent      string    `yaml:"parent,omitempty"`

	Updaters []UpdaterSpec `yaml:"updaters,omitempty"`
}

// UpdaterSpec attaches a built-in updater: spin, drift, pulse or follow.
type UpdaterSpec struct {
	Kind      string    `yaml:"kind"`
	Rate      float64   `yaml:"rate,omitempty"`     // spin, degrees per second
	Velocity  []float64 `yaml:"velocity,omitempty"` // drift
	Amplitude float64   `yaml:"amplitude,omitempty"`
	Period    float64   `yaml:"period,omitempty"`
	Target    string    `yaml:"target,omitempty"` // follow
	Offset    []float64 `yaml:"offset,omitempty"` // follow
}

// Step is one scripting action. Exactly one field must be set.
type Step struct {
	Play       []AnimSpec   `yaml:"play,omitempty"`
	Sequence   []AnimSpec   `yaml:"sequence,omitempty"`
	Stagger    *StaggerSpec `yaml:"stagger,omitempty"`
	Loop       []AnimSpec   `yaml:"loop,omitempty"`
	Wait       float64      `yaml:"wait,omitempty"`
	Add        []string     `yaml:"add,omitempty"`
	Remove     []string     `yaml:"remove,omitempty"`
	Screenshot string       `yaml:"screenshot,omitempty"`
}

// StaggerSpec starts its animations Lag seconds apart.
type StaggerSpec struct {
	Lag   float64    `yaml:"lag"`
	Anims []AnimSpec `yaml:"anims"`
}

// AnimSpec describes one animation. Anim names the kind; the remaining
// fields are read as that kind needs them.
type AnimSpec struct {
	Anim     string    `yaml:"anim"`
	Target   string    `yaml:"target,omitempty"`
	Into     string    `yaml:"into,omitempty"`   // transform, replacement_transform
	By       []float64 `yaml:"by,omitempty"`     // shift
	To       []float64 `yaml:"to,omitempty"`     // move_to
	Angle    float64   `yaml:"angle,omitempty"`  // rotate, degrees
	Factor   float64   `yaml:"factor,omitempty"` // scale
	Color    string    `yaml:"color,omitempty"`  // fade_to_color
	Duration *float64  `yaml:"duration,omitempty"`
	Rate     string    `yaml:"rate,omitempty"`
	Align    string    `yaml:"align,omitempty"`
	Ease     string    `yaml:"ease,omitempty"` // tween_to, tween_color
}

// Parse decodes a YAML scene document and checks its structure. Name
// references are resolved by Build.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and parses a scene file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Write encodes s as YAML to path.
func Write(s *Script, path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks names and step shapes without building anything.
func (s *Script) Validate() error {
	seen := make(map[string]bool, len(s.Mobjects))
	for i, m := range s.Mobjects {
		if m.Name == "" {
			return fmt.Errorf("script: mobject %d: missing name", i)
		}
		if seen[m.Name] {
			return fmt.Errorf("script: mobject %q: duplicate name", m.Name)
		}
		seen[m.Name] = true
	}
	for i, st := range s.Steps {
		if n := st.actions(); n != 1 {
			return fmt.Errorf("script: step %d: want exactly one action, got %d", i, n)
		}
	}
	return nil
}

func (st Step) actions() int {
	n := 0
	for _, set := range []bool{
		len(st.Play) > 0,
		len(st.Sequence) > 0,
		st.Stagger != nil,
		len(st.Loop) > 0,
		st.Wait != 0,
		len(st.Add) > 0,
		len(st.Remove) > 0,
		st.Screenshot != "",
	} {
		if set {
			n++
		}
	}
	return n
}
