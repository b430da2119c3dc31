package script

import (
	"context"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phanxgames/quill"
)

const sampleDoc = `
config:
  quality: low
  frame_rate: 10
  background: "#101018"
  seed: 3
mobjects:
  - name: box
    shape: square
    size: 2
    fill: blue
    position: [-1, 0]
  - name: dot
    shape: dot
    parent: box
    updaters:
      - kind: spin
        rate: 90
  - name: ring
    shape: circle
    stroke: orange
    stroke_width: 4
steps:
  - play:
      - {anim: create, target: box}
  - wait: 0.5
  - play:
      - {anim: shift, target: box, by: [2, 0], rate: linear, duration: 0.5}
  - add: [ring]
  - remove: [ring]
`

func mustParse(t *testing.T, doc string) *Script {
	t.Helper()
	s, err := Parse([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestParse(t *testing.T) {
	s := mustParse(t, sampleDoc)
	if len(s.Mobjects) != 3 || len(s.Steps) != 5 {
		t.Fatalf("mobjects=%d steps=%d", len(s.Mobjects), len(s.Steps))
	}
	if s.Config.Quality != "low" || s.Config.FrameRate != 10 {
		t.Errorf("config = %+v", s.Config)
	}
	if s.Steps[2].Play[0].Duration == nil || *s.Steps[2].Play[0].Duration != 0.5 {
		t.Error("duration not parsed")
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name, doc, want string
	}{
		{"missing name", "mobjects:\n  - shape: square\n", "missing name"},
		{"duplicate", "mobjects:\n  - {name: a}\n  - {name: a}\n", "duplicate"},
		{"two actions", "steps:\n  - {wait: 1, add: [a]}\n", "exactly one"},
		{"no action", "steps:\n  - {}\n", "exactly one"},
		{"bad yaml", "steps: [", "script:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestBuildAndRun(t *testing.T) {
	s := mustParse(t, sampleDoc)
	scene, err := s.Build(quill.WithRenderer(nil))
	if err != nil {
		t.Fatal(err)
	}
	cfg := scene.Config()
	if cfg.FrameRate != 10 || cfg.Width != 854 || cfg.Seed != 3 {
		t.Errorf("config = %+v", cfg)
	}
	if got := scene.Cursor(); math.Abs(got-2) > 1e-9 {
		t.Errorf("cursor = %v, want 2", got)
	}
	if err := scene.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	box := scene.Root().Find("box")
	if box == nil {
		t.Fatal("box not in scene")
	}
	if p := box.Position(); math.Abs(p.X-1) > 1e-9 || math.Abs(p.Y) > 1e-9 {
		t.Errorf("box position = %v, want (1, 0)", p)
	}
	if scene.Root().Find("ring") != nil {
		t.Error("ring should have been removed")
	}
	// The spin updater ran on every tick after the first.
	dot := box.Find("dot")
	if want := math.Pi / 2 * scene.Time(); math.Abs(dot.Rotation-want) > 1e-9 {
		t.Errorf("dot rotation = %v, want %v", dot.Rotation, want)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name, doc, want string
	}{
		{"unknown shape", "mobjects:\n  - {name: a, shape: blob}\n", "unknown shape"},
		{"unknown parent", "mobjects:\n  - {name: a, parent: b}\n", "unknown mobject"},
		{"unknown target", "steps:\n  - play: [{anim: create, target: ghost}]\n", "unknown mobject"},
		{"unknown anim", "mobjects:\n  - {name: a}\nsteps:\n  - play: [{anim: wiggle, target: a}]\n", "unknown animation"},
		{"bad rate", "mobjects:\n  - {name: a}\nsteps:\n  - play: [{anim: fade_in, target: a, rate: bouncy}]\n", "bouncy"},
		{"bad color", "mobjects:\n  - {name: a, fill: mauve}\n", "mauve"},
		{"bad vector", "mobjects:\n  - {name: a, position: [1]}\n", "position"},
		{"zero scale", "mobjects:\n  - {name: a}\nsteps:\n  - play: [{anim: scale, target: a}]\n", "non-zero"},
		{"bad quality", "config: {quality: ultra}\n", "config"},
		{"unknown updater", "mobjects:\n  - name: a\n    updaters: [{kind: wobble}]\n", "unknown updater"},
		{"few sides", "mobjects:\n  - {name: a, shape: regular_polygon, sides: 2}\n", "sides"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustParse(t, tt.doc)
			_, err := s.Build(quill.WithRenderer(nil))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestLoadWriteRoundTrip(t *testing.T) {
	s := mustParse(t, sampleDoc)
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := Write(s, path); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Mobjects) != len(s.Mobjects) || len(got.Steps) != len(s.Steps) {
		t.Fatalf("round trip lost entries: %d mobjects, %d steps", len(got.Mobjects), len(got.Steps))
	}
	if got.Mobjects[1].Parent != "box" || got.Mobjects[1].Updaters[0].Rate != 90 {
		t.Errorf("dot = %+v", got.Mobjects[1])
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load of a missing file should fail")
	}
}
