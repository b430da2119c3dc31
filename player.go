package quill

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
)

// Player is an ebiten.Game that plays a Scene in a window. Each Update
// ticks the scene once and each Draw presents the latest snapshot straight
// to the screen. Once the scene is done the last frame stays on screen.
//
// The scene's own renderer and sink still run on every tick, so a scene
// built with the GPU backend and a PNGSequence records while it previews.
// Build the scene with WithRenderer(nil) for a preview only.
type Player struct {
	scene *Scene
	snap  *Snapshot
}

// NewPlayer wraps s for use with ebiten.RunGame.
func NewPlayer(s *Scene) *Player {
	return &Player{scene: s}
}

// Update ticks the scene. A playback error ends the game loop.
func (p *Player) Update() error {
	if p.scene.Done() {
		return nil
	}
	snap, err := p.scene.Tick()
	if err != nil {
		return err
	}
	p.snap = snap
	return nil
}

// Draw presents the latest snapshot.
func (p *Player) Draw(screen *ebiten.Image) {
	if p.snap == nil {
		return
	}
	DrawSnapshot(screen, p.snap)
}

// Layout returns the configured resolution.
func (p *Player) Layout(outsideWidth, outsideHeight int) (int, int) {
	return p.scene.cfg.Width, p.scene.cfg.Height
}

// Preview opens a window titled title and plays s at its frame rate until
// the window is closed or playback fails.
func Preview(s *Scene, title string) error {
	ebiten.SetWindowSize(s.cfg.Width, s.cfg.Height)
	ebiten.SetWindowTitle(title)
	ebiten.SetTPS(s.cfg.FrameRate)
	err := ebiten.RunGame(NewPlayer(s))
	return errors.Join(err, s.Close())
}
