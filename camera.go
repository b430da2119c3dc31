package quill

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// scrollAnim holds active scroll-to tweens for camera X and Y.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Camera maps scene units (Y up) onto output pixels (Y down). FrameWidth
// scene units span the full pixel width at Zoom 1.
type Camera struct {
	// X and Y are the scene-space point at the centre of the frame.
	X, Y float64
	// Zoom is the scale factor (1 = no zoom, >1 = zoom in).
	Zoom float64
	// Rotation is the camera rotation in radians (counter-clockwise).
	Rotation float64
	// FrameWidth is the number of scene units visible across the frame.
	FrameWidth float64

	width, height int

	followTarget *Mobject
	followOffset Vec2
	followLerp   float64

	view    Affine
	invView Affine
	dirty   bool

	scrollTween *scrollAnim
}

// NewCamera creates a camera for a width×height pixel frame.
func NewCamera(width, height int, frameWidth float64) *Camera {
	return &Camera{
		Zoom:       1,
		FrameWidth: frameWidth,
		width:      width,
		height:     height,
		dirty:      true,
	}
}

// FrameHeight returns the number of scene units visible vertically.
func (c *Camera) FrameHeight() float64 {
	return c.FrameWidth * float64(c.height) / float64(c.width)
}

// PixelsPerUnit returns the current scene-unit to pixel scale.
func (c *Camera) PixelsPerUnit() float64 {
	return float64(c.width) / c.FrameWidth * c.Zoom
}

// Follow makes the camera track target's world origin with the given
// offset. A lerp of 1 snaps immediately; lower values trail behind.
func (c *Camera) Follow(target *Mobject, offset Vec2, lerp float64) {
	c.followTarget = target
	c.followOffset = offset
	c.followLerp = lerp
}

// Unfollow stops tracking the current target.
func (c *Camera) Unfollow() {
	c.followTarget = nil
}

// ScrollTo pans the camera to (x, y) over duration seconds.
func (c *Camera) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	if easeFn == nil {
		easeFn = ease.InOutSine
	}
	c.scrollTween = &scrollAnim{
		tweenX: gween.New(float32(c.X), float32(x), duration, easeFn),
		tweenY: gween.New(float32(c.Y), float32(y), duration, easeFn),
	}
}

// Scrolling reports whether a ScrollTo pan is in progress.
func (c *Camera) Scrolling() bool { return c.scrollTween != nil }

// update advances follow and scroll. Called once per tick after updaters.
func (c *Camera) update(dt float32) {
	if c.followTarget != nil {
		p := c.followTarget.LocalToWorld(Vec2{}).Add(c.followOffset)
		c.X += (p.X - c.X) * c.followLerp
		c.Y += (p.Y - c.Y) * c.followLerp
	}
	if c.scrollTween != nil {
		if !c.scrollTween.doneX {
			val, done := c.scrollTween.tweenX.Update(dt)
			c.X = float64(val)
			c.scrollTween.doneX = done
		}
		if !c.scrollTween.doneY {
			val, done := c.scrollTween.tweenY.Update(dt)
			c.Y = float64(val)
			c.scrollTween.doneY = done
		}
		if c.scrollTween.doneX && c.scrollTween.doneY {
			c.scrollTween = nil
		}
	}
	c.dirty = true
}

// View returns the scene-to-pixel matrix:
//
//	Translate(w/2, h/2) · Scale(ppu, -ppu) · Rotation(-Rotation) · Translate(-X, -Y)
func (c *Camera) View() Affine {
	c.computeView()
	return c.view
}

func (c *Camera) computeView() {
	if !c.dirty {
		return
	}
	c.dirty = false
	ppu := c.PixelsPerUnit()
	c.view = Translate(-c.X, -c.Y).
		Then(Rotation(-c.Rotation)).
		Then(ScaleXY(ppu, -ppu)).
		Then(Translate(float64(c.width)/2, float64(c.height)/2))
	inv, err := c.view.Invert()
	if err != nil {
		inv = Identity
	}
	c.invView = inv
}

// MarkDirty forces a recomputation of the view matrix after fields were
// changed directly.
func (c *Camera) MarkDirty() { c.dirty = true }

// SceneToPixel converts a scene point to pixel coordinates.
func (c *Camera) SceneToPixel(p Vec2) Vec2 {
	c.computeView()
	return c.view.Apply(p)
}

// PixelToScene converts pixel coordinates to a scene point.
func (c *Camera) PixelToScene(p Vec2) Vec2 {
	c.computeView()
	return c.invView.Apply(p)
}

// VisibleBounds returns the scene-space bounds of the frame.
func (c *Camera) VisibleBounds() Rect {
	c.computeView()
	w, h := float64(c.width), float64(c.height)
	corners := [4]Vec2{{0, 0}, {w, 0}, {w, h}, {0, h}}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range corners {
		q := c.invView.Apply(p)
		minX, maxX = min(minX, q.X), max(maxX, q.X)
		minY, maxY = min(minY, q.Y), max(maxY, q.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
