package quill

import (
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// GPURenderer draws snapshots with ebiten by tessellating every path into
// triangle meshes. It owns one unmanaged offscreen image at the output
// resolution; each Render clears it, draws the meshes and reads the pixels
// back. Ebiten only allows readback inside its game loop, so Render must
// be called from a Game's Update or Draw (see Player).
type GPURenderer struct {
	width, height int
	target        *ebiten.Image
	pixels        []byte
	closed        bool
}

// NewGPURenderer creates a GPU renderer for width×height frames. The
// offscreen image is allocated on first use.
func NewGPURenderer(width, height int) *GPURenderer {
	return &GPURenderer{width: width, height: height}
}

// Render draws s into the offscreen image and returns a copy of its pixels.
func (r *GPURenderer) Render(s *Snapshot) (*Framebuffer, error) {
	if r.closed {
		return nil, fmt.Errorf("gpu: renderer closed")
	}
	if s.Width != 0 && (s.Width != r.width || s.Height != r.height) {
		return nil, fmt.Errorf("gpu: snapshot is %dx%d, renderer is %dx%d", s.Width, s.Height, r.width, r.height)
	}
	if r.target == nil {
		r.target = ebiten.NewImageWithOptions(
			image.Rect(0, 0, r.width, r.height),
			&ebiten.NewImageOptions{Unmanaged: true},
		)
		r.pixels = make([]byte, 4*r.width*r.height)
	}
	DrawSnapshot(r.target, s)
	r.target.ReadPixels(r.pixels)

	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	copy(img.Pix, r.pixels)
	return &Framebuffer{Index: s.Index, Image: img}, nil
}

// Close disposes the offscreen image.
func (r *GPURenderer) Close() error {
	if r.target != nil {
		r.target.Deallocate()
		r.target = nil
	}
	r.pixels = nil
	r.closed = true
	return nil
}

// DrawSnapshot clears dst to the snapshot background and draws every mesh
// of s onto it. Player uses it to present frames straight to the screen.
func DrawSnapshot(dst *ebiten.Image, s *Snapshot) {
	dst.Fill(s.Background.RGBA())
	white := ensureWhitePixel()

	var op ebiten.DrawTrianglesOptions
	op.FillRule = ebiten.FillRuleNonZero
	op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	op.AntiAlias = true
	for _, m := range Tessellate(s) {
		dst.DrawTriangles32(m.Vertices, m.Indices, white, &op)
	}
}

// --- White pixel singleton (no sync.Once, rendering is single-threaded) ---

var whitePixelImage *ebiten.Image

// ensureWhitePixel returns a lazily-initialized 1x1 white pixel image that
// untextured meshes sample.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixelImage
}
