package quill

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/gogpu/gg"
)

// RasterRenderer draws snapshots on the CPU with a gg software context.
// Paths are emitted as cubic curves in pixel space, filled with the
// non-zero rule and then stroked.
type RasterRenderer struct {
	width, height int
	dc            *gg.Context
}

// NewRasterRenderer creates a CPU renderer for width×height frames.
func NewRasterRenderer(width, height int) *RasterRenderer {
	dc := gg.NewContext(width, height)
	dc.SetFillRule(gg.FillRuleNonZero)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	return &RasterRenderer{width: width, height: height, dc: dc}
}

// Render rasterizes s into a new framebuffer.
func (r *RasterRenderer) Render(s *Snapshot) (*Framebuffer, error) {
	if r.dc == nil {
		return nil, fmt.Errorf("raster: renderer closed")
	}
	if s.Width != 0 && (s.Width != r.width || s.Height != r.height) {
		return nil, fmt.Errorf("raster: snapshot is %dx%d, renderer is %dx%d", s.Width, s.Height, r.width, r.height)
	}
	// The pixmap holds premultiplied pixels.
	br, bgc, bb, ba := premultiplied(s.Background, 1)
	r.dc.ClearWithColor(gg.RGBA{R: float64(br), G: float64(bgc), B: float64(bb), A: float64(ba)})

	for i := range s.Items {
		item := &s.Items[i]
		if err := r.drawPath(item.Path.Transform(s.View)); err != nil {
			return nil, fmt.Errorf("raster: item %d (%s): %w", i, item.Mobject, err)
		}
	}
	return &Framebuffer{Index: s.Index, Image: toRGBA(r.dc.Image())}, nil
}

// drawPath fills then strokes a path already in pixel space.
func (r *RasterRenderer) drawPath(p Path) error {
	st := p.Style
	if !st.HasFill() && !st.HasStroke() {
		return nil
	}
	r.dc.ClearPath()
	for _, sp := range p.SubPaths() {
		r.dc.MoveTo(sp.Segments[0][0].X, sp.Segments[0][0].Y)
		for _, seg := range sp.Segments {
			r.dc.CubicTo(seg[1].X, seg[1].Y, seg[2].X, seg[2].Y, seg[3].X, seg[3].Y)
		}
		if p.Closed {
			r.dc.ClosePath()
		}
	}
	if st.HasFill() {
		c := st.FillColor
		r.dc.SetRGBA(c.R, c.G, c.B, clamp01(c.A*st.Opacity))
		if err := r.dc.FillPreserve(); err != nil {
			return err
		}
	}
	if st.HasStroke() {
		c := st.StrokeColor
		r.dc.SetRGBA(c.R, c.G, c.B, clamp01(c.A*st.Opacity))
		r.dc.SetLineWidth(st.StrokeWidth)
		if err := r.dc.Stroke(); err != nil {
			return err
		}
	}
	r.dc.ClearPath()
	return nil
}

// Close releases the gg context.
func (r *RasterRenderer) Close() error {
	if r.dc == nil {
		return nil
	}
	err := r.dc.Close()
	r.dc = nil
	return err
}

// toRGBA returns img as *image.RGBA, copying only when the dynamic type
// differs.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
