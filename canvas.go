package scrawl

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/scrawlkit/scrawl/internal/blend"
)

// maxCanvasBytes bounds a single canvas allocation (width * height * 4).
// Requests above this fail with ErrMemoryLimit and are retried by the
// fallback stage at reduced dimensions.
const maxCanvasBytes = 256 << 20

// Canvas is a premultiplied RGBA pixel buffer with canvas-style drawing
// state (global alpha, composite mode, fill color, translation). State
// changes are scoped with Save/Restore so effect layers never leak blend
// or alpha settings into subsequent layers.
//
// Canvas is not safe for concurrent use; a render owns its canvas
// exclusively until release.
type Canvas struct {
	rgba    *image.RGBA
	backing *image.RGBA
	state   drawState
	stack   []drawState
}

type drawState struct {
	alpha float64
	mode  blend.Mode
	fill  color.NRGBA
	tx    float64
	ty    float64
}

func defaultDrawState() drawState {
	return drawState{
		alpha: 1,
		mode:  blend.SourceOver,
		fill:  color.NRGBA{A: 255},
	}
}

// NewCanvas creates a canvas with the given dimensions.
// Returns ErrCanvasUnavailable for non-positive dimensions and
// ErrMemoryLimit when the backing buffer would exceed the memory bound.
func NewCanvas(width, height int) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrCanvasUnavailable, width, height)
	}
	if int64(width)*int64(height)*4 > maxCanvasBytes {
		return nil, fmt.Errorf("%w: %dx%d", ErrMemoryLimit, width, height)
	}
	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	return &Canvas{
		rgba:    rgba,
		backing: rgba,
		state:   defaultDrawState(),
	}, nil
}

// resizeWithin reslices the canvas to width x height when the backing
// allocation is large enough, clearing the pixels and drawing state.
// Returns false when a fresh allocation would be needed. The pool uses
// this to hand out smaller canvases without reallocating.
func (c *Canvas) resizeWithin(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	bb := c.backing.Rect
	if width > bb.Dx() || height > bb.Dy() {
		return false
	}
	c.rgba = c.backing.SubImage(image.Rect(0, 0, width, height)).(*image.RGBA)
	c.ResetState()
	c.Clear(color.NRGBA{})
	return true
}

// backingBytes is the size of the full allocation, which can exceed
// MemoryBytes after a pool resize.
func (c *Canvas) backingBytes() int64 {
	return int64(c.backing.Rect.Dx()) * int64(c.backing.Rect.Dy()) * 4
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.rgba.Rect.Dx() }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.rgba.Rect.Dy() }

// MemoryBytes estimates the backing buffer size.
func (c *Canvas) MemoryBytes() int64 {
	return int64(c.Width()) * int64(c.Height()) * 4
}

// Image exposes the backing premultiplied RGBA image for export.
func (c *Canvas) Image() *image.RGBA { return c.rgba }

// Save pushes the current drawing state.
func (c *Canvas) Save() {
	c.stack = append(c.stack, c.state)
}

// Restore pops the most recently saved drawing state.
// Restoring with an empty stack resets to defaults.
func (c *Canvas) Restore() {
	if len(c.stack) == 0 {
		c.state = defaultDrawState()
		return
	}
	c.state = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
}

// ResetState clears the state stack and restores every drawing state
// field to its default. The pool calls this on release so a reused canvas
// never inherits transform, alpha, or composite settings.
func (c *Canvas) ResetState() {
	c.stack = c.stack[:0]
	c.state = defaultDrawState()
}

// SetAlpha sets the global alpha multiplier (clamped to 0..1).
func (c *Canvas) SetAlpha(a float64) {
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	c.state.alpha = a
}

// Alpha returns the current global alpha.
func (c *Canvas) Alpha() float64 { return c.state.alpha }

// SetBlendMode sets the composite mode for subsequent paints.
func (c *Canvas) SetBlendMode(m blend.Mode) { c.state.mode = m }

// BlendMode returns the current composite mode.
func (c *Canvas) BlendMode() blend.Mode { return c.state.mode }

// SetFillColor sets the fill color for FillRect and glyph painting.
func (c *Canvas) SetFillColor(col color.NRGBA) { c.state.fill = col }

// FillColor returns the current fill color.
func (c *Canvas) FillColor() color.NRGBA { return c.state.fill }

// Translate offsets subsequent paint coordinates.
func (c *Canvas) Translate(dx, dy float64) {
	c.state.tx += dx
	c.state.ty += dy
}

// Clear fills the whole canvas with col, replacing existing pixels.
func (c *Canvas) Clear(col color.NRGBA) {
	pr, pg, pb, pa := premul(col, 1)
	pix := c.rgba.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i] = pr
		pix[i+1] = pg
		pix[i+2] = pb
		pix[i+3] = pa
	}
}

// FillRect composites the current fill color over the given rectangle
// using the current alpha and blend mode.
func (c *Canvas) FillRect(x, y, w, h int) {
	x += int(c.state.tx)
	y += int(c.state.ty)
	r := image.Rect(x, y, x+w, y+h).Intersect(c.rgba.Rect)
	if r.Empty() {
		return
	}
	sr, sg, sb, sa := premul(c.state.fill, c.state.alpha)
	pix := c.rgba.Pix
	for yy := r.Min.Y; yy < r.Max.Y; yy++ {
		i := c.rgba.PixOffset(r.Min.X, yy)
		for xx := r.Min.X; xx < r.Max.X; xx++ {
			or, og, ob, oa := blend.Pixel(c.state.mode, sr, sg, sb, sa, pix[i], pix[i+1], pix[i+2], pix[i+3])
			pix[i], pix[i+1], pix[i+2], pix[i+3] = or, og, ob, oa
			i += 4
		}
	}
}

// SetPixel composites the current fill color into a single pixel with the
// given alpha, honoring the current blend mode. Used by procedural effect
// layers (grain, streaks).
func (c *Canvas) SetPixel(x, y int, alpha float64) {
	x += int(c.state.tx)
	y += int(c.state.ty)
	if !(image.Point{X: x, Y: y}).In(c.rgba.Rect) {
		return
	}
	sr, sg, sb, sa := premul(c.state.fill, c.state.alpha*alpha)
	i := c.rgba.PixOffset(x, y)
	pix := c.rgba.Pix
	or, og, ob, oa := blend.Pixel(c.state.mode, sr, sg, sb, sa, pix[i], pix[i+1], pix[i+2], pix[i+3])
	pix[i], pix[i+1], pix[i+2], pix[i+3] = or, og, ob, oa
}

// DrawImage scales src into dst (on the canvas) and composites it using
// the given opacity and blend mode. The current translation applies.
func (c *Canvas) DrawImage(src image.Image, dst image.Rectangle, opacity float64, mode blend.Mode) {
	dst = dst.Add(image.Point{X: int(c.state.tx), Y: int(c.state.ty)})
	if dst.Empty() || opacity <= 0 {
		return
	}

	// Scale into a staging buffer clipped to the canvas, then composite.
	staging := image.NewRGBA(dst.Intersect(c.rgba.Rect))
	if staging.Rect.Empty() {
		return
	}
	draw.BiLinear.Scale(staging, dst, src, src.Bounds(), draw.Src, nil)
	c.compositeRGBA(staging, opacity, mode)
}

// DrawImageCover composites src over the whole canvas with cover
// semantics: scale = max(width ratio, height ratio), centered, no gaps.
func (c *Canvas) DrawImageCover(src image.Image, opacity float64, mode blend.Mode) {
	sb := src.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 {
		return
	}
	cw, ch := float64(c.Width()), float64(c.Height())
	scale := cw / float64(sb.Dx())
	if s := ch / float64(sb.Dy()); s > scale {
		scale = s
	}
	sw := float64(sb.Dx()) * scale
	sh := float64(sb.Dy()) * scale
	x0 := int((cw - sw) / 2)
	y0 := int((ch - sh) / 2)
	c.DrawImage(src, image.Rect(x0, y0, x0+int(sw+0.5), y0+int(sh+0.5)), opacity, mode)
}

// DrawMask composites the current fill color through an alpha mask placed
// with its origin at (x, y). This is the glyph paint primitive.
func (c *Canvas) DrawMask(mask *image.Alpha, x, y int, alpha float64) {
	x += int(c.state.tx)
	y += int(c.state.ty)
	mb := mask.Bounds()
	dst := image.Rect(x, y, x+mb.Dx(), y+mb.Dy()).Intersect(c.rgba.Rect)
	if dst.Empty() {
		return
	}
	effAlpha := c.state.alpha * alpha
	if effAlpha <= 0 {
		return
	}
	fill := c.state.fill
	pix := c.rgba.Pix
	for yy := dst.Min.Y; yy < dst.Max.Y; yy++ {
		my := mb.Min.Y + (yy - y)
		i := c.rgba.PixOffset(dst.Min.X, yy)
		for xx := dst.Min.X; xx < dst.Max.X; xx++ {
			mx := mb.Min.X + (xx - x)
			ma := mask.AlphaAt(mx, my).A
			if ma != 0 {
				sr, sg, sb, sa := premul(fill, effAlpha*float64(ma)/255)
				or, og, ob, oa := blend.Pixel(c.state.mode, sr, sg, sb, sa, pix[i], pix[i+1], pix[i+2], pix[i+3])
				pix[i], pix[i+1], pix[i+2], pix[i+3] = or, og, ob, oa
			}
			i += 4
		}
	}
}

// compositeRGBA blends a staging buffer (already in canvas coordinates)
// onto the canvas.
func (c *Canvas) compositeRGBA(src *image.RGBA, opacity float64, mode blend.Mode) {
	if opacity > 1 {
		opacity = 1
	}
	r := src.Rect.Intersect(c.rgba.Rect)
	pix := c.rgba.Pix
	for yy := r.Min.Y; yy < r.Max.Y; yy++ {
		si := src.PixOffset(r.Min.X, yy)
		di := c.rgba.PixOffset(r.Min.X, yy)
		for xx := r.Min.X; xx < r.Max.X; xx++ {
			sr, sg, sb, sa := src.Pix[si], src.Pix[si+1], src.Pix[si+2], src.Pix[si+3]
			if opacity < 1 {
				sr = scaleByte(sr, opacity)
				sg = scaleByte(sg, opacity)
				sb = scaleByte(sb, opacity)
				sa = scaleByte(sa, opacity)
			}
			if sa != 0 {
				or, og, ob, oa := blend.Pixel(mode, sr, sg, sb, sa, pix[di], pix[di+1], pix[di+2], pix[di+3])
				pix[di], pix[di+1], pix[di+2], pix[di+3] = or, og, ob, oa
			}
			si += 4
			di += 4
		}
	}
}

// premul converts a non-premultiplied color plus extra alpha into
// premultiplied bytes.
func premul(col color.NRGBA, alpha float64) (byte, byte, byte, byte) {
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	a := float64(col.A) / 255 * alpha
	return byte(float64(col.R)*a + 0.5),
		byte(float64(col.G)*a + 0.5),
		byte(float64(col.B)*a + 0.5),
		byte(a*255 + 0.5)
}

func scaleByte(b byte, f float64) byte {
	return byte(float64(b)*f + 0.5)
}
