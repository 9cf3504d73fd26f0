package scrawl

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/scrawlkit/scrawl/font"
	"github.com/scrawlkit/scrawl/internal/blend"
)

// Glyph paint tuning.
const (
	// rotationEpsilon skips the resampling pass for angles the eye cannot
	// see (~0.2 degrees).
	rotationEpsilon = 0.004

	// boldStampRadius scales the 9-point stamp spread by font size.
	boldStampRadius = 0.035
	// boldAlphaBoost compensates for stamp overlap at high boldness.
	boldAlphaBoost = 0.18
	// lightStrokeFade is the maximum alpha reduction at boldness 0.
	lightStrokeFade = 0.45

	// Advance growth factors: tilted or displaced glyphs need extra
	// horizontal room to avoid collisions.
	advanceGrowthTilt     = 1.6
	advanceGrowthBaseline = 0.04
)

// glyphPainter paints individual glyphs onto a canvas, applying
// per-glyph variation, ink shading, and boldness stamping.
type glyphPainter struct {
	canvas   *Canvas
	face     font.Face
	engine   *TextVariationEngine
	inks     *InkRenderingSystem
	ink      InkProfile
	mode     blend.Mode
	boldness float64
	fontSize float64
}

// paint draws one glyph with its pen origin at (x, baseline) and returns
// the advance to the next pen position.
func (p *glyphPainter) paint(r rune, pos int, x, baseline float64) float64 {
	v := p.engine.GenerateVariation(r, pos)

	g, ok := p.face.Glyph(r)
	if !ok {
		// No usable glyph; hold the pen position steady by the measured
		// replacement advance.
		return p.face.Advance(string(r))
	}

	shade := p.inks.Variation(p.ink, pos)
	fill := mixColors(shade, v.ColorVariation)

	px := x + float64(g.Bounds.Min.X)
	py := baseline + v.BaselineJitter + float64(g.Bounds.Min.Y)

	mask := g.Mask
	if !mask.Bounds().Empty() {
		if angle := v.SlantJitter + v.MicroTilt; math.Abs(angle) > rotationEpsilon {
			rotated, dx, dy := rotateMask(mask, angle)
			mask, px, py = rotated, px+dx, py+dy
		}
		p.stamp(mask, px, py, fill)
	}

	growth := 1 + advanceGrowthTilt*math.Abs(v.MicroTilt) + advanceGrowthBaseline*math.Abs(v.BaselineJitter)
	return g.Advance * growth
}

// stamp composites the mask once or several times according to the
// boldness plan.
func (p *glyphPainter) stamp(mask *image.Alpha, px, py float64, fill color.NRGBA) {
	offsets, alpha := stampPlan(p.boldness, p.fontSize)

	p.canvas.Save()
	p.canvas.SetBlendMode(p.mode)
	p.canvas.SetFillColor(fill)
	for _, off := range offsets {
		x := int(math.Round(px + off[0]))
		y := int(math.Round(py + off[1]))
		p.canvas.DrawMask(mask, x, y, alpha*p.ink.Opacity)
	}
	p.canvas.Restore()
}

// stampPlan maps boldness in [0,1] to stamp offsets and a per-stamp
// alpha. Coverage is monotone in boldness: below the 0.5 midpoint a
// single stamp fades convexly toward lighter strokes; above it the
// 9-point radial pattern grows in count and spread with a small alpha
// boost to compensate for overlap.
func stampPlan(boldness, fontSize float64) ([][2]float64, float64) {
	if boldness < 0 {
		boldness = 0
	}
	if boldness > 1 {
		boldness = 1
	}

	if boldness <= 0.5 {
		d := (0.5 - boldness) * 2
		return [][2]float64{{0, 0}}, 1 - lightStrokeFade*d*d
	}

	d := (boldness - 0.5) * 2
	n := 1 + int(math.Ceil(8*d))
	if n > 9 {
		n = 9
	}
	r := d * fontSize * boldStampRadius
	diag := r / math.Sqrt2
	pattern := [9][2]float64{
		{0, 0},
		{r, 0}, {-r, 0}, {0, r}, {0, -r},
		{diag, diag}, {-diag, -diag}, {diag, -diag}, {-diag, diag},
	}
	return pattern[:n], 1 + boldAlphaBoost*d
}

// rotateMask resamples an alpha mask rotated about its center and
// returns the placement shift that keeps the center fixed.
func rotateMask(mask *image.Alpha, angle float64) (*image.Alpha, float64, float64) {
	mb := mask.Bounds()
	w, h := float64(mb.Dx()), float64(mb.Dy())
	sin, cos := math.Sincos(angle)
	asin, acos := math.Abs(sin), math.Abs(cos)

	nw := int(math.Ceil(w*acos + h*asin))
	nh := int(math.Ceil(w*asin + h*acos))
	out := image.NewAlpha(image.Rect(0, 0, nw, nh))

	// Source center maps onto destination center.
	csx := float64(mb.Min.X) + w/2
	csy := float64(mb.Min.Y) + h/2
	cdx := float64(nw) / 2
	cdy := float64(nh) / 2
	m := f64.Aff3{
		cos, -sin, cdx - (cos*csx - sin*csy),
		sin, cos, cdy - (sin*csx + cos*csy),
	}
	draw.BiLinear.Transform(out, m, mask, mb, draw.Src, nil)

	return out, w/2 - cdx, h/2 - cdy
}

// mixColors averages two opaque colors. Used to combine the precomputed
// ink shade with the per-glyph color wobble.
func mixColors(a, b color.NRGBA) color.NRGBA {
	return color.NRGBA{
		R: uint8((int(a.R) + int(b.R)) / 2),
		G: uint8((int(a.G) + int(b.G)) / 2),
		B: uint8((int(a.B) + int(b.B)) / 2),
		A: uint8((int(a.A) + int(b.A)) / 2),
	}
}
