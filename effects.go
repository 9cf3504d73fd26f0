package scrawl

import (
	"image/color"

	"github.com/scrawlkit/scrawl/internal/blend"
)

// Effect stack tuning. Alphas are deliberately faint; layered effects
// accumulate fast.
const (
	grainDensity     = 0.012
	grainDarkAlpha   = 0.06
	grainLightAlpha  = 0.04
	bleedAlpha       = 0.05
	streakCount      = 6
	streakAlpha      = 0.035
	softenAlpha      = 0.05
	degradationAlpha = 0.04
)

// toneDownAlphas is the universal tone-down strength per distortion
// level (1 strongest, 5 lightest).
var toneDownAlphas = [5]float64{0.10, 0.08, 0.06, 0.04, 0.02}

// applyEffects runs the distortion-level effect stack over a finished
// text layer. Levels 1-2 add ultra-realism grain and ink bleed, levels
// 1-3 add paper degradation, level 4 applies texture softening, and
// every level finishes with a tone-down wash whose strength decreases
// with the level. Each layer scopes its canvas state with Save/Restore.
func applyEffects(c *Canvas, level int, seed uint64) {
	if level < 1 {
		level = 1
	}
	if level > 5 {
		level = 5
	}

	if level <= 2 {
		ultraRealismLayer(c, seed)
	}
	if level <= 3 {
		paperDegradationLayer(c, seed)
	}
	if level == 4 {
		textureSofteningLayer(c)
	}
	toneDownLayer(c, level)
}

// ultraRealismLayer sprinkles dark and light grain over the page and
// adds a faint ink-bleed wash.
func ultraRealismLayer(c *Canvas, seed uint64) {
	w, h := c.Width(), c.Height()

	c.Save()
	c.SetBlendMode(blend.Multiply)
	c.SetFillColor(color.NRGBA{R: 0x3A, G: 0x35, B: 0x30, A: 0xFF})
	n := int(float64(w*h) * grainDensity)
	for i := 0; i < n; i++ {
		x, y := scatter(seed, 1, i, w, h)
		c.SetPixel(x, y, grainDarkAlpha)
	}
	c.Restore()

	c.Save()
	c.SetBlendMode(blend.Screen)
	c.SetFillColor(color.NRGBA{R: 0xFF, G: 0xFC, B: 0xF5, A: 0xFF})
	for i := 0; i < n/2; i++ {
		x, y := scatter(seed, 2, i, w, h)
		c.SetPixel(x, y, grainLightAlpha)
	}
	c.Restore()

	// Ink bleed: a faint warm multiply wash pulls text edges into the
	// paper.
	c.Save()
	c.SetBlendMode(blend.Multiply)
	c.SetAlpha(bleedAlpha)
	c.SetFillColor(color.NRGBA{R: 0xE8, G: 0xE0, B: 0xD4, A: 0xFF})
	c.FillRect(0, 0, w, h)
	c.Restore()
}

// paperDegradationLayer draws sparse horizontal streaks and an aging
// wash, as if the page had been handled.
func paperDegradationLayer(c *Canvas, seed uint64) {
	w, h := c.Width(), c.Height()

	c.Save()
	c.SetBlendMode(blend.Multiply)
	c.SetFillColor(color.NRGBA{R: 0xC9, G: 0xBE, B: 0xAD, A: 0xFF})
	for i := 0; i < streakCount; i++ {
		_, y := scatter(seed, 3, i, w, h)
		length := w/4 + int(mix64(seed^uint64(i)<<7)%uint64(w/2+1))
		x0 := int(mix64(seed^uint64(i)<<13) % uint64(w))
		c.SetAlpha(streakAlpha)
		for x := x0; x < x0+length && x < w; x++ {
			c.SetPixel(x, y, 1)
		}
	}
	c.Restore()

	c.Save()
	c.SetBlendMode(blend.Multiply)
	c.SetAlpha(degradationAlpha)
	c.SetFillColor(color.NRGBA{R: 0xEF, G: 0xE8, B: 0xDB, A: 0xFF})
	c.FillRect(0, 0, w, h)
	c.Restore()
}

// textureSofteningLayer lays a gentle light wash that knocks back harsh
// texture contrast.
func textureSofteningLayer(c *Canvas) {
	c.Save()
	c.SetBlendMode(blend.SoftLight)
	c.SetAlpha(softenAlpha)
	c.SetFillColor(color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})
	c.FillRect(0, 0, c.Width(), c.Height())
	c.Restore()
}

// toneDownLayer softens overall contrast with a neutral gray wash.
func toneDownLayer(c *Canvas, level int) {
	c.Save()
	c.SetBlendMode(blend.SourceOver)
	c.SetAlpha(toneDownAlphas[level-1])
	c.SetFillColor(color.NRGBA{R: 0xB8, G: 0xB4, B: 0xAE, A: 0xFF})
	c.FillRect(0, 0, c.Width(), c.Height())
	c.Restore()
}

// scatter derives a deterministic point from (seed, layer, index).
func scatter(seed uint64, layer, index, w, h int) (int, int) {
	hsh := mix64(seed ^ uint64(layer)<<48 ^ uint64(index))
	x := int(hsh % uint64(w))
	y := int((hsh >> 20) % uint64(h))
	return x, y
}
