package scrawl

import (
	"image/color"
	"math"
)

// Minimum per-axis ranges. ConfigureRanges clamps to these so a
// misconfigured engine never produces fully mechanical output; a render
// that wants near-zero variation (the fallback stage) sets the intensity
// instead.
const (
	minBaselineJitterRange = 0.4   // px
	minSlantJitterRange    = 0.006 // rad
	minMicroTiltRange      = 0.003 // rad
)

// spaceJitterSpread is the advance-only width wobble applied to spaces,
// as a fraction of the base advance.
const spaceJitterSpread = 0.22

// TextVariation is the per-glyph output of the variation engine.
// Values are bounded by the configured ranges; ColorVariation is a
// renderable ink color.
type TextVariation struct {
	BaselineJitter float64 // vertical offset in px
	SlantJitter    float64 // rotation in radians
	MicroTilt      float64 // secondary rotation in radians
	ColorVariation color.NRGBA
}

// VariationRanges bounds each jitter axis.
type VariationRanges struct {
	BaselineJitterRange     float64
	SlantJitterRange        float64
	MicroTiltRange          float64
	ColorVariationIntensity float64
}

// TextVariationEngine produces deterministic per-position glyph
// variation. For a fixed (char, position, ranges, intensity, seed) the
// output never changes; there is no hidden mutable state.
type TextVariationEngine struct {
	ranges    VariationRanges
	intensity float64
	seed      uint64
	baseColor color.NRGBA
}

// NewTextVariationEngine creates an engine with the given ranges
// (clamped to documented minimums) and neutral intensity.
func NewTextVariationEngine(ranges VariationRanges, seed uint64) *TextVariationEngine {
	e := &TextVariationEngine{intensity: 1, seed: seed, baseColor: color.NRGBA{A: 255}}
	e.ConfigureRanges(ranges)
	return e
}

// ConfigureRanges sets per-axis bounds. Values below the documented
// minimums are clamped up to avoid degenerate zero-variation output;
// use SetVariationIntensity to suppress variation globally instead.
func (e *TextVariationEngine) ConfigureRanges(r VariationRanges) {
	if r.BaselineJitterRange < minBaselineJitterRange {
		r.BaselineJitterRange = minBaselineJitterRange
	}
	if r.SlantJitterRange < minSlantJitterRange {
		r.SlantJitterRange = minSlantJitterRange
	}
	if r.MicroTiltRange < minMicroTiltRange {
		r.MicroTiltRange = minMicroTiltRange
	}
	if r.ColorVariationIntensity < 0 {
		r.ColorVariationIntensity = 0
	}
	e.ranges = r
}

// Ranges returns the configured (clamped) ranges.
func (e *TextVariationEngine) Ranges() VariationRanges { return e.ranges }

// SetVariationIntensity globally scales all jitter magnitudes.
// Near-zero intensity is the fallback path to mechanical output.
func (e *TextVariationEngine) SetVariationIntensity(factor float64) {
	if factor < 0 {
		factor = 0
	}
	e.intensity = factor
}

// VariationIntensity returns the current global intensity.
func (e *TextVariationEngine) VariationIntensity() float64 { return e.intensity }

// SetBaseColor sets the color the per-glyph color variation wobbles
// around.
func (e *TextVariationEngine) SetBaseColor(c color.NRGBA) { e.baseColor = c }

// GenerateVariation returns the variation for a character at a stream
// position. It is a pure function of (char, position) and the engine's
// configuration.
func (e *TextVariationEngine) GenerateVariation(char rune, position int) TextVariation {
	return TextVariation{
		BaselineJitter: e.jitter(char, position, 0) * e.ranges.BaselineJitterRange,
		SlantJitter:    e.jitter(char, position, 1) * e.ranges.SlantJitterRange,
		MicroTilt:      e.jitter(char, position, 2) * e.ranges.MicroTiltRange,
		ColorVariation: e.colorVariation(char, position),
	}
}

// SpaceAdvance returns the jittered advance for a space at a stream
// position. Spaces carry no glyph variation, only an independent
// pseudo-random width jitter.
func (e *TextVariationEngine) SpaceAdvance(position int, baseAdvance float64) float64 {
	// jitter already carries the global intensity factor.
	j := e.jitter(' ', position, 3) * spaceJitterSpread
	return baseAdvance * (1 + j)
}

// jitter derives a deterministic value in [-intensity, intensity] from
// (char, position, stream).
func (e *TextVariationEngine) jitter(char rune, position, stream int) float64 {
	h := e.seed
	h = mix64(h ^ uint64(char))
	h = mix64(h ^ uint64(position)<<8)
	h = mix64(h ^ uint64(stream)<<40)
	// 53 bits of mantissa, mapped to [-1, 1).
	u := float64(h>>11) / (1 << 52)
	return (u - 1) * e.intensity
}

// colorVariation wobbles the base color's channels by the configured
// color intensity.
func (e *TextVariationEngine) colorVariation(char rune, position int) color.NRGBA {
	spread := e.ranges.ColorVariationIntensity * e.intensity * 18
	if spread == 0 {
		return e.baseColor
	}
	return color.NRGBA{
		R: wobbleChannel(e.baseColor.R, e.jitter(char, position, 4)*spread),
		G: wobbleChannel(e.baseColor.G, e.jitter(char, position, 5)*spread),
		B: wobbleChannel(e.baseColor.B, e.jitter(char, position, 6)*spread),
		A: e.baseColor.A,
	}
}

func wobbleChannel(c uint8, delta float64) uint8 {
	v := float64(c) + delta
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint8(math.Round(v))
}

// mix64 is a splitmix64-style avalanche; it spreads the low entropy of
// (char, position) across all 64 bits.
func mix64(h uint64) uint64 {
	h ^= h >> 30
	h *= 0xbf58476d1ce4e5b9
	h ^= h >> 27
	h *= 0x94d049bb133111eb
	h ^= h >> 31
	return h
}

// hashString derives a render seed from a string, so identical configs
// produce identical glyph streams.
func hashString(s string) uint64 {
	h := uint64(0x9e3779b97f4a7c15)
	for _, r := range s {
		h = mix64(h ^ uint64(r))
	}
	return h
}
