// Package blend implements the compositing modes available to ink and
// effect layers, following the W3C Compositing and Blending Level 1
// specification.
//
// All operations work on premultiplied-alpha RGBA bytes. Separable modes
// share the standard mixing formula
//
//	Result = (1-Sa)*D + (1-Da)*S + Sa*Da*B(Sc, Dc)
//
// where B is the per-channel blend function applied to unmultiplied
// channels.
package blend

import "math"

// Mode identifies a compositing mode.
type Mode uint8

const (
	// SourceOver is normal alpha compositing and the zero value.
	SourceOver Mode = iota
	Multiply
	Screen
	Overlay
	Darken
	Lighten
	ColorDodge
	ColorBurn
	HardLight
	SoftLight
	Difference
	Exclusion
)

// modeNames maps canonical mode names (the CSS compositing vocabulary) to
// Mode values. "normal" and "source-over" are synonyms.
var modeNames = map[string]Mode{
	"normal":      SourceOver,
	"source-over": SourceOver,
	"multiply":    Multiply,
	"screen":      Screen,
	"overlay":     Overlay,
	"darken":      Darken,
	"lighten":     Lighten,
	"color-dodge": ColorDodge,
	"color-burn":  ColorBurn,
	"hard-light":  HardLight,
	"soft-light":  SoftLight,
	"difference":  Difference,
	"exclusion":   Exclusion,
}

// Parse resolves a mode name to its Mode value.
// Returns (SourceOver, false) for names outside the supported set.
func Parse(name string) (Mode, bool) {
	m, ok := modeNames[name]
	if !ok {
		return SourceOver, false
	}
	return m, true
}

// String returns the canonical name of the mode.
func (m Mode) String() string {
	switch m {
	case SourceOver:
		return "source-over"
	case Multiply:
		return "multiply"
	case Screen:
		return "screen"
	case Overlay:
		return "overlay"
	case Darken:
		return "darken"
	case Lighten:
		return "lighten"
	case ColorDodge:
		return "color-dodge"
	case ColorBurn:
		return "color-burn"
	case HardLight:
		return "hard-light"
	case SoftLight:
		return "soft-light"
	case Difference:
		return "difference"
	case Exclusion:
		return "exclusion"
	default:
		return "source-over"
	}
}

// Pixel composites a premultiplied source pixel onto a premultiplied
// destination pixel using the given mode.
func Pixel(mode Mode, sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	switch mode {
	case SourceOver:
		return sourceOver(sr, sg, sb, sa, dr, dg, db, da)
	case Multiply:
		return separable(sr, sg, sb, sa, dr, dg, db, da, mulDiv255)
	case Screen:
		return separable(sr, sg, sb, sa, dr, dg, db, da, screenChan)
	case Overlay:
		// HardLight with source and backdrop swapped.
		return separable(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
			return hardLightChan(d, s)
		})
	case Darken:
		return separable(sr, sg, sb, sa, dr, dg, db, da, minByte)
	case Lighten:
		return separable(sr, sg, sb, sa, dr, dg, db, da, maxByte)
	case ColorDodge:
		return separable(sr, sg, sb, sa, dr, dg, db, da, dodgeChan)
	case ColorBurn:
		return separable(sr, sg, sb, sa, dr, dg, db, da, burnChan)
	case HardLight:
		return separable(sr, sg, sb, sa, dr, dg, db, da, hardLightChan)
	case SoftLight:
		return separable(sr, sg, sb, sa, dr, dg, db, da, softLightChan)
	case Difference:
		return separable(sr, sg, sb, sa, dr, dg, db, da, diffChan)
	case Exclusion:
		return separable(sr, sg, sb, sa, dr, dg, db, da, exclusionChan)
	default:
		return sourceOver(sr, sg, sb, sa, dr, dg, db, da)
	}
}

// sourceOver is Porter-Duff "over" on premultiplied bytes:
// out = S + (1-Sa)*D.
func sourceOver(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	if sa == 255 {
		return sr, sg, sb, sa
	}
	invSa := 255 - sa
	return addClamp(sr, mulDiv255(dr, invSa)),
		addClamp(sg, mulDiv255(dg, invSa)),
		addClamp(sb, mulDiv255(db, invSa)),
		addClamp(sa, mulDiv255(da, invSa))
}

// separable applies a per-channel blend function under the standard
// separable-mode mixing formula. blendChan operates on unmultiplied values.
func separable(sr, sg, sb, sa, dr, dg, db, da byte, blendChan func(s, d byte) byte) (byte, byte, byte, byte) {
	if sa == 0 {
		return dr, dg, db, da
	}
	if da == 0 {
		return sr, sg, sb, sa
	}

	// Unpremultiply both sides before applying B.
	sur := unmul(sr, sa)
	sug := unmul(sg, sa)
	sub := unmul(sb, sa)
	dur := unmul(dr, da)
	dug := unmul(dg, da)
	dub := unmul(db, da)

	bR := blendChan(sur, dur)
	bG := blendChan(sug, dug)
	bB := blendChan(sub, dub)

	invSa := 255 - sa
	invDa := 255 - da
	saDa := mulDiv255(sa, da)

	outA := addClamp(sa, mulDiv255(da, invSa))
	outR := addClamp(addClamp(mulDiv255(dr, invSa), mulDiv255(sr, invDa)), mulDiv255(saDa, bR))
	outG := addClamp(addClamp(mulDiv255(dg, invSa), mulDiv255(sg, invDa)), mulDiv255(saDa, bG))
	outB := addClamp(addClamp(mulDiv255(db, invSa), mulDiv255(sb, invDa)), mulDiv255(saDa, bB))

	return outR, outG, outB, outA
}

// screenChan: 1 - (1-s)*(1-d).
func screenChan(s, d byte) byte {
	return 255 - mulDiv255(255-s, 255-d)
}

// hardLightChan: multiply for dark source, screen for bright source.
// The doubled products exceed uint16, so this uses 32-bit intermediates.
func hardLightChan(s, d byte) byte {
	if s <= 128 {
		v := 2 * uint32(s) * uint32(d)
		return byte(min((v+255)>>8, 255))
	}
	v := 2 * uint32(255-s) * uint32(255-d)
	return 255 - byte(min((v+255)>>8, 255))
}

// dodgeChan: min(1, d/(1-s)).
func dodgeChan(s, d byte) byte {
	if s == 255 {
		return 255
	}
	v := (uint16(d) * 255) / uint16(255-s)
	return clamp255(v)
}

// burnChan: 1 - min(1, (1-d)/s).
func burnChan(s, d byte) byte {
	if s == 0 {
		return 0
	}
	v := (uint16(255-d) * 255) / uint16(s)
	if v > 255 {
		return 0
	}
	return 255 - byte(v)
}

// softLightChan uses float math; the piecewise W3C formula does not reduce
// to clean byte arithmetic.
func softLightChan(s, d byte) byte {
	sf := float64(s) / 255
	df := float64(d) / 255

	var out float64
	if sf <= 0.5 {
		out = df - (1-2*sf)*df*(1-df)
	} else {
		var dx float64
		if df <= 0.25 {
			dx = ((16*df-12)*df + 4) * df
		} else {
			dx = math.Sqrt(df)
		}
		out = df + (2*sf-1)*(dx-df)
	}

	if out < 0 {
		out = 0
	}
	if out > 1 {
		out = 1
	}
	return byte(out*255 + 0.5)
}

// diffChan: |s - d|.
func diffChan(s, d byte) byte {
	if s > d {
		return s - d
	}
	return d - s
}

// exclusionChan: s + d - 2*s*d.
func exclusionChan(s, d byte) byte {
	sum := uint16(s) + uint16(d)
	prod := 2 * uint16(mulDiv255(s, d))
	if prod >= sum {
		return 0
	}
	return clamp255(sum - prod)
}
