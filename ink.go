package scrawl

import (
	"image/color"
	"math"
	"strings"

	"github.com/scrawlkit/scrawl/internal/blend"
)

// inkVariationCount is how many precomputed shade variants each profile
// carries. Variants are generated once per system so repeated renders
// sample identical palettes.
const inkVariationCount = 8

// InkProfile describes how one ink family composites onto paper.
type InkProfile struct {
	Name    string
	Color   color.NRGBA
	Opacity float64
	Blend   blend.Mode
}

// Built-in ink families. Colors are picked off real pen scans rather
// than pure RGB primaries.
var (
	inkBlack = InkProfile{Name: "black", Color: color.NRGBA{R: 0x1F, G: 0x1B, B: 0x18, A: 0xFF}, Opacity: 0.92, Blend: blend.Multiply}
	inkBlue  = InkProfile{Name: "blue", Color: color.NRGBA{R: 0x1A, G: 0x3A, B: 0x8F, A: 0xFF}, Opacity: 0.88, Blend: blend.Multiply}
	inkRed   = InkProfile{Name: "red", Color: color.NRGBA{R: 0xA6, G: 0x1B, B: 0x1B, A: 0xFF}, Opacity: 0.90, Blend: blend.Multiply}
	inkGreen = InkProfile{Name: "green", Color: color.NRGBA{R: 0x1F, G: 0x6B, B: 0x3A, A: 0xFF}, Opacity: 0.90, Blend: blend.Multiply}
)

// exactInkHexes maps well-known pen colors straight to a family,
// bypassing hue classification.
var exactInkHexes = map[string]string{
	"#000000": "black",
	"#1a1a1a": "black",
	"#1f1b18": "black",
	"#0000ff": "blue",
	"#1a3a8f": "blue",
	"#2541b2": "blue",
	"#ff0000": "red",
	"#a61b1b": "red",
	"#c0392b": "red",
	"#008000": "green",
	"#1f6b3a": "green",
	"#27ae60": "green",
}

// InkRenderingSystem classifies requested ink colors into pen profiles
// and hands out deterministic shade variations for natural-looking
// strokes.
type InkRenderingSystem struct {
	profiles   map[string]InkProfile
	variations map[string][]color.NRGBA
	seed       uint64
}

// NewInkRenderingSystem builds the default four-family ink system.
func NewInkRenderingSystem() *InkRenderingSystem {
	s := &InkRenderingSystem{
		profiles:   make(map[string]InkProfile, 4),
		variations: make(map[string][]color.NRGBA, 4),
		seed:       0x5ca17b0de,
	}
	for _, p := range []InkProfile{inkBlack, inkBlue, inkRed, inkGreen} {
		s.profiles[p.Name] = p
		s.variations[p.Name] = generateInkVariations(p, s.seed)
	}
	return s
}

// ProfileFor resolves a hex color string to an ink profile. Exact
// well-known hexes map directly; everything else is classified by hue,
// with black as the default for low-saturation or unparseable input.
func (s *InkRenderingSystem) ProfileFor(hex string) InkProfile {
	norm := strings.ToLower(strings.TrimSpace(hex))
	if !strings.HasPrefix(norm, "#") {
		norm = "#" + norm
	}
	if name, ok := exactInkHexes[norm]; ok {
		return s.profiles[name]
	}

	c, ok := parseHexColor(norm)
	if !ok {
		return s.profiles["black"]
	}
	return s.profiles[classifyInk(c)]
}

// Variation returns the nth precomputed shade of a profile. The index
// wraps, so any deterministic per-glyph counter is a valid input.
func (s *InkRenderingSystem) Variation(p InkProfile, n int) color.NRGBA {
	vars := s.variations[p.Name]
	if len(vars) == 0 {
		return p.Color
	}
	if n < 0 {
		n = -n
	}
	return vars[n%len(vars)]
}

// Profiles lists the registered ink family names.
func (s *InkRenderingSystem) Profiles() []string {
	names := make([]string, 0, len(s.profiles))
	for name := range s.profiles {
		names = append(names, name)
	}
	return names
}

// classifyInk buckets a color into an ink family by hue. Desaturated
// and very dark colors read as black regardless of hue.
func classifyInk(c color.NRGBA) string {
	h, sat, v := rgbToHSV(c)
	if sat < 0.25 || v < 0.12 {
		return "black"
	}
	switch {
	case h >= 190 && h <= 265:
		return "blue"
	case h < 25 || h > 335:
		return "red"
	case h >= 85 && h <= 165:
		return "green"
	}
	return "black"
}

// generateInkVariations precomputes subtle brightness wobbles around a
// profile color. Spread is small; ink variation should read as pressure
// changes, not as different pens.
func generateInkVariations(p InkProfile, seed uint64) []color.NRGBA {
	vars := make([]color.NRGBA, inkVariationCount)
	for i := range vars {
		h := mix64(seed ^ hashString(p.Name) ^ uint64(i)<<16)
		// Brightness wobble in [-8%, +8%].
		scale := 1 + (float64(h>>11)/(1<<53)*2-1)*0.08
		vars[i] = color.NRGBA{
			R: scaleChannel(p.Color.R, scale),
			G: scaleChannel(p.Color.G, scale),
			B: scaleChannel(p.Color.B, scale),
			A: p.Color.A,
		}
	}
	return vars
}

func scaleChannel(c uint8, scale float64) uint8 {
	v := float64(c) * scale
	if v > 255 {
		v = 255
	}
	if v < 0 {
		v = 0
	}
	return uint8(math.Round(v))
}

// parseHexColor parses "#rrggbb" into an opaque color.
func parseHexColor(s string) (color.NRGBA, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.NRGBA{}, false
	}
	var vals [3]uint8
	for i := range vals {
		hi, ok1 := hexNibble(s[i*2])
		lo, ok2 := hexNibble(s[i*2+1])
		if !ok1 || !ok2 {
			return color.NRGBA{}, false
		}
		vals[i] = hi<<4 | lo
	}
	return color.NRGBA{R: vals[0], G: vals[1], B: vals[2], A: 0xFF}, true
}

func hexNibble(b byte) (uint8, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}

// rgbToHSV converts to hue [0,360), saturation and value in [0,1].
func rgbToHSV(c color.NRGBA) (h, s, v float64) {
	r := float64(c.R) / 255
	g := float64(c.G) / 255
	b := float64(c.B) / 255

	mx := math.Max(r, math.Max(g, b))
	mn := math.Min(r, math.Min(g, b))
	d := mx - mn

	v = mx
	if mx > 0 {
		s = d / mx
	}
	if d == 0 {
		return 0, s, v
	}
	switch mx {
	case r:
		h = math.Mod((g-b)/d, 6)
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	h *= 60
	if h < 0 {
		h += 360
	}
	return h, s, v
}
