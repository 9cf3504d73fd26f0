package scrawl

import (
	"regexp"

	"github.com/scrawlkit/scrawl/internal/blend"
	"github.com/scrawlkit/scrawl/texture"
)

// RenderingConfig describes a single render. The config is caller-owned
// and treated as immutable for the duration of the render.
type RenderingConfig struct {
	// Text is the input text. Paragraph breaks (\n) always start a new
	// line; lines beyond the page capacity are dropped from this render.
	Text string

	// CanvasWidth and CanvasHeight are the requested canvas dimensions in
	// pixels. Both must be positive. The effective backing dimensions may
	// be scaled by the quality factor.
	CanvasWidth  int
	CanvasHeight int

	// FontFamily is a resolved family name; font discovery is external.
	FontFamily string

	// FontSize in pixels.
	FontSize float64

	// BaseInkColor is a 6-hex-digit color string, with or without a
	// leading '#'. It selects the nearest named ink profile.
	BaseInkColor string

	// BlendMode is one of the supported compositing mode names
	// (see SupportedBlendModes). Empty selects the ink profile's mode.
	BlendMode string

	// DistortionLevel is 1..5: 1 is the most degraded/realistic wear,
	// 5 the cleanest.
	DistortionLevel int

	// Jitter ranges, all >= 0. Baseline in pixels, slant and micro-tilt
	// in radians.
	BaselineJitterRange float64
	SlantJitterRange    float64
	MicroTiltRange      float64

	// ColorVariationIntensity >= 0 scales per-glyph ink color wobble.
	ColorVariationIntensity float64

	// InkBoldness is 0..1 with 0.5 neutral. Above neutral the glyph is
	// stamped multiple times; below neutral fill alpha is reduced.
	InkBoldness float64

	// PaperTemplate references the background texture asset. The zero
	// value renders on procedurally generated plain paper.
	PaperTemplate texture.Template
}

// SupportedBlendModes returns the fixed allow-list of blend mode names the
// ink and effect layers may use.
func SupportedBlendModes() []string {
	return []string{
		"normal", "multiply", "screen", "overlay", "darken", "lighten",
		"color-dodge", "color-burn", "hard-light", "soft-light",
		"difference", "exclusion",
	}
}

var hexColorRE = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

// Validate checks the config. It runs before any canvas or texture
// acquisition; an invalid config never reaches resource handling.
func (c *RenderingConfig) Validate() error {
	if c.CanvasWidth <= 0 {
		return &ConfigError{Field: "CanvasWidth", Reason: "must be positive"}
	}
	if c.CanvasHeight <= 0 {
		return &ConfigError{Field: "CanvasHeight", Reason: "must be positive"}
	}
	if c.FontSize <= 0 {
		return &ConfigError{Field: "FontSize", Reason: "must be positive"}
	}
	if !hexColorRE.MatchString(c.BaseInkColor) {
		return &ConfigError{Field: "BaseInkColor", Reason: "must be a 6-hex-digit color"}
	}
	if c.BlendMode != "" {
		if _, ok := blend.Parse(c.BlendMode); !ok {
			return &ConfigError{Field: "BlendMode", Reason: "unsupported blend mode " + c.BlendMode}
		}
	}
	if c.DistortionLevel < 1 || c.DistortionLevel > 5 {
		return &ConfigError{Field: "DistortionLevel", Reason: "must be 1..5"}
	}
	if c.BaselineJitterRange < 0 {
		return &ConfigError{Field: "BaselineJitterRange", Reason: "must be >= 0"}
	}
	if c.SlantJitterRange < 0 {
		return &ConfigError{Field: "SlantJitterRange", Reason: "must be >= 0"}
	}
	if c.MicroTiltRange < 0 {
		return &ConfigError{Field: "MicroTiltRange", Reason: "must be >= 0"}
	}
	if c.ColorVariationIntensity < 0 {
		return &ConfigError{Field: "ColorVariationIntensity", Reason: "must be >= 0"}
	}
	if c.InkBoldness < 0 || c.InkBoldness > 1 {
		return &ConfigError{Field: "InkBoldness", Reason: "must be in 0..1"}
	}
	return nil
}
