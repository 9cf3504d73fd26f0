package scrawl

import (
	"errors"
	"testing"

	"github.com/scrawlkit/scrawl/texture"
)

func validConfig() RenderingConfig {
	return RenderingConfig{
		Text:            "hello",
		CanvasWidth:     400,
		CanvasHeight:    300,
		FontFamily:      "Caveat",
		FontSize:        24,
		BaseInkColor:    "#1A3A8F",
		BlendMode:       "multiply",
		DistortionLevel: 3,
		InkBoldness:     0.5,
		PaperTemplate:   texture.Template{ID: "classic", Filename: "classic.png"},
	}
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	// Empty blend mode defers to the ink profile.
	cfg.BlendMode = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate without blend mode: %v", err)
	}

	// Hex color without '#'.
	cfg.BaseInkColor = "a61b1b"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate bare hex: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RenderingConfig)
		field  string
	}{
		{"zero width", func(c *RenderingConfig) { c.CanvasWidth = 0 }, "CanvasWidth"},
		{"negative height", func(c *RenderingConfig) { c.CanvasHeight = -1 }, "CanvasHeight"},
		{"zero font size", func(c *RenderingConfig) { c.FontSize = 0 }, "FontSize"},
		{"bad color", func(c *RenderingConfig) { c.BaseInkColor = "#12" }, "BaseInkColor"},
		{"bad blend mode", func(c *RenderingConfig) { c.BlendMode = "plasma" }, "BlendMode"},
		{"distortion low", func(c *RenderingConfig) { c.DistortionLevel = 0 }, "DistortionLevel"},
		{"distortion high", func(c *RenderingConfig) { c.DistortionLevel = 6 }, "DistortionLevel"},
		{"negative jitter", func(c *RenderingConfig) { c.BaselineJitterRange = -1 }, "BaselineJitterRange"},
		{"negative slant", func(c *RenderingConfig) { c.SlantJitterRange = -0.1 }, "SlantJitterRange"},
		{"negative tilt", func(c *RenderingConfig) { c.MicroTiltRange = -0.1 }, "MicroTiltRange"},
		{"negative color variation", func(c *RenderingConfig) { c.ColorVariationIntensity = -1 }, "ColorVariationIntensity"},
		{"boldness above one", func(c *RenderingConfig) { c.InkBoldness = 1.1 }, "InkBoldness"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("Validate = %v, want ConfigError", err)
			}
			if cerr.Field != tt.field {
				t.Errorf("field = %q, want %q", cerr.Field, tt.field)
			}
		})
	}
}

func TestSupportedBlendModesParse(t *testing.T) {
	for _, name := range SupportedBlendModes() {
		cfg := validConfig()
		cfg.BlendMode = name
		if err := cfg.Validate(); err != nil {
			t.Errorf("supported mode %q rejected: %v", name, err)
		}
	}
}
