package scrawl

import (
	"image/color"
	"testing"

	"github.com/scrawlkit/scrawl/internal/blend"
)

func TestProfileForExactHexes(t *testing.T) {
	s := NewInkRenderingSystem()
	tests := []struct {
		hex  string
		want string
	}{
		{"#000000", "black"},
		{"#0000FF", "blue"},
		{"#ff0000", "red"},
		{"#008000", "green"},
		{"1a3a8f", "blue"}, // missing '#' still resolves
	}
	for _, tt := range tests {
		if got := s.ProfileFor(tt.hex); got.Name != tt.want {
			t.Errorf("ProfileFor(%q) = %q, want %q", tt.hex, got.Name, tt.want)
		}
	}
}

func TestProfileForHueClassification(t *testing.T) {
	s := NewInkRenderingSystem()
	tests := []struct {
		hex  string
		want string
	}{
		{"#3355cc", "blue"},  // saturated blue hue
		{"#cc2211", "red"},   // saturated red hue
		{"#33aa55", "green"}, // saturated green hue
		{"#888888", "black"}, // desaturated gray
		{"#ffaa00", "black"}, // orange falls outside all buckets
		{"#05060a", "black"}, // nearly black blue-ish
	}
	for _, tt := range tests {
		if got := s.ProfileFor(tt.hex); got.Name != tt.want {
			t.Errorf("ProfileFor(%q) = %q, want %q", tt.hex, got.Name, tt.want)
		}
	}
}

func TestProfileForInvalidInput(t *testing.T) {
	s := NewInkRenderingSystem()
	for _, hex := range []string{"", "#xyzxyz", "#12345", "not a color"} {
		if got := s.ProfileFor(hex); got.Name != "black" {
			t.Errorf("ProfileFor(%q) = %q, want black default", hex, got.Name)
		}
	}
}

func TestInkProfilesComposite(t *testing.T) {
	s := NewInkRenderingSystem()
	for _, name := range s.Profiles() {
		p := s.profiles[name]
		if p.Opacity <= 0 || p.Opacity > 1 {
			t.Errorf("%s: opacity %v out of (0,1]", name, p.Opacity)
		}
		if p.Blend != blend.Multiply {
			t.Errorf("%s: blend = %v, want multiply", name, p.Blend)
		}
	}
}

func TestInkVariationsDeterministic(t *testing.T) {
	a := NewInkRenderingSystem()
	b := NewInkRenderingSystem()
	p := a.ProfileFor("#0000ff")

	for i := 0; i < 20; i++ {
		if a.Variation(p, i) != b.Variation(p, i) {
			t.Fatalf("variation %d differs across identical systems", i)
		}
	}

	// Index wraps rather than panicking.
	if a.Variation(p, inkVariationCount+1) != a.Variation(p, 1) {
		t.Error("variation index does not wrap")
	}
	if a.Variation(p, -3) != a.Variation(p, 3) {
		t.Error("negative variation index not handled")
	}
}

func TestInkVariationsStayNearProfileColor(t *testing.T) {
	s := NewInkRenderingSystem()
	p := s.ProfileFor("#1a3a8f")
	for i := 0; i < inkVariationCount; i++ {
		v := s.Variation(p, i)
		if chanDist(v.R, p.Color.R) > 30 || chanDist(v.G, p.Color.G) > 30 || chanDist(v.B, p.Color.B) > 40 {
			t.Errorf("variation %d = %v strays too far from %v", i, v, p.Color)
		}
		if v.A != 0xFF {
			t.Errorf("variation %d alpha = %d, want opaque", i, v.A)
		}
	}
}

func chanDist(a, b uint8) int {
	d := int(a) - int(b)
	if d < 0 {
		d = -d
	}
	return d
}

func TestParseHexColor(t *testing.T) {
	c, ok := parseHexColor("#A61b1B")
	if !ok {
		t.Fatal("parse failed")
	}
	want := color.NRGBA{R: 0xA6, G: 0x1B, B: 0x1B, A: 0xFF}
	if c != want {
		t.Errorf("got %v, want %v", c, want)
	}
	if _, ok := parseHexColor("#12"); ok {
		t.Error("short hex accepted")
	}
}
