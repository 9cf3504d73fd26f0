package blend

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		want   Mode
		wantOK bool
	}{
		{"normal", SourceOver, true},
		{"source-over", SourceOver, true},
		{"multiply", Multiply, true},
		{"screen", Screen, true},
		{"overlay", Overlay, true},
		{"darken", Darken, true},
		{"lighten", Lighten, true},
		{"color-dodge", ColorDodge, true},
		{"color-burn", ColorBurn, true},
		{"hard-light", HardLight, true},
		{"soft-light", SoftLight, true},
		{"difference", Difference, true},
		{"exclusion", Exclusion, true},
		{"plus-lighter", SourceOver, false},
		{"", SourceOver, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.name)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Parse(%q) = (%v, %v), want (%v, %v)", tt.name, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	for name, mode := range modeNames {
		if name == "normal" {
			continue // alias, canonical name is "source-over"
		}
		if got := mode.String(); got != name {
			t.Errorf("Mode(%d).String() = %q, want %q", mode, got, name)
		}
	}
}

func TestSourceOver(t *testing.T) {
	// Opaque source replaces destination.
	r, g, b, a := Pixel(SourceOver, 200, 100, 50, 255, 10, 20, 30, 255)
	if r != 200 || g != 100 || b != 50 || a != 255 {
		t.Errorf("opaque source-over = (%d,%d,%d,%d), want (200,100,50,255)", r, g, b, a)
	}

	// Transparent source leaves destination untouched.
	r, g, b, a = Pixel(SourceOver, 0, 0, 0, 0, 10, 20, 30, 255)
	if r != 10 || g != 20 || b != 30 || a != 255 {
		t.Errorf("transparent source-over = (%d,%d,%d,%d), want (10,20,30,255)", r, g, b, a)
	}
}

func TestSeparableEdgeAlpha(t *testing.T) {
	modes := []Mode{Multiply, Screen, Overlay, Darken, Lighten, ColorDodge, ColorBurn, HardLight, SoftLight, Difference, Exclusion}
	for _, m := range modes {
		t.Run(m.String(), func(t *testing.T) {
			// Transparent source: destination passes through.
			r, g, b, a := Pixel(m, 0, 0, 0, 0, 40, 50, 60, 200)
			if r != 40 || g != 50 || b != 60 || a != 200 {
				t.Errorf("transparent src: got (%d,%d,%d,%d), want dst (40,50,60,200)", r, g, b, a)
			}
			// Transparent destination: source passes through.
			r, g, b, a = Pixel(m, 40, 50, 60, 200, 0, 0, 0, 0)
			if r != 40 || g != 50 || b != 60 || a != 200 {
				t.Errorf("transparent dst: got (%d,%d,%d,%d), want src (40,50,60,200)", r, g, b, a)
			}
		})
	}
}

func TestMultiplyOpaque(t *testing.T) {
	// multiply(1.0, 0.5) = 0.5 within fast-approximation tolerance.
	r, _, _, a := Pixel(Multiply, 255, 255, 255, 255, 128, 128, 128, 255)
	if a != 255 {
		t.Fatalf("alpha = %d, want 255", a)
	}
	if diff := absDiff(r, 128); diff > 2 {
		t.Errorf("multiply(255, 128) = %d, want ~128", r)
	}

	// Multiplying with black gives black.
	r, g, b, _ := Pixel(Multiply, 0, 0, 0, 255, 200, 150, 100, 255)
	if r > 1 || g > 1 || b > 1 {
		t.Errorf("multiply with black = (%d,%d,%d), want ~0", r, g, b)
	}
}

func TestScreenOpaque(t *testing.T) {
	// Screening with white gives white.
	r, g, b, _ := Pixel(Screen, 255, 255, 255, 255, 10, 20, 30, 255)
	if r != 255 || g != 255 || b != 255 {
		t.Errorf("screen with white = (%d,%d,%d), want (255,255,255)", r, g, b)
	}
	// Screening with black leaves destination.
	r, g, b, _ = Pixel(Screen, 0, 0, 0, 255, 10, 20, 30, 255)
	if absDiff(r, 10) > 2 || absDiff(g, 20) > 2 || absDiff(b, 30) > 2 {
		t.Errorf("screen with black = (%d,%d,%d), want ~(10,20,30)", r, g, b)
	}
}

func TestDarkenLighten(t *testing.T) {
	r, _, _, _ := Pixel(Darken, 100, 100, 100, 255, 200, 200, 200, 255)
	if absDiff(r, 100) > 2 {
		t.Errorf("darken(100, 200) = %d, want ~100", r)
	}
	r, _, _, _ = Pixel(Lighten, 100, 100, 100, 255, 200, 200, 200, 255)
	if absDiff(r, 200) > 2 {
		t.Errorf("lighten(100, 200) = %d, want ~200", r)
	}
}

func TestDifference(t *testing.T) {
	r, _, _, _ := Pixel(Difference, 200, 200, 200, 255, 50, 50, 50, 255)
	if absDiff(r, 150) > 2 {
		t.Errorf("difference(200, 50) = %d, want ~150", r)
	}
}

func TestDodgeBurnExtremes(t *testing.T) {
	// Dodge with white source saturates.
	r, _, _, _ := Pixel(ColorDodge, 255, 255, 255, 255, 100, 100, 100, 255)
	if r < 253 {
		t.Errorf("dodge with white = %d, want ~255", r)
	}
	// Burn with black source crushes to black.
	r, _, _, _ = Pixel(ColorBurn, 0, 0, 0, 255, 100, 100, 100, 255)
	if r > 2 {
		t.Errorf("burn with black = %d, want ~0", r)
	}
}

func absDiff(a, b byte) byte {
	if a > b {
		return a - b
	}
	return b - a
}
