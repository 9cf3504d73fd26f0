package scrawl

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/scrawlkit/scrawl/font"
	"github.com/scrawlkit/scrawl/internal/blend"
)

func TestStampPlanMonotoneCoverage(t *testing.T) {
	prev := -1.0
	for b := 0.0; b <= 1.0+1e-9; b += 0.05 {
		offsets, alpha := stampPlan(b, 24)
		coverage := float64(len(offsets)) * alpha
		if coverage < prev-1e-9 {
			t.Fatalf("coverage decreased at boldness %.2f: %v -> %v", b, prev, coverage)
		}
		prev = coverage
	}
}

func TestStampPlanShape(t *testing.T) {
	// Neutral boldness: a single full-strength stamp.
	offsets, alpha := stampPlan(0.5, 24)
	if len(offsets) != 1 || offsets[0] != [2]float64{0, 0} {
		t.Errorf("offsets at 0.5 = %v, want single centered stamp", offsets)
	}
	if math.Abs(alpha-1) > 1e-9 {
		t.Errorf("alpha at 0.5 = %v, want 1", alpha)
	}

	// Light strokes reduce alpha convexly, never below the fade floor.
	_, light := stampPlan(0, 24)
	if light >= 1 || light < 1-lightStrokeFade {
		t.Errorf("alpha at 0 = %v, want in [%v, 1)", light, 1-lightStrokeFade)
	}
	_, quarter := stampPlan(0.25, 24)
	if quarter <= light || quarter >= 1 {
		t.Errorf("alpha at 0.25 = %v, want between %v and 1", quarter, light)
	}

	// Maximum boldness: the full 9-point pattern.
	offsets, alpha = stampPlan(1, 24)
	if len(offsets) != 9 {
		t.Errorf("stamps at 1.0 = %d, want 9", len(offsets))
	}
	if alpha <= 1 {
		t.Errorf("alpha at 1.0 = %v, want boost above 1", alpha)
	}

	// Out-of-range input clamps instead of panicking.
	if got, _ := stampPlan(3, 24); len(got) != 9 {
		t.Errorf("boldness 3 stamps = %d, want 9", len(got))
	}
	if got, _ := stampPlan(-1, 24); len(got) != 1 {
		t.Errorf("boldness -1 stamps = %d, want 1", len(got))
	}
}

func TestRotateMaskGeometry(t *testing.T) {
	mask := image.NewAlpha(image.Rect(0, 0, 10, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 10; x++ {
			mask.SetAlpha(x, y, color.Alpha{A: 255})
		}
	}

	rotated, dx, dy := rotateMask(mask, math.Pi/2)
	rb := rotated.Bounds()
	if rb.Dx() < 20 || rb.Dy() < 10 {
		t.Errorf("90-degree rotation bounds = %v, want at least 20x10", rb)
	}
	// The placement shift recenters the larger mask on the original.
	if dx > 0 || dy < 0 {
		t.Errorf("shift = (%v, %v), want dx <= 0 and dy >= 0", dx, dy)
	}

	// The rotated mask keeps its coverage.
	var sum int
	for y := rb.Min.Y; y < rb.Max.Y; y++ {
		for x := rb.Min.X; x < rb.Max.X; x++ {
			sum += int(rotated.AlphaAt(x, y).A)
		}
	}
	if sum < 10*20*200 {
		t.Errorf("rotated coverage %d too low", sum)
	}
}

func TestGlyphPainterPaints(t *testing.T) {
	c, err := NewCanvas(120, 60)
	if err != nil {
		t.Fatal(err)
	}
	c.Clear(color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	inks := NewInkRenderingSystem()
	engine := NewTextVariationEngine(testRanges(), 1)
	engine.SetBaseColor(inks.ProfileFor("#000000").Color)

	p := &glyphPainter{
		canvas:   c,
		face:     font.FallbackFace(),
		engine:   engine,
		inks:     inks,
		ink:      inks.ProfileFor("#000000"),
		mode:     blend.Multiply,
		boldness: 0.5,
		fontSize: 13,
	}

	adv := p.paint('H', 0, 20, 40)
	if adv <= 0 {
		t.Fatalf("advance = %v, want > 0", adv)
	}

	if countDarkPixels(c) == 0 {
		t.Error("painting 'H' left no dark pixels")
	}

	// Painting restores canvas state.
	if c.BlendMode() != blend.SourceOver || c.Alpha() != 1 {
		t.Error("glyph painting leaked canvas state")
	}
}

func TestGlyphPainterBoldnessDarkens(t *testing.T) {
	dark := func(boldness float64) int {
		c, err := NewCanvas(120, 60)
		if err != nil {
			t.Fatal(err)
		}
		c.Clear(color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		inks := NewInkRenderingSystem()
		engine := NewTextVariationEngine(testRanges(), 1)
		engine.SetVariationIntensity(0)
		p := &glyphPainter{
			canvas:   c,
			face:     font.FallbackFace(),
			engine:   engine,
			inks:     inks,
			ink:      inks.ProfileFor("#000000"),
			mode:     blend.Multiply,
			boldness: boldness,
			fontSize: 13,
		}
		p.paint('M', 0, 20, 40)
		return countDarkPixels(c)
	}

	if light, bold := dark(0.1), dark(0.95); bold < light {
		t.Errorf("bold stroke covers %d pixels, light covers %d", bold, light)
	}
}

func TestGlyphPainterMissingGlyphAdvances(t *testing.T) {
	c, err := NewCanvas(60, 30)
	if err != nil {
		t.Fatal(err)
	}
	inks := NewInkRenderingSystem()
	p := &glyphPainter{
		canvas:   c,
		face:     font.FallbackFace(),
		engine:   NewTextVariationEngine(testRanges(), 1),
		inks:     inks,
		ink:      inks.ProfileFor("#000000"),
		mode:     blend.SourceOver,
		boldness: 0.5,
		fontSize: 13,
	}
	// The bitmap fallback face has no CJK coverage.
	if adv := p.paint('世', 0, 5, 20); adv <= 0 {
		t.Errorf("missing glyph advance = %v, want > 0", adv)
	}
}

// countDarkPixels counts canvas pixels noticeably darker than white.
func countDarkPixels(c *Canvas) int {
	img := c.Image()
	n := 0
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] < 200 && img.Pix[i+3] > 200 {
			n++
		}
	}
	return n
}
