package scrawl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/scrawlkit/scrawl/font"
	"github.com/scrawlkit/scrawl/texture"
)

// stubFetcher serves a fixed payload, failing the first failures
// attempts.
type stubFetcher struct {
	payload  []byte
	failures int
	attempts int
	err      error
}

func (f *stubFetcher) Fetch(context.Context, string) ([]byte, error) {
	f.attempts++
	if f.attempts <= f.failures {
		err := f.err
		if err == nil {
			err = fmt.Errorf("%w: stub failure", texture.ErrLoadFailed)
		}
		return nil, err
	}
	return f.payload, nil
}

// mapFetcher serves distinct payloads per URL.
type mapFetcher struct {
	payloads map[string][]byte
}

func (f *mapFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	if data, ok := f.payloads[url]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("%w: %s", texture.ErrTemplateNotFound, url)
}

func texturePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i-3], img.Pix[i-2], img.Pix[i-1], img.Pix[i] = 0xF5, 0xF0, 0xE6, 0xFF
	}
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// linesPNG encodes a dark opaque block standing in for a ruled-lines
// overlay.
func linesPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i-3], img.Pix[i-2], img.Pix[i-1], img.Pix[i] = 0x40, 0x40, 0x40, 0xFF
	}
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func testTextureManager(t *testing.T, fetcher texture.Fetcher) *texture.Manager {
	t.Helper()
	return texture.NewManager(texture.WithLoader(texture.NewLoader(
		texture.WithFetcher(fetcher),
		texture.WithRetries(1, time.Millisecond),
	)))
}

func testConfig() RenderingConfig {
	return RenderingConfig{
		Text:                "Hi",
		CanvasWidth:         400,
		CanvasHeight:        300,
		FontFamily:          "test",
		FontSize:            13,
		BaseInkColor:        "#000000",
		DistortionLevel:     3,
		BaselineJitterRange: 1.5,
		SlantJitterRange:    0.03,
		MicroTiltRange:      0.01,
		InkBoldness:         0.5,
		PaperTemplate:       texture.Template{ID: "classic", Filename: "classic.png"},
	}
}

func newTestRenderer(t *testing.T, fetcher texture.Fetcher) *CanvasRenderer {
	t.Helper()
	return NewCanvasRenderer(
		WithTextureManager(testTextureManager(t, fetcher)),
		WithQualityManager(NewQualityManager(DeviceProfile{MemoryGB: 4, NumCPU: 4, ViewportWidth: 1920})),
	)
}

func TestRenderSimpleText(t *testing.T) {
	fetcher := &stubFetcher{payload: texturePNG(t, 32, 32)}
	var glyphs int
	r := NewCanvasRenderer(
		WithTextureManager(testTextureManager(t, fetcher)),
		WithQualityManager(NewQualityManager(DeviceProfile{MemoryGB: 4, NumCPU: 4, ViewportWidth: 1920})),
		WithFaceProvider(countingFaceProvider{glyphs: &glyphs}),
	)

	canvas, err := r.Render(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	defer r.ReleaseCanvas(canvas)

	if canvas.Width() != 400 || canvas.Height() != 300 {
		t.Errorf("canvas = %dx%d, want 400x300", canvas.Width(), canvas.Height())
	}

	// The background texture covers the page; corners are paper-toned,
	// not transparent.
	pix := canvas.Image().Pix
	if pix[3] == 0 {
		t.Error("top-left pixel transparent, background never painted")
	}

	// "Hi" paints exactly its two non-space glyphs, and they leave
	// visibly dark pixels on top of the paper.
	if glyphs != 2 {
		t.Errorf("glyphs painted = %d, want 2", glyphs)
	}
	if countDarkPixels(canvas) == 0 {
		t.Error("no dark pixels after rendering text")
	}
}

// countingFace tallies glyph rasterization requests.
type countingFace struct {
	font.Face
	glyphs *int
}

func (f countingFace) Glyph(r rune) (*font.GlyphMask, bool) {
	*f.glyphs++
	return f.Face.Glyph(r)
}

type countingFaceProvider struct{ glyphs *int }

func (p countingFaceProvider) Face(string, float64) (font.Face, error) {
	return countingFace{Face: font.FallbackFace(), glyphs: p.glyphs}, nil
}

func TestRenderCompositesLinesOverlay(t *testing.T) {
	paper := texturePNG(t, 32, 32)
	fetcher := &mapFetcher{payloads: map[string][]byte{
		"plain.png": paper,
		"ruled.png": paper,
		"rules.png": linesPNG(t, 200, 40),
	}}
	r := newTestRenderer(t, fetcher)

	cfg := testConfig()
	cfg.Text = ""
	cfg.PaperTemplate = texture.Template{ID: "plain", Filename: "plain.png"}
	plain, err := r.Render(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Render without overlay: %v", err)
	}
	plainDark := countDarkPixels(plain)
	r.ReleaseCanvas(plain)

	cfg.PaperTemplate = texture.Template{
		ID: "ruled", Filename: "ruled.png", LinesFilename: "rules.png",
	}
	ruled, err := r.Render(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Render with overlay: %v", err)
	}
	defer r.ReleaseCanvas(ruled)

	if got := countDarkPixels(ruled); got <= plainDark {
		t.Errorf("overlay left no mark: %d dark pixels vs %d without it", got, plainDark)
	}
}

func TestRenderWithoutTemplateUsesProceduralPaper(t *testing.T) {
	fetcher := &stubFetcher{payload: texturePNG(t, 16, 16)}
	r := newTestRenderer(t, fetcher)

	cfg := testConfig()
	cfg.PaperTemplate = texture.Template{}
	canvas, err := r.Render(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	defer r.ReleaseCanvas(canvas)

	if fetcher.attempts != 0 {
		t.Errorf("empty template still hit the loader: %d attempts", fetcher.attempts)
	}
	// The primary stage handled it: the canvas came from the pool
	// (fallback canvases are unpooled).
	if got := r.Pool().Len(); got != 1 {
		t.Errorf("pool entries = %d, want 1 (primary stage bypassed)", got)
	}
	if countDarkPixels(canvas) == 0 {
		t.Error("no text painted on procedural paper")
	}
}

func TestRenderIdempotent(t *testing.T) {
	fetcher := &stubFetcher{payload: texturePNG(t, 32, 32)}
	r := newTestRenderer(t, fetcher)
	cfg := testConfig()
	cfg.Text = "same text twice"

	c1, err := r.Render(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	first := append([]byte(nil), c1.Image().Pix...)
	r.ReleaseCanvas(c1)

	c2, err := r.Render(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer r.ReleaseCanvas(c2)

	if !bytes.Equal(first, c2.Image().Pix) {
		t.Error("identical configs produced different pixels")
	}
}

func TestRenderValidationFailsFast(t *testing.T) {
	fetcher := &stubFetcher{payload: texturePNG(t, 8, 8)}
	r := newTestRenderer(t, fetcher)

	cfg := testConfig()
	cfg.BaseInkColor = "not-a-color"
	_, err := r.Render(context.Background(), cfg)

	var rerr *RenderError
	if !errors.As(err, &rerr) || rerr.Stage != "validate" {
		t.Fatalf("err = %v, want validate-stage RenderError", err)
	}
	var cerr *ConfigError
	if !errors.As(err, &cerr) || cerr.Field != "BaseInkColor" {
		t.Errorf("cause = %v, want BaseInkColor ConfigError", rerr.Err)
	}
	if fetcher.attempts != 0 {
		t.Error("validation failure still touched the texture loader")
	}
}

func TestRenderFallsBackOnTextureFailure(t *testing.T) {
	// Every fetch fails; the primary stage exhausts retries and the
	// fallback substitutes the emergency texture.
	fetcher := &stubFetcher{failures: 1 << 30}
	r := newTestRenderer(t, fetcher)

	canvas, err := r.Render(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	defer r.ReleaseCanvas(canvas)

	if canvas.Width() != 400 || canvas.Height() != 300 {
		t.Errorf("fallback canvas = %dx%d, want 400x300", canvas.Width(), canvas.Height())
	}
	if countDarkPixels(canvas) == 0 {
		t.Error("fallback render painted no text")
	}

	// Fallback renders feed the quality feedback loop too.
	if got := len(r.Quality().recent); got != 1 {
		t.Errorf("metrics samples after fallback render = %d, want 1", got)
	}
}

func TestRenderFallsBackOnMemoryLimit(t *testing.T) {
	fetcher := &stubFetcher{payload: texturePNG(t, 16, 16)}
	q := NewQualityManager(DeviceProfile{MemoryGB: 4, NumCPU: 4, ViewportWidth: 1920})
	q.maxDim = 1 << 20 // disable the dimension cap for this test
	r := NewCanvasRenderer(
		WithTextureManager(testTextureManager(t, fetcher)),
		WithQualityManager(q),
	)

	cfg := testConfig()
	cfg.CanvasWidth = 8400
	cfg.CanvasHeight = 8400 // 282 MB backing, above the canvas budget

	canvas, err := r.Render(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	defer r.ReleaseCanvas(canvas)

	if canvas.Width() >= 8400 {
		t.Errorf("fallback did not reduce dimensions: %dx%d", canvas.Width(), canvas.Height())
	}
	if countDarkPixels(canvas) == 0 {
		t.Error("reduced fallback render painted no text")
	}
}

// cancelAfterScheduler cancels its context after n yields.
type cancelAfterScheduler struct {
	n      int
	cancel context.CancelFunc
}

func (s *cancelAfterScheduler) Yield(ctx context.Context) error {
	s.n--
	if s.n <= 0 {
		s.cancel()
	}
	return ctx.Err()
}

func TestRenderCancellationIsFatal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := &stubFetcher{payload: texturePNG(t, 16, 16)}
	r := NewCanvasRenderer(
		WithTextureManager(testTextureManager(t, fetcher)),
		WithQualityManager(NewQualityManager(DeviceProfile{MemoryGB: 4, NumCPU: 4, ViewportWidth: 1920})),
		WithScheduler(&cancelAfterScheduler{n: 2, cancel: cancel}),
		WithChunkSize(1),
	)

	cfg := testConfig()
	cfg.Text = "long enough to require several chunks of glyph painting"
	_, err := r.Render(ctx, cfg)
	if !errors.Is(err, ErrRenderCanceled) {
		t.Fatalf("err = %v, want ErrRenderCanceled", err)
	}

	var rerr *RenderError
	if !errors.As(err, &rerr) {
		t.Fatal("cancellation did not surface as RenderError")
	}
	if rerr.Stage != "primary" {
		t.Errorf("stage = %q, want primary (fallback must be skipped)", rerr.Stage)
	}
	if rerr.Kind() != KindCanceled {
		t.Errorf("kind = %v, want %v", rerr.Kind(), KindCanceled)
	}
}

func TestRenderReusesPooledCanvas(t *testing.T) {
	fetcher := &stubFetcher{payload: texturePNG(t, 16, 16)}
	r := newTestRenderer(t, fetcher)

	c1, err := r.Render(context.Background(), testConfig())
	if err != nil {
		t.Fatal(err)
	}
	r.ReleaseCanvas(c1)

	if _, err := r.Render(context.Background(), testConfig()); err != nil {
		t.Fatal(err)
	}
	if got := r.Pool().Len(); got != 1 {
		t.Errorf("pool entries = %d, want 1 (canvas reused)", got)
	}
}

func TestRenderUnknownFontFamilyFallsBack(t *testing.T) {
	fetcher := &stubFetcher{payload: texturePNG(t, 16, 16)}
	r := NewCanvasRenderer(
		WithTextureManager(testTextureManager(t, fetcher)),
		WithQualityManager(NewQualityManager(DeviceProfile{MemoryGB: 4, NumCPU: 4, ViewportWidth: 1920})),
		WithFaceProvider(failingFaces{}),
	)

	canvas, err := r.Render(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	defer r.ReleaseCanvas(canvas)
	if countDarkPixels(canvas) == 0 {
		t.Error("built-in face fallback painted no text")
	}
}

type failingFaces struct{}

func (failingFaces) Face(family string, _ float64) (font.Face, error) {
	return nil, fmt.Errorf("no such family %q", family)
}
