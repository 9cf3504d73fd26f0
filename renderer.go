package scrawl

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"time"
	"unicode"

	"github.com/scrawlkit/scrawl/font"
	"github.com/scrawlkit/scrawl/internal/blend"
	"github.com/scrawlkit/scrawl/recovery"
	"github.com/scrawlkit/scrawl/texture"
)

// Renderer renders a config to a canvas.
type Renderer interface {
	Render(ctx context.Context, cfg RenderingConfig) (*Canvas, error)
}

// FaceProvider resolves a font family at a size. *font.Registry
// implements it; tests substitute the built-in face.
type FaceProvider interface {
	Face(family string, size float64) (font.Face, error)
}

// fallbackFaceProvider serves the built-in bitmap face for any family.
// It is the default so a zero-config renderer works without font assets.
type fallbackFaceProvider struct{}

func (fallbackFaceProvider) Face(string, float64) (font.Face, error) {
	return font.FallbackFace(), nil
}

// paperWhite is the base page color under the texture.
var paperWhite = color.NRGBA{R: 0xFF, G: 0xFE, B: 0xFA, A: 0xFF}

// intensityForLevel maps distortion level 1..5 to a variation intensity
// multiplier; heavier distortion means livelier handwriting.
var intensityForLevel = [5]float64{1.4, 1.2, 1.0, 0.8, 0.6}

// CanvasRenderer is the production renderer: primary stage with full
// variation and effects, falling back to a degraded single-pass render
// when the primary stage fails recoverably.
type CanvasRenderer struct {
	textures  *texture.Manager
	pool      *CanvasPool
	quality   *QualityManager
	inks      *InkRenderingSystem
	faces     FaceProvider
	scheduler Scheduler
	chunkSize int
	log       *slog.Logger
}

// NewCanvasRenderer builds a renderer. Without options it detects the
// device, pools canvases accordingly, and serves the built-in face; a
// production setup wires a font.Registry and a texture.Manager pointed
// at its asset host.
func NewCanvasRenderer(opts ...RendererOption) *CanvasRenderer {
	r := &CanvasRenderer{
		inks:      NewInkRenderingSystem(),
		faces:     fallbackFaceProvider{},
		scheduler: immediateScheduler{},
		chunkSize: defaultChunkSize,
		log:       Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.quality == nil {
		r.quality = NewQualityManager(DetectDevice())
	}
	if r.pool == nil {
		r.pool = NewCanvasPool(WithPoolSizeForTier(r.quality.Tier()), WithPoolLogger(r.log))
	}
	if r.textures == nil {
		r.textures = texture.NewManager(texture.WithManagerLogger(r.log))
	}
	return r
}

// Render validates the config, then runs the primary stage and, on
// recoverable failure, the degraded fallback stage. Fatal errors
// (canvas unavailable, cancellation) skip the fallback. The returned
// canvas stays checked out of the pool until ReleaseCanvas.
func (r *CanvasRenderer) Render(ctx context.Context, cfg RenderingConfig) (*Canvas, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &RenderError{Stage: "validate", Err: err}
	}

	start := time.Now()
	res := r.renderPrimary(ctx, cfg)
	if res.OK() {
		r.quality.AdaptQuality(RenderMetrics{
			Duration:   time.Since(start),
			GlyphCount: len([]rune(cfg.Text)),
		})
		return res.Value, nil
	}

	if fatalRenderError(res.Err) {
		return nil, &RenderError{Stage: "primary", Err: res.Err}
	}

	r.log.Warn("primary render failed, entering fallback", "err", res.Err)
	fb := r.renderFallback(ctx, reduceConfig(cfg, res.Err))
	if !fb.OK() {
		return nil, &RenderError{Stage: "fallback", Err: errors.Join(res.Err, fb.Err)}
	}
	// Fallback renders feed the feedback loop too: a render slow enough
	// to exhaust the primary stage is exactly the signal to shed quality.
	r.quality.AdaptQuality(RenderMetrics{
		Duration:   time.Since(start),
		GlyphCount: len([]rune(cfg.Text)),
	})
	return fb.Value, nil
}

// ReleaseCanvas returns a rendered canvas to the pool. Canvases from
// the fallback stage (or an exhausted pool) are unpooled; releasing
// them is a no-op.
func (r *CanvasRenderer) ReleaseCanvas(c *Canvas) {
	if r.pool != nil {
		r.pool.ReleaseCanvas(c)
	}
}

// Pool exposes the canvas pool for maintenance wiring.
func (r *CanvasRenderer) Pool() *CanvasPool { return r.pool }

// Quality exposes the quality manager.
func (r *CanvasRenderer) Quality() *QualityManager { return r.quality }

// Textures exposes the texture manager.
func (r *CanvasRenderer) Textures() *texture.Manager { return r.textures }

// fatalRenderError reports errors that must not trigger the fallback
// stage.
func fatalRenderError(err error) bool {
	return errors.Is(err, ErrCanvasUnavailable) ||
		errors.Is(err, ErrRenderCanceled) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// renderPrimary runs the full-quality stage.
func (r *CanvasRenderer) renderPrimary(ctx context.Context, cfg RenderingConfig) recovery.Result[*Canvas] {
	face, err := r.faces.Face(cfg.FontFamily, cfg.FontSize)
	if err != nil {
		return recovery.Fail[*Canvas](fmt.Errorf("%w: family %q: %v", ErrFontLoadFailed, cfg.FontFamily, err))
	}

	width, height := r.quality.ClampSize(cfg.CanvasWidth, cfg.CanvasHeight)

	var canvas *Canvas
	var entry *PooledCanvas
	if r.quality.PoolingEnabled() {
		entry, err = r.pool.Acquire(width, height)
		if err != nil {
			return recovery.Fail[*Canvas](err)
		}
		canvas = entry.Canvas
	} else {
		canvas, err = NewCanvas(width, height)
		if err != nil {
			return recovery.Fail[*Canvas](err)
		}
	}
	fail := func(err error) recovery.Result[*Canvas] {
		r.pool.Release(entry)
		return recovery.Fail[*Canvas](err)
	}

	var tex *texture.PaperTexture
	if cfg.PaperTemplate.ID == "" {
		// No template configured; render on procedural paper rather than
		// forcing every zero-config caller through the degraded fallback.
		tex = texture.Emergency(width, height)
	} else if tex, err = r.textures.LoadTexture(ctx, cfg.PaperTemplate); err != nil {
		return fail(fmt.Errorf("paper texture: %w", err))
	}

	if err := r.paintPage(ctx, canvas, cfg, face, tex); err != nil {
		return fail(err)
	}

	applyEffects(canvas, cfg.DistortionLevel, hashString(cfg.Text))
	r.log.Debug("primary render complete",
		"width", width, "height", height, "level", cfg.DistortionLevel)
	return recovery.Ok(canvas)
}

// paintPage draws the background texture and the full text layer with
// per-glyph variation, yielding between chunks.
func (r *CanvasRenderer) paintPage(ctx context.Context, c *Canvas, cfg RenderingConfig, face font.Face, tex *texture.PaperTexture) error {
	c.Clear(paperWhite)
	if tex.Base != nil {
		c.DrawImageCover(tex.Base, 1, blend.SourceOver)
	}
	if tex.Lines != nil {
		// The ruled-lines overlay keeps its natural size, centered.
		lb := tex.Lines.Bounds()
		x0 := (c.Width() - lb.Dx()) / 2
		y0 := (c.Height() - lb.Dy()) / 2
		c.DrawImage(tex.Lines, image.Rect(x0, y0, x0+lb.Dx(), y0+lb.Dy()), 1, blend.Multiply)
	}

	profile := r.inks.ProfileFor(cfg.BaseInkColor)
	mode := profile.Blend
	if cfg.BlendMode != "" {
		if m, ok := blend.Parse(cfg.BlendMode); ok {
			mode = m
		}
	}

	engine := NewTextVariationEngine(VariationRanges{
		BaselineJitterRange:     cfg.BaselineJitterRange,
		SlantJitterRange:        cfg.SlantJitterRange,
		MicroTiltRange:          cfg.MicroTiltRange,
		ColorVariationIntensity: cfg.ColorVariationIntensity,
	}, hashString(cfg.Text)^hashString(cfg.FontFamily))
	engine.SetVariationIntensity(levelIntensity(cfg.DistortionLevel))
	engine.SetBaseColor(profile.Color)

	layout := NewPageLayout(c.Width(), c.Height(), face, cfg.FontSize, cfg.DistortionLevel)
	lines := LayoutText(cfg.Text, face, layout.Available(c.Width()))
	if len(lines) > layout.LinesPerPage {
		r.log.Debug("text exceeds page capacity",
			"lines", len(lines), "capacity", layout.LinesPerPage)
		lines = lines[:layout.LinesPerPage]
	}

	painter := &glyphPainter{
		canvas:   c,
		face:     face,
		engine:   engine,
		inks:     r.inks,
		ink:      profile,
		mode:     mode,
		boldness: cfg.InkBoldness,
		fontSize: cfg.FontSize,
	}

	spaceAdvance := face.Advance(" ")
	pos, painted := 0, 0
	for i, line := range lines {
		x := layout.MarginX
		baseline := layout.Baseline(face, i)
		for _, ch := range line.Text {
			if unicode.IsSpace(ch) {
				x += engine.SpaceAdvance(pos, spaceAdvance)
				pos++
				continue
			}
			x += painter.paint(ch, pos, x, baseline)
			pos++
			painted++
			if painted%r.chunkSize == 0 {
				if err := r.scheduler.Yield(ctx); err != nil {
					return fmt.Errorf("%w: %w", ErrRenderCanceled, err)
				}
			}
		}
	}
	return nil
}

func levelIntensity(level int) float64 {
	if level < 1 {
		level = 1
	}
	if level > 5 {
		level = 5
	}
	return intensityForLevel[level-1]
}
