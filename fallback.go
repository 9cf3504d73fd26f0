package scrawl

import (
	"context"
	"errors"
	"unicode"

	"github.com/scrawlkit/scrawl/font"
	"github.com/scrawlkit/scrawl/internal/blend"
	"github.com/scrawlkit/scrawl/recovery"
	"github.com/scrawlkit/scrawl/texture"
)

// Fallback stage bounds.
const (
	fallbackMaxTextLen = 1000
	fallbackMinDim     = 64
)

// reduceConfig degrades a config for the fallback stage: dimensions are
// halved after a memory failure, very long text is truncated, and the
// cleanest distortion level is forced so the cheap single-pass paint
// still looks intentional.
func reduceConfig(cfg RenderingConfig, cause error) RenderingConfig {
	if errors.Is(cause, ErrMemoryLimit) {
		cfg.CanvasWidth = max(cfg.CanvasWidth/2, fallbackMinDim)
		cfg.CanvasHeight = max(cfg.CanvasHeight/2, fallbackMinDim)
	}
	if runes := []rune(cfg.Text); len(runes) > fallbackMaxTextLen {
		cfg.Text = string(runes[:fallbackMaxTextLen])
	}
	cfg.DistortionLevel = 5
	return cfg
}

// renderFallback produces a legible page with every expensive feature
// stripped: no pooling, no per-glyph rotation or stamping, no effect
// stack, and a procedural emergency texture when loading fails. It only
// fails when even a reduced canvas cannot be allocated or the context
// is gone.
func (r *CanvasRenderer) renderFallback(ctx context.Context, cfg RenderingConfig) recovery.Result[*Canvas] {
	face, err := r.faces.Face(cfg.FontFamily, cfg.FontSize)
	if err != nil {
		r.log.Warn("fallback using built-in face", "family", cfg.FontFamily, "err", err)
		face = font.FallbackFace()
	}

	width, height := r.quality.ClampSize(cfg.CanvasWidth, cfg.CanvasHeight)
	canvas, err := NewCanvas(width, height)
	if err != nil {
		return recovery.Fail[*Canvas](err)
	}

	var tex *texture.PaperTexture
	if cfg.PaperTemplate.ID == "" {
		tex = texture.Emergency(width, height)
	} else if tex, err = r.textures.LoadTexture(ctx, cfg.PaperTemplate); err != nil {
		r.log.Warn("fallback using emergency texture", "template", cfg.PaperTemplate.ID, "err", err)
		tex = texture.Emergency(width, height)
	}

	canvas.Clear(paperWhite)
	if tex.Base != nil {
		canvas.DrawImageCover(tex.Base, 1, blend.SourceOver)
	}

	profile := r.inks.ProfileFor(cfg.BaseInkColor)
	layout := NewPageLayout(width, height, face, cfg.FontSize, cfg.DistortionLevel)
	lines := LayoutText(cfg.Text, face, layout.Available(width))
	if len(lines) > layout.LinesPerPage {
		lines = lines[:layout.LinesPerPage]
	}

	canvas.Save()
	canvas.SetBlendMode(blend.SourceOver)
	canvas.SetFillColor(profile.Color)
	spaceAdvance := face.Advance(" ")
	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			canvas.Restore()
			return recovery.Fail[*Canvas](err)
		}
		x := layout.MarginX
		baseline := layout.Baseline(face, i)
		for _, ch := range line.Text {
			if unicode.IsSpace(ch) {
				x += spaceAdvance
				continue
			}
			g, ok := face.Glyph(ch)
			if !ok {
				x += face.Advance(string(ch))
				continue
			}
			if !g.Mask.Bounds().Empty() {
				canvas.DrawMask(g.Mask, int(x)+g.Bounds.Min.X, int(baseline)+g.Bounds.Min.Y, profile.Opacity)
			}
			x += g.Advance
		}
	}
	canvas.Restore()

	r.log.Info("fallback render complete", "width", width, "height", height)
	return recovery.Ok(canvas)
}
