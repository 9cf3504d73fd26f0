package scrawl

import (
	"log/slog"

	"github.com/scrawlkit/scrawl/texture"
)

// RendererOption configures a CanvasRenderer.
type RendererOption func(*CanvasRenderer)

// WithTextureManager wires the paper texture manager.
func WithTextureManager(m *texture.Manager) RendererOption {
	return func(r *CanvasRenderer) {
		if m != nil {
			r.textures = m
		}
	}
}

// WithFaceProvider wires font resolution, typically a *font.Registry.
func WithFaceProvider(p FaceProvider) RendererOption {
	return func(r *CanvasRenderer) {
		if p != nil {
			r.faces = p
		}
	}
}

// WithCanvasPool replaces the default canvas pool.
func WithCanvasPool(p *CanvasPool) RendererOption {
	return func(r *CanvasRenderer) {
		if p != nil {
			r.pool = p
		}
	}
}

// WithQualityManager replaces the default device-detected quality
// manager.
func WithQualityManager(q *QualityManager) RendererOption {
	return func(r *CanvasRenderer) {
		if q != nil {
			r.quality = q
		}
	}
}

// WithInkSystem replaces the default ink profiles.
func WithInkSystem(s *InkRenderingSystem) RendererOption {
	return func(r *CanvasRenderer) {
		if s != nil {
			r.inks = s
		}
	}
}

// WithScheduler sets the progressive-render scheduler.
func WithScheduler(s Scheduler) RendererOption {
	return func(r *CanvasRenderer) {
		if s != nil {
			r.scheduler = s
		}
	}
}

// WithChunkSize sets how many glyphs are painted between yields.
func WithChunkSize(n int) RendererOption {
	return func(r *CanvasRenderer) {
		if n > 0 {
			r.chunkSize = n
		}
	}
}

// WithRendererLogger sets the renderer's logger, overriding the
// package-level default.
func WithRendererLogger(log *slog.Logger) RendererOption {
	return func(r *CanvasRenderer) {
		if log != nil {
			r.log = log
		}
	}
}
