package scrawl

import (
	"errors"
	"fmt"

	"github.com/scrawlkit/scrawl/texture"
)

// Canvas error kinds. ErrCanvasUnavailable is fatal: the fallback stage is
// skipped and the error surfaces immediately. The rest are recoverable
// through the fallback chain.
var (
	// ErrCanvasUnavailable signals the runtime could not provide a drawing
	// surface at all (zero or absurd dimensions, allocation failure).
	ErrCanvasUnavailable = errors.New("scrawl: canvas unavailable")

	// ErrMemoryLimit signals a canvas would exceed the memory budget.
	// Recoverable: the fallback stage retries with reduced dimensions.
	ErrMemoryLimit = errors.New("scrawl: canvas memory limit exceeded")

	// ErrFontLoadFailed signals the requested face could not be resolved.
	// Recoverable: the fallback stage substitutes the built-in face.
	ErrFontLoadFailed = errors.New("scrawl: font load failed")

	// ErrBlendModeUnsupported signals a blend mode outside the supported
	// set. Recoverable: normal (source-over) is substituted.
	ErrBlendModeUnsupported = errors.New("scrawl: blend mode unsupported")

	// ErrRenderCanceled is surfaced when a progressive render observes
	// cancellation between chunks.
	ErrRenderCanceled = errors.New("scrawl: render canceled")
)

// Export collaborator error kinds. The renderer never returns these; they
// document the boundary for consumers converting canvases to files.
var (
	ErrNoCanvases     = errors.New("scrawl: no canvases to export")
	ErrInvalidCanvas  = errors.New("scrawl: invalid canvas")
	ErrOversizeCanvas = errors.New("scrawl: canvas exceeds export size limit")
	ErrExportMemory   = errors.New("scrawl: export memory limit exceeded")
)

// ErrorKind classifies a render failure for user-facing messaging.
type ErrorKind string

const (
	KindTemplate  ErrorKind = "template"
	KindMemory    ErrorKind = "memory"
	KindFont      ErrorKind = "font"
	KindBlendMode ErrorKind = "blend-mode"
	KindCanvas    ErrorKind = "canvas"
	KindCanceled  ErrorKind = "canceled"
	KindUnknown   ErrorKind = "unknown"
)

// RenderError is the single aggregated error surfaced when both the
// primary and fallback stages fail (or a fatal error skips the fallback).
// The original cause chain is preserved for logs via Unwrap.
type RenderError struct {
	Stage string // "validate", "primary", "fallback"
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("scrawl: render failed at %s stage: %v", e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Kind classifies the failure. Callers derive friendly messages from the
// kind; the technical cause chain stays available for logging.
func (e *RenderError) Kind() ErrorKind {
	switch {
	case errors.Is(e.Err, ErrRenderCanceled):
		return KindCanceled
	case errors.Is(e.Err, ErrMemoryLimit):
		return KindMemory
	case errors.Is(e.Err, ErrFontLoadFailed):
		return KindFont
	case errors.Is(e.Err, ErrBlendModeUnsupported):
		return KindBlendMode
	case errors.Is(e.Err, ErrCanvasUnavailable):
		return KindCanvas
	case errors.Is(e.Err, texture.ErrTemplateNotFound),
		errors.Is(e.Err, texture.ErrUnsupportedFormat),
		errors.Is(e.Err, texture.ErrLoadFailed):
		return KindTemplate
	default:
		return KindUnknown
	}
}

// ConfigError reports a RenderingConfig validation failure. Validation
// runs before any resource acquisition, so a ConfigError guarantees no
// canvas or texture was touched.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("scrawl: invalid config: %s %s", e.Field, e.Reason)
}
