package font

import (
	"image"
	"sync"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/scrawlkit/scrawl/internal/cache"
)

const xfontHinting = xfont.HintingFull

// glyphCacheLimit bounds the number of rasterized masks kept per face.
const glyphCacheLimit = 256

// Metrics describes a face's vertical metrics in pixels.
type Metrics struct {
	// Ascent is the distance from the baseline to the top of a line.
	Ascent float64
	// Descent is the distance from the baseline to the bottom of a line
	// (positive).
	Descent float64
	// Height is the recommended line height.
	Height float64
}

// GlyphMask is a rasterized glyph: an alpha mask plus placement data.
type GlyphMask struct {
	// Mask is the glyph's alpha coverage.
	Mask *image.Alpha
	// Bounds is the mask rectangle relative to the glyph origin on the
	// baseline.
	Bounds image.Rectangle
	// Advance is the horizontal advance in pixels.
	Advance float64
}

// Face is a font bound to a size. Implementations are safe for
// concurrent use.
type Face interface {
	// Metrics returns the face's vertical metrics.
	Metrics() Metrics

	// Advance returns the total advance width of the text in pixels.
	Advance(text string) float64

	// HasGlyph reports whether the face covers the rune.
	HasGlyph(r rune) bool

	// Glyph rasterizes (or returns a cached) alpha mask for the rune.
	// Returns false when the face has no usable glyph.
	Glyph(r rune) (*GlyphMask, bool)

	// Size returns the face size in pixels.
	Size() float64
}

// xFace adapts a golang.org/x/image font.Face. The underlying face is not
// safe for concurrent use, so rasterization happens under a mutex; cached
// masks are served without touching it.
type xFace struct {
	mu    sync.Mutex
	ot    xfont.Face
	size  float64
	has   func(rune) bool
	masks *cache.Cache[rune, *GlyphMask]
}

func newXFace(ot xfont.Face, size float64, has func(rune) bool) *xFace {
	return &xFace{
		ot:    ot,
		size:  size,
		has:   has,
		masks: cache.New[rune, *GlyphMask](glyphCacheLimit),
	}
}

func (f *xFace) Metrics() Metrics {
	f.mu.Lock()
	m := f.ot.Metrics()
	f.mu.Unlock()
	return Metrics{
		Ascent:  fixedToFloat(m.Ascent),
		Descent: fixedToFloat(m.Descent),
		Height:  fixedToFloat(m.Height),
	}
}

func (f *xFace) Advance(text string) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	total := fixed.Int26_6(0)
	for _, r := range text {
		adv, ok := f.ot.GlyphAdvance(r)
		if !ok {
			// Missing glyphs advance by the replacement glyph width.
			adv, _ = f.ot.GlyphAdvance('�')
		}
		total += adv
	}
	return fixedToFloat(total)
}

func (f *xFace) HasGlyph(r rune) bool {
	if f.has != nil {
		return f.has(r)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.ot.GlyphAdvance(r)
	return ok
}

func (f *xFace) Glyph(r rune) (*GlyphMask, bool) {
	if g, ok := f.masks.Get(r); ok {
		return g, g != nil
	}

	g := f.rasterize(r)
	f.masks.Set(r, g)
	return g, g != nil
}

func (f *xFace) Size() float64 { return f.size }

// rasterize draws the rune into a fresh alpha mask through a font.Drawer.
// Returns nil when the face has no usable glyph for r.
func (f *xFace) rasterize(r rune) *GlyphMask {
	f.mu.Lock()
	defer f.mu.Unlock()

	bounds, advance, ok := f.ot.GlyphBounds(r)
	if !ok {
		return nil
	}

	minX := bounds.Min.X.Floor()
	minY := bounds.Min.Y.Floor()
	maxX := bounds.Max.X.Ceil()
	maxY := bounds.Max.Y.Ceil()
	rect := image.Rect(minX, minY, maxX, maxY)
	if rect.Dx() <= 0 || rect.Dy() <= 0 {
		// Whitespace and zero-extent glyphs carry only an advance.
		return &GlyphMask{
			Mask:    image.NewAlpha(image.Rect(0, 0, 0, 0)),
			Bounds:  rect,
			Advance: fixedToFloat(advance),
		}
	}

	mask := image.NewAlpha(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	drawer := &xfont.Drawer{
		Dst:  mask,
		Src:  image.White,
		Face: f.ot,
		Dot:  fixed.Point26_6{X: -bounds.Min.X, Y: -bounds.Min.Y},
	}
	drawer.DrawString(string(r))

	return &GlyphMask{
		Mask:    mask,
		Bounds:  rect,
		Advance: fixedToFloat(advance),
	}
}

// FallbackFace returns the built-in bitmap face (7x13). It needs no font
// data, so it is always available for degraded renders and tests.
func FallbackFace() Face {
	return newXFace(basicfont.Face7x13, 13, func(r rune) bool {
		return r >= 0x20 && r < 0x7F
	})
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
