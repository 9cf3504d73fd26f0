// Package font loads TrueType/OpenType fonts and rasterizes glyph masks
// for the handwriting renderer.
//
// A Source is parsed once from font data and shared; Face binds a Source
// to a size and caches rasterized glyph masks. Parsing and coverage use
// go-text/typesetting; rasterization uses golang.org/x/image/font.
//
// FallbackFace returns a built-in bitmap face that needs no font data.
// The renderer's fallback stage substitutes it when the requested family
// cannot be resolved.
package font
