// Package scrawl renders plain text as an image that imitates handwriting.
//
// The pipeline applies deterministic per-glyph jitter (baseline, slant,
// micro-tilt), maps the requested ink color to a named ink profile with
// per-glyph micro-variations, composites the result over a paper texture,
// and layers distortion effects whose strength is controlled by a 1..5
// distortion level (1 = most worn, 5 = cleanest).
//
// The entry point is the Renderer interface:
//
//	r := scrawl.NewCanvasRenderer(
//		scrawl.WithTextureManager(textures),
//		scrawl.WithFaceProvider(faces),
//	)
//	canvas, err := r.Render(ctx, cfg)
//
// Rendering degrades rather than fails: any primary-stage error triggers a
// reduced fallback render (smaller canvas, minimal jitter, procedurally
// generated emergency paper), and only exhaustion of the fallback stage or
// a fatal canvas error surfaces to the caller.
//
// Resource management is explicit: CanvasPool reuses canvases across
// renders, texture.Cache bounds texture memory, and QualityManager adapts
// canvas dimensions and effect quality to device signals and observed
// render times.
package scrawl
