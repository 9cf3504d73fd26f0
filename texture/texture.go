// Package texture loads, caches, and procedurally generates the paper
// backgrounds the renderer composites text onto.
package texture

import "image"

// Template describes a paper texture asset. Templates come from an
// external provider; the renderer only needs the id for cache keys and
// the filename for loading.
type Template struct {
	ID       string
	Name     string
	Filename string

	// LinesFilename optionally names a ruled-lines overlay image. The
	// overlay is composited over the base at its natural size; a template
	// without one renders plain paper.
	LinesFilename string

	Type string
}

// PaperTexture is a decoded paper background. The base image is required;
// a ruled-lines overlay is optional and composited independently.
//
// A PaperTexture is owned by whichever cache entry holds it and is shared
// read-only across concurrent renders referencing the same template.
type PaperTexture struct {
	Base   image.Image
	Lines  image.Image
	Loaded bool
}

// MemoryBytes estimates the decoded size as width*height*4 per image.
func (t *PaperTexture) MemoryBytes() int64 {
	var total int64
	if t.Base != nil {
		b := t.Base.Bounds()
		total += int64(b.Dx()) * int64(b.Dy()) * 4
	}
	if t.Lines != nil {
		b := t.Lines.Bounds()
		total += int64(b.Dx()) * int64(b.Dy()) * 4
	}
	return total
}
