package texture

import (
	"image"
	"image/color"
)

// Emergency texture tuning. The dot grid is faint on purpose: it reads as
// paper grain without competing with text.
const (
	emergencyDotSpacing = 24
	emergencyDotAlpha   = 28
)

// emergencyBackground is a warm off-white close to typical paper scans.
var emergencyBackground = color.NRGBA{R: 0xFA, G: 0xF7, B: 0xF0, A: 0xFF}

// Emergency procedurally generates a paper texture: a plain background
// with a faint dot grid. It needs no assets and cannot fail, so the
// fallback render stage substitutes it when texture loading is exhausted.
func Emergency(width, height int) *PaperTexture {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, emergencyBackground)
		}
	}

	dot := emergencyBackground
	dot.R -= emergencyDotAlpha
	dot.G -= emergencyDotAlpha
	dot.B -= emergencyDotAlpha
	for y := emergencyDotSpacing / 2; y < height; y += emergencyDotSpacing {
		for x := emergencyDotSpacing / 2; x < width; x += emergencyDotSpacing {
			img.SetNRGBA(x, y, dot)
		}
	}

	return &PaperTexture{Base: img, Loaded: true}
}
