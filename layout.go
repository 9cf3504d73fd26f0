package scrawl

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/scrawlkit/scrawl/font"
)

// lineSpacingFactor loosens the face's nominal line height; handwriting
// breathes more than typeset text.
const lineSpacingFactor = 1.35

// Line is one laid-out line of text with its measured width.
type Line struct {
	Text  string
	Width float64
}

// PageLayout positions text on a canvas. Margins scale with font size
// and shrink slightly at higher distortion levels, where the effect
// stack eats into usable area less.
type PageLayout struct {
	MarginX      float64
	MarginY      float64
	LineHeight   float64
	LinesPerPage int
}

// NewPageLayout derives page geometry from the canvas size, face
// metrics, font size and distortion level.
func NewPageLayout(width, height int, face font.Face, fontSize float64, distortionLevel int) PageLayout {
	m := face.Metrics()
	lineHeight := m.Height * lineSpacingFactor
	if lineHeight <= 0 {
		lineHeight = fontSize * 1.5
	}

	marginX := fontSize * (1.0 - 0.06*float64(distortionLevel-1))
	if marginX < fontSize*0.5 {
		marginX = fontSize * 0.5
	}
	marginY := marginX

	lines := int((float64(height) - 2*marginY) / lineHeight)
	if lines < 1 {
		lines = 1
	}
	return PageLayout{
		MarginX:      marginX,
		MarginY:      marginY,
		LineHeight:   lineHeight,
		LinesPerPage: lines,
	}
}

// Available returns the usable line width for a canvas of the given
// pixel width.
func (p PageLayout) Available(width int) float64 {
	avail := float64(width) - 2*p.MarginX
	if avail < 1 {
		avail = 1
	}
	return avail
}

// Baseline returns the y coordinate of the nth line's baseline.
func (p PageLayout) Baseline(face font.Face, n int) float64 {
	return p.MarginY + face.Metrics().Ascent + float64(n)*p.LineHeight
}

// LayoutText normalizes and word-wraps text to the available width
// using greedy fitting against the face's measured advances. Explicit
// newlines are preserved; an empty paragraph yields an empty line.
// Words wider than a full line are split at the overflowing rune.
func LayoutText(text string, face font.Face, avail float64) []Line {
	text = norm.NFC.String(text)

	var lines []Line
	for _, para := range strings.Split(text, "\n") {
		lines = append(lines, wrapParagraph(para, face, avail)...)
	}
	if lines == nil {
		lines = []Line{{}}
	}
	return lines
}

func wrapParagraph(para string, face font.Face, avail float64) []Line {
	words := strings.Fields(para)
	if len(words) == 0 {
		return []Line{{}}
	}

	var lines []Line
	var cur strings.Builder
	curWidth := 0.0
	spaceWidth := face.Advance(" ")

	flush := func() {
		if cur.Len() > 0 {
			lines = append(lines, Line{Text: cur.String(), Width: curWidth})
			cur.Reset()
			curWidth = 0
		}
	}

	for _, word := range words {
		w := face.Advance(word)
		if w > avail {
			flush()
			lines = append(lines, splitWord(word, face, avail)...)
			continue
		}

		needed := w
		if cur.Len() > 0 {
			needed += spaceWidth
		}
		if curWidth+needed > avail {
			flush()
			needed = w
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(word)
		curWidth += needed
	}
	flush()
	return lines
}

// splitWord breaks a word wider than a line at rune boundaries.
func splitWord(word string, face font.Face, avail float64) []Line {
	var lines []Line
	var cur strings.Builder
	curWidth := 0.0

	for _, r := range word {
		w := face.Advance(string(r))
		if curWidth+w > avail && cur.Len() > 0 {
			lines = append(lines, Line{Text: cur.String(), Width: curWidth})
			cur.Reset()
			curWidth = 0
		}
		cur.WriteRune(r)
		curWidth += w
	}
	if cur.Len() > 0 {
		lines = append(lines, Line{Text: cur.String(), Width: curWidth})
	}
	return lines
}
