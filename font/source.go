package font

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	tsfont "github.com/go-text/typesetting/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// Source represents a loaded font file. One Source can create multiple
// Face instances at different sizes. Source is heavyweight and should be
// shared across the application.
//
// Source is safe for concurrent use after creation.
// Source must not be copied after creation (enforced by copyCheck).
type Source struct {
	// addr points to the Source itself; used for copy protection.
	addr *Source

	data   []byte
	sfnt   *sfnt.Font
	parsed *tsfont.Font
	name   string
}

// NewSource creates a Source from TTF or OTF font data.
// The data slice is copied internally and can be reused after this call.
func NewSource(data []byte) (*Source, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}

	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	sf, err := sfnt.Parse(dataCopy)
	if err != nil {
		return nil, fmt.Errorf("font: parse: %w", err)
	}

	// Parse again with go-text for glyph coverage queries. Both parsers
	// reading the same bytes keeps rasterization and coverage in sync.
	tsFace, err := tsfont.ParseTTF(bytes.NewReader(dataCopy))
	if err != nil {
		return nil, fmt.Errorf("font: parse: %w", err)
	}

	s := &Source{
		data:   dataCopy,
		sfnt:   sf,
		parsed: tsFace.Font,
	}
	s.addr = s
	s.name = extractName(sf)
	return s, nil
}

// NewSourceFromFile loads a Source from a font file path.
func NewSourceFromFile(path string) (*Source, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("font: read font file: %w", err)
	}
	return NewSource(data)
}

// Face creates a Face at the specified pixel size.
func (s *Source) Face(size float64) (Face, error) {
	s.copyCheck()

	ot, err := opentype.NewFace(s.sfnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: xfontHinting,
	})
	if err != nil {
		return nil, fmt.Errorf("font: create face: %w", err)
	}

	return newXFace(ot, size, func(r rune) bool {
		_, ok := s.parsed.NominalGlyph(r)
		return ok
	}), nil
}

// Name returns the font family name.
func (s *Source) Name() string {
	s.copyCheck()
	return s.name
}

// copyCheck panics if Source was copied by value.
func (s *Source) copyCheck() {
	if s.addr != s {
		panic("font: Source must not be copied by value")
	}
}

// extractName reads the family name table entry, falling back to the full
// name.
func extractName(f *sfnt.Font) string {
	if name, err := f.Name(nil, sfnt.NameIDFamily); err == nil && name != "" {
		return name
	}
	if name, err := f.Name(nil, sfnt.NameIDFull); err == nil && name != "" {
		return name
	}
	return "Unknown Font"
}
