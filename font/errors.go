package font

import "errors"

// Sentinel errors for the font package.
var (
	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("font: empty font data")

	// ErrUnknownFamily is returned when a registry lookup fails.
	ErrUnknownFamily = errors.New("font: unknown font family")
)
