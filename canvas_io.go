package scrawl

import (
	"fmt"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
)

// EncodePNG encodes the canvas as PNG to the given writer.
func (c *Canvas) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, c.rgba); err != nil {
		return fmt.Errorf("scrawl: encode PNG: %w", err)
	}
	return nil
}

// SavePNG writes the canvas to a PNG file.
func (c *Canvas) SavePNG(path string) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("scrawl: create file: %w", err)
	}
	if err := c.EncodePNG(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// EncodeJPEG encodes the canvas as JPEG with the given quality (1-100).
func (c *Canvas) EncodeJPEG(w io.Writer, quality int) error {
	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}
	if err := jpeg.Encode(w, c.rgba, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("scrawl: encode JPEG: %w", err)
	}
	return nil
}
