package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/scrawlkit/scrawl/texture"
)

// Config is the optional TOML configuration file. Flags override
// anything set here.
type Config struct {
	Render RenderDefaults `toml:"render"`
	Paper  PaperConfig    `toml:"paper"`
	Fonts  FontsConfig    `toml:"fonts"`
}

// RenderDefaults seeds the render command's flag defaults.
type RenderDefaults struct {
	Width           int     `toml:"width"`
	Height          int     `toml:"height"`
	FontFamily      string  `toml:"font_family"`
	FontSize        float64 `toml:"font_size"`
	InkColor        string  `toml:"ink_color"`
	BlendMode       string  `toml:"blend_mode"`
	DistortionLevel int     `toml:"distortion_level"`
	Boldness        float64 `toml:"boldness"`
}

// PaperConfig describes where paper textures live.
type PaperConfig struct {
	BaseURL   string          `toml:"base_url"`
	Templates []PaperTemplate `toml:"templates"`
}

// PaperTemplate is one configured background template.
type PaperTemplate struct {
	ID            string `toml:"id"`
	Name          string `toml:"name"`
	Filename      string `toml:"filename"`
	LinesFilename string `toml:"lines_filename"`
}

// FontsConfig lists font files to register.
type FontsConfig struct {
	Files []FontFile `toml:"files"`
}

// FontFile maps a family name to a TTF/OTF path.
type FontFile struct {
	Family string `toml:"family"`
	Path   string `toml:"path"`
}

// defaultConfig is used when no config file exists.
func defaultConfig() Config {
	return Config{
		Render: RenderDefaults{
			Width:           800,
			Height:          600,
			FontSize:        28,
			InkColor:        "#1A3A8F",
			DistortionLevel: 3,
			Boldness:        0.5,
		},
	}
}

// loadConfig reads a TOML config file, falling back to defaults when
// path is empty and no scrawl.toml exists in the working directory.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		path = "scrawl.toml"
	}
	if _, err := os.Stat(path); err != nil {
		if explicit {
			return cfg, fmt.Errorf("config file %s: %w", path, err)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// template resolves a template ID against the config, falling back to a
// direct-filename template so renders work without a config file.
func (c Config) template(id string) texture.Template {
	for _, t := range c.Paper.Templates {
		if t.ID == id {
			return texture.Template{ID: t.ID, Name: t.Name, Filename: t.Filename, LinesFilename: t.LinesFilename}
		}
	}
	return texture.Template{ID: id, Filename: id}
}
