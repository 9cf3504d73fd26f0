package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scrawl.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Render.Width != 800 || cfg.Render.DistortionLevel != 3 {
		t.Errorf("defaults = %+v", cfg.Render)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("missing explicit config file did not error")
	}
}

func TestLoadConfigParsesTOML(t *testing.T) {
	path := writeConfig(t, `
[render]
width = 1024
height = 768
font_family = "Caveat"
ink_color = "#a61b1b"

[paper]
base_url = "https://cdn.example.com/papers"

[[paper.templates]]
id = "classic"
name = "Classic lined"
filename = "classic.png"
lines_filename = "classic-lines.png"

[[fonts.files]]
family = "Caveat"
path = "fonts/caveat.ttf"
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Render.Width != 1024 || cfg.Render.FontFamily != "Caveat" {
		t.Errorf("render section = %+v", cfg.Render)
	}
	if cfg.Paper.BaseURL != "https://cdn.example.com/papers" {
		t.Errorf("base URL = %q", cfg.Paper.BaseURL)
	}
	if len(cfg.Paper.Templates) != 1 || cfg.Paper.Templates[0].ID != "classic" {
		t.Errorf("templates = %+v", cfg.Paper.Templates)
	}
	if cfg.Paper.Templates[0].LinesFilename != "classic-lines.png" {
		t.Errorf("lines filename = %q", cfg.Paper.Templates[0].LinesFilename)
	}
	if len(cfg.Fonts.Files) != 1 || cfg.Fonts.Files[0].Family != "Caveat" {
		t.Errorf("fonts = %+v", cfg.Fonts.Files)
	}

	// Font size falls back to the built-in default when the file omits it.
	if cfg.Render.FontSize != 28 {
		t.Errorf("font size = %v, want default 28", cfg.Render.FontSize)
	}
}

func TestConfigTemplateLookup(t *testing.T) {
	cfg := defaultConfig()
	cfg.Paper.Templates = []PaperTemplate{{ID: "classic", Filename: "classic.png"}}

	if tpl := cfg.template("classic"); tpl.Filename != "classic.png" {
		t.Errorf("lookup = %+v", tpl)
	}
	// Unknown IDs pass through as direct filenames.
	if tpl := cfg.template("https://example.com/x.png"); tpl.Filename != "https://example.com/x.png" {
		t.Errorf("passthrough = %+v", tpl)
	}
}

func TestResolveTemplate(t *testing.T) {
	cfg := defaultConfig()
	if tpl := resolveTemplate(cfg, ""); tpl.ID != "" {
		t.Errorf("no templates configured: resolved %+v, want zero template", tpl)
	}

	cfg.Paper.Templates = []PaperTemplate{
		{ID: "classic", Filename: "classic.png", LinesFilename: "classic-lines.png"},
		{ID: "grid", Filename: "grid.png"},
	}
	if tpl := resolveTemplate(cfg, ""); tpl.ID != "classic" || tpl.LinesFilename != "classic-lines.png" {
		t.Errorf("default = %+v, want first configured template", tpl)
	}
	if tpl := resolveTemplate(cfg, "grid"); tpl.ID != "grid" {
		t.Errorf("flag lookup = %+v, want grid", tpl)
	}
}

func TestBuildRenderingConfigPrecedence(t *testing.T) {
	cfg := defaultConfig()
	cfg.Render.Width = 500
	cfg.Render.InkColor = "#000000"

	opts := &renderOpts{width: 1000, boldness: -1, jitter: 1.5}
	rc := buildRenderingConfig(cfg, "hi", opts)
	if rc.CanvasWidth != 1000 {
		t.Errorf("flag width %d did not override config", rc.CanvasWidth)
	}
	if rc.CanvasHeight != 600 {
		t.Errorf("unset height = %d, want config default 600", rc.CanvasHeight)
	}
	if rc.BaseInkColor != "#000000" {
		t.Errorf("ink = %q, want config value", rc.BaseInkColor)
	}
	if rc.InkBoldness != cfg.Render.Boldness {
		t.Errorf("boldness = %v, want config default", rc.InkBoldness)
	}

	opts.boldness = 0.9
	if rc := buildRenderingConfig(cfg, "hi", opts); rc.InkBoldness != 0.9 {
		t.Errorf("flag boldness not applied: %v", rc.InkBoldness)
	}
}
