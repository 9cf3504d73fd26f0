package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/scrawlkit/scrawl"
	"github.com/scrawlkit/scrawl/font"
	"github.com/scrawlkit/scrawl/texture"
)

const defaultJPEGQuality = 90

// renderOpts holds the render command's flags. Unset flags fall back to
// the config file, then to built-in defaults.
type renderOpts struct {
	configPath string
	output     string
	textFile   string
	width      int
	height     int
	fontFamily string
	fontSize   float64
	ink        string
	blendMode  string
	distortion int
	boldness   float64
	template   string
	jpegQual   int
	jitter     float64
	slant      float64
	tilt       float64
	colorVar   float64
}

func newRenderCmd() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [text...]",
		Short: "Render text as a handwriting-style image",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := renderText(args, opts.textFile)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			return runRender(cmd, cfg, text, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "TOML config file (default scrawl.toml if present)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "scrawl.png", "output image (.png, .jpg)")
	cmd.Flags().StringVar(&opts.textFile, "file", "", "read text from file instead of arguments")
	cmd.Flags().IntVar(&opts.width, "width", 0, "canvas width in pixels")
	cmd.Flags().IntVar(&opts.height, "height", 0, "canvas height in pixels")
	cmd.Flags().StringVar(&opts.fontFamily, "font", "", "font family name")
	cmd.Flags().Float64Var(&opts.fontSize, "size", 0, "font size in pixels")
	cmd.Flags().StringVar(&opts.ink, "ink", "", "ink color as #rrggbb")
	cmd.Flags().StringVar(&opts.blendMode, "blend", "", "blend mode (empty uses the ink profile's mode)")
	cmd.Flags().IntVar(&opts.distortion, "distortion", 0, "distortion level 1 (heaviest) to 5 (cleanest)")
	cmd.Flags().Float64Var(&opts.boldness, "boldness", -1, "ink boldness 0..1 (0.5 neutral)")
	cmd.Flags().StringVar(&opts.template, "paper", "", "paper template id or image URL")
	cmd.Flags().IntVar(&opts.jpegQual, "jpeg-quality", defaultJPEGQuality, "JPEG quality 1-100")
	cmd.Flags().Float64Var(&opts.jitter, "jitter", 1.5, "baseline jitter range in pixels")
	cmd.Flags().Float64Var(&opts.slant, "slant", 0.03, "slant jitter range in radians")
	cmd.Flags().Float64Var(&opts.tilt, "tilt", 0.012, "micro tilt range in radians")
	cmd.Flags().Float64Var(&opts.colorVar, "color-variation", 0.4, "ink color variation intensity")

	return cmd
}

func renderText(args []string, file string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read text file: %w", err)
		}
		return string(data), nil
	}
	if len(args) == 0 {
		return "", fmt.Errorf("no text given: pass arguments or --file")
	}
	return strings.Join(args, " "), nil
}

func runRender(cmd *cobra.Command, cfg Config, text string, opts *renderOpts) error {
	log := loggerFromContext(cmd.Context())
	start := time.Now()

	renderer, err := buildRenderer(cfg)
	if err != nil {
		return err
	}

	rc := buildRenderingConfig(cfg, text, opts)
	log.Debug("render config resolved",
		"width", rc.CanvasWidth, "height", rc.CanvasHeight,
		"font", rc.FontFamily, "paper", rc.PaperTemplate.ID)

	canvas, err := renderer.Render(cmd.Context(), rc)
	if err != nil {
		printError("render failed: %v", err)
		return err
	}
	defer renderer.ReleaseCanvas(canvas)

	if err := writeImage(canvas, opts.output, opts.jpegQual); err != nil {
		return err
	}

	printSuccess("rendered %d characters in %s", len([]rune(text)), time.Since(start).Round(time.Millisecond))
	printFile(opts.output)
	return nil
}

// buildRenderer wires the library from the config file: registered
// fonts, the texture host, and the shared logger.
func buildRenderer(cfg Config) (*scrawl.CanvasRenderer, error) {
	manager := texture.NewManager(
		texture.WithBaseURL(cfg.Paper.BaseURL),
		texture.WithManagerLogger(scrawl.Logger()),
	)

	rendererOpts := []scrawl.RendererOption{
		scrawl.WithTextureManager(manager),
	}

	if len(cfg.Fonts.Files) > 0 {
		registry := font.NewRegistry()
		for _, f := range cfg.Fonts.Files {
			src, err := font.NewSourceFromFile(f.Path)
			if err != nil {
				return nil, fmt.Errorf("load font %s: %w", f.Path, err)
			}
			family := f.Family
			if family == "" {
				family = src.Name()
			}
			registry.Register(family, src)
		}
		rendererOpts = append(rendererOpts, scrawl.WithFaceProvider(registry))
	}

	return scrawl.NewCanvasRenderer(rendererOpts...), nil
}

func buildRenderingConfig(cfg Config, text string, opts *renderOpts) scrawl.RenderingConfig {
	d := cfg.Render
	pick := func(flag, fallback int) int {
		if flag > 0 {
			return flag
		}
		return fallback
	}
	pickF := func(flag, fallback float64) float64 {
		if flag > 0 {
			return flag
		}
		return fallback
	}
	pickS := func(flag, fallback string) string {
		if flag != "" {
			return flag
		}
		return fallback
	}

	boldness := d.Boldness
	if opts.boldness >= 0 {
		boldness = opts.boldness
	}

	return scrawl.RenderingConfig{
		Text:                    text,
		CanvasWidth:             pick(opts.width, d.Width),
		CanvasHeight:            pick(opts.height, d.Height),
		FontFamily:              pickS(opts.fontFamily, d.FontFamily),
		FontSize:                pickF(opts.fontSize, d.FontSize),
		BaseInkColor:            pickS(opts.ink, d.InkColor),
		BlendMode:               pickS(opts.blendMode, d.BlendMode),
		DistortionLevel:         pick(opts.distortion, d.DistortionLevel),
		BaselineJitterRange:     opts.jitter,
		SlantJitterRange:        opts.slant,
		MicroTiltRange:          opts.tilt,
		ColorVariationIntensity: opts.colorVar,
		InkBoldness:             boldness,
		PaperTemplate:           resolveTemplate(cfg, opts.template),
	}
}

// resolveTemplate picks the paper template: the --paper flag wins, then
// the first configured template. With neither, the zero template renders
// on procedurally generated paper.
func resolveTemplate(cfg Config, flag string) texture.Template {
	if flag != "" {
		return cfg.template(flag)
	}
	if len(cfg.Paper.Templates) > 0 {
		return cfg.template(cfg.Paper.Templates[0].ID)
	}
	return texture.Template{}
}

func writeImage(canvas *scrawl.Canvas, path string, jpegQuality int) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", "":
		return canvas.SavePNG(path)
	case ".jpg", ".jpeg":
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		if err := canvas.EncodeJPEG(f, jpegQuality); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	default:
		return fmt.Errorf("unsupported output extension %q (use .png or .jpg)", filepath.Ext(path))
	}
}
