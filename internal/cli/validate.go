package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scrawlkit/scrawl"
	"github.com/scrawlkit/scrawl/texture"
)

// configProvider serves the config file's templates to the texture
// manager's prevalidation.
type configProvider struct {
	templates []PaperTemplate
}

func (p *configProvider) Templates(context.Context) ([]texture.Template, error) {
	out := make([]texture.Template, 0, len(p.templates))
	for _, t := range p.templates {
		out = append(out, texture.Template{ID: t.ID, Name: t.Name, Filename: t.Filename, LinesFilename: t.LinesFilename})
	}
	return out, nil
}

func newValidateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configured paper templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if len(cfg.Paper.Templates) == 0 {
				printWarning("no paper templates configured")
				return nil
			}

			manager := texture.NewManager(
				texture.WithBaseURL(cfg.Paper.BaseURL),
				texture.WithManagerLogger(scrawl.Logger()),
			)
			if err := manager.Prevalidate(cmd.Context(), &configProvider{templates: cfg.Paper.Templates}); err != nil {
				printError("template validation failed: %v", err)
				return err
			}
			printSuccess("%s valid", pluralTemplates(len(cfg.Paper.Templates)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "TOML config file (default scrawl.toml if present)")
	return cmd
}

func pluralTemplates(n int) string {
	if n == 1 {
		return "1 template"
	}
	return fmt.Sprintf("%d templates", n)
}
