// Package cli implements the scrawl command-line interface.
//
// The CLI renders handwriting-style pages from the command line and
// inspects the renderer's ink and blend capabilities. It is built on
// cobra with charmbracelet/log for verbose output; the same logger is
// bridged into the scrawl library through log/slog.
package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/scrawlkit/scrawl"
)

var (
	version = "dev"
	commit  string
	date    string
)

// SetVersion sets the build metadata shown by --version, injected via
// ldflags.
func SetVersion(v, c, d string) {
	version, commit, date = v, c, d
}

// Execute runs the scrawl CLI.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          "scrawl",
		Short:        "Scrawl renders text as handwriting on paper",
		Long:         "Scrawl renders text into handwriting-style images: per-glyph jitter, ink profiles, paper textures, and distortion effects tuned to look hand-written rather than typeset.",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			logger := newLogger(os.Stderr, level)
			scrawl.SetLogger(slogBridge(logger))
			cmd.SetContext(withLogger(cmd.Context(), logger))
		},
	}

	if commit != "" {
		root.SetVersionTemplate("scrawl " + version + "\ncommit: " + commit + "\nbuilt: " + date + "\n")
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newRenderCmd())
	root.AddCommand(newInksCmd())
	root.AddCommand(newValidateCmd())

	return root.ExecuteContext(ctx)
}

// ctxKey avoids collisions with other packages' context values.
type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *charmlog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

func loggerFromContext(ctx context.Context) *charmlog.Logger {
	if l, ok := ctx.Value(loggerKey).(*charmlog.Logger); ok {
		return l
	}
	return charmlog.Default()
}
