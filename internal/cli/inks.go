package cli

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/scrawlkit/scrawl"
)

func newInksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inks",
		Short: "List ink profiles and supported blend modes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printTitle("Ink profiles")
			inks := scrawl.NewInkRenderingSystem()
			names := inks.Profiles()
			sort.Strings(names)
			for _, name := range names {
				p := inks.ProfileFor(inkSample(name))
				printKeyValue(name, renderSwatch(p.Color)+"  opacity "+formatPercent(p.Opacity))
			}

			printNewline()
			printTitle("Blend modes")
			for _, mode := range scrawl.SupportedBlendModes() {
				printDetail(mode)
			}
			return nil
		},
	}
}

// inkSample returns a hex color that classifies into the named family.
func inkSample(name string) string {
	switch name {
	case "blue":
		return "#1a3a8f"
	case "red":
		return "#a61b1b"
	case "green":
		return "#1f6b3a"
	}
	return "#000000"
}
