package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	tapio "github.com/matzehuels/tapestry/pkg/io"
)

func (c *CLI) normalizeCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "normalize <params-file>",
		Short: "Print the normalized form of a parameter record",
		Long: `Normalize reads a parameter record and prints the record the engine
actually renders: unknown enums replaced by defaults, counts rounded and
clamped, colors parsed and written as hex, sharpness clamped to [0, 1].`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case tapio.FormatJSON, tapio.FormatTOML, tapio.FormatYAML:
			default:
				return fmt.Errorf("invalid output format: %s (must be json, toml or yaml)", format)
			}
			params, _, err := c.loadParams(args[0])
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("normalized", "grid", params.Grid, "pattern", params.Pattern, "colors", len(params.Palette))
			return tapio.WriteParams(params, format, c.out)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", tapio.FormatJSON, "output format: json, toml, yaml")

	return cmd
}
