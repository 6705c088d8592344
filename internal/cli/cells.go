package cli

import (
	"fmt"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tapestry/pkg/art"
	"github.com/matzehuels/tapestry/pkg/pipeline"
)

type cellsOpts struct {
	seed   float64
	width  int
	height int
	limit  int
}

func (c *CLI) cellsCommand() *cobra.Command {
	opts := cellsOpts{seed: 0.5, width: pipeline.DefaultWidth, height: pipeline.DefaultHeight, limit: 40}

	cmd := &cobra.Command{
		Use:   "cells <params-file>",
		Short: "List planned cells with their colors and variation draws",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, engine, err := c.loadParams(args[0])
			if err != nil {
				return err
			}
			plan, err := engine.Plan(params.Raw(), opts.seed, opts.width, opts.height)
			if err != nil {
				return err
			}

			printKeyValue("grid", gridLabel(plan))
			printKeyValue("pattern", fmt.Sprintf("%s / %s", plan.Params.Pattern, plan.Params.Variation))
			printKeyValue("colors", string(plan.Params.ColorMode))
			printKeyValue("palette", palette(plan.Params.Palette))
			printNewline()
			fmt.Fprintln(c.out, cellsTable(plan, opts.limit))
			printStats(len(plan.Cells), plan.Draws, false)
			return nil
		},
	}

	cmd.Flags().Float64Var(&opts.seed, "seed", opts.seed, "generator seed in [0, 1)")
	cmd.Flags().IntVar(&opts.width, "width", opts.width, "surface width in pixels")
	cmd.Flags().IntVar(&opts.height, "height", opts.height, "surface height in pixels")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", opts.limit, "maximum rows to show (0 for all)")

	return cmd
}

func gridLabel(plan *art.Plan) string {
	if plan.Grid.Kind == art.GridUniform {
		return fmt.Sprintf("uniform %dx%d", plan.Grid.Cols, plan.Grid.Rows)
	}
	return fmt.Sprintf("hierarchical, %d nodes", len(plan.Grid.Nodes))
}

// cellsTable renders up to limit cells of plan as a table.
func cellsTable(plan *art.Plan, limit int) string {
	cells := plan.Cells
	if limit > 0 && len(cells) > limit {
		cells = cells[:limit]
	}

	rows := make([][]string, 0, len(cells))
	for _, cp := range cells {
		px := cp.Pixels
		rows = append(rows, []string{
			strconv.Itoa(cp.Index),
			strconv.Itoa(cp.Depth),
			fmt.Sprintf("%d,%d %dx%d", px.Min.X, px.Min.Y, px.Dx(), px.Dy()),
			swatch(cp.Colors.Primary),
			swatch(cp.Colors.Secondary),
			variantLabel(cp.Variant),
			strconv.Itoa(len(cp.Shapes)),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Depth", "Pixels", "Primary", "Secondary", "Variant", "Shapes").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 || col == 1 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		})

	out := t.Render()
	if hidden := len(plan.Cells) - len(cells); hidden > 0 {
		out += "\n" + StyleDim.Render(fmt.Sprintf("  … %d more cells", hidden))
	}
	return out
}

func variantLabel(v art.Variant) string {
	switch {
	case v.Angle != 0:
		return fmt.Sprintf("rot %.0f°", v.Angle*180/math.Pi)
	case v.Scale != 1:
		return fmt.Sprintf("×%.2f", v.Scale)
	case v.Arrangement != 0:
		return fmt.Sprintf("arr %d", v.Arrangement)
	}
	return "·"
}
