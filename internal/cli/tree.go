package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	tapio "github.com/matzehuels/tapestry/pkg/io"
	"github.com/matzehuels/tapestry/pkg/pipeline"
	"github.com/matzehuels/tapestry/pkg/render/nodelink"
)

type treeOpts struct {
	output   string
	seed     float64
	dot      bool
	detailed bool
}

func (c *CLI) treeCommand() *cobra.Command {
	opts := treeOpts{seed: 0.5}

	cmd := &cobra.Command{
		Use:   "tree <params-file>",
		Short: "Render how the surface is subdivided as a Graphviz tree",
		Long: `Tree renders the subdivision of a piece as a node-link diagram. For
hierarchical grids every split is shown; uniform grids show one root with
a child per cell. Leaves are filled with the cell's primary color.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			params, engine, err := c.loadParams(args[0])
			if err != nil {
				return err
			}
			plan, err := engine.Plan(params.Raw(), opts.seed, pipeline.DefaultWidth, pipeline.DefaultHeight)
			if err != nil {
				return err
			}

			dot := nodelink.ToDOT(plan, nodelink.Options{Detailed: opts.detailed})
			if opts.dot && opts.output == "" {
				_, err := fmt.Fprint(c.out, dot)
				return err
			}

			data := []byte(dot)
			if !opts.dot {
				if data, err = nodelink.RenderSVG(ctx, dot); err != nil {
					return err
				}
			}

			path := opts.output
			if path == "" {
				path = outputPath(basePath("", args[0]), pipeline.FormatSVG, 0)
			}
			if err := tapio.ExportFile(path, data); err != nil {
				return err
			}
			printSuccess("Rendered subdivision tree (%s)", gridLabel(plan))
			printFile(path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default <input>_tree.svg)")
	cmd.Flags().Float64Var(&opts.seed, "seed", opts.seed, "generator seed in [0, 1)")
	cmd.Flags().BoolVar(&opts.dot, "dot", false, "emit Graphviz DOT instead of SVG")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label nodes with rectangles and depth")

	return cmd
}
