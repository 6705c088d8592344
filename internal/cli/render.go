package cli

import (
	"context"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tapestry/pkg/art"
	tapio "github.com/matzehuels/tapestry/pkg/io"
	"github.com/matzehuels/tapestry/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string  // output file (single format) or base path
	formats string  // comma-separated formats
	seed    float64 // generator seed in [0, 1)
	width   int     // preview width in pixels
	height  int     // preview height in pixels
	scale   float64 // export size relative to the preview
	noCache bool    // skip the cache entirely
	refresh bool    // ignore cached entries but store fresh ones
}

func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <params-file>",
		Short: "Render a parameter record to images, a plan or a split tree",
		Long: `Render a parameter record (JSON, TOML or YAML) with a seed.

Formats:
  png     preview at --width x --height
  export  the same piece at --scale times the preview size
  json    the render plan (cells, colors, variation draws)
  dot     the subdivision tree as Graphviz source
  svg     the subdivision tree rendered by Graphviz

Without --seed a random seed is used and printed so the piece can be
reproduced.`,
		Example: `  tapestry render examples/orbit.json
  tapestry render orbit.toml --seed 0.42 -f png,export --scale 4
  tapestry render orbit.yaml -f svg -o orbit_tree.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyRenderDefaults(cmd, &opts)
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): png, export, json, dot, svg (comma-separated)")
	cmd.Flags().Float64Var(&opts.seed, "seed", 0, "generator seed in [0, 1) (default random)")
	cmd.Flags().IntVar(&opts.width, "width", pipeline.DefaultWidth, "preview width in pixels")
	cmd.Flags().IntVar(&opts.height, "height", pipeline.DefaultHeight, "preview height in pixels")
	cmd.Flags().Float64Var(&opts.scale, "scale", pipeline.DefaultScale, "export size relative to the preview")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even when cached")

	return cmd
}

// applyRenderDefaults fills flags the user did not set from the config
// file, and picks a random seed when none was given.
func (c *CLI) applyRenderDefaults(cmd *cobra.Command, opts *renderOpts) {
	flags := cmd.Flags()
	rc := c.Config.Render
	if !flags.Changed("width") && rc.Width > 0 {
		opts.width = rc.Width
	}
	if !flags.Changed("height") && rc.Height > 0 {
		opts.height = rc.Height
	}
	if !flags.Changed("scale") && rc.Scale > 0 {
		opts.scale = rc.Scale
	}
	if !flags.Changed("format") {
		opts.formats = strings.Join(rc.Formats, ",")
	}
	if !flags.Changed("seed") {
		opts.seed = rand.Float64()
	}
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	logger := loggerFromContext(ctx)

	params, err := tapio.ImportParams(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := pipeline.Options{
		Params:  params,
		Seed:    opts.seed,
		Width:   opts.width,
		Height:  opts.height,
		Scale:   opts.scale,
		Formats: pipeline.ParseFormats(opts.formats),
		Refresh: opts.refresh,
		Policy:  c.policy(),
		Logger:  logger,
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", filepath.Base(input)))
	spinner.Start()
	prog := newProgress(logger)
	result, err := runner.Execute(ctx, popts)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done("rendered", "formats", len(result.Artifacts))

	base := basePath(opts.output, input)
	single := len(popts.Formats) == 1 && opts.output != "" && filepath.Ext(opts.output) != ""

	printSuccess("Rendered %s", filepath.Base(input))
	printKeyValue("seed", strconv.FormatFloat(opts.seed, 'g', -1, 64))
	printStats(result.Stats.CellCount, result.Stats.Draws, result.CacheInfo.RenderHit)
	for _, format := range popts.Formats {
		path := opts.output
		if !single {
			path = outputPath(base, format, popts.Scale)
		}
		if err := tapio.ExportFile(path, result.Artifacts[format]); err != nil {
			return err
		}
		printFile(path)
	}
	return nil
}

// basePath derives the base output path. Without -o it is the input path
// minus its extension; a known output extension on -o is stripped.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	switch ext {
	case ".png", ".json", ".dot", ".svg":
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath names the file for one format:
//
//	png    base.png
//	export base@2x.png
//	json   base.json
//	dot    base_tree.dot
//	svg    base_tree.svg
func outputPath(base, format string, scale float64) string {
	switch format {
	case pipeline.FormatExport:
		return fmt.Sprintf("%s@%sx.png", base, strconv.FormatFloat(scale, 'g', -1, 64))
	case pipeline.FormatDOT, pipeline.FormatSVG:
		return base + "_tree" + pipeline.Extension(format)
	default:
		return base + pipeline.Extension(format)
	}
}

// loadParams reads a parameter file and returns it normalized under the
// configured policy.
func (c *CLI) loadParams(path string) (art.Params, *art.Engine, error) {
	raw, err := tapio.ImportParams(path)
	if err != nil {
		return art.Params{}, nil, err
	}
	engine := art.New(art.WithPolicy(c.Config.Policy))
	return engine.Normalize(raw), engine, nil
}
