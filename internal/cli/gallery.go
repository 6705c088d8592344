package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tapestry/pkg/art"
	"github.com/matzehuels/tapestry/pkg/gallery"
	tapio "github.com/matzehuels/tapestry/pkg/io"
	"github.com/matzehuels/tapestry/pkg/pipeline"
)

// galleryCommand creates the gallery command group.
func (c *CLI) galleryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "gallery",
		Aliases: []string{"g"},
		Short:   "Keep designs as pieces with a fixed seed",
		Long: `A piece is a titled design stored with the seed it was first rendered
with, so it always renders the same way. Pieces live in the configured
gallery backend (a local directory by default, or MongoDB).`,
	}

	cmd.AddCommand(c.galleryAddCommand())
	cmd.AddCommand(c.galleryListCommand())
	cmd.AddCommand(c.galleryShowCommand())
	cmd.AddCommand(c.galleryRenderCommand())
	cmd.AddCommand(c.galleryRemoveCommand())

	return cmd
}

// withStore opens the configured store for the duration of fn.
func (c *CLI) withStore(ctx context.Context, fn func(gallery.Store) error) error {
	store, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func (c *CLI) galleryAddCommand() *cobra.Command {
	var (
		owner string
		seed  float64
	)

	cmd := &cobra.Command{
		Use:   "add <design-file>",
		Short: "Add a design (title, description, params) as a new piece",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			d, err := gallery.DecodeDesign(f, tapio.FormatFromPath(args[0]))
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("owner") {
				owner = c.Config.Gallery.Owner
			}
			var source gallery.SeedSource
			if cmd.Flags().Changed("seed") {
				source = func() float64 { return seed }
			}
			p, err := gallery.NewPiece(d, owner, source)
			if err != nil {
				return err
			}

			return c.withStore(cmd.Context(), func(s gallery.Store) error {
				if err := s.Put(cmd.Context(), p); err != nil {
					return err
				}
				printSuccess("Added %s", StyleHighlight.Render(p.Title))
				printKeyValue("id", p.ID)
				printKeyValue("seed", formatSeed(p.Seed))
				printNextStep("Render it", "tapestry gallery render "+p.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "owner recorded on the piece (default from config)")
	cmd.Flags().Float64Var(&seed, "seed", 0, "fix the seed instead of drawing one")

	return cmd
}

func (c *CLI) galleryListCommand() *cobra.Command {
	var opts gallery.ListOptions

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List pieces, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(s gallery.Store) error {
				pieces, err := s.List(cmd.Context(), opts)
				if err != nil {
					return err
				}
				if len(pieces) == 0 {
					printInfo("Gallery is empty")
					return nil
				}
				fmt.Fprintln(c.out, piecesTable(pieces))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.Owner, "owner", "", "only pieces by this owner")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 50, "maximum pieces to list (0 for all)")

	return cmd
}

func piecesTable(pieces []*gallery.Piece) string {
	rows := make([][]string, len(pieces))
	for i, p := range pieces {
		owner := p.Owner
		if owner == "" {
			owner = "—"
		}
		rows[i] = []string{p.ID[:8], p.Title, owner, formatSeed(p.Seed), formatAge(p.CreatedAt)}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Title", "Owner", "Seed", "Created").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 1:
				return lipgloss.NewStyle().Foreground(colorCyan)
			case col == 0 || col == 4:
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// formatAge renders how long ago t was, at a coarse resolution.
func formatAge(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
	return t.Format("2006-01-02")
}

func (c *CLI) galleryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a piece and its normalized parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(s gallery.Store) error {
				p, err := s.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				params := art.New(art.WithPolicy(c.Config.Policy)).Normalize(p.Params)

				emit(StyleTitle.Render(p.Title))
				if p.Description != "" {
					printDetail("%s", p.Description)
				}
				printNewline()
				printKeyValue("id", p.ID)
				if p.Owner != "" {
					printKeyValue("owner", p.Owner)
				}
				printKeyValue("seed", strconv.FormatFloat(p.Seed, 'g', -1, 64))
				printKeyValue("created", p.CreatedAt.Local().Format(time.DateTime))
				printKeyValue("grid", string(params.Grid))
				printKeyValue("pattern", fmt.Sprintf("%s / %s", params.Pattern, params.Variation))
				printKeyValue("colors", string(params.ColorMode))
				printKeyValue("palette", palette(params.Palette))
				printKeyValue("export", p.ExportFilename())
				return nil
			})
		},
	}
}

func (c *CLI) galleryRenderCommand() *cobra.Command {
	var (
		output  string
		scale   float64
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "render <id>",
		Short: "Render a piece's export image with its stored seed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withStore(ctx, func(s gallery.Store) error {
				p, err := s.Get(ctx, args[0])
				if err != nil {
					return err
				}
				if !cmd.Flags().Changed("scale") {
					scale = c.Config.Render.Scale
				}

				runner, err := c.newRunner(ctx, noCache)
				if err != nil {
					return err
				}
				defer runner.Close()

				result, err := runner.Execute(ctx, pipeline.Options{
					Params:  p.Params,
					Seed:    p.Seed,
					Width:   c.Config.Render.Width,
					Height:  c.Config.Render.Height,
					Scale:   scale,
					Formats: []string{pipeline.FormatExport},
					Policy:  c.policy(),
					Logger:  loggerFromContext(ctx),
				})
				if err != nil {
					return err
				}

				path := output
				if path == "" {
					path = p.ExportFilename()
				} else if info, err := os.Stat(path); err == nil && info.IsDir() {
					path = filepath.Join(path, p.ExportFilename())
				}
				if err := tapio.ExportFile(path, result.Artifacts[pipeline.FormatExport]); err != nil {
					return err
				}
				printSuccess("Rendered %s", StyleHighlight.Render(p.Title))
				printStats(result.Stats.CellCount, result.Stats.Draws, result.CacheInfo.RenderHit)
				printFile(path)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file or directory (default <title>_by_<owner>.png)")
	cmd.Flags().Float64Var(&scale, "scale", pipeline.DefaultScale, "export size relative to the preview")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) galleryRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove a piece",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(s gallery.Store) error {
				if err := s.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				printSuccess("Removed %s", args[0])
				return nil
			})
		},
	}
}
