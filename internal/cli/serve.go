package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/tapestry/internal/server"
	"github.com/matzehuels/tapestry/pkg/gallery"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noGallery bool
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve exposes normalization and rendering over HTTP, plus the piece
gallery under /v1/pieces. The cache and gallery backends come from the
config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			var store gallery.Store
			if !noGallery {
				if store, err = c.newStore(ctx); err != nil {
					return err
				}
				defer store.Close()
			}

			srv := server.New(server.Config{
				Addr:   addr,
				Runner: runner,
				Logger: c.Logger,
				Store:  store,
				Policy: c.policy(),
			})
			printInfo("Serving on %s", StyleHighlight.Render("http://"+addr))
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().BoolVar(&noGallery, "no-gallery", false, "disable the /v1/pieces routes")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
