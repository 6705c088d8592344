// Package cli implements the tapestry command-line interface.
//
// This package provides commands for rendering parameter records as
// images, inspecting how a record is normalized and laid out, previewing
// pieces in the terminal, keeping a local gallery of pieces, and serving
// the HTTP API. The CLI is built using cobra and logs with
// charmbracelet/log.
//
// # Commands
//
//   - render: params file to preview PNG, scaled export, plan JSON, split tree
//   - normalize: print the normalized parameter record
//   - cells: table of cells with their colors and variation draws
//   - tree: render the subdivision tree with Graphviz
//   - preview: interactive terminal preview
//   - gallery: add, list, show, render and remove pieces
//   - serve: run the HTTP API
//   - cache, config, completion: housekeeping
//
// # Configuration
//
// Defaults come from $XDG_CONFIG_HOME/tapestry/config.toml (or --config).
// Flags override the file.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tapestry/pkg/art"
	"github.com/matzehuels/tapestry/pkg/buildinfo"
	"github.com/matzehuels/tapestry/pkg/cache"
	"github.com/matzehuels/tapestry/pkg/gallery"
	"github.com/matzehuels/tapestry/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "tapestry"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config

	configPath string
	out        io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: DefaultConfig(),
		out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetOutput redirects command output (not logs).
func (c *CLI) SetOutput(w io.Writer) {
	c.out = w
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Tapestry renders generative art from parameter records",
		Long:         `Tapestry turns a small parameter record (grid, pattern, variation, palette) and a seed into a deterministic piece of abstract art, at any resolution.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/tapestry/config.toml)")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.normalizeCommand())
	root.AddCommand(c.cellsCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.galleryCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return nil // no home dir: defaults only
		}
		path = filepath.Join(dir, "config.toml")
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", path)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if c.Config.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, c.Config.Cache.Prefix)
	}
	return pipeline.NewRunner(cc, keyer, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case backendNone:
		return cache.NewNullCache(), nil
	case backendRedis:
		opts := cache.RedisOptions{Addr: c.Config.Cache.Redis}
		if isURL(c.Config.Cache.Redis) {
			opts = cache.RedisOptions{URL: c.Config.Cache.Redis}
		}
		return cache.NewRedisCache(ctx, opts)
	}
	dir := c.Config.Cache.Dir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			c.Logger.Warn("cache disabled", "error", err)
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

func isURL(s string) bool {
	return len(s) > 8 && (s[:8] == "redis://" || (len(s) > 9 && s[:9] == "rediss://"))
}

// newStore opens the configured piece store.
func (c *CLI) newStore(ctx context.Context) (gallery.Store, error) {
	g := c.Config.Gallery
	if g.Backend == backendMongo {
		return gallery.NewMongoStore(ctx, gallery.MongoOptions{URI: g.MongoURI, Database: g.Database})
	}
	dir := g.Dir
	if dir == "" {
		cfg, err := configDir()
		if err != nil {
			return nil, fmt.Errorf("get config dir: %w", err)
		}
		dir = filepath.Join(cfg, "gallery")
	}
	return gallery.NewFileStore(dir)
}

// policy returns the configured engine constants.
func (c *CLI) policy() *art.Policy {
	p := c.Config.Policy
	return &p
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/tapestry/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configDir returns the config directory using XDG standard (~/.config/tapestry/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
