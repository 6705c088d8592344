package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/tapestry/internal/server"
	"github.com/matzehuels/tapestry/pkg/art"
	"github.com/matzehuels/tapestry/pkg/pipeline"
)

// Backend names accepted in the config file.
const (
	backendFile  = "file"
	backendRedis = "redis"
	backendMongo = "mongo"
	backendNone  = "none"
)

// Config is the CLI configuration, read from config.toml.
type Config struct {
	Render  RenderConfig  `toml:"render"`
	Policy  art.Policy    `toml:"policy"`
	Cache   CacheConfig   `toml:"cache"`
	Gallery GalleryConfig `toml:"gallery"`
	Server  ServerConfig  `toml:"server"`
}

// RenderConfig holds render defaults that flags override.
type RenderConfig struct {
	Width   int      `toml:"width"`
	Height  int      `toml:"height"`
	Scale   float64  `toml:"scale"`
	Formats []string `toml:"formats"`
}

// CacheConfig selects the artifact cache.
type CacheConfig struct {
	Backend string `toml:"backend"` // file, redis or none
	Dir     string `toml:"dir"`     // file backend; defaults to the XDG cache dir
	Redis   string `toml:"redis"`   // redis:// URL or host:port
	Prefix  string `toml:"prefix"`  // key prefix for shared backends
}

// GalleryConfig selects the piece store.
type GalleryConfig struct {
	Backend  string `toml:"backend"` // file or mongo
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
	Owner    string `toml:"owner"` // default owner for new pieces
}

// ServerConfig configures `tapestry serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Render: RenderConfig{
			Width:   pipeline.DefaultWidth,
			Height:  pipeline.DefaultHeight,
			Scale:   pipeline.DefaultScale,
			Formats: []string{pipeline.FormatPNG, pipeline.FormatExport},
		},
		Policy:  art.DefaultPolicy(),
		Cache:   CacheConfig{Backend: backendFile},
		Gallery: GalleryConfig{Backend: backendFile},
		Server:  ServerConfig{Addr: server.DefaultAddr},
	}
}

// LoadConfig reads path over the defaults. A missing file is not an
// error. Keys absent from the file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("read config %s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Cache.Backend {
	case backendFile, backendRedis, backendNone:
	default:
		return fmt.Errorf("config: cache.backend must be file, redis or none (got %q)", c.Cache.Backend)
	}
	switch c.Gallery.Backend {
	case backendFile, backendMongo:
	default:
		return fmt.Errorf("config: gallery.backend must be file or mongo (got %q)", c.Gallery.Backend)
	}
	if c.Gallery.Backend == backendMongo && c.Gallery.MongoURI == "" {
		return fmt.Errorf("config: gallery.mongo_uri is required for the mongo backend")
	}
	return pipeline.ValidateFormats(c.Render.Formats)
}

// WriteConfig writes cfg to path, creating parent directories.
func WriteConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
