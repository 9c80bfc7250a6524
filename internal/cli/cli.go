// Package cli implements the libmirror command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/libmirror/pkg/buildinfo"
	"github.com/matzehuels/libmirror/pkg/cache"
	"github.com/matzehuels/libmirror/pkg/config"
	"github.com/matzehuels/libmirror/pkg/httputil"
	"github.com/matzehuels/libmirror/pkg/integrations/maven"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "libmirror"

	// redisKeyPrefix namespaces document cache entries in Redis.
	redisKeyPrefix = appName + ":"
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

	configPath  string
	destination string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level, pipeline, cache
// and HTTP events are logged as well.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		registerLogHooks(c.Logger)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "libmirror mirrors Maven repositories into a library tree",
		Long:         `libmirror walks a Maven-style repository that publishes a master index (such as Google's Maven repository), downloads every stable artifact version and writes a library.xml descriptor next to each one.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a TOML configuration file")
	root.PersistentFlags().StringVarP(&c.destination, "dest", "d", "", "destination root of the mirror tree")

	root.AddCommand(c.mirrorCommand())
	root.AddCommand(c.groupsCommand())
	root.AddCommand(c.versionsCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the configuration file (if any), applies the global flag
// overrides and validates the result. Commands apply their own flags through
// apply before validation.
func (c *CLI) loadConfig(apply func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.destination != "" {
		cfg.Output.Destination = c.destination
	}
	if apply != nil {
		apply(cfg)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// =============================================================================
// Factories
// =============================================================================

// newCache returns the document cache selected by cfg.
func newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	if cfg.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL, redisKeyPrefix)
		if err != nil {
			return nil, err
		}
		return rc, nil
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache(), nil
		}
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// newRepository builds the repository client for cfg on top of c.
func newRepository(c cache.Cache, cfg *config.Config, refresh bool) *maven.Client {
	return maven.NewClient(c, maven.Options{
		BaseURL:   cfg.Repository.BaseURL,
		Timeout:   cfg.Timeout(),
		UserAgent: userAgent(cfg),
		IndexTTL:  cfg.IndexTTL(),
		Retry:     httputil.Policy{Attempts: cfg.HTTP.Retries, Delay: cfg.RetryDelay()},
		Refresh:   refresh,
	})
}

// openRepository opens the cache and returns the repository client together
// with a function releasing the cache.
func (c *CLI) openRepository(ctx context.Context, cfg *config.Config, refresh bool) (*maven.Client, func(), error) {
	docs, err := newCache(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := docs.Close(); err != nil {
			c.Logger.Warn("failed to close cache", "error", err)
		}
	}
	return newRepository(docs, cfg, refresh), closeFn, nil
}

func userAgent(cfg *config.Config) string {
	if cfg.Repository.UserAgent == "" || cfg.Repository.UserAgent == appName {
		return appName + "/" + buildinfo.Version
	}
	return cfg.Repository.UserAgent
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/libmirror/).
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
