// Package config holds the explicit configuration value handed to the mirror.
//
// Every setting has a default matching the layout downstream tooling
// expects (destination "my-lib-repo", directory label "Google", category
// "Android", pre-release markers dev/alpha/beta/rc). A TOML file may override
// any of them; the CLI then applies flag overrides on top.
//
// Example file:
//
//	[repository]
//	base_url = "https://maven.google.com"
//
//	[output]
//	destination = "/srv/libs"
//
//	[filter]
//	groups = ["androidx.core", "com.google.android.material.*"]
//
//	[http]
//	timeout_seconds = 120
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Repository configures the remote Maven-style repository.
type Repository struct {
	BaseURL   string `toml:"base_url"`
	UserAgent string `toml:"user_agent"`
}

// Output configures the local mirror tree.
type Output struct {
	Destination    string `toml:"destination"`     // Root of the mirror tree
	LibraryDir     string `toml:"library_dir"`     // Label directory under the root ("Google")
	Category       string `toml:"category"`        // Category written into library.xml
	DescriptorName string `toml:"descriptor_name"` // Sidecar file name ("library.xml")
}

// Filter selects what gets mirrored.
type Filter struct {
	ExcludedMarkers []string `toml:"excluded_markers"`
	// Groups restricts the run to these group ids. An entry ending in ".*"
	// matches the group itself and every group below it. Empty means all.
	Groups []string `toml:"groups"`
}

// HTTP configures the repository client.
type HTTP struct {
	TimeoutSeconds   int `toml:"timeout_seconds"`
	Retries          int `toml:"retries"`            // Total attempts on the recoverable tier
	RetryDelayMillis int `toml:"retry_delay_millis"` // Initial backoff, doubled per attempt
}

// Cache configures the document cache.
type Cache struct {
	Disabled        bool   `toml:"disabled"`
	Dir             string `toml:"dir"`
	IndexTTLMinutes int    `toml:"index_ttl_minutes"`
	RedisURL        string `toml:"redis_url"`
}

// Catalog configures where mirrored versions are recorded.
type Catalog struct {
	Disabled      bool   `toml:"disabled"`
	Path          string `toml:"path"` // SQLite file; defaults under the destination
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// Config encapsulates all configuration values for libmirror.
type Config struct {
	Repository Repository `toml:"repository"`
	Output     Output     `toml:"output"`
	Filter     Filter     `toml:"filter"`
	HTTP       HTTP       `toml:"http"`
	Cache      Cache      `toml:"cache"`
	Catalog    Catalog    `toml:"catalog"`
}

// Load reads the TOML file at path over the defaults and validates the
// result. An empty path returns the validated defaults. Unknown keys are
// rejected so that typos do not silently fall back to defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return &cfg, cfg.Validate()
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file %s does not exist", path)
		}
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("parse config: unknown keys: %s", strings.Join(keys, ", "))
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Write encodes the configuration as TOML.
func (c *Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// StateDir is the directory holding the run lock and the default catalog.
func (c *Config) StateDir() string {
	return filepath.Join(c.Output.Destination, ".libmirror")
}

// LockPath is the file locked for the duration of a mirror run.
func (c *Config) LockPath() string {
	return filepath.Join(c.StateDir(), "mirror.lock")
}

// CatalogPath is the SQLite catalog location.
func (c *Config) CatalogPath() string {
	if c.Catalog.Path != "" {
		return c.Catalog.Path
	}
	return filepath.Join(c.StateDir(), "catalog.db")
}

// Timeout is the per-request HTTP timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// RetryDelay is the initial backoff between attempts.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.HTTP.RetryDelayMillis) * time.Millisecond
}

// IndexTTL is how long master and group indexes stay cached. Zero means
// indexes are always fetched fresh.
func (c *Config) IndexTTL() time.Duration {
	return time.Duration(c.Cache.IndexTTLMinutes) * time.Minute
}

// WantsGroup reports whether group passes the Filter.Groups selection.
func (c *Config) WantsGroup(group string) bool {
	if len(c.Filter.Groups) == 0 {
		return true
	}
	for _, g := range c.Filter.Groups {
		if prefix, ok := strings.CutSuffix(g, ".*"); ok {
			if group == prefix || strings.HasPrefix(group, prefix+".") {
				return true
			}
			continue
		}
		if g == group {
			return true
		}
	}
	return false
}

func (c *Config) normalize() {
	c.Repository.BaseURL = strings.TrimRight(strings.TrimSpace(c.Repository.BaseURL), "/")
	c.Output.Destination = expandHome(strings.TrimSpace(c.Output.Destination))
	c.Cache.Dir = expandHome(strings.TrimSpace(c.Cache.Dir))
	c.Catalog.Path = expandHome(strings.TrimSpace(c.Catalog.Path))

	groups := c.Filter.Groups[:0]
	for _, g := range c.Filter.Groups {
		if g = strings.TrimSpace(g); g != "" {
			groups = append(groups, g)
		}
	}
	c.Filter.Groups = groups
}

// Normalize trims and expands user-supplied values. Callers that modify a
// loaded Config (flag overrides) call it before Validate.
func (c *Config) Normalize() { c.normalize() }

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
