package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/libmirror/pkg/catalog"
	"github.com/matzehuels/libmirror/pkg/config"
	"github.com/matzehuels/libmirror/pkg/mirror"
)

// mirrorOptions holds flags for the mirror command.
type mirrorOptions struct {
	baseURL   string
	groups    []string
	pick      bool
	noCache   bool
	refresh   bool
	timeout   time.Duration
	retries   int
	redisURL  string
	mongoURI  string
	noCatalog bool
}

// apply overrides cfg with the flags that were set on cmd.
func (o *mirrorOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.Repository.BaseURL = o.baseURL
	}
	if flags.Changed("group") {
		cfg.Filter.Groups = o.groups
	}
	if flags.Changed("timeout") {
		cfg.HTTP.TimeoutSeconds = int(o.timeout.Round(time.Second) / time.Second)
	}
	if flags.Changed("retries") {
		cfg.HTTP.Retries = o.retries
	}
	if flags.Changed("redis") {
		cfg.Cache.RedisURL = o.redisURL
	}
	if flags.Changed("mongo") {
		cfg.Catalog.MongoURI = o.mongoURI
	}
	if o.noCache {
		cfg.Cache.Disabled = true
	}
	if o.noCatalog {
		cfg.Catalog.Disabled = true
	}
}

// mirrorCommand creates the mirror command.
func (c *CLI) mirrorCommand() *cobra.Command {
	opts := mirrorOptions{}

	cmd := &cobra.Command{
		Use:   "mirror",
		Short: "Mirror the repository into the destination tree",
		Long: `Mirror walks the repository's master index, every selected group and every
stable version, downloading each artifact and writing a library.xml next to it.

Files that already exist are never fetched or rewritten, so an interrupted or
repeated run picks up where the last one stopped.`,
		Example: `  # Mirror everything with the default layout
  libmirror mirror

  # Mirror AndroidX only, into /srv/libs
  libmirror mirror --dest /srv/libs --group 'androidx.*'

  # Choose groups interactively
  libmirror mirror --pick`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMirror(cmd, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.baseURL, "base-url", config.DefaultBaseURL, "repository base URL")
	cmd.Flags().StringArrayVarP(&opts.groups, "group", "g", nil, "mirror only this group (repeatable, 'prefix.*' matches subgroups)")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "choose groups interactively")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the document cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached documents (results are still cached)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", config.DefaultTimeoutSeconds*time.Second, "connect/header timeout, and the longest gap allowed between download chunks")
	cmd.Flags().IntVar(&opts.retries, "retries", config.DefaultRetries, "attempts per POM and artifact")
	cmd.Flags().StringVar(&opts.redisURL, "redis", "", "Redis URL for the document cache")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo", "", "MongoDB URI for the catalog")
	cmd.Flags().BoolVar(&opts.noCatalog, "no-catalog", false, "do not record mirrored versions")

	return cmd
}

func (c *CLI) runMirror(cmd *cobra.Command, opts *mirrorOptions) error {
	ctx := cmd.Context()

	cfg, err := c.loadConfig(func(cfg *config.Config) { opts.apply(cmd, cfg) })
	if err != nil {
		return err
	}

	repo, closeRepo, err := c.openRepository(ctx, cfg, opts.refresh)
	if err != nil {
		return err
	}
	defer closeRepo()

	if opts.pick {
		if err := c.pickInto(ctx, cfg, repo); err != nil {
			return err
		}
	}

	store, err := catalog.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			c.Logger.Warn("failed to close catalog", "error", err)
		}
	}()

	prog := newProgress(c.Logger)
	result, err := mirror.NewRunner(cfg, repo, store, c.Logger).Run(ctx)
	if result != nil {
		prog.done(fmt.Sprintf("Mirrored %d of %d versions", result.Mirrored, result.VersionsAccepted))
		printSummary(result, cfg.Output.Destination)
	}
	if err != nil {
		return err
	}

	if result.Failed() == 0 && result.Mirrored > 0 {
		printNewline()
		printNextStep("Browse the mirror", "libmirror list")
	}
	return nil
}

// pickInto replaces cfg's group filter with an interactive selection.
func (c *CLI) pickInto(ctx context.Context, cfg *config.Config, repo mirror.Repository) error {
	spinner := newSpinner(ctx, os.Stderr, "Fetching master index...")
	spinner.Start()
	master, err := repo.FetchMasterIndex(ctx)
	spinner.Stop()
	if err != nil {
		return err
	}

	selected, err := pickGroups(ctx, master.Groups, cfg.WantsGroup)
	if err != nil {
		return err
	}
	cfg.Filter.Groups = selected
	c.Logger.Info("groups selected", "count", len(selected))
	return nil
}
