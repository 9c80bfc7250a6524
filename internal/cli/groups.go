package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/libmirror/pkg/config"
	"github.com/matzehuels/libmirror/pkg/mirror"
)

// groupsCommand creates the groups command.
func (c *CLI) groupsCommand() *cobra.Command {
	var (
		baseURL string
		all     bool
	)

	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List the groups published by the repository",
		Long: `List the group ids from the repository's master index, one per line.

The configured group filter applies unless --all is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig(func(cfg *config.Config) {
				if cmd.Flags().Changed("base-url") {
					cfg.Repository.BaseURL = baseURL
				}
			})
			if err != nil {
				return err
			}

			repo, closeRepo, err := c.openRepository(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer closeRepo()

			master, err := repo.FetchMasterIndex(ctx)
			if err != nil {
				return err
			}

			groups := master.Groups
			if !all {
				groups = mirror.SelectGroups(groups, cfg)
			}
			for _, g := range groups {
				fmt.Fprintln(cmd.OutOrStdout(), g)
			}
			c.Logger.Debug("listed groups", "shown", len(groups), "total", len(master.Groups))
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "", "repository base URL")
	cmd.Flags().BoolVar(&all, "all", false, "ignore the configured group filter")
	return cmd
}
