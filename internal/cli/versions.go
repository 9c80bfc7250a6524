package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/libmirror/pkg/config"
	"github.com/matzehuels/libmirror/pkg/mirror"
)

// versionsCommand creates the versions command.
func (c *CLI) versionsCommand() *cobra.Command {
	var (
		baseURL string
		all     bool
	)

	cmd := &cobra.Command{
		Use:   "versions <group> <artifact>",
		Short: "List the versions of one library that would be mirrored",
		Example: `  libmirror versions androidx.core core-ktx
  libmirror versions androidx.core core-ktx --all`,
		Args: cobra.ExactArgs(2),
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

			markers := cfg.Filter.ExcludedMarkers
			if all {
				markers = nil
			}
			vs, err := mirror.LibraryVersions(ctx, repo, args[0], args[1], markers)
			if err != nil {
				return err
			}
			for _, v := range vs {
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "", "repository base URL")
	cmd.Flags().BoolVar(&all, "all", false, "include pre-release versions")
	return cmd
}
