package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/libmirror/pkg/catalog"
)

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	var f catalog.Filter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List mirrored versions from the catalog",
		Long: `List the versions recorded in the destination's catalog.

Output is a table on a terminal and tab-separated otherwise, so it can be
piped into other tools.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig(nil)
			if err != nil {
				return err
			}
			if cfg.Catalog.Disabled {
				printWarning("Catalog is disabled in the configuration")
				return nil
			}

			store, err := catalog.Open(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(ctx, f)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				printInfo("No mirrored versions recorded")
				return nil
			}

			out := cmd.OutOrStdout()
			if isTerminal(out) {
				fmt.Fprintln(out, renderEntries(entries))
			} else {
				writeEntriesTSV(out, entries)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&f.Group, "group", "", "only this group")
	cmd.Flags().StringVar(&f.Artifact, "artifact", "", "only this artifact")
	cmd.Flags().StringVar(&f.RunID, "run", "", "only versions recorded by this run")
	cmd.Flags().IntVar(&f.Limit, "limit", 0, "maximum number of entries (0 = all)")
	return cmd
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// renderEntries formats entries as a rounded table.
func renderEntries(entries []catalog.Entry) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Group", "Artifact", "Version", "Name", "Type", "Size", "Mirrored"})
	for _, e := range entries {
		tw.AppendRow(table.Row{
			e.Group,
			e.Artifact,
			e.Version,
			e.Name,
			e.Packaging,
			humanize.Bytes(uint64(e.Size)),
			humanize.Time(e.MirroredAt),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 6, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

// writeEntriesTSV writes one tab-separated line per entry.
func writeEntriesTSV(w io.Writer, entries []catalog.Entry) {
	for _, e := range entries {
		fmt.Fprintln(w, e.Group+"\t"+e.Artifact+"\t"+e.Version+"\t"+e.Name+"\t"+e.Packaging+"\t"+
			strconv.FormatInt(e.Size, 10)+"\t"+e.ArtifactPath)
	}
}
