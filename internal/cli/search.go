// internal/cli/search.go
package docqa

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mwiater/docqa/internal/docindex"
	"github.com/mwiater/docqa/internal/search"
	"github.com/mwiater/docqa/internal/util"
)

var searchLimit int

// searchCmd runs an offline keyword search over the persisted indexes.
var searchCmd = &cobra.Command{
	Use:   "search <terms...>",
	Short: "Keyword search over the persisted indexes",
	Long:  `Search every chunk and entry of the persisted indexes without calling a model.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		indexes, err := docindex.LoadAll(cfg.TempRootPath())
		if err != nil {
			return fmt.Errorf("load indexes: %w", err)
		}
		idx, err := search.Build(indexes)
		if err != nil {
			return err
		}
		defer idx.Close()

		terms := strings.Join(args, " ")
		hits, total, err := idx.Search(cmd.Context(), terms, searchLimit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d matches for %q across %d indexes (%d chunks and entries)\n", total, terms, len(indexes), idx.Size())
		fileColor := color.New(color.FgCyan)
		for _, hit := range hits {
			fmt.Fprintln(out)
			fileColor.Fprintf(out, "%s", hit.File)
			fmt.Fprintf(out, " [%s %s %d] score=%.3f\n", hit.Type, hit.Kind, hit.Position, hit.Score)
			fmt.Fprintf(out, "  %s\n", util.TruncateRunes(hit.Text, 200))
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of hits")
	rootCmd.AddCommand(searchCmd)
}
