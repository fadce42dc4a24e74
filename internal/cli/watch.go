// internal/cli/watch.go
package docqa

import (
	"github.com/spf13/cobra"

	"github.com/mwiater/docqa/internal/indexer"
	"github.com/mwiater/docqa/internal/logging"
)

// watchCmd indexes a directory once and then again whenever files change.
var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Index a directory and keep re-indexing it on change",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		dir := cfg.InputDirPath()
		if len(args) == 1 {
			dir = args[0]
		}
		out := cmd.OutOrStdout()
		ctx := cmd.Context()

		// Watching always runs best-effort.
		icfg := cfg.IndexerConfig()
		icfg.Mode = indexer.ModeBestEffort
		ix, err := indexer.New(icfg, indexer.WithStatus(logging.Status(out)))
		if err != nil {
			return err
		}
		report, err := ix.Run(ctx, dir)
		printReport(out, report)
		if err != nil {
			return err
		}

		return ix.Watch(ctx, dir, func(res indexer.Result) {
			printResult(out, res)
		})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
