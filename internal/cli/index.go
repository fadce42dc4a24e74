// internal/cli/index.go
package docqa

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mwiater/docqa/internal/appconfig"
	"github.com/mwiater/docqa/internal/indexer"
	"github.com/mwiater/docqa/internal/logging"
	"github.com/mwiater/docqa/internal/util"
)

// indexCmd indexes every supported file of a directory.
var indexCmd = &cobra.Command{
	Use:   "index [dir]",
	Short: "Index every supported file in a directory",
	Long: `Index every CSV, JSON, text, DOCX and PDF file directly inside a directory.
Each file's index is written to <tempRoot>/<format>/<name>_index.json.
Without an argument the configured input directory is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		dir := cfg.InputDirPath()
		if len(args) == 1 {
			dir = args[0]
		}
		_, err := runIndex(cmd.Context(), cfg, dir, cmd.OutOrStdout())
		return err
	},
}

// runIndex indexes dir and prints the per-file report.
func runIndex(ctx context.Context, cfg *appconfig.Config, dir string, out io.Writer) (indexer.Report, error) {
	ix, err := indexer.New(cfg.IndexerConfig(), indexer.WithStatus(logging.Status(out)))
	if err != nil {
		return indexer.Report{}, err
	}
	report, err := ix.Run(ctx, dir)
	printReport(out, report)
	return report, err
}

func printReport(out io.Writer, report indexer.Report) {
	if len(report.Results) == 0 {
		return
	}
	fmt.Fprintln(out)
	for _, res := range report.Results {
		if res.Status != indexer.StatusFailed {
			printResult(out, res)
		}
	}
	if failures := report.Failures(); len(failures) > 0 {
		color.New(color.FgRed, color.Bold).Fprintf(out, "\n%d %s:\n", len(failures), util.Plural(len(failures), "failure", "failures"))
		for _, res := range failures {
			printResult(out, res)
		}
	}
	fmt.Fprintf(out, "\n%s\n", report)
}

func printResult(out io.Writer, res indexer.Result) {
	switch res.Status {
	case indexer.StatusIndexed:
		color.New(color.FgGreen).Fprintf(out, "  indexed  ")
		fmt.Fprintf(out, "%s -> %s (%s)\n", res.Path, res.IndexPath, res.Summary)
	case indexer.StatusSkipped:
		color.New(color.FgYellow).Fprintf(out, "  skipped  ")
		fmt.Fprintf(out, "%s\n", res.Path)
	case indexer.StatusFailed:
		color.New(color.FgRed).Fprintf(out, "  failed   ")
		fmt.Fprintf(out, "%s: %v\n", res.Path, res.Err)
	}
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
