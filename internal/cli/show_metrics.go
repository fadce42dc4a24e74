// internal/cli/show_metrics.go
package docqa

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwiater/docqa/internal/metrics"
)

// showMetricsCmd prints the stored per-model query statistics.
var showMetricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show model query metrics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := metricsPath(getConfig())
		agg, err := metrics.NewAggregator(path)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		snap := agg.Snapshot()
		if len(snap) == 0 {
			fmt.Fprintf(out, "No metrics recorded in %s\n", path)
			return nil
		}
		for _, m := range snap {
			fmt.Fprintln(out, agg.Summary(m.ModelName))
			for _, b := range m.PerformanceBuckets {
				fmt.Fprintf(out, "  %s %-10s %d requests, mean %.0fms\n",
					b.Dimension, b.Bucket, b.Stats.TotalRequests, b.Stats.DurationMillis.Mean)
			}
		}
		return nil
	},
}

func init() {
	showCmd.AddCommand(showMetricsCmd)
}
