// internal/cli/ask.go
package docqa

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mwiater/docqa/internal/appconfig"
	"github.com/mwiater/docqa/internal/docindex"
	"github.com/mwiater/docqa/internal/logging"
	"github.com/mwiater/docqa/internal/metrics"
	"github.com/mwiater/docqa/internal/providerfactory"
	"github.com/mwiater/docqa/internal/query"
	"github.com/mwiater/docqa/internal/tui"
)

const askPrompt = "How can I help you today: "

var (
	askPlain    bool
	askReindex  bool
	askIndexDir string
)

// Overridable in tests.
var (
	newGenerator = providerfactory.NewGenerator
	startTUI     = tui.Run
	isTerminal   = func() bool {
		return isTTY(os.Stdin.Fd()) && isTTY(os.Stdout.Fd())
	}
)

func isTTY(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// askCmd answers questions about the persisted indexes.
var askCmd = &cobra.Command{
	Use:   "ask [question...]",
	Short: "Ask the model about the indexed files",
	Long: `Ask the configured model about every persisted index. With a question
as arguments the answer is printed once; otherwise an interactive session
starts (a terminal UI, or a plain line loop with --plain or when not attached
to a terminal). An empty question lists all the files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if askReindex {
			dir := askIndexDir
			if dir == "" {
				dir = cfg.InputDirPath()
			}
			if _, err := runIndex(ctx, cfg, dir, out); err != nil {
				return err
			}
		}

		svc, agg, err := newQueryService(cfg)
		if err != nil {
			return err
		}
		defer saveMetrics(agg)

		if len(args) > 0 {
			answer, err := svc.Ask(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(out, answer)
			return nil
		}

		if !askPlain && isTerminal() {
			files, ferr := docindex.IndexFiles(cfg.TempRootPath())
			if ferr != nil {
				return ferr
			}
			err = startTUI(ctx, svc, tui.Info{
				Provider:   modelLabel(cfg),
				IndexCount: len(files),
				Summary:    fmt.Sprintf("Indexes under %s", cfg.TempRootPath()),
			})
		} else {
			err = runAskLoop(ctx, svc, cmd.InOrStdin(), out)
		}
		if err == nil {
			fmt.Fprintln(out, agg.Summary(modelLabel(cfg)))
		}
		return err
	},
}

// newQueryService wires the configured generator and the persisted model
// metrics into a query service.
func newQueryService(cfg *appconfig.Config) (*query.Service, *metrics.Aggregator, error) {
	gen, err := newGenerator(cfg)
	if err != nil {
		return nil, nil, err
	}
	agg, err := metrics.NewAggregator(metricsPath(cfg))
	if err != nil {
		return nil, nil, err
	}
	svc := query.New(cfg.TempRootPath(), gen, cfg.RequestTimeout())
	svc.SetMetrics(agg, modelLabel(cfg))
	return svc, agg, nil
}

func modelLabel(cfg *appconfig.Config) string {
	return cfg.ProviderName() + "/" + cfg.ModelName()
}

func metricsPath(cfg *appconfig.Config) string {
	return filepath.Join(cfg.TempRootPath(), metrics.FileName)
}

func saveMetrics(agg *metrics.Aggregator) {
	if err := agg.Save(); err != nil {
		logging.LogEvent("[METRICS] save failed: %v", err)
	}
}

// runAskLoop reads one question per line until EOF, "exit" or "quit".
// Local failures are printed and the loop continues.
func runAskLoop(ctx context.Context, asker tui.Asker, in io.Reader, out io.Writer) error {
	promptColor := color.New(color.FgCyan, color.Bold)
	errColor := color.New(color.FgRed)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		fmt.Fprintln(out)
		promptColor.Fprint(out, askPrompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		question := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(question) {
		case "exit", "quit":
			return nil
		}

		answer, err := asker.Ask(ctx, question)
		if err != nil {
			errColor.Fprintf(out, "Error: %v\n", err)
			continue
		}
		fmt.Fprintln(out, answer)
	}
}

var _ tui.Asker = (*query.Service)(nil)

func init() {
	askCmd.Flags().BoolVar(&askPlain, "plain", false, "use a plain line loop instead of the terminal UI")
	askCmd.Flags().BoolVar(&askReindex, "index", false, "index a directory before asking")
	askCmd.Flags().StringVar(&askIndexDir, "dir", "", "directory indexed by --index (default: inputDir)")
	rootCmd.AddCommand(askCmd)
}
