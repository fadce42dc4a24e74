// internal/cli/show_index.go
package docqa

import (
	"fmt"
	"io/fs"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"

	"github.com/mwiater/docqa/internal/docindex"
)

var showIndexRaw bool

// showIndexCmd loads one persisted index and dumps it.
var showIndexCmd = &cobra.Command{
	Use:   "index <file>",
	Short: "Show a persisted index",
	Long: `Load a persisted index and dump it. A bare file name is looked up under
the temp root; use --raw to print the stored JSON instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := findIndexFile(args[0])
		if err != nil {
			return err
		}
		idx, err := docindex.LoadFile(path)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if showIndexRaw {
			data, err := docindex.EncodeIndex(idx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(data))
			return nil
		}
		_, err = pp.Fprintln(out, idx)
		return err
	},
}

// findIndexFile resolves name as given, then against every format directory
// under the temp root.
func findIndexFile(name string) (string, error) {
	roots := getConfig().FormatRoots()
	for _, format := range docindex.Formats {
		if path, err := docindex.ResolvePath(name, roots[format]); err == nil {
			return path, nil
		}
	}
	return "", &docindex.NotFoundError{Path: name, Err: fs.ErrNotExist}
}

func init() {
	showIndexCmd.Flags().BoolVar(&showIndexRaw, "raw", false, "print the stored JSON")
	showCmd.AddCommand(showIndexCmd)
}
