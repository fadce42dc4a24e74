// cmd/docqa/main.go
package main

import (
	"fmt"
	"os"

	cmd "github.com/mwiater/docqa/internal/cli"
	"github.com/mwiater/docqa/internal/logging"
)

var (
	executeCmd   = cmd.Execute
	closeLogging = logging.Close
	exit         = os.Exit
)

// main starts the docqa CLI application by delegating to the cobra root
// command defined in the docqa package, then flushes the log file.
func main() {
	err := executeCmd()
	if cerr := closeLogging(); cerr != nil {
		fmt.Fprintf(os.Stderr, "close log: %v\n", cerr)
	}
	if err != nil {
		exit(1)
	}
}
