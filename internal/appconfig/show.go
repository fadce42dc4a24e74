package appconfig

import (
	"fmt"
	"io"
)

// ShowConfig prints the current configuration summary.
func ShowConfig(out io.Writer, file string, cfg Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  Debug:        %v\n", cfg.Debug)
	fmt.Fprintf(out, "  Temp Root:    %s\n", cfg.TempRootPath())
	fmt.Fprintf(out, "  Input Dir:    %s\n", cfg.InputDirPath())
	fmt.Fprintf(out, "  Mode:         %s\n", cfg.BatchMode())
	fmt.Fprintf(out, "  Workers:      %d\n", cfg.IndexerConfig().Workers)
	fmt.Fprintf(out, "  Chunk Size:   %d\n", cfg.ChunkSize)
	fmt.Fprintf(out, "  Provider:     %s\n", cfg.ProviderName())
	fmt.Fprintf(out, "  Model:        %s\n", cfg.ModelName())
	fmt.Fprintf(out, "  Base URL:     %s\n", cfg.BaseURLValue())
	if cfg.RequiresAPIKey() {
		fmt.Fprintf(out, "  API Key Env:  %s\n", cfg.APIKeyEnvName())
	}
	fmt.Fprintf(out, "  Timeout:      %s\n", cfg.RequestTimeout())
	fmt.Fprintf(out, "  Log File:     %s\n", cfg.LogFilePath())
}
