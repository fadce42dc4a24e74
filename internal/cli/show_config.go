// internal/cli/show_config.go
package docqa

import (
	"github.com/spf13/cobra"

	"github.com/mwiater/docqa/internal/appconfig"
)

// showConfigCmd prints the merged configuration.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Long:  `Show config settings ensuring that the config file is loaded properly and overridden by environment variables and flags accordingly.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := getConfig()
		appconfig.ShowConfig(cmd.OutOrStdout(), cfg.ConfigPath, *cfg)
	},
}

func init() {
	showCmd.AddCommand(showConfigCmd)
}
