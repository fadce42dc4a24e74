// internal/cli/config_init.go
package docqa

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwiater/docqa/internal/appconfig"
)

var configInitForce bool

// configCmd groups configuration file commands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the config file",
}

// configInitCmd writes the default configuration as YAML.
var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default config file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := appconfig.DefaultConfigPath
		if len(args) == 1 {
			path = args[0]
		}
		if err := appconfig.Save(path, appconfig.Default(), configInitForce); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
