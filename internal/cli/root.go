// internal/cli/root.go
package docqa

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mwiater/docqa/internal/appconfig"
	"github.com/mwiater/docqa/internal/logging"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
)

var rootCmd = &cobra.Command{
	Use:          "docqa",
	Short:        "docqa — index local documents and ask a language model about them",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 1) Credentials from .env, then the config file (or defaults)
		if err := loadDotEnv(); err != nil {
			return err
		}
		if err := ensureConfigLoaded(cmd); err != nil {
			return err
		}

		// 2) Materialize the merged configuration (flags > env > file > defaults)
		cfg := appconfig.Default()
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("unmarshal config: %w", err)
		}
		cfg.ConfigPath = viper.ConfigFileUsed()
		if err := cfg.Validate(); err != nil {
			return err
		}

		// 3) Logging goes to the log file, echoed to stdout in debug mode
		if err := logging.Init(cfg.LogFilePath(), cfg.Debug); err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		currentConfig = &cfg
		return nil
	},
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := appconfig.Default()
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (YAML or JSON)")
	flags.Bool("debug", defaults.Debug, "enable debug logging")
	flags.String("temp-root", defaults.TempRoot, "directory holding the per-format index directories")
	flags.String("mode", defaults.Mode, "directory batch mode: strict or best-effort")
	flags.Int("workers", defaults.Workers, "number of files indexed in parallel")
	flags.Int("chunk-size", defaults.ChunkSize, "units (rows or paragraphs) per chunk")
	flags.String("provider", defaults.Provider, "model provider: gemini or ollama")
	flags.String("model", "", "model name (defaults per provider)")

	// Bind flags to Viper keys (flags override config)
	_ = viper.BindPFlag("debug", flags.Lookup("debug"))
	_ = viper.BindPFlag("tempRoot", flags.Lookup("temp-root"))
	_ = viper.BindPFlag("mode", flags.Lookup("mode"))
	_ = viper.BindPFlag("workers", flags.Lookup("workers"))
	_ = viper.BindPFlag("chunkSize", flags.Lookup("chunk-size"))
	_ = viper.BindPFlag("provider", flags.Lookup("provider"))
	_ = viper.BindPFlag("model", flags.Lookup("model"))
}

func initConfig() {
	viper.SetEnvPrefix("DOCQA")
	viper.AutomaticEnv()
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// ensureConfigLoaded registers defaults and reads the config file. A missing
// default config file is fine; a missing file named with --config is not.
func ensureConfigLoaded(cmd *cobra.Command) error {
	setDefaults(appconfig.Default())

	if cfgFile == "" {
		return nil
	}
	if _, err := os.Stat(cfgFile); errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		return nil
	}
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

// setDefaults registers every key so environment variables are seen by
// viper.Unmarshal.
func setDefaults(cfg appconfig.Config) {
	viper.SetDefault("tempRoot", cfg.TempRoot)
	viper.SetDefault("inputDir", cfg.InputDir)
	viper.SetDefault("workers", cfg.Workers)
	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("chunkSize", cfg.ChunkSize)
	viper.SetDefault("provider", cfg.Provider)
	viper.SetDefault("model", cfg.Model)
	viper.SetDefault("baseURL", cfg.BaseURL)
	viper.SetDefault("apiKeyEnv", cfg.APIKeyEnv)
	viper.SetDefault("timeout", cfg.TimeoutSeconds)
	viper.SetDefault("logFile", cfg.LogFile)
	viper.SetDefault("debug", cfg.Debug)
}

// loadDotEnv reads ./.env into the environment when it exists. Variables
// already set are left alone.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// getConfig returns the loaded application configuration for the commands.
func getConfig() *appconfig.Config {
	if currentConfig == nil {
		cfg := appconfig.Default()
		currentConfig = &cfg
	}
	return currentConfig
}
