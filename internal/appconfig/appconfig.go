// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mwiater/docqa/internal/docindex"
	"github.com/mwiater/docqa/internal/indexer"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "docqa.yaml"
	// DefaultTempRoot is where per-format index directories are created.
	DefaultTempRoot = "tmp"
	// DefaultInputDir is the directory indexed when none is given.
	DefaultInputDir = "./test-files"
	// DefaultAPIKeyEnv names the environment variable holding the Gemini API key.
	DefaultAPIKeyEnv = "GEMINI_API_KEY"
	// defaultRequestTimeout is the default timeout for model requests.
	defaultRequestTimeout = 120 * time.Second
)

// Provider defaults.
const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"

	DefaultGeminiModel   = "gemini-2.5-flash"
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	DefaultOllamaModel   = "llama3.2"
	DefaultOllamaBaseURL = "http://localhost:11434"
)

// Config represents the top-level application configuration.
type Config struct {
	TempRoot       string `mapstructure:"tempRoot" yaml:"tempRoot" json:"tempRoot"`
	InputDir       string `mapstructure:"inputDir" yaml:"inputDir" json:"inputDir"`
	Workers        int    `mapstructure:"workers" yaml:"workers" json:"workers"`
	Mode           string `mapstructure:"mode" yaml:"mode" json:"mode"`
	ChunkSize      int    `mapstructure:"chunkSize" yaml:"chunkSize" json:"chunkSize"`
	Provider       string `mapstructure:"provider" yaml:"provider" json:"provider"`
	Model          string `mapstructure:"model" yaml:"model,omitempty" json:"model,omitempty"`
	BaseURL        string `mapstructure:"baseURL" yaml:"baseURL,omitempty" json:"baseURL,omitempty"`
	APIKeyEnv      string `mapstructure:"apiKeyEnv" yaml:"apiKeyEnv" json:"apiKeyEnv"`
	TimeoutSeconds int    `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
	LogFile        string `mapstructure:"logFile" yaml:"logFile,omitempty" json:"logFile,omitempty"`
	Debug          bool   `mapstructure:"debug" yaml:"debug" json:"debug"`
	ConfigPath     string `mapstructure:"-" yaml:"-" json:"-"`
}

// Default returns the configuration used when no file, flag or environment
// variable overrides a value.
func Default() Config {
	return Config{
		TempRoot:       DefaultTempRoot,
		InputDir:       DefaultInputDir,
		Workers:        1,
		Mode:           string(indexer.ModeStrict),
		ChunkSize:      docindex.DefaultChunkSize,
		Provider:       ProviderGemini,
		APIKeyEnv:      DefaultAPIKeyEnv,
		TimeoutSeconds: int(defaultRequestTimeout.Seconds()),
		LogFile:        "docqa.log",
	}
}

// ConfigError reports a missing or invalid setting.
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Validate checks the settings that cannot be defaulted.
func (c Config) Validate() error {
	if _, err := indexer.ParseMode(c.Mode); err != nil {
		return &ConfigError{Key: "mode", Err: err}
	}
	switch c.ProviderName() {
	case ProviderGemini, ProviderOllama:
	default:
		return &ConfigError{Key: "provider", Err: fmt.Errorf("unknown provider %q", c.Provider)}
	}
	if c.Workers < 0 {
		return &ConfigError{Key: "workers", Err: fmt.Errorf("must be zero or greater, got %d", c.Workers)}
	}
	return nil
}

// RequestTimeout returns the timeout duration for model requests, falling back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "docqa.log"
}

// TempRootPath returns the directory holding the per-format index roots.
func (c Config) TempRootPath() string {
	if root := strings.TrimSpace(c.TempRoot); root != "" {
		return root
	}
	return DefaultTempRoot
}

// InputDirPath returns the directory indexed when no argument is given.
func (c Config) InputDirPath() string {
	if dir := strings.TrimSpace(c.InputDir); dir != "" {
		return dir
	}
	return DefaultInputDir
}

// FormatRoots maps every supported format to its index directory under the
// temp root.
func (c Config) FormatRoots() map[docindex.Format]string {
	root := c.TempRootPath()
	roots := make(map[docindex.Format]string, len(docindex.Formats))
	for _, f := range docindex.Formats {
		roots[f] = filepath.Join(root, string(f))
	}
	return roots
}

// BatchMode returns the configured directory batch mode.
func (c Config) BatchMode() indexer.Mode {
	mode, err := indexer.ParseMode(c.Mode)
	if err != nil {
		return indexer.ModeStrict
	}
	return mode
}

// IndexerConfig assembles the DirectoryIndexer settings.
func (c Config) IndexerConfig() indexer.Config {
	workers := c.Workers
	if workers <= 0 {
		workers = 1
	}
	return indexer.Config{
		FormatRoots: c.FormatRoots(),
		Mode:        c.BatchMode(),
		Workers:     workers,
		ChunkSize:   c.ChunkSize,
		LockPath:    filepath.Join(c.TempRootPath(), indexer.LockFileName),
	}
}

// ProviderName returns the normalized provider name.
func (c Config) ProviderName() string {
	if p := strings.ToLower(strings.TrimSpace(c.Provider)); p != "" {
		return p
	}
	return ProviderGemini
}

// ModelName returns the configured model or the provider's default.
func (c Config) ModelName() string {
	if m := strings.TrimSpace(c.Model); m != "" {
		return m
	}
	if c.ProviderName() == ProviderOllama {
		return DefaultOllamaModel
	}
	return DefaultGeminiModel
}

// BaseURLValue returns the configured endpoint or the provider's default.
func (c Config) BaseURLValue() string {
	if u := strings.TrimSpace(c.BaseURL); u != "" {
		return strings.TrimRight(u, "/")
	}
	if c.ProviderName() == ProviderOllama {
		return DefaultOllamaBaseURL
	}
	return DefaultGeminiBaseURL
}

// APIKeyEnvName returns the environment variable holding the API key.
func (c Config) APIKeyEnvName() string {
	if name := strings.TrimSpace(c.APIKeyEnv); name != "" {
		return name
	}
	return DefaultAPIKeyEnv
}

// APIKey reads the API key from the environment. A missing key is a
// ConfigError.
func (c Config) APIKey() (string, error) {
	name := c.APIKeyEnvName()
	key := strings.TrimSpace(os.Getenv(name))
	if key == "" {
		return "", &ConfigError{Key: "apiKeyEnv", Err: fmt.Errorf("%s not found in environment", name)}
	}
	return key, nil
}

// RequiresAPIKey reports whether the configured provider needs a credential.
func (c Config) RequiresAPIKey() bool {
	return c.ProviderName() == ProviderGemini
}
