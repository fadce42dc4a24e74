// internal/providerfactory/factory.go
package providerfactory

import (
	"fmt"

	"github.com/mwiater/docqa/internal/appconfig"
	"github.com/mwiater/docqa/internal/logging"
	"github.com/mwiater/docqa/internal/providers"
	"github.com/mwiater/docqa/internal/providers/gemini"
	"github.com/mwiater/docqa/internal/providers/ollama"
)

// NewGenerator selects and configures the model provider named in the
// application configuration.
func NewGenerator(cfg *appconfig.Config) (providers.Generator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config provided to provider factory")
	}

	switch name := cfg.ProviderName(); name {
	case appconfig.ProviderGemini:
		provider, err := gemini.New(cfg)
		if err != nil {
			return nil, err
		}
		logging.LogEvent("gemini provider ready: model=%s", cfg.ModelName())
		return provider, nil
	case appconfig.ProviderOllama:
		logging.LogEvent("ollama provider ready: model=%s host=%s", cfg.ModelName(), cfg.BaseURLValue())
		return ollama.New(cfg), nil
	default:
		return nil, &appconfig.ConfigError{Key: "provider", Err: fmt.Errorf("unknown provider %q", name)}
	}
}
