// internal/providers/ollama/provider.go
// Package ollama provides a Generator backed by Ollama-compatible HTTP endpoints.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mwiater/docqa/internal/appconfig"
	"github.com/mwiater/docqa/internal/logging"
	"github.com/mwiater/docqa/internal/providers"
)

const providerName = "ollama"

// Provider implements providers.Generator using the Ollama /api/generate endpoint.
type Provider struct {
	client  *http.Client
	baseURL string
	model   string
	timeout time.Duration
}

// New constructs a Provider configured with the application's request timeout.
func New(cfg *appconfig.Config) *Provider {
	timeout := cfg.RequestTimeout()
	return &Provider{
		client: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{ForceAttemptHTTP2: false},
		},
		baseURL: cfg.BaseURLValue(),
		model:   cfg.ModelName(),
		timeout: timeout,
	}
}

type generateResponse struct {
	Model           string `json:"model"`
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	TotalDuration   int64  `json:"total_duration"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
	Error           string `json:"error,omitempty"`
}

func (p *Provider) Name() string { return providerName }

// Generate issues a non-streaming generate request and returns the response text.
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"model":  p.model,
		"prompt": prompt,
		"stream": false,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	logging.LogRequest("DOCQA->LLM", p.baseURL, p.model, body)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &providers.RemoteServiceError{Provider: providerName, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &providers.RemoteServiceError{Provider: providerName, StatusCode: resp.StatusCode, Err: err}
	}
	logging.LogRequest("LLM->DOCQA", p.baseURL, p.model, respBody)

	if resp.StatusCode != http.StatusOK {
		return "", &providers.RemoteServiceError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("/api/generate returned %s: %s", resp.Status, strings.TrimSpace(string(respBody))),
		}
	}

	var result generateResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", &providers.RemoteServiceError{Provider: providerName, StatusCode: resp.StatusCode, Err: err}
	}
	if result.Error != "" {
		return "", &providers.RemoteServiceError{Provider: providerName, StatusCode: resp.StatusCode, Err: errors.New(result.Error)}
	}

	output := strings.TrimSpace(result.Response)
	if output == "" {
		return "", &providers.RemoteServiceError{Provider: providerName, StatusCode: resp.StatusCode, Empty: true}
	}
	logging.LogEvent("ollama generate: model=%s prompt_tokens=%d eval_tokens=%d total=%s",
		result.Model, result.PromptEvalCount, result.EvalCount, time.Duration(result.TotalDuration))
	return output, nil
}
