// Package gemini provides a Generator backed by the Gemini generateContent
// REST endpoint.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mwiater/docqa/internal/appconfig"
	"github.com/mwiater/docqa/internal/logging"
	"github.com/mwiater/docqa/internal/providers"
)

const providerName = "gemini"

// Provider implements providers.Generator against the Gemini API.
type Provider struct {
	client  *http.Client
	baseURL string
	model   string
	apiKey  string
	timeout time.Duration
}

// New constructs a Provider from the application configuration. A missing
// API key is returned as *appconfig.ConfigError.
func New(cfg *appconfig.Config) (*Provider, error) {
	apiKey, err := cfg.APIKey()
	if err != nil {
		return nil, err
	}
	timeout := cfg.RequestTimeout()
	return &Provider{
		client:  &http.Client{Timeout: timeout},
		baseURL: cfg.BaseURLValue(),
		model:   cfg.ModelName(),
		apiKey:  apiKey,
		timeout: timeout,
	}, nil
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (p *Provider) Name() string { return providerName }

// Generate sends prompt as a single user turn and returns the concatenated
// text parts of the first candidate.
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", p.baseURL, url.PathEscape(p.model))
	logging.LogRequest("DOCQA->LLM", p.baseURL, p.model, body)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", p.apiKey)

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
			Err:        errors.New(errorMessage(resp.Status, respBody)),
		}
	}

	var result generateResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", &providers.RemoteServiceError{Provider: providerName, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if reason := result.PromptFeedback.BlockReason; reason != "" {
		return "", &providers.RemoteServiceError{Provider: providerName, StatusCode: resp.StatusCode, Err: fmt.Errorf("prompt blocked: %s", reason)}
	}

	var answer strings.Builder
	if len(result.Candidates) > 0 {
		for _, part := range result.Candidates[0].Content.Parts {
			answer.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(answer.String())
	if text == "" {
		return "", &providers.RemoteServiceError{Provider: providerName, StatusCode: resp.StatusCode, Empty: true}
	}
	return text, nil
}

func errorMessage(status string, body []byte) string {
	var apiErr errorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}
	if trimmed := strings.TrimSpace(string(body)); trimmed != "" {
		return status + ": " + trimmed
	}
	return status
}
