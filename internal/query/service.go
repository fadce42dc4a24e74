// Package query answers questions about persisted indexes with a language
// model.
package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mwiater/docqa/internal/docindex"
	"github.com/mwiater/docqa/internal/logging"
	"github.com/mwiater/docqa/internal/metrics"
	"github.com/mwiater/docqa/internal/providers"
)

// Messages returned in place of an answer when the model call fails.
const (
	EmptyResponseMessage = "The model returned an empty response."
	errorMessagePrefix   = "Error while querying the model: "
)

// Service loads every persisted index and asks the generator about them.
type Service struct {
	root      string
	generator providers.Generator
	timeout   time.Duration
	load      func(root string) ([]*docindex.Index, error)

	metrics *metrics.Aggregator
	model   string
}

// New returns a Service reading indexes below root. A non-positive timeout
// leaves the deadline to the generator.
func New(root string, generator providers.Generator, timeout time.Duration) *Service {
	return &Service{
		root:      root,
		generator: generator,
		timeout:   timeout,
		load:      docindex.LoadAll,
	}
}

// SetMetrics records every model call in agg under the given model label.
func (s *Service) SetMetrics(agg *metrics.Aggregator, model string) {
	s.metrics = agg
	s.model = model
}

// Ask answers question using every index under the service root. Remote
// failures come back as a descriptive answer string; only local failures,
// such as an unreadable index file, are returned as errors.
func (s *Service) Ask(ctx context.Context, question string) (string, error) {
	indexes, err := s.load(s.root)
	if err != nil {
		return "", fmt.Errorf("load indexes: %w", err)
	}
	return s.AskIndexes(ctx, indexes, question)
}

// AskIndexes answers question about the given indexes.
func (s *Service) AskIndexes(ctx context.Context, indexes []*docindex.Index, question string) (string, error) {
	if s.generator == nil {
		return "", errors.New("query service has no generator")
	}
	question = strings.TrimSpace(question)
	if question == "" {
		question = DefaultQuestion
	}

	prompt, err := BuildPrompt(indexes, question)
	if err != nil {
		return "", err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	logging.LogEvent("[ASK] provider=%s indexes=%d question=%q", s.generator.Name(), len(indexes), question)
	answer, err := s.generator.Generate(ctx, prompt)
	s.record(time.Since(start), len(prompt), len(answer), err != nil || strings.TrimSpace(answer) == "")
	if err != nil {
		var remote *providers.RemoteServiceError
		if errors.As(err, &remote) {
			logging.LogEvent("[ASK] model call failed after %s: %v", time.Since(start).Truncate(time.Millisecond), err)
			if remote.Empty {
				return EmptyResponseMessage, nil
			}
			return errorMessagePrefix + remote.Error(), nil
		}
		return "", fmt.Errorf("generate answer: %w", err)
	}
	if strings.TrimSpace(answer) == "" {
		return EmptyResponseMessage, nil
	}
	logging.LogEvent("[ASK] answered in %s", time.Since(start).Truncate(time.Millisecond))
	return answer, nil
}

func (s *Service) record(d time.Duration, promptBytes, answerBytes int, failed bool) {
	if s.metrics == nil {
		return
	}
	model := s.model
	if model == "" {
		model = s.generator.Name()
	}
	s.metrics.Record(metrics.Sample{
		Model:       model,
		Duration:    d,
		PromptBytes: promptBytes,
		AnswerBytes: answerBytes,
		Failed:      failed,
	})
}
