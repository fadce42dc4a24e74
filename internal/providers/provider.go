// internal/providers/provider.go

// Package providers defines the interface for the remote language models that
// answer questions about indexed documents.
package providers

import (
	"context"
	"fmt"
)

// Generator turns a prompt into answer text.
type Generator interface {
	// Name identifies the provider in logs and errors.
	Name() string
	// Generate sends prompt to the model and returns its text answer. Remote
	// failures are reported as *RemoteServiceError.
	Generate(ctx context.Context, prompt string) (string, error)
}

// RemoteServiceError reports a failed or empty model call. It is distinct
// from local I/O errors so callers can turn it into a user-facing message.
type RemoteServiceError struct {
	Provider   string
	StatusCode int
	// Empty is set when the service answered without any text.
	Empty bool
	Err   error
}

func (e *RemoteServiceError) Error() string {
	switch {
	case e.Empty:
		return fmt.Sprintf("%s: empty response", e.Provider)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Provider, e.Err)
	}
}

func (e *RemoteServiceError) Unwrap() error { return e.Err }
