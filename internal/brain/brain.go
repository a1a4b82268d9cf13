// Package brain wraps the remote text-generation provider behind a narrow
// Generator interface with bounded retry and uniform failure classification.
package brain

import (
	"context"
	"errors"
	"fmt"
)

// Request is one generation request. Prompt carries the fully assembled
// payload; UserID is only for attribution in provider logs.
type Request struct {
	UserID string
	Prompt string
}

// Response is the provider's reply with surrounding whitespace trimmed.
type Response struct {
	Text string
}

// Generator produces a reply for an assembled prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// ErrEmptyPrompt marks structurally invalid input. Never retried and never
// sent to the provider.
var ErrEmptyPrompt = errors.New("generation prompt is empty")

// ProviderError classifies a provider failure. Retryable errors are worth
// another bounded attempt; the rest (auth, malformed request) are not.
type ProviderError struct {
	StatusCode int
	Retryable  bool
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider error (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("provider error: %v", e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
