package brain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/membridge/membridge/internal/reliability"
)

// Retrier wraps a Generator with the bounded retry contract: up to
// maxAttempts total attempts separated by a fixed backoff, each attempt
// bounded by its own timeout. Structurally invalid input fails immediately
// with zero provider attempts.
type Retrier struct {
	inner       Generator
	maxAttempts int
	backoff     time.Duration
	timeout     time.Duration
}

func NewRetrier(inner Generator, maxAttempts int, backoff, timeout time.Duration) *Retrier {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Retrier{
		inner:       inner,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		timeout:     timeout,
	}
}

func (r *Retrier) Generate(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return Response{}, ErrEmptyPrompt
	}

	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := r.wait(ctx); err != nil {
				return Response{}, err
			}
		}

		res, err := r.attempt(ctx, req)
		if err == nil {
			res.Text = strings.TrimSpace(res.Text)
			return res, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return Response{}, ctx.Err()
		}
		var perr *ProviderError
		if errors.As(err, &perr) && !perr.Retryable {
			return Response{}, err
		}
	}

	return Response{}, &ProviderError{Retryable: true, Err: lastErr}
}

func (r *Retrier) attempt(ctx context.Context, req Request) (Response, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return r.inner.Generate(ctx, req)
}

// wait suspends for one backoff interval, aborting when the message's
// context is cancelled.
func (r *Retrier) wait(ctx context.Context) error {
	d := reliability.ExponentialBackoff(0, r.backoff, r.backoff)
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
