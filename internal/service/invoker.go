package service

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/koji/nanobanana/internal/domain"
	"github.com/koji/nanobanana/internal/logger"
)

// ModelCaller performs a single model call attempt.
type ModelCaller interface {
	Invoke(ctx context.Context, mode domain.Mode, image []byte, imageMIME string, prompt string) (*domain.RawOutput, error)
}

// InvokerConfig holds retry configuration for model calls.
type InvokerConfig struct {
	MaxRetries     int           // retry ceiling; total attempts = MaxRetries + 1
	InitialBackoff time.Duration // delay before the first retry
	MaxBackoff     time.Duration // upper bound for the exponential delay
}

// Invoker wraps a ModelCaller with bounded exponential backoff. Only
// transient upstream failures are retried; fatal rejections and context
// cancellation surface immediately.
type Invoker struct {
	caller         ModelCaller
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// NewInvoker creates a new Invoker.
func NewInvoker(caller ModelCaller, cfg *InvokerConfig) *Invoker {
	if cfg == nil {
		cfg = &InvokerConfig{}
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	initialBackoff := cfg.InitialBackoff
	if initialBackoff <= 0 {
		initialBackoff = 500 * time.Millisecond
	}
	maxBackoff := cfg.MaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = 8 * time.Second
	}

	return &Invoker{
		caller:         caller,
		maxRetries:     maxRetries,
		initialBackoff: initialBackoff,
		maxBackoff:     maxBackoff,
	}
}

// Invoke runs the model call, retrying transient failures up to the ceiling.
// The first attempt runs immediately; each retry waits an exponentially
// growing, jittered delay and honors context cancellation while waiting.
func (i *Invoker) Invoke(ctx context.Context, mode domain.Mode, image []byte, imageMIME string, prompt string) (*domain.RawOutput, error) {
	var lastErr error

	for attempt := 0; attempt <= i.maxRetries; attempt++ {
		if attempt > 0 {
			delay := i.backoffDelay(attempt)
			logger.With(logger.Fields{logger.FieldAttempt: attempt + 1}).Info(ctx,
				"Retrying model call max_attempts=%d delay_ms=%d error=%v",
				i.maxRetries+1, delay.Milliseconds(), lastErr)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		out, err := i.caller.Invoke(ctx, mode, image, imageMIME, prompt)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !domain.IsTransient(err) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("model call failed after %d attempts: %w", i.maxRetries+1, lastErr)
}

// backoffDelay computes the delay before the given retry attempt:
// initial * 2^(attempt-1), capped at the maximum, with ±25% jitter to keep
// concurrent retries from synchronizing.
func (i *Invoker) backoffDelay(attempt int) time.Duration {
	delay := float64(i.initialBackoff) * math.Pow(2, float64(attempt-1))
	if delay > float64(i.maxBackoff) {
		delay = float64(i.maxBackoff)
	}

	jitter := delay * 0.25
	delay = delay + (rand.Float64()*2-1)*jitter

	if delay < float64(i.initialBackoff) {
		delay = float64(i.initialBackoff)
	}
	return time.Duration(delay)
}
