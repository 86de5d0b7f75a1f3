package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/koji/nanobanana/internal/domain"
)

// fakeCaller counts invocations and delegates to fn, which sees the attempt
// number starting at 1.
type fakeCaller struct {
	mu    sync.Mutex
	calls int
	fn    func(ctx context.Context, call int) (*domain.RawOutput, error)
}

func (f *fakeCaller) Invoke(ctx context.Context, mode domain.Mode, image []byte, imageMIME string, prompt string) (*domain.RawOutput, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()
	return f.fn(ctx, call)
}

func (f *fakeCaller) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestInvoker_TransientExhaustsCeiling(t *testing.T) {
	fake := &fakeCaller{fn: func(ctx context.Context, call int) (*domain.RawOutput, error) {
		return nil, &domain.TransientUpstreamError{StatusCode: 503, Message: "overloaded"}
	}}
	inv := NewInvoker(fake, &InvokerConfig{MaxRetries: 3, InitialBackoff: time.Millisecond, MaxBackoff: 4 * time.Millisecond})

	_, err := inv.Invoke(context.Background(), domain.ModeAnalysis, []byte{1}, "image/png", "prompt")
	if err == nil {
		t.Fatal("exhausted retries must fail")
	}
	if got := fake.callCount(); got != 4 {
		t.Errorf("ceiling of 3 retries means 4 attempts, got %d", got)
	}
	if !domain.IsTransient(err) {
		t.Errorf("exhaustion error should still classify as transient: %v", err)
	}
}

func TestInvoker_FatalFailsImmediately(t *testing.T) {
	fake := &fakeCaller{fn: func(ctx context.Context, call int) (*domain.RawOutput, error) {
		return nil, &domain.FatalUpstreamError{StatusCode: 400, Message: "invalid argument"}
	}}
	inv := NewInvoker(fake, &InvokerConfig{MaxRetries: 3, InitialBackoff: time.Millisecond})

	_, err := inv.Invoke(context.Background(), domain.ModeAnalysis, []byte{1}, "image/png", "prompt")
	if err == nil {
		t.Fatal("fatal rejection must fail")
	}
	if got := fake.callCount(); got != 1 {
		t.Errorf("fatal errors must not be retried, got %d attempts", got)
	}
	if !domain.IsFatalUpstream(err) {
		t.Errorf("classification lost: %v", err)
	}
}

func TestInvoker_RecoversAfterTransient(t *testing.T) {
	fake := &fakeCaller{fn: func(ctx context.Context, call int) (*domain.RawOutput, error) {
		if call <= 2 {
			return nil, &domain.TransientUpstreamError{StatusCode: 429, Message: "rate limited"}
		}
		return &domain.RawOutput{Text: "ok"}, nil
	}}
	inv := NewInvoker(fake, &InvokerConfig{MaxRetries: 3, InitialBackoff: time.Millisecond, MaxBackoff: 4 * time.Millisecond})

	out, err := inv.Invoke(context.Background(), domain.ModeAnalysis, []byte{1}, "image/png", "prompt")
	if err != nil {
		t.Fatalf("should recover once the upstream does: %v", err)
	}
	if out.Text != "ok" {
		t.Errorf("got %q", out.Text)
	}
	if got := fake.callCount(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestInvoker_ContextEndsBackoffWait(t *testing.T) {
	fake := &fakeCaller{fn: func(ctx context.Context, call int) (*domain.RawOutput, error) {
		return nil, &domain.TransientUpstreamError{StatusCode: 500, Message: "boom"}
	}}
	inv := NewInvoker(fake, &InvokerConfig{MaxRetries: 5, InitialBackoff: 5 * time.Second, MaxBackoff: 10 * time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := inv.Invoke(ctx, domain.ModeAnalysis, []byte{1}, "image/png", "prompt")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want deadline error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("backoff wait ignored the context, took %v", elapsed)
	}
	if got := fake.callCount(); got != 1 {
		t.Errorf("no attempt should run after the context ends, got %d", got)
	}
}

func TestInvoker_ZeroCeilingSingleAttempt(t *testing.T) {
	fake := &fakeCaller{fn: func(ctx context.Context, call int) (*domain.RawOutput, error) {
		return nil, &domain.TransientUpstreamError{StatusCode: 503, Message: "overloaded"}
	}}
	inv := NewInvoker(fake, &InvokerConfig{MaxRetries: 0, InitialBackoff: time.Millisecond})

	_, err := inv.Invoke(context.Background(), domain.ModeGeneration, []byte{1}, "image/png", "prompt")
	if err == nil {
		t.Fatal("single failed attempt must fail the call")
	}
	if got := fake.callCount(); got != 1 {
		t.Errorf("ceiling 0 means exactly one attempt, got %d", got)
	}
}
