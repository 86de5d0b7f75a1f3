package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/koji/nanobanana/internal/cache"
	"github.com/koji/nanobanana/internal/domain"
)

func newTestOrchestrator(fake *fakeCaller, workers int, timeout time.Duration) *Orchestrator {
	c := cache.New(cache.NewMemoryStore(100, time.Hour))
	return NewOrchestrator(c, fake, &OrchestratorConfig{Workers: workers, InvokeTimeout: timeout})
}

func analysisRequest(image string) *domain.Request {
	return &domain.Request{
		Mode:      domain.ModeAnalysis,
		Image:     []byte(image),
		ImageMIME: "image/png",
		Params:    map[string]string{domain.ParamTimeframe: "4h"},
	}
}

func parsedAnalysis(ctx context.Context, call int) (*domain.RawOutput, error) {
	return &domain.RawOutput{Text: `{"bias": "bullish", "confidence": 8}`}, nil
}

func TestOrchestrator_CachesByFingerprint(t *testing.T) {
	ctx := context.Background()
	fake := &fakeCaller{fn: parsedAnalysis}
	o := newTestOrchestrator(fake, 4, time.Second)

	first, err := o.Handle(ctx, analysisRequest("chart-bytes"))
	if err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	if !first.Parsed || first.Analysis == nil || first.Analysis.Bias != "bullish" {
		t.Fatalf("unexpected result: %+v", first)
	}

	second, err := o.Handle(ctx, analysisRequest("chart-bytes"))
	if err != nil {
		t.Fatalf("second request failed: %v", err)
	}
	if got := fake.callCount(); got != 1 {
		t.Errorf("identical request must be served from cache, got %d model calls", got)
	}
	if second.Analysis.Bias != first.Analysis.Bias {
		t.Error("cached result should match the computed one")
	}

	other := analysisRequest("chart-bytes")
	other.Params[domain.ParamTimeframe] = "1h"
	if _, err := o.Handle(ctx, other); err != nil {
		t.Fatalf("changed-parameter request failed: %v", err)
	}
	if got := fake.callCount(); got != 2 {
		t.Errorf("a changed parameter must trigger a fresh computation, got %d calls", got)
	}
}

func TestOrchestrator_ConcurrentDuplicatesShareOneCall(t *testing.T) {
	fake := &fakeCaller{fn: func(ctx context.Context, call int) (*domain.RawOutput, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(30 * time.Millisecond):
		}
		return &domain.RawOutput{Text: `{"bias": "neutral"}`}, nil
	}}
	o := newTestOrchestrator(fake, 4, time.Second)

	const callers = 10
	var wg sync.WaitGroup
	results := make([]*domain.Result, callers)
	errs := make([]error, callers)

	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = o.Handle(context.Background(), analysisRequest("same-chart"))
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d failed: %v", i, errs[i])
		}
		if results[i] == nil || results[i].Analysis == nil || results[i].Analysis.Bias != "neutral" {
			t.Fatalf("caller %d got wrong result: %+v", i, results[i])
		}
	}
	if got := fake.callCount(); got != 1 {
		t.Errorf("concurrent duplicates must share one model call, got %d", got)
	}
}

func TestOrchestrator_ValidationBeforeModel(t *testing.T) {
	ctx := context.Background()
	fake := &fakeCaller{fn: parsedAnalysis}
	o := newTestOrchestrator(fake, 4, time.Second)

	testCases := []struct {
		name string
		req  *domain.Request
	}{
		{
			name: "unknown mode",
			req:  &domain.Request{Mode: "resize", Image: []byte{1}},
		},
		{
			name: "empty image",
			req:  &domain.Request{Mode: domain.ModeAnalysis, Image: nil},
		},
		{
			name: "unsupported timeframe",
			req: &domain.Request{
				Mode:   domain.ModeAnalysis,
				Image:  []byte{1},
				Params: map[string]string{domain.ParamTimeframe: "7h"},
			},
		},
		{
			name: "generation-only parameter on analysis",
			req: &domain.Request{
				Mode:   domain.ModeAnalysis,
				Image:  []byte{1},
				Params: map[string]string{domain.ParamStyle: "anime"},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := o.Handle(ctx, tc.req)
			if !domain.IsValidation(err) {
				t.Fatalf("want validation error, got %v", err)
			}
		})
	}
	if got := fake.callCount(); got != 0 {
		t.Errorf("invalid requests must never reach the model, got %d calls", got)
	}
}

func TestOrchestrator_FailureNotCached(t *testing.T) {
	ctx := context.Background()
	fake := &fakeCaller{fn: func(_ context.Context, call int) (*domain.RawOutput, error) {
		if call == 1 {
			return nil, &domain.FatalUpstreamError{StatusCode: 400, Message: "blocked"}
		}
		return &domain.RawOutput{Text: `{"bias": "bearish"}`}, nil
	}}
	o := newTestOrchestrator(fake, 4, time.Second)

	_, err := o.Handle(ctx, analysisRequest("flaky-chart"))
	if !domain.IsFatalUpstream(err) {
		t.Fatalf("want the upstream rejection, got %v", err)
	}

	result, err := o.Handle(ctx, analysisRequest("flaky-chart"))
	if err != nil {
		t.Fatalf("retry after failure should reach the model again: %v", err)
	}
	if result.Analysis == nil || result.Analysis.Bias != "bearish" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if got := fake.callCount(); got != 2 {
		t.Errorf("expected a fresh model call after the failure, got %d total", got)
	}

	if _, err := o.Handle(ctx, analysisRequest("flaky-chart")); err != nil {
		t.Fatalf("third request failed: %v", err)
	}
	if got := fake.callCount(); got != 2 {
		t.Errorf("success must be cached, got %d calls", got)
	}
}

func TestOrchestrator_SlowModelMapsToTimeout(t *testing.T) {
	fake := &fakeCaller{fn: func(ctx context.Context, call int) (*domain.RawOutput, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
		return &domain.RawOutput{Text: "too late"}, nil
	}}
	o := newTestOrchestrator(fake, 4, 30*time.Millisecond)

	_, err := o.Handle(context.Background(), analysisRequest("slow-chart"))
	if !domain.IsTimeout(err) {
		t.Fatalf("want timeout classification, got %v", err)
	}
}

func TestOrchestrator_AbandonedCallerStillPopulatesCache(t *testing.T) {
	fake := &fakeCaller{fn: func(ctx context.Context, call int) (*domain.RawOutput, error) {
		time.Sleep(40 * time.Millisecond)
		return &domain.RawOutput{Text: `{"bias": "bullish"}`}, nil
	}}
	o := newTestOrchestrator(fake, 4, time.Second)

	callerCtx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := o.Handle(callerCtx, analysisRequest("abandoned-chart"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("abandoning caller should see its own deadline, got %v", err)
	}

	deadline := time.After(2 * time.Second)
	for fake.callCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("computation never started")
		case <-time.After(5 * time.Millisecond):
		}
	}
	time.Sleep(100 * time.Millisecond)

	result, err := o.Handle(context.Background(), analysisRequest("abandoned-chart"))
	if err != nil {
		t.Fatalf("later request failed: %v", err)
	}
	if !result.Parsed {
		t.Fatal("later request should get the completed result")
	}
	if got := fake.callCount(); got != 1 {
		t.Errorf("the abandoned computation should have been reused, got %d calls", got)
	}
}

func TestOrchestrator_PoolQueuesDistinctRequests(t *testing.T) {
	fake := &fakeCaller{fn: func(ctx context.Context, call int) (*domain.RawOutput, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(20 * time.Millisecond):
		}
		return &domain.RawOutput{Text: `{"bias": "neutral"}`}, nil
	}}
	o := newTestOrchestrator(fake, 1, time.Second)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = o.Handle(context.Background(), analysisRequest("chart-"+string(rune('a'+i))))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("request %d failed despite queueing: %v", i, err)
		}
	}
	if got := fake.callCount(); got != 2 {
		t.Errorf("both fingerprints must compute, got %d calls", got)
	}
}
