package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/koji/nanobanana/internal/cache"
	"github.com/koji/nanobanana/internal/domain"
	"github.com/koji/nanobanana/internal/fingerprint"
	"github.com/koji/nanobanana/internal/logger"
	"github.com/koji/nanobanana/internal/prompts"
)

// OrchestratorConfig sizes the worker pool and bounds each computation.
type OrchestratorConfig struct {
	Workers       int           // concurrent model invocations allowed
	InvokeTimeout time.Duration // end-to-end budget per computation, queueing included
}

// Orchestrator runs the request pipeline: validate, fingerprint, consult the
// cache, and on a miss drive prompt building, model invocation and
// normalization under a bounded worker pool. Cache hits and duplicate
// requests never consume a pool slot; the slot count is the only admission
// control in front of the upstream model.
type Orchestrator struct {
	cache         *cache.Cache
	caller        ModelCaller
	sem           *semaphore.Weighted
	invokeTimeout time.Duration
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(c *cache.Cache, caller ModelCaller, cfg *OrchestratorConfig) *Orchestrator {
	if cfg == nil {
		cfg = &OrchestratorConfig{}
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 8
	}
	invokeTimeout := cfg.InvokeTimeout
	if invokeTimeout <= 0 {
		invokeTimeout = 120 * time.Second
	}

	return &Orchestrator{
		cache:         c,
		caller:        caller,
		sem:           semaphore.NewWeighted(int64(workers)),
		invokeTimeout: invokeTimeout,
	}
}

// Handle serves one request. The first caller for a fingerprint computes the
// result; concurrent duplicates wait for that computation and receive the
// same result. A caller that abandons its wait (context canceled) does not
// cancel the computation: it still completes and populates the cache for
// later requests.
func (o *Orchestrator) Handle(ctx context.Context, req *domain.Request) (*domain.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	params := req.EffectiveParams()
	fp := fingerprint.Compute(req.Image, req.Mode, params)
	ctx = logger.SetFingerprint(ctx, fp.Short())
	ctx = logger.SetMode(ctx, string(req.Mode))

	outcome, result, token := o.cache.GetOrReserve(ctx, fp)
	switch outcome {
	case cache.OutcomeHit:
		logger.CtxInfo(ctx, "serving cached result")
		return result, nil
	case cache.OutcomeWait:
		logger.CtxDebug(ctx, "joining in-flight computation")
		return o.cache.WaitFor(ctx, token)
	}

	logger.CtxInfo(ctx, "cache miss, starting computation image_bytes=%d params=%d", len(req.Image), len(params))

	// The computation runs detached from the caller: only its own deadline
	// can end it, so a disconnected client never wastes the model call.
	go o.compute(context.WithoutCancel(ctx), req, params, token)

	return o.cache.WaitFor(ctx, token)
}

// Stats reports cache activity for the stats endpoint.
func (o *Orchestrator) Stats(ctx context.Context) cache.Stats {
	return o.cache.Stats(ctx)
}

// compute is the reservation holder's work: acquire a pool slot, build the
// prompt, invoke the model, normalize, and resolve the token. It always
// resolves the token exactly once.
func (o *Orchestrator) compute(ctx context.Context, req *domain.Request, params map[string]string, token *cache.Token) {
	ctx, cancel := context.WithTimeout(ctx, o.invokeTimeout)
	defer cancel()

	start := time.Now()

	if err := o.sem.Acquire(ctx, 1); err != nil {
		logger.CtxWarn(ctx, "timed out waiting for a worker slot after %v", time.Since(start))
		o.cache.Fail(token, &domain.TimeoutError{Err: err})
		return
	}
	defer o.sem.Release(1)

	prompt := buildPrompt(req.Mode, params)

	raw, err := o.caller.Invoke(ctx, req.Mode, req.Image, req.ImageMIME, prompt)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
			err = &domain.TimeoutError{Err: err}
		}
		logger.CtxWarn(ctx, "computation failed duration_ms=%d error=%v", time.Since(start).Milliseconds(), err)
		o.cache.Fail(token, err)
		return
	}

	result := Normalize(req.Mode, raw)
	o.cache.Complete(ctx, token, result)
	logger.CtxInfo(ctx, "computation complete parsed=%v images=%d duration_ms=%d",
		result.Parsed, len(result.Images), time.Since(start).Milliseconds())
}

// buildPrompt maps a request's mode and effective parameters to the model
// instruction.
func buildPrompt(mode domain.Mode, params map[string]string) string {
	if mode == domain.ModeGeneration {
		return prompts.BuildGenerationPrompt(params)
	}
	return prompts.BuildAnalysisPrompt(params)
}
