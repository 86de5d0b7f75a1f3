// Package cache provides the content-addressed result cache. It maps request
// fingerprints to computed results and guarantees at most one concurrent
// model invocation per fingerprint: the first caller for an uncached
// fingerprint reserves the computation, concurrent duplicates wait on the
// same in-flight token, and failures are never stored.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/koji/nanobanana/internal/domain"
	"github.com/koji/nanobanana/internal/fingerprint"
)

// Outcome is the result of a GetOrReserve call.
type Outcome int

const (
	// OutcomeHit means a complete result was found in the store.
	OutcomeHit Outcome = iota
	// OutcomeReserved means the caller now owns the computation for this
	// fingerprint and must finish it with Complete or Fail.
	OutcomeReserved
	// OutcomeWait means another caller is already computing this
	// fingerprint; wait on the returned token.
	OutcomeWait
)

// String returns the outcome name for logging.
func (o Outcome) String() string {
	switch o {
	case OutcomeHit:
		return "hit"
	case OutcomeReserved:
		return "reserved"
	case OutcomeWait:
		return "wait"
	}
	return "unknown"
}

// Store holds complete results. Implementations apply their own eviction
// policy (capacity, age) and must never report an error to callers: a failed
// read is a miss, a failed write is dropped. In-flight computations never
// reach the store, so eviction only ever removes complete entries.
type Store interface {
	// Get returns the result for a fingerprint, or false on miss.
	Get(ctx context.Context, fp fingerprint.Fingerprint) (*domain.Result, bool)
	// Put stores a complete result for a fingerprint.
	Put(ctx context.Context, fp fingerprint.Fingerprint, result *domain.Result)
	// Len returns the number of complete entries.
	Len(ctx context.Context) int
}

// Token identifies one in-flight computation. The reservation holder resolves
// it exactly once via Complete or Fail; waiters block on it through WaitFor.
type Token struct {
	fp        fingerprint.Fingerprint
	createdAt time.Time

	once   sync.Once
	done   chan struct{}
	result *domain.Result
	err    error
}

// Fingerprint returns the fingerprint this token computes.
func (t *Token) Fingerprint() fingerprint.Fingerprint { return t.fp }

// Stats is a point-in-time snapshot of cache activity.
type Stats struct {
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Waits       int64 `json:"waits"`
	Completions int64 `json:"completions"`
	Failures    int64 `json:"failures"`
	InFlight    int   `json:"in_flight"`
	Entries     int   `json:"entries"`
}

// Cache coordinates result reuse across concurrent requests. Complete results
// live in the Store; in-flight computations live only in the arena map, keyed
// by fingerprint, so they can never be evicted mid-computation.
type Cache struct {
	store Store

	mu       sync.Mutex
	inflight map[fingerprint.Fingerprint]*Token

	hits        int64
	misses      int64
	waits       int64
	completions int64
	failures    int64
}

// New creates a Cache on top of a result store.
func New(store Store) *Cache {
	return &Cache{
		store:    store,
		inflight: make(map[fingerprint.Fingerprint]*Token),
	}
}

// GetOrReserve atomically resolves a fingerprint to one of three outcomes:
// a complete cached result (OutcomeHit), ownership of the computation
// (OutcomeReserved, token non-nil), or a wait handle on someone else's
// in-flight computation (OutcomeWait, token non-nil).
//
// The arena lock is never held across store access: the caller is inserted
// as in-flight first, then the store is consulted. Duplicates arriving in
// between simply wait on the token, which a store hit resolves immediately.
func (c *Cache) GetOrReserve(ctx context.Context, fp fingerprint.Fingerprint) (Outcome, *domain.Result, *Token) {
	c.mu.Lock()
	if t, ok := c.inflight[fp]; ok {
		c.waits++
		c.mu.Unlock()
		return OutcomeWait, nil, t
	}
	t := &Token{
		fp:        fp,
		createdAt: time.Now(),
		done:      make(chan struct{}),
	}
	c.inflight[fp] = t
	c.mu.Unlock()

	if result, ok := c.store.Get(ctx, fp); ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		c.resolve(t, result, nil)
		return OutcomeHit, result, nil
	}

	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
	return OutcomeReserved, nil, t
}

// Complete stores the computed result and releases all waiters with it. Only
// the reservation holder may call it, exactly once per token.
func (c *Cache) Complete(ctx context.Context, t *Token, result *domain.Result) {
	c.store.Put(ctx, t.fp, result)
	c.mu.Lock()
	c.completions++
	c.mu.Unlock()
	c.resolve(t, result, nil)
}

// Fail releases all waiters with the error without storing anything. The next
// request for this fingerprint gets a fresh computation.
func (c *Cache) Fail(t *Token, err error) {
	c.mu.Lock()
	c.failures++
	c.mu.Unlock()
	c.resolve(t, nil, err)
}

// WaitFor blocks until the token resolves or the caller's context ends.
// Abandoning a wait has no effect on the in-flight computation.
func (c *Cache) WaitFor(ctx context.Context, t *Token) (*domain.Result, error) {
	select {
	case <-t.done:
		if t.err != nil {
			return nil, t.err
		}
		return t.result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stats returns a snapshot of cache counters.
func (c *Cache) Stats(ctx context.Context) Stats {
	c.mu.Lock()
	s := Stats{
		Hits:        c.hits,
		Misses:      c.misses,
		Waits:       c.waits,
		Completions: c.completions,
		Failures:    c.failures,
		InFlight:    len(c.inflight),
	}
	c.mu.Unlock()
	s.Entries = c.store.Len(ctx)
	return s
}

// resolve publishes the token's outcome, removes it from the arena and wakes
// all waiters. The store write, when there is one, happens before the
// fingerprint leaves the arena so a new caller always sees either the
// in-flight token or the stored result.
func (c *Cache) resolve(t *Token, result *domain.Result, err error) {
	t.once.Do(func() {
		t.result = result
		t.err = err
		c.mu.Lock()
		if c.inflight[t.fp] == t {
			delete(c.inflight, t.fp)
		}
		c.mu.Unlock()
		close(t.done)
	})
}
