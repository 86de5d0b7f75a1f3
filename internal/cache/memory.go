package cache

import (
	"context"
	"sync"
	"time"

	"github.com/koji/nanobanana/internal/domain"
	"github.com/koji/nanobanana/internal/fingerprint"
)

type storedResult struct {
	result   *domain.Result
	storedAt time.Time
}

// MemoryStore is an in-process LRU store with age-based expiry. A ttl of zero
// or less disables expiry.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[fingerprint.Fingerprint]*storedResult
	ttl     time.Duration
	maxSize int
	order   []fingerprint.Fingerprint // LRU order (oldest first)
}

// NewMemoryStore creates a MemoryStore with the given capacity and TTL.
func NewMemoryStore(maxSize int, ttl time.Duration) *MemoryStore {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &MemoryStore{
		entries: make(map[fingerprint.Fingerprint]*storedResult),
		ttl:     ttl,
		maxSize: maxSize,
		order:   make([]fingerprint.Fingerprint, 0, maxSize),
	}
}

// Get returns the result for a fingerprint. Expired entries are removed on
// read; a fresh hit moves the entry to the recent end of the LRU order.
func (s *MemoryStore) Get(_ context.Context, fp fingerprint.Fingerprint) (*domain.Result, bool) {
	s.mu.RLock()
	cached, ok := s.entries[fp]
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if s.ttl > 0 && time.Since(cached.storedAt) > s.ttl {
		s.mu.Lock()
		delete(s.entries, fp)
		s.removeFromOrder(fp)
		s.mu.Unlock()
		return nil, false
	}

	// Move to end of order (most recently used)
	s.mu.Lock()
	s.removeFromOrder(fp)
	s.order = append(s.order, fp)
	s.mu.Unlock()

	return cached.result, true
}

// Put stores a result, evicting the least recently used entries at capacity.
func (s *MemoryStore) Put(_ context.Context, fp fingerprint.Fingerprint, result *domain.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Evict oldest if at capacity
	for len(s.entries) >= s.maxSize && len(s.order) > 0 {
		if _, exists := s.entries[fp]; exists {
			break
		}
		oldest := s.order[0]
		delete(s.entries, oldest)
		s.order = s.order[1:]
	}

	s.entries[fp] = &storedResult{
		result:   result,
		storedAt: time.Now(),
	}

	s.removeFromOrder(fp)
	s.order = append(s.order, fp)
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore) removeFromOrder(fp fingerprint.Fingerprint) {
	for i, k := range s.order {
		if k == fp {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
