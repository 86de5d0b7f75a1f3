package cache

import (
	"context"
	"errors"
	"time"

	"github.com/koji/nanobanana/internal/domain"
	"github.com/koji/nanobanana/internal/fingerprint"
	"github.com/koji/nanobanana/internal/logger"
	"github.com/koji/nanobanana/internal/repository"
	"gorm.io/gorm"
)

// DatabaseStore persists complete results through the result repository, so
// cached work survives restarts. Capacity is enforced by trimming the least
// recently accessed rows after each write; expiry is checked on read. Storage
// errors are logged and degrade to misses, never to request failures.
type DatabaseStore struct {
	repo    *repository.ResultRepository
	ttl     time.Duration
	maxSize int
}

// NewDatabaseStore creates a DatabaseStore with the given capacity and TTL.
// A ttl of zero or less disables expiry.
func NewDatabaseStore(repo *repository.ResultRepository, maxSize int, ttl time.Duration) *DatabaseStore {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &DatabaseStore{
		repo:    repo,
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get returns the result for a fingerprint. Expired rows are removed on read;
// a fresh hit updates the row's last-access time.
func (s *DatabaseStore) Get(ctx context.Context, fp fingerprint.Fingerprint) (*domain.Result, bool) {
	row, err := s.repo.Get(ctx, string(fp))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.CtxWarn(ctx, "cache read failed fingerprint=%s error=%v", fp.Short(), err)
		}
		return nil, false
	}

	if s.ttl > 0 && time.Since(row.CreatedAt) > s.ttl {
		if err := s.repo.Delete(ctx, string(fp)); err != nil {
			logger.CtxWarn(ctx, "expired cache row delete failed fingerprint=%s error=%v", fp.Short(), err)
		}
		return nil, false
	}

	result, err := row.DecodeResult()
	if err != nil {
		logger.CtxWarn(ctx, "cache row decode failed fingerprint=%s error=%v", fp.Short(), err)
		if derr := s.repo.Delete(ctx, string(fp)); derr != nil {
			logger.CtxWarn(ctx, "corrupt cache row delete failed fingerprint=%s error=%v", fp.Short(), derr)
		}
		return nil, false
	}

	if err := s.repo.Touch(ctx, string(fp), time.Now()); err != nil {
		logger.CtxWarn(ctx, "cache row touch failed fingerprint=%s error=%v", fp.Short(), err)
	}
	return result, true
}

// Put stores a result and trims the table back to capacity.
func (s *DatabaseStore) Put(ctx context.Context, fp fingerprint.Fingerprint, result *domain.Result) {
	row, err := domain.EncodeResult(string(fp), result)
	if err != nil {
		logger.CtxWarn(ctx, "cache row encode failed fingerprint=%s error=%v", fp.Short(), err)
		return
	}
	if err := s.repo.Upsert(ctx, row); err != nil {
		logger.CtxWarn(ctx, "cache write failed fingerprint=%s error=%v", fp.Short(), err)
		return
	}
	if err := s.repo.TrimToCapacity(ctx, s.maxSize); err != nil {
		logger.CtxWarn(ctx, "cache trim failed error=%v", err)
	}
}

// Len returns the number of stored rows.
func (s *DatabaseStore) Len(ctx context.Context) int {
	count, err := s.repo.Count(ctx)
	if err != nil {
		logger.CtxWarn(ctx, "cache count failed error=%v", err)
		return 0
	}
	return int(count)
}
