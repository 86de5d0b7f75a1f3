package repository

import (
	"context"
	"time"

	"github.com/koji/nanobanana/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResultRepository handles cached result rows.
type ResultRepository struct {
	db *gorm.DB
}

// NewResultRepository creates a new ResultRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *ResultRepository: repository instance bound to db.
func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Get retrieves a cached result row by fingerprint.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - fingerprint: request fingerprint (hex digest).
// Returns:
//   - *domain.CachedResult: row if found.
//   - error: gorm.ErrRecordNotFound on miss, other non-nil on failure.
func (r *ResultRepository) Get(ctx context.Context, fingerprint string) (*domain.CachedResult, error) {
	var row domain.CachedResult
	if err := r.db.WithContext(ctx).First(&row, "fingerprint = ?", fingerprint).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Upsert creates or replaces a cached result row keyed by fingerprint.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - row: cached result row to persist.
// Returns:
//   - error: non-nil if the upsert fails.
func (r *ResultRepository) Upsert(ctx context.Context, row *domain.CachedResult) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "fingerprint"}},
		UpdateAll: true,
	}).Create(row).Error
}

// Touch updates the last-access timestamp of a row.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - fingerprint: request fingerprint of the row to touch.
//   - at: new last-access time.
// Returns:
//   - error: non-nil if the update fails.
func (r *ResultRepository) Touch(ctx context.Context, fingerprint string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.CachedResult{}).
		Where("fingerprint = ?", fingerprint).
		Update("last_access", at).Error
}

// Delete removes a cached result row by fingerprint.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - fingerprint: request fingerprint of the row to delete.
// Returns:
//   - error: non-nil if the delete fails.
func (r *ResultRepository) Delete(ctx context.Context, fingerprint string) error {
	return r.db.WithContext(ctx).Delete(&domain.CachedResult{}, "fingerprint = ?", fingerprint).Error
}

// Count counts cached result rows.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - int64: number of rows.
//   - error: non-nil if the query fails.
func (r *ResultRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.CachedResult{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteExpired removes rows created before the cutoff.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - cutoff: rows created before this time are removed.
// Returns:
//   - int64: number of rows removed.
//   - error: non-nil if the delete fails.
func (r *ResultRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&domain.CachedResult{}, "created_at < ?", cutoff)
	return res.RowsAffected, res.Error
}

// TrimToCapacity removes least-recently-accessed rows until at most capacity remain.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - capacity: maximum number of rows to keep.
// Returns:
//   - error: non-nil if the trim fails.
func (r *ResultRepository) TrimToCapacity(ctx context.Context, capacity int) error {
	if capacity <= 0 {
		return nil
	}
	count, err := r.Count(ctx)
	if err != nil {
		return err
	}
	excess := count - int64(capacity)
	if excess <= 0 {
		return nil
	}

	var victims []string
	if err := r.db.WithContext(ctx).
		Model(&domain.CachedResult{}).
		Order("last_access ASC").
		Limit(int(excess)).
		Pluck("fingerprint", &victims).Error; err != nil {
		return err
	}
	if len(victims) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Delete(&domain.CachedResult{}, "fingerprint IN ?", victims).Error
}
