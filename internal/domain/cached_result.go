package domain

import (
	"encoding/json"
	"time"
)

// CachedResult is the database row backing the persistent cache store.
// Payload is the JSON-encoded Result; LastAccess drives LRU pruning and
// CreatedAt drives TTL expiry.
type CachedResult struct {
	Fingerprint string    `gorm:"type:text;primaryKey" json:"fingerprint"`
	Mode        string    `gorm:"type:text;index:idx_cached_results_mode" json:"mode"`
	Payload     string    `gorm:"type:text" json:"payload"`
	CreatedAt   time.Time `json:"created_at"`
	LastAccess  time.Time `gorm:"index:idx_cached_results_access" json:"last_access"`
}

// TableName returns the database table name for CachedResult.
func (CachedResult) TableName() string {
	return "cached_results"
}

// EncodeResult serializes a Result into a CachedResult row.
// Parameters:
//   - fp: fingerprint key.
//   - result: normalized result to persist.
// Returns:
//   - *CachedResult: row ready for insertion.
//   - error: non-nil if the payload cannot be encoded.
func EncodeResult(fp string, result *Result) (*CachedResult, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &CachedResult{
		Fingerprint: fp,
		Mode:        string(result.Mode),
		Payload:     string(payload),
		CreatedAt:   now,
		LastAccess:  now,
	}, nil
}

// DecodeResult deserializes the stored payload back into a Result.
// Parameters: none.
// Returns:
//   - *Result: decoded result.
//   - error: non-nil if the payload is corrupt.
func (c *CachedResult) DecodeResult() (*Result, error) {
	var result Result
	if err := json.Unmarshal([]byte(c.Payload), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
