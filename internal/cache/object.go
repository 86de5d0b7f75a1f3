package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/koji/nanobanana/internal/domain"
	"github.com/koji/nanobanana/internal/fingerprint"
	"github.com/koji/nanobanana/internal/logger"
	"github.com/koji/nanobanana/internal/storage"
)

// ObjectStore persists complete results as one JSON blob per fingerprint in
// S3-compatible object storage, so cached work is shared across instances.
// Expiry is checked on read; capacity is left to bucket lifecycle rules since
// object stores have no cheap least-recently-used ordering. Storage errors
// are logged and degrade to misses, never to request failures.
type ObjectStore struct {
	storage storage.ObjectStorage
	prefix  string
	ttl     time.Duration
}

// NewObjectStore creates an ObjectStore writing under the given key prefix.
// A ttl of zero or less disables expiry.
func NewObjectStore(st storage.ObjectStorage, prefix string, ttl time.Duration) *ObjectStore {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = "results"
	}
	return &ObjectStore{
		storage: st,
		prefix:  prefix,
		ttl:     ttl,
	}
}

func (s *ObjectStore) key(fp fingerprint.Fingerprint) string {
	return s.prefix + "/" + string(fp) + ".json"
}

// Get returns the result for a fingerprint. Expired and unreadable blobs are
// removed on read.
func (s *ObjectStore) Get(ctx context.Context, fp fingerprint.Fingerprint) (*domain.Result, bool) {
	key := s.key(fp)

	exists, err := s.storage.Exists(ctx, key)
	if err != nil {
		logger.CtxWarn(ctx, "cache blob stat failed fingerprint=%s error=%v", fp.Short(), err)
		return nil, false
	}
	if !exists {
		return nil, false
	}

	reader, err := s.storage.Download(ctx, key)
	if err != nil {
		logger.CtxWarn(ctx, "cache blob read failed fingerprint=%s error=%v", fp.Short(), err)
		return nil, false
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		logger.CtxWarn(ctx, "cache blob read failed fingerprint=%s error=%v", fp.Short(), err)
		return nil, false
	}

	var row domain.CachedResult
	if err := json.Unmarshal(data, &row); err != nil {
		logger.CtxWarn(ctx, "cache blob decode failed fingerprint=%s error=%v", fp.Short(), err)
		s.remove(ctx, fp, key)
		return nil, false
	}

	if s.ttl > 0 && time.Since(row.CreatedAt) > s.ttl {
		s.remove(ctx, fp, key)
		return nil, false
	}

	result, err := row.DecodeResult()
	if err != nil {
		logger.CtxWarn(ctx, "cache blob payload decode failed fingerprint=%s error=%v", fp.Short(), err)
		s.remove(ctx, fp, key)
		return nil, false
	}
	return result, true
}

// Put stores a result as a JSON blob keyed by fingerprint.
func (s *ObjectStore) Put(ctx context.Context, fp fingerprint.Fingerprint, result *domain.Result) {
	row, err := domain.EncodeResult(string(fp), result)
	if err != nil {
		logger.CtxWarn(ctx, "cache blob encode failed fingerprint=%s error=%v", fp.Short(), err)
		return
	}
	data, err := json.Marshal(row)
	if err != nil {
		logger.CtxWarn(ctx, "cache blob encode failed fingerprint=%s error=%v", fp.Short(), err)
		return
	}

	err = s.storage.Upload(ctx, s.key(fp), bytes.NewReader(data), int64(len(data)), "application/json")
	if err != nil {
		logger.CtxWarn(ctx, "cache blob write failed fingerprint=%s error=%v", fp.Short(), err)
	}
}

// Len returns the number of stored blobs under the prefix.
func (s *ObjectStore) Len(ctx context.Context) int {
	count, err := s.storage.Count(ctx, s.prefix+"/")
	if err != nil {
		logger.CtxWarn(ctx, "cache blob count failed error=%v", err)
		return 0
	}
	return count
}

func (s *ObjectStore) remove(ctx context.Context, fp fingerprint.Fingerprint, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		logger.CtxWarn(ctx, "stale cache blob delete failed fingerprint=%s error=%v", fp.Short(), err)
	}
}
