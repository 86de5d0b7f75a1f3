package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/koji/nanobanana/internal/domain"
)

// fakeObjectStorage is an in-memory ObjectStorage for store tests.
type fakeObjectStorage struct {
	mu      sync.Mutex
	objects map[string][]byte

	failReads  bool
	failWrites bool
}

func newFakeObjectStorage() *fakeObjectStorage {
	return &fakeObjectStorage{objects: make(map[string][]byte)}
}

func (f *fakeObjectStorage) EnsureBucket(ctx context.Context) error { return nil }

func (f *fakeObjectStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if f.failWrites {
		return errors.New("upload refused")
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.objects[key] = data
	f.mu.Unlock()
	return nil
}

func (f *fakeObjectStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if f.failReads {
		return nil, errors.New("download refused")
	}
	f.mu.Lock()
	data, ok := f.objects[key]
	f.mu.Unlock()
	if !ok {
		return nil, errors.New("no such key")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeObjectStorage) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	delete(f.objects, key)
	f.mu.Unlock()
	return nil
}

func (f *fakeObjectStorage) Exists(ctx context.Context, key string) (bool, error) {
	if f.failReads {
		return false, errors.New("stat refused")
	}
	f.mu.Lock()
	_, ok := f.objects[key]
	f.mu.Unlock()
	return ok, nil
}

func (f *fakeObjectStorage) Count(ctx context.Context, prefix string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for key := range f.objects {
		if strings.HasPrefix(key, prefix) {
			count++
		}
	}
	return count, nil
}

func TestObjectStore_PutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := newFakeObjectStorage()
	s := NewObjectStore(fake, "results", time.Hour)

	fp := testFingerprint("object-roundtrip")
	s.Put(ctx, fp, &domain.Result{Mode: domain.ModeAnalysis, Parsed: false, RawText: "plain text"})

	got, ok := s.Get(ctx, fp)
	if !ok {
		t.Fatal("expected a hit after put")
	}
	if got.RawText != "plain text" || got.Mode != domain.ModeAnalysis {
		t.Errorf("unexpected result: %+v", got)
	}
	if s.Len(ctx) != 1 {
		t.Errorf("expected 1 blob, got %d", s.Len(ctx))
	}

	// Blob lives under the prefix, one file per fingerprint
	wantKey := "results/" + string(fp) + ".json"
	if _, ok := fake.objects[wantKey]; !ok {
		t.Errorf("expected blob at %q, have %v", wantKey, len(fake.objects))
	}
}

func TestObjectStore_MissOnAbsent(t *testing.T) {
	ctx := context.Background()
	s := NewObjectStore(newFakeObjectStorage(), "results", time.Hour)

	if _, ok := s.Get(ctx, testFingerprint("never-stored")); ok {
		t.Error("expected a miss for an absent fingerprint")
	}
}

func TestObjectStore_ReadErrorIsMiss(t *testing.T) {
	ctx := context.Background()
	fake := newFakeObjectStorage()
	s := NewObjectStore(fake, "results", time.Hour)

	fp := testFingerprint("flaky-backend")
	s.Put(ctx, fp, &domain.Result{Mode: domain.ModeGeneration, RawText: "cached"})

	fake.failReads = true
	if _, ok := s.Get(ctx, fp); ok {
		t.Error("storage errors must degrade to a miss")
	}
}

func TestObjectStore_WriteErrorIsDropped(t *testing.T) {
	ctx := context.Background()
	fake := newFakeObjectStorage()
	fake.failWrites = true
	s := NewObjectStore(fake, "results", time.Hour)

	fp := testFingerprint("unwritable")
	s.Put(ctx, fp, &domain.Result{Mode: domain.ModeAnalysis, RawText: "lost"})

	fake.failWrites = false
	if _, ok := s.Get(ctx, fp); ok {
		t.Error("failed write must not leave a retrievable entry")
	}
}

func TestObjectStore_TTLExpiration(t *testing.T) {
	ctx := context.Background()
	fake := newFakeObjectStorage()
	s := NewObjectStore(fake, "results", time.Hour)

	fp := testFingerprint("aging-blob")
	s.Put(ctx, fp, &domain.Result{Mode: domain.ModeAnalysis, RawText: "old"})

	// Age the stored envelope past the TTL
	key := "results/" + string(fp) + ".json"
	var row domain.CachedResult
	if err := json.Unmarshal(fake.objects[key], &row); err != nil {
		t.Fatalf("failed to decode stored blob: %v", err)
	}
	row.CreatedAt = time.Now().Add(-2 * time.Hour)
	aged, err := json.Marshal(&row)
	if err != nil {
		t.Fatalf("failed to re-encode blob: %v", err)
	}
	fake.objects[key] = aged

	if _, ok := s.Get(ctx, fp); ok {
		t.Error("expired blob should be a miss")
	}
	if _, ok := fake.objects[key]; ok {
		t.Error("expired blob should be deleted on read")
	}
}

func TestObjectStore_CorruptBlobIsRemoved(t *testing.T) {
	ctx := context.Background()
	fake := newFakeObjectStorage()
	s := NewObjectStore(fake, "results", time.Hour)

	fp := testFingerprint("corrupted")
	key := "results/" + string(fp) + ".json"
	fake.objects[key] = []byte("{not valid json")

	if _, ok := s.Get(ctx, fp); ok {
		t.Error("corrupt blob should be a miss")
	}
	if _, ok := fake.objects[key]; ok {
		t.Error("corrupt blob should be deleted on read")
	}
}

func TestObjectStore_DefaultPrefix(t *testing.T) {
	ctx := context.Background()
	fake := newFakeObjectStorage()
	s := NewObjectStore(fake, "", 0)

	fp := testFingerprint("default-prefix")
	s.Put(ctx, fp, &domain.Result{Mode: domain.ModeAnalysis})

	if _, ok := fake.objects["results/"+string(fp)+".json"]; !ok {
		t.Error("empty prefix should fall back to results/")
	}
	if _, ok := s.Get(ctx, fp); !ok {
		t.Error("zero TTL should disable expiry")
	}
}
