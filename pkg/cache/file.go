package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const fileSuffix = ".cache.json"

// DefaultDir returns the directory used by the file store when none is configured.
func DefaultDir() string {
	return filepath.Join(os.TempDir(), "ovh-cli-cache")
}

// FileStore keeps one JSON file per entry in a single directory.
type FileStore struct {
	dir string
	now Clock
}

// NewFileStore creates the directory if needed and returns a store rooted at it.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileStore{dir: dir, now: time.Now}, nil
}

// WithClock replaces the time source used for expiration.
func (s *FileStore) WithClock(now Clock) *FileStore {
	s.now = now
	return s
}

// Dir returns the directory holding the cache files.
func (s *FileStore) Dir() string {
	return s.dir
}

// GetItem implements Store.
func (s *FileStore) GetItem(ctx context.Context, key string) (*Entry, error) {
	entry := &Entry{Key: key, now: s.now}

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			CacheMisses.Inc()
			return entry, nil
		}
		CacheErrors.WithLabelValues("get").Inc()
		return entry, fmt.Errorf("read cache file: %w", err)
	}

	var stored Entry
	if err := json.Unmarshal(data, &stored); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return entry, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	entry.Value = stored.Value
	entry.Expires = stored.Expires
	entry.hit = true

	if entry.IsExpired() {
		// Expired entries are removed lazily on read
		_ = os.Remove(s.path(key))
		entry.hit = false
		CacheMisses.Inc()
		return entry, nil
	}

	if entry.IsHit() {
		CacheHits.WithLabelValues("file").Inc()
	} else {
		CacheMisses.Inc()
	}
	return entry, nil
}

// Save implements Store.
// The file is written to a temporary name first and renamed into place so
// readers never see a partial entry.
func (s *FileStore) Save(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	data, err := json.Marshal(entry)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, entry.Key+".tmp*")
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("create temp cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(entry.Key)); err != nil {
		os.Remove(tmp.Name())
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("rename cache file: %w", err)
	}

	entry.hit = true
	CacheSize.WithLabelValues("file").Add(float64(len(data)))
	return nil
}

// DeleteItem implements Store.
func (s *FileStore) DeleteItem(ctx context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("remove cache file: %w", err)
	}
	return nil
}

// Clear implements Store. Only files created by the store are removed.
func (s *FileStore) Clear(ctx context.Context) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		CacheErrors.WithLabelValues("clear").Inc()
		return fmt.Errorf("list cache dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileSuffix) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			CacheErrors.WithLabelValues("clear").Inc()
			return fmt.Errorf("remove cache file: %w", err)
		}
	}
	CacheSize.WithLabelValues("file").Set(0)
	return nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+fileSuffix)
}
