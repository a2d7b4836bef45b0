// Package datacache caches fetched dataset tables on disk.
//
// data.gov.in resources change rarely and fetch slowly; caching the decoded
// table as JSON makes repeat questions fast and keeps the platform happy. The
// CLI and the server may share one cache directory, so every read and write
// goes through a per-entry file lock.
package datacache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/samarthdata/samarth/internal/log"
	"github.com/samarthdata/samarth/internal/table"
)

// Cache is a TTL-based disk cache of tables keyed by resource ID.
type Cache struct {
	dir    string
	ttl    time.Duration
	logger log.Logger
}

// entry is the on-disk format.
type entry struct {
	FetchedAt time.Time  `json:"fetched_at"`
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
}

// New creates a cache rooted at dir. The directory is created if missing.
func New(dir string, ttl time.Duration, logger log.Logger) (*Cache, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &Cache{dir: dir, ttl: ttl, logger: logger}, nil
}

// Get returns the cached table for resourceID, or ok=false on miss, expiry,
// or a corrupt entry. Corrupt entries are removed.
func (c *Cache) Get(resourceID string) (*table.Table, bool) {
	path := c.entryPath(resourceID)

	lock := flock.New(path + ".lock")
	if err := lock.RLock(); err != nil {
		c.logger.Warn("cache read lock failed", "resource_id", resourceID, "error", err)
		return nil, false
	}
	defer unlock(lock, c.logger)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.logger.Warn("removing corrupt cache entry", "resource_id", resourceID, "error", err)
		_ = os.Remove(path)
		return nil, false
	}

	if c.ttl > 0 && time.Since(e.FetchedAt) > c.ttl {
		c.logger.Debug("cache entry expired", "resource_id", resourceID, "fetched_at", e.FetchedAt)
		return nil, false
	}

	return &table.Table{Columns: e.Columns, Rows: e.Rows}, true
}

// Put stores a table for resourceID. Writes go to a temp file first so a
// crashed process never leaves a half-written entry.
func (c *Cache) Put(resourceID string, t *table.Table) error {
	path := c.entryPath(resourceID)

	data, err := json.Marshal(entry{
		FetchedAt: time.Now().UTC(),
		Columns:   t.Columns,
		Rows:      t.Rows,
	})
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking cache entry: %w", err)
	}
	defer unlock(lock, c.logger)

	tmp, err := os.CreateTemp(c.dir, "entry-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("publishing cache entry: %w", err)
	}

	c.logger.Debug("cached table", "resource_id", resourceID, "rows", t.NumRows())
	return nil
}

// Invalidate removes the entry for resourceID. Missing entries are fine.
func (c *Cache) Invalidate(resourceID string) error {
	path := c.entryPath(resourceID)

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking cache entry: %w", err)
	}
	defer unlock(lock, c.logger)

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing cache entry: %w", err)
	}
	return nil
}

// entryPath maps a resource ID to its cache file. Resource IDs are UUIDs in
// practice, but anything unexpected is sanitized rather than trusted.
func (c *Cache) entryPath(resourceID string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, resourceID)
	return filepath.Join(c.dir, safe+".json")
}

func unlock(lock *flock.Flock, logger log.Logger) {
	if err := lock.Unlock(); err != nil {
		logger.Warn("cache unlock failed", "path", lock.Path(), "error", err)
	}
}
