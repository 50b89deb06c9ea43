package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ydsf-surabaya/aidboard/internal/model"
)

// DatasetCache stores parsed datasets keyed by file path. An entry is only
// served while its parse fingerprint (see source.Options.Fingerprint),
// modification time and size all match the request.
// Returned datasets are shared and must not be modified.
type DatasetCache interface {
	Get(path, fingerprint string, mtimeNs, size int64) (*model.Dataset, bool)
	Put(path, fingerprint string, mtimeNs, size int64, ds *model.Dataset) error
}

// DefaultMemoryEntries is the LRU capacity used when none is configured.
const DefaultMemoryEntries = 16

type memoryEntry struct {
	fingerprint string
	mtimeNs     int64
	size        int64
	ds          *model.Dataset
}

// MemoryCache is an in-process LRU DatasetCache.
type MemoryCache struct {
	lru *lru.Cache[string, memoryEntry]
}

// NewMemoryCache creates an LRU cache holding up to size datasets.
func NewMemoryCache(size int) (*MemoryCache, error) {
	if size <= 0 {
		size = DefaultMemoryEntries
	}
	c, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, fmt.Errorf("creating memory cache: %w", err)
	}
	return &MemoryCache{lru: c}, nil
}

// Get returns the cached dataset if the file and parse options are unchanged.
func (c *MemoryCache) Get(path, fingerprint string, mtimeNs, size int64) (*model.Dataset, bool) {
	e, ok := c.lru.Get(path)
	if !ok || e.fingerprint != fingerprint || e.mtimeNs != mtimeNs || e.size != size {
		return nil, false
	}
	return e.ds, true
}

// Put stores a dataset, replacing any older entry for the same path.
func (c *MemoryCache) Put(path, fingerprint string, mtimeNs, size int64, ds *model.Dataset) error {
	c.lru.Add(path, memoryEntry{fingerprint: fingerprint, mtimeNs: mtimeNs, size: size, ds: ds})
	return nil
}

// Remove drops the entry for path, if any.
func (c *MemoryCache) Remove(path string) {
	c.lru.Remove(path)
}

// Purge drops every entry.
func (c *MemoryCache) Purge() {
	c.lru.Purge()
}

// Len returns the number of cached datasets.
func (c *MemoryCache) Len() int {
	return c.lru.Len()
}

// tiered checks each cache in order and back-fills the faster tiers on a hit.
type tiered []DatasetCache

// Tiered chains caches, fastest first. Nil entries are skipped.
func Tiered(caches ...DatasetCache) DatasetCache {
	var t tiered
	for _, c := range caches {
		if c != nil {
			t = append(t, c)
		}
	}
	return t
}

func (t tiered) Get(path, fingerprint string, mtimeNs, size int64) (*model.Dataset, bool) {
	for i, c := range t {
		ds, ok := c.Get(path, fingerprint, mtimeNs, size)
		if !ok {
			continue
		}
		for _, faster := range t[:i] {
			_ = faster.Put(path, fingerprint, mtimeNs, size, ds)
		}
		return ds, true
	}
	return nil, false
}

func (t tiered) Put(path, fingerprint string, mtimeNs, size int64, ds *model.Dataset) error {
	var firstErr error
	for _, c := range t {
		if err := c.Put(path, fingerprint, mtimeNs, size, ds); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "aidboard")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "aidboard")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "datasets.db")
}
