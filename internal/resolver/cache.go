package resolver

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/systmms/credvault/internal/vault"
)

const (
	cacheFileName = "cache.json"

	// CacheTTL bounds how long a resolution result may be served without
	// re-walking the directory tree.
	CacheTTL = time.Hour
)

// cacheEntry records one resolution result for a start directory. An empty
// Profile is the explicit "no profile resolved" sentinel, distinct from the
// entry being absent.
type cacheEntry struct {
	Profile    string    `json:"profile"`
	ResolvedAt time.Time `json:"resolved_at"`
}

type cacheFile struct {
	Entries map[string]cacheEntry `json:"entries"`
}

// Cache is the on-disk resolution cache, keyed by absolute start directory.
// It owns no secret material and is safe to delete at any time: absence is
// equivalent to all entries being expired.
type Cache struct {
	path string
	ttl  time.Duration
	now  func() time.Time
}

// NewCache creates a cache stored in the given config directory.
func NewCache(dir string) *Cache {
	return &Cache{
		path: filepath.Join(dir, cacheFileName),
		ttl:  CacheTTL,
		now:  time.Now,
	}
}

// Get returns the cached resolution for a directory. The second return is
// false on a miss; a hit with an empty profile is the cached none sentinel.
func (c *Cache) Get(dir string) (string, bool) {
	entries := c.load()
	entry, ok := entries[dir]
	if !ok {
		return "", false
	}
	if c.now().Sub(entry.ResolvedAt) >= c.ttl {
		return "", false
	}
	return entry.Profile, true
}

// Put records a resolution result (or the none sentinel when profile is
// empty), pruning expired entries while it is at it.
func (c *Cache) Put(dir, profile string) error {
	entries := c.load()
	for key, entry := range entries {
		if c.now().Sub(entry.ResolvedAt) >= c.ttl {
			delete(entries, key)
		}
	}
	entries[dir] = cacheEntry{Profile: profile, ResolvedAt: c.now()}

	data, err := json.MarshalIndent(cacheFile{Entries: entries}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return err
	}
	return vault.WriteFileAtomic(c.path, data, 0o600)
}

// Clear deletes the cache file.
func (c *Cache) Clear() error {
	err := os.Remove(c.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// load reads the cache file. Any read or parse problem is treated as an empty
// cache; the file is self-healing and never authoritative.
func (c *Cache) load() map[string]cacheEntry {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return map[string]cacheEntry{}
	}
	var f cacheFile
	if err := json.Unmarshal(data, &f); err != nil || f.Entries == nil {
		return map[string]cacheEntry{}
	}
	return f.Entries
}
