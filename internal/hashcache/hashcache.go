// Package hashcache implements the File Hash Cache (spec.md §2 item 2,
// §3 IndexerState/§4.10): a content-addressed change detector keyed by
// (path, mtime, size). Grounded on the teacher's change_detector.go.
package hashcache

import (
	"fmt"
	"sync"
)

// Entry records the last-seen fingerprint for a path.
type Entry struct {
	MtimeMs int64
	Size    int64
}

// Cache is a single-writer, concurrency-safe change detector. The
// orchestrator is the sole writer (spec.md §5 Shared-resource policy);
// reads may happen concurrently from any goroutine.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{entries: make(map[string]Entry)}
}

// Key formats the cache key as "{full_path}:{mtime_ms}:{size}" per
// spec.md §4.10 step 3. Exposed for persistence layers (§12.4) that need
// the same fingerprint format on disk.
func Key(path string, mtimeMs, size int64) string {
	return fmt.Sprintf("%s:%d:%d", path, mtimeMs, size)
}

// Changed reports whether path's current (mtimeMs, size) differs from
// the last recorded fingerprint — true for files never seen before.
func (c *Cache) Changed(path string, mtimeMs, size int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	prev, ok := c.entries[path]
	if !ok {
		return true
	}
	return prev.MtimeMs != mtimeMs || prev.Size != size
}

// Record stores the current fingerprint for path.
func (c *Cache) Record(path string, mtimeMs, size int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = Entry{MtimeMs: mtimeMs, Size: size}
}

// Forget removes a path's fingerprint, e.g. on deletion.
func (c *Cache) Forget(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

// Len returns the number of tracked paths.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Snapshot returns a defensive copy of the tracked entries.
func (c *Cache) Snapshot() map[string]Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]Entry, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}
