// Package resultcache implements the LRU+TTL Cache (spec.md §4.14): an
// insertion-ordered, capacity-bounded cache with lazy TTL expiry, used
// to memoize search results by request fingerprint. Grounded on the
// teacher's internal/graph/searcher.go otter.MustBuilder cache usage;
// otter's own S3-FIFO eviction doesn't expose the strict
// least-recently-used ordering and explicit cleanup() the contract
// requires, so eviction order is tracked with a container/list on top
// of an otter.Cache value store (otter still owns the actual entries
// and their cost accounting).
package resultcache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/maypok86/otter"
)

// DefaultMaxSize is the default entry capacity.
const DefaultMaxSize = 500

// DefaultTTL is the default entry lifetime.
const DefaultTTL = 5 * time.Minute

// Stats reports cache activity (spec.md §4.14 stats()).
type Stats struct {
	Size        int
	Hits        int64
	Misses      int64
	Evictions   int64
	Expirations int64
}

type entry struct {
	value     any
	timestamp time.Time
}

// Cache is an insertion-ordered, capacity-bounded cache with lazy TTL
// expiry. Safe for concurrent use.
type Cache struct {
	MaxSize int
	TTL     time.Duration

	mu     sync.Mutex
	store  otter.Cache[string, entry]
	order  *list.List
	lookup map[string]*list.Element

	hits, misses, evictions, expirations int64
}

// New constructs a Cache with spec.md §4.14 defaults.
func New() (*Cache, error) {
	store, err := otter.MustBuilder[string, entry](DefaultMaxSize * 2).
		CollectStats().
		Build()
	if err != nil {
		return nil, fmt.Errorf("resultcache: build otter store: %w", err)
	}
	return &Cache{
		MaxSize: DefaultMaxSize,
		TTL:     DefaultTTL,
		store:   store,
		order:   list.New(),
		lookup:  make(map[string]*list.Element),
	}, nil
}

// Key derives the 16-hex-char search cache key for the given request
// fingerprint tuple (spec.md §4.14).
func Key(query string, limit int, threshold float64, fileTypes, paths, languages []string, includeContext bool) string {
	raw := fmt.Sprintf("%s|%d|%f|%v|%v|%v|%t", query, limit, threshold, fileTypes, paths, languages, includeContext)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])[:16]
}

// Get returns the cached value for k, removing and re-inserting it at
// the most-recently-used position. Expired entries are treated as
// absent and deleted lazily.
func (c *Cache) Get(k string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.lookup[k]
	if !ok {
		c.misses++
		return nil, false
	}
	e, ok := c.store.Get(k)
	if !ok {
		c.forgetLocked(k, el)
		c.misses++
		return nil, false
	}
	if c.expired(e) {
		c.forgetLocked(k, el)
		c.expirations++
		c.misses++
		return nil, false
	}

	c.order.MoveToBack(el)
	c.hits++
	return e.value, true
}

// Set inserts or replaces k, evicting the least-recently-used entry if
// the cache is at capacity and k is new.
func (c *Cache) Set(k string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry{value: v, timestamp: time.Now()}

	if el, ok := c.lookup[k]; ok {
		c.store.Set(k, e)
		c.order.MoveToBack(el)
		return
	}

	maxSize := c.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if len(c.lookup) >= maxSize {
		c.evictOldestLocked()
	}

	c.store.Set(k, e)
	el := c.order.PushBack(k)
	c.lookup[k] = el
}

// Has reports whether k is present and unexpired, without affecting
// recency order.
func (c *Cache) Has(k string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.store.Get(k)
	return ok && !c.expired(e)
}

// Delete removes k unconditionally.
func (c *Cache) Delete(k string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.lookup[k]; ok {
		c.forgetLocked(k, el)
	}
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.lookup {
		c.store.Delete(k)
	}
	c.order.Init()
	c.lookup = make(map[string]*list.Element)
}

// Size returns the current entry count.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lookup)
}

// Stats returns cumulative cache activity counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Size:        len(c.lookup),
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
		Expirations: c.expirations,
	}
}

// Cleanup sweeps every expired entry.
func (c *Cache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expired []string
	for el := c.order.Front(); el != nil; el = el.Next() {
		k := el.Value.(string)
		if e, ok := c.store.Get(k); !ok || c.expired(e) {
			expired = append(expired, k)
		}
	}
	for _, k := range expired {
		if el, ok := c.lookup[k]; ok {
			c.forgetLocked(k, el)
			c.expirations++
		}
	}
}

func (c *Cache) expired(e entry) bool {
	ttl := c.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return time.Since(e.timestamp) > ttl
}

func (c *Cache) evictOldestLocked() {
	front := c.order.Front()
	if front == nil {
		return
	}
	k := front.Value.(string)
	c.forgetLocked(k, front)
	c.evictions++
}

func (c *Cache) forgetLocked(k string, el *list.Element) {
	c.store.Delete(k)
	c.order.Remove(el)
	delete(c.lookup, k)
}
