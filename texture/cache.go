package texture

import (
	"sync"
	"time"
)

// EvictionMode selects the eviction candidate ordering.
type EvictionMode uint8

const (
	// EvictLRU evicts the least-recently-accessed entry first (default).
	EvictLRU EvictionMode = iota
	// EvictFIFO evicts the oldest-inserted entry first.
	EvictFIFO
)

// Cache defaults.
const (
	DefaultMaxEntries  = 16
	DefaultMaxMemoryMB = 64
	bytesPerMB         = 1 << 20
)

// Cache is a bounded texture cache enforcing both a maximum entry count
// and a maximum total memory. Eviction runs before an insertion would
// breach either bound.
//
// Cache is safe for concurrent use.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]*cacheEntry
	mode       EvictionMode
	maxEntries int
	maxMemory  int64
	usedMemory int64
	tick       int64

	hits      uint64
	misses    uint64
	evictions uint64
	oversized uint64
}

// cacheEntry holds a texture with its bookkeeping data.
type cacheEntry struct {
	texture    *PaperTexture
	memorySize int64
	insertedAt time.Time
	atime      int64 // access tick for LRU ordering
	seq        int64 // insertion tick for FIFO ordering
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithMaxEntries sets the entry-count bound.
func WithMaxEntries(n int) CacheOption {
	return func(c *Cache) { c.maxEntries = n }
}

// WithMaxMemoryMB sets the memory bound in megabytes.
func WithMaxMemoryMB(mb int) CacheOption {
	return func(c *Cache) { c.maxMemory = int64(mb) * bytesPerMB }
}

// WithEvictionMode selects LRU or FIFO candidate ordering.
func WithEvictionMode(m EvictionMode) CacheOption {
	return func(c *Cache) { c.mode = m }
}

// NewCache creates a bounded cache with the given options.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{
		entries:    make(map[string]*cacheEntry),
		maxEntries: DefaultMaxEntries,
		maxMemory:  DefaultMaxMemoryMB * bytesPerMB,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached texture for key, refreshing its access time.
func (c *Cache) Get(key string) (*PaperTexture, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.tick++
	e.atime = c.tick
	return e.texture, true
}

// Set stores a texture, evicting first if either bound would be breached.
// A single entry larger than the whole memory bound is still admitted
// when the cache is empty (no starvation) and counted in Stats.Oversized.
func (c *Cache) Set(key string, tex *PaperTexture) {
	c.mu.Lock()
	defer c.mu.Unlock()

	size := tex.MemoryBytes()

	// Replace in place: release the old entry's accounting first.
	if old, ok := c.entries[key]; ok {
		c.usedMemory -= old.memorySize
		delete(c.entries, key)
	}

	for len(c.entries) >= c.maxEntries || (c.usedMemory+size > c.maxMemory && len(c.entries) > 0) {
		if !c.evictOne() {
			break
		}
	}
	if size > c.maxMemory {
		c.oversized++
	}

	c.tick++
	c.entries[key] = &cacheEntry{
		texture:    tex,
		memorySize: size,
		insertedAt: time.Now(),
		atime:      c.tick,
		seq:        c.tick,
	}
	c.usedMemory += size
}

// Remove deletes an entry.
func (c *Cache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		c.usedMemory -= e.memorySize
		delete(c.entries, key)
	}
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	c.usedMemory = 0
}

// Len returns the entry count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Pressure returns used memory as a fraction of the memory bound.
// Adaptive callers shed quality as this approaches 1.
func (c *Cache) Pressure() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.maxMemory == 0 {
		return 0
	}
	return float64(c.usedMemory) / float64(c.maxMemory)
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Len        int
	UsedMemory int64
	MaxMemory  int64
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	// Oversized counts admissions of single entries larger than the
	// whole memory bound.
	Oversized uint64
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Len:        len(c.entries),
		UsedMemory: c.usedMemory,
		MaxMemory:  c.maxMemory,
		Hits:       c.hits,
		Misses:     c.misses,
		Evictions:  c.evictions,
		Oversized:  c.oversized,
	}
}

// evictOne removes the eviction candidate per the configured mode.
// Caller must hold c.mu. Returns false when the cache is empty.
func (c *Cache) evictOne() bool {
	var victim string
	var best int64 = -1
	for key, e := range c.entries {
		rank := e.atime
		if c.mode == EvictFIFO {
			rank = e.seq
		}
		if best == -1 || rank < best {
			best = rank
			victim = key
		}
	}
	if best == -1 {
		return false
	}
	c.usedMemory -= c.entries[victim].memorySize
	delete(c.entries, victim)
	c.evictions++
	return true
}
