package scrawl

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Pool defaults. Low-tier devices get a smaller pool through
// WithPoolSizeForTier.
const (
	DefaultMaxPoolSize  = 4
	DefaultIdleTimeout  = 30 * time.Second
	DefaultPoolMemoryMB = 128
	lowTierMaxPoolSize  = 2
	lowTierIdleTimeout  = 10 * time.Second
)

// PooledCanvas wraps a canvas tracked by the pool. Unpooled instances
// are handed out when the pool is exhausted and bypass reuse entirely.
type PooledCanvas struct {
	Canvas   *Canvas
	inUse    bool
	pooled   bool
	lastUsed time.Time
	seq      uint64
}

// InUse reports whether the entry is currently acquired.
func (p *PooledCanvas) InUse() bool { return p.inUse }

// Pooled reports whether the entry participates in reuse.
func (p *PooledCanvas) Pooled() bool { return p.pooled }

// PoolStats is a point-in-time snapshot of pool health.
type PoolStats struct {
	Entries     int
	InUse       int
	Steals      int64
	Unpooled    int64
	MemoryBytes int64
}

// CanvasPool reuses canvas allocations across renders. Acquire prefers
// resizing an existing free canvas down over allocating; when every
// entry is busy the least recently acquired one is repurposed rather
// than growing past the size bound.
type CanvasPool struct {
	mu          sync.Mutex
	entries     []*PooledCanvas
	byCanvas    map[*Canvas]*PooledCanvas
	maxPoolSize int
	idleTimeout time.Duration
	maxMemory   int64
	seq         uint64
	steals      int64
	unpooled    int64
	now         func() time.Time
	log         *slog.Logger
}

// PoolOption configures a CanvasPool.
type PoolOption func(*CanvasPool)

// WithMaxPoolSize bounds the number of pooled entries.
func WithMaxPoolSize(n int) PoolOption {
	return func(p *CanvasPool) {
		if n >= 0 {
			p.maxPoolSize = n
		}
	}
}

// WithIdleTimeout sets how long a free canvas survives between renders.
func WithIdleTimeout(d time.Duration) PoolOption {
	return func(p *CanvasPool) {
		if d > 0 {
			p.idleTimeout = d
		}
	}
}

// WithPoolMemoryLimitMB sets the backing-memory threshold that triggers
// aggressive cleanup during maintenance.
func WithPoolMemoryLimitMB(mb int) PoolOption {
	return func(p *CanvasPool) {
		if mb > 0 {
			p.maxMemory = int64(mb) << 20
		}
	}
}

// WithPoolSizeForTier shrinks pool bounds on low-tier devices.
func WithPoolSizeForTier(tier DeviceTier) PoolOption {
	return func(p *CanvasPool) {
		if tier == TierLow {
			p.maxPoolSize = lowTierMaxPoolSize
			p.idleTimeout = lowTierIdleTimeout
		}
	}
}

// WithPoolLogger sets the pool's logger.
func WithPoolLogger(log *slog.Logger) PoolOption {
	return func(p *CanvasPool) {
		if log != nil {
			p.log = log
		}
	}
}

// withPoolClock overrides the time source in tests.
func withPoolClock(now func() time.Time) PoolOption {
	return func(p *CanvasPool) { p.now = now }
}

// NewCanvasPool creates a pool with default bounds.
func NewCanvasPool(opts ...PoolOption) *CanvasPool {
	p := &CanvasPool{
		byCanvas:    make(map[*Canvas]*PooledCanvas),
		maxPoolSize: DefaultMaxPoolSize,
		idleTimeout: DefaultIdleTimeout,
		maxMemory:   DefaultPoolMemoryMB << 20,
		now:         time.Now,
		log:         Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Acquire returns a canvas of exactly width x height. Preference order:
// resize a fitting free entry down, allocate a new entry under the size
// bound, reallocate the least recently used free entry, repurpose the
// least recently acquired busy entry, and as a last resort hand out an
// untracked canvas.
func (p *CanvasPool) Acquire(width, height int) (*PooledCanvas, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Best fit: the smallest free backing that already holds the request.
	if e := p.bestFitLocked(width, height); e != nil {
		e.Canvas.resizeWithin(width, height)
		p.checkoutLocked(e)
		return e, nil
	}

	if len(p.entries) < p.maxPoolSize {
		c, err := NewCanvas(width, height)
		if err != nil {
			return nil, err
		}
		e := &PooledCanvas{Canvas: c, pooled: true}
		p.entries = append(p.entries, e)
		p.byCanvas[c] = e
		p.checkoutLocked(e)
		return e, nil
	}

	if e := p.lruLocked(false); e != nil {
		if err := p.repurposeLocked(e, width, height); err != nil {
			return nil, err
		}
		p.checkoutLocked(e)
		return e, nil
	}

	// Every entry is busy. Repurposing the least recently acquired one
	// assumes its holder abandoned it; growing the pool instead would
	// defeat the size bound on constrained devices.
	if e := p.lruLocked(true); e != nil {
		p.steals++
		p.log.Warn("canvas pool exhausted, repurposing busy canvas",
			"width", width, "height", height, "entries", len(p.entries))
		if err := p.repurposeLocked(e, width, height); err != nil {
			return nil, err
		}
		p.checkoutLocked(e)
		return e, nil
	}

	p.unpooled++
	c, err := NewCanvas(width, height)
	if err != nil {
		return nil, err
	}
	return &PooledCanvas{Canvas: c}, nil
}

// Release returns a canvas to the pool: drawing state is reset, pixels
// cleared, and the entry marked free. Releasing an unpooled or nil
// entry is a no-op; double release is tolerated.
func (p *CanvasPool) Release(e *PooledCanvas) {
	if e == nil || e.Canvas == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	e.Canvas.ResetState()
	if !e.pooled {
		return
	}
	e.inUse = false
	e.lastUsed = p.now()
}

// ReleaseCanvas releases by canvas identity, for callers that only kept
// the rendered canvas.
func (p *CanvasPool) ReleaseCanvas(c *Canvas) {
	if c == nil {
		return
	}
	p.mu.Lock()
	e := p.byCanvas[c]
	p.mu.Unlock()
	p.Release(e)
}

// Maintain drops free entries that have sat idle past the timeout. When
// backing memory exceeds the configured limit it cleans aggressively,
// releasing at least half of the free entries regardless of age.
func (p *CanvasPool) Maintain() {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	p.removeFreeLocked(func(e *PooledCanvas) bool {
		return now.Sub(e.lastUsed) > p.idleTimeout
	})

	if p.memoryLocked() <= p.maxMemory {
		return
	}

	free := make([]*PooledCanvas, 0, len(p.entries))
	for _, e := range p.entries {
		if !e.inUse {
			free = append(free, e)
		}
	}
	sort.Slice(free, func(i, j int) bool { return free[i].lastUsed.Before(free[j].lastUsed) })
	drop := (len(free) + 1) / 2
	doomed := make(map[*PooledCanvas]bool, drop)
	for _, e := range free[:drop] {
		doomed[e] = true
	}
	p.removeFreeLocked(func(e *PooledCanvas) bool { return doomed[e] })
	if drop > 0 {
		p.log.Info("aggressive pool cleanup", "dropped", drop, "memory", p.memoryLocked())
	}
}

// StartMaintenance runs Maintain on an interval until the returned stop
// function is called.
func (p *CanvasPool) StartMaintenance(interval time.Duration) (stop func()) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.Maintain()
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// Stats snapshots pool state.
func (p *CanvasPool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := PoolStats{
		Entries:     len(p.entries),
		Steals:      p.steals,
		Unpooled:    p.unpooled,
		MemoryBytes: p.memoryLocked(),
	}
	for _, e := range p.entries {
		if e.inUse {
			s.InUse++
		}
	}
	return s
}

// Len returns the number of pooled entries.
func (p *CanvasPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

func (p *CanvasPool) checkoutLocked(e *PooledCanvas) {
	p.seq++
	e.inUse = true
	e.seq = p.seq
	e.lastUsed = p.now()
}

// bestFitLocked finds the free entry with the smallest backing that
// still fits the request.
func (p *CanvasPool) bestFitLocked(width, height int) *PooledCanvas {
	var best *PooledCanvas
	for _, e := range p.entries {
		if e.inUse {
			continue
		}
		bb := e.Canvas.backing.Rect
		if bb.Dx() < width || bb.Dy() < height {
			continue
		}
		if best == nil || e.Canvas.backingBytes() < best.Canvas.backingBytes() {
			best = e
		}
	}
	return best
}

// lruLocked returns the least recently touched entry, free or busy.
func (p *CanvasPool) lruLocked(busy bool) *PooledCanvas {
	var lru *PooledCanvas
	for _, e := range p.entries {
		if e.inUse != busy {
			continue
		}
		if lru == nil || e.seq < lru.seq {
			lru = e
		}
	}
	return lru
}

// repurposeLocked makes an entry's canvas match the requested size,
// reallocating only when the backing is too small.
func (p *CanvasPool) repurposeLocked(e *PooledCanvas, width, height int) error {
	if e.Canvas.resizeWithin(width, height) {
		return nil
	}
	c, err := NewCanvas(width, height)
	if err != nil {
		return fmt.Errorf("canvas pool: %w", err)
	}
	delete(p.byCanvas, e.Canvas)
	e.Canvas = c
	p.byCanvas[c] = e
	return nil
}

func (p *CanvasPool) removeFreeLocked(doomed func(*PooledCanvas) bool) {
	kept := p.entries[:0]
	for _, e := range p.entries {
		if !e.inUse && doomed(e) {
			delete(p.byCanvas, e.Canvas)
			continue
		}
		kept = append(kept, e)
	}
	p.entries = kept
}

func (p *CanvasPool) memoryLocked() int64 {
	var total int64
	for _, e := range p.entries {
		total += e.Canvas.backingBytes()
	}
	return total
}
