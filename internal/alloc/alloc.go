//go:generate mockgen -source=alloc.go -destination=mocks/mock_alloc.go -package=mocks

package alloc

import (
	"sync"

	"github.com/rs/zerolog"

	apperrors "github.com/agbru/magcalc/internal/errors"
	"github.com/agbru/magcalc/internal/words"
)

// Allocator hands out word buffers to magnitude operations.
//
// Allocate returns a buffer of exactly n words whose contents are
// unspecified. Free releases a buffer immediately; the caller guarantees it
// holds the only reference. Clear zero-fills a buffer.
type Allocator interface {
	Allocate(n int) ([]words.Word, error)
	Free(buf []words.Word)
	Clear(buf []words.Word)
}

// Collector runs a collection pass when the allocator is exhausted.
type Collector interface {
	Collect()
}

// CollectorFunc adapts a function to the Collector interface.
type CollectorFunc func()

// Collect calls f.
func (f CollectorFunc) Collect() { f() }

// Stats is a point-in-time snapshot of a Pool's bookkeeping. LiveWords
// counts words handed out and not yet freed, CachedWords the words held in
// free lists and PeakWords the high-water mark of both. LimitWords is 0 when
// the pool is unlimited. Reuses counts allocations served from a free list;
// Failures counts allocations that failed after a collection.
type Stats struct {
	LiveWords   uint64 `json:"live_words"`
	CachedWords uint64 `json:"cached_words"`
	PeakWords   uint64 `json:"peak_words"`
	LimitWords  uint64 `json:"limit_words"`
	Allocations uint64 `json:"allocations"`
	Frees       uint64 `json:"frees"`
	Reuses      uint64 `json:"reuses"`
	Collections uint64 `json:"collections"`
	Failures    uint64 `json:"failures"`
}

// Options configures a Pool.
type Options struct {
	// LimitWords caps live + cached words. Zero disables the limit.
	LimitWords uint64
	// MaxCachedPerClass bounds each free list. Zero selects a default.
	MaxCachedPerClass int
	// Collector runs after the pool has dropped its own caches on exhaustion.
	Collector Collector
	// Logger receives collection and failure events.
	Logger zerolog.Logger
}

const defaultMaxCachedPerClass = 64

// Pool is a size-class allocator shared by every execution of the runtime.
// Its bookkeeping is guarded by a single mutex that is held only for the
// duration of an Allocate or Free call.
type Pool struct {
	mu        sync.Mutex
	free      [numClasses]freeList
	maxCached int
	limit     uint64
	live      uint64
	cached    uint64
	peak      uint64
	counters  Stats

	collector Collector
	logger    zerolog.Logger
}

// NewPool creates a Pool with the given options.
func NewPool(opts Options) *Pool {
	maxCached := opts.MaxCachedPerClass
	if maxCached <= 0 {
		maxCached = defaultMaxCachedPerClass
	}
	return &Pool{
		maxCached: maxCached,
		limit:     opts.LimitWords,
		collector: opts.Collector,
		logger:    opts.Logger,
	}
}

// Allocate returns a buffer of exactly n words. When the limit is reached it
// runs one collection pass and retries; a second failure is reported as an
// apperrors.MemoryError.
func (p *Pool) Allocate(n int) ([]words.Word, error) {
	if n < 0 {
		return nil, apperrors.ValidationError{Field: "n", Message: "negative allocation size"}
	}
	if n == 0 {
		return nil, nil
	}
	if buf, ok := p.tryAllocate(n); ok {
		return buf, nil
	}
	p.collect()
	if buf, ok := p.tryAllocate(n); ok {
		return buf, nil
	}

	p.mu.Lock()
	p.counters.Failures++
	var available uint64
	if used := p.live + p.cached; used < p.limit {
		available = p.limit - used
	}
	p.mu.Unlock()

	p.logger.Error().
		Int("requested_words", n).
		Uint64("available_words", available).
		Uint64("limit_words", p.limit).
		Msg("allocation failed after collection")
	return nil, apperrors.MemoryError{Requested: uint64(n), Available: available, Limit: p.limit}
}

func (p *Pool) tryAllocate(n int) ([]words.Word, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx := classIndex(n)
	if idx >= 0 {
		if buf, ok := p.free[idx].pop(); ok {
			c := uint64(cap(buf))
			p.cached -= c
			p.live += c
			p.counters.Allocations++
			p.counters.Reuses++
			return buf[:n], true
		}
	}

	c := uint64(capacityFor(n))
	if p.limit > 0 && p.live+p.cached+c > p.limit {
		return nil, false
	}
	p.live += c
	if total := p.live + p.cached; total > p.peak {
		p.peak = total
	}
	p.counters.Allocations++
	return make([]words.Word, n, c), true
}

// Free releases buf. Buffers whose capacity matches a size class are cached
// for reuse; others are dropped. Free(nil) is a no-op.
func (p *Pool) Free(buf []words.Word) {
	c := cap(buf)
	if c == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.counters.Frees++
	p.live -= min(uint64(c), p.live)
	if idx := exactClass(c); idx >= 0 && len(p.free[idx]) < p.maxCached {
		p.free[idx].push(buf[:c])
		p.cached += uint64(c)
	}
}

// Clear zero-fills buf.
func (p *Pool) Clear(buf []words.Word) {
	clear(buf)
}

// Collect drops every cached buffer and runs the configured Collector.
func (p *Pool) Collect() {
	p.collect()
}

func (p *Pool) collect() {
	p.mu.Lock()
	reclaimed := p.cached
	for i := range p.free {
		p.free[i] = nil
	}
	p.cached = 0
	p.counters.Collections++
	p.mu.Unlock()

	if p.collector != nil {
		p.collector.Collect()
	}
	p.logger.Debug().
		Uint64("reclaimed_words", reclaimed).
		Msg("allocator collection pass")
}

// Stats returns a snapshot of the pool's counters.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.counters
	s.LiveWords = p.live
	s.CachedWords = p.cached
	s.PeakWords = p.peak
	s.LimitWords = p.limit
	return s
}
