// internal/store/memory.go
//
// In-memory implementation of Store.
//
// Characteristics:
//   - Keeps at most max results; the oldest are dropped first.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sync"
)

// memory is a slice-backed Store implementation.
type memory struct {
	mu      sync.RWMutex // guards results
	results []Result     // oldest first
	max     int
}

// NewMemoryStore constructs an in-memory Store holding up to max results.
func NewMemoryStore(max int) Store {
	if max <= 0 {
		max = 1000
	}
	return &memory{max: max}
}

// Save appends r, evicting the oldest entry when full.
func (m *memory) Save(ctx context.Context, r Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, r)
	if over := len(m.results) - m.max; over > 0 {
		m.results = append(m.results[:0:0], m.results[over:]...)
	}
	return nil
}

// Recent copies up to limit results, newest first.
func (m *memory) Recent(ctx context.Context, limit int) ([]Result, error) {
	limit = clampLimit(limit)
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Result, 0, limit)
	for i := len(m.results) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.results[i])
	}
	return out, nil
}

func (m *memory) Close() error { return nil }
