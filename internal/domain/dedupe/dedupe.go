// Package dedupe tracks record identifiers that have already been accepted.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper accepts each ID once. A session log may list the same session in
// more than one file; only the first copy counts.
type Deduper interface {
	// SeenAndRecord reports whether id was accepted before and accepts it
	// if not.
	SeenAndRecord(ctx context.Context, id string) bool

	// Size is the number of distinct IDs accepted.
	Size() int64

	// Duplicates is the number of SeenAndRecord calls that returned true.
	Duplicates() int64
}

type inMemoryDeduper struct {
	mu   sync.Mutex
	seen map[string]struct{}
	size atomic.Int64
	dups atomic.Int64
	hint int
}

// NewInMemoryDeduper returns a Deduper backed by a map. It is safe to share
// between goroutines.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{}, d.hint)
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		d.dups.Add(1)
		return true
	}
	d.seen[id] = struct{}{}
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Size() int64 { return d.size.Load() }

func (d *inMemoryDeduper) Duplicates() int64 { return d.dups.Load() }
