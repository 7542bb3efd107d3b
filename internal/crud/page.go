package crud

import (
	"context"
	"sync"
)

type Status string

const (
	StatusLoading Status = "loading"
	StatusLoaded  Status = "loaded"
	StatusFailed  Status = "failed"
)

// Loader fetches the full list for a page.
type Loader[T any] func(ctx context.Context) ([]T, error)

// View is an immutable snapshot of a page for rendering.
type View[T any] struct {
	Status Status
	Items  []T
	Err    error
}

// Page is the list state of one management screen: loading, then loaded or failed.
// A created item is prepended locally and served on the next render without a
// refetch; edits and deletes reload from the backend.
type Page[T any] struct {
	mu      sync.Mutex
	status  Status
	items   []T
	err     error
	pending bool
}

func NewPage[T any]() *Page[T] {
	return &Page[T]{status: StatusLoading}
}

// Load replaces the items with a fresh fetch.
func (p *Page[T]) Load(ctx context.Context, load Loader[T]) View[T] {
	p.mu.Lock()
	p.status = StatusLoading
	p.pending = false
	p.mu.Unlock()

	items, err := load(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		p.status = StatusFailed
		p.err = err
		p.items = nil
		return p.snapshotLocked()
	}

	if items == nil {
		items = []T{}
	}
	p.status = StatusLoaded
	p.err = nil
	p.items = items
	return p.snapshotLocked()
}

// Current serves the locally updated list once after Prepend, otherwise loads.
func (p *Page[T]) Current(ctx context.Context, load Loader[T]) View[T] {
	p.mu.Lock()
	if p.pending && p.status == StatusLoaded {
		p.pending = false
		view := p.snapshotLocked()
		p.mu.Unlock()
		return view
	}
	p.mu.Unlock()

	return p.Load(ctx, load)
}

// Prepend inserts a newly created item first.
func (p *Page[T]) Prepend(item T) {
	p.mu.Lock()
	defer p.mu.Unlock()

	items := make([]T, 0, len(p.items)+1)
	items = append(items, item)
	items = append(items, p.items...)

	p.items = items
	p.status = StatusLoaded
	p.err = nil
	p.pending = true
}

// Invalidate forces the next Current to refetch.
func (p *Page[T]) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = false
}

func (p *Page[T]) Snapshot() View[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Page[T]) snapshotLocked() View[T] {
	items := make([]T, len(p.items))
	copy(items, p.items)
	return View[T]{Status: p.status, Items: items, Err: p.err}
}
