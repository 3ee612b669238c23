package app

import "sync"

// IDAllocator hands out monotonically increasing order ids. It is scoped to
// the order service rather than being process-global, and is reseeded from
// the highest persisted id on every load so restarts never reissue an id.
type IDAllocator struct {
	mu   sync.Mutex
	next int
}

// NewIDAllocator creates an allocator starting at 1.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{next: 1}
}

// Next returns the next id.
func (a *IDAllocator) Next() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.next
	a.next++
	return id
}

// Seed raises the next id to min when it is currently lower. Seeding
// backwards is ignored.
func (a *IDAllocator) Seed(min int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if min > a.next {
		a.next = min
	}
}
