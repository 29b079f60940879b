package bag

import (
	"sync"
	"sync/atomic"
)

// entry is the bag's own bookkeeping node for an item. The registry stores
// entries, not items directly, so that the affinity cache can hold a weak
// reference to something the registry itself keeps alive, independent of
// whether the caller's Item type is itself a pointer.
type entry[T Item] struct {
	item T
}

// registry is an append-mostly, iteration-stable collection of every item
// currently known to the bag, regardless of state. Readers traverse a
// snapshot without locking; writers (add/remove) are serialized against each
// other via mu, but never block a reader.
type registry[T Item] struct {
	mu   sync.Mutex
	snap atomic.Pointer[[]*entry[T]]
}

func newRegistry[T Item]() *registry[T] {
	r := new(registry[T])
	empty := make([]*entry[T], 0)
	r.snap.Store(&empty)
	return r
}

// load returns the current snapshot. Safe to call without holding mu, and
// safe to range over concurrently with writers.
func (r *registry[T]) load() []*entry[T] {
	return *r.snap.Load()
}

// add appends item to the registry in its current state, returning the
// entry created for it.
func (r *registry[T]) add(item T) *entry[T] {
	e := &entry[T]{item: item}
	r.mu.Lock()
	defer r.mu.Unlock()
	old := r.load()
	next := make([]*entry[T], len(old)+1)
	copy(next, old)
	next[len(old)] = e
	r.snap.Store(&next)
	return e
}

// find locates the entry for item, or nil if it isn't (or is no longer) in
// the registry.
func (r *registry[T]) find(item T) *entry[T] {
	for _, e := range r.load() {
		if e.item == item {
			return e
		}
	}
	return nil
}

// remove deletes item from the registry, reporting whether it was present.
func (r *registry[T]) remove(item T) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	old := r.load()
	idx := -1
	for i, e := range old {
		if e.item == item {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	next := make([]*entry[T], len(old)-1)
	copy(next, old[:idx])
	copy(next[idx:], old[idx+1:])
	r.snap.Store(&next)
	return true
}

// size returns the total number of items currently in the registry.
func (r *registry[T]) size() int {
	return len(r.load())
}
