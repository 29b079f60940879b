package bag

import (
	"sync"
	"weak"

	"github.com/joeycumines/goroutineid"
)

// affinityCache is a per-goroutine ordered list of weak back-references to
// items that goroutine most recently requited. It is the lock-free fast
// path for the common borrow/requite cycle: a goroutine that gave an item
// back is the goroutine most likely to want an item again soon, and reusing
// the same one avoids touching the shared registry at all.
//
// Entries are weak: the registry, not the affinity cache, is what keeps an
// item alive. If an item is removed (and otherwise becomes unreachable), its
// weak.Pointer resolves to nil and the stale entry is simply discarded.
//
// affinityCache is only ever touched by its owning goroutine, so it carries
// no synchronization of its own.
type affinityCache[T Item] struct {
	ring *ringBuffer[weak.Pointer[entry[T]]]
}

func newAffinityCache[T Item]() *affinityCache[T] {
	return &affinityCache[T]{ring: newRingBuffer[weak.Pointer[entry[T]]](8)}
}

func (c *affinityCache[T]) push(e *entry[T]) {
	c.ring.PushBack(weak.Make(e))
}

// pop walks the cache from the most-recent end backward, attempting the
// NotInUse -> InUse transition on each resolvable entry. The cache shrinks
// regardless of outcome, so stale or lost entries never accumulate.
func (c *affinityCache[T]) pop() (T, bool) {
	var zero T
	for {
		wp, ok := c.ring.PopBack()
		if !ok {
			return zero, false
		}
		e := wp.Value()
		if e == nil {
			continue
		}
		if e.item.BagState().cas(NotInUse, InUse) {
			return e.item, true
		}
	}
}

// affinityRegistry maps goroutine identity to that goroutine's cache,
// allocating lazily on first use.
type affinityRegistry[T Item] struct {
	m sync.Map // int64 goroutine id -> *affinityCache[T]
}

func (r *affinityRegistry[T]) forCurrentGoroutine() *affinityCache[T] {
	id := goroutineid.Get()
	if v, ok := r.m.Load(id); ok {
		return v.(*affinityCache[T])
	}
	c := newAffinityCache[T]()
	actual, _ := r.m.LoadOrStore(id, c)
	return actual.(*affinityCache[T])
}
