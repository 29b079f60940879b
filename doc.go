// Package bag implements a concurrent bag: a multi-producer / multi-consumer
// container optimized for pooling reusable, stateful resources (canonically,
// database connections) across many worker goroutines with minimal
// contention.
//
// Unlike a conventional blocking queue, items are never physically removed
// from the [Bag] on [Bag.Borrow]; they stay in a shared registry and
// transition between logical states (see [State]). Each goroutine keeps a
// private affinity cache of recently-returned items, making the common
// borrow/requite cycle lock-free. When a goroutine's affinity cache is empty
// it falls back to a shared scan, then parks on a sequence-gated wait station
// until new availability is signaled.
//
// The bag does not construct items, health-check them, or own the lifecycle
// of a pool; those are the responsibility of a [Listener] and the caller.
package bag
