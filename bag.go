package bag

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// Config is optional configuration for New. A nil Config, or a zero-value
// one, is always valid.
type Config struct {
	// Listener is invoked from Borrow whenever a shared scan fails to find
	// an idle item (see Listener). Nil is legal: no upcall fires.
	Listener Listener

	// ListenerRateLimit throttles how often Listener.AddBagItem may fire,
	// keyed by duration -> max calls in that duration (see
	// NewThrottledListener). Nil or empty disables throttling.
	ListenerRateLimit map[time.Duration]int

	// Logger receives diagnostic output (see NewLogger). Nil disables
	// logging.
	Logger diagLogger

	// NotificationBuffer, if positive, enables Bag.Notifications with a
	// channel of this capacity. Zero disables the notification stream
	// entirely (Bag.Notifications returns nil).
	NotificationBuffer int
}

// Bag is a concurrent, multi-producer/multi-consumer container for
// reusable, stateful items of type T. See the package doc for the overall
// model; State documents the per-item state machine.
//
// A Bag must be constructed with New; the zero value is not usable.
type Bag[T Item] struct {
	registry *registry[T]
	affinity affinityRegistry[T]
	seq      atomic.Int64
	ws       *waitStation
	closed   atomic.Bool
	listener Listener
	log      diagLogger
	events   chan Event
}

// New constructs an empty, open Bag. cfg may be nil.
func New[T Item](cfg *Config) *Bag[T] {
	b := &Bag[T]{
		registry: newRegistry[T](),
	}
	b.seq.Store(1) // sequence counter starts at 1, per the state model
	b.ws = newWaitStation(&b.seq)

	if cfg != nil {
		if cfg.Listener != nil {
			b.listener = NewThrottledListener(cfg.ListenerRateLimit, cfg.Listener)
		}
		b.log = cfg.Logger
		if cfg.NotificationBuffer > 0 {
			b.events = make(chan Event, cfg.NotificationBuffer)
		}
	}

	return b
}

// publish advances the sequence and wakes every waiter whose witness it now
// satisfies. Called by Add, Requite, and Unreserve.
func (b *Bag[T]) publish() {
	b.seq.Add(1)
	b.ws.release()
}

// Borrow returns an item whose state transitioned NotInUse -> InUse, or the
// zero value of T if timeout elapses first. If ctx is canceled before an
// item is obtained, Borrow returns ctx.Err() (the "Interrupted" outcome);
// timing out is not an error, just a nil, nil return.
func (b *Bag[T]) Borrow(ctx context.Context, timeout time.Duration) (T, error) {
	var zero T

	if item, ok := b.affinity.forCurrentGoroutine().pop(); ok {
		b.logDebug("borrow: affinity hit")
		b.emit(EventBorrowed)
		return item, nil
	}

	deadline := time.Now().Add(timeout)

	for {
		witness := b.seq.Load()

		if item, ok := b.scanOnce(); ok {
			b.logDebug("borrow: shared scan hit")
			b.emit(EventBorrowed)
			return item, nil
		}

		if b.seq.Load() != witness {
			// a concurrent publisher produced a new chance; re-scan without
			// waiting. The deadline is unchanged, so re-scans count against
			// the timeout like any other elapsed time.
			continue
		}

		if b.listener != nil {
			b.listener.AddBagItem(ctx)
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			b.logDebug("borrow: timed out")
			return zero, nil
		}

		waitCtx, cancel := context.WithTimeout(ctx, remaining)
		err := b.ws.acquire(waitCtx, witness)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return zero, ctx.Err()
			}
			if time.Until(deadline) <= 0 {
				b.logDebug("borrow: timed out")
				return zero, nil
			}
			// spurious wake-up/context plumbing; the outer loop re-checks
			// the real deadline either way.
			continue
		}
	}
}

func (b *Bag[T]) scanOnce() (T, bool) {
	var zero T
	for _, e := range b.registry.load() {
		if e.item.BagState().cas(NotInUse, InUse) {
			return e.item, true
		}
	}
	return zero, false
}

// Requite returns item to the bag: CAS InUse -> NotInUse, push it onto the
// calling goroutine's affinity cache, and advance the sequence, waking every
// parked borrower whose witness the advance satisfies. Fails
// with an *IllegalStateError wrapping ErrNotBorrowed if item wasn't
// actually checked out.
func (b *Bag[T]) Requite(item T) error {
	if !item.BagState().cas(InUse, NotInUse) {
		return illegalState("requite", ErrNotBorrowed)
	}
	if e := b.registry.find(item); e != nil {
		b.affinity.forCurrentGoroutine().push(e)
	}
	b.publish()
	b.emit(EventRequited)
	return nil
}

// Add appends item to the shared registry in whatever state the caller
// initialized it (normally NotInUse), and advances the sequence. Fails with
// ErrClosed if the bag has been closed.
func (b *Bag[T]) Add(item T) error {
	if b.closed.Load() {
		return illegalState("add", ErrClosed)
	}
	b.registry.add(item)
	b.publish()
	b.emit(EventAdded)
	return nil
}

// Remove withdraws item permanently. Only legal on an item currently held
// exclusively by the caller (InUse, from a prior Borrow, or Reserved, from a
// prior Reserve). On success, item's state becomes Removed and it is
// deleted from the registry.
func (b *Bag[T]) Remove(item T) error {
	cell := item.BagState()
	if !cell.cas(InUse, Removed) && !cell.cas(Reserved, Removed) {
		return illegalState("remove", ErrNotHeld)
	}
	if !b.registry.remove(item) {
		return illegalState("remove", ErrNotInRegistry)
	}
	b.emit(EventRemoved)
	return nil
}

// Reserve administratively holds item, excluding it from being borrowed
// without implying check-out: CAS NotInUse -> Reserved. Never fails; the
// boolean return reports whether the transition happened.
func (b *Bag[T]) Reserve(item T) bool {
	ok := item.BagState().cas(NotInUse, Reserved)
	if ok {
		b.emit(EventReserved)
	}
	return ok
}

// Unreserve releases a prior Reserve: the sequence is advanced before the
// CAS (so a borrower that captured its witness in the gap can't miss the
// resulting availability), then CAS Reserved -> NotInUse. Fails with an
// *IllegalStateError wrapping ErrNotReserved if item wasn't reserved.
func (b *Bag[T]) Unreserve(item T) error {
	b.publish()
	if !item.BagState().cas(Reserved, NotInUse) {
		return illegalState("unreserve", ErrNotReserved)
	}
	b.emit(EventUnreserved)
	return nil
}

// Values returns a fresh snapshot of every item whose state currently
// equals state. state must be NotInUse or InUse; any other value yields an
// empty (nil) slice. The snapshot is best-effort: items may change state
// concurrently with (or immediately after) the scan.
func (b *Bag[T]) Values(state State) []T {
	if state != NotInUse && state != InUse {
		return nil
	}
	items := b.registry.load()
	out := make([]T, 0, len(items))
	for _, e := range items {
		if e.item.BagState().Load() == state {
			out = append(out, e.item)
		}
	}
	return out
}

// GetCount returns the current number of items whose state equals state.
func (b *Bag[T]) GetCount(state State) int {
	var n int
	for _, e := range b.registry.load() {
		if e.item.BagState().Load() == state {
			n++
		}
	}
	return n
}

// Size returns the total number of items in the registry, regardless of
// state.
func (b *Bag[T]) Size() int {
	return b.registry.size()
}

// GetPendingQueue returns the number of goroutines currently parked waiting
// to borrow.
func (b *Bag[T]) GetPendingQueue() int {
	return b.ws.pending()
}

// DumpState renders one line per item with its current state, for
// diagnostics only: it races with concurrent transitions, so the output is
// informational, never authoritative.
func (b *Bag[T]) DumpState() string {
	items := b.registry.load()
	var sb strings.Builder
	for _, e := range items {
		fmt.Fprintf(&sb, "%v: %s\n", e.item, e.item.BagState().Load())
	}
	s := sb.String()
	b.logDebug("dumpState: " + s)
	return s
}

// Close prevents further Add calls. In-flight Borrow and Requite calls are
// unaffected, and existing borrowers keep whatever they hold.
func (b *Bag[T]) Close() {
	b.closed.Store(true)
}

func (b *Bag[T]) logDebug(msg string) {
	b.log.Debug().Log(msg)
}
