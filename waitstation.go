package bag

import (
	"context"
	"sync"
	"sync/atomic"
)

// waitStation lets borrowers park until a shared sequence counter advances
// past a witness value they observed, without busy-waiting and without a
// message queue. It's the bag's equivalent of a long-valued condition
// variable: acquire is WaitWithDeadline, release is Broadcast-after-Signal,
// with the predicate (sequence > witness) evaluated for the caller instead
// of by the caller in a loop.
type waitStation struct {
	seq *atomic.Int64 // shared with the owning Bag; advanced by publish

	mu sync.Mutex
	q  []*wsTicket
}

type wsTicket struct {
	witness int64
	wake    chan struct{}
}

func newWaitStation(seq *atomic.Int64) *waitStation {
	return &waitStation{seq: seq}
}

// acquire blocks until the sequence exceeds witness, ctx is done, or (via
// ctx derived from a timeout) the deadline elapses. A nil error means the
// sequence has advanced past witness; the caller should re-scan.
func (ws *waitStation) acquire(ctx context.Context, witness int64) error {
	if ws.seq.Load() > witness {
		return nil
	}

	t := &wsTicket{witness: witness, wake: make(chan struct{})}
	ws.mu.Lock()
	ws.q = append(ws.q, t)
	ws.mu.Unlock()

	defer ws.forget(t)

	// re-check: release may have already run between the fast check above
	// and registering the ticket.
	if ws.seq.Load() > witness {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.wake:
		return nil
	}
}

func (ws *waitStation) forget(t *wsTicket) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	for i, x := range ws.q {
		if x == t {
			ws.q = append(ws.q[:i], ws.q[i+1:]...)
			return
		}
	}
}

// release wakes every waiter whose acquire can now succeed, per the current
// value of the shared sequence. Called after the sequence has already been
// advanced by the publisher.
func (ws *waitStation) release() {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	newSeq := ws.seq.Load()
	remaining := ws.q[:0]
	for _, t := range ws.q {
		if newSeq > t.witness {
			close(t.wake)
		} else {
			remaining = append(remaining, t)
		}
	}
	ws.q = remaining
}

// pending reports the number of goroutines currently parked in acquire.
func (ws *waitStation) pending() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return len(ws.q)
}
