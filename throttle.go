package bag

import (
	"context"
	"time"

	"github.com/joeycumines/go-catrate"
)

// throttledListener wraps a Listener so that Borrow's demand signal (the
// upcall made once per shared-scan miss) can't be invoked more often than
// rates allows. Without this, a sustained burst of borrowers all missing the
// shared scan at once would each fire an upcall on the same tick, even
// though a single one is enough to ask the pool for a new item.
//
// A nil or empty rates map disables throttling entirely: NewThrottledListener
// then returns the listener unwrapped, so every Borrow miss signals it.
type throttledListener struct {
	limiter *catrate.Limiter
	next    Listener
}

// NewThrottledListener wraps next so AddBagItem fires no more often than
// rates allows, each key a window and each value the maximum number of calls
// in that window (keyed by a constant category, since a single Bag only ever wants
// one outstanding demand signal at a time). A nil or empty rates map
// disables throttling.
func NewThrottledListener(rates map[time.Duration]int, next Listener) Listener {
	if next == nil || len(rates) == 0 {
		return next
	}
	return &throttledListener{limiter: catrate.NewLimiter(rates), next: next}
}

const throttleCategory = "addBagItem"

func (t *throttledListener) AddBagItem(ctx context.Context) {
	if _, ok := t.limiter.Allow(throttleCategory); !ok {
		return
	}
	t.next.AddBagItem(ctx)
}
