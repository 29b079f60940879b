package bag

import (
	"context"

	longpoll "github.com/joeycumines/go-longpoll"
)

// EventKind identifies the kind of state change an Event reports.
type EventKind int

const (
	EventAdded EventKind = iota
	EventBorrowed
	EventRequited
	EventRemoved
	EventReserved
	EventUnreserved
)

func (k EventKind) String() string {
	switch k {
	case EventAdded:
		return "added"
	case EventBorrowed:
		return "borrowed"
	case EventRequited:
		return "requited"
	case EventRemoved:
		return "removed"
	case EventReserved:
		return "reserved"
	case EventUnreserved:
		return "unreserved"
	default:
		return "unknown"
	}
}

// Event is a best-effort notification of a state change, for external
// observers (metrics, dashboards) that want to watch the bag without
// polling Bag.Size or Bag.GetCount. Delivery is never a precondition for
// correctness: the bag's own protocol never depends on an Event being
// observed.
type Event struct {
	Kind EventKind
}

// Notifications returns the channel Events are published to, or nil if the
// bag was constructed without Config.NotificationBuffer set. Publishing
// never blocks: if the channel's buffer is full, the event is dropped.
func (b *Bag[T]) Notifications() <-chan Event {
	return b.events
}

func (b *Bag[T]) emit(kind EventKind) {
	if b.events == nil {
		return
	}
	select {
	case b.events <- Event{Kind: kind}:
	default:
	}
}

// DrainNotifications receives as many Events as possible from ch, per cfg,
// passing each to handler. It's a thin wrapper around longpoll.Channel,
// intended for a consumer that wants to batch Events (e.g. to reduce the
// number of metric update round trips) rather than handle them one at a
// time. cfg may be nil, in which case longpoll's documented defaults apply.
func DrainNotifications(ctx context.Context, cfg *longpoll.ChannelConfig, ch <-chan Event, handler func(Event) error) error {
	return longpoll.Channel(ctx, cfg, ch, handler)
}
