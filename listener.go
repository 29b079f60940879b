package bag

import "context"

// Listener is the bag's single external collaborator: a demand signal,
// invoked from Bag.Borrow whenever a shared scan fails to find an idle
// item. Implementations are expected to arrange for a new item to be
// constructed and handed to Bag.Add, typically by enqueueing work on
// another goroutine.
//
// AddBagItem must return promptly; the bag does not await its effect
// synchronously, and a slow implementation delays the borrower that
// triggered it (the upcall runs on the borrower's own goroutine). Any panic or error handling is the listener's own
// responsibility; the bag never swallows it.
type Listener interface {
	AddBagItem(ctx context.Context)
}

// ListenerFunc adapts a plain function to a Listener.
type ListenerFunc func(ctx context.Context)

func (f ListenerFunc) AddBagItem(ctx context.Context) { f(ctx) }
