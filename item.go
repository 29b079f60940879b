package bag

import "sync/atomic"

// State is the logical state of an item tracked by a Bag. Every legal
// transition is performed as a single compare-and-swap on the item's State
// cell; any other attempted transition leaves the cell untouched, and the
// calling Bag operation reports the failure (an error, or false from
// Reserve) or, while borrowing, moves on to another item.
type State int32

const (
	// NotInUse marks an item idle and eligible to be borrowed.
	NotInUse State = 0

	// InUse marks an item checked out to some borrower.
	InUse State = 1

	// Removed marks an item permanently withdrawn. Terminal: no outgoing
	// transition exists from Removed.
	Removed State = -1

	// Reserved marks an item administratively held: not borrowable, and not
	// removed.
	Reserved State = -2
)

func (s State) String() string {
	switch s {
	case NotInUse:
		return "NOT_IN_USE"
	case InUse:
		return "IN_USE"
	case Removed:
		return "REMOVED"
	case Reserved:
		return "RESERVED"
	default:
		return "UNKNOWN"
	}
}

// StateCell is the single atomic field a Bag requires each item to embed.
// Items are created externally in NotInUse and handed to the bag via
// Bag.Add; ownership of the backing value is shared between the bag (which
// retains it in the registry) and any current borrower.
type StateCell struct {
	v atomic.Int32
}

// Load returns the current state.
func (c *StateCell) Load() State {
	return State(c.v.Load())
}

// cas performs the single legal-transition primitive the whole protocol is
// built on. Only the legal transitions (NotInUse -> InUse or Reserved,
// InUse -> NotInUse or Removed, Reserved -> NotInUse or Removed) can
// succeed; any other pair is refused without touching the cell.
func (c *StateCell) cas(from, to State) bool {
	switch {
	case from == NotInUse && (to == InUse || to == Reserved),
		from == InUse && (to == NotInUse || to == Removed),
		from == Reserved && (to == NotInUse || to == Removed):
	default:
		return false
	}
	return c.v.CompareAndSwap(int32(from), int32(to))
}

// Item is the contract a Bag requires of every value it stores: exactly one
// 32-bit atomic state cell, accessible via BagState. Implementations may
// carry arbitrary caller payload beyond that cell.
//
// Item must be implemented by a comparable type (in practice, a pointer
// type), since the bag identifies items by equality when locating them in
// the registry.
type Item interface {
	comparable

	// BagState returns the item's state cell. It must always return the
	// same, non-nil *StateCell for a given item.
	BagState() *StateCell
}
