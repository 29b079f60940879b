package bag

import "testing"

func TestAffinityCache_popReturnsMostRecentFirst(t *testing.T) {
	c := newAffinityCache[*testItem]()

	e1 := &entry[*testItem]{item: newTestItem(1)}
	e2 := &entry[*testItem]{item: newTestItem(2)}
	c.push(e1)
	c.push(e2)

	item, ok := c.pop()
	if !ok || item != e2.item {
		t.Fatalf("expected e2's item first, got %v, %v", item, ok)
	}

	item, ok = c.pop()
	if !ok || item != e1.item {
		t.Fatalf("expected e1's item second, got %v, %v", item, ok)
	}

	if _, ok := c.pop(); ok {
		t.Fatal("expected an empty cache")
	}
}

func TestAffinityCache_popSkipsItemsNotNotInUse(t *testing.T) {
	c := newAffinityCache[*testItem]()

	busy := &entry[*testItem]{item: newTestItem(1)}
	busy.item.BagState().cas(NotInUse, InUse) // already checked out elsewhere

	idle := &entry[*testItem]{item: newTestItem(2)}

	c.push(idle)
	c.push(busy)

	item, ok := c.pop()
	if !ok || item != idle.item {
		t.Fatalf("expected to skip the busy entry and return idle, got %v, %v", item, ok)
	}
	if _, ok := c.pop(); ok {
		t.Fatal("expected the busy entry to have been discarded, not retried")
	}
}

func TestAffinityRegistry_isPerGoroutineButStableWithinOne(t *testing.T) {
	var r affinityRegistry[*testItem]

	c1 := r.forCurrentGoroutine()
	c2 := r.forCurrentGoroutine()
	if c1 != c2 {
		t.Fatal("expected the same goroutine to get the same cache instance")
	}

	done := make(chan *affinityCache[*testItem], 1)
	go func() {
		done <- r.forCurrentGoroutine()
	}()
	other := <-done
	if other == c1 {
		t.Fatal("expected a different goroutine to get a different cache instance")
	}
}
