package bag

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestWaitStation_acquireSucceedsImmediatelyIfAlreadyPastWitness(t *testing.T) {
	var seq atomic.Int64
	seq.Store(5)
	ws := newWaitStation(&seq)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := ws.acquire(ctx, 4); err != nil {
		t.Fatalf("expected immediate success, got %v", err)
	}
}

func TestWaitStation_acquireTimesOut(t *testing.T) {
	var seq atomic.Int64
	seq.Store(1)
	ws := newWaitStation(&seq)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	err := ws.acquire(ctx, 1)
	elapsed := time.Since(start)
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	if elapsed < 20*time.Millisecond {
		t.Fatalf("returned too early: %v", elapsed)
	}
	if ws.pending() != 0 {
		t.Fatalf("expected the ticket to be forgotten, got pending %d", ws.pending())
	}
}

func TestWaitStation_releaseWakesSatisfiedWaiters(t *testing.T) {
	var seq atomic.Int64
	seq.Store(1)
	ws := newWaitStation(&seq)

	done := make(chan error, 1)
	go func() {
		done <- ws.acquire(context.Background(), 1)
	}()

	// give the goroutine a chance to register its ticket
	for ws.pending() == 0 {
		time.Sleep(time.Millisecond)
	}

	seq.Add(1)
	ws.release()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected acquire to succeed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for acquire to return")
	}
}

func TestWaitStation_releaseOnlyWakesSatisfiedWitnesses(t *testing.T) {
	var seq atomic.Int64
	seq.Store(1)
	ws := newWaitStation(&seq)

	lowDone := make(chan error, 1)
	highDone := make(chan error, 1)
	go func() { lowDone <- ws.acquire(context.Background(), 1) }()
	go func() { highDone <- ws.acquire(context.Background(), 2) }()

	for ws.pending() < 2 {
		time.Sleep(time.Millisecond)
	}

	seq.Add(1) // seq is now 2: satisfies witness 1, not witness 2
	ws.release()

	select {
	case err := <-lowDone:
		if err != nil {
			t.Fatalf("expected low witness to be woken, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the satisfied waiter")
	}

	select {
	case <-highDone:
		t.Fatal("high witness should not have been woken yet")
	case <-time.After(50 * time.Millisecond):
	}

	seq.Add(1) // seq is now 3: satisfies witness 2
	ws.release()

	select {
	case err := <-highDone:
		if err != nil {
			t.Fatalf("expected high witness to be woken, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the second waiter")
	}
}

func TestWaitStation_acquireRespectsContextCancel(t *testing.T) {
	var seq atomic.Int64
	seq.Store(1)
	ws := newWaitStation(&seq)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ws.acquire(ctx, 1) }()

	for ws.pending() == 0 {
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for cancellation to be observed")
	}
}
