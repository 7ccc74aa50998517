package app

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"notables-quiz-service/internal/domain"
)

func newTestQueue(depth int) (*Queue, *fakeFetcher) {
	fetcher := newFakeFetcher()
	gen := NewGeneratorWithSource(rand.NewSource(3))
	return NewQueue(depth, gen, NewPrefetcher(fetcher)), fetcher
}

func TestQueueEnsureFilledReachesDepth(t *testing.T) {
	q, _ := newTestQueue(5)
	pool := testPool(10)

	if err := q.EnsureFilled(context.Background(), pool); err != nil {
		t.Fatalf("ensure filled: %v", err)
	}
	if q.Len() != 5 {
		t.Fatalf("expected depth 5, got %d", q.Len())
	}
	if _, ok := q.Head(); !ok {
		t.Fatalf("expected a head question")
	}

	// Already full: a second call is a no-op.
	if err := q.EnsureFilled(context.Background(), pool); err != nil {
		t.Fatalf("refill of full queue: %v", err)
	}
	if q.Len() != 5 {
		t.Fatalf("refill overfilled the queue: %d", q.Len())
	}
}

func TestQueueEnsureFilledSmallPool(t *testing.T) {
	q, _ := newTestQueue(3)
	err := q.EnsureFilled(context.Background(), testPool(3))
	if !errors.Is(err, domain.ErrPoolTooSmall) {
		t.Fatalf("expected ErrPoolTooSmall, got %v", err)
	}
	if q.Len() != 0 {
		t.Fatalf("queue should stay empty, got %d", q.Len())
	}
}

func TestQueueAdvanceReplacesHead(t *testing.T) {
	q, _ := newTestQueue(3)
	pool := testPool(10)
	if err := q.EnsureFilled(context.Background(), pool); err != nil {
		t.Fatalf("ensure filled: %v", err)
	}

	q.mu.Lock()
	second := q.items[1]
	q.mu.Unlock()

	done := q.Advance(context.Background(), pool)

	// Depth dips by at most one while the replacement is in flight.
	if n := q.Len(); n < 2 {
		t.Fatalf("advance dropped below depth-1: %d", n)
	}
	<-done
	if q.Len() != 3 {
		t.Fatalf("expected depth restored to 3, got %d", q.Len())
	}

	// FIFO: the former second element is now the head.
	newHead, ok := q.Head()
	if !ok {
		t.Fatalf("expected head after advance")
	}
	if newHead.Correct.WikidataURL != second.Correct.WikidataURL || newHead.Options != second.Options {
		t.Fatalf("advance did not promote the next question: head %s, expected %s",
			newHead.Correct.WikidataURL, second.Correct.WikidataURL)
	}
}

func TestQueueResetInvalidatesInFlightFills(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.gate = make(chan struct{})
	gen := NewGeneratorWithSource(rand.NewSource(9))
	q := NewQueue(2, gen, NewPrefetcher(fetcher))
	pool := testPool(10)

	errc := make(chan error, 1)
	go func() { errc <- q.EnsureFilled(context.Background(), pool) }()

	// Give the fill a moment to block on the gated fetcher, then reset.
	time.Sleep(20 * time.Millisecond)
	q.Reset()
	close(fetcher.gate)
	if err := <-errc; err != nil {
		t.Fatalf("ensure filled: %v", err)
	}

	// The stale fills completed their prefetch but must not have been
	// appended to the reset queue.
	if q.Len() != 0 {
		t.Fatalf("stale fill leaked into reset queue: %d", q.Len())
	}
}

func TestQueueAdvanceOnEmptyQueue(t *testing.T) {
	q, _ := newTestQueue(2)
	pool := testPool(1)

	done := q.Advance(context.Background(), pool)
	<-done
	if q.Len() != 0 {
		t.Fatalf("advance on unfillable pool should leave queue empty")
	}
}
