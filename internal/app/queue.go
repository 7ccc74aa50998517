package app

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"notables-quiz-service/internal/domain"
)

// Queue keeps a short FIFO pipeline of prefetched questions so the
// client never blocks on image loads when advancing. The displayed
// question is always the head. A question only becomes visible once its
// own prefetch has completed; slots may therefore fill out of order.
type Queue struct {
	depth    int
	gen      *Generator
	prefetch *Prefetcher

	mu    sync.Mutex
	items []domain.QuestionSet
	epoch int
}

func NewQueue(depth int, gen *Generator, prefetch *Prefetcher) *Queue {
	return &Queue{depth: depth, gen: gen, prefetch: prefetch}
}

// EnsureFilled generates and prefetches questions until the queue holds
// the target depth. It blocks until every new entry is ready. Returns
// domain.ErrPoolTooSmall when the pool cannot supply a question; the
// caller treats that as "stay idle", not as a failure.
func (q *Queue) EnsureFilled(ctx context.Context, pool *Pool) error {
	q.mu.Lock()
	epoch := q.epoch
	need := q.depth - len(q.items)
	q.mu.Unlock()
	if need <= 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < need; i++ {
		qs, ok := q.gen.Generate(pool)
		if !ok {
			return domain.ErrPoolTooSmall
		}
		g.Go(func() error {
			q.prefetch.Prefetch(ctx, qs)
			q.append(epoch, qs)
			return nil
		})
	}
	return g.Wait()
}

// Advance removes the head (the just-answered question) and schedules
// one prefetched replacement so the depth recovers without blocking the
// caller. The returned channel closes when the replacement has either
// been appended or abandoned.
func (q *Queue) Advance(ctx context.Context, pool *Pool) <-chan struct{} {
	q.mu.Lock()
	if len(q.items) > 0 {
		q.items = q.items[1:]
	}
	epoch := q.epoch
	q.mu.Unlock()

	qs, ok := q.gen.Generate(pool)

	done := make(chan struct{})
	if !ok {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		q.prefetch.Prefetch(ctx, qs)
		q.append(epoch, qs)
	}()
	return done
}

// Head returns the current question without consuming it.
func (q *Queue) Head() (domain.QuestionSet, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return domain.QuestionSet{}, false
	}
	return q.items[0], true
}

// Len reports how many prefetched questions are ready.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Reset empties the queue and invalidates in-flight fills. Called when
// the active pool changes; questions built from the old pool would show
// stale or inconsistent options.
func (q *Queue) Reset() {
	q.mu.Lock()
	q.items = nil
	q.epoch++
	q.mu.Unlock()
}

func (q *Queue) append(epoch int, qs domain.QuestionSet) {
	q.mu.Lock()
	defer q.mu.Unlock()
	// A fill racing a Reset must not leak an old-pool question in.
	if epoch != q.epoch || len(q.items) >= q.depth {
		return
	}
	q.items = append(q.items, qs)
}
