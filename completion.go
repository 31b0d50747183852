package busan

import (
	"context"
	"sync"
)

// CompletionQueue submits tasks to an Executor and yields their handles in
// completion order, independent of submission order.
//
// One queue serves one coordination call or one consumer loop; handles
// submitted through other paths never appear on it.
type CompletionQueue[T any] struct {
	ctx     context.Context
	exec    Executor
	factory Factory[T]

	mu      sync.Mutex
	ready   []Handle[T]
	waiters []chan Handle[T]
}

// NewCompletionQueue creates a queue on top of exec. A nil factory selects
// NewTask.
func NewCompletionQueue[T any](ctx context.Context, exec Executor, factory Factory[T]) *CompletionQueue[T] {
	if ctx == nil {
		ctx = context.Background()
	}
	if factory == nil {
		factory = func(fctx context.Context, fn Func[T]) Handle[T] {
			return NewTask(fctx, fn)
		}
	}

	return &CompletionQueue[T]{
		ctx:     ctx,
		exec:    exec,
		factory: factory,
	}
}

// queueingRunner runs a handle and then pushes it onto its queue, so the
// queue observes the handle exactly once, after it is terminal.
type queueingRunner[T any] struct {
	h Handle[T]
	q *CompletionQueue[T]
}

func (r queueingRunner[T]) Run() {
	r.h.Run()
	r.q.push(r.h)
}

// Submit wraps fn into a handle, schedules it, and arranges for the handle
// to be delivered by Poll/Take once it is terminal. An Executor rejection
// is returned as-is; the orphaned handle is cancelled first.
func (q *CompletionQueue[T]) Submit(fn Func[T]) (Handle[T], error) {
	if fn == nil {
		return nil, ErrNilTask
	}

	h := q.factory(q.ctx, fn)
	if err := q.exec.Execute(queueingRunner[T]{h: h, q: q}); err != nil {
		h.Cancel(false)
		return nil, err
	}
	return h, nil
}

// Poll returns a completed handle without blocking, or ok=false when none
// is ready.
func (q *CompletionQueue[T]) Poll() (Handle[T], bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.ready) == 0 {
		return nil, false
	}
	h := q.ready[0]
	q.ready = q.ready[1:]
	return h, true
}

// Take blocks until a completed handle is available or ctx ends. A handle
// that was already delivered to this waiter when ctx ends is still returned
// rather than lost. Give ctx a deadline for a bounded poll.
func (q *CompletionQueue[T]) Take(ctx context.Context) (Handle[T], error) {
	if ctx == nil {
		ctx = context.Background()
	}

	q.mu.Lock()
	if len(q.ready) > 0 {
		h := q.ready[0]
		q.ready = q.ready[1:]
		q.mu.Unlock()
		return h, nil
	}
	w := make(chan Handle[T], 1)
	q.waiters = append(q.waiters, w)
	q.mu.Unlock()

	select {
	case h := <-w:
		return h, nil
	case <-ctx.Done():
		q.mu.Lock()
		if idx := indexOfWaiter(q.waiters, w); idx != -1 {
			q.waiters = removeWaiter(q.waiters, idx)
			q.mu.Unlock()
			return nil, ctx.Err()
		}
		q.mu.Unlock()
		return <-w, nil
	}
}

func (q *CompletionQueue[T]) push(h Handle[T]) {
	q.mu.Lock()
	if len(q.waiters) > 0 {
		w := q.waiters[0]
		q.waiters = q.waiters[1:]
		q.mu.Unlock()
		w <- h
		return
	}
	q.ready = append(q.ready, h)
	q.mu.Unlock()
}

func indexOfWaiter[T any](waiters []chan Handle[T], target chan Handle[T]) int {
	for i, waiter := range waiters {
		if waiter == target {
			return i
		}
	}
	return -1
}

func removeWaiter[T any](waiters []chan Handle[T], idx int) []chan Handle[T] {
	copy(waiters[idx:], waiters[idx+1:])
	waiters[len(waiters)-1] = nil
	return waiters[:len(waiters)-1]
}
