package busan

import (
	"context"
	"fmt"
	"time"
)

// Service coordinates task execution on top of an Executor.
//
// One Service handles tasks of one value type; the zero cost of creating a
// Service makes one per type the normal pattern.
type Service[T any] struct {
	ctx     context.Context
	exec    Executor
	factory Factory[T]
}

// NewService creates a Service. ctx is the parent of every handle's run
// context, so cancelling it interrupts all in-flight work submitted through
// the service. A nil factory selects the default Task handle.
func NewService[T any](ctx context.Context, exec Executor, factory Factory[T], opts ...Option) *Service[T] {
	if ctx == nil {
		ctx = context.Background()
	}
	if exec == nil {
		panic("busan: nil executor")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if factory == nil {
		factory = func(fctx context.Context, fn Func[T]) Handle[T] {
			return newTask(fctx, fn, cfg.panicToError)
		}
	}

	return &Service[T]{
		ctx:     ctx,
		exec:    exec,
		factory: factory,
	}
}

// Submit wraps fn into a handle, hands it to the Executor, and returns the
// handle without waiting for it to run. An Executor rejection propagates
// as-is and no handle is returned.
func (s *Service[T]) Submit(fn Func[T]) (Handle[T], error) {
	if fn == nil {
		return nil, ErrNilTask
	}

	h := s.factory(s.ctx, fn)
	if err := s.exec.Execute(h); err != nil {
		h.Cancel(false)
		return nil, err
	}
	return h, nil
}

// SubmitAction submits an action; the handle's eventual value is the zero T.
func (s *Service[T]) SubmitAction(fn Action) (Handle[T], error) {
	var zero T
	return s.SubmitActionValue(fn, zero)
}

// SubmitActionValue submits an action; the handle's eventual value is result.
func (s *Service[T]) SubmitActionValue(fn Action, result T) (Handle[T], error) {
	if fn == nil {
		return nil, ErrNilTask
	}

	return s.Submit(func(ctx context.Context) (T, error) {
		if err := fn(ctx); err != nil {
			var zero T
			return zero, err
		}
		return result, nil
	})
}

// InvokeAny runs fns until one succeeds and returns that value. Every handle
// the call created is cancelled before it returns, on every exit path. When
// every task fails, the returned error wraps ErrNoSuccess and the last task
// error observed.
func (s *Service[T]) InvokeAny(ctx context.Context, fns []Func[T]) (T, error) {
	return s.doInvokeAny(ctx, fns, false, 0)
}

// InvokeAnyTimeout is InvokeAny bounded by a deadline budget measured from
// call start. It returns ErrTimeout when the budget runs out with no success
// yet. The budget is consumed only by blocking waits; a budget that is
// already exhausted still allows non-blocking polls, so tasks that finished
// fast are observed.
func (s *Service[T]) InvokeAnyTimeout(ctx context.Context, fns []Func[T], timeout time.Duration) (T, error) {
	return s.doInvokeAny(ctx, fns, true, timeout)
}

// doInvokeAny submits incrementally: one task up front, one more on each
// empty poll, and blocks only when nothing is ready and nothing is left to
// submit. The interleaving bounds concurrent resource use to roughly one
// task per failure observed so far.
func (s *Service[T]) doInvokeAny(ctx context.Context, fns []Func[T], timed bool, timeout time.Duration) (T, error) {
	var zero T
	if ctx == nil {
		ctx = context.Background()
	}
	if fns == nil {
		return zero, ErrNilTasks
	}
	if len(fns) == 0 {
		return zero, ErrNoTasks
	}
	for _, fn := range fns {
		if fn == nil {
			return zero, ErrNilTask
		}
	}

	queue := NewCompletionQueue(s.ctx, s.exec, s.factory)
	futures := make([]Handle[T], 0, len(fns))
	defer func() {
		for _, f := range futures {
			f.Cancel(true)
		}
	}()

	// Record task errors so that if no result is obtained, the last one
	// observed can be reported.
	var lastErr error
	remaining := timeout
	lastTime := time.Now()

	// Start one task for sure; the rest are submitted incrementally.
	next := 0
	h, err := queue.Submit(fns[next])
	if err != nil {
		return zero, err
	}
	futures = append(futures, h)
	next++
	outstanding := 1

	for {
		f, ok := queue.Poll()
		if !ok {
			switch {
			case next < len(fns):
				h, err := queue.Submit(fns[next])
				if err != nil {
					return zero, err
				}
				futures = append(futures, h)
				next++
				outstanding++
				continue

			case outstanding == 0:
				if lastErr == nil {
					return zero, ErrNoSuccess
				}
				return zero, fmt.Errorf("%w: %w", ErrNoSuccess, lastErr)

			case timed:
				waitCtx, cancel := context.WithTimeout(ctx, remaining)
				f, err = queue.Take(waitCtx)
				cancel()
				if err != nil {
					if ctx.Err() != nil {
						return zero, ctx.Err()
					}
					return zero, ErrTimeout
				}
				now := time.Now()
				remaining -= now.Sub(lastTime)
				lastTime = now

			default:
				f, err = queue.Take(ctx)
				if err != nil {
					return zero, err
				}
			}
		}

		outstanding--
		value, taskErr := f.Get(ctx)
		if taskErr == nil {
			return value, nil
		}
		lastErr = taskErr
	}
}

// InvokeAll submits every task and blocks until each handle is terminal.
// The returned slice matches fns in order and length; per-task failures and
// cancellations are not errors here, they stay recorded on the handles.
//
// On error (rejection, or ctx ending mid-wait) the full slice is still
// returned and every handle in it has been cancelled.
func (s *Service[T]) InvokeAll(ctx context.Context, fns []Func[T]) ([]Handle[T], error) {
	if ctx == nil {
		ctx = context.Background()
	}
	futures, err := s.newHandles(fns)
	if err != nil {
		return nil, err
	}
	defer cancelAll(futures)

	for _, f := range futures {
		if err := s.exec.Execute(f); err != nil {
			return futures, err
		}
	}

	for _, f := range futures {
		if f.Done() {
			continue
		}
		if _, err := f.Get(ctx); err != nil && !f.Done() {
			return futures, err
		}
	}
	return futures, nil
}

// InvokeAllTimeout is InvokeAll under one deadline budget shared by
// submission and waiting. When the budget runs out the call returns the full
// slice immediately instead of an error; handles that did not finish in time
// are cancelled and left for the caller to inspect.
func (s *Service[T]) InvokeAllTimeout(ctx context.Context, fns []Func[T], timeout time.Duration) ([]Handle[T], error) {
	if ctx == nil {
		ctx = context.Background()
	}
	futures, err := s.newHandles(fns)
	if err != nil {
		return nil, err
	}
	defer cancelAll(futures)

	remaining := timeout
	lastTime := time.Now()

	// Re-measure after every Execute: submission itself blocks on a
	// bounded pool, and that time comes out of the same budget.
	for _, f := range futures {
		if err := s.exec.Execute(f); err != nil {
			return futures, err
		}
		now := time.Now()
		remaining -= now.Sub(lastTime)
		lastTime = now
		if remaining <= 0 {
			return futures, nil
		}
	}

	for _, f := range futures {
		if f.Done() {
			continue
		}
		if remaining <= 0 {
			return futures, nil
		}
		waitCtx, cancel := context.WithTimeout(ctx, remaining)
		_, err := f.Get(waitCtx)
		cancel()
		if err != nil && !f.Done() {
			if ctx.Err() != nil {
				return futures, ctx.Err()
			}
			return futures, nil
		}
		now := time.Now()
		remaining -= now.Sub(lastTime)
		lastTime = now
	}
	return futures, nil
}

// newHandles validates fns and builds one handle per task, in order.
// Nothing is submitted yet.
func (s *Service[T]) newHandles(fns []Func[T]) ([]Handle[T], error) {
	if fns == nil {
		return nil, ErrNilTasks
	}
	for _, fn := range fns {
		if fn == nil {
			return nil, ErrNilTask
		}
	}

	futures := make([]Handle[T], 0, len(fns))
	for _, fn := range fns {
		futures = append(futures, s.factory(s.ctx, fn))
	}
	return futures, nil
}

// cancelAll issues best-effort cancellation; terminal handles ignore it.
func cancelAll[T any](futures []Handle[T]) {
	for _, f := range futures {
		f.Cancel(true)
	}
}
