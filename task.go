package busan

import (
	"context"
	"fmt"
	"sync"
)

// Func is a unit of work that produces a value.
//
// The context it receives is cancelled when the handle is cancelled with
// interrupt=true; a cooperative Func watches it and returns early.
type Func[T any] func(context.Context) (T, error)

// Action is a unit of work with no value of its own.
type Action func(context.Context) error

// Factory builds the handle for one task function. Service and
// CompletionQueue accept a Factory so callers can substitute an alternate
// handle implementation; nil selects NewTask.
type Factory[T any] func(ctx context.Context, fn Func[T]) Handle[T]

// State is the lifecycle state of a task handle.
type State int32

const (
	StatePending State = iota
	StateRunning
	StateSucceeded
	StateFailed
	StateCancelled
)

// Terminal reports whether s is a final state.
func (s State) Terminal() bool {
	return s >= StateSucceeded
}

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Runner is the unit of work an Executor accepts.
type Runner interface {
	Run()
}

// Handle is a submitted task: runnable by an Executor, awaitable and
// cancellable by everyone else.
//
// A handle reaches exactly one terminal state. Cancel on a terminal handle
// returns false and changes nothing.
type Handle[T any] interface {
	Runner

	// Done reports whether the handle reached a terminal state.
	Done() bool

	// State returns the current lifecycle state.
	State() State

	// Cancel moves a pending handle to StateCancelled. With interrupt=true
	// it also cancels a running handle's context; with interrupt=false a
	// running handle is left alone and Cancel returns false. The result
	// of a function that finishes after cancellation is dropped.
	Cancel(interrupt bool) bool

	// Get blocks until the handle is terminal or ctx ends. It returns the
	// task's value, the task's error, ErrCancelled for a cancelled handle,
	// or ctx.Err() if ctx ended first.
	Get(ctx context.Context) (T, error)
}

// Task is the default Handle implementation.
type Task[T any] struct {
	fn           Func[T]
	runCtx       context.Context
	interrupt    context.CancelFunc
	panicToError bool

	mu    sync.Mutex
	state State
	value T
	err   error
	done  chan struct{}
}

// NewTask wraps fn into a handle. ctx is the parent of the context fn runs
// under; Cancel(true) cancels that child context. Construction never runs fn.
func NewTask[T any](ctx context.Context, fn Func[T]) *Task[T] {
	return newTask(ctx, fn, true)
}

func newTask[T any](ctx context.Context, fn Func[T], panicToError bool) *Task[T] {
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, interrupt := context.WithCancel(ctx)

	return &Task[T]{
		fn:           fn,
		runCtx:       runCtx,
		interrupt:    interrupt,
		panicToError: panicToError,
		done:         make(chan struct{}),
	}
}

// Run executes the wrapped function once. Running a handle that is not
// pending is a no-op, so a cancelled task that reaches a worker does nothing.
func (t *Task[T]) Run() {
	t.mu.Lock()
	if t.state != StatePending {
		t.mu.Unlock()
		return
	}
	t.state = StateRunning
	t.mu.Unlock()

	var (
		value  T
		runErr error
	)
	func() {
		if t.panicToError {
			defer func() {
				if r := recover(); r != nil {
					runErr = fmt.Errorf("busan: panic recovered: %v", r)
				}
			}()
		}
		value, runErr = t.fn(t.runCtx)
	}()

	if runErr != nil {
		var zero T
		t.finish(StateFailed, zero, runErr)
	} else {
		t.finish(StateSucceeded, value, nil)
	}
}

func (t *Task[T]) finish(state State, value T, err error) bool {
	t.mu.Lock()
	if t.state.Terminal() {
		t.mu.Unlock()
		return false
	}
	t.state = state
	t.value = value
	t.err = err
	t.mu.Unlock()

	close(t.done)
	t.interrupt()
	return true
}

// Cancel implements Handle.Cancel.
func (t *Task[T]) Cancel(interrupt bool) bool {
	t.mu.Lock()
	if t.state.Terminal() || (t.state == StateRunning && !interrupt) {
		t.mu.Unlock()
		return false
	}
	t.state = StateCancelled
	t.err = ErrCancelled
	t.mu.Unlock()

	close(t.done)
	t.interrupt()
	return true
}

// Done reports whether the handle reached a terminal state.
func (t *Task[T]) Done() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// State returns the current lifecycle state.
func (t *Task[T]) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Get blocks until the task is terminal or ctx ends. A terminal result wins
// over a simultaneously ended ctx.
func (t *Task[T]) Get(ctx context.Context) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	select {
	case <-t.done:
	default:
		select {
		case <-t.done:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateSucceeded {
		return t.value, nil
	}
	var zero T
	return zero, t.err
}
