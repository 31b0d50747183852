package busan

import "errors"

var (
	// ErrNilTask is returned when a task function is nil.
	ErrNilTask = errors.New("busan: nil task")

	// ErrNilTasks is returned when a task list is nil.
	ErrNilTasks = errors.New("busan: nil task list")

	// ErrNoTasks is returned by InvokeAny when the task list is empty.
	ErrNoTasks = errors.New("busan: empty task list")

	// ErrRejected is returned by a nonblocking Pool that is at its limit.
	ErrRejected = errors.New("busan: task rejected")

	// ErrPoolClosed is returned by Execute after Close.
	ErrPoolClosed = errors.New("busan: pool is closed")

	// ErrCancelled is reported by Get on a cancelled handle.
	ErrCancelled = errors.New("busan: task cancelled")

	// ErrTimeout is returned by InvokeAnyTimeout when the deadline budget
	// runs out before any task succeeds.
	ErrTimeout = errors.New("busan: deadline exhausted")

	// ErrNoSuccess is returned by InvokeAny when every task failed.
	// It wraps the last task error observed, if any.
	ErrNoSuccess = errors.New("busan: no task succeeded")
)
