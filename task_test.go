package busan

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTaskRunStoresValue(t *testing.T) {
	t.Parallel()

	task := NewTask(context.Background(), func(context.Context) (int, error) {
		return 42, nil
	})

	if got := task.State(); got != StatePending {
		t.Fatalf("expected pending before run, got %s", got)
	}

	task.Run()

	if got := task.State(); got != StateSucceeded {
		t.Fatalf("expected succeeded after run, got %s", got)
	}
	if !task.Done() {
		t.Fatal("expected done after run")
	}

	value, err := task.Get(context.Background())
	if err != nil || value != 42 {
		t.Fatalf("expected value=42, err=nil, got value=%d err=%v", value, err)
	}
}

func TestTaskRunStoresError(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")
	task := NewTask(context.Background(), func(context.Context) (int, error) {
		return 7, errBoom
	})

	task.Run()

	if got := task.State(); got != StateFailed {
		t.Fatalf("expected failed after run, got %s", got)
	}

	value, err := task.Get(context.Background())
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if value != 0 {
		t.Fatalf("expected zero value on failure, got %d", value)
	}
}

func TestTaskCancelBeforeRun(t *testing.T) {
	t.Parallel()

	ran := false
	task := NewTask(context.Background(), func(context.Context) (int, error) {
		ran = true
		return 1, nil
	})

	if !task.Cancel(false) {
		t.Fatal("expected cancel of a pending task to succeed")
	}
	if task.Cancel(true) {
		t.Fatal("expected second cancel to be a no-op")
	}

	task.Run()

	if ran {
		t.Fatal("expected cancelled task not to run")
	}
	if got := task.State(); got != StateCancelled {
		t.Fatalf("expected cancelled, got %s", got)
	}
	if _, err := task.Get(context.Background()); !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

func TestTaskCancelRunning(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	returned := make(chan struct{})
	task := NewTask(context.Background(), func(ctx context.Context) (int, error) {
		close(started)
		<-ctx.Done()
		return 0, ctx.Err()
	})

	go func() {
		task.Run()
		close(returned)
	}()
	<-started

	if task.Cancel(false) {
		t.Fatal("expected cancel without interrupt to fail on a running task")
	}
	if !task.Cancel(true) {
		t.Fatal("expected interrupting cancel to succeed")
	}

	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("expected interrupted task function to return")
	}

	if got := task.State(); got != StateCancelled {
		t.Fatalf("expected cancelled, got %s", got)
	}
	if _, err := task.Get(context.Background()); !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

func TestTaskCancelAfterCompletionIsNoop(t *testing.T) {
	t.Parallel()

	task := NewTask(context.Background(), func(context.Context) (int, error) {
		return 5, nil
	})
	task.Run()

	if task.Cancel(true) {
		t.Fatal("expected cancel after completion to fail")
	}
	if value, err := task.Get(context.Background()); err != nil || value != 5 {
		t.Fatalf("expected value=5 to survive cancel, got value=%d err=%v", value, err)
	}
}

func TestTaskPanicToError(t *testing.T) {
	t.Parallel()

	task := NewTask(context.Background(), func(context.Context) (int, error) {
		panic("kaboom")
	})
	task.Run()

	if got := task.State(); got != StateFailed {
		t.Fatalf("expected failed after panic, got %s", got)
	}
	_, err := task.Get(context.Background())
	if err == nil || !strings.Contains(err.Error(), "panic recovered: kaboom") {
		t.Fatalf("unexpected panic error: %v", err)
	}
}

func TestTaskGetHonorsCallerContext(t *testing.T) {
	t.Parallel()

	task := NewTask(context.Background(), func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	if _, err := task.Get(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error from get, got %v", err)
	}
	if task.Done() {
		t.Fatal("expected task to stay pending after get gave up")
	}
}
