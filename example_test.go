package busan_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jaeyoung0509/busan"
)

func ExampleService_invokeAny() {
	// 1) Create an executor and a service on top of it.
	pool := busan.NewPool(context.Background(), busan.WithMaxWorkers(4))
	s := busan.NewService[string](context.Background(), pool, nil)

	// 2) Race the tasks; the first success wins, the rest are cancelled.
	value, err := s.InvokeAny(context.Background(), []busan.Func[string]{
		func(context.Context) (string, error) {
			return "", errors.New("primary mirror down")
		},
		func(context.Context) (string, error) {
			return "payload from the secondary mirror", nil
		},
	})
	if err != nil {
		panic(err)
	}

	fmt.Println(value)
	// Output:
	// payload from the secondary mirror
}

func ExampleService_invokeAll() {
	pool := busan.NewPool(context.Background())
	s := busan.NewService[int](context.Background(), pool, nil)

	// InvokeAll returns one handle per task, in input order, all terminal.
	futures, err := s.InvokeAll(context.Background(), []busan.Func[int]{
		func(context.Context) (int, error) { return 1, nil },
		func(context.Context) (int, error) { return 0, errors.New("boom") },
		func(context.Context) (int, error) { return 3, nil },
	})
	if err != nil {
		panic(err)
	}

	for i, f := range futures {
		value, err := f.Get(context.Background())
		if err != nil {
			fmt.Printf("task %d failed: %v\n", i, err)
			continue
		}
		fmt.Printf("task %d = %d\n", i, value)
	}
	// Output:
	// task 0 = 1
	// task 1 failed: boom
	// task 2 = 3
}

func ExampleService_submit() {
	pool := busan.NewPool(context.Background())
	s := busan.NewService[int](context.Background(), pool, nil)

	h, err := s.Submit(func(context.Context) (int, error) {
		return 21 * 2, nil
	})
	if err != nil {
		panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	value, err := h.Get(ctx)
	fmt.Println(value, err)
	// Output:
	// 42 <nil>
}
