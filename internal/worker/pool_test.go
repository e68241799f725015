package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
)

func TestExecutePreservesInputOrder(t *testing.T) {
	inputs := make([]int, 100)
	for i := range inputs {
		inputs[i] = i
	}

	pool := NewPool(8, func(_ context.Context, n int) (int, error) {
		return n * 2, nil
	})

	results := pool.Execute(context.Background(), inputs)
	if len(results) != len(inputs) {
		t.Fatalf("results len = %d, want %d", len(results), len(inputs))
	}
	for i, res := range results {
		if res.Input != i || res.Result != i*2 {
			t.Errorf("result %d = %+v, want input %d result %d", i, res, i, i*2)
		}
	}
}

func TestExecuteRecordsPerTaskErrors(t *testing.T) {
	pool := NewPool(2, func(_ context.Context, n int) (string, error) {
		if n%2 == 1 {
			return "", fmt.Errorf("odd input %d", n)
		}
		return fmt.Sprintf("ok-%d", n), nil
	})

	results := pool.Execute(context.Background(), []int{0, 1, 2, 3})

	for i, res := range results {
		if i%2 == 1 && res.Err == nil {
			t.Errorf("result %d should carry an error", i)
		}
		if i%2 == 0 && (res.Err != nil || res.Result != fmt.Sprintf("ok-%d", i)) {
			t.Errorf("result %d = %+v", i, res)
		}
	}
}

func TestExecuteHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var processed atomic.Int32
	pool := NewPool(1, func(ctx context.Context, n int) (int, error) {
		if processed.Add(1) == 1 {
			cancel()
		}
		return n, nil
	})

	inputs := make([]int, 1000)
	results := pool.Execute(ctx, inputs)

	if len(results) != len(inputs) {
		t.Fatalf("results len = %d, want %d", len(results), len(inputs))
	}
	if n := processed.Load(); n == int32(len(inputs)) {
		t.Error("cancellation should leave some inputs unprocessed")
	}
}

func TestNewPoolClampsWorkers(t *testing.T) {
	pool := NewPool(0, func(_ context.Context, n int) (int, error) {
		return n, nil
	})
	results := pool.Execute(context.Background(), []int{1, 2, 3})
	if len(results) != 3 {
		t.Fatalf("results len = %d, want 3", len(results))
	}
	var errs int
	for _, res := range results {
		if res.Err != nil && errors.Is(res.Err, context.Canceled) {
			errs++
		}
	}
	if errs != 0 {
		t.Errorf("unexpected cancellation errors: %d", errs)
	}
}
