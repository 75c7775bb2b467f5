package testutil

import (
	"context"
	"sync"
	"testing"
	"time"
)

// ConcurrencyTestConfig holds parameters for concurrency tests.
type ConcurrencyTestConfig struct {
	// NumGoroutines is the number of concurrent operations. Default: 20.
	NumGoroutines int

	// Timeout bounds each operation. An operation exceeding it counts as
	// a timeout, which usually means a deadlock. Default: 3 seconds.
	Timeout time.Duration
}

// ConcurrencyTestResult captures the outcome of a concurrency test.
type ConcurrencyTestResult struct {
	SuccessCount int
	ErrorCount   int
	TimeoutCount int
	MaxDuration  time.Duration
}

// RunConcurrent runs op from NumGoroutines goroutines at once and reports
// successes, errors and timeouts.
//
//	result := testutil.RunConcurrent(ctx, t, testutil.ConcurrencyTestConfig{},
//	    func(ctx context.Context, i int) error {
//	        return controller.RemoveItem(ctx, items[i])
//	    },
//	)
//	require.Zero(t, result.TimeoutCount)
func RunConcurrent(
	ctx context.Context,
	t *testing.T,
	config ConcurrencyTestConfig,
	op func(ctx context.Context, i int) error,
) ConcurrencyTestResult {
	t.Helper()

	if config.NumGoroutines == 0 {
		config.NumGoroutines = 20
	}
	if config.Timeout == 0 {
		config.Timeout = 3 * time.Second
	}

	type opResult struct {
		timeout  bool
		duration time.Duration
		err      error
	}

	results := make(chan opResult, config.NumGoroutines)
	var wg sync.WaitGroup

	for i := 0; i < config.NumGoroutines; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()

			opCtx, cancel := context.WithTimeout(ctx, config.Timeout)
			defer cancel()

			start := time.Now()
			done := make(chan error, 1)
			go func() {
				done <- op(opCtx, index)
			}()

			select {
			case err := <-done:
				results <- opResult{duration: time.Since(start), err: err}
			case <-opCtx.Done():
				results <- opResult{timeout: true, duration: time.Since(start), err: opCtx.Err()}
			}
		}(i)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var out ConcurrencyTestResult
	for r := range results {
		switch {
		case r.timeout:
			out.TimeoutCount++
			t.Logf("operation timed out after %v (potential deadlock)", r.duration)
		case r.err != nil:
			out.ErrorCount++
			t.Logf("operation failed: %v", r.err)
		default:
			out.SuccessCount++
		}
		if r.duration > out.MaxDuration {
			out.MaxDuration = r.duration
		}
	}
	return out
}
