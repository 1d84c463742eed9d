package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastPolicy() Policy {
	return Policy{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2.0,
		BreakerEnabled:      false,
	}
}

func retryAlways(error) Outcome {
	return Outcome{Retryable: true, RecordFailure: true}
}

func TestExecuteRetriesUntilSuccess(t *testing.T) {
	e := NewExecutor(fastPolicy())

	calls := 0
	err := e.Execute(context.Background(), "ocr", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, retryAlways)

	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestExecuteStopsOnNonRetryable(t *testing.T) {
	e := NewExecutor(fastPolicy())

	calls := 0
	wantErr := errors.New("bad request")
	err := e.Execute(context.Background(), "embed", func(context.Context) error {
		calls++
		return wantErr
	}, func(error) Outcome {
		return Outcome{Retryable: false, RecordFailure: false}
	})

	if !errors.Is(err, wantErr) {
		t.Fatalf("expected original error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("non-retryable errors must not be retried, calls=%d", calls)
	}
}

func TestExecuteExhaustsAttempts(t *testing.T) {
	e := NewExecutor(fastPolicy())

	calls := 0
	err := e.Execute(context.Background(), "complete", func(context.Context) error {
		calls++
		return errors.New("still down")
	}, retryAlways)

	if err == nil {
		t.Fatal("expected the last error back")
	}
	if calls != 3 {
		t.Fatalf("expected attempts to cap at 3, got %d", calls)
	}
}

func TestExecuteHonorsCancelledContext(t *testing.T) {
	e := NewExecutor(fastPolicy())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := e.Execute(ctx, "complete", func(context.Context) error {
		calls++
		return nil
	}, nil)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("cancelled context must short-circuit, calls=%d", calls)
	}
}

func TestBreakerOpensAfterFailureRatio(t *testing.T) {
	policy := fastPolicy()
	policy.BreakerEnabled = true
	policy.BreakerMinRequests = 2
	policy.BreakerFailureRatio = 0.5
	policy.BreakerOpenTimeout = time.Minute
	policy.RetryMaxAttempts = 1
	e := NewExecutor(policy)

	boom := errors.New("provider down")
	for i := 0; i < 2; i++ {
		_ = e.Execute(context.Background(), "ocr", func(context.Context) error {
			return boom
		}, retryAlways)
	}

	err := e.Execute(context.Background(), "ocr", func(context.Context) error {
		t.Fatal("open breaker must not invoke the operation")
		return nil
	}, retryAlways)

	if !IsCircuitOpen(err) {
		t.Fatalf("expected an open-circuit error, got %v", err)
	}
}

func TestBreakersAreIsolatedPerOperation(t *testing.T) {
	policy := fastPolicy()
	policy.BreakerEnabled = true
	policy.BreakerMinRequests = 2
	policy.BreakerFailureRatio = 0.5
	policy.BreakerOpenTimeout = time.Minute
	policy.RetryMaxAttempts = 1
	e := NewExecutor(policy)

	for i := 0; i < 3; i++ {
		_ = e.Execute(context.Background(), "ocr", func(context.Context) error {
			return errors.New("down")
		}, retryAlways)
	}

	if err := e.Execute(context.Background(), "embed", func(context.Context) error {
		return nil
	}, retryAlways); err != nil {
		t.Fatalf("unrelated operation must stay closed, got %v", err)
	}
}
