package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testRetry(attempts int, retryable func(error) bool) *RetryConfig {
	return &RetryConfig{
		MaxAttempts: attempts,
		BaseDelay:   time.Millisecond,
		Retryable:   retryable,
		Logger:      NewLogger(false),
	}
}

func TestRetrySucceedsFirstTry(t *testing.T) {
	calls := 0
	err := testRetry(3, nil).Do(context.Background(), "op", func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d; want 1", calls)
	}
}

func TestRetryRecoversAfterFailures(t *testing.T) {
	calls := 0
	err := testRetry(3, nil).Do(context.Background(), "op", func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d; want 3", calls)
	}
}

func TestRetryExhaustsBudget(t *testing.T) {
	sentinel := errors.New("still broken")
	calls := 0
	err := testRetry(3, nil).Do(context.Background(), "op", func() error {
		calls++
		return sentinel
	})
	if calls != 3 {
		t.Errorf("calls = %d; want 3", calls)
	}
	if !errors.Is(err, sentinel) {
		t.Errorf("final error should wrap the last failure, got %v", err)
	}
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	sentinel := errors.New("bad request")
	calls := 0
	err := testRetry(5, func(error) bool { return false }).Do(context.Background(), "op", func() error {
		calls++
		return sentinel
	})
	if calls != 1 {
		t.Errorf("calls = %d; want 1", calls)
	}
	if !errors.Is(err, sentinel) {
		t.Errorf("non-retryable error should surface unchanged, got %v", err)
	}
}

func TestRetryHonorsContextDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   10 * time.Second,
		Logger:      NewLogger(false),
	}

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- r.Do(ctx, "op", func() error {
			calls++
			return errors.New("transient")
		})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if calls != 1 {
			t.Errorf("calls = %d; want 1", calls)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Do did not return after context cancellation")
	}
}
