package retry_test

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"news-cadence/internal/resilience/retry"
)

func fastConfig(attempts int) retry.Config {
	return retry.Config{
		MaxAttempts:    attempts,
		InitialDelay:   time.Millisecond,
		MaxDelay:       5 * time.Millisecond,
		Multiplier:     2.0,
		JitterFraction: 0,
	}
}

func TestWithBackoff_SucceedsAfterTransientFailure(t *testing.T) {
	calls := 0
	err := retry.WithBackoff(context.Background(), fastConfig(3), func() error {
		calls++
		if calls < 3 {
			return syscall.ECONNRESET
		}
		return nil
	})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if calls != 3 {
		t.Fatalf("calls=%d", calls)
	}
}

func TestWithBackoff_NonRetryableFailsFast(t *testing.T) {
	calls := 0
	parseErr := errors.New("malformed payload")
	err := retry.WithBackoff(context.Background(), fastConfig(4), func() error {
		calls++
		return parseErr
	})
	if !errors.Is(err, parseErr) {
		t.Fatalf("err=%v", err)
	}
	if calls != 1 {
		t.Fatalf("calls=%d, want 1", calls)
	}
}

func TestWithBackoff_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := retry.WithBackoff(context.Background(), fastConfig(3), func() error {
		calls++
		return &retry.HTTPError{StatusCode: 503, Message: "unavailable"}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 3 {
		t.Fatalf("calls=%d, want 3", calls)
	}
}

func TestWithBackoff_CanceledContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retry.WithBackoff(ctx, fastConfig(5), func() error {
		return syscall.ECONNREFUSED
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v", err)
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"context canceled", context.Canceled, false},
		{"connection refused", syscall.ECONNREFUSED, true},
		{"connection reset", syscall.ECONNRESET, true},
		{"server error", &retry.HTTPError{StatusCode: 502}, true},
		{"rate limited", &retry.HTTPError{StatusCode: 429}, true},
		{"request timeout", &retry.HTTPError{StatusCode: 408}, true},
		{"not found", &retry.HTTPError{StatusCode: 404}, false},
		{"parse failure", errors.New("bad xml"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := retry.IsRetryable(tc.err); got != tc.want {
				t.Fatalf("IsRetryable(%v)=%v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
