package throttle_test

import (
	"context"
	"testing"
	"time"

	"news-cadence/internal/infra/throttle"
)

func TestHostLimiter_SpacesSameHost(t *testing.T) {
	l := throttle.NewHostLimiter(50 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := l.Wait(ctx, "https://times-a.example/feed"); err != nil {
			t.Fatalf("Wait err=%v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Fatalf("three same-host requests took %v, want >= ~100ms", elapsed)
	}
}

func TestHostLimiter_DistinctHostsIndependent(t *testing.T) {
	l := throttle.NewHostLimiter(time.Second)
	ctx := context.Background()

	start := time.Now()
	hosts := []string{
		"https://times-a.example/feed",
		"https://times-b.example/feed",
		"https://times-c.example/feed",
	}
	for _, h := range hosts {
		if err := l.Wait(ctx, h); err != nil {
			t.Fatalf("Wait err=%v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Fatalf("distinct hosts delayed each other: %v", elapsed)
	}
}

func TestHostLimiter_Disabled(t *testing.T) {
	l := throttle.NewHostLimiter(0)
	start := time.Now()
	for i := 0; i < 10; i++ {
		if err := l.Wait(context.Background(), "https://times-a.example"); err != nil {
			t.Fatalf("Wait err=%v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Fatalf("disabled limiter delayed: %v", elapsed)
	}
}

func TestHostLimiter_CanceledContext(t *testing.T) {
	l := throttle.NewHostLimiter(time.Hour)
	ctx := context.Background()
	if err := l.Wait(ctx, "https://times-a.example"); err != nil {
		t.Fatalf("first Wait err=%v", err)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if err := l.Wait(canceled, "https://times-a.example"); err == nil {
		t.Fatal("expected error from canceled context")
	}
}
