package circuitbreaker_test

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"

	"news-cadence/internal/resilience/circuitbreaker"
)

func testConfig() circuitbreaker.Config {
	return circuitbreaker.Config{
		Name:             "test",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 0.5,
		MinRequests:      4,
	}
}

func TestExecute_PassesThroughWhileClosed(t *testing.T) {
	cb := circuitbreaker.New(testConfig())

	result, err := cb.Execute(func() (interface{}, error) {
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Execute err=%v", err)
	}
	if result.(string) != "ok" {
		t.Fatalf("result=%v", result)
	}
	if cb.State() != gobreaker.StateClosed {
		t.Fatalf("state=%v", cb.State())
	}
}

func TestExecute_TripsAfterFailureRatio(t *testing.T) {
	cb := circuitbreaker.New(testConfig())
	boom := errors.New("fetch failed")

	for i := 0; i < 4; i++ {
		_, _ = cb.Execute(func() (interface{}, error) {
			return nil, boom
		})
	}

	if cb.State() != gobreaker.StateOpen {
		t.Fatalf("state=%v, want open", cb.State())
	}
	if _, err := cb.Execute(func() (interface{}, error) {
		t.Fatal("open circuit must not run the function")
		return nil, nil
	}); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("err=%v, want ErrOpenState", err)
	}
}

func TestExecute_BelowMinRequestsStaysClosed(t *testing.T) {
	cb := circuitbreaker.New(testConfig())

	for i := 0; i < 3; i++ {
		_, _ = cb.Execute(func() (interface{}, error) {
			return nil, errors.New("fetch failed")
		})
	}
	if cb.State() != gobreaker.StateClosed {
		t.Fatalf("state=%v, want closed", cb.State())
	}
}
