package circuitbreaker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/procon-engine/backend/pkg/circuitbreaker"
)

var errBoom = errors.New("boom")

func newBreaker(timeout time.Duration) *circuitbreaker.CircuitBreaker {
	return circuitbreaker.New("test", circuitbreaker.Config{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		MaxRequests:      2,
		Timeout:          timeout,
	})
}

func fail(cb *circuitbreaker.CircuitBreaker) error {
	return cb.Execute(context.Background(), func() error { return errBoom })
}

func succeed(cb *circuitbreaker.CircuitBreaker) error {
	return cb.Execute(context.Background(), func() error { return nil })
}

func TestStaysClosedBelowThreshold(t *testing.T) {
	cb := newBreaker(time.Minute)

	fail(cb)
	fail(cb)

	if got := cb.State(); got != circuitbreaker.StateClosed {
		t.Fatalf("state = %v, want closed", got)
	}
	if err := succeed(cb); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
}

func TestOpensAfterConsecutiveFailures(t *testing.T) {
	cb := newBreaker(time.Minute)

	for i := 0; i < 3; i++ {
		fail(cb)
	}

	if got := cb.State(); got != circuitbreaker.StateOpen {
		t.Fatalf("state = %v, want open", got)
	}
	err := succeed(cb)
	if !errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		t.Fatalf("Execute() error = %v, want ErrCircuitOpen", err)
	}
}

func TestSuccessResetsFailureStreak(t *testing.T) {
	cb := newBreaker(time.Minute)

	fail(cb)
	fail(cb)
	succeed(cb)
	fail(cb)
	fail(cb)

	if got := cb.State(); got != circuitbreaker.StateClosed {
		t.Fatalf("state = %v, want closed after streak reset", got)
	}
}

func TestHalfOpenRecovery(t *testing.T) {
	cb := newBreaker(10 * time.Millisecond)

	for i := 0; i < 3; i++ {
		fail(cb)
	}
	time.Sleep(20 * time.Millisecond)

	if got := cb.State(); got != circuitbreaker.StateHalfOpen {
		t.Fatalf("state = %v, want half-open after timeout", got)
	}

	if err := succeed(cb); err != nil {
		t.Fatalf("probe request error = %v", err)
	}
	if err := succeed(cb); err != nil {
		t.Fatalf("probe request error = %v", err)
	}

	if got := cb.State(); got != circuitbreaker.StateClosed {
		t.Fatalf("state = %v, want closed after recovery", got)
	}
}

func TestHalfOpenFailureReopens(t *testing.T) {
	cb := newBreaker(10 * time.Millisecond)

	for i := 0; i < 3; i++ {
		fail(cb)
	}
	time.Sleep(20 * time.Millisecond)

	fail(cb)

	if got := cb.State(); got != circuitbreaker.StateOpen {
		t.Fatalf("state = %v, want open after half-open failure", got)
	}
}
