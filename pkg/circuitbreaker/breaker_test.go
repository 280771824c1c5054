package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errUpstream = errors.New("upstream down")

func failN(cb *CircuitBreaker, n int) {
	for i := 0; i < n; i++ {
		cb.Execute(context.Background(), func() error { return errUpstream })
	}
}

func TestOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker("test", Config{FailureThreshold: 3, Timeout: time.Minute})

	failN(cb, 2)
	if cb.State() != StateClosed {
		t.Fatal("circuit opened too early")
	}

	failN(cb, 1)
	if cb.State() != StateOpen {
		t.Fatal("circuit should open at the threshold")
	}

	err := cb.Execute(context.Background(), func() error {
		t.Fatal("open circuit must not call through")
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker("test", Config{FailureThreshold: 3, Timeout: time.Minute})

	failN(cb, 2)
	if err := cb.Execute(context.Background(), func() error { return nil }); err != nil {
		t.Fatal(err)
	}
	failN(cb, 2)
	if cb.State() != StateClosed {
		t.Error("non-consecutive failures must not open the circuit")
	}
}

func TestHalfOpenProbeCloses(t *testing.T) {
	cb := NewCircuitBreaker("test", Config{FailureThreshold: 1, Timeout: 10 * time.Millisecond})

	failN(cb, 1)
	if cb.State() != StateOpen {
		t.Fatal("circuit should be open")
	}

	time.Sleep(15 * time.Millisecond)
	if err := cb.Execute(context.Background(), func() error { return nil }); err != nil {
		t.Fatalf("probe should run after the cooldown: %v", err)
	}
	if cb.State() != StateClosed {
		t.Error("successful probe must close the circuit")
	}
}

func TestHalfOpenProbeFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("test", Config{FailureThreshold: 1, Timeout: 10 * time.Millisecond})

	failN(cb, 1)
	time.Sleep(15 * time.Millisecond)
	failN(cb, 1)
	if cb.State() != StateOpen {
		t.Error("failed probe must reopen the circuit")
	}
}
