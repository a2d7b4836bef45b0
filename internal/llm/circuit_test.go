package llm

import (
	"errors"
	"testing"
	"time"
)

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 3, SuccessThreshold: 2, Timeout: time.Hour})

	if err := cb.Allow(); err != nil {
		t.Fatalf("Allow() on fresh breaker = %v", err)
	}

	cb.Failure()
	cb.Failure()
	if got := cb.State(); got != CircuitClosed {
		t.Fatalf("state after 2 failures = %v, want closed", got)
	}

	cb.Failure()
	if got := cb.State(); got != CircuitOpen {
		t.Fatalf("state after 3 failures = %v, want open", got)
	}
	if err := cb.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("Allow() on open breaker = %v, want ErrCircuitOpen", err)
	}
}

func TestCircuitBreakerSuccessResetsFailures(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2})

	cb.Failure()
	cb.Success()
	cb.Failure()

	if got := cb.State(); got != CircuitClosed {
		t.Fatalf("state = %v, want closed (success resets failure count)", got)
	}
}

func TestCircuitBreakerHalfOpenRecovery(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, SuccessThreshold: 2, Timeout: time.Millisecond})

	cb.Failure()
	if got := cb.State(); got != CircuitOpen {
		t.Fatalf("state = %v, want open", got)
	}

	time.Sleep(5 * time.Millisecond)

	if err := cb.Allow(); err != nil {
		t.Fatalf("Allow() after timeout = %v, want nil (half-open probe)", err)
	}
	if got := cb.State(); got != CircuitHalfOpen {
		t.Fatalf("state = %v, want half-open", got)
	}

	cb.Success()
	if got := cb.State(); got != CircuitHalfOpen {
		t.Fatalf("state after 1 success = %v, want half-open", got)
	}
	cb.Success()
	if got := cb.State(); got != CircuitClosed {
		t.Fatalf("state after 2 successes = %v, want closed", got)
	}
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, Timeout: time.Millisecond})

	cb.Failure()
	time.Sleep(5 * time.Millisecond)
	if err := cb.Allow(); err != nil {
		t.Fatalf("Allow() = %v", err)
	}

	cb.Failure()
	if got := cb.State(); got != CircuitOpen {
		t.Fatalf("state after half-open failure = %v, want open", got)
	}
}

func TestCircuitStateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state CircuitState
		want  string
	}{
		{CircuitClosed, "closed"},
		{CircuitOpen, "open"},
		{CircuitHalfOpen, "half-open"},
		{CircuitState(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
