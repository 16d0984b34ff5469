package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestBreaker(threshold int) (*CircuitBreaker, *time.Time) {
	b := NewCircuitBreaker(CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: threshold,
		OpenTimeout:      5 * time.Second,
		HalfOpenMaxReq:   1,
	})
	now := time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }
	return b, &now
}

func TestCircuitBreaker_OpensAndRecovers(t *testing.T) {
	b, now := newTestBreaker(2)

	var transitions []CircuitState
	b.OnStateChange(func(_, to CircuitState) { transitions = append(transitions, to) })

	if err := b.Allow(); err != nil {
		t.Fatalf("expected allow while closed: %v", err)
	}
	b.RecordFailure()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after one failure, got %s", state)
	}
	b.RecordFailure()
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open at threshold, got %s", state)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}

	*now = now.Add(6 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected probe after cool-down, got %v", err)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected second probe to be rejected, got %v", err)
	}
	b.RecordSuccess()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after successful probe, got %s", state)
	}

	want := []CircuitState{CircuitStateOpen, CircuitStateHalfOpen, CircuitStateClosed}
	if len(transitions) != len(want) {
		t.Fatalf("unexpected transitions: %v", transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Fatalf("transition %d = %s, want %s", i, transitions[i], want[i])
		}
	}
}

func TestCircuitBreaker_ExecuteIgnoresNonCountableErrors(t *testing.T) {
	b, _ := newTestBreaker(1)
	clientErr := errors.New("bad request")

	err := b.Execute(context.Background(), func(context.Context) error { return clientErr }, func(err error) bool {
		return !errors.Is(err, clientErr)
	})
	if !errors.Is(err, clientErr) {
		t.Fatalf("expected client error, got %v", err)
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected breaker to stay closed, got %s", state)
	}

	_ = b.Execute(context.Background(), func(context.Context) error { return errors.New("timeout") }, nil)
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected breaker to open, got %s", state)
	}
}

func TestCircuitBreaker_DisabledAlwaysAllows(t *testing.T) {
	b := NewCircuitBreaker(CircuitBreakerConfig{Enabled: false, FailureThreshold: 1})
	for i := 0; i < 3; i++ {
		b.RecordFailure()
	}
	if err := b.Allow(); err != nil {
		t.Fatalf("expected disabled breaker to allow, got %v", err)
	}
}

func TestCircuitBreakerConfig_ZeroValuesUseDefaults(t *testing.T) {
	t.Parallel()

	cfg := CircuitBreakerConfig{Enabled: true}.withDefaults()
	if cfg.FailureThreshold != defaultFailureThreshold || cfg.OpenTimeout != defaultOpenTimeout || cfg.HalfOpenMaxReq != defaultHalfOpenProbes {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	custom := CircuitBreakerConfig{Enabled: true, FailureThreshold: 2, OpenTimeout: time.Second, HalfOpenMaxReq: 3}.withDefaults()
	if custom.FailureThreshold != 2 || custom.OpenTimeout != time.Second || custom.HalfOpenMaxReq != 3 {
		t.Fatalf("explicit values overwritten: %+v", custom)
	}
}
