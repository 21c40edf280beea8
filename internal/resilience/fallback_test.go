package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestFailover_PrimarySucceeds(t *testing.T) {
	fg := NewFallbackGroup("primary", "primary", FallbackConfig{})
	fg.AddFallback("backup", "backup")

	used, err := Failover(fg, func(v string) (string, error) {
		return v, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if used != "primary" {
		t.Errorf("used = %q, want primary", used)
	}
}

func TestFailover_FallsBackOnFailure(t *testing.T) {
	fg := NewFallbackGroup("primary", "primary", FallbackConfig{})
	fg.AddFallback("backup", "backup")

	used, err := Failover(fg, func(v string) (string, error) {
		if v == "primary" {
			return "", errTest
		}
		return v, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if used != "backup" {
		t.Errorf("used = %q, want backup", used)
	}
}

func TestFailover_AllFail(t *testing.T) {
	fg := NewFallbackGroup("primary", "primary", FallbackConfig{})
	fg.AddFallback("backup", "backup")

	_, err := Failover(fg, func(v string) (string, error) { return "", errTest })
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("err = %v, want ErrAllFailed", err)
	}
}

func TestFailover_SkipsOpenBreaker(t *testing.T) {
	fg := NewFallbackGroup("primary", "primary", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{
			MaxFailures:  1,
			ResetTimeout: time.Hour,
		},
	})
	fg.AddFallback("backup", "backup")

	// Trip the primary's breaker.
	_, _ = Failover(fg, func(v string) (string, error) {
		if v == "primary" {
			return "", errTest
		}
		return v, nil
	})

	// Primary must not be invoked again while its breaker is open.
	var calls []string
	_, err := Failover(fg, func(v string) (string, error) {
		calls = append(calls, v)
		return v, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(calls) != 1 || calls[0] != "backup" {
		t.Errorf("calls = %v, want [backup]", calls)
	}
}

func TestFailover_ReturnsFirstSuccessfulResult(t *testing.T) {
	fg := NewFallbackGroup(1, "one", FallbackConfig{})
	fg.AddFallback("two", 2)

	got, err := Failover(fg, func(v int) (string, error) {
		if v == 1 {
			return "", errTest
		}
		return "from-two", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from-two" {
		t.Errorf("result = %q, want from-two", got)
	}
}
