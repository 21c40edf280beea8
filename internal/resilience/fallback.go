package resilience

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrAllFailed is returned when every backend in a [FallbackGroup] fails or
// has an open circuit breaker.
var ErrAllFailed = errors.New("all backends failed")

// FallbackConfig configures a [FallbackGroup].
type FallbackConfig struct {
	// Kind labels the group in logs, e.g. "llm" or "stt".
	Kind string

	// CircuitBreaker is applied per backend. Zero-value fields use the
	// breaker defaults.
	CircuitBreaker CircuitBreakerConfig
}

// backend pairs one provider with its dedicated circuit breaker. Breakers
// are per backend so a failing remote judge does not blacklist its standby.
type backend[T any] struct {
	name    string
	value   T
	breaker *CircuitBreaker
}

// FallbackGroup holds a primary provider and zero or more standbys of the
// same type, tried in registration order. The evaluate and transcribe paths
// use it to ride out a single model API outage without failing the attempt.
//
// Register every fallback during startup; after that the group is read-only
// and safe for concurrent use.
type FallbackGroup[T any] struct {
	kind     string
	backends []backend[T]
	cbCfg    CircuitBreakerConfig
}

// NewFallbackGroup creates a group with primary as its first backend.
func NewFallbackGroup[T any](primary T, primaryName string, cfg FallbackConfig) *FallbackGroup[T] {
	g := &FallbackGroup[T]{kind: cfg.Kind, cbCfg: cfg.CircuitBreaker}
	if g.kind == "" {
		g.kind = "provider"
	}
	g.add(primaryName, primary)
	return g
}

// AddFallback appends a standby tried after the primary and any earlier
// fallbacks.
func (g *FallbackGroup[T]) AddFallback(name string, fallback T) {
	g.add(name, fallback)
}

func (g *FallbackGroup[T]) add(name string, value T) {
	cbCfg := g.cbCfg
	cbCfg.Name = name
	g.backends = append(g.backends, backend[T]{
		name:    name,
		value:   value,
		breaker: NewCircuitBreaker(cbCfg),
	})
}

// Failover runs fn against each backend in order until one succeeds and
// returns that backend's result. Backends with an open breaker are skipped.
// When every backend fails, the last error is wrapped in [ErrAllFailed].
//
// A package-level function because Go methods cannot introduce the result
// type parameter.
func Failover[T, R any](g *FallbackGroup[T], fn func(T) (R, error)) (R, error) {
	var lastErr error
	for i := range g.backends {
		b := &g.backends[i]
		var result R
		err := b.breaker.Execute(func() error {
			var callErr error
			result, callErr = fn(b.value)
			return callErr
		})
		if err == nil {
			return result, nil
		}
		lastErr = err
		if errors.Is(err, ErrCircuitOpen) {
			slog.Debug("skipping backend, circuit open", "kind", g.kind, "backend", b.name)
		} else {
			slog.Warn("backend failed, trying next", "kind", g.kind, "backend", b.name, "error", err)
		}
	}
	var zero R
	return zero, fmt.Errorf("%s: %w: %v", g.kind, ErrAllFailed, lastErr)
}
