package evaluate

import (
	"context"
	"errors"
	"time"

	"github.com/linecue/linecue/internal/match"
	"github.com/linecue/linecue/internal/observe"
	"github.com/linecue/linecue/internal/resilience"
)

// DefaultPassThreshold is the word-overlap similarity above which an attempt
// is considered a confident pass and settled by the local scorer without
// consulting the remote judge.
const DefaultPassThreshold = 0.9

// TieredConfig configures a [Tiered] evaluator.
type TieredConfig struct {
	// PassThreshold is the pre-screen similarity above which the local
	// scorer's verdict is trusted outright. Default: 0.9.
	PassThreshold float64

	// Breaker configures the circuit breaker guarding the remote judge.
	// Zero-value fields use the breaker defaults.
	Breaker resilience.CircuitBreakerConfig

	// Metrics receives evaluation counters and latencies. When nil,
	// [observe.DefaultMetrics] is used.
	Metrics *observe.Metrics
}

// Tiered routes each attempt to the cheapest evaluator that can settle it:
//
//  1. Cache: an identical (line, attempt) pair seen before returns instantly.
//  2. Pre-screen: full word overlap, or overlap above PassThreshold, means
//     the local scorer's verdict is trustworthy on its own.
//  3. Remote judge, behind a circuit breaker. Any failure (or an open
//     breaker) degrades to the local verdict, so evaluation never blocks on
//     the network.
//
// Results that reach the remote tier are written back to the cache.
type Tiered struct {
	local         *Local
	remote        Evaluator
	cache         Cache
	breaker       *resilience.CircuitBreaker
	metrics       *observe.Metrics
	passThreshold float64
}

var _ Evaluator = (*Tiered)(nil)

// NewTiered composes a tiered evaluator. remote and cache may each be nil,
// in which case the corresponding tier is skipped and every attempt is
// settled locally.
func NewTiered(local *Local, remote Evaluator, cache Cache, cfg TieredConfig) *Tiered {
	if cfg.PassThreshold <= 0 {
		cfg.PassThreshold = DefaultPassThreshold
	}
	if cfg.Breaker.Name == "" {
		cfg.Breaker.Name = "remote-judge"
	}
	m := cfg.Metrics
	if m == nil {
		m = observe.DefaultMetrics()
	}
	return &Tiered{
		local:         local,
		remote:        remote,
		cache:         cache,
		breaker:       resilience.NewCircuitBreaker(cfg.Breaker),
		metrics:       m,
		passThreshold: cfg.PassThreshold,
	}
}

// Evaluate implements Evaluator. The returned error is always nil: every
// failure path degrades to the local verdict.
func (t *Tiered) Evaluate(ctx context.Context, attempt Attempt) (Result, error) {
	start := time.Now()
	result := t.evaluate(ctx, attempt)
	t.metrics.EvaluationDuration.Record(ctx, time.Since(start).Seconds())
	t.metrics.RecordEvaluation(ctx, result.Source, result.Accurate)
	return result, nil
}

func (t *Tiered) evaluate(ctx context.Context, attempt Attempt) Result {
	spoken := bestSpoken(attempt)

	if t.cache != nil {
		if cached, err := t.cache.Get(ctx, attempt.CorrectLine, spoken); err == nil {
			t.metrics.CacheHits.Add(ctx, 1)
			cached.Source = SourceCache
			return cached
		} else if errors.Is(err, ErrCacheMiss) {
			t.metrics.CacheMisses.Add(ctx, 1)
		} else {
			observe.Logger(ctx).Warn("evaluation cache lookup failed", "error", err)
		}
	}

	similarity := match.WordSimilarity(spoken, attempt.CorrectLine)

	localResult, _ := t.local.Evaluate(ctx, attempt)

	switch {
	case similarity >= 1.0:
		t.metrics.RecordPrescreenShortcut(ctx, "perfect")
		return localResult
	case similarity >= t.passThreshold:
		t.metrics.RecordPrescreenShortcut(ctx, "confident")
		return localResult
	}

	if t.remote == nil {
		return localResult
	}

	var remoteResult Result
	remoteStart := time.Now()
	err := t.breaker.Execute(func() error {
		var execErr error
		remoteResult, execErr = t.remote.Evaluate(ctx, attempt)
		return execErr
	})
	t.metrics.LLMDuration.Record(ctx, time.Since(remoteStart).Seconds())
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			observe.Logger(ctx).Debug("remote judge circuit open, using local verdict")
		} else {
			observe.Logger(ctx).Warn("remote judge failed, using local verdict", "error", err)
		}
		return localResult
	}

	if t.cache != nil {
		if err := t.cache.Set(ctx, attempt.CorrectLine, spoken, remoteResult); err != nil {
			observe.Logger(ctx).Warn("evaluation cache write failed", "error", err)
		}
	}
	return remoteResult
}
