package evaluate

import (
	"context"

	"github.com/linecue/linecue/internal/match"
)

// Local evaluates attempts with the deterministic word-alignment scorer.
// It needs no network, never fails, and is the floor every other evaluator
// degrades to.
type Local struct {
	scorer *match.Scorer
}

var _ Evaluator = (*Local)(nil)

// NewLocal creates a Local evaluator. Scorer options (such as
// [match.WithPhoneticLenience]) are passed through.
func NewLocal(opts ...match.ScorerOption) *Local {
	return &Local{scorer: match.NewScorer(opts...)}
}

// Evaluate implements Evaluator. The returned error is always nil; it is
// present only to satisfy the interface.
func (l *Local) Evaluate(_ context.Context, attempt Attempt) (Result, error) {
	spoken := bestSpoken(attempt)
	return Result{
		FeedbackResult: l.scorer.Score(spoken, attempt.CorrectLine),
		Source:         SourceLocal,
	}, nil
}
