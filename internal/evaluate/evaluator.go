// Package evaluate decides how well a spoken rehearsal attempt matched the
// correct script line and produces actionable feedback for the actor.
//
// Three evaluators are provided. [Local] wraps the deterministic
// word-alignment scorer and always answers, offline, in microseconds.
// [Remote] asks an LLM judge for a more forgiving reading of paraphrases
// and near-misses. [Tiered] composes the two: a fast word-overlap pre-screen
// settles the obvious cases locally and only ambiguous attempts are escalated
// to the remote judge, behind a circuit breaker with local fallback.
package evaluate

import (
	"context"

	"github.com/linecue/linecue/internal/match"
)

// Source values identify which evaluator produced a Result.
const (
	SourceLocal  = "local"
	SourceRemote = "remote"
	SourceCache  = "cache"
)

// Attempt is a single rehearsal take: what the actor said against what the
// script says.
type Attempt struct {
	// ScriptID and LineID identify the line being rehearsed. They are
	// optional for ad-hoc evaluation but required when recording progress.
	ScriptID string `json:"script_id,omitempty"`
	LineID   string `json:"line_id,omitempty"`

	// Character is the role the actor is rehearsing.
	Character string `json:"character,omitempty"`

	// SpokenText is the transcribed attempt.
	SpokenText string `json:"spoken_text"`

	// CorrectLine is the script's text for this line.
	CorrectLine string `json:"correct_line"`

	// Alternatives holds extra transcription candidates from the STT
	// provider. When present, the candidate that best covers the correct
	// line is evaluated instead of SpokenText.
	Alternatives []string `json:"alternatives,omitempty"`
}

// Result is the outcome of evaluating one attempt.
type Result struct {
	match.FeedbackResult

	// Hint is an optional memorization tip, currently only produced by the
	// remote judge.
	Hint string `json:"hint,omitempty"`

	// Source records which evaluator answered: "local", "remote", or "cache".
	Source string `json:"source"`
}

// Evaluator judges rehearsal attempts.
//
// Implementations must be safe for concurrent use.
type Evaluator interface {
	Evaluate(ctx context.Context, attempt Attempt) (Result, error)
}

// bestSpoken resolves the transcription candidate to evaluate: SpokenText,
// unless Alternatives contains a candidate with better word coverage of the
// correct line.
func bestSpoken(attempt Attempt) string {
	if len(attempt.Alternatives) == 0 {
		return attempt.SpokenText
	}
	candidates := make([]string, 0, len(attempt.Alternatives)+1)
	candidates = append(candidates, attempt.SpokenText)
	candidates = append(candidates, attempt.Alternatives...)
	return match.PickBestAlternative(candidates, attempt.CorrectLine)
}
