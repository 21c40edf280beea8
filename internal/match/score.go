package match

import (
	"fmt"
	"math"
	"strings"
)

// Score thresholds tied to user-facing behaviour.
const (
	// accurateThreshold is the minimum score considered a passing attempt.
	accurateThreshold = 80

	// correctionsThreshold is the score below which the corrections list is
	// rendered.
	correctionsThreshold = 90

	// maxCorrections caps the rendered corrections list; further items are
	// replaced by a literal "..." marker.
	maxCorrections = 5
)

// Feedback messages by score band.
const (
	feedbackNothingToCheck = "Nothing to check."
	feedbackNoSpeech       = "No speech detected."
	feedbackNailed         = "Nailed it!"
	feedbackClose          = "Good — just a few words off."
	feedbackGettingThere   = "Getting there — you have the idea, but check the exact wording."
	feedbackPartial        = "Partial — you got part of it. Take another look at the full line."
	feedbackNotQuite       = "Not quite — try reading the line again before your next attempt."
)

// FeedbackResult is the outcome of evaluating a spoken attempt against a
// correct line. It is produced fresh on every call and owned by the caller.
type FeedbackResult struct {
	// Accurate is true iff Score >= 80.
	Accurate bool `json:"accurate"`

	// Score is the integer match score in [0, 100]: the rounded fraction of
	// the correct line's words that were matched.
	Score int `json:"score"`

	// Feedback is a short qualitative message selected by score band.
	Feedback string `json:"feedback"`

	// Corrections is a rendered "; "-joined list of the first mismatches,
	// present only when Score < 90 and at least one non-match op exists.
	Corrections string `json:"corrections,omitempty"`
}

// ScorerOption is a functional option for configuring a [Scorer].
type ScorerOption func(*Scorer)

// WithPhoneticLenience makes the scorer count a substitution as a match when
// the two tokens are phonetically equivalent (sharing a Double Metaphone
// code, e.g. "their"/"there"). Useful when the transcript comes from a
// speech recognizer that picks an arbitrary homophone. Default: off.
func WithPhoneticLenience(enabled bool) ScorerOption {
	return func(s *Scorer) {
		s.phoneticLenience = enabled
	}
}

// Scorer evaluates spoken attempts against correct lines. The zero value
// (and [NewScorer] without options) applies exact-token semantics. Scorer is
// read-only after construction and safe for concurrent use.
type Scorer struct {
	phoneticLenience bool
}

// NewScorer returns a [Scorer] configured with the supplied options.
func NewScorer(opts ...ScorerOption) *Scorer {
	s := &Scorer{}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Score evaluates spoken against correct with default (exact-token)
// semantics. See [Scorer.Score].
func Score(spoken, correct string) FeedbackResult {
	var s Scorer
	return s.Score(spoken, correct)
}

// Score normalizes both inputs, aligns them, and derives a [FeedbackResult].
//
// Edge cases checked before alignment: an empty correct line scores 100
// ("nothing to check", never accusatory), and empty spoken input against a
// nonempty correct line scores 0. Otherwise the score is the rounded
// percentage of correct-line words matched, clamped to 100. Never fails,
// for any two strings.
func (s *Scorer) Score(spoken, correct string) FeedbackResult {
	spokenTokens := Normalize(spoken)
	correctTokens := Normalize(correct)

	if len(correctTokens) == 0 {
		return FeedbackResult{Accurate: true, Score: 100, Feedback: feedbackNothingToCheck}
	}
	if len(spokenTokens) == 0 {
		return FeedbackResult{Accurate: false, Score: 0, Feedback: feedbackNoSpeech}
	}

	ops := Align(spokenTokens, correctTokens)
	if s.phoneticLenience {
		ops = promotePhoneticMatches(ops)
	}

	matchCount := 0
	for _, op := range ops {
		if op.Kind == OpMatch {
			matchCount++
		}
	}

	score := int(math.Round(100 * float64(matchCount) / float64(len(correctTokens))))
	if score > 100 {
		score = 100
	}

	result := FeedbackResult{
		Accurate: score >= accurateThreshold,
		Score:    score,
		Feedback: feedbackForScore(score),
	}
	if score < correctionsThreshold {
		result.Corrections = renderCorrections(ops)
	}
	return result
}

// feedbackForScore selects the feedback message for a score. Bands are
// evaluated top-down; the first match wins.
func feedbackForScore(score int) string {
	switch {
	case score >= 95:
		return feedbackNailed
	case score >= 80:
		return feedbackClose
	case score >= 60:
		return feedbackGettingThere
	case score >= 40:
		return feedbackPartial
	default:
		return feedbackNotQuite
	}
}

// renderCorrections walks ops in order and renders the first
// [maxCorrections] non-match ops as human-readable items joined with "; ".
// A "..." marker is appended when items were truncated. Returns "" when no
// non-match ops exist.
func renderCorrections(ops []Op) string {
	var items []string
	truncated := false

	for _, op := range ops {
		if op.Kind == OpMatch {
			continue
		}
		if len(items) == maxCorrections {
			truncated = true
			break
		}
		switch op.Kind {
		case OpSubstitution:
			items = append(items, fmt.Sprintf("said %q → correct: %q", op.Spoken, op.Correct))
		case OpDeletion:
			items = append(items, fmt.Sprintf("missing: %q", op.Correct))
		case OpInsertion:
			items = append(items, fmt.Sprintf("extra: %q", op.Spoken))
		}
	}

	if len(items) == 0 {
		return ""
	}
	if truncated {
		items = append(items, "...")
	}
	return strings.Join(items, "; ")
}
