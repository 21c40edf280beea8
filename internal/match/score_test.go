package match_test

import (
	"strings"
	"testing"

	"github.com/linecue/linecue/internal/match"
)

func TestScore_Identity(t *testing.T) {
	t.Parallel()

	lines := []string{
		"To be, or not to be, that is the question.",
		"a single word",
		"What's done cannot be undone!",
	}
	for _, line := range lines {
		r := match.Score(line, line)
		if r.Score != 100 {
			t.Errorf("Score(%q, same): score=%d, want 100", line, r.Score)
		}
		if !r.Accurate {
			t.Errorf("Score(%q, same): accurate=false, want true", line)
		}
		if r.Feedback != "Nailed it!" {
			t.Errorf("Score(%q, same): feedback=%q, want %q", line, r.Feedback, "Nailed it!")
		}
		if r.Corrections != "" {
			t.Errorf("Score(%q, same): corrections=%q, want empty", line, r.Corrections)
		}
	}
}

func TestScore_EmptyCorrectLine(t *testing.T) {
	t.Parallel()

	r := match.Score("anything", "")
	if !r.Accurate || r.Score != 100 || r.Feedback != "Nothing to check." {
		t.Errorf("Score(anything, empty) = %+v, want accurate 100 %q", r, "Nothing to check.")
	}
}

func TestScore_EmptySpokenInput(t *testing.T) {
	t.Parallel()

	r := match.Score("", "To be or not to be")
	if r.Accurate || r.Score != 0 || r.Feedback != "No speech detected." {
		t.Errorf("Score(empty, line) = %+v, want inaccurate 0 %q", r, "No speech detected.")
	}
}

func TestScore_PunctuationOnlySpokenInput(t *testing.T) {
	t.Parallel()

	// Normalizes to zero tokens, so it is treated as no speech.
	r := match.Score("... !!", "To be or not to be")
	if r.Score != 0 || r.Feedback != "No speech detected." {
		t.Errorf("Score(punctuation, line) = %+v, want score 0 %q", r, "No speech detected.")
	}
}

func TestScore_ContractionsNormalizeAway(t *testing.T) {
	t.Parallel()

	r := match.Score("I cannot believe you are leaving", "I can't believe you're leaving")
	if r.Score != 100 {
		t.Errorf("score=%d, want 100 (contraction expansion should make tokens identical)", r.Score)
	}
	if !r.Accurate {
		t.Error("accurate=false, want true")
	}
}

func TestScore_OneSubstitutionLowersScore(t *testing.T) {
	t.Parallel()

	correct := "the quick brown fox jumps over the lazy dog tonight"
	spoken := "the quick brown fox leaps over the lazy dog tonight"

	r := match.Score(spoken, correct)
	if r.Score >= 100 {
		t.Fatalf("score=%d, want < 100 after one substituted word", r.Score)
	}
	// 9 of 10 words matched.
	if r.Score != 90 {
		t.Errorf("score=%d, want 90", r.Score)
	}
	if !r.Accurate {
		t.Error("accurate=false, want true for score 90")
	}
}

func TestScore_FeedbackBands(t *testing.T) {
	t.Parallel()

	correct := "one two three four five six seven eight nine ten"

	cases := []struct {
		name     string
		spoken   string
		score    int
		feedback string
	}{
		{"perfect", correct, 100, "Nailed it!"},
		{"one off", "one two three four five six seven eight nine zero", 90, "Good — just a few words off."},
		{"three off", "one two three four five six seven x y z", 70, "Getting there — you have the idea, but check the exact wording."},
		{"half off", "one two three four five a b c d e", 50, "Partial — you got part of it. Take another look at the full line."},
		{"mostly wrong", "one q w e r t y u i o", 10, "Not quite — try reading the line again before your next attempt."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r := match.Score(tc.spoken, correct)
			if r.Score != tc.score {
				t.Errorf("score=%d, want %d", r.Score, tc.score)
			}
			if r.Feedback != tc.feedback {
				t.Errorf("feedback=%q, want %q", r.Feedback, tc.feedback)
			}
			if r.Accurate != (tc.score >= 80) {
				t.Errorf("accurate=%v, want %v", r.Accurate, tc.score >= 80)
			}
		})
	}
}

func TestScore_CorrectionsRenderedBelow90(t *testing.T) {
	t.Parallel()

	r := match.Score("the quick fox", "the brown fox")
	if r.Corrections == "" {
		t.Fatal("corrections empty, want rendered list")
	}
	want := `said "quick" → correct: "brown"`
	if r.Corrections != want {
		t.Errorf("corrections=%q, want %q", r.Corrections, want)
	}
}

func TestScore_CorrectionsIncludeExtraAndMissing(t *testing.T) {
	t.Parallel()

	// "really" is inserted mid-line and "please" is omitted at the end, far
	// enough apart that no substitution path costs the same, so the rendered
	// corrections carry one extra item and one missing item.
	r := match.Score("go really fast now", "go fast now please")
	if r.Score != 75 {
		t.Fatalf("score=%d, want 75", r.Score)
	}
	want := `extra: "really"; missing: "please"`
	if r.Corrections != want {
		t.Errorf("corrections=%q, want %q", r.Corrections, want)
	}
}

func TestScore_CorrectionsPreferSubstitutionsOnCostTies(t *testing.T) {
	t.Parallel()

	// Insertion+deletion and two substitutions tie at cost 2 here; the
	// alignment resolves the tie toward substitutions, so the corrections
	// render substitution items rather than extra/missing ones.
	r := match.Score("go very fast", "go fast now")
	want := `said "very" → correct: "fast"; said "fast" → correct: "now"`
	if r.Corrections != want {
		t.Errorf("corrections=%q, want %q", r.Corrections, want)
	}
}

func TestScore_CorrectionsCappedAtFiveItems(t *testing.T) {
	t.Parallel()

	correct := "alpha beta gamma delta epsilon zeta eta theta iota kappa"
	spoken := "one two three four five six seven eight nine ten"

	r := match.Score(spoken, correct)
	if r.Score != 0 {
		t.Fatalf("score=%d, want 0", r.Score)
	}

	parts := strings.Split(r.Corrections, "; ")
	if len(parts) != 6 {
		t.Fatalf("corrections has %d parts (%q), want 5 items plus marker", len(parts), r.Corrections)
	}
	if parts[5] != "..." {
		t.Errorf("last part=%q, want %q", parts[5], "...")
	}
	for i, p := range parts[:5] {
		if !strings.HasPrefix(p, "said ") {
			t.Errorf("parts[%d]=%q, want a substitution item", i, p)
		}
	}
}

func TestScore_NoCorrectionsAt90OrAbove(t *testing.T) {
	t.Parallel()

	correct := "one two three four five six seven eight nine ten"
	spoken := "one two three four five six seven eight nine zero"

	r := match.Score(spoken, correct)
	if r.Score != 90 {
		t.Fatalf("score=%d, want 90", r.Score)
	}
	if r.Corrections != "" {
		t.Errorf("corrections=%q, want empty at score >= 90", r.Corrections)
	}
}

func TestScorer_PhoneticLenience(t *testing.T) {
	t.Parallel()

	s := match.NewScorer(match.WithPhoneticLenience(true))

	// "bare" and "bear" share a Double Metaphone code; with lenience on the
	// recognizer's homophone choice should not cost the speaker points.
	r := s.Score("the bare growled", "the bear growled")
	if r.Score != 100 {
		t.Errorf("score=%d, want 100 with phonetic lenience", r.Score)
	}

	// Default scorer keeps exact-token semantics.
	strict := match.Score("the bare growled", "the bear growled")
	if strict.Score == 100 {
		t.Error("default scorer treated homophones as equal, want exact-token semantics")
	}
}

func TestInlineDiff_MarksMissingAndExtra(t *testing.T) {
	t.Parallel()

	diff := match.InlineDiff("to be or not", "to be or not to be")
	if !strings.Contains(diff, "[-") {
		t.Errorf("diff=%q, want a [-...-] marker for missing text", diff)
	}

	diff = match.InlineDiff("to be or not to be tonight", "to be or not to be")
	if !strings.Contains(diff, "{+") {
		t.Errorf("diff=%q, want a {+...+} marker for extra text", diff)
	}
}

func TestInlineDiff_IdenticalTextsHaveNoMarkers(t *testing.T) {
	t.Parallel()

	diff := match.InlineDiff("Go now!", "go NOW")
	if strings.ContainsAny(diff, "[{") {
		t.Errorf("diff=%q, want no markers for texts identical after normalization", diff)
	}
}
