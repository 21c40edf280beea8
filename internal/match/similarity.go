package match

// WordSimilarity returns the fraction, in [0, 1], of the correct line's
// words that appear anywhere in the spoken text. It is a cheap,
// order-insensitive pre-screen, not a precise score.
//
// The function is intentionally asymmetric: the denominator counts the
// correct line's tokens with repetition, while membership is tested against
// the deduplicated spoken word set. An empty correct line is trivially
// satisfied (1.0); empty spoken input against a nonempty correct line
// yields 0.0.
//
// Callers own the thresholds: >= 1.0 is a perfect-match shortcut and >= 0.9
// a high-confidence pass usable to skip an expensive remote evaluation.
func WordSimilarity(spoken, correct string) float64 {
	correctTokens := normalizeSimple(correct)
	if len(correctTokens) == 0 {
		return 1.0
	}
	spokenTokens := normalizeSimple(spoken)
	if len(spokenTokens) == 0 {
		return 0.0
	}

	spokenSet := make(map[string]struct{}, len(spokenTokens))
	for _, t := range spokenTokens {
		spokenSet[t] = struct{}{}
	}

	found := 0
	for _, t := range correctTokens {
		if _, ok := spokenSet[t]; ok {
			found++
		}
	}
	return float64(found) / float64(len(correctTokens))
}

// PickBestAlternative returns the candidate transcript from alternatives
// that maximizes [WordSimilarity] against correct, typically to select
// among a speech recognizer's n-best hypotheses. Ties keep the
// earliest-seen candidate. Returns "" when alternatives is empty.
func PickBestAlternative(alternatives []string, correct string) string {
	if len(alternatives) == 0 {
		return ""
	}
	if len(alternatives) == 1 {
		return alternatives[0]
	}

	best := alternatives[0]
	bestScore := WordSimilarity(best, correct)
	for _, alt := range alternatives[1:] {
		if s := WordSimilarity(alt, correct); s > bestScore {
			best = alt
			bestScore = s
		}
	}
	return best
}
