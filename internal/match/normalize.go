// Package match implements the local line-matching and scoring engine at the
// heart of linecue: deciding, without any network call, how well a spoken
// transcript matches a target script line.
//
// The pipeline is Normalize → Align → Score. Normalization lowercases,
// expands contractions, strips punctuation, and tokenizes. Alignment runs
// classic Wagner–Fischer minimum edit distance over the token sequences and
// backtracks into an ordered sequence of [Op] values. Scoring derives an
// integer 0–100 score from the alignment, selects a feedback message, and
// renders a short human-readable corrections list.
//
// A cheaper word-overlap similarity ([WordSimilarity]) serves as a
// pre-screen so callers can avoid an expensive remote evaluation when local
// confidence is already high, and line-structure heuristics ([SplitIntoChunks],
// [NeedsPunctuationTip]) flag lines that benefit from chunked memorization.
//
// Every function in this package is pure, CPU-bound, and safe for concurrent
// use: no I/O, no shared mutable state, no error returns. Evaluating any two
// strings always yields a usable result.
package match

import (
	"regexp"
	"strings"
)

// contraction is one entry of the contraction expansion table.
type contraction struct {
	re        *regexp.Regexp
	expansion string
}

// contractionTable is the fixed, ordered expansion table applied during
// normalization. Order is deterministic; no two patterns overlap, so the
// order carries no semantics. The table is never mutated after init.
var contractionTable = buildContractionTable([][2]string{
	{"can't", "cannot"},
	{"won't", "will not"},
	{"shan't", "shall not"},
	{"don't", "do not"},
	{"doesn't", "does not"},
	{"didn't", "did not"},
	{"isn't", "is not"},
	{"aren't", "are not"},
	{"wasn't", "was not"},
	{"weren't", "were not"},
	{"haven't", "have not"},
	{"hasn't", "has not"},
	{"hadn't", "had not"},
	{"wouldn't", "would not"},
	{"couldn't", "could not"},
	{"shouldn't", "should not"},
	{"mustn't", "must not"},
	{"i'm", "i am"},
	{"i've", "i have"},
	{"i'll", "i will"},
	{"i'd", "i would"},
	{"you're", "you are"},
	{"you've", "you have"},
	{"you'll", "you will"},
	{"we're", "we are"},
	{"we've", "we have"},
	{"we'll", "we will"},
	{"they're", "they are"},
	{"they've", "they have"},
	{"they'll", "they will"},
	{"it's", "it is"},
	{"he's", "he is"},
	{"she's", "she is"},
	{"that's", "that is"},
	{"there's", "there is"},
	{"what's", "what is"},
	{"who's", "who is"},
	{"where's", "where is"},
	{"let's", "let us"},
})

func buildContractionTable(pairs [][2]string) []contraction {
	table := make([]contraction, 0, len(pairs))
	for _, p := range pairs {
		table = append(table, contraction{
			re:        regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(p[0]) + `\b`),
			expansion: p[1],
		})
	}
	return table
}

// nonWord matches every character that is neither a word character
// (letter, digit, underscore) nor whitespace. Used to strip punctuation
// after contraction expansion.
var nonWord = regexp.MustCompile(`[^\w\s]`)

// Normalize lowercases text, expands contractions from the fixed table,
// strips punctuation, and splits on whitespace. Empty or whitespace-only
// input yields an empty (nil) token slice. Normalize never fails.
func Normalize(text string) []string {
	s := strings.ToLower(text)
	for _, c := range contractionTable {
		s = c.re.ReplaceAllString(s, c.expansion)
	}
	s = nonWord.ReplaceAllString(s, "")
	return strings.Fields(s)
}

// normalizeSimple lowercases, strips punctuation, and tokenizes without
// contraction expansion. It backs the coarse word-overlap pre-screen, where
// contraction handling would add cost without changing pass/fail outcomes.
func normalizeSimple(text string) []string {
	s := strings.ToLower(text)
	s = nonWord.ReplaceAllString(s, "")
	return strings.Fields(s)
}
