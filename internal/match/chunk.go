package match

import (
	"regexp"
	"strings"
)

// longLineWordCount is the word count at which a line without internal
// structure becomes hard to memorize in one piece.
const longLineWordCount = 15

// sentenceBoundary matches sentence-ending punctuation followed by
// whitespace and the opening of the next sentence (a capital letter or a
// quote). The punctuation and the following opener are captured separately
// so the split can keep the punctuation attached to the preceding chunk
// without look-behind.
var sentenceBoundary = regexp.MustCompile(`([.!?]+)\s+(["'“”‘’A-Z])`)

// clausePunctuation splits a long line on commas and semicolons as a
// fallback when no sentence boundaries exist.
var clausePunctuation = regexp.MustCompile(`[,;]\s*`)

// SplitIntoChunks splits a line into memorizable pieces. The primary
// strategy splits at sentence boundaries, keeping the terminating
// punctuation with the preceding chunk. When that yields fewer than two
// pieces and the line has at least 15 words, it falls back to splitting on
// commas and semicolons. When neither strategy yields two or more pieces,
// the original text is returned as a single-element slice.
//
// SplitIntoChunks is pure: repeated calls with the same input return the
// same output.
func SplitIntoChunks(text string) []string {
	trimmed := strings.TrimSpace(text)

	if chunks := splitSentences(trimmed); len(chunks) >= 2 {
		return chunks
	}

	if len(strings.Fields(trimmed)) >= longLineWordCount {
		if chunks := splitClauses(trimmed); len(chunks) >= 2 {
			return chunks
		}
	}

	return []string{text}
}

// splitSentences cuts text at every sentence boundary. The capture indexes
// locate the end of the terminating punctuation (end of the current chunk)
// and the start of the next sentence's opening character (start of the next
// chunk).
func splitSentences(text string) []string {
	var chunks []string
	start := 0
	for _, loc := range sentenceBoundary.FindAllStringSubmatchIndex(text, -1) {
		punctEnd := loc[3]  // end of capture group 1 (the punctuation run)
		nextStart := loc[4] // start of capture group 2 (the next opener)
		if piece := strings.TrimSpace(text[start:punctEnd]); piece != "" {
			chunks = append(chunks, piece)
		}
		start = nextStart
	}
	if piece := strings.TrimSpace(text[start:]); piece != "" {
		chunks = append(chunks, piece)
	}
	return chunks
}

// splitClauses cuts text on commas and semicolons, discarding empty pieces.
func splitClauses(text string) []string {
	var chunks []string
	for _, piece := range clausePunctuation.Split(text, -1) {
		if p := strings.TrimSpace(piece); p != "" {
			chunks = append(chunks, p)
		}
	}
	return chunks
}

// IsChunkable reports whether a line splits into two or more chunks.
func IsChunkable(text string) bool {
	return len(SplitIntoChunks(text)) >= 2
}

// NeedsPunctuationTip reports whether a line is long (>= 15 words) yet
// contains no sentence-ending punctuation anywhere, which makes it hard to
// break into memorizable phrases.
func NeedsPunctuationTip(text string) bool {
	if len(strings.Fields(text)) < longLineWordCount {
		return false
	}
	return !strings.ContainsAny(text, ".!?")
}
