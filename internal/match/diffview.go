package match

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// InlineDiff renders a character-level diff between the normalized spoken
// and correct texts for the app's correction view. Words the speaker missed
// appear as [-word-]; extra words the speaker added appear as {+word+}.
//
// This is a display aid only; scoring always goes through [Align] and
// [Scorer.Score], which operate on whole tokens.
func InlineDiff(spoken, correct string) string {
	spokenText := strings.Join(Normalize(spoken), " ")
	correctText := strings.Join(Normalize(correct), " ")

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(spokenText, correctText, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var sb strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			sb.WriteString(d.Text)
		case diffmatchpatch.DiffInsert:
			// Present in the correct line, missing from the attempt.
			sb.WriteString("[-")
			sb.WriteString(d.Text)
			sb.WriteString("-]")
		case diffmatchpatch.DiffDelete:
			// Spoken but not in the correct line.
			sb.WriteString("{+")
			sb.WriteString(d.Text)
			sb.WriteString("+}")
		}
	}
	return sb.String()
}
