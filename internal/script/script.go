// Package script models rehearsal scripts and parses raw script text into
// structured scenes and lines using an LLM.
//
// A parsed [Script] carries per-line memorization analysis (chunking and
// punctuation hints) derived locally, so the app can suggest how to break a
// long speech into drillable pieces without another model call.
package script

import "github.com/linecue/linecue/internal/match"

// Line is a single piece of dialogue assigned to a character.
type Line struct {
	// ID uniquely identifies the line within its script ("s1.l4" style IDs
	// are assigned during parsing when the source has none).
	ID string `json:"id"`

	// Character is the speaker's name as it appears in the script.
	Character string `json:"character"`

	// Text is the dialogue text, stage directions stripped.
	Text string `json:"text"`

	// Chunks is the memorizable breakdown of Text. A line that resists
	// splitting has a single chunk equal to Text.
	Chunks []string `json:"chunks,omitempty"`

	// Chunkable reports whether the line splits into two or more chunks.
	Chunkable bool `json:"chunkable"`

	// NeedsPunctuationTip flags long lines with no sentence punctuation,
	// which tend to be the hardest to memorize.
	NeedsPunctuationTip bool `json:"needs_punctuation_tip"`
}

// Scene is an ordered run of lines under one heading.
type Scene struct {
	Title string `json:"title"`
	Lines []Line `json:"lines"`
}

// Script is a fully parsed rehearsal script.
type Script struct {
	// ID identifies the script in the progress store.
	ID string `json:"id,omitempty"`

	Title      string   `json:"title"`
	Characters []string `json:"characters"`
	Scenes     []Scene  `json:"scenes"`
}

// CueLine pairs a character's line with the cue that precedes it, so the app
// can prompt the actor with the other speaker's closing words.
type CueLine struct {
	// Cue is the line immediately before this one, or nil for a scene's
	// opening line.
	Cue *Line `json:"cue,omitempty"`

	Line Line `json:"line"`
}

// LinesFor returns every line spoken by character, each with its preceding
// cue. Matching is exact on the character name as parsed.
func (s *Script) LinesFor(character string) []CueLine {
	var out []CueLine
	for _, scene := range s.Scenes {
		for i, line := range scene.Lines {
			if line.Character != character {
				continue
			}
			cl := CueLine{Line: line}
			if i > 0 {
				cue := scene.Lines[i-1]
				cl.Cue = &cue
			}
			out = append(out, cl)
		}
	}
	return out
}

// analyzeLine fills in the memorization analysis fields for a line.
func analyzeLine(l *Line) {
	l.Chunks = match.SplitIntoChunks(l.Text)
	l.Chunkable = len(l.Chunks) >= 2
	l.NeedsPunctuationTip = match.NeedsPunctuationTip(l.Text)
}

// Analyze recomputes the memorization analysis for every line in the script.
// Parsing calls this automatically; it is exported for scripts constructed
// directly.
func (s *Script) Analyze() {
	for si := range s.Scenes {
		for li := range s.Scenes[si].Lines {
			analyzeLine(&s.Scenes[si].Lines[li])
		}
	}
}
