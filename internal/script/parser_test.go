package script_test

import (
	"context"
	"errors"
	"testing"

	"github.com/linecue/linecue/internal/script"
	"github.com/linecue/linecue/pkg/provider/llm/llmtest"
)

const parsedJSON = `{
  "title": "The Visit",
  "characters": ["ANNA", "MARK"],
  "scenes": [
    {
      "title": "Act 1, Scene 1",
      "lines": [
        {"character": "ANNA", "text": "Go now. Don't look back."},
        {"character": "MARK", "text": "You always say that."},
        {"character": "ANNA", "text": "And you never listen."}
      ]
    }
  ]
}`

func TestParse_BuildsStructuredScript(t *testing.T) {
	t.Parallel()

	p := script.NewParser(llmtest.New(parsedJSON))
	s, err := p.Parse(context.Background(), "ANNA: Go now. Don't look back. ...")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if s.Title != "The Visit" {
		t.Errorf("title = %q, want The Visit", s.Title)
	}
	if len(s.Characters) != 2 {
		t.Errorf("characters = %v, want 2 entries", s.Characters)
	}
	if len(s.Scenes) != 1 || len(s.Scenes[0].Lines) != 3 {
		t.Fatalf("scenes = %+v, want 1 scene with 3 lines", s.Scenes)
	}

	first := s.Scenes[0].Lines[0]
	if first.ID != "s1.l1" {
		t.Errorf("line ID = %q, want s1.l1", first.ID)
	}
	if !first.Chunkable {
		t.Error("two-sentence line should be chunkable")
	}
	if len(first.Chunks) != 2 {
		t.Errorf("chunks = %v, want 2", first.Chunks)
	}
	if first.NeedsPunctuationTip {
		t.Error("short punctuated line should not need a punctuation tip")
	}
}

func TestParse_StripsMarkdownFences(t *testing.T) {
	t.Parallel()

	p := script.NewParser(llmtest.New("```json\n" + parsedJSON + "\n```"))
	s, err := p.Parse(context.Background(), "raw text")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.Title != "The Visit" {
		t.Errorf("title = %q, want The Visit", s.Title)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	t.Parallel()

	p := script.NewParser(llmtest.New(parsedJSON))
	if _, err := p.Parse(context.Background(), "   "); err == nil {
		t.Error("Parse of blank input returned nil error, want non-nil")
	}
}

func TestParse_UnparseableResponseIsAnError(t *testing.T) {
	t.Parallel()

	p := script.NewParser(llmtest.New("I could not find a script in that text."))
	if _, err := p.Parse(context.Background(), "raw"); err == nil {
		t.Error("Parse with prose response returned nil error, want non-nil")
	}
}

func TestParse_ProviderErrorSurfaces(t *testing.T) {
	t.Parallel()

	provider := llmtest.New()
	provider.Err = errors.New("model offline")
	p := script.NewParser(provider)
	if _, err := p.Parse(context.Background(), "raw"); err == nil {
		t.Error("Parse returned nil error on provider failure, want non-nil")
	}
}

func TestLinesFor_PairsLinesWithCues(t *testing.T) {
	t.Parallel()

	p := script.NewParser(llmtest.New(parsedJSON))
	s, err := p.Parse(context.Background(), "raw")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	lines := s.LinesFor("ANNA")
	if len(lines) != 2 {
		t.Fatalf("LinesFor(ANNA) = %d lines, want 2", len(lines))
	}
	if lines[0].Cue != nil {
		t.Errorf("opening line cue = %+v, want nil", lines[0].Cue)
	}
	if lines[1].Cue == nil || lines[1].Cue.Character != "MARK" {
		t.Errorf("second line cue = %+v, want MARK's line", lines[1].Cue)
	}
	if lines[1].Line.Text != "And you never listen." {
		t.Errorf("second line text = %q", lines[1].Line.Text)
	}
}

func TestLinesFor_UnknownCharacter(t *testing.T) {
	t.Parallel()

	p := script.NewParser(llmtest.New(parsedJSON))
	s, err := p.Parse(context.Background(), "raw")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if lines := s.LinesFor("NOBODY"); len(lines) != 0 {
		t.Errorf("LinesFor(NOBODY) = %v, want empty", lines)
	}
}
