package script

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/linecue/linecue/pkg/provider/llm"
)

const parseTemperature = 0.0

// parseSystemPrompt instructs the model to convert raw script text into the
// structured form. Temperature zero keeps the extraction faithful.
const parseSystemPrompt = `You are a script formatting assistant for actors.

Your task: convert the provided raw script text into structured JSON.

Rules:
- Preserve the dialogue text exactly as written. Do NOT paraphrase, correct, or complete lines.
- Drop stage directions (parentheticals, bracketed blocks) from line text.
- Character names are normalised to the spelling used most often in the source.
- Every scene needs a title; use "Scene N" when the source has none.
- Keep lines in source order.

Respond with ONLY a JSON object in this exact format (no markdown, no prose):
{
  "title": "<script title or empty>",
  "characters": ["<name>", ...],
  "scenes": [
    {
      "title": "<scene title>",
      "lines": [
        {"character": "<name>", "text": "<dialogue>"}
      ]
    }
  ]
}`

// parsedScript is the JSON shape returned by the model.
type parsedScript struct {
	Title      string   `json:"title"`
	Characters []string `json:"characters"`
	Scenes     []struct {
		Title string `json:"title"`
		Lines []struct {
			Character string `json:"character"`
			Text      string `json:"text"`
		} `json:"lines"`
	} `json:"scenes"`
}

// Parser converts raw script text into a [Script] using an LLM.
// It is safe for concurrent use.
type Parser struct {
	llm llm.Provider
}

// NewParser returns a Parser backed by the given [llm.Provider].
func NewParser(provider llm.Provider) *Parser {
	return &Parser{llm: provider}
}

// Parse sends raw script text to the model and builds a [Script] from the
// structured response, including per-line memorization analysis.
//
// Unlike evaluation, parsing has no local fallback: an unparseable model
// response is an error the caller must surface.
func (p *Parser) Parse(ctx context.Context, raw string) (*Script, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("script: empty input")
	}

	req := llm.CompletionRequest{
		SystemPrompt: parseSystemPrompt,
		Temperature:  parseTemperature,
		Messages: []llm.Message{
			{Role: "user", Content: raw},
		},
	}

	resp, err := p.llm.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("script: parse completion: %w", err)
	}

	var parsed parsedScript
	if err := json.Unmarshal([]byte(stripMarkdown(resp.Content)), &parsed); err != nil {
		return nil, fmt.Errorf("script: decode parse response: %w", err)
	}
	if len(parsed.Scenes) == 0 {
		return nil, fmt.Errorf("script: no scenes in parse response")
	}

	s := &Script{
		Title:      parsed.Title,
		Characters: parsed.Characters,
	}
	for si, ps := range parsed.Scenes {
		scene := Scene{Title: ps.Title}
		if scene.Title == "" {
			scene.Title = fmt.Sprintf("Scene %d", si+1)
		}
		for li, pl := range ps.Lines {
			scene.Lines = append(scene.Lines, Line{
				ID:        fmt.Sprintf("s%d.l%d", si+1, li+1),
				Character: pl.Character,
				Text:      pl.Text,
			})
		}
		s.Scenes = append(s.Scenes, scene)
	}

	s.Analyze()
	return s, nil
}

// stripMarkdown removes optional markdown code fences (```json ... ```) that
// some models prepend and append to JSON output.
func stripMarkdown(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"```json", "```"} {
		if after, ok := strings.CutPrefix(s, prefix); ok {
			s = after
			break
		}
	}
	if before, ok := strings.CutSuffix(s, "```"); ok {
		s = before
	}
	return strings.TrimSpace(s)
}
