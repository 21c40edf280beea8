package evaluate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/linecue/linecue/internal/match"
	"github.com/linecue/linecue/pkg/provider/llm"
)

const defaultTemperature = 0.1

// systemPrompt instructs the judge model. The response contract mirrors the
// local scorer's output so results from either source render identically in
// the app.
const systemPrompt = `You are a line-memorization coach for actors rehearsing a script.

Your task: judge how closely the actor's spoken attempt matches the correct script line.

Rules:
- Judge meaning and wording together. Minor filler words or contractions should not be punished harshly.
- A paraphrase that keeps the meaning but changes the wording is NOT accurate; the actor must learn the exact line.
- score is an integer from 0 to 100. accurate is true when the attempt would pass on stage (score 80 or above).
- feedback is one short encouraging sentence.
- corrections lists the specific wording fixes, or is an empty string when the attempt is accurate enough.
- hint is one short memorization tip for this line (a rhythm, an image, a grouping), or an empty string.

Respond with ONLY a JSON object in this exact format (no markdown, no prose):
{
  "accurate": <true|false>,
  "score": <0-100>,
  "feedback": "<one sentence>",
  "corrections": "<semicolon-separated fixes or empty>",
  "hint": "<one tip or empty>"
}`

// judgeResponse is the expected JSON structure returned by the LLM.
type judgeResponse struct {
	Accurate    bool   `json:"accurate"`
	Score       int    `json:"score"`
	Feedback    string `json:"feedback"`
	Corrections string `json:"corrections"`
	Hint        string `json:"hint"`
}

// RemoteOption is a functional option for configuring a [Remote].
type RemoteOption func(*Remote)

// WithTemperature sets the LLM sampling temperature. Lower values produce
// more consistent judgements. Default: 0.1.
func WithTemperature(temp float64) RemoteOption {
	return func(r *Remote) {
		r.temperature = temp
	}
}

// Remote asks an LLM judge to evaluate an attempt. When the model's response
// cannot be parsed, Remote degrades to the local scorer's verdict rather than
// surfacing an error; rehearsal must continue even when the judge rambles.
//
// Transport failures (network errors, context cancellation) are returned as
// non-nil errors so callers can apply their own fallback policy.
type Remote struct {
	llm         llm.Provider
	local       *Local
	temperature float64
}

var _ Evaluator = (*Remote)(nil)

// NewRemote creates a Remote evaluator backed by the given [llm.Provider].
func NewRemote(provider llm.Provider, opts ...RemoteOption) *Remote {
	r := &Remote{
		llm:         provider,
		local:       NewLocal(),
		temperature: defaultTemperature,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Evaluate implements Evaluator.
func (r *Remote) Evaluate(ctx context.Context, attempt Attempt) (Result, error) {
	spoken := bestSpoken(attempt)

	userMsg := fmt.Sprintf("Correct line: %s\n\nActor's attempt: %s", attempt.CorrectLine, spoken)

	req := llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		Temperature:  r.temperature,
		Messages: []llm.Message{
			{Role: "user", Content: userMsg},
		},
	}

	resp, err := r.llm.Complete(ctx, req)
	if err != nil {
		return Result{}, fmt.Errorf("evaluate: remote judge: %w", err)
	}

	parsed, parseErr := parseJudgeResponse(resp.Content)
	if parseErr != nil {
		// Unparseable judge output: fall back to the local verdict.
		return r.local.Evaluate(ctx, attempt)
	}

	return Result{
		FeedbackResult: match.FeedbackResult{
			Accurate:    parsed.Accurate,
			Score:       clampScore(parsed.Score),
			Feedback:    parsed.Feedback,
			Corrections: parsed.Corrections,
		},
		Hint:   parsed.Hint,
		Source: SourceRemote,
	}, nil
}

// parseJudgeResponse attempts to unmarshal the LLM output into a
// [judgeResponse]. It strips markdown code fences before parsing.
func parseJudgeResponse(content string) (judgeResponse, error) {
	cleaned := stripMarkdown(content)

	var r judgeResponse
	if err := json.Unmarshal([]byte(cleaned), &r); err != nil {
		return judgeResponse{}, fmt.Errorf("evaluate: parse judge response: %w", err)
	}
	return r, nil
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

// clampScore bounds a model-reported score to [0, 100].
func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
