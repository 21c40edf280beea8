// Package llmtest provides an in-memory llm.Provider for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/linecue/linecue/pkg/provider/llm"
)

// Provider is a scripted llm.Provider. Each call to Complete pops the next
// queued response; when the queue is exhausted it returns Err (or the last
// response again if Err is nil and Repeat is set).
type Provider struct {
	mu        sync.Mutex
	responses []string
	calls     []llm.CompletionRequest

	// Err, when non-nil, is returned once the response queue is empty.
	Err error

	// Repeat keeps returning the final queued response instead of failing
	// once the queue is drained.
	Repeat bool
}

var _ llm.Provider = (*Provider)(nil)

// New creates a Provider that returns the given responses in order.
func New(responses ...string) *Provider {
	return &Provider{responses: responses}
}

// Complete implements llm.Provider.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, req)

	if len(p.responses) == 0 {
		if p.Err != nil {
			return nil, p.Err
		}
		return &llm.CompletionResponse{}, nil
	}

	content := p.responses[0]
	if len(p.responses) > 1 || !p.Repeat {
		p.responses = p.responses[1:]
	}
	return &llm.CompletionResponse{Content: content}, nil
}

// Calls returns a copy of every request received so far.
func (p *Provider) Calls() []llm.CompletionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]llm.CompletionRequest, len(p.calls))
	copy(out, p.calls)
	return out
}
