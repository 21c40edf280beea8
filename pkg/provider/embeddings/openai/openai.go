// Package openai embeds script lines through the OpenAI embeddings API.
//
// A parsed script is indexed with one batch request per script; ad-hoc
// similar-line queries embed a single line at a time. Both paths go through
// the same request helper.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"

	"github.com/linecue/linecue/pkg/provider/embeddings"
)

// DefaultModel is used when the configuration names no embeddings model.
const DefaultModel = oai.EmbeddingModelTextEmbedding3Small

// Provider implements [embeddings.Provider] against the OpenAI API.
type Provider struct {
	client oai.Client
	model  string
}

var _ embeddings.Provider = (*Provider)(nil)

// settings holds the optional knobs applied by [Option] values.
type settings struct {
	baseURL string
	timeout time.Duration
}

// Option is a functional option for [New].
type Option func(*settings)

// WithBaseURL points the client at an OpenAI-compatible endpoint, e.g. a
// local inference server.
func WithBaseURL(url string) Option {
	return func(s *settings) {
		s.baseURL = url
	}
}

// WithTimeout bounds each embeddings request. Indexing a long script is a
// single batch request, so allow for the payload size when setting this.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.timeout = d
	}
}

// New constructs an OpenAI embeddings provider. An empty model selects
// [DefaultModel].
func New(apiKey, model string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("openai embeddings: api key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	var s settings
	for _, o := range opts {
		o(&s)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if s.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(s.baseURL))
	}
	if s.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{Timeout: s.timeout}))
	}

	return &Provider{client: oai.NewClient(reqOpts...), model: model}, nil
}

// Embed returns the vector for a single line of text.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	data, err := p.request(ctx, oai.EmbeddingNewParamsInputUnion{
		OfString: param.NewOpt(text),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: embed: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("openai embeddings: empty response")
	}
	return toFloat32(data[0].Embedding), nil
}

// EmbedBatch embeds every line of a parsed script in one request. The API
// may return embeddings out of order; each vector is placed by its reported
// index so result[i] always corresponds to texts[i].
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	data, err := p.request(ctx, oai.EmbeddingNewParamsInputUnion{
		OfArrayOfStrings: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: embed batch: %w", err)
	}
	if len(data) != len(texts) {
		return nil, fmt.Errorf("openai embeddings: sent %d lines, got %d embeddings", len(texts), len(data))
	}

	result := make([][]float32, len(texts))
	for _, e := range data {
		if int(e.Index) >= len(texts) {
			return nil, fmt.Errorf("openai embeddings: unexpected index %d", e.Index)
		}
		result[e.Index] = toFloat32(e.Embedding)
	}
	return result, nil
}

func (p *Provider) request(ctx context.Context, input oai.EmbeddingNewParamsInputUnion) ([]oai.Embedding, error) {
	resp, err := p.client.Embeddings.New(ctx, oai.EmbeddingNewParams{
		Model: p.model,
		Input: input,
	})
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Dimensions implements embeddings.Provider.
func (p *Provider) Dimensions() int {
	return modelDimensions(p.model)
}

// ModelID implements embeddings.Provider.
func (p *Provider) ModelID() string {
	return p.model
}

// modelDimensions maps known OpenAI embedding models to their vector width.
// The progress store's pgvector column must be created with the same width,
// so unknown models fall back to 1536, matching the schema default.
func modelDimensions(model string) int {
	switch model {
	case "text-embedding-3-large":
		return 3072
	case "text-embedding-3-small", "text-embedding-ada-002":
		return 1536
	default:
		return 1536
	}
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
