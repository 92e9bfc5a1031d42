package openai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"

	"dictation-pdf/internal/application"
)

// DefaultEmbeddingModel is used when no model is configured.
const DefaultEmbeddingModel = oai.EmbeddingModelTextEmbedding3Small

var _ application.Embedder = (*Embedder)(nil)

// Embedder computes embeddings through the OpenAI API. Failed requests are
// not retried.
type Embedder struct {
	client oai.Client
	model  string
}

type embedderConfig struct {
	baseURL string
	timeout time.Duration
}

type EmbedderOption func(*embedderConfig)

func WithBaseURL(url string) EmbedderOption {
	return func(c *embedderConfig) {
		c.baseURL = url
	}
}

func WithTimeout(d time.Duration) EmbedderOption {
	return func(c *embedderConfig) {
		c.timeout = d
	}
}

func NewEmbedder(apiKey, model string, opts ...EmbedderOption) (*Embedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai embeddings: api key must not be empty")
	}
	if model == "" {
		model = DefaultEmbeddingModel
	}

	cfg := &embedderConfig{timeout: 30 * time.Second}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: cfg.timeout}),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}

	return &Embedder{client: oai.NewClient(reqOpts...), model: model}, nil
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.Embeddings.New(ctx, oai.EmbeddingNewParams{
		Model: e.model,
		Input: oai.EmbeddingNewParamsInputUnion{
			OfString: param.NewOpt(text),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: embed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai embeddings: empty response")
	}
	return toFloat32(resp.Data[0].Embedding), nil
}

func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.Embeddings.New(ctx, oai.EmbeddingNewParams{
		Model: e.model,
		Input: oai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: embed batch: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embeddings: expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	result := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(texts) {
			return nil, fmt.Errorf("openai embeddings: unexpected index %d", d.Index)
		}
		result[d.Index] = toFloat32(d.Embedding)
	}
	return result, nil
}

func (e *Embedder) ModelID() string {
	return e.model
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
