package application

import "context"

// Embedder maps text to dense vectors. All vectors from one Embedder share
// the same dimensionality. Implementations must be safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch returns one vector per input text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	ModelID() string
}
