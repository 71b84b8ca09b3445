package embedder

import (
	"context"
	"errors"
)

// ErrEmbedding marks any failure to obtain a vector from an embedding
// endpoint. Providers wrap the underlying cause with it.
var ErrEmbedding = errors.New("embedding failure")

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
