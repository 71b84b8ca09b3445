package openai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"github.com/w-h-a/brainvault/embedder"
	httpclient "github.com/w-h-a/brainvault/util/http_client"
)

type openAIEmbedder struct {
	options embedder.Options
	client  *openai.Client
}

func (e *openAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	req := openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.options.Model),
	}

	if e.options.Dimensions > 0 {
		req.Dimensions = e.options.Dimensions
	}

	rsp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", embedder.ErrEmbedding, err)
	}

	if len(rsp.Data) == 0 || len(rsp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: no response from OpenAI", embedder.ErrEmbedding)
	}

	return rsp.Data[0].Embedding, nil
}

func NewEmbedder(opts ...embedder.Option) embedder.Embedder {
	options := embedder.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = string(openai.SmallEmbedding3)
	}

	e := &openAIEmbedder{
		options: options,
	}

	cfg := openai.DefaultConfig(options.ApiKey)
	if len(options.Location) > 0 {
		cfg.BaseURL = options.Location
	}

	if options.HTTPClient != nil {
		cfg.HTTPClient = options.HTTPClient
	} else {
		cfg.HTTPClient = httpclient.New(options.Timeout)
	}

	e.client = openai.NewClientWithConfig(cfg)

	return e
}
