package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/w-h-a/brainvault/embedder"
	httpclient "github.com/w-h-a/brainvault/util/http_client"
)

const (
	defaultModel    = "BAAI/bge-large-en-v1.5"
	defaultLocation = "https://router.huggingface.co/hf-inference/models/"
)

type huggingFaceEmbedder struct {
	options embedder.Options
	client  *http.Client
	url     string
}

type featureExtractionRequest struct {
	Inputs  string         `json:"inputs"`
	Options requestOptions `json:"options"`
}

type requestOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

func (e *huggingFaceEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(featureExtractionRequest{
		Inputs:  text,
		Options: requestOptions{WaitForModel: true},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %w", embedder.ErrEmbedding, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", embedder.ErrEmbedding, err)
	}

	req.Header.Set("Content-Type", "application/json")

	if len(e.options.ApiKey) > 0 {
		req.Header.Set("Authorization", "Bearer "+e.options.ApiKey)
	}

	rsp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", embedder.ErrEmbedding, err)
	}
	defer rsp.Body.Close()

	payload, err := io.ReadAll(rsp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", embedder.ErrEmbedding, err)
	}

	if rsp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: huggingface http %d: %s", embedder.ErrEmbedding, rsp.StatusCode, string(payload))
	}

	vec, err := decodeVector(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", embedder.ErrEmbedding, err)
	}

	return vec, nil
}

// decodeVector accepts a flat vector or a vector wrapped in one extra array.
func decodeVector(payload []byte) ([]float32, error) {
	var flat []float32
	if err := json.Unmarshal(payload, &flat); err == nil {
		if len(flat) == 0 {
			return nil, fmt.Errorf("empty embedding")
		}
		return flat, nil
	}

	var nested [][]float32
	if err := json.Unmarshal(payload, &nested); err != nil {
		return nil, fmt.Errorf("decode embedding: %w", err)
	}

	if len(nested) == 0 || len(nested[0]) == 0 {
		return nil, fmt.Errorf("empty embedding")
	}

	return nested[0], nil
}

func NewEmbedder(opts ...embedder.Option) embedder.Embedder {
	options := embedder.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = defaultModel
	}

	e := &huggingFaceEmbedder{
		options: options,
	}

	// a full endpoint url wins over the model id
	if len(options.Location) > 0 {
		e.url = options.Location
	} else {
		e.url = defaultLocation + options.Model
	}

	if options.HTTPClient != nil {
		e.client = options.HTTPClient
	} else {
		e.client = httpclient.New(options.Timeout)
	}

	return e
}
