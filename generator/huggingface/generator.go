package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/w-h-a/brainvault/generator"
	httpclient "github.com/w-h-a/brainvault/util/http_client"
)

const (
	defaultModel    = "mistralai/Mistral-7B-Instruct-v0.2"
	defaultLocation = "https://router.huggingface.co/hf-inference/models/"
)

type huggingFaceGenerator struct {
	options generator.Options
	client  *http.Client
	url     string
}

type textGenerationRequest struct {
	Inputs     string               `json:"inputs"`
	Parameters textGenerationParams `json:"parameters"`
	Options    map[string]any       `json:"options"`
}

type textGenerationParams struct {
	MaxNewTokens int `json:"max_new_tokens"`
}

type textGenerationResult struct {
	GeneratedText string `json:"generated_text"`
}

func (g *huggingFaceGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	fullPrompt := prompt
	if len(g.options.PromptPrefix) > 0 {
		fullPrompt = g.options.PromptPrefix + "\n" + prompt
	}

	body, err := json.Marshal(textGenerationRequest{
		Inputs:     fullPrompt,
		Parameters: textGenerationParams{MaxNewTokens: g.options.MaxTokens},
		Options:    map[string]any{"wait_for_model": true},
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %w", generator.ErrGeneration, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: create request: %w", generator.ErrGeneration, err)
	}

	req.Header.Set("Content-Type", "application/json")

	if len(g.options.ApiKey) > 0 {
		req.Header.Set("Authorization", "Bearer "+g.options.ApiKey)
	}

	rsp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", generator.ErrGeneration, err)
	}
	defer rsp.Body.Close()

	payload, err := io.ReadAll(rsp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %w", generator.ErrGeneration, err)
	}

	if rsp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: huggingface http %d: %s", generator.ErrGeneration, rsp.StatusCode, string(payload))
	}

	text, err := decodeGeneratedText(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %w", generator.ErrGeneration, err)
	}

	// text-generation endpoints echo the prompt unless told otherwise
	text = strings.TrimPrefix(text, fullPrompt)

	return strings.TrimSpace(text), nil
}

func decodeGeneratedText(payload []byte) (string, error) {
	var list []textGenerationResult
	if err := json.Unmarshal(payload, &list); err == nil {
		if len(list) == 0 {
			return "", nil
		}
		return list[0].GeneratedText, nil
	}

	var single textGenerationResult
	if err := json.Unmarshal(payload, &single); err != nil {
		return "", fmt.Errorf("decode generation: %w", err)
	}

	return single.GeneratedText, nil
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = defaultModel
	}

	g := &huggingFaceGenerator{
		options: options,
	}

	if len(options.Location) > 0 {
		g.url = options.Location
	} else {
		g.url = defaultLocation + options.Model
	}

	if options.HTTPClient != nil {
		g.client = options.HTTPClient
	} else {
		g.client = httpclient.New(options.Timeout)
	}

	return g
}
