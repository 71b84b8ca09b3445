// Package extractive answers questions with a hosted question-answering
// model that returns a span copied from the context.
package extractive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/w-h-a/brainvault/answerer"
	"github.com/w-h-a/brainvault/generator"
	httpclient "github.com/w-h-a/brainvault/util/http_client"
)

const (
	defaultModel    = "deepset/roberta-base-squad2"
	defaultLocation = "https://router.huggingface.co/hf-inference/models/"
)

type extractiveAnswerer struct {
	options answerer.Options
	client  *http.Client
	url     string
}

type questionAnsweringRequest struct {
	Inputs  questionAnsweringInputs `json:"inputs"`
	Options map[string]any          `json:"options"`
}

type questionAnsweringInputs struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

type questionAnsweringResult struct {
	Answer string  `json:"answer"`
	Score  float64 `json:"score"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
}

func (a *extractiveAnswerer) Answer(ctx context.Context, question string, passage string) (string, error) {
	if len(strings.TrimSpace(passage)) == 0 {
		return answerer.NoContextAnswer, nil
	}

	body, err := json.Marshal(questionAnsweringRequest{
		Inputs:  questionAnsweringInputs{Question: question, Context: passage},
		Options: map[string]any{"wait_for_model": true},
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %w", generator.ErrGeneration, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: create request: %w", generator.ErrGeneration, err)
	}

	req.Header.Set("Content-Type", "application/json")

	if len(a.options.ApiKey) > 0 {
		req.Header.Set("Authorization", "Bearer "+a.options.ApiKey)
	}

	rsp, err := a.client.Do(req)
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

	result, err := decodeResult(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %w", generator.ErrGeneration, err)
	}

	if len(strings.TrimSpace(result.Answer)) == 0 {
		return answerer.NoAnswer, nil
	}

	return result.Answer, nil
}

// decodeResult accepts a single result object or a ranked list of them.
func decodeResult(payload []byte) (questionAnsweringResult, error) {
	var single questionAnsweringResult
	if err := json.Unmarshal(payload, &single); err == nil {
		return single, nil
	}

	var list []questionAnsweringResult
	if err := json.Unmarshal(payload, &list); err != nil {
		return questionAnsweringResult{}, fmt.Errorf("decode answer: %w", err)
	}

	if len(list) == 0 {
		return questionAnsweringResult{}, nil
	}

	return list[0], nil
}

func NewAnswerer(opts ...answerer.Option) answerer.Answerer {
	options := answerer.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = defaultModel
	}

	a := &extractiveAnswerer{
		options: options,
	}

	if len(options.Location) > 0 {
		a.url = options.Location
	} else {
		a.url = defaultLocation + options.Model
	}

	if options.HTTPClient != nil {
		a.client = options.HTTPClient
	} else {
		a.client = httpclient.New(options.Timeout)
	}

	return a
}
