package openai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"github.com/w-h-a/brainvault/generator"
	httpclient "github.com/w-h-a/brainvault/util/http_client"
)

type openAIGenerator struct {
	options generator.Options
	client  *openai.Client
}

func (g *openAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	fullPrompt := prompt
	if len(g.options.PromptPrefix) > 0 {
		fullPrompt = g.options.PromptPrefix + "\n" + prompt
	}

	req := openai.ChatCompletionRequest{
		Model:     g.options.Model,
		MaxTokens: g.options.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fullPrompt,
			},
		},
	}

	rsp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", generator.ErrGeneration, err)
	}

	if len(rsp.Choices) == 0 {
		return "", fmt.Errorf("%w: no response from OpenAI", generator.ErrGeneration)
	}

	return rsp.Choices[0].Message.Content, nil
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = openai.GPT4oMini
	}

	g := &openAIGenerator{
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

	g.client = openai.NewClientWithConfig(cfg)

	return g
}
