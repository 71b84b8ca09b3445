package answerer

import (
	"context"
	"net/http"
	"time"

	"github.com/w-h-a/brainvault/generator"
)

type Option func(*Options)

type Options struct {
	ApiKey     string
	Model      string
	Location   string
	Generator  generator.Generator
	Timeout    time.Duration
	HTTPClient *http.Client
	Context    context.Context
}

func WithApiKey(apiKey string) Option {
	return func(o *Options) {
		o.ApiKey = apiKey
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithLocation(loc string) Option {
	return func(o *Options) {
		o.Location = loc
	}
}

// WithGenerator sets the model a generative answerer completes prompts with.
func WithGenerator(g generator.Generator) Option {
	return func(o *Options) {
		o.Generator = g
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.Timeout = timeout
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(o *Options) {
		o.HTTPClient = client
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Timeout: 30 * time.Second,
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
