package embedder

import (
	"context"
	"net/http"
	"time"
)

type Option func(*Options)

type Options struct {
	ApiKey     string
	Model      string
	Location   string
	Dimensions int
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

func WithDimensions(dims int) Option {
	return func(o *Options) {
		o.Dimensions = dims
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.Timeout = timeout
	}
}

// WithHTTPClient replaces the provider's default instrumented client.
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
