package storer

import (
	"context"
	"net/http"
	"time"
)

const (
	DistanceCosine = "cosine"
)

type Option func(*Options)

type Options struct {
	Location   string
	ApiKey     string
	Collection string
	Namespace  string
	VectorSize int
	Distance   string
	Timeout    time.Duration
	HTTPClient *http.Client
	Context    context.Context
}

func WithLocation(loc string) Option {
	return func(o *Options) {
		o.Location = loc
	}
}

func WithApiKey(apiKey string) Option {
	return func(o *Options) {
		o.ApiKey = apiKey
	}
}

func WithCollection(collection string) Option {
	return func(o *Options) {
		o.Collection = collection
	}
}

func WithNamespace(namespace string) Option {
	return func(o *Options) {
		o.Namespace = namespace
	}
}

func WithVectorSize(size int) Option {
	return func(o *Options) {
		o.VectorSize = size
	}
}

// WithDistance fixes the similarity metric for a deployment. Entries written
// under one metric are not comparable under another.
func WithDistance(distance string) Option {
	return func(o *Options) {
		o.Distance = distance
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
		Distance: DistanceCosine,
		Timeout:  30 * time.Second,
		Context:  context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
