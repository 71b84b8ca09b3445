package http

import (
	"context"
	"net/http"
	"time"

	"github.com/w-h-a/brainvault/server"
)

type middlewareKey struct{}

type readHeaderTimeoutKey struct{}

// WithMiddleware wraps the handler; the first middleware is outermost.
func WithMiddleware(ms ...func(h http.Handler) http.Handler) server.Option {
	return func(o *server.Options) {
		o.Context = context.WithValue(o.Context, middlewareKey{}, ms)
	}
}

func MiddlewareFrom(ctx context.Context) ([]func(h http.Handler) http.Handler, bool) {
	ms, ok := ctx.Value(middlewareKey{}).([]func(h http.Handler) http.Handler)
	return ms, ok
}

func WithReadHeaderTimeout(timeout time.Duration) server.Option {
	return func(o *server.Options) {
		o.Context = context.WithValue(o.Context, readHeaderTimeoutKey{}, timeout)
	}
}

func ReadHeaderTimeoutFrom(ctx context.Context) (time.Duration, bool) {
	timeout, ok := ctx.Value(readHeaderTimeoutKey{}).(time.Duration)
	return timeout, ok
}
