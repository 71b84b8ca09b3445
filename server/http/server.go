package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/w-h-a/brainvault/server"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultReadHeaderTimeout = 10 * time.Second

var _ server.Server = (*Server)(nil)

type Server struct {
	options server.Options
	handler http.Handler
	srv     *http.Server
	addr    net.Addr
	errCh   chan error
	mtx     sync.RWMutex
}

func (s *Server) Options() server.Options {
	return s.options
}

func (s *Server) Handle(handler any) error {
	h, ok := handler.(http.Handler)
	if !ok {
		return fmt.Errorf("http server requires an http.Handler, got %T", handler)
	}

	if ms, ok := MiddlewareFrom(s.options.Context); ok {
		for i := len(ms) - 1; i >= 0; i-- {
			h = ms[i](h)
		}
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.handler = otelhttp.NewHandler(h, s.options.Name)

	return nil
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.handler == nil {
		return errors.New("http server has no handler")
	}

	ln, err := net.Listen("tcp", s.options.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.options.Address, err)
	}

	readHeaderTimeout := defaultReadHeaderTimeout
	if t, ok := ReadHeaderTimeoutFrom(s.options.Context); ok && t > 0 {
		readHeaderTimeout = t
	}

	s.srv = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	s.addr = ln.Addr()
	s.errCh = make(chan error, 1)

	slog.Info("http server listening", "address", s.addr.String())

	go func(srv *http.Server, errCh chan<- error) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			errCh <- err
		}
		close(errCh)
	}(s.srv, s.errCh)

	return nil
}

// Stop drains in-flight requests, waiting at most the shutdown timeout.
func (s *Server) Stop() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.srv == nil {
		return server.ErrNotStarted
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.options.ShutdownTimeout)
	defer cancel()

	err := s.srv.Shutdown(ctx)

	s.srv = nil

	return err
}

// Addr is the bound listener address, useful when listening on port 0.
func (s *Server) Addr() net.Addr {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.addr
}

// Err reports a serve failure after Start; it is closed on clean shutdown.
func (s *Server) Err() <-chan error {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.errCh
}

func NewServer(opts ...server.Option) *Server {
	options := server.NewOptions(opts...)

	s := &Server{
		options: options,
		mtx:     sync.RWMutex{},
	}

	return s
}
