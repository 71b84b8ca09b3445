package server

import "errors"

var ErrNotStarted = errors.New("server not started")

// Server runs a handler until stopped.
type Server interface {
	Options() Options
	Handle(handler any) error
	Start() error
	Stop() error
}
