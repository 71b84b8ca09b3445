package generator

import (
	"context"
	"errors"
)

// ErrGeneration marks a transport or non-success failure from a hosted
// language model.
var ErrGeneration = errors.New("generation failure")

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
