package storer

import (
	"context"
	"errors"
)

// ErrIndex marks a vector store that could not be reached or rejected the
// call.
var ErrIndex = errors.New("index failure")

// Storer persists note vectors keyed by id. Search only ever considers
// entries whose owner id equals ownerId.
type Storer interface {
	Upsert(ctx context.Context, id string, ownerId int64, content string, metadata map[string]any, vector []float32) error
	Search(ctx context.Context, ownerId int64, vector []float32, limit int) ([]Record, error)
	Close() error
}
