// Package hashing provides an offline embedder that maps text to a fixed
// length vector by hashing its word tokens into buckets. It needs no network
// access, which makes it useful for local runs and tests. Texts sharing words
// land near each other under cosine similarity; there is no semantic model.
package hashing

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"github.com/w-h-a/brainvault/embedder"
)

const DefaultDimensions = 256

type hashingEmbedder struct {
	options embedder.Options
}

func (e *hashingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: no tokens in input", embedder.ErrEmbedding)
	}

	dims := e.options.Dimensions
	vec := make([]float32, dims)

	for _, tok := range tokens {
		h := xxhash.Sum64String(tok)
		idx := h % uint64(dims)
		// the top bit picks the sign so unrelated tokens tend to cancel
		if h>>63 == 1 {
			vec[idx] -= 1
		} else {
			vec[idx] += 1
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}

	if norm == 0 {
		return vec, nil
	}

	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}

	return vec, nil
}

// Tokenize lower-cases text and splits it on anything that is not a letter
// or a digit.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func NewEmbedder(opts ...embedder.Option) embedder.Embedder {
	options := embedder.NewOptions(opts...)

	if options.Dimensions <= 0 {
		options.Dimensions = DefaultDimensions
	}

	return &hashingEmbedder{
		options: options,
	}
}
