package answerer

import "context"

const (
	// NoContextAnswer is returned without calling a model when there is
	// nothing to answer from.
	NoContextAnswer = "No relevant notes found."
	// NoAnswer is the extractive fallback when the model returns no span.
	NoAnswer = "I couldn't find an answer!"
	// NoClearAnswer is the generative fallback for an empty completion.
	NoClearAnswer = "I couldn't find a clear answer in your notes."
)

// Answerer answers a question from the given context. Failures wrap
// generator.ErrGeneration.
type Answerer interface {
	Answer(ctx context.Context, question string, passage string) (string, error)
}
