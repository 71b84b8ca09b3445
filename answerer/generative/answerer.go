// Package generative answers questions by completing a prompt that carries
// the retrieved notes.
package generative

import (
	"context"
	"fmt"
	"strings"

	"github.com/w-h-a/brainvault/answerer"
)

const promptTemplate = "Use the following notes to answer the question.\n\nContext: %s\nQuestion: %s\nAnswer:"

type generativeAnswerer struct {
	options answerer.Options
}

func (a *generativeAnswerer) Answer(ctx context.Context, question string, passage string) (string, error) {
	if len(strings.TrimSpace(passage)) == 0 {
		return answerer.NoContextAnswer, nil
	}

	rsp, err := a.options.Generator.Generate(ctx, BuildPrompt(question, passage))
	if err != nil {
		return "", err
	}

	rsp = strings.TrimSpace(rsp)
	if len(rsp) == 0 {
		return answerer.NoClearAnswer, nil
	}

	return rsp, nil
}

func BuildPrompt(question string, passage string) string {
	return fmt.Sprintf(promptTemplate, passage, question)
}

func NewAnswerer(opts ...answerer.Option) answerer.Answerer {
	options := answerer.NewOptions(opts...)

	if options.Generator == nil {
		panic("missing generator for generative answerer")
	}

	return &generativeAnswerer{
		options: options,
	}
}
