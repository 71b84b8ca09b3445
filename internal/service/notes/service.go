package notes

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/w-h-a/brainvault/answerer"
	"github.com/w-h-a/brainvault/internal/service"
	"github.com/w-h-a/brainvault/internal/service/index"
	"github.com/w-h-a/brainvault/storer"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const DefaultTopK = 3

var tracer = otel.Tracer("github.com/w-h-a/brainvault/internal/service/notes")

type Answer struct {
	Answer  string        `json:"answer"`
	Matches []index.Match `json:"matches"`
	Count   int           `json:"count"`
}

type Service struct {
	index    *index.Service
	answerer answerer.Answerer
	topK     int
	now      func() time.Time
}

// Save indexes a new note for ownerId and returns its id.
func (s *Service) Save(ctx context.Context, ownerId int64, title string, content string, extra map[string]any) (noteId string, err error) {
	ctx, span := tracer.Start(ctx, "notes.Save")
	span.SetAttributes(attribute.Int64("note.owner_id", ownerId))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if len(strings.TrimSpace(title)) == 0 || len(strings.TrimSpace(content)) == 0 {
		return "", fmt.Errorf("%w: Both 'title' and 'content' fields are required", service.ErrValidation)
	}

	noteId = uuid.New().String()
	span.SetAttributes(attribute.String("note.id", noteId))

	metadata := make(map[string]any, len(extra)+1)
	maps.Copy(metadata, extra)
	if _, ok := metadata[storer.CreatedKey]; !ok {
		metadata[storer.CreatedKey] = s.now().UTC().Format(time.RFC3339)
	}

	if err := s.index.Upsert(ctx, noteId, ownerId, title, content, metadata); err != nil {
		return "", err
	}

	return noteId, nil
}

// Ask answers question from ownerId's most similar notes. Having no notes
// is not an error.
func (s *Service) Ask(ctx context.Context, question string, ownerId int64) (rsp Answer, err error) {
	ctx, span := tracer.Start(ctx, "notes.Ask")
	span.SetAttributes(attribute.Int64("note.owner_id", ownerId))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if len(strings.TrimSpace(question)) == 0 {
		return Answer{}, fmt.Errorf("%w: message is required", service.ErrValidation)
	}

	matches, err := s.index.Query(ctx, question, ownerId, s.topK)
	if err != nil {
		return Answer{}, err
	}

	if len(matches) == 0 {
		return Answer{Answer: answerer.NoContextAnswer, Matches: []index.Match{}, Count: 0}, nil
	}

	texts := make([]string, 0, len(matches))
	for _, m := range matches {
		texts = append(texts, m.Text)
	}

	answer, err := s.answerer.Answer(ctx, question, strings.Join(texts, " "))
	if err != nil {
		return Answer{}, err
	}

	span.SetAttributes(attribute.Int("query.matches", len(matches)))

	return Answer{Answer: answer, Matches: matches, Count: len(matches)}, nil
}

func New(idx *index.Service, ans answerer.Answerer, topK int) *Service {
	if topK < 1 {
		topK = DefaultTopK
	}

	return &Service{
		index:    idx,
		answerer: ans,
		topK:     topK,
		now:      time.Now,
	}
}
