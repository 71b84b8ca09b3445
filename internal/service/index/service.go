package index

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	"github.com/w-h-a/brainvault/embedder"
	"github.com/w-h-a/brainvault/internal/service"
	"github.com/w-h-a/brainvault/storer"
	getsafe "github.com/w-h-a/brainvault/util/get_safe"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/w-h-a/brainvault/internal/service/index")

type Match struct {
	NoteId  string  `json:"note_id"`
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Text    string  `json:"text"`
	Score   float32 `json:"score"`
}

type Service struct {
	embedder embedder.Embedder
	storer   storer.Storer
}

// Upsert embeds the note's combined text and writes it under noteId,
// replacing any entry already stored there.
func (s *Service) Upsert(ctx context.Context, noteId string, ownerId int64, title string, content string, extra map[string]any) (err error) {
	ctx, span := tracer.Start(ctx, "index.Upsert")
	span.SetAttributes(
		attribute.String("note.id", noteId),
		attribute.Int64("note.owner_id", ownerId),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	text := CombinedText(title, content)

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return err
	}

	metadata := make(map[string]any, len(extra)+2)
	maps.Copy(metadata, extra)
	metadata[storer.TitleKey] = title
	metadata[storer.ContentKey] = content

	if err := s.storer.Upsert(ctx, noteId, ownerId, text, metadata, vec); err != nil {
		return fmt.Errorf("%w: upsert %s: %w", storer.ErrIndex, noteId, err)
	}

	return nil
}

// Query returns at most topK of the owner's notes, most similar first.
func (s *Service) Query(ctx context.Context, question string, ownerId int64, topK int) (matches []Match, err error) {
	ctx, span := tracer.Start(ctx, "index.Query")
	span.SetAttributes(
		attribute.Int64("note.owner_id", ownerId),
		attribute.Int("query.top_k", topK),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if topK < 1 {
		return nil, fmt.Errorf("%w: top_k must be at least 1", service.ErrValidation)
	}

	vec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, err
	}

	records, err := s.storer.Search(ctx, ownerId, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %w", storer.ErrIndex, err)
	}

	matches = make([]Match, 0, len(records))

	for _, rec := range records {
		// the store filters by owner too; never trust it alone
		if rec.OwnerId != ownerId {
			slog.WarnContext(ctx, "dropped search result owned by another user", "note_id", rec.Id)
			continue
		}

		matches = append(matches, Match{
			NoteId:  rec.Id,
			Title:   getsafe.String(rec.Metadata, storer.TitleKey),
			Content: getsafe.String(rec.Metadata, storer.ContentKey),
			Text:    rec.Content,
			Score:   rec.Score,
		})

		if len(matches) == topK {
			break
		}
	}

	span.SetAttributes(attribute.Int("query.matches", len(matches)))

	return matches, nil
}

// CombinedText is the unit a note is embedded and displayed as.
func CombinedText(title string, content string) string {
	return title + ". " + content
}

func New(embedder embedder.Embedder, storer storer.Storer) *Service {
	return &Service{
		embedder: embedder,
		storer:   storer,
	}
}
