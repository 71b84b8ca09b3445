package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/w-h-a/brainvault/storer"
)

type memoryStorer struct {
	options storer.Options
	records map[string]storer.Record
	mtx     sync.RWMutex
}

func (s *memoryStorer) Upsert(ctx context.Context, id string, ownerId int64, content string, metadata map[string]any, vector []float32) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := time.Now().UTC()

	cpy := make([]float32, len(vector))
	copy(cpy, vector)

	rec := storer.Record{
		Id:        id,
		OwnerId:   ownerId,
		Content:   content,
		Metadata:  storer.Payload(ownerId, content, metadata),
		Embedding: cpy,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if existing, ok := s.records[id]; ok {
		rec.CreatedAt = existing.CreatedAt
	}

	s.records[id] = rec

	return nil
}

func (s *memoryStorer) Search(ctx context.Context, ownerId int64, vector []float32, limit int) ([]storer.Record, error) {
	if limit < 1 {
		return nil, nil
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	candidates := make([]storer.Record, 0, len(s.records))

	for _, rec := range s.records {
		if rec.OwnerId != ownerId {
			continue
		}
		rec.Score = float32(storer.CosineSimilarity(vector, rec.Embedding))
		candidates = append(candidates, rec)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score == candidates[j].Score {
			return candidates[i].Id < candidates[j].Id
		}
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	return candidates, nil
}

func (s *memoryStorer) Close() error {
	return nil
}

func NewStorer(opts ...storer.Option) storer.Storer {
	options := storer.NewOptions(opts...)

	s := &memoryStorer{
		options: options,
		records: map[string]storer.Record{},
		mtx:     sync.RWMutex{},
	}

	return s
}
