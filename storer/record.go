package storer

import "time"

const (
	OwnerKey   = "owner_id"
	TitleKey   = "title"
	ContentKey = "content"
	TextKey    = "text"
	CreatedKey = "created_at"
)

type Record struct {
	Id        string
	OwnerId   int64
	Content   string
	Metadata  map[string]any
	Embedding []float32
	Score     float32
	CreatedAt time.Time
	UpdatedAt time.Time
}
