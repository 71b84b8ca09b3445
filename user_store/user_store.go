package userstore

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("user not found")
	ErrDuplicate = errors.New("user already exists")
)

type User struct {
	Id           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserStore persists user credentials. Emails are matched exactly, so
// "A@x.io" and "a@x.io" are different users.
type UserStore interface {
	Create(ctx context.Context, email string, passwordHash string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Close() error
}
