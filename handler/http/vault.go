package http

import (
	"context"

	"github.com/w-h-a/brainvault"
)

// Vault is what the handlers need from the backend.
type Vault interface {
	Register(ctx context.Context, email string, password string) (brainvault.User, error)
	Login(ctx context.Context, email string, password string) (brainvault.Token, error)
	Authenticate(ctx context.Context, token string) (brainvault.User, error)
	SaveNote(ctx context.Context, user brainvault.User, title string, content string) (string, error)
	Ask(ctx context.Context, user brainvault.User, question string) (brainvault.Answer, error)
}

type userKey struct{}

func withUser(ctx context.Context, user brainvault.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFrom returns the user an authenticated request was made by.
func UserFrom(ctx context.Context) (brainvault.User, bool) {
	user, ok := ctx.Value(userKey{}).(brainvault.User)
	return user, ok
}
