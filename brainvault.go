package brainvault

import (
	"context"
	"errors"
	"time"

	"github.com/w-h-a/brainvault/answerer"
	"github.com/w-h-a/brainvault/embedder"
	"github.com/w-h-a/brainvault/internal/service/auth"
	"github.com/w-h-a/brainvault/internal/service/index"
	"github.com/w-h-a/brainvault/internal/service/notes"
	"github.com/w-h-a/brainvault/storer"
	userstore "github.com/w-h-a/brainvault/user_store"
)

type (
	User   = userstore.User
	Token  = auth.Token
	Answer = notes.Answer
	Match  = index.Match
)

type Config struct {
	Secret   string
	TokenTTL time.Duration
	TopK     int
}

// Vault is the note-taking backend: accounts, tokens, saving notes and
// asking questions about them.
type Vault struct {
	auth   *auth.Service
	notes  *notes.Service
	users  userstore.UserStore
	storer storer.Storer
}

func (v *Vault) Register(ctx context.Context, email string, password string) (User, error) {
	return v.auth.Register(ctx, email, password)
}

func (v *Vault) Login(ctx context.Context, email string, password string) (Token, error) {
	return v.auth.Login(ctx, email, password)
}

func (v *Vault) Authenticate(ctx context.Context, token string) (User, error) {
	return v.auth.Authenticate(ctx, token)
}

func (v *Vault) SaveNote(ctx context.Context, user User, title string, content string) (string, error) {
	return v.notes.Save(ctx, user.Id, title, content, map[string]any{"user_email": user.Email})
}

func (v *Vault) Ask(ctx context.Context, user User, question string) (Answer, error) {
	return v.notes.Ask(ctx, question, user.Id)
}

// Close releases the credential store and the note index.
func (v *Vault) Close() error {
	return errors.Join(v.users.Close(), v.storer.Close())
}

func New(
	users userstore.UserStore,
	emb embedder.Embedder,
	store storer.Storer,
	ans answerer.Answerer,
	cfg Config,
) *Vault {
	authService := auth.New(
		users,
		cfg.Secret,
		cfg.TokenTTL,
	)

	indexService := index.New(
		emb,
		store,
	)

	notesService := notes.New(
		indexService,
		ans,
		cfg.TopK,
	)

	return &Vault{
		auth:   authService,
		notes:  notesService,
		users:  users,
		storer: store,
	}
}
