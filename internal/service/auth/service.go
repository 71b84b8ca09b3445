package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/w-h-a/brainvault/internal/service"
	userstore "github.com/w-h-a/brainvault/user_store"
)

const (
	DefaultTokenTTL = 30 * time.Minute

	badCredentials = "Incorrect email or password"
	badToken       = "Could not validate credentials"
)

// dummyHash is compared against when the email is unknown so that a failed
// login costs the same either way.
var dummyHash, _ = HashPassword("brainvault-dummy-password")

type Service struct {
	users  userstore.UserStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Register creates a user. Emails are unique by exact match; "Bob@x.io" and
// "bob@x.io" register as two users.
func (s *Service) Register(ctx context.Context, email string, password string) (userstore.User, error) {
	if err := validateEmail(email); err != nil {
		return userstore.User{}, err
	}

	if len(password) == 0 {
		return userstore.User{}, fmt.Errorf("%w: password is required", service.ErrValidation)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return userstore.User{}, fmt.Errorf("%w: %w", service.ErrValidation, err)
	}

	user, err := s.users.Create(ctx, email, hash)
	if errors.Is(err, userstore.ErrDuplicate) {
		return userstore.User{}, fmt.Errorf("%w: Email already registered", service.ErrConflict)
	}
	if err != nil {
		return userstore.User{}, err
	}

	return user, nil
}

// Login returns the same error whether the email is unknown or the password
// is wrong.
func (s *Service) Login(ctx context.Context, email string, password string) (Token, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, userstore.ErrNotFound) {
		VerifyPassword(password, dummyHash)
		return Token{}, fmt.Errorf("%w: %s", service.ErrAuth, badCredentials)
	}
	if err != nil {
		return Token{}, err
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return Token{}, fmt.Errorf("%w: %s", service.ErrAuth, badCredentials)
	}

	accessToken, err := s.IssueToken(user.Email, s.ttl)
	if err != nil {
		return Token{}, err
	}

	return Token{AccessToken: accessToken, TokenType: TokenType}, nil
}

// Authenticate resolves a bearer token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (userstore.User, error) {
	email, ok := s.VerifyToken(token)
	if !ok {
		return userstore.User{}, fmt.Errorf("%w: %s", service.ErrAuth, badToken)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, userstore.ErrNotFound) {
		return userstore.User{}, fmt.Errorf("%w: %s", service.ErrAuth, badToken)
	}
	if err != nil {
		return userstore.User{}, err
	}

	return user, nil
}

func validateEmail(email string) error {
	if len(strings.TrimSpace(email)) == 0 {
		return fmt.Errorf("%w: email is required", service.ErrValidation)
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: invalid email address", service.ErrValidation)
	}

	return nil
}

func New(users userstore.UserStore, secret string, ttl time.Duration) *Service {
	if len(secret) == 0 {
		panic("missing secret for auth service")
	}

	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	return &Service{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}
