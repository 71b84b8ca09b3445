package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/brainvault/internal/service"
	userstore "github.com/w-h-a/brainvault/user_store"
	"github.com/w-h-a/brainvault/user_store/memory"
)

const secret = "test-secret"

func newService(t *testing.T) *Service {
	t.Helper()
	return New(memory.NewStore(), secret, 0)
}

func TestHashPassword(t *testing.T) {
	a, err := HashPassword("hunter2")
	require.NoError(t, err)
	b, err := HashPassword("hunter2")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, VerifyPassword("hunter2", a))
	assert.True(t, VerifyPassword("hunter2", b))
	assert.False(t, VerifyPassword("hunter3", a))
	assert.False(t, VerifyPassword("hunter2", "not-a-hash"))
}

func TestRegister(t *testing.T) {
	s := newService(t)
	ctx := t.Context()

	user, err := s.Register(ctx, "alice@example.com", "pw")
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "pw", user.PasswordHash)
	assert.True(t, VerifyPassword("pw", user.PasswordHash))

	_, err = s.Register(ctx, "alice@example.com", "other")
	require.ErrorIs(t, err, service.ErrConflict)
	assert.Equal(t, "Email already registered", service.Detail(err, service.ErrConflict))
}

func TestRegister_Validation(t *testing.T) {
	s := newService(t)

	for _, tt := range []struct{ email, password string }{
		{"", "pw"},
		{"not-an-email", "pw"},
		{"Alice <alice@example.com>", "pw"},
		{"alice@example.com", ""},
	} {
		_, err := s.Register(t.Context(), tt.email, tt.password)
		assert.ErrorIs(t, err, service.ErrValidation, tt.email)
	}
}

func TestLogin(t *testing.T) {
	s := newService(t)
	ctx := t.Context()

	_, err := s.Register(ctx, "alice@example.com", "pw")
	require.NoError(t, err)

	token, err := s.Login(ctx, "alice@example.com", "pw")
	require.NoError(t, err)

	assert.Equal(t, "bearer", token.TokenType)
	subject, ok := s.VerifyToken(token.AccessToken)
	assert.True(t, ok)
	assert.Equal(t, "alice@example.com", subject)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	s := newService(t)
	ctx := t.Context()

	_, err := s.Register(ctx, "alice@example.com", "pw")
	require.NoError(t, err)

	_, wrongPassword := s.Login(ctx, "alice@example.com", "nope")
	_, unknownEmail := s.Login(ctx, "bob@example.com", "pw")

	require.ErrorIs(t, wrongPassword, service.ErrAuth)
	require.ErrorIs(t, unknownEmail, service.ErrAuth)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	assert.Equal(t, "Incorrect email or password", service.Detail(wrongPassword, service.ErrAuth))
}

func TestVerifyToken(t *testing.T) {
	s := newService(t)

	token, err := s.IssueToken("alice@example.com", time.Minute)
	require.NoError(t, err)

	subject, ok := s.VerifyToken(token)
	assert.True(t, ok)
	assert.Equal(t, "alice@example.com", subject)
}

func TestVerifyToken_Expired(t *testing.T) {
	s := newService(t)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	token, err := s.IssueToken("alice@example.com", 30*time.Minute)
	require.NoError(t, err)

	now = now.Add(29 * time.Minute)
	_, ok := s.VerifyToken(token)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = s.VerifyToken(token)
	assert.False(t, ok)
}

func TestVerifyToken_Rejects(t *testing.T) {
	s := newService(t)

	valid, err := s.IssueToken("alice@example.com", time.Minute)
	require.NoError(t, err)

	otherKey, err := New(memory.NewStore(), "other-secret", 0).IssueToken("alice@example.com", time.Minute)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "alice@example.com",
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "alice@example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "alice@example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"tampered":      valid[:len(valid)-2] + "xx",
		"wrong key":     otherKey,
		"no subject":    noSubject,
		"no expiry":     noExpiry,
		"other alg":     hs512,
		"alg none":      none,
		"malformed":     "not.a.token",
		"empty":         "",
		"random string": "garbage",
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				_, ok := s.VerifyToken(token)
				assert.False(t, ok)
			})
		})
	}
}

func TestAuthenticate(t *testing.T) {
	s := newService(t)
	ctx := t.Context()

	alice, err := s.Register(ctx, "alice@example.com", "pw")
	require.NoError(t, err)

	token, err := s.Login(ctx, "alice@example.com", "pw")
	require.NoError(t, err)

	user, err := s.Authenticate(ctx, token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, alice.Id, user.Id)

	_, err = s.Authenticate(ctx, "garbage")
	require.ErrorIs(t, err, service.ErrAuth)
	assert.Equal(t, "Could not validate credentials", service.Detail(err, service.ErrAuth))

	ghost, err := s.IssueToken("ghost@example.com", time.Minute)
	require.NoError(t, err)

	_, err = s.Authenticate(ctx, ghost)
	require.ErrorIs(t, err, service.ErrAuth)
}

type failingStore struct {
	userstore.UserStore
}

func (failingStore) GetByEmail(ctx context.Context, email string) (userstore.User, error) {
	return userstore.User{}, errors.New("connection refused")
}

func TestLogin_StoreFailureIsNotAuthError(t *testing.T) {
	s := New(failingStore{}, secret, 0)

	_, err := s.Login(t.Context(), "alice@example.com", "pw")

	require.Error(t, err)
	assert.False(t, errors.Is(err, service.ErrAuth))
}

func TestNew_RequiresSecret(t *testing.T) {
	assert.Panics(t, func() { New(memory.NewStore(), "", 0) })
}
