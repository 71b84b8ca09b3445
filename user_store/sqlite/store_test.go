package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	userstore "github.com/w-h-a/brainvault/user_store"
)

func TestSqliteStore(t *testing.T) {
	s := NewStore()
	defer s.Close()

	ctx := t.Context()

	alice, err := s.Create(ctx, "alice@example.com", "hash-a")
	require.NoError(t, err)
	assert.Positive(t, alice.Id)
	assert.False(t, alice.CreatedAt.IsZero())

	bob, err := s.Create(ctx, "bob@example.com", "hash-b")
	require.NoError(t, err)
	assert.NotEqual(t, alice.Id, bob.Id)

	t.Run("get by email", func(t *testing.T) {
		got, err := s.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)

		assert.Equal(t, alice.Id, got.Id)
		assert.Equal(t, "hash-a", got.PasswordHash)
		assert.True(t, alice.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("duplicate", func(t *testing.T) {
		_, err := s.Create(ctx, "alice@example.com", "other")
		require.ErrorIs(t, err, userstore.ErrDuplicate)
	})

	t.Run("case sensitive", func(t *testing.T) {
		_, err := s.GetByEmail(ctx, "Alice@example.com")
		require.ErrorIs(t, err, userstore.ErrNotFound)

		_, err = s.Create(ctx, "Alice@example.com", "hash-c")
		require.NoError(t, err)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := s.GetByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, userstore.ErrNotFound)
	})
}

func TestSqliteStore_PersistsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.db")

	s := NewStore(userstore.WithLocation(path))
	created, err := s.Create(t.Context(), "alice@example.com", "hash-a")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s = NewStore(userstore.WithLocation(path))
	defer s.Close()

	got, err := s.GetByEmail(t.Context(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.Id, got.Id)
}
