package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	userstore "github.com/w-h-a/brainvault/user_store"
)

func TestMemoryStore(t *testing.T) {
	s := NewStore()
	ctx := t.Context()

	alice, err := s.Create(ctx, "alice@example.com", "hash-a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), alice.Id)

	got, err := s.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	_, err = s.Create(ctx, "alice@example.com", "hash-b")
	require.ErrorIs(t, err, userstore.ErrDuplicate)

	_, err = s.GetByEmail(ctx, "ALICE@example.com")
	require.ErrorIs(t, err, userstore.ErrNotFound)
}

func TestMemoryStore_ConcurrentCreateAssignsUniqueIds(t *testing.T) {
	s := NewStore()
	ctx := t.Context()

	var wg sync.WaitGroup
	ids := make([]int64, 50)

	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user, err := s.Create(ctx, fmt.Sprintf("user-%d@example.com", i), "hash")
			assert.NoError(t, err)
			ids[i] = user.Id
		}(i)
	}

	wg.Wait()

	seen := map[int64]bool{}
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
}
