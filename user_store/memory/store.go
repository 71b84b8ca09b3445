package memory

import (
	"context"
	"sync"
	"time"

	userstore "github.com/w-h-a/brainvault/user_store"
)

type memoryStore struct {
	options userstore.Options
	users   map[string]userstore.User
	nextId  int64
	mtx     sync.RWMutex
}

func (m *memoryStore) Create(ctx context.Context, email string, passwordHash string) (userstore.User, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if _, ok := m.users[email]; ok {
		return userstore.User{}, userstore.ErrDuplicate
	}

	m.nextId++

	user := userstore.User{
		Id:           m.nextId,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	m.users[email] = user

	return user, nil
}

func (m *memoryStore) GetByEmail(ctx context.Context, email string) (userstore.User, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	user, ok := m.users[email]
	if !ok {
		return userstore.User{}, userstore.ErrNotFound
	}

	return user, nil
}

func (m *memoryStore) Close() error {
	return nil
}

func NewStore(opts ...userstore.Option) userstore.UserStore {
	options := userstore.NewOptions(opts...)

	return &memoryStore{
		options: options,
		users:   map[string]userstore.User{},
	}
}
