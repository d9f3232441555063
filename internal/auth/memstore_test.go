package auth

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// memStore is an in-memory UserStore for tests. It mirrors the store-level
// guarantees the SQL implementation provides: unique emails and atomic
// compare-and-clear on reset consumption.
type memStore struct {
	mu    sync.Mutex
	users map[string]*User // by id
	seq   int
}

func newMemStore() *memStore {
	return &memStore{users: make(map[string]*User)}
}

func (m *memStore) Create(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return ErrAlreadyExists
		}
	}
	m.seq++
	if u.ID == "" {
		u.ID = "user-" + strconv.Itoa(m.seq)
	}
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memStore) Find(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) FindByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *memStore) SetResetToken(_ context.Context, userID, token string, expires time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.ResetToken = token
	u.ResetExpires = expires
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *memStore) ConsumeResetToken(_ context.Context, token string, now time.Time) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ResetToken == token && u.ResetExpires.After(now) {
			u.ResetToken = ""
			u.ResetExpires = time.Time{}
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}
