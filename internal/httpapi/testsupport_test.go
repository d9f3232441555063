package httpapi

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"pennybook.org/internal/auth"
	"pennybook.org/internal/ledger"
)

var errSMTPDown = errors.New("smtp down")

// In-memory stores backing handler tests. They mirror the SQL guarantees:
// unique emails, atomic compare-and-clear on reset consumption.

type memUsers struct {
	mu    sync.Mutex
	users map[string]*auth.User
	seq   int
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[string]*auth.User)}
}

func (m *memUsers) Create(_ context.Context, u *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return auth.ErrAlreadyExists
		}
	}
	m.seq++
	if u.ID == "" {
		u.ID = "user-" + strconv.Itoa(m.seq)
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUsers) Find(_ context.Context, id string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (m *memUsers) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return auth.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *memUsers) SetResetToken(_ context.Context, userID, token string, expires time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return auth.ErrNotFound
	}
	u.ResetToken = token
	u.ResetExpires = expires
	return nil
}

func (m *memUsers) ConsumeResetToken(_ context.Context, token string, now time.Time) (*auth.User, error) {
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
	return nil, auth.ErrNotFound
}

type memTxs struct {
	mu  sync.Mutex
	txs []ledger.Transaction
	seq int
}

func (m *memTxs) Insert(_ context.Context, tx *ledger.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if tx.ID == "" {
		tx.ID = "tx-" + strconv.Itoa(m.seq)
	}
	m.txs = append([]ledger.Transaction{*tx}, m.txs...)
	return nil
}

func (m *memTxs) ListByUser(_ context.Context, userID string) ([]ledger.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []ledger.Transaction
	for _, tx := range m.txs {
		if tx.UserID == userID {
			res = append(res, tx)
		}
	}
	return res, nil
}

func (m *memTxs) Delete(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, tx := range m.txs {
		if tx.ID == id && tx.UserID == userID {
			m.txs = append(m.txs[:i], m.txs[i+1:]...)
			return nil
		}
	}
	return ledger.ErrNotFound
}

type recordingMailer struct {
	mu     sync.Mutex
	tokens []string
	to     []string
	err    error
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, to, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.to = append(m.to, to)
	m.tokens = append(m.tokens, token)
	return nil
}

func (m *recordingMailer) lastToken(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.tokens) == 0 {
		t.Fatal("no reset mail was sent")
	}
	return m.tokens[len(m.tokens)-1]
}

type testEnv struct {
	api    *API
	users  *memUsers
	mailer *recordingMailer
}

func newTestEnv(t *testing.T, opts ...auth.ServiceOption) *testEnv {
	t.Helper()
	users := newMemUsers()
	mailer := &recordingMailer{}
	tokens, err := auth.NewTokenIssuer("test-secret")
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	opts = append([]auth.ServiceOption{auth.WithMailer(mailer)}, opts...)
	svc, err := auth.NewService(users, tokens, opts...)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	ledgerSvc := ledger.NewService(&memTxs{})
	return &testEnv{
		api:    New(svc, ledgerSvc, ReadyProbe{}, "test"),
		users:  users,
		mailer: mailer,
	}
}
