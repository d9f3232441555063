package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"
)

// ResetTokenTTL is the validity window of a password-reset token.
const ResetTokenTTL = time.Hour

// resetTokenBytes is the entropy of a reset token before hex encoding.
const resetTokenBytes = 20

// ResetManager mints and redeems single-use password-reset tokens. Tokens
// are stored on the user record; at most one is outstanding per user.
type ResetManager struct {
	store UserStore
	ttl   time.Duration
	now   func() time.Time
}

// ResetOption configures a ResetManager.
type ResetOption func(*ResetManager)

// WithResetTTL overrides the reset-token lifetime.
func WithResetTTL(ttl time.Duration) ResetOption {
	return func(m *ResetManager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithResetClock overrides the time source (useful for tests).
func WithResetClock(fn func() time.Time) ResetOption {
	return func(m *ResetManager) {
		if fn != nil {
			m.now = fn
		}
	}
}

// NewResetManager constructs a ResetManager backed by the given store.
func NewResetManager(store UserStore, opts ...ResetOption) *ResetManager {
	m := &ResetManager{
		store: store,
		ttl:   ResetTokenTTL,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Issue mints a fresh token for the user and persists it with its expiry,
// overwriting any prior outstanding token. Only the latest token is valid.
func (m *ResetManager) Issue(ctx context.Context, userID string) (string, error) {
	token, err := newResetToken()
	if err != nil {
		return "", err
	}
	expires := m.now().UTC().Add(m.ttl)
	if err := m.store.SetResetToken(ctx, userID, token, expires); err != nil {
		return "", err
	}
	return token, nil
}

// Consume redeems a token, clearing it from the user record in the same
// store operation so it cannot be redeemed twice. Unknown and expired
// tokens are reported identically as ErrResetToken.
func (m *ResetManager) Consume(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrResetToken
	}
	user, err := m.store.ConsumeResetToken(ctx, token, m.now().UTC())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrResetToken
		}
		return nil, err
	}
	return user, nil
}

func newResetToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
