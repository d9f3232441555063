package ledger

import (
	"context"
	"strings"
	"time"
)

// Service validates and records transactions for authenticated users.
type Service struct {
	store Store
	now   func() time.Time
}

// Option configures Service.
type Option func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs a Service over the given store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add records a transaction for the user.
func (s *Service) Add(ctx context.Context, userID string, amount int64, kind, category string) (*Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	kind = strings.ToLower(strings.TrimSpace(kind))
	if !ValidType(kind) {
		return nil, ErrInvalidType
	}
	tx := &Transaction{
		UserID:    userID,
		Amount:    amount,
		Type:      kind,
		Category:  strings.TrimSpace(category),
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Insert(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// ListByUser returns the user's transactions, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Transaction, error) {
	return s.store.ListByUser(ctx, userID)
}

// Delete removes one of the user's transactions. Removing another user's
// record is indistinguishable from removing a nonexistent one.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.store.Delete(ctx, userID, id)
}
