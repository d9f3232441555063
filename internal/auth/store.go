package auth

import (
	"context"
	"time"
)

// UserStore describes the persistence operations the credential core
// depends on. Implementations must provide two guarantees the core does
// not re-derive per request:
//
//   - Create enforces email uniqueness atomically and reports a duplicate
//     as ErrAlreadyExists, even when two registrations race.
//   - ConsumeResetToken is an atomic compare-and-clear: it returns the
//     matching non-expired user and removes the token in one operation, so
//     concurrent consumes of the same token cannot both succeed.
type UserStore interface {
	// Create persists a new user. ErrAlreadyExists on duplicate email.
	Create(ctx context.Context, u *User) error

	// Find returns the user by id. ErrNotFound when absent.
	Find(ctx context.Context, id string) (*User, error)

	// FindByEmail returns the user with the exact email. Lookup is
	// byte-for-byte; no case folding. ErrNotFound when absent.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, userID, passwordHash string) error

	// SetResetToken stores a reset token and its expiry on the user
	// record, replacing any previous pair.
	SetResetToken(ctx context.Context, userID, token string, expires time.Time) error

	// ConsumeResetToken atomically clears and returns the user whose
	// stored token equals token and whose expiry is strictly after now.
	// ErrNotFound when no such record exists.
	ConsumeResetToken(ctx context.Context, token string, now time.Time) (*User, error)
}
