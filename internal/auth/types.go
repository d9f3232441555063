package auth

import "time"

// User is a registered account. PasswordHash is always set after
// registration; the plaintext never leaves the request scope.
//
// ResetToken and ResetExpires are either both set or both zero. Only the
// most recently issued reset token is valid; issuing a new one overwrites
// the previous pair.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	ResetToken   string
	ResetExpires time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasResetToken reports whether an outstanding reset token is stored.
func (u *User) HasResetToken() bool {
	return u.ResetToken != "" && !u.ResetExpires.IsZero()
}
