package auth

import "errors"

var (
	ErrNotFound           = errors.New("auth: not found")
	ErrAlreadyExists      = errors.New("auth: already exists")
	ErrInvalidInput       = errors.New("auth: invalid input")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrMailDelivery       = errors.New("auth: reset email delivery failed")
)

// ErrInvalidToken covers every bearer-token failure: malformed encoding,
// bad signature, expiry. Callers must not distinguish between them.
var ErrInvalidToken = errors.New("invalid token")

// ErrResetToken covers both an unknown and an expired reset token.
// The two causes are deliberately indistinguishable to the caller.
var ErrResetToken = errors.New("auth: invalid or expired reset token")
