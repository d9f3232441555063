package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ResetMailer delivers a password-reset token out of band.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, to, token string) error
}

// Service orchestrates registration, login and the password-reset
// lifecycle. All collaborators are injected at construction; nothing is
// read from the environment at request time.
type Service struct {
	store  UserStore
	tokens *TokenIssuer
	resets *ResetManager
	mailer ResetMailer
	now    func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithResetManager overrides the default reset manager.
func WithResetManager(m *ResetManager) ServiceOption {
	return func(s *Service) {
		if m != nil {
			s.resets = m
		}
	}
}

// WithMailer sets the outbound reset-mail collaborator.
func WithMailer(m ResetMailer) ServiceOption {
	return func(s *Service) {
		s.mailer = m
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs a Service.
func NewService(store UserStore, tokens *TokenIssuer, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("auth: store is required")
	}
	if tokens == nil {
		return nil, errors.New("auth: token issuer is required")
	}
	s := &Service{
		store:  store,
		tokens: tokens,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.resets == nil {
		s.resets = NewResetManager(store)
	}
	return s, nil
}

// Register creates a new account with a hashed password. A duplicate email
// yields ErrAlreadyExists; the uniqueness check is the store's, so two
// racing registrations cannot both win.
func (s *Service) Register(ctx context.Context, name, email, password string) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, ErrInvalidInput
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a bearer token. Unknown email and
// wrong password collapse to the same ErrInvalidCredentials so responses
// cannot be used to enumerate accounts.
func (s *Service) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", time.Time{}, ErrInvalidCredentials
	}
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", time.Time{}, ErrInvalidCredentials
		}
		return "", time.Time{}, err
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}
	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("issue token: %w", err)
	}
	return token, expiresAt, nil
}

// Authenticate validates a bearer token and returns the user id it
// asserts. The token is stateless; no store lookup happens here.
func (s *Service) Authenticate(token string) (string, error) {
	return s.tokens.Verify(token)
}

// ForgotPassword mints a reset token for the account and hands it to the
// mail collaborator. An unknown email is reported as ErrNotFound; a mail
// failure as ErrMailDelivery. Any previously issued token is superseded.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrNotFound
	}
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	token, err := s.resets.Issue(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}
	if s.mailer != nil {
		if err := s.mailer.SendPasswordReset(ctx, user.Email, token); err != nil {
			return fmt.Errorf("%w: %w", ErrMailDelivery, err)
		}
	}
	return nil
}

// ResetPassword redeems a reset token and installs a new password. The
// token is cleared by the consume itself, so it is single-use even when
// two resets race.
func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	if password == "" {
		return ErrInvalidInput
	}
	user, err := s.resets.Consume(ctx, token)
	if err != nil {
		return err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	return nil
}
