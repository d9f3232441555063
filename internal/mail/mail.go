// Package mail delivers password-reset messages over SMTP.
package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"

	"pennybook.org/internal/config"
)

// Sender delivers a password-reset token to a recipient. The auth service
// depends on this interface, not on SMTP.
type Sender interface {
	SendPasswordReset(ctx context.Context, to, token string) error
}

// SMTPSender sends reset mail through a plain-auth SMTP relay.
type SMTPSender struct {
	cfg  config.SMTP
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender constructs a sender from SMTP configuration.
func NewSMTPSender(cfg config.SMTP) *SMTPSender {
	return &SMTPSender{cfg: cfg, send: smtp.SendMail}
}

// SendPasswordReset emails the reset token to the user.
func (s *SMTPSender) SendPasswordReset(_ context.Context, to, token string) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	msg := buildResetMessage(s.cfg.From, to, token)
	if err := s.send(addr, auth, s.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}
	return nil
}

func buildResetMessage(from, to, token string) []byte {
	body := "You requested a password reset.\r\n\r\n" +
		"Use this token within one hour: " + token + "\r\n\r\n" +
		"If you did not request a reset, ignore this message.\r\n"
	return []byte("From: " + from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: Password reset\r\n" +
		"\r\n" +
		body)
}
