// Package config loads process-wide startup configuration from the
// environment. Nothing here is re-read at request time; the signing secret
// in particular is handed to constructors exactly once.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variable names.
const (
	EnvAddr         = "PENNYBOOK_ADDR"
	EnvDatabaseDSN  = "PENNYBOOK_PG_DSN"
	EnvJWTSecret    = "PENNYBOOK_JWT_SECRET"
	EnvSMTPHost     = "PENNYBOOK_SMTP_HOST"
	EnvSMTPPort     = "PENNYBOOK_SMTP_PORT"
	EnvSMTPUsername = "PENNYBOOK_SMTP_USERNAME"
	EnvSMTPPassword = "PENNYBOOK_SMTP_PASSWORD"
	EnvSMTPFrom     = "PENNYBOOK_SMTP_FROM"
)

const defaultAddr = ":8080"

// SMTP holds outbound-mail credentials. Zero value means mail delivery is
// disabled (forgot-password still issues tokens, useful in development).
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether an SMTP host is configured.
func (s SMTP) Enabled() bool { return s.Host != "" }

// Config is the full startup configuration.
type Config struct {
	Addr        string
	DatabaseDSN string
	JWTSecret   string
	SMTP        SMTP
}

// Load reads configuration from the environment. The JWT secret is
// mandatory; a service without one cannot issue or verify tokens.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:        envOr(EnvAddr, defaultAddr),
		DatabaseDSN: strings.TrimSpace(os.Getenv(EnvDatabaseDSN)),
		JWTSecret:   strings.TrimSpace(os.Getenv(EnvJWTSecret)),
		SMTP: SMTP{
			Host:     strings.TrimSpace(os.Getenv(EnvSMTPHost)),
			Username: os.Getenv(EnvSMTPUsername),
			Password: os.Getenv(EnvSMTPPassword),
			From:     strings.TrimSpace(os.Getenv(EnvSMTPFrom)),
		},
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("config: " + EnvJWTSecret + " is required")
	}
	if raw := strings.TrimSpace(os.Getenv(EnvSMTPPort)); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("config: invalid %s: %q", EnvSMTPPort, raw)
		}
		cfg.SMTP.Port = port
	} else if cfg.SMTP.Enabled() {
		cfg.SMTP.Port = 587
	}
	if cfg.SMTP.Enabled() && cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.Username
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
