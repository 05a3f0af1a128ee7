package server

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

const (
	DefaultDemoUsername = "student"
	DefaultDemoName     = "Demo Student"
)

// InitialiseSystem creates the demo student account when it does not exist yet.
// A generated password is logged once, on first creation.
func (s *Server) InitialiseSystem() error {
	email := generateEmailFromBaseURL(DefaultDemoUsername, s.config.GetBaseURL())

	password := s.config.GetDemoUserPassword()
	generated := password == ""
	if generated {
		var err error
		if password, err = generatePassword(); err != nil {
			return fmt.Errorf("[Server InitialiseSystem] failed to generate password: %w", err)
		}
	}

	created, err := s.auth.EnsureUser(email, DefaultDemoName, password)
	if err != nil {
		return fmt.Errorf("[Server InitialiseSystem] failed to create demo student: %w", err)
	}
	if !created {
		return nil
	}

	evt := s.logger.Info().Str("email", email).Str("base_url", s.config.GetBaseURL())
	if generated {
		evt = evt.Str("password", password)
	}
	evt.Msg("demo student created")
	return nil
}

// generateEmailFromBaseURL builds user@host from the base URL, falling back to campus.local.
func generateEmailFromBaseURL(user, baseURL string) string {
	host := "campus.local"
	if u, err := url.Parse(baseURL); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	if !strings.Contains(host, ".") {
		host += ".local"
	}
	return user + "@" + host
}

func generatePassword() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
