package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-campus/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyUser stores the authenticated *users.User
	ContextKeyUser ContextKey = "user"
	// ContextKeyToken stores the raw bearer token, needed to revoke it on logout
	ContextKeyToken ContextKey = "token"
)

// RequireAuth is middleware that validates a Bearer access token
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				writeError(w, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}

			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				writeError(w, http.StatusUnauthorized, "Empty token")
				return
			}

			user, err := s.auth.Authenticate(rawToken)
			if err != nil {
				s.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("rejected bearer token")
				writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			ctx = context.WithValue(ctx, ContextKeyToken, rawToken)
			next(w, r.WithContext(ctx))
		}
	}
}

// currentUser is only valid behind RequireAuth.
func currentUser(r *http.Request) *users.User {
	user, _ := r.Context().Value(ContextKeyUser).(*users.User)
	return user
}

func currentToken(r *http.Request) string {
	token, _ := r.Context().Value(ContextKeyToken).(string)
	return token
}
