package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	campuserrors "github.com/jrsteele09/go-campus/internal/errors"
	"github.com/jrsteele09/go-campus/users"
	"github.com/pkg/errors"
)

// Claims carried by an access token. The client never reads them; it treats the token as opaque.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenIntrospection is the result of checking a bearer token.
// If Active is false the other fields may not be populated.
type TokenIntrospection struct {
	Active bool      `json:"active"`
	Sub    string    `json:"sub,omitempty"`   // Users unique ID
	Email  string    `json:"email,omitempty"` // Email at time of issue
	JTI    string    `json:"jti,omitempty"`   // Unique token ID for revocation
	Exp    time.Time `json:"exp,omitempty"`
}

type Manager struct {
	signer            Signer
	issuer            string
	accessTokenExpiry time.Duration
	revocations       Revocations
	nowFunc           func() time.Time
}

type ManagerOption func(*Manager)

func WithTokenExpiry(accessTokenExpiry time.Duration) ManagerOption {
	return func(m *Manager) {
		m.accessTokenExpiry = accessTokenExpiry
	}
}

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func WithIssuer(issuer string) ManagerOption {
	return func(m *Manager) {
		m.issuer = issuer
	}
}

func WithRevocations(r Revocations) ManagerOption {
	return func(m *Manager) {
		m.revocations = r
	}
}

func New(signer Signer, options ...ManagerOption) *Manager {
	m := &Manager{
		signer:      signer,
		revocations: NewMemoryRevocations(),
	}

	for _, opt := range options {
		opt(m)
	}

	if m.accessTokenExpiry == 0 {
		m.accessTokenExpiry = 24 * time.Hour
	}
	if m.nowFunc == nil {
		m.nowFunc = time.Now
	}
	return m
}

// Issue creates a signed access token for the user and returns it with its expiry.
func (m *Manager) Issue(user *users.User) (string, time.Time, error) {
	if user == nil || user.ID == "" {
		return "", time.Time{}, errors.New("Manager.Issue: user is required")
	}
	now := m.nowFunc()
	exp := now.Add(m.accessTokenExpiry)

	claims := Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.New().String(),
		},
	}

	signed, err := m.signer.Sign(claims)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "Manager.Issue Sign")
	}
	return signed, exp, nil
}

func (m *Manager) parse(rawToken string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.signer.Method().Alg()}),
		jwt.WithTimeFunc(m.nowFunc),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		options = append(options, jwt.WithIssuer(m.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(rawToken, claims, m.signer.Key, options...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, campuserrors.ErrTokenExpired
		}
		return nil, errors.Wrap(campuserrors.ErrInvalidToken, err.Error())
	}
	if !parsed.Valid {
		return nil, campuserrors.ErrInvalidToken
	}
	return claims, nil
}

// Introspection validates a bearer token. An inactive result carries the reason as the error.
func (m *Manager) Introspection(rawToken string) (*TokenIntrospection, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return &TokenIntrospection{Active: false}, campuserrors.ErrInvalidToken
	}

	claims, err := m.parse(rawToken)
	if err != nil {
		return &TokenIntrospection{Active: false}, err
	}

	if claims.ID != "" && m.revocations.Revoked(claims.ID) {
		return &TokenIntrospection{Active: false}, campuserrors.ErrTokenRevoked
	}

	return &TokenIntrospection{
		Active: true,
		Sub:    claims.Subject,
		Email:  claims.Email,
		JTI:    claims.ID,
		Exp:    claims.ExpiresAt.Time,
	}, nil
}

// RevokeAccessToken blacklists the token's jti until it expires. Revoking an
// already expired or revoked token is a no-op.
func (m *Manager) RevokeAccessToken(rawToken string) error {
	claims, err := m.parse(strings.TrimSpace(rawToken))
	if err != nil {
		if errors.Is(err, campuserrors.ErrTokenExpired) {
			return nil
		}
		return err
	}
	if claims.ID == "" {
		return errors.Wrap(campuserrors.ErrInvalidToken, "token has no jti")
	}
	m.revocations.Revoke(claims.ID, claims.ExpiresAt.Time)
	return nil
}

// CleanupRevokedTokens forgets revocations of tokens that have expired since.
func (m *Manager) CleanupRevokedTokens() int {
	return m.revocations.Prune(m.nowFunc())
}
