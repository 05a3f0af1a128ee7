package token

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Signer seals access tokens issued at login and checks them on every protected request.
type Signer interface {
	Sign(claims jwt.Claims) (string, error)
	// Key is handed to the jwt parser as its keyfunc.
	Key(token *jwt.Token) (any, error)
	Method() jwt.SigningMethod
}

// HMACSigner uses one shared secret, configured as JWT_SECRET, for both directions.
type HMACSigner struct {
	secret []byte
}

func NewHMACSigner(secret string) *HMACSigner {
	return &HMACSigner{secret: []byte(secret)}
}

func (h *HMACSigner) Sign(claims jwt.Claims) (string, error) {
	signed, err := jwt.NewWithClaims(h.Method(), claims).SignedString(h.secret)
	if err != nil {
		return "", errors.Wrap(err, "[HMACSigner.Sign] SignedString")
	}
	return signed, nil
}

func (h *HMACSigner) Key(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.Errorf("[HMACSigner.Key] token signed with %v, want %s", token.Header["alg"], h.Method().Alg())
	}
	return h.secret, nil
}

func (h *HMACSigner) Method() jwt.SigningMethod {
	return jwt.SigningMethodHS256
}
