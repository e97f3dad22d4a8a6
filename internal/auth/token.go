package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Manidoux41/blog-next/internal/domain"
)

// ErrInvalidSession indicates a token that failed signature or expiry checks.
var ErrInvalidSession = errors.New("invalid session")

// Claims is the minimal identity embedded in a session token. It is fully
// derived from the user at login time; there is no server-side session
// record, so a token stays valid until it expires. IsConnected is a display
// attribute, not an authorization input.
type Claims struct {
	UserID      string
	Role        domain.Role
	IsConnected bool
}

type tokenClaims struct {
	Role        string `json:"role"`
	IsConnected bool   `json:"isConnected"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies signed session tokens with a fixed
// process-wide secret and lifetime.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue signs a token embedding the claims, expiring after the configured
// lifetime.
func (m *TokenManager) Issue(claims Claims) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Role:        string(claims.Role),
		IsConnected: claims.IsConnected,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Resolve verifies signature and expiry and returns the embedded claims.
// Any verification failure maps to ErrInvalidSession.
func (m *TokenManager) Resolve(tokenString string) (Claims, error) {
	var parsed tokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &parsed, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidSession
	}

	return Claims{
		UserID:      parsed.Subject,
		Role:        domain.Role(parsed.Role),
		IsConnected: parsed.IsConnected,
	}, nil
}
