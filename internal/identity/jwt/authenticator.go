// Package jwt implements token issuance and validation with HMAC-signed JWTs.
package jwt

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/opsledger/opsledger/internal/domain"
	"github.com/opsledger/opsledger/internal/identity"
)

// Config contains JWT authenticator settings.
type Config struct {
	SecretKey           string
	AccessTokenDuration time.Duration
}

// Authenticator issues and validates HMAC-signed access tokens.
type Authenticator struct {
	secretKey           []byte
	accessTokenDuration time.Duration
}

// New creates a new JWT authenticator.
func New(cfg Config) *Authenticator {
	return &Authenticator{
		secretKey:           []byte(cfg.SecretKey),
		accessTokenDuration: cfg.AccessTokenDuration,
	}
}

type claims struct {
	jwt.RegisteredClaims
}

// GenerateToken issues a signed access token for the user.
func (a *Authenticator) GenerateToken(_ context.Context, user *domain.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.accessTokenDuration)),
		},
	})

	signed, err := token.SignedString(a.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies an access token, returning the user id.
func (a *Authenticator) ValidateToken(_ context.Context, tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secretKey, nil
	})
	if err != nil {
		return "", identity.ErrInvalidToken
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid || c.Subject == "" {
		return "", identity.ErrInvalidToken
	}

	return c.Subject, nil
}
