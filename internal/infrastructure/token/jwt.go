// Package token issues and verifies HS256 access tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hbnb/marketplace/internal/core/domain"
	"github.com/hbnb/marketplace/internal/core/ports"
)

const (
	DefaultTTL = 24 * time.Hour
	issuer     = "marketplace"
)

type tokenClaims struct {
	Role    domain.Role `json:"role"`
	IsAdmin bool        `json:"is_admin"`
	jwt.RegisteredClaims
}

// JWT implements ports.TokenIssuer and ports.TokenVerifier with a shared
// HMAC secret.
type JWT struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

var (
	_ ports.TokenIssuer   = (*JWT)(nil)
	_ ports.TokenVerifier = (*JWT)(nil)
)

// NewJWT returns a JWT signing with secret. A non-positive ttl means DefaultTTL.
func NewJWT(secret string, ttl time.Duration) (*JWT, error) {
	if secret == "" {
		return nil, errors.New("token: secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &JWT{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (j *JWT) Issue(claims domain.Claims) (string, error) {
	if !claims.Authenticated() {
		return "", errors.New("token: claims have no subject")
	}
	now := j.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Role:    claims.Role,
		IsAdmin: claims.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   claims.SubjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	})
	signed, err := t.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses raw and returns its claims. Every failure reads as
// domain.ErrInvalidToken.
func (j *JWT) Verify(raw string) (domain.Claims, error) {
	var tc tokenClaims
	_, err := jwt.ParseWithClaims(raw, &tc,
		func(*jwt.Token) (any, error) { return j.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return domain.Claims{}, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if tc.Subject == "" || !tc.Role.Valid() {
		return domain.Claims{}, domain.ErrInvalidToken
	}
	return domain.Claims{SubjectID: tc.Subject, Role: tc.Role, IsAdmin: tc.IsAdmin}, nil
}
