package ports

import (
	"context"

	"github.com/hbnb/marketplace/internal/core/domain"
)

// PasswordHasher turns plaintext passwords into verifiable digests.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// TokenIssuer signs claims into a bearer token.
type TokenIssuer interface {
	Issue(claims domain.Claims) (string, error)
}

// TokenVerifier validates a bearer token and returns its claims, or an error
// wrapping domain.ErrAuthentication.
type TokenVerifier interface {
	Verify(token string) (domain.Claims, error)
}

// LoginGuard throttles repeated failed logins for the same identifier.
type LoginGuard interface {
	Locked(ctx context.Context, identifier string) (bool, error)
	Fail(ctx context.Context, identifier string) error
	Reset(ctx context.Context, identifier string) error
}
