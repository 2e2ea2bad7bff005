package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hbnb/marketplace/internal/core/domain"
	"github.com/hbnb/marketplace/internal/core/ports"
	"github.com/hbnb/marketplace/internal/metrics"
)

// AuthService implements login on top of the identity registry.
type AuthService struct {
	identity ports.IdentityService
	issuer   ports.TokenIssuer
	guard    ports.LoginGuard
	log      zerolog.Logger
}

var _ ports.AuthService = (*AuthService)(nil)

// NewAuthService wires login. guard may be nil, which disables lockout.
func NewAuthService(identity ports.IdentityService, issuer ports.TokenIssuer, guard ports.LoginGuard, log zerolog.Logger) *AuthService {
	return &AuthService{identity: identity, issuer: issuer, guard: guard, log: log}
}

// Login authenticates identifier (email or username) and issues a token
// carrying the user's id, role and admin flag.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*ports.LoginResult, error) {
	key := lockoutKey(identifier)

	if s.locked(ctx, key) {
		metrics.LoginAttemptsTotal.WithLabelValues("locked").Inc()
		return nil, domain.ErrTooManyAttempts
	}

	claims, err := s.identity.Authenticate(ctx, identifier, password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		if s.guard != nil && key != "" {
			if ferr := s.guard.Fail(ctx, key); ferr != nil {
				s.log.Warn().Err(ferr).Str("identifier", key).Msg("failed to record login failure")
			}
		}
		return nil, err
	}
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if s.guard != nil {
		if rerr := s.guard.Reset(ctx, key); rerr != nil {
			s.log.Warn().Err(rerr).Str("identifier", key).Msg("failed to reset login failures")
		}
	}

	token, err := s.issuer.Issue(claims)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("user_id", claims.SubjectID).Msg("user logged in")
	return &ports.LoginResult{AccessToken: token, Claims: claims}, nil
}

// lockoutKey folds case only for identifiers shaped like an email, which
// are matched case-insensitively. Usernames are case-sensitive and keep
// separate counters.
func lockoutKey(identifier string) string {
	identifier = strings.TrimSpace(identifier)
	if email := domain.NormalizeEmail(identifier); domain.ValidateEmail(email) == nil {
		return email
	}
	return identifier
}

func (s *AuthService) locked(ctx context.Context, key string) bool {
	if s.guard == nil || key == "" {
		return false
	}
	locked, err := s.guard.Locked(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("identifier", key).Msg("login guard check failed, allowing attempt")
		return false
	}
	return locked
}
