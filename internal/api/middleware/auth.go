package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hbnb/marketplace/internal/core/domain"
	"github.com/hbnb/marketplace/internal/core/ports"
)

// ClaimsKey is the echo context key holding the caller's domain.Claims.
const ClaimsKey = "claims"

// Auth verifies the bearer token and injects the claims into the echo
// context. The caller id is also recorded on the request context for audit
// attribution.
func Auth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := bearer(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return err
			}

			claims, err := verifier.Verify(raw)
			if err != nil {
				return err
			}

			c.Set(ClaimsKey, claims)
			req := c.Request()
			c.SetRequest(req.WithContext(ports.WithActor(req.Context(), claims.SubjectID)))
			return next(c)
		}
	}
}

func bearer(header string) (string, error) {
	if header == "" {
		return "", domain.ErrUnauthenticated
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", domain.ErrInvalidToken
	}
	return token, nil
}

// ClaimsFrom returns the claims stored by Auth, or zero claims.
func ClaimsFrom(c echo.Context) domain.Claims {
	claims, _ := c.Get(ClaimsKey).(domain.Claims)
	return claims
}
