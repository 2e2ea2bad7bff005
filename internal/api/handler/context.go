package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hbnb/marketplace/internal/api/middleware"
	"github.com/hbnb/marketplace/internal/core/domain"
)

// ctxClaims returns the claims injected by the Auth middleware, failing fast
// with ErrUnauthenticated when the route was not behind it.
func ctxClaims(c echo.Context) (domain.Claims, error) {
	claims := middleware.ClaimsFrom(c)
	if !claims.Authenticated() {
		return domain.Claims{}, domain.ErrUnauthenticated
	}
	return claims, nil
}

// bind decodes the body into req and runs the struct validator.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}
