package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/hbnb/marketplace/internal/core/policy"
)

// Authorize rejects the request unless the caller may perform op. It is meant
// for operations whose decision does not depend on a stored record.
func Authorize(op policy.Operation) echo.MiddlewareFunc {
	return authorize(op, func(echo.Context) policy.Resource { return policy.Resource{} })
}

// AuthorizeSelf treats the path parameter param as the id of the resource
// owner, for operations on the caller's own account.
func AuthorizeSelf(op policy.Operation, param string) echo.MiddlewareFunc {
	return authorize(op, func(c echo.Context) policy.Resource { return policy.Owned(c.Param(param)) })
}

func authorize(op policy.Operation, resource func(echo.Context) policy.Resource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := policy.Authorize(ClaimsFrom(c), op, resource(c)); err != nil {
				return err
			}
			return next(c)
		}
	}
}
