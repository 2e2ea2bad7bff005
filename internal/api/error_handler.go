package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hbnb/marketplace/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain error
// kinds to status codes and renders {"error": "<message>"}. Storage failures
// and unknown errors are logged and rendered without details.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

// kinds is checked in order. Storage comes first: a failed cascade step wraps
// both ErrStorage and the error of the step.
var kinds = []struct {
	kind error
	code int
}{
	{domain.ErrStorage, http.StatusInternalServerError},
	{domain.ErrTooManyAttempts, http.StatusTooManyRequests},
	{domain.ErrAuthentication, http.StatusUnauthorized},
	{domain.ErrPermission, http.StatusForbidden},
	{domain.ErrValidation, http.StatusBadRequest},
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrConflict, http.StatusConflict},
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	for _, k := range kinds {
		if !errors.Is(err, k.kind) {
			continue
		}
		if k.code == http.StatusInternalServerError {
			break
		}
		return k.code, message(err)
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

// message strips the leading kind from err so clients see only the detail,
// e.g. "validation failed: title is required" becomes "title is required".
func message(err error) string {
	msg := err.Error()
	for _, kind := range []error{domain.ErrValidation, domain.ErrConflict, domain.ErrPermission, domain.ErrAuthentication, domain.ErrNotFound} {
		if rest, ok := strings.CutPrefix(msg, kind.Error()+": "); ok {
			return rest
		}
	}
	return msg
}
