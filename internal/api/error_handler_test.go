package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hbnb/marketplace/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"validation", domain.Invalid("title is required"), http.StatusBadRequest, "title is required"},
		{"not found", domain.ErrPlaceNotFound, http.StatusNotFound, "place not found"},
		{"conflict", domain.ErrEmailTaken, http.StatusConflict, "email already registered"},
		{"permission", domain.ErrSelfReview, http.StatusForbidden, "user cannot review their own place"},
		{"unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized, "missing authentication claims"},
		{"locked out", domain.ErrTooManyAttempts, http.StatusTooManyRequests, "too many failed login attempts"},
		{"wrapped", fmt.Errorf("update: %w", domain.ErrReviewNotFound), http.StatusNotFound, "update: not found: review not found"},
		{"cascade step", domain.CascadeFailure("delete place", domain.ErrPlaceNotFound), http.StatusInternalServerError, "internal server error"},
		{"storage", domain.StorageFailure("insert", errors.New("connection refused")), http.StatusInternalServerError, "internal server error"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
		{"echo error", echo.NewHTTPError(http.StatusUnprocessableEntity, "rating is required"), http.StatusUnprocessableEntity, "rating is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			NewHTTPErrorHandler(zerolog.Nop())(tt.err, c)

			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Error != tt.msg {
				t.Fatalf("expected %q, got %q", tt.msg, body.Error)
			}
		})
	}
}
