package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hbnb/marketplace/internal/core/ports"
)

type AuthHandler struct {
	identity ports.IdentityService
	auth     ports.AuthService
}

func NewAuthHandler(identity ports.IdentityService, auth ports.AuthService) *AuthHandler {
	return &AuthHandler{identity: identity, auth: auth}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  ports.UserView
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.identity.Register(c.Request().Context(), toRegisterInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// Login authenticates a user by email or username and returns an access token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  ports.LoginResult
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.auth.Login(c.Request().Context(), req.identifier(), req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}
