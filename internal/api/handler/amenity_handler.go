package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hbnb/marketplace/internal/core/ports"
)

type AmenityHandler struct {
	amenities ports.AmenityService
}

func NewAmenityHandler(amenities ports.AmenityService) *AmenityHandler {
	return &AmenityHandler{amenities: amenities}
}

// Create handles POST /amenities.
//
// @Summary      Create an amenity
// @Tags         amenities
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      amenityRequest  true  "Amenity"
// @Success      201   {object}  ports.AmenityView
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /amenities [post]
func (h *AmenityHandler) Create(c echo.Context) error {
	var req amenityRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	amenity, err := h.amenities.Create(c.Request().Context(), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, amenity)
}

// List handles GET /amenities.
//
// @Summary      List amenities
// @Tags         amenities
// @Produce      json
// @Success      200  {array}  ports.AmenityView
// @Router       /amenities [get]
func (h *AmenityHandler) List(c echo.Context) error {
	amenities, err := h.amenities.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, amenities)
}

// Get handles GET /amenities/:id.
//
// @Summary      Get an amenity
// @Tags         amenities
// @Produce      json
// @Param        id   path      string  true  "Amenity ID"
// @Success      200  {object}  ports.AmenityView
// @Failure      404  {object}  errorResponse
// @Router       /amenities/{id} [get]
func (h *AmenityHandler) Get(c echo.Context) error {
	amenity, err := h.amenities.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, amenity)
}

// Update handles PUT /amenities/:id.
//
// @Summary      Rename an amenity
// @Tags         amenities
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Amenity ID"
// @Param        body  body      amenityRequest  true  "Amenity"
// @Success      200   {object}  ports.AmenityView
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /amenities/{id} [put]
func (h *AmenityHandler) Update(c echo.Context) error {
	var req amenityRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	amenity, err := h.amenities.Update(c.Request().Context(), c.Param("id"), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, amenity)
}

// Delete handles DELETE /amenities/:id. Places offering it keep their other
// amenities.
//
// @Summary      Delete an amenity
// @Tags         amenities
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Amenity ID"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /amenities/{id} [delete]
func (h *AmenityHandler) Delete(c echo.Context) error {
	if err := h.amenities.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "amenity deleted"})
}
