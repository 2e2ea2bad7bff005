package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hbnb/marketplace/internal/core/ports"
)

// PlaceHandler serves listings. Ownership checks happen in the place service,
// which knows the stored owner.
type PlaceHandler struct {
	places  ports.PlaceService
	reviews ports.ReviewService
}

func NewPlaceHandler(places ports.PlaceService, reviews ports.ReviewService) *PlaceHandler {
	return &PlaceHandler{places: places, reviews: reviews}
}

// Create handles POST /places. The caller becomes the owner.
//
// @Summary      List a new place
// @Tags         places
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createPlaceRequest  true  "Place"
// @Success      201   {object}  ports.PlaceDetail
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /places [post]
func (h *PlaceHandler) Create(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	var req createPlaceRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	place, err := h.places.Create(c.Request().Context(), claims, toPlaceInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, place)
}

// List handles GET /places.
//
// @Summary      List places
// @Tags         places
// @Produce      json
// @Success      200  {array}  ports.PlaceDetail
// @Router       /places [get]
func (h *PlaceHandler) List(c echo.Context) error {
	places, err := h.places.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, places)
}

// Get handles GET /places/:id.
//
// @Summary      Get a place with its owner, amenities and reviews
// @Tags         places
// @Produce      json
// @Param        id   path      string  true  "Place ID"
// @Success      200  {object}  ports.PlaceDetail
// @Failure      404  {object}  errorResponse
// @Router       /places/{id} [get]
func (h *PlaceHandler) Get(c echo.Context) error {
	place, err := h.places.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, place)
}

// Update handles PUT /places/:id. Sending "amenities" replaces the whole set.
//
// @Summary      Update a place
// @Tags         places
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Place ID"
// @Param        body  body      updatePlaceRequest  true  "Fields to change"
// @Success      200   {object}  ports.PlaceDetail
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /places/{id} [put]
func (h *PlaceHandler) Update(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	var req updatePlaceRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	place, err := h.places.Update(c.Request().Context(), claims, c.Param("id"), toPlacePatch(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, place)
}

// Delete handles DELETE /places/:id, removing its reviews with it.
//
// @Summary      Delete a place
// @Tags         places
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Place ID"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /places/{id} [delete]
func (h *PlaceHandler) Delete(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	if err := h.places.Delete(c.Request().Context(), claims, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "place deleted"})
}

// Reviews handles GET /places/:id/reviews.
//
// @Summary      List reviews of a place
// @Tags         places
// @Produce      json
// @Param        id   path      string  true  "Place ID"
// @Success      200  {array}   ports.ReviewView
// @Failure      404  {object}  errorResponse
// @Router       /places/{id}/reviews [get]
func (h *PlaceHandler) Reviews(c echo.Context) error {
	reviews, err := h.reviews.ListByPlace(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reviews)
}
