package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hbnb/marketplace/internal/core/ports"
)

type ReviewHandler struct {
	reviews ports.ReviewService
}

func NewReviewHandler(reviews ports.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// Create handles POST /reviews. The caller is the author.
//
// @Summary      Review a place
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createReviewRequest  true  "Review"
// @Success      201   {object}  ports.ReviewView
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /reviews [post]
func (h *ReviewHandler) Create(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	var req createReviewRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	review, err := h.reviews.Create(c.Request().Context(), claims, toReviewInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, review)
}

// List handles GET /reviews.
//
// @Summary      List reviews
// @Tags         reviews
// @Produce      json
// @Success      200  {array}  ports.ReviewView
// @Router       /reviews [get]
func (h *ReviewHandler) List(c echo.Context) error {
	reviews, err := h.reviews.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reviews)
}

// Get handles GET /reviews/:id.
//
// @Summary      Get a review
// @Tags         reviews
// @Produce      json
// @Param        id   path      string  true  "Review ID"
// @Success      200  {object}  ports.ReviewView
// @Failure      404  {object}  errorResponse
// @Router       /reviews/{id} [get]
func (h *ReviewHandler) Get(c echo.Context) error {
	review, err := h.reviews.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, review)
}

// Update handles PUT /reviews/:id.
//
// @Summary      Update a review
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Review ID"
// @Param        body  body      updateReviewRequest  true  "Fields to change"
// @Success      200   {object}  ports.ReviewView
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /reviews/{id} [put]
func (h *ReviewHandler) Update(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	var req updateReviewRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	review, err := h.reviews.Update(c.Request().Context(), claims, c.Param("id"), toReviewPatch(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, review)
}

// Delete handles DELETE /reviews/:id.
//
// @Summary      Delete a review
// @Tags         reviews
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Review ID"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /reviews/{id} [delete]
func (h *ReviewHandler) Delete(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	if err := h.reviews.Delete(c.Request().Context(), claims, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "review deleted"})
}
