package handler

import (
	"strings"

	"github.com/hbnb/marketplace/internal/core/ports"
)

// --- Request → Service input ---

func toRegisterInput(req registerRequest) ports.RegisterInput {
	return ports.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		Role:      req.Role,
	}
}

// identifier prefers the email when both are sent.
func (r loginRequest) identifier() string {
	if strings.TrimSpace(r.Email) != "" {
		return r.Email
	}
	return r.Username
}

func toUpdateUserInput(req updateUserRequest) ports.UpdateUserInput {
	return ports.UpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Username:  req.Username,
		Role:      req.Role,
		Password:  req.Password,
	}
}

func toPlaceInput(req createPlaceRequest) ports.PlaceInput {
	in := ports.PlaceInput{
		Title:       req.Title,
		Description: req.Description,
		AmenityIDs:  req.Amenities,
	}
	if req.Price != nil {
		in.Price = *req.Price
	}
	if req.Latitude != nil {
		in.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		in.Longitude = *req.Longitude
	}
	return in
}

func toPlacePatch(req updatePlaceRequest) ports.PlacePatch {
	return ports.PlacePatch{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		AmenityIDs:  req.Amenities,
	}
}

func toReviewInput(req createReviewRequest) ports.ReviewInput {
	in := ports.ReviewInput{PlaceID: req.PlaceID, Text: req.Text}
	if req.Rating != nil {
		in.Rating = *req.Rating
	}
	return in
}

func toReviewPatch(req updateReviewRequest) ports.ReviewPatch {
	return ports.ReviewPatch{Text: req.Text, Rating: req.Rating}
}
