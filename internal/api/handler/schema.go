package handler

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Request types ---
//
// String fields are checked by the core so every rule lives in one place.
// The validator only enforces the presence of numeric fields, which JSON
// cannot distinguish from zero otherwise.

type registerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Role      string `json:"role" validate:"omitempty,oneof=owner traveler"`
}

// loginRequest accepts either an email or a username.
type loginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password" validate:"required"`
}

type updateUserRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Username  *string `json:"username"`
	Password  *string `json:"password"`
	Role      *string `json:"role" validate:"omitempty,oneof=owner traveler"`
}

type amenityRequest struct {
	Name string `json:"name"`
}

type createPlaceRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"     validate:"required"`
	Latitude    *float64 `json:"latitude"  validate:"required"`
	Longitude   *float64 `json:"longitude" validate:"required"`
	Amenities   []string `json:"amenities"`
}

type updatePlaceRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Price       *float64  `json:"price"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	Amenities   *[]string `json:"amenities"`
}

type createReviewRequest struct {
	PlaceID string `json:"place_id"`
	Text    string `json:"text"`
	Rating  *int   `json:"rating" validate:"required"`
}

type updateReviewRequest struct {
	Text   *string `json:"text"`
	Rating *int    `json:"rating"`
}
