package handlers

import (
	"net/http"

	"locallisting/internal/repository"
)

// UpdateUserRequest omits email: it cannot be changed here.
type UpdateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,min=1,max=150"`
	Street   *string `json:"street" validate:"omitempty,max=255"`
	Zip      *string `json:"zip" validate:"omitempty,max=20"`
	City     *string `json:"city" validate:"omitempty,max=100"`
}

func (h *Handlers) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	user, err := h.UserService.GetUser(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, user, http.StatusOK)
}

// UpdateCurrentUser serves PUT and PATCH; PUT must carry a username.
func (h *Handlers) UpdateCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if r.Method == http.MethodPut && req.Username == nil {
		WriteValidationError(w, map[string]string{"username": "This field is required."})
		return
	}

	user, err := h.UserService.UpdateUser(r.Context(), repository.UpdateUserRequest{
		UserID:   userID,
		Username: req.Username,
		Street:   req.Street,
		Zip:      req.Zip,
		City:     req.City,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, user, http.StatusOK)
}
