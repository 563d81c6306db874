package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"locallisting/internal/repository"
)

type UpdateProfileRequest struct {
	Bio      *string `json:"bio" validate:"omitempty,max=500"`
	Location *string `json:"location" validate:"omitempty,max=100"`
}

func (h *Handlers) GetOwnProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	profile, err := h.ProfileService.GetOwnProfile(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, profile, http.StatusOK)
}

func (h *Handlers) UpdateOwnProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	profile, err := h.ProfileService.UpdateProfile(r.Context(), repository.UpdateProfileRequest{
		UserID:   userID,
		Bio:      req.Bio,
		Location: req.Location,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, profile, http.StatusOK)
}

func (h *Handlers) GetPublicProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.ProfileService.GetPublicProfile(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, profile, http.StatusOK)
}

func (h *Handlers) UserListings(w http.ResponseWriter, r *http.Request) {
	listings, err := h.ProfileService.ListUserListings(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, listings, http.StatusOK)
}
