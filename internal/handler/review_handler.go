package handlers

import (
	"net/http"

	"locallisting/internal/repository"
)

type SubmitReviewRequest struct {
	Rating  int    `json:"rating"`
	Content string `json:"content"`
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating"`
	Content *string `json:"content"`
}

func (h *Handlers) ListUserReviews(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	reviews, err := h.ReviewService.ListForUser(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, reviews, http.StatusOK)
}

// SubmitReview creates or overwrites the caller's review: 201 on create, 200 on overwrite.
func (h *Handlers) SubmitReview(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := currentUser(w, r)
	if !ok {
		return
	}

	reviewedUserID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	var req SubmitReviewRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	review, created, err := h.ReviewService.SubmitReview(r.Context(), repository.SubmitReviewRequest{
		ReviewerID:     reviewerID,
		ReviewedUserID: reviewedUserID,
		Rating:         req.Rating,
		Content:        req.Content,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeSuccess(w, review, status)
}

func (h *Handlers) GetReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	reviewID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	review, err := h.ReviewService.GetReview(r.Context(), reviewID, userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, review, http.StatusOK)
}

func (h *Handlers) UpdateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	reviewID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateReviewRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if r.Method == http.MethodPut {
		fields := map[string]string{}
		if req.Rating == nil {
			fields["rating"] = "This field is required."
		}
		if req.Content == nil {
			fields["content"] = "This field is required."
		}
		if len(fields) > 0 {
			WriteValidationError(w, fields)
			return
		}
	}

	review, err := h.ReviewService.UpdateReview(r.Context(), repository.UpdateReviewRequest{
		ReviewID: reviewID,
		UserID:   userID,
		Rating:   req.Rating,
		Content:  req.Content,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, review, http.StatusOK)
}

func (h *Handlers) DeleteReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	reviewID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.ReviewService.DeleteReview(r.Context(), reviewID, userID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ReviewByReviewer(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	reviewerID, ok := pathID(w, r, "reviewerId")
	if !ok {
		return
	}

	review, err := h.ReviewService.GetByReviewer(r.Context(), userID, reviewerID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, review, http.StatusOK)
}
