package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"locallisting/internal/service"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

const (
	msgInternal     = "Internal server error"
	msgNotFound     = "Not found."
	msgInvalidBody  = "Invalid request body"
	msgUnauthorized = "Authentication credentials were not provided."
)

// WriteError sends {"error": message} with the given status.
func WriteError(w http.ResponseWriter, message string, statusCode int) {
	writeSuccess(w, ErrorResponse{Error: message}, statusCode)
}

func WriteValidationError(w http.ResponseWriter, fields map[string]string) {
	writeSuccess(w, ValidationErrorResponse{Error: "validation failed", Fields: fields}, http.StatusBadRequest)
}

func writeSuccess(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeServiceError maps service errors onto HTTP statuses. Anything unrecognised is logged and hidden.
func (h *Handlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteValidationError(w, verr.Fields)
	case errors.Is(err, service.ErrForbidden):
		WriteError(w, "You do not have permission to perform this action.", http.StatusForbidden)
	case errors.Is(err, service.ErrNotFound):
		WriteError(w, msgNotFound, http.StatusNotFound)
	case errors.Is(err, service.ErrInvalidCredentials):
		WriteError(w, "Invalid Credentials", http.StatusBadRequest)
	case errors.Is(err, service.ErrInvalidToken):
		WriteError(w, "Token is invalid or expired.", http.StatusUnauthorized)
	case errors.Is(err, service.ErrConflict):
		WriteError(w, "Resource already exists.", http.StatusConflict)
	default:
		h.Log.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("request failed")
		WriteError(w, msgInternal, http.StatusInternalServerError)
	}
}
