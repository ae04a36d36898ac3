package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/prn-tf/sentinel/internal/domain"
	"github.com/prn-tf/sentinel/internal/service"
)

// Client-facing messages. Error bodies are JSON strings.
const (
	msgUsernameRequired   = "Username is required."
	msgPasswordRequired   = "Password is required."
	msgInvalidCredentials = "Invalid username or password"
	msgInvalidBody        = "Invalid request body."
	msgInternalError      = "Internal server error."
	msgRegistered         = "User registered successfully!"
	msgProductNotFound    = "Product not found."
	msgInvalidProductID   = "Invalid product id."
)

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps a service error to its HTTP response.
// Anything unrecognized is logged and reported as 500.
func writeServiceError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	var verr *service.ValidationError

	switch {
	case errors.Is(err, service.ErrMissingUsername):
		writeJSON(w, http.StatusBadRequest, msgUsernameRequired)
	case errors.Is(err, service.ErrMissingPassword):
		writeJSON(w, http.StatusBadRequest, msgPasswordRequired)
	case errors.Is(err, service.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, msgInvalidCredentials)
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, verr.Errors)
	case errors.Is(err, domain.ErrProductNotFound):
		writeJSON(w, http.StatusNotFound, msgProductNotFound)
	default:
		logger.Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, msgInternalError)
	}
}
