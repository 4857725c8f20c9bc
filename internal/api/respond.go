package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"queryforge/internal/core"
	"queryforge/internal/logger"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error.Printf("encode response: %v", err)
	}
}

// respondError maps core error kinds onto HTTP statuses. Error text is safe
// to echo: secrets never appear in core error messages.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrDuplicateName), errors.Is(err, core.ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, core.ErrInvalidArgument):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		logger.Error.Printf("internal error: %v", err)
	}
	respondJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}
