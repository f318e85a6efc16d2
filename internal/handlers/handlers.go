package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"budget/internal/logging"
	"budget/internal/money"
	"budget/internal/services"
	"budget/internal/store"
	"budget/internal/validator"
)

// envelope is the shape of every API response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondData(w http.ResponseWriter, status int, data any) {
	respondJSON(w, status, envelope{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, envelope{Success: false, Error: message})
}

func decodeJSON(r *http.Request, dest any) error {
	return json.NewDecoder(r.Body).Decode(dest)
}

// respondFailure maps domain errors to a status and message. Anything
// unrecognized is logged and reported as "<action> failed".
func respondFailure(w http.ResponseWriter, r *http.Request, err error, entity, action string) {
	var required *validator.RequiredError
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, services.ErrBillNotFound):
		respondError(w, http.StatusNotFound, entity+" not found")
	case errors.As(err, &required):
		respondError(w, http.StatusBadRequest, required.Error())
	case errors.Is(err, services.ErrNameRequired), errors.Is(err, services.ErrScopeRequired):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, money.ErrNotPositive), errors.Is(err, money.ErrTooManyDecimals), errors.Is(err, money.ErrInvalidAmount):
		respondError(w, http.StatusBadRequest, "invalid amount")
	default:
		logging.FromContext(r.Context()).ErrorContext(r.Context(), action+" failed",
			"entity", entity,
			"error", err)
		respondError(w, http.StatusInternalServerError, action+" failed")
	}
}

type deleteResult struct {
	Deleted bool `json:"deleted"`
}
