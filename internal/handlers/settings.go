package handlers

import (
	"errors"
	"net/http"

	"budget/internal/models"
	"budget/internal/websocket"

	"github.com/jmoiron/sqlx"
)

type validationError struct{ err error }

func (e validationError) Error() string { return e.err.Error() }

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	settings, err := h.settings.GetOrDefault(r.Context(), userID)
	if err != nil {
		respondFailure(w, r, err, "settings", "load settings")
		return
	}
	respondData(w, http.StatusOK, settings)
}

// UpdateSettings merges the patch into the stored settings, or into the
// defaults for a user who has none yet.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var patch models.SettingsPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	var saved models.UserSettings
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		current, err := h.settings.GetForUpdate(r.Context(), tx, userID)
		if err != nil {
			return err
		}
		patch.Apply(&current)
		current.UserID = userID
		if err := validateSettings(&current); err != nil {
			return validationError{err}
		}
		saved, err = h.settings.Upsert(r.Context(), tx, current)
		return err
	})
	if err != nil {
		var invalid validationError
		if errors.As(err, &invalid) {
			respondError(w, http.StatusBadRequest, invalid.Error())
			return
		}
		respondFailure(w, r, err, "settings", "save settings")
		return
	}
	h.broadcast(userID, websocket.EntitySettings, websocket.ActionUpdated, userID, saved)
	respondData(w, http.StatusOK, saved)
}
