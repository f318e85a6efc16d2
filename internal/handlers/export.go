package handlers

import (
	"fmt"
	"net/http"

	"budget/internal/export"
)

// Export streams the user's transactions as csv (default) or xlsx.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx := r.Context()
	transactions, err := h.transactions.ListByUser(ctx, userID)
	if err != nil {
		respondFailure(w, r, err, "transaction", "export")
		return
	}
	scopes, err := h.scopes.ListVisible(ctx, userID)
	if err != nil {
		respondFailure(w, r, err, "scope", "export")
		return
	}
	settings, err := h.settings.GetOrDefault(ctx, userID)
	if err != nil {
		respondFailure(w, r, err, "settings", "export")
		return
	}
	rows := export.Rows(transactions, export.ScopeNames(scopes))
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename(h.now())))
	w.WriteHeader(http.StatusOK)
	if err := export.Write(w, format, rows, settings.CurrentCurrency, h.loc); err != nil {
		h.logger.ErrorContext(ctx, "export write failed", "user_id", userID, "error", err)
	}
}
