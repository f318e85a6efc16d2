package handlers

import (
	"net/http"
	"time"

	"budget/internal/logging"
	"budget/internal/middleware"
	"budget/internal/websocket"
)

type healthResponse struct {
	Status string    `json:"status"`
	Seeded bool      `json:"seeded"`
	Time   time.Time `json:"time"`
}

// Health also inserts the shared demo scopes and bills the first time it
// runs against an empty database.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	seeded := false
	if h.seeder != nil {
		var err error
		seeded, err = h.seeder.EnsureDemoData(r.Context())
		if err != nil {
			logging.FromContext(r.Context()).WarnContext(r.Context(), "demo data seeding failed", "error", err)
		}
	}
	respondData(w, http.StatusOK, healthResponse{Status: "ok", Seeded: seeded, Time: h.now().UTC()})
}

// WS upgrades to the change feed. Browsers cannot set headers on a
// websocket handshake, so the token may also come from ?token=.
func (h *Handler) WS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token, _ = middleware.BearerToken(r.Header.Get("Authorization"))
	}
	if token == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	userID, err := h.authn.Resolve(token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := websocket.ServeWS(w, r, h.hub, userID); err != nil {
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", "user_id", userID, "error", err)
	}
}
