package handlers

import (
	"net/http"

	"budget/internal/models"
	"budget/internal/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type createScopeRequest struct {
	Name         string            `json:"name"`
	DailyLimit   *decimal.Decimal  `json:"dailyLimit"`
	MonthlyLimit *decimal.Decimal  `json:"monthlyLimit"`
	Icon         models.ScopeIcon  `json:"icon"`
	Color        models.ScopeColor `json:"color"`
}

func (h *Handler) ListScopes(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	scopes, err := h.scopes.ListVisible(r.Context(), userID)
	if err != nil {
		respondFailure(w, r, err, "scope", "list scopes")
		return
	}
	respondData(w, http.StatusOK, scopes)
}

func (h *Handler) CreateScope(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var req createScopeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.DailyLimit == nil {
		respondError(w, http.StatusBadRequest, "dailyLimit is required")
		return
	}
	scope := models.Scope{
		ID:         uuid.NewString(),
		UserID:     &userID,
		Name:       req.Name,
		DailyLimit: *req.DailyLimit,
		Icon:       req.Icon,
		Color:      req.Color,
	}
	if req.MonthlyLimit != nil {
		scope.MonthlyLimit = decimal.NewNullDecimal(*req.MonthlyLimit)
	}
	if scope.Icon == "" {
		scope.Icon = models.IconWallet
	}
	if scope.Color == "" {
		scope.Color = models.ColorBlue
	}
	if err := validateScope(scope); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var created models.Scope
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		var err error
		created, err = h.scopes.Create(r.Context(), tx, scope)
		return err
	})
	if err != nil {
		respondFailure(w, r, err, "scope", "create scope")
		return
	}
	h.broadcast(userID, websocket.EntityScope, websocket.ActionCreated, created.ID, created)
	respondData(w, http.StatusCreated, created)
}

func (h *Handler) UpdateScope(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var patch models.ScopePatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	scope, err := h.scopes.GetOwned(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		respondFailure(w, r, err, "scope", "update scope")
		return
	}
	patch.Apply(&scope)
	if err := validateScope(scope); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.scopes.Update(r.Context(), scope, userID)
	if err != nil {
		respondFailure(w, r, err, "scope", "update scope")
		return
	}
	h.broadcast(userID, websocket.EntityScope, websocket.ActionUpdated, updated.ID, updated)
	respondData(w, http.StatusOK, updated)
}

// DeleteScope leaves transactions that reference the scope in place.
func (h *Handler) DeleteScope(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	deleted, err := h.scopes.Delete(r.Context(), id, userID)
	if err != nil {
		respondFailure(w, r, err, "scope", "delete scope")
		return
	}
	if deleted {
		h.broadcast(userID, websocket.EntityScope, websocket.ActionDeleted, id, nil)
	}
	respondData(w, http.StatusOK, deleteResult{Deleted: deleted})
}

func (h *Handler) broadcast(userID, entity, action, id string, data any) {
	h.hub.Broadcast(userID, websocket.ChangeEvent{
		Entity: entity,
		Action: action,
		ID:     id,
		Data:   data,
	})
}
