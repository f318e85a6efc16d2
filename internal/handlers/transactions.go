package handlers

import (
	"net/http"
	"strings"
	"time"

	"budget/internal/models"
	"budget/internal/money"
	"budget/internal/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type createTransactionRequest struct {
	ScopeID     string           `json:"scopeId"`
	Amount      *decimal.Decimal `json:"amount"`
	Description string           `json:"description"`
	Date        *time.Time       `json:"date"`
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	transactions, err := h.transactions.ListByUser(r.Context(), userID)
	if err != nil {
		respondFailure(w, r, err, "transaction", "list transactions")
		return
	}
	respondData(w, http.StatusOK, transactions)
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if strings.TrimSpace(req.ScopeID) == "" {
		respondError(w, http.StatusBadRequest, "scopeId is required")
		return
	}
	if req.Amount == nil {
		respondError(w, http.StatusBadRequest, "amount is required")
		return
	}
	input := models.Transaction{
		UserID:      userID,
		ScopeID:     req.ScopeID,
		Amount:      *req.Amount,
		Description: req.Description,
	}
	if req.Date != nil {
		input.Date = *req.Date
	}
	created, err := h.txService.Create(r.Context(), input)
	if err != nil {
		respondFailure(w, r, err, "transaction", "create transaction")
		return
	}
	respondData(w, http.StatusCreated, created)
}

func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var patch models.TransactionPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if patch.ScopeID != nil && strings.TrimSpace(*patch.ScopeID) == "" {
		respondError(w, http.StatusBadRequest, "scopeId is required")
		return
	}
	if patch.Amount != nil {
		if err := money.RequirePositive(*patch.Amount); err != nil {
			respondError(w, http.StatusBadRequest, "invalid amount")
			return
		}
	}
	current, err := h.transactions.GetOwned(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		respondFailure(w, r, err, "transaction", "update transaction")
		return
	}
	patch.Apply(&current)
	updated, err := h.transactions.Update(r.Context(), current)
	if err != nil {
		respondFailure(w, r, err, "transaction", "update transaction")
		return
	}
	h.broadcast(userID, websocket.EntityTransaction, websocket.ActionUpdated, updated.ID, updated)
	respondData(w, http.StatusOK, updated)
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	deleted, err := h.transactions.Delete(r.Context(), id, userID)
	if err != nil {
		respondFailure(w, r, err, "transaction", "delete transaction")
		return
	}
	if deleted {
		h.broadcast(userID, websocket.EntityTransaction, websocket.ActionDeleted, id, nil)
	}
	respondData(w, http.StatusOK, deleteResult{Deleted: deleted})
}
