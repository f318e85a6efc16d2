package handlers

import (
	"net/http"

	"budget/internal/models"
	"budget/internal/money"
	"budget/internal/validator"
	"budget/internal/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type createBillRequest struct {
	Name   string           `json:"name"`
	Amount *decimal.Decimal `json:"amount"`
	Paid   bool             `json:"paid"`
}

func (h *Handler) ListBills(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	bills, err := h.bills.ListVisible(r.Context(), userID)
	if err != nil {
		respondFailure(w, r, err, "bill", "list bills")
		return
	}
	respondData(w, http.StatusOK, bills)
}

func (h *Handler) CreateBill(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var req createBillRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.Required("name", req.Name); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Amount == nil {
		respondError(w, http.StatusBadRequest, "amount is required")
		return
	}
	if err := money.RequirePositive(*req.Amount); err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	bill := models.Bill{
		ID:     uuid.NewString(),
		UserID: &userID,
		Name:   req.Name,
		Amount: *req.Amount,
		Paid:   req.Paid,
	}
	var created models.Bill
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		var err error
		created, err = h.bills.Create(r.Context(), tx, bill)
		return err
	})
	if err != nil {
		respondFailure(w, r, err, "bill", "create bill")
		return
	}
	h.broadcast(userID, websocket.EntityBill, websocket.ActionCreated, created.ID, created)
	respondData(w, http.StatusCreated, created)
}

// UpdateBill patches a bill. A change of paid moves the user's balance in
// the same transaction; clients re-read settings afterwards.
func (h *Handler) UpdateBill(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var patch models.BillPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	result, err := h.billService.Update(r.Context(), userID, chi.URLParam(r, "id"), patch)
	if err != nil {
		respondFailure(w, r, err, "bill", "update bill")
		return
	}
	respondData(w, http.StatusOK, result.Bill)
}

func (h *Handler) DeleteBill(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	deleted, err := h.bills.Delete(r.Context(), id, userID)
	if err != nil {
		respondFailure(w, r, err, "bill", "delete bill")
		return
	}
	if deleted {
		h.broadcast(userID, websocket.EntityBill, websocket.ActionDeleted, id, nil)
	}
	respondData(w, http.StatusOK, deleteResult{Deleted: deleted})
}
