package services

import (
	"context"
	"errors"
	"strings"

	"budget/internal/db"
	"budget/internal/logging"
	"budget/internal/models"
	"budget/internal/money"
	"budget/internal/store"
	"budget/internal/websocket"

	"github.com/jmoiron/sqlx"
)

type BillService struct {
	txRunner db.TxRunner
	bills    BillStore
	settings SettingsStore
	hub      ChangeHub
	logger   *logging.Logger
}

func NewBillService(txRunner db.TxRunner, bills BillStore, settings SettingsStore, hub ChangeHub, logger *logging.Logger) *BillService {
	return &BillService{
		txRunner: txRunner,
		bills:    bills,
		settings: settings,
		hub:      hubOrNoop(hub),
		logger:   logger.WithComponent(logging.ComponentServices),
	}
}

// BillUpdate is the outcome of a bill patch. Settings is set only when
// the paid flag changed and the balance moved with it.
type BillUpdate struct {
	Bill     models.Bill
	Settings *models.UserSettings
}

// Update applies patch to the user's bill. Flipping paid adjusts the
// user's current balance in the same database transaction.
func (s *BillService) Update(ctx context.Context, userID, billID string, patch models.BillPatch) (BillUpdate, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return BillUpdate{}, ErrNameRequired
	}
	if patch.Amount != nil {
		if err := money.RequirePositive(*patch.Amount); err != nil {
			return BillUpdate{}, err
		}
	}
	var result BillUpdate
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		current, err := s.bills.GetForUpdate(ctx, tx, billID, userID)
		if err != nil {
			return err
		}
		next := current
		patch.Apply(&next)
		// a paid flip charges or refunds the post-patch amount
		delta := models.Bill{Amount: next.Amount, Paid: current.Paid}.PaidDelta(next.Paid)
		updated, err := s.bills.Update(ctx, tx, next, userID)
		if err != nil {
			return err
		}
		result = BillUpdate{Bill: updated}
		if delta.IsZero() {
			return nil
		}
		settings, err := s.settings.AdjustBalance(ctx, tx, userID, delta)
		if err != nil {
			return err
		}
		result.Settings = &settings
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return BillUpdate{}, ErrBillNotFound
		}
		return BillUpdate{}, err
	}
	s.hub.Broadcast(userID, websocket.ChangeEvent{
		Entity: websocket.EntityBill,
		Action: websocket.ActionUpdated,
		ID:     result.Bill.ID,
		Data:   result.Bill,
	})
	if result.Settings != nil {
		s.logger.InfoContext(ctx, "bill payment adjusted balance",
			"user_id", userID,
			"bill_id", result.Bill.ID,
			"paid", result.Bill.Paid,
			"balance", money.Format(result.Settings.CurrentBalance))
		s.hub.Broadcast(userID, websocket.ChangeEvent{
			Entity: websocket.EntitySettings,
			Action: websocket.ActionUpdated,
			ID:     userID,
			Data:   *result.Settings,
		})
	}
	return result, nil
}
