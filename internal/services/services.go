package services

import (
	"context"
	"errors"
	"time"

	"budget/internal/models"
	"budget/internal/notify"
	"budget/internal/store"
	"budget/internal/websocket"

	"github.com/shopspring/decimal"
)

var (
	ErrBillNotFound = errors.New("bill not found")
	ErrNameRequired = errors.New("name is required")
)

type BillStore interface {
	GetForUpdate(ctx context.Context, tx store.Getter, id, userID string) (models.Bill, error)
	Update(ctx context.Context, tx store.Getter, bill models.Bill, userID string) (models.Bill, error)
}

type SettingsStore interface {
	AdjustBalance(ctx context.Context, tx store.Getter, userID string, delta decimal.Decimal) (models.UserSettings, error)
}

type TransactionStore interface {
	Create(ctx context.Context, tx store.Getter, input models.Transaction) (models.Transaction, error)
	SumForScope(ctx context.Context, tx store.Getter, userID, scopeID string, from, to time.Time) (decimal.Decimal, error)
}

type ScopeStore interface {
	GetVisible(ctx context.Context, id, userID string) (models.Scope, error)
}

type SeedStore interface {
	HasSharedRows(ctx context.Context) (bool, error)
	InsertShared(ctx context.Context, tx store.Execer, scopes []models.Scope, bills []models.Bill) error
}

type ChangeHub interface {
	Broadcast(userID string, event websocket.ChangeEvent)
}

type AlertPublisher interface {
	PublishBudgetAlert(ctx context.Context, alert notify.BudgetAlert) error
}

type noopHub struct{}

func (noopHub) Broadcast(string, websocket.ChangeEvent) {}

func hubOrNoop(hub ChangeHub) ChangeHub {
	if hub == nil {
		return noopHub{}
	}
	return hub
}
