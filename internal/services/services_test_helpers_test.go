package services

import (
	"context"
	"sync"
	"time"

	"budget/internal/models"
	"budget/internal/notify"
	"budget/internal/store"
	"budget/internal/websocket"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type fakeTxRunner struct {
	err error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

type stubBillStore struct {
	getForUpdateFn func(ctx context.Context, tx store.Getter, id, userID string) (models.Bill, error)
	updateFn       func(ctx context.Context, tx store.Getter, bill models.Bill, userID string) (models.Bill, error)
}

func (s stubBillStore) GetForUpdate(ctx context.Context, tx store.Getter, id, userID string) (models.Bill, error) {
	return s.getForUpdateFn(ctx, tx, id, userID)
}

func (s stubBillStore) Update(ctx context.Context, tx store.Getter, bill models.Bill, userID string) (models.Bill, error) {
	if s.updateFn == nil {
		return bill, nil
	}
	return s.updateFn(ctx, tx, bill, userID)
}

type stubSettingsStore struct {
	adjustFn func(ctx context.Context, tx store.Getter, userID string, delta decimal.Decimal) (models.UserSettings, error)
}

func (s stubSettingsStore) AdjustBalance(ctx context.Context, tx store.Getter, userID string, delta decimal.Decimal) (models.UserSettings, error) {
	return s.adjustFn(ctx, tx, userID, delta)
}

type stubTransactionStore struct {
	createFn func(ctx context.Context, tx store.Getter, input models.Transaction) (models.Transaction, error)
	sumFn    func(ctx context.Context, tx store.Getter, userID, scopeID string, from, to time.Time) (decimal.Decimal, error)
}

func (s stubTransactionStore) Create(ctx context.Context, tx store.Getter, input models.Transaction) (models.Transaction, error) {
	if s.createFn == nil {
		return input, nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubTransactionStore) SumForScope(ctx context.Context, tx store.Getter, userID, scopeID string, from, to time.Time) (decimal.Decimal, error) {
	if s.sumFn == nil {
		return decimal.Zero, nil
	}
	return s.sumFn(ctx, tx, userID, scopeID, from, to)
}

type stubScopeStore struct {
	getVisibleFn func(ctx context.Context, id, userID string) (models.Scope, error)
}

func (s stubScopeStore) GetVisible(ctx context.Context, id, userID string) (models.Scope, error) {
	if s.getVisibleFn == nil {
		return models.Scope{}, store.ErrNotFound
	}
	return s.getVisibleFn(ctx, id, userID)
}

type stubSeedStore struct {
	hasFn    func(ctx context.Context) (bool, error)
	insertFn func(ctx context.Context, tx store.Execer, scopes []models.Scope, bills []models.Bill) error
}

func (s stubSeedStore) HasSharedRows(ctx context.Context) (bool, error) {
	if s.hasFn == nil {
		return false, nil
	}
	return s.hasFn(ctx)
}

func (s stubSeedStore) InsertShared(ctx context.Context, tx store.Execer, scopes []models.Scope, bills []models.Bill) error {
	if s.insertFn == nil {
		return nil
	}
	return s.insertFn(ctx, tx, scopes, bills)
}

type recordingHub struct {
	mu     sync.Mutex
	events []websocket.ChangeEvent
}

func (h *recordingHub) Broadcast(userID string, event websocket.ChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
}

type recordingPublisher struct {
	alerts []notify.BudgetAlert
	err    error
}

func (p *recordingPublisher) PublishBudgetAlert(ctx context.Context, alert notify.BudgetAlert) error {
	p.alerts = append(p.alerts, alert)
	return p.err
}
