package handlers

import (
	"context"

	"budget/internal/models"
	"budget/internal/services"
	"budget/internal/store"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Getter, id, email, passwordHash string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, userID string) (models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error
}

type ScopeStore interface {
	ListVisible(ctx context.Context, userID string) ([]models.Scope, error)
	GetOwned(ctx context.Context, id, userID string) (models.Scope, error)
	Create(ctx context.Context, tx store.Getter, scope models.Scope) (models.Scope, error)
	Update(ctx context.Context, scope models.Scope, userID string) (models.Scope, error)
	Delete(ctx context.Context, id, userID string) (bool, error)
}

type TransactionStore interface {
	ListByUser(ctx context.Context, userID string) ([]models.Transaction, error)
	GetOwned(ctx context.Context, id, userID string) (models.Transaction, error)
	Update(ctx context.Context, transaction models.Transaction) (models.Transaction, error)
	Delete(ctx context.Context, id, userID string) (bool, error)
}

type BillStore interface {
	ListVisible(ctx context.Context, userID string) ([]models.Bill, error)
	Create(ctx context.Context, tx store.Getter, bill models.Bill) (models.Bill, error)
	Delete(ctx context.Context, id, userID string) (bool, error)
}

type SettingsStore interface {
	GetOrDefault(ctx context.Context, userID string) (models.UserSettings, error)
	GetForUpdate(ctx context.Context, tx store.Getter, userID string) (models.UserSettings, error)
	Upsert(ctx context.Context, tx store.Getter, settings models.UserSettings) (models.UserSettings, error)
}

type TransactionService interface {
	Create(ctx context.Context, input models.Transaction) (models.Transaction, error)
}

type BillService interface {
	Update(ctx context.Context, userID, billID string, patch models.BillPatch) (services.BillUpdate, error)
}

type Seeder interface {
	EnsureDemoData(ctx context.Context) (bool, error)
}

// Stores groups the per-entity persistence dependencies.
type Stores struct {
	Users        UserStore
	Scopes       ScopeStore
	Transactions TransactionStore
	Bills        BillStore
	Settings     SettingsStore
}

type Services struct {
	Transactions TransactionService
	Bills        BillService
	Seeder       Seeder
}
