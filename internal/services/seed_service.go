package services

import (
	"context"
	"sync"

	"budget/internal/db"
	"budget/internal/logging"
	"budget/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// SeedService inserts the shared demo scopes and bills on first use.
type SeedService struct {
	txRunner db.TxRunner
	seeds    SeedStore
	enabled  bool
	logger   *logging.Logger

	mu   sync.Mutex
	done bool
}

func NewSeedService(txRunner db.TxRunner, seeds SeedStore, enabled bool, logger *logging.Logger) *SeedService {
	return &SeedService{
		txRunner: txRunner,
		seeds:    seeds,
		enabled:  enabled,
		logger:   logger.WithComponent(logging.ComponentServices),
	}
}

// EnsureDemoData reports whether this call inserted rows. After one
// success, or once shared rows are found, later calls return at once.
func (s *SeedService) EnsureDemoData(ctx context.Context) (bool, error) {
	if !s.enabled {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return false, nil
	}
	exists, err := s.seeds.HasSharedRows(ctx)
	if err != nil {
		return false, err
	}
	if exists {
		s.done = true
		return false, nil
	}
	scopes, bills := DemoScopes(), DemoBills()
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.seeds.InsertShared(ctx, tx, scopes, bills)
	})
	if err != nil {
		return false, err
	}
	s.done = true
	s.logger.InfoContext(ctx, "seeded demo data", "scopes", len(scopes), "bills", len(bills))
	return true, nil
}

func DemoScopes() []models.Scope {
	return []models.Scope{
		{ID: uuid.NewString(), Name: "Food", DailyLimit: decimal.NewFromInt(30), Icon: models.IconFood, Color: models.ColorGreen},
		{ID: uuid.NewString(), Name: "Transport", DailyLimit: decimal.NewFromInt(10), Icon: models.IconCar, Color: models.ColorBlue},
		{ID: uuid.NewString(), Name: "Fun", DailyLimit: decimal.NewFromInt(15), Icon: models.IconFilm, Color: models.ColorPurple},
	}
}

func DemoBills() []models.Bill {
	return []models.Bill{
		{ID: uuid.NewString(), Name: "Rent", Amount: decimal.NewFromInt(900)},
		{ID: uuid.NewString(), Name: "Internet", Amount: decimal.NewFromInt(30)},
	}
}
