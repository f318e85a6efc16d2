package store

import (
	"context"

	"budget/internal/models"
)

// SeedStore manages shared demo rows: scopes and bills without an owner.
type SeedStore struct {
	db DB
}

func NewSeedStore(db DB) *SeedStore {
	return &SeedStore{db: db}
}

func (s *SeedStore) HasSharedRows(ctx context.Context) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `
		SELECT EXISTS(SELECT 1 FROM scopes WHERE user_id IS NULL)
		    OR EXISTS(SELECT 1 FROM bills WHERE user_id IS NULL)
	`)
	return exists, err
}

func (s *SeedStore) InsertShared(ctx context.Context, tx Execer, scopes []models.Scope, bills []models.Bill) error {
	for _, scope := range scopes {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO scopes (id, user_id, name, daily_limit, monthly_limit, icon, color)
			VALUES ($1, NULL, $2, $3, $4, $5, $6)
		`, scope.ID, scope.Name, scope.DailyLimit, scope.MonthlyLimit, scope.Icon, scope.Color); err != nil {
			return err
		}
	}
	for _, bill := range bills {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO bills (id, user_id, name, amount, paid)
			VALUES ($1, NULL, $2, $3, $4)
		`, bill.ID, bill.Name, bill.Amount, bill.Paid); err != nil {
			return err
		}
	}
	return nil
}
