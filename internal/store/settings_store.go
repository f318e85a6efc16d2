package store

import (
	"context"

	"budget/internal/models"

	"github.com/shopspring/decimal"
)

type SettingsStore struct {
	db DB
}

func NewSettingsStore(db DB) *SettingsStore {
	return &SettingsStore{db: db}
}

const settingsColumns = `user_id, current_balance, current_salary, current_currency, onboarded, theme, updated_at`

// Get returns ErrNotFound when the user has never saved settings.
func (s *SettingsStore) Get(ctx context.Context, userID string) (models.UserSettings, error) {
	var settings models.UserSettings
	err := s.db.GetContext(ctx, &settings, `SELECT `+settingsColumns+` FROM user_settings WHERE user_id = $1`, userID)
	if err != nil {
		return models.UserSettings{}, notFound(err)
	}
	return settings, nil
}

// GetOrDefault falls back to unsaved defaults for a user without a row.
func (s *SettingsStore) GetOrDefault(ctx context.Context, userID string) (models.UserSettings, error) {
	settings, err := s.Get(ctx, userID)
	if err == ErrNotFound {
		return models.DefaultSettings(userID), nil
	}
	return settings, err
}

// GetForUpdate reads and locks the user's row inside tx so a concurrent
// balance adjustment cannot be overwritten by a stale merge. A user without
// a row gets unsaved defaults.
func (s *SettingsStore) GetForUpdate(ctx context.Context, tx Getter, userID string) (models.UserSettings, error) {
	var settings models.UserSettings
	err := tx.GetContext(ctx, &settings, `SELECT `+settingsColumns+` FROM user_settings WHERE user_id = $1 FOR UPDATE`, userID)
	if err == nil {
		return settings, nil
	}
	if err = notFound(err); err == ErrNotFound {
		return models.DefaultSettings(userID), nil
	}
	return models.UserSettings{}, err
}

func (s *SettingsStore) Upsert(ctx context.Context, tx Getter, settings models.UserSettings) (models.UserSettings, error) {
	var saved models.UserSettings
	err := tx.GetContext(ctx, &saved, `
		INSERT INTO user_settings (user_id, current_balance, current_salary, current_currency, onboarded, theme, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET current_balance = EXCLUDED.current_balance,
		    current_salary = EXCLUDED.current_salary,
		    current_currency = EXCLUDED.current_currency,
		    onboarded = EXCLUDED.onboarded,
		    theme = EXCLUDED.theme,
		    updated_at = NOW()
		RETURNING `+settingsColumns,
		settings.UserID, settings.CurrentBalance, settings.CurrentSalary, settings.CurrentCurrency, settings.Onboarded, settings.Theme,
	)
	if err != nil {
		return models.UserSettings{}, err
	}
	return saved, nil
}

// AdjustBalance adds delta to the stored balance, creating a default row
// first when none exists.
func (s *SettingsStore) AdjustBalance(ctx context.Context, tx Getter, userID string, delta decimal.Decimal) (models.UserSettings, error) {
	defaults := models.DefaultSettings(userID)
	var saved models.UserSettings
	err := tx.GetContext(ctx, &saved, `
		INSERT INTO user_settings (user_id, current_balance, current_salary, current_currency, onboarded, theme, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET current_balance = user_settings.current_balance + EXCLUDED.current_balance,
		    updated_at = NOW()
		RETURNING `+settingsColumns,
		userID, delta, defaults.CurrentSalary, defaults.CurrentCurrency, defaults.Onboarded, defaults.Theme,
	)
	if err != nil {
		return models.UserSettings{}, err
	}
	return saved, nil
}
