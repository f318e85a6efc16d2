package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"budget/internal/models"

	"github.com/shopspring/decimal"
)

func TestSettingsStoreGetOrDefault(t *testing.T) {
	store := NewSettingsStore(stubDB{
		getFn: func(context.Context, any, string, ...any) error { return sql.ErrNoRows },
	})
	if _, err := store.Get(context.Background(), "user-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	settings, err := store.GetOrDefault(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.UserID != "user-1" || settings.CurrentCurrency != models.DefaultCurrency || settings.Theme != models.ThemeSystem {
		t.Fatalf("unexpected defaults: %#v", settings)
	}
}

func TestSettingsStoreGetOrDefaultPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	store := NewSettingsStore(stubDB{
		getFn: func(context.Context, any, string, ...any) error { return boom },
	})
	if _, err := store.GetOrDefault(context.Background(), "user-1"); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestSettingsStoreUpsert(t *testing.T) {
	getter := stubGetter{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "ON CONFLICT (user_id) DO UPDATE") {
				t.Fatalf("expected upsert: %s", query)
			}
			if args[0] != "user-1" || args[3] != "EUR" {
				t.Fatalf("unexpected args: %#v", args)
			}
			*dest.(*models.UserSettings) = models.UserSettings{UserID: "user-1", CurrentCurrency: "EUR"}
			return nil
		},
	}
	settings := models.DefaultSettings("user-1")
	settings.CurrentCurrency = "EUR"
	saved, err := NewSettingsStore(stubDB{}).Upsert(context.Background(), getter, settings)
	if err != nil || saved.CurrentCurrency != "EUR" {
		t.Fatalf("unexpected result: %#v %v", saved, err)
	}
}

func TestSettingsStoreAdjustBalanceIsRelative(t *testing.T) {
	getter := stubGetter{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "current_balance = user_settings.current_balance + EXCLUDED.current_balance") {
				t.Fatalf("balance must be adjusted relative to stored value: %s", query)
			}
			if !args[1].(decimal.Decimal).Equal(decimal.NewFromInt(-15)) {
				t.Fatalf("unexpected delta: %#v", args[1])
			}
			*dest.(*models.UserSettings) = models.UserSettings{UserID: "user-1", CurrentBalance: decimal.NewFromInt(85)}
			return nil
		},
	}
	saved, err := NewSettingsStore(stubDB{}).AdjustBalance(context.Background(), getter, "user-1", decimal.NewFromInt(-15))
	if err != nil || !saved.CurrentBalance.Equal(decimal.NewFromInt(85)) {
		t.Fatalf("unexpected result: %#v %v", saved, err)
	}
}

func TestSettingsStoreGetForUpdateLocksInsideTx(t *testing.T) {
	pool := stubDB{
		getFn: func(context.Context, any, string, ...any) error {
			t.Fatal("locked read must go through the transaction")
			return nil
		},
	}
	getter := stubGetter{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "FOR UPDATE") {
				t.Fatalf("expected row lock: %s", query)
			}
			if args[0] != "user-1" {
				t.Fatalf("unexpected args: %#v", args)
			}
			*dest.(*models.UserSettings) = models.UserSettings{UserID: "user-1", CurrentBalance: decimal.NewFromInt(85)}
			return nil
		},
	}
	settings, err := NewSettingsStore(pool).GetForUpdate(context.Background(), getter, "user-1")
	if err != nil || !settings.CurrentBalance.Equal(decimal.NewFromInt(85)) {
		t.Fatalf("unexpected result: %#v %v", settings, err)
	}
}

func TestSettingsStoreGetForUpdateDefaults(t *testing.T) {
	getter := stubGetter{
		getFn: func(context.Context, any, string, ...any) error { return sql.ErrNoRows },
	}
	settings, err := NewSettingsStore(stubDB{}).GetForUpdate(context.Background(), getter, "user-1")
	if err != nil || settings.UserID != "user-1" || settings.Theme != models.ThemeSystem {
		t.Fatalf("unexpected defaults: %#v %v", settings, err)
	}

	boom := errors.New("boom")
	getter.getFn = func(context.Context, any, string, ...any) error { return boom }
	if _, err := NewSettingsStore(stubDB{}).GetForUpdate(context.Background(), getter, "user-1"); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}
