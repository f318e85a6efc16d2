package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UncategorizedName is shown for transactions whose scope no longer exists.
const UncategorizedName = "Uncategorized"

type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email}
}

// Scope is a spending category. A nil UserID marks a shared demo row.
type Scope struct {
	ID           string              `db:"id" json:"id"`
	UserID       *string             `db:"user_id" json:"userId,omitempty"`
	Name         string              `db:"name" json:"name"`
	DailyLimit   decimal.Decimal     `db:"daily_limit" json:"dailyLimit"`
	MonthlyLimit decimal.NullDecimal `db:"monthly_limit" json:"monthlyLimit"`
	Icon         ScopeIcon           `db:"icon" json:"icon"`
	Color        ScopeColor          `db:"color" json:"color"`
	CreatedAt    time.Time           `db:"created_at" json:"createdAt"`
}

var daysPerBudgetMonth = decimal.NewFromInt(30)

// EffectiveMonthlyLimit is the monthly limit, or thirty daily limits when unset.
func (s Scope) EffectiveMonthlyLimit() decimal.Decimal {
	if s.MonthlyLimit.Valid {
		return s.MonthlyLimit.Decimal
	}
	return s.DailyLimit.Mul(daysPerBudgetMonth)
}

func (s Scope) Shared() bool {
	return s.UserID == nil
}

type Transaction struct {
	ID          string          `db:"id" json:"id"`
	UserID      string          `db:"user_id" json:"userId"`
	ScopeID     string          `db:"scope_id" json:"scopeId"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Description string          `db:"description" json:"description,omitempty"`
	Date        time.Time       `db:"date" json:"date"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
}

// Bill is a recurring monthly obligation. A nil UserID marks a shared demo row.
type Bill struct {
	ID        string          `db:"id" json:"id"`
	UserID    *string         `db:"user_id" json:"userId,omitempty"`
	Name      string          `db:"name" json:"name"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	Paid      bool            `db:"paid" json:"paid"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}

// PaidDelta is the balance change caused by moving the bill to paid.
func (b Bill) PaidDelta(paid bool) decimal.Decimal {
	if paid == b.Paid {
		return decimal.Zero
	}
	if paid {
		return b.Amount.Neg()
	}
	return b.Amount
}

func (b Bill) Shared() bool {
	return b.UserID == nil
}

type UserSettings struct {
	UserID          string          `db:"user_id" json:"userId"`
	CurrentBalance  decimal.Decimal `db:"current_balance" json:"currentBalance"`
	CurrentSalary   decimal.Decimal `db:"current_salary" json:"currentSalary"`
	CurrentCurrency string          `db:"current_currency" json:"currentCurrency"`
	Onboarded       bool            `db:"onboarded" json:"onboarded"`
	Theme           Theme           `db:"theme" json:"theme"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updatedAt"`
}

const DefaultCurrency = "USD"

func DefaultSettings(userID string) UserSettings {
	return UserSettings{
		UserID:          userID,
		CurrentBalance:  decimal.Zero,
		CurrentSalary:   decimal.Zero,
		CurrentCurrency: DefaultCurrency,
		Theme:           ThemeSystem,
	}
}
