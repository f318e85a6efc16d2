package notify

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type Level string

const (
	LevelNone     Level = ""
	LevelNearing  Level = "nearing"
	LevelExceeded Level = "exceeded"
)

var nearingRatio = decimal.RequireFromString("0.8")

// BudgetAlert reports a scope's month-to-date spend crossing its limit.
type BudgetAlert struct {
	UserID    string          `json:"userId"`
	ScopeID   string          `json:"scopeId"`
	ScopeName string          `json:"scopeName"`
	Level     Level           `json:"level"`
	Spent     decimal.Decimal `json:"spent"`
	Limit     decimal.Decimal `json:"limit"`
	Month     string          `json:"month"`
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
}

func (a BudgetAlert) ToJSON() ([]byte, error) {
	return json.Marshal(a)
}

// Evaluate classifies spend against limit. A zero limit never alerts.
func Evaluate(spent, limit decimal.Decimal) Level {
	if !limit.IsPositive() {
		return LevelNone
	}
	if spent.GreaterThan(limit) {
		return LevelExceeded
	}
	if spent.GreaterThan(limit.Mul(nearingRatio)) {
		return LevelNearing
	}
	return LevelNone
}

func MessageFor(level Level, scopeName string) string {
	switch level {
	case LevelExceeded:
		return "You have exceeded your monthly limit for " + scopeName + "!"
	case LevelNearing:
		return "You are nearing your monthly limit for " + scopeName + "!"
	default:
		return ""
	}
}
