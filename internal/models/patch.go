package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Patches carry the fields a PUT may change. Nil means "leave as is".

// ScopePatch is the one patch with a clearable field: "monthlyLimit": null
// sets ClearMonthlyLimit and the scope falls back to thirty daily limits.
type ScopePatch struct {
	Name              *string
	DailyLimit        *decimal.Decimal
	MonthlyLimit      *decimal.Decimal
	ClearMonthlyLimit bool
	Icon              *ScopeIcon
	Color             *ScopeColor
}

type scopePatchWire struct {
	Name         *string          `json:"name,omitempty"`
	DailyLimit   *decimal.Decimal `json:"dailyLimit,omitempty"`
	MonthlyLimit json.RawMessage  `json:"monthlyLimit,omitempty"`
	Icon         *ScopeIcon       `json:"icon,omitempty"`
	Color        *ScopeColor      `json:"color,omitempty"`
}

func (p ScopePatch) MarshalJSON() ([]byte, error) {
	wire := scopePatchWire{Name: p.Name, DailyLimit: p.DailyLimit, Icon: p.Icon, Color: p.Color}
	switch {
	case p.MonthlyLimit != nil:
		raw, err := json.Marshal(p.MonthlyLimit)
		if err != nil {
			return nil, err
		}
		wire.MonthlyLimit = raw
	case p.ClearMonthlyLimit:
		wire.MonthlyLimit = json.RawMessage("null")
	}
	return json.Marshal(wire)
}

func (p *ScopePatch) UnmarshalJSON(data []byte) error {
	var wire scopePatchWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*p = ScopePatch{Name: wire.Name, DailyLimit: wire.DailyLimit, Icon: wire.Icon, Color: wire.Color}
	switch {
	case len(wire.MonthlyLimit) == 0:
	case string(wire.MonthlyLimit) == "null":
		p.ClearMonthlyLimit = true
	default:
		var limit decimal.Decimal
		if err := json.Unmarshal(wire.MonthlyLimit, &limit); err != nil {
			return err
		}
		p.MonthlyLimit = &limit
	}
	return nil
}

func (p ScopePatch) Apply(s *Scope) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.DailyLimit != nil {
		s.DailyLimit = *p.DailyLimit
	}
	switch {
	case p.MonthlyLimit != nil:
		s.MonthlyLimit = decimal.NewNullDecimal(*p.MonthlyLimit)
	case p.ClearMonthlyLimit:
		s.MonthlyLimit = decimal.NullDecimal{}
	}
	if p.Icon != nil {
		s.Icon = *p.Icon
	}
	if p.Color != nil {
		s.Color = *p.Color
	}
}

type TransactionPatch struct {
	ScopeID     *string          `json:"scopeId,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Description *string          `json:"description,omitempty"`
	Date        *time.Time       `json:"date,omitempty"`
}

func (p TransactionPatch) Apply(t *Transaction) {
	if p.ScopeID != nil {
		t.ScopeID = *p.ScopeID
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
}

type BillPatch struct {
	Name   *string          `json:"name,omitempty"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
	Paid   *bool            `json:"paid,omitempty"`
}

func (p BillPatch) Apply(b *Bill) {
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.Amount != nil {
		b.Amount = *p.Amount
	}
	if p.Paid != nil {
		b.Paid = *p.Paid
	}
}

type SettingsPatch struct {
	CurrentBalance  *decimal.Decimal `json:"currentBalance,omitempty"`
	CurrentSalary   *decimal.Decimal `json:"currentSalary,omitempty"`
	CurrentCurrency *string          `json:"currentCurrency,omitempty"`
	Onboarded       *bool            `json:"onboarded,omitempty"`
	Theme           *Theme           `json:"theme,omitempty"`
}

func (p SettingsPatch) Apply(s *UserSettings) {
	if p.CurrentBalance != nil {
		s.CurrentBalance = *p.CurrentBalance
	}
	if p.CurrentSalary != nil {
		s.CurrentSalary = *p.CurrentSalary
	}
	if p.CurrentCurrency != nil {
		s.CurrentCurrency = *p.CurrentCurrency
	}
	if p.Onboarded != nil {
		s.Onboarded = *p.Onboarded
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
}
