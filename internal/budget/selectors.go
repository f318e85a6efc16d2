package budget

import (
	"time"

	"budget/internal/models"

	"github.com/shopspring/decimal"
)

const dayKey = "2006-01-02"

func sameDay(a, b time.Time, loc *time.Location) bool {
	return a.In(loc).Format(dayKey) == b.In(loc).Format(dayKey)
}

func sameMonth(a, b time.Time, loc *time.Location) bool {
	ay, am, _ := a.In(loc).Date()
	by, bm, _ := b.In(loc).Date()
	return ay == by && am == bm
}

func sum(transactions []models.Transaction, keep func(models.Transaction) bool) decimal.Decimal {
	total := decimal.Zero
	for _, t := range transactions {
		if keep(t) {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// DailyTotal sums the transactions dated on day's calendar day in loc.
func DailyTotal(transactions []models.Transaction, day time.Time, loc *time.Location) decimal.Decimal {
	return sum(transactions, func(t models.Transaction) bool {
		return sameDay(t.Date, day, loc)
	})
}

// SpentToday sums today's transactions, limited to scopeID unless it is empty.
func SpentToday(transactions []models.Transaction, now time.Time, loc *time.Location, scopeID string) decimal.Decimal {
	return sum(transactions, func(t models.Transaction) bool {
		return (scopeID == "" || t.ScopeID == scopeID) && sameDay(t.Date, now, loc)
	})
}

// SpentThisMonth sums the current calendar month, limited to scopeID unless it is empty.
func SpentThisMonth(transactions []models.Transaction, now time.Time, loc *time.Location, scopeID string) decimal.Decimal {
	return sum(transactions, func(t models.Transaction) bool {
		return (scopeID == "" || t.ScopeID == scopeID) && sameMonth(t.Date, now, loc)
	})
}

// MonthlyBudget is the sum of every scope's effective monthly limit.
func MonthlyBudget(scopes []models.Scope) decimal.Decimal {
	total := decimal.Zero
	for _, s := range scopes {
		total = total.Add(s.EffectiveMonthlyLimit())
	}
	return total
}

// Remaining is the monthly budget minus everything spent this month.
func Remaining(scopes []models.Scope, transactions []models.Transaction, now time.Time, loc *time.Location) decimal.Decimal {
	return MonthlyBudget(scopes).Sub(SpentThisMonth(transactions, now, loc, ""))
}

// ScopeRemaining is what is left of one scope's monthly limit.
func ScopeRemaining(scope models.Scope, transactions []models.Transaction, now time.Time, loc *time.Location) decimal.Decimal {
	return scope.EffectiveMonthlyLimit().Sub(SpentThisMonth(transactions, now, loc, scope.ID))
}

// Sparkline buckets spend into the last days calendar days ending today,
// oldest first. Days without transactions are zero.
func Sparkline(transactions []models.Transaction, now time.Time, loc *time.Location, days int) []decimal.Decimal {
	if days <= 0 {
		return []decimal.Decimal{}
	}
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -(days - 1))
	series := make([]decimal.Decimal, days)
	index := make(map[string]int, days)
	for i := range series {
		series[i] = decimal.Zero
		index[start.AddDate(0, 0, i).Format(dayKey)] = i
	}
	for _, t := range transactions {
		if i, ok := index[t.Date.In(loc).Format(dayKey)]; ok {
			series[i] = series[i].Add(t.Amount)
		}
	}
	return series
}

// ScopeName resolves a transaction's scope id, falling back to
// models.UncategorizedName for deleted scopes.
func ScopeName(scopes []models.Scope, id string) string {
	for _, s := range scopes {
		if s.ID == id {
			return s.Name
		}
	}
	return models.UncategorizedName
}

// View evaluates the selectors over one snapshot at a fixed instant.
type View struct {
	State State
	Now   time.Time
	Loc   *time.Location
}

func (v View) DailyTotal(day time.Time) decimal.Decimal {
	return DailyTotal(v.State.Transactions, day, v.Loc)
}

func (v View) SpentToday(scopeID string) decimal.Decimal {
	return SpentToday(v.State.Transactions, v.Now, v.Loc, scopeID)
}

func (v View) SpentThisMonth(scopeID string) decimal.Decimal {
	return SpentThisMonth(v.State.Transactions, v.Now, v.Loc, scopeID)
}

func (v View) MonthlyBudget() decimal.Decimal {
	return MonthlyBudget(v.State.Scopes)
}

func (v View) Remaining() decimal.Decimal {
	return Remaining(v.State.Scopes, v.State.Transactions, v.Now, v.Loc)
}

func (v View) ScopeRemaining(scope models.Scope) decimal.Decimal {
	return ScopeRemaining(scope, v.State.Transactions, v.Now, v.Loc)
}

func (v View) Sparkline(days int) []decimal.Decimal {
	return Sparkline(v.State.Transactions, v.Now, v.Loc, days)
}

func (v View) ScopeName(id string) string {
	return ScopeName(v.State.Scopes, id)
}
