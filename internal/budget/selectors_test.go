package budget

import (
	"testing"
	"time"

	"budget/internal/models"

	"github.com/shopspring/decimal"
)

func tx(scope, amount string, at time.Time) models.Transaction {
	return models.Transaction{ID: scope + at.String(), ScopeID: scope, Amount: d(amount), Date: at}
}

func TestMonthlyRemaining(t *testing.T) {
	food := models.Scope{ID: "food", Name: "Food", DailyLimit: d("30"), MonthlyLimit: decimal.NewNullDecimal(d("900"))}
	txs := []models.Transaction{
		tx("food", "10", time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC)),
		tx("food", "10", time.Date(2024, 1, 3, 18, 0, 0, 0, time.UTC)),
		tx("food", "15", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		tx("food", "40", time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC)),
		tx("fun", "7", time.Date(2024, 1, 19, 9, 0, 0, 0, time.UTC)),
	}

	spent := SpentThisMonth(txs, fixedNow, time.UTC, "food")
	if !spent.Equal(d("35")) {
		t.Errorf("spent = %s, want 35", spent)
	}
	if got := ScopeRemaining(food, txs, fixedNow, time.UTC); !got.Equal(d("865")) {
		t.Errorf("remaining = %s, want 865", got)
	}
	if got := Remaining([]models.Scope{food}, txs, fixedNow, time.UTC); !got.Equal(d("858")) {
		t.Errorf("total remaining = %s, want 858", got)
	}
}

func TestMonthlyBudgetUsesExplicitLimit(t *testing.T) {
	scopes := []models.Scope{
		{ID: "a", DailyLimit: d("10")},
		{ID: "b", DailyLimit: d("10"), MonthlyLimit: decimal.NewNullDecimal(d("50"))},
	}
	if got := MonthlyBudget(scopes); !got.Equal(d("350")) {
		t.Errorf("MonthlyBudget = %s, want 350", got)
	}
	if got := MonthlyBudget(nil); !got.IsZero() {
		t.Errorf("empty budget = %s", got)
	}
}

func TestSpentTodayFiltersScope(t *testing.T) {
	txs := []models.Transaction{
		tx("food", "5", fixedNow.Add(-time.Hour)),
		tx("fun", "7", fixedNow.Add(-2*time.Hour)),
		tx("food", "100", fixedNow.AddDate(0, 0, -1)),
	}
	if got := SpentToday(txs, fixedNow, time.UTC, ""); !got.Equal(d("12")) {
		t.Errorf("all scopes = %s, want 12", got)
	}
	if got := SpentToday(txs, fixedNow, time.UTC, "food"); !got.Equal(d("5")) {
		t.Errorf("food = %s, want 5", got)
	}
	if got := DailyTotal(txs, fixedNow.AddDate(0, 0, -5), time.UTC); !got.IsZero() {
		t.Errorf("empty day = %s, want 0", got)
	}
}

func TestDayBoundariesFollowLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	// 23:30 UTC on the 19th is already the 20th at UTC+2.
	late := time.Date(2024, 1, 19, 23, 30, 0, 0, time.UTC)
	txs := []models.Transaction{tx("food", "8", late)}

	if got := SpentToday(txs, fixedNow, loc, ""); !got.Equal(d("8")) {
		t.Errorf("UTC+2 today = %s, want 8", got)
	}
	if got := SpentToday(txs, fixedNow, time.UTC, ""); !got.IsZero() {
		t.Errorf("UTC today = %s, want 0", got)
	}
}

func TestSparkline(t *testing.T) {
	txs := []models.Transaction{
		tx("food", "4", fixedNow),
		tx("food", "6", fixedNow.Add(-time.Hour)),
		tx("food", "3", fixedNow.AddDate(0, 0, -6)),
		tx("food", "99", fixedNow.AddDate(0, 0, -7)),
	}

	week := Sparkline(txs, fixedNow, time.UTC, 7)
	if len(week) != 7 {
		t.Fatalf("len = %d, want 7", len(week))
	}
	if !week[0].Equal(d("3")) {
		t.Errorf("oldest = %s, want 3", week[0])
	}
	if !week[6].Equal(d("10")) {
		t.Errorf("today = %s, want 10", week[6])
	}
	for i := 1; i < 6; i++ {
		if !week[i].IsZero() {
			t.Errorf("day %d = %s, want 0", i, week[i])
		}
	}

	if got := len(Sparkline(txs, fixedNow, time.UTC, 30)); got != 30 {
		t.Errorf("30-day len = %d", got)
	}
	if got := len(Sparkline(txs, fixedNow, time.UTC, 0)); got != 0 {
		t.Errorf("zero-day len = %d", got)
	}
}

func TestSparklineAcrossDSTChange(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	now := time.Date(2024, 3, 12, 12, 0, 0, 0, loc)
	txs := []models.Transaction{
		tx("food", "1", time.Date(2024, 3, 10, 1, 0, 0, 0, loc)),
		tx("food", "2", time.Date(2024, 3, 10, 23, 0, 0, 0, loc)),
	}
	series := Sparkline(txs, now, loc, 3)
	if !series[0].Equal(d("3")) {
		t.Errorf("DST day = %s, want 3", series[0])
	}
}

func TestScopeNameFallback(t *testing.T) {
	scopes := []models.Scope{{ID: "food", Name: "Food"}}
	if got := ScopeName(scopes, "food"); got != "Food" {
		t.Errorf("ScopeName = %q", got)
	}
	if got := ScopeName(scopes, "gone"); got != models.UncategorizedName {
		t.Errorf("dangling ScopeName = %q", got)
	}
}
