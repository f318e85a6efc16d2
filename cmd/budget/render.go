package main

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"budget/internal/budget"
	"budget/internal/models"
	"budget/internal/money"

	"github.com/shopspring/decimal"
)

var bars = []rune("▁▂▃▄▅▆▇█")

// sparkline scales values to block characters relative to the largest one.
func sparkline(values []decimal.Decimal) string {
	peak := decimal.Zero
	for _, v := range values {
		if v.GreaterThan(peak) {
			peak = v
		}
	}
	var b strings.Builder
	top := decimal.NewFromInt(int64(len(bars) - 1))
	for _, v := range values {
		if peak.IsZero() {
			b.WriteRune(bars[0])
			continue
		}
		i := v.Div(peak).Mul(top).Round(0).IntPart()
		b.WriteRune(bars[i])
	}
	return b.String()
}

func renderSummary(w io.Writer, v budget.View, days int) {
	st := v.State
	currency := st.Settings.CurrentCurrency
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Balance\t%s %s\n", money.Format(st.Settings.CurrentBalance), currency)
	fmt.Fprintf(tw, "Monthly budget\t%s\n", money.Format(v.MonthlyBudget()))
	fmt.Fprintf(tw, "Spent this month\t%s\n", money.Format(v.SpentThisMonth("")))
	fmt.Fprintf(tw, "Remaining\t%s\n", money.Format(v.Remaining()))
	fmt.Fprintf(tw, "Spent today\t%s\n", money.Format(v.SpentToday("")))
	fmt.Fprintf(tw, "Last %d days\t%s\n", days, sparkline(v.Sparkline(days)))
	_ = tw.Flush()
	if len(st.Scopes) > 0 {
		fmt.Fprintln(w)
		renderScopes(w, v)
	}
}

func renderScopes(w io.Writer, v budget.View) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCOPE\tTODAY\tDAILY\tMONTH\tLIMIT\tLEFT\tID")
	for _, s := range v.State.Scopes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.Name,
			money.Format(v.SpentToday(s.ID)),
			money.Format(s.DailyLimit),
			money.Format(v.SpentThisMonth(s.ID)),
			money.Format(s.EffectiveMonthlyLimit()),
			money.Format(v.ScopeRemaining(s)),
			s.ID,
		)
	}
	_ = tw.Flush()
}

func renderTransactions(w io.Writer, v budget.View) {
	txs := slices.Clone(v.State.Transactions)
	slices.SortFunc(txs, func(a, b models.Transaction) int { return b.Date.Compare(a.Date) })
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tSCOPE\tAMOUNT\tDESCRIPTION\tID")
	for _, t := range txs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			t.Date.In(v.Loc).Format("2006-01-02 15:04"),
			v.ScopeName(t.ScopeID),
			money.Format(t.Amount),
			t.Description,
			t.ID,
		)
	}
	_ = tw.Flush()
}

func renderBills(w io.Writer, v budget.View) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BILL\tAMOUNT\tSTATUS\tID")
	for _, b := range v.State.Bills {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", b.Name, money.Format(b.Amount), paidLabel(b.Paid), b.ID)
	}
	_ = tw.Flush()
}

func renderSettings(w io.Writer, s models.UserSettings) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Balance\t%s\n", money.Format(s.CurrentBalance))
	fmt.Fprintf(tw, "Salary\t%s\n", money.Format(s.CurrentSalary))
	fmt.Fprintf(tw, "Currency\t%s\n", s.CurrentCurrency)
	fmt.Fprintf(tw, "Theme\t%s\n", s.Theme)
	fmt.Fprintf(tw, "Onboarded\t%t\n", s.Onboarded)
	_ = tw.Flush()
}
