package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"budget/internal/apiclient"
	"budget/internal/export"
	"budget/internal/models"
	"budget/internal/money"
	"budget/internal/websocket"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func credentialFlags(cmd *cobra.Command, email, password *string) {
	cmd.Flags().StringVar(email, "email", "", "account email")
	cmd.Flags().StringVar(password, "password", "", "account password (defaults to $BUDGET_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
}

func passwordOrEnv(password string) string {
	if password != "" {
		return password
	}
	return os.Getenv("BUDGET_PASSWORD")
}

func (a *app) registerCommand() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.store.Register(cmd.Context(), email, passwordOrEnv(password)); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Registered and signed in as %s\n", email)
			return nil
		},
	}
	credentialFlags(cmd, &email, &password)
	return cmd
}

func (a *app) loginCommand() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.store.Login(cmd.Context(), email, passwordOrEnv(password)); err != nil {
				if errors.Is(err, apiclient.ErrUnauthorized) {
					return errors.New("invalid email or password")
				}
				return err
			}
			fmt.Fprintf(a.out, "Signed in as %s\n", email)
			return nil
		},
	}
	credentialFlags(cmd, &email, &password)
	return cmd
}

func (a *app) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if err := a.store.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Signed out")
			return nil
		},
	}
}

func (a *app) healthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the API is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := a.api.Health(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s (seeded=%t) at %s\n", h.Status, h.Seeded, h.Time.Format(time.RFC3339))
			return nil
		},
	}
}

func (a *app) summaryCommand() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show balance, budget and recent spending",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			renderSummary(a.out, a.store.View(), days)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "sparkline window (7 or 30)")
	return cmd
}

func (a *app) watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow changes made on other devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.load(ctx); err != nil {
				return err
			}
			renderSummary(a.out, a.store.View(), 7)
			err := a.api.Watch(ctx, func(e websocket.ChangeEvent) {
				if err := a.store.LoadData(ctx); err != nil {
					return
				}
				v := a.store.View()
				fmt.Fprintf(a.out, "%s %s %s, remaining %s\n", e.Entity, e.ID, e.Action, money.Format(v.Remaining()))
			})
			if errors.Is(err, ctx.Err()) {
				return nil
			}
			return err
		},
	}
}

func (a *app) transactionCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "tx", Short: "List, add and delete transactions"}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			renderTransactions(a.out, a.store.View())
			return nil
		},
	})

	var scopeRef, amount, description, date string
	add := &cobra.Command{
		Use:   "add",
		Short: "Record an expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.load(ctx); err != nil {
				return err
			}
			value, err := money.ParsePositive(amount)
			if err != nil {
				return err
			}
			scope, err := findScope(a.store.Snapshot().Scopes, scopeRef)
			if err != nil {
				return err
			}
			input := apiclient.TransactionInput{ScopeID: scope.ID, Amount: value, Description: description}
			if date != "" {
				day, err := time.ParseInLocation("2006-01-02", date, a.store.Location())
				if err != nil {
					return fmt.Errorf("date must be YYYY-MM-DD: %w", err)
				}
				input.Date = &day
			}
			if _, err := a.store.AddTransaction(ctx, input); err != nil {
				return err
			}
			left := a.store.View().ScopeRemaining(scope)
			fmt.Fprintf(a.out, "Added %s to %s, %s left this month\n", money.Format(value), scope.Name, money.Format(left))
			return nil
		},
	}
	add.Flags().StringVar(&scopeRef, "scope", "", "scope name or id")
	add.Flags().StringVar(&amount, "amount", "", "amount spent")
	add.Flags().StringVar(&description, "desc", "", "optional description")
	add.Flags().StringVar(&date, "date", "", "date as YYYY-MM-DD (defaults to now)")
	_ = add.MarkFlagRequired("scope")
	_ = add.MarkFlagRequired("amount")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			if err := a.store.DeleteTransaction(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Deleted")
			return nil
		},
	})
	return cmd
}

func (a *app) scopeCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "scope", Short: "Manage spending scopes"}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List scopes with this month's spend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			renderScopes(a.out, a.store.View())
			return nil
		},
	})

	var name, daily, monthly, icon, color string
	var clearMonthly bool
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a scope",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			dailyLimit, err := money.Parse(daily)
			if err != nil {
				return fmt.Errorf("daily limit: %w", err)
			}
			input := apiclient.ScopeInput{
				Name:       name,
				DailyLimit: dailyLimit,
				Icon:       models.ScopeIcon(icon),
				Color:      models.ScopeColor(color),
			}
			if monthly != "" {
				limit, err := money.Parse(monthly)
				if err != nil {
					return fmt.Errorf("monthly limit: %w", err)
				}
				input.MonthlyLimit = &limit
			}
			scope, err := a.store.AddScope(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created %s (%s)\n", scope.Name, scope.ID)
			return nil
		},
	}
	add.Flags().StringVar(&name, "name", "", "scope name")
	add.Flags().StringVar(&daily, "daily", "", "daily limit")
	add.Flags().StringVar(&monthly, "monthly", "", "monthly limit (defaults to 30 x daily)")
	add.Flags().StringVar(&icon, "icon", "", "icon name")
	add.Flags().StringVar(&color, "color", "", "color name")
	_ = add.MarkFlagRequired("name")
	_ = add.MarkFlagRequired("daily")
	cmd.AddCommand(add)

	set := &cobra.Command{
		Use:   "set <scope>",
		Short: "Change a scope's name or limits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.load(ctx); err != nil {
				return err
			}
			scope, err := findScope(a.store.Snapshot().Scopes, args[0])
			if err != nil {
				return err
			}
			if err := requireOwned(scope.Name, scope.Shared()); err != nil {
				return err
			}
			var patch models.ScopePatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				patch.Name = &name
			}
			if flags.Changed("daily") {
				v, err := money.Parse(daily)
				if err != nil {
					return fmt.Errorf("daily limit: %w", err)
				}
				patch.DailyLimit = &v
			}
			if flags.Changed("monthly") {
				v, err := money.Parse(monthly)
				if err != nil {
					return fmt.Errorf("monthly limit: %w", err)
				}
				patch.MonthlyLimit = &v
			} else if clearMonthly {
				patch.ClearMonthlyLimit = true
			}
			updated, err := a.store.UpdateScope(ctx, scope.ID, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Updated %s, monthly limit %s\n", updated.Name, money.Format(updated.EffectiveMonthlyLimit()))
			return nil
		},
	}
	set.Flags().StringVar(&name, "name", "", "new name")
	set.Flags().StringVar(&daily, "daily", "", "new daily limit")
	set.Flags().StringVar(&monthly, "monthly", "", "new monthly limit")
	set.Flags().BoolVar(&clearMonthly, "clear-monthly", false, "drop the monthly limit and use 30 x daily")
	set.MarkFlagsMutuallyExclusive("monthly", "clear-monthly")
	cmd.AddCommand(set)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <scope>",
		Short: "Delete a scope; its transactions become uncategorized",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.load(ctx); err != nil {
				return err
			}
			scope, err := findScope(a.store.Snapshot().Scopes, args[0])
			if err != nil {
				return err
			}
			if err := requireOwned(scope.Name, scope.Shared()); err != nil {
				return err
			}
			if err := a.store.DeleteScope(ctx, scope.ID); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted %s\n", scope.Name)
			return nil
		},
	})
	return cmd
}

func (a *app) billCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "bill", Short: "Manage monthly bills"}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List bills",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			renderBills(a.out, a.store.View())
			return nil
		},
	})

	var name, amount string
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a bill",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			value, err := money.ParsePositive(amount)
			if err != nil {
				return err
			}
			bill, err := a.store.AddBill(cmd.Context(), apiclient.BillInput{Name: name, Amount: value})
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created %s (%s)\n", bill.Name, bill.ID)
			return nil
		},
	}
	add.Flags().StringVar(&name, "name", "", "bill name")
	add.Flags().StringVar(&amount, "amount", "", "monthly amount")
	_ = add.MarkFlagRequired("name")
	_ = add.MarkFlagRequired("amount")
	cmd.AddCommand(add)

	cmd.AddCommand(a.billPaidCommand("pay", "Mark a bill paid and deduct it from the balance", true))
	cmd.AddCommand(a.billPaidCommand("unpay", "Mark a bill unpaid and refund the balance", false))

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <bill>",
		Short: "Delete a bill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.load(ctx); err != nil {
				return err
			}
			bill, err := findBill(a.store.Snapshot().Bills, args[0])
			if err != nil {
				return err
			}
			if err := requireOwned(bill.Name, bill.Shared()); err != nil {
				return err
			}
			if err := a.store.DeleteBill(ctx, bill.ID); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted %s\n", bill.Name)
			return nil
		},
	})
	return cmd
}

func (a *app) billPaidCommand(use, short string, paid bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <bill>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.load(ctx); err != nil {
				return err
			}
			bill, err := findBill(a.store.Snapshot().Bills, args[0])
			if err != nil {
				return err
			}
			if err := requireOwned(bill.Name, bill.Shared()); err != nil {
				return err
			}
			if _, err := a.store.UpdateBill(ctx, bill.ID, models.BillPatch{Paid: &paid}); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s %s, balance %s\n", bill.Name, paidLabel(paid), money.Format(a.store.Snapshot().Settings.CurrentBalance))
			return nil
		},
	}
}

func (a *app) settingsCommand() *cobra.Command {
	var balance, salary, currency, theme string
	var onboarded bool
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change balance, salary, currency and theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.load(ctx); err != nil {
				return err
			}
			var patch models.SettingsPatch
			flags := cmd.Flags()
			changed := false
			parseInto := func(flag, raw string, dst **decimal.Decimal) error {
				if !flags.Changed(flag) {
					return nil
				}
				v, err := money.Parse(raw)
				if err != nil {
					return fmt.Errorf("%s: %w", flag, err)
				}
				*dst = &v
				changed = true
				return nil
			}
			if err := parseInto("balance", balance, &patch.CurrentBalance); err != nil {
				return err
			}
			if err := parseInto("salary", salary, &patch.CurrentSalary); err != nil {
				return err
			}
			if flags.Changed("currency") {
				c := strings.ToUpper(currency)
				patch.CurrentCurrency = &c
				changed = true
			}
			if flags.Changed("theme") {
				t := models.Theme(theme)
				patch.Theme = &t
				changed = true
			}
			if flags.Changed("onboarded") {
				patch.Onboarded = &onboarded
				changed = true
			}
			if changed {
				if _, err := a.store.UpdateSettings(ctx, patch); err != nil {
					return err
				}
			}
			renderSettings(a.out, a.store.Snapshot().Settings)
			return nil
		},
	}
	cmd.Flags().StringVar(&balance, "balance", "", "current balance")
	cmd.Flags().StringVar(&salary, "salary", "", "monthly salary")
	cmd.Flags().StringVar(&currency, "currency", "", "ISO currency code")
	cmd.Flags().StringVar(&theme, "theme", "", "light, dark or system")
	cmd.Flags().BoolVar(&onboarded, "onboarded", false, "mark onboarding complete")
	return cmd
}

func (a *app) exportCommand() *cobra.Command {
	var format, out string
	var local bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download transactions as CSV or XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.requireAuth(); err != nil {
				return err
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if out == "" {
				out = f.Filename(time.Now())
			}
			file, err := os.Create(out)
			if err != nil {
				return err
			}
			defer file.Close()

			if local {
				if err := a.store.LoadData(ctx); err != nil {
					return err
				}
				st := a.store.Snapshot()
				rows := export.Rows(st.Transactions, export.ScopeNames(st.Scopes))
				err = export.Write(file, f, rows, st.Settings.CurrentCurrency, a.store.Location())
			} else {
				err = a.api.Export(ctx, string(f), file)
			}
			if err != nil {
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "csv or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (defaults to transactions_YYYYMMDD.<format>)")
	cmd.Flags().BoolVar(&local, "local", false, "render from synced data instead of asking the server")
	return cmd
}

func paidLabel(paid bool) string {
	if paid {
		return "paid"
	}
	return "unpaid"
}
