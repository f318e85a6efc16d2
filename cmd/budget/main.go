// Command budget is a terminal client for the budget API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"budget/internal/apiclient"
	"budget/internal/budget"
	"budget/internal/config"
	"budget/internal/logging"
	"budget/internal/models"
	"budget/internal/session"

	"github.com/spf13/cobra"
)

type app struct {
	cfg    config.Client
	logger *logging.Logger
	api    *apiclient.Client
	store  *budget.Store
	out    io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "budget",
		Short:         "Track daily spending against your budget",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.init(cmd.OutOrStdout())
		},
	}
	root.AddCommand(
		a.registerCommand(),
		a.loginCommand(),
		a.logoutCommand(),
		a.healthCommand(),
		a.summaryCommand(),
		a.watchCommand(),
		a.transactionCommand(),
		a.scopeCommand(),
		a.billCommand(),
		a.settingsCommand(),
		a.exportCommand(),
	)
	return root
}

func (a *app) init(out io.Writer) {
	a.cfg = config.LoadClient()
	a.out = out
	a.logger = logging.New(logging.Config{Level: a.cfg.LogLevel, Output: os.Stderr, Component: logging.ComponentClient})
	a.api = apiclient.New(a.cfg.APIURL, apiclient.WithLogger(a.logger), apiclient.WithHTTPClient(&http.Client{Timeout: a.cfg.Timeout}))
	a.store = budget.New(a.api, session.NewFileStore(a.cfg.SessionFile), budget.WithLogger(a.logger))
}

// load fetches everything for commands that read or resolve names.
func (a *app) load(ctx context.Context) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	return a.store.LoadData(ctx)
}

func (a *app) requireAuth() error {
	if !a.store.Authenticated() {
		return errors.New("not signed in, run budget login first")
	}
	return nil
}

var errSharedRow = errors.New("shared demo data is read-only; create your own to change it")

// requireOwned stops edits to shared demo rows before the server answers
// them with a bare 404.
func requireOwned(name string, shared bool) error {
	if shared {
		return fmt.Errorf("%s: %w", name, errSharedRow)
	}
	return nil
}

func findScope(scopes []models.Scope, ref string) (models.Scope, error) {
	for _, s := range scopes {
		if s.ID == ref || strings.EqualFold(s.Name, ref) {
			return s, nil
		}
	}
	return models.Scope{}, fmt.Errorf("no scope named %q", ref)
}

func findBill(bills []models.Bill, ref string) (models.Bill, error) {
	for _, b := range bills {
		if b.ID == ref || strings.EqualFold(b.Name, ref) {
			return b, nil
		}
	}
	return models.Bill{}, fmt.Errorf("no bill named %q", ref)
}
