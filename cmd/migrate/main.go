package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"budget/internal/config"
	"budget/internal/db"
	"budget/internal/logging"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

func main() {
	cfg := config.Load()
	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	var database *sqlx.DB
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the budget database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()
			conn, err := db.Connect(ctx, cfg.DatabaseURL, db.DefaultPool)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			database = conn
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if database != nil {
				database.Close()
			}
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if err := db.Migrate(database); err != nil {
				return err
			}
			logger.Info("migrations applied")
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Revert migrations, one by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("steps must be a positive integer, got %q", args[0])
				}
				steps = n
			}
			if err := db.Rollback(database, steps); err != nil {
				return err
			}
			logger.Info("migrations reverted", "steps", steps)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			version, dirty, err := db.Version(database)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty=%t)\n", version, dirty)
			return nil
		},
	})

	if err := root.ExecuteContext(context.Background()); err != nil {
		logger.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}
