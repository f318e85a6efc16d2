package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"budget/internal/config"
	"budget/internal/db"
	"budget/internal/handlers"
	"budget/internal/logging"
	"budget/internal/notify"
	"budget/internal/services"
	"budget/internal/store"
	"budget/internal/websocket"
)

func main() {
	cfg := config.Load()
	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logging.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	database, err := db.Connect(ctx, cfg.DatabaseURL, db.DefaultPool)
	cancel()
	if err != nil {
		logger.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	publisher := newPublisher(cfg, logger)
	defer publisher.Close()

	scopes := store.NewScopeStore(database)
	transactions := store.NewTransactionStore(database)
	bills := store.NewBillStore(database)
	settings := store.NewSettingsStore(database)
	stores := handlers.Stores{
		Users:        store.NewUserStore(database),
		Scopes:       scopes,
		Transactions: transactions,
		Bills:        bills,
		Settings:     settings,
	}
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub(websocket.WithLogger(logger))

	seeder := services.NewSeedService(txRunner, store.NewSeedStore(database), cfg.SeedDemoData, logger)
	svc := handlers.Services{
		Transactions: services.NewTransactionService(txRunner, transactions, scopes, publisher, hub, logger),
		Bills:        services.NewBillService(txRunner, bills, settings, hub, logger),
		Seeder:       seeder,
	}
	if _, err := seeder.EnsureDemoData(context.Background()); err != nil {
		logger.Warn("demo data not seeded at startup", "error", err)
	}

	handler := handlers.New(txRunner, cfg, stores, svc, hub, logger)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("budget API listening", "addr", server.Addr, "env", cfg.AppEnv)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	logger.Info("shutting down")
	hub.Close()
	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

// newPublisher falls back to a no-op publisher when the broker is
// unconfigured or unreachable; alerts are best effort.
func newPublisher(cfg config.Config, logger *logging.Logger) notify.Publisher {
	if cfg.AMQPURL == "" {
		return notify.NoopPublisher{}
	}
	publisher, err := notify.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Warn("budget alerts disabled", "error", err)
		return notify.NoopPublisher{}
	}
	return publisher
}
