package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gestor/internal/amqp"
	"gestor/internal/config"
	apphttp "gestor/internal/http"
	applog "gestor/internal/log"
	"gestor/internal/services"
	"gestor/internal/storage"
)

func main() {
	// Load .env for local development; production sets real env vars.
	_ = godotenv.Load()

	logger := applog.New(applog.ComponentApp, applog.Config{})
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository",
			"error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// AMQP is optional: without a broker the app still works, the sheet
	// mirror just waits for the worker's pending scan.
	var publisher *amqp.Client
	if cfg.AMQPURL != "" {
		publisher, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, sheet sync deferred to worker scan", "error", err)
			publisher = nil
		} else {
			defer publisher.Close()
		}
	}

	hub := services.NewSnapshotHub()
	deps := apphttp.Deps{
		Ledger:         services.NewLedgerService(repo, publisherOrNil(publisher), hub),
		Orders:         services.NewOrderService(repo, hub),
		Backup:         services.NewBackupService(repo, hub),
		Prices:         repo,
		Hub:            hub,
		InitialBalance: cfg.InitialBankBalance,
	}

	srv := apphttp.NewServer(":"+cfg.Port, deps)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting gestor server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

// publisherOrNil keeps the service's publisher interface nil when no
// client was built; a typed nil would dodge the service's nil check.
func publisherOrNil(c *amqp.Client) services.SyncPublisher {
	if c == nil {
		return nil
	}
	return c
}
