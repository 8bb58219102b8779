package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"investflow/internal/amqp"
	"investflow/internal/approval"
	"investflow/internal/config"
	apphttp "investflow/internal/http"
	"investflow/internal/log"
	"investflow/internal/services"
	"investflow/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// AMQP is optional: without a broker the API still works, the sheet
	// mirror just goes stale until the next worker resync.
	var publisher services.EventPublisher
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("AMQP unavailable, expense events disabled", "error", err)
	} else {
		defer amqpClient.Close()
		publisher = amqpClient
	}

	expenseSvc := services.NewExpenseService(repo, publisher, cfg.TrendDays)
	approvalSvc := services.NewApprovalService(approval.NewTracker(), repo, publisher)
	participantSvc := services.NewParticipantService(repo)

	if err := approvalSvc.Rehydrate(context.Background()); err != nil {
		logger.Error("Failed to rehydrate proposals", "error", err)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, expenseSvc, approvalSvc, participantSvc)

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

	logger.Info("Starting investflow server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
