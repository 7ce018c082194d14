package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"inventory/internal/config"
	"inventory/internal/database"
	"inventory/internal/logger"
	"inventory/internal/server"
	"inventory/internal/services"
	"inventory/pkg/rabbitmq"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.AppEnv)
	log.Info("starting inventory api",
		"env", cfg.AppEnv,
		"driver", cfg.StoreDriver,
		"federated_provider", cfg.FederatedProvider,
	)

	store := database.Open(ctx, cfg, log)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Error("failed to close store", "error", err)
		}
	}()

	deps := server.Dependencies{
		Config:    cfg,
		Log:       log,
		Store:     store,
		AccessLog: os.Stdout,
	}
	if mq := connectEvents(ctx, cfg, log); mq != nil {
		defer mq.Close()
		deps.Publisher = mq
	}

	srv := server.New(deps)

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.AppPort)
		errCh <- srv.App.Listen(cfg.AppPort)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	if err := srv.App.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Error("error during shutdown", "error", err)
	}
	log.Info("server stopped")
	return nil
}

// connectEvents returns nil when events are disabled or the broker is down;
// the API runs without events in both cases.
func connectEvents(ctx context.Context, cfg config.Config, log *slog.Logger) *rabbitmq.Client {
	if cfg.RabbitMQURL == "" {
		log.Info("rabbitmq disabled, product events will not be published")
		return nil
	}
	mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue}, log)
	if err != nil {
		log.Warn("rabbitmq unavailable, product events will not be published", "error", err)
		return nil
	}
	if err := mq.Consume(ctx, services.StockAlertHandler(log)); err != nil {
		log.Warn("failed to start stock alert consumer", "error", err)
	}
	return mq
}
