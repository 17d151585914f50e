package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	receptionistagent "receptionist-agent"
	"receptionist-agent/handler"
	"receptionist-agent/internal/config"
	"receptionist-agent/internal/conversation"
	"receptionist-agent/internal/crm"
	"receptionist-agent/internal/events"
	"receptionist-agent/internal/integrations/paramstore"
	"receptionist-agent/internal/notify"
	"receptionist-agent/internal/store"
	"receptionist-agent/internal/usecase"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	kv, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}

	token, err := resolveToken(ctx, cfg)
	if err != nil {
		return err
	}

	publisher := buildPublisher(cfg, logger)
	defer func() { _ = publisher.Close() }()

	clock := &store.Clock{}
	convLog, err := conversation.NewLog(kv, clock)
	if err != nil {
		return err
	}
	records, err := crm.NewStore(kv, clock)
	if err != nil {
		return err
	}
	composer, err := notify.NewComposer(kv, clock)
	if err != nil {
		return err
	}

	svc, err := usecase.NewService(convLog, records, composer, publisher, logger)
	if err != nil {
		return err
	}
	h, err := handler.NewHandler(svc, token, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           h.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "backend", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func buildStore(ctx context.Context, cfg *config.Config) (store.KV, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return store.NewMemory(), nil
	case config.BackendDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		return store.NewDynamo(awsdynamodb.NewFromConfig(awsCfg), cfg.StateTable)
	case config.BackendPostgres:
		migrations, err := fs.Sub(receptionistagent.MigrationsFS, "migrations")
		if err != nil {
			return nil, fmt.Errorf("open migrations: %w", err)
		}
		if err := store.RunMigrations(cfg.DatabaseURL, migrations); err != nil {
			return nil, err
		}
		pool, err := store.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return store.NewPostgres(pool)
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

func resolveToken(ctx context.Context, cfg *config.Config) (string, error) {
	if cfg.TokenParameter == "" {
		return cfg.APIToken, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return "", fmt.Errorf("load AWS config: %w", err)
	}
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		return "", err
	}
	return paramstore.Credential(ctx, ssmClient, cfg.TokenParameter)
}

func buildPublisher(cfg *config.Config, logger *slog.Logger) events.Publisher {
	if cfg.AMQPURL == "" {
		return events.NewFallback(logger)
	}
	pub, err := events.New(cfg.AMQPURL, cfg.EventsExchange, logger)
	if err != nil {
		logger.Warn("event broker unavailable, using fallback publisher", "error", err)
		return events.NewFallback(logger)
	}
	return pub
}
