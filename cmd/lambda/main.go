package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"receptionist-agent/handler"
	"receptionist-agent/internal/conversation"
	"receptionist-agent/internal/crm"
	"receptionist-agent/internal/events"
	"receptionist-agent/internal/integrations/paramstore"
	"receptionist-agent/internal/notify"
	"receptionist-agent/internal/store"
	"receptionist-agent/internal/usecase"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// ---- Configuration (read only here) ----
	stateTable := mustEnv("STATE_TABLE")
	tokenParameter := mustEnv("TOKEN_PARAMETER")

	// ---- AWS SDK config ----
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(cfg))
	if err != nil {
		slog.Error("failed to create SSM client", "err", err)
		os.Exit(1)
	}
	token, err := paramstore.Credential(ctx, ssmClient, tokenParameter)
	if err != nil {
		slog.Error("failed to resolve API token", "err", err)
		os.Exit(1)
	}
	kv, err := store.NewDynamo(awsdynamodb.NewFromConfig(cfg), stateTable)
	if err != nil {
		slog.Error("failed to create state store", "err", err)
		os.Exit(1)
	}

	// ---- Stores ----
	clock := &store.Clock{}
	convLog, err := conversation.NewLog(kv, clock)
	if err != nil {
		slog.Error("failed to create conversation log", "err", err)
		os.Exit(1)
	}
	records, err := crm.NewStore(kv, clock)
	if err != nil {
		slog.Error("failed to create record store", "err", err)
		os.Exit(1)
	}
	composer, err := notify.NewComposer(kv, clock)
	if err != nil {
		slog.Error("failed to create notification composer", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	svc, err := usecase.NewService(convLog, records, composer, events.NewFallback(logger), logger)
	if err != nil {
		slog.Error("failed to create service", "err", err)
		os.Exit(1)
	}
	h, err := handler.NewHandler(svc, token, logger)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}
	adapter, err := handler.NewLambdaAdapter(h.Router())
	if err != nil {
		slog.Error("failed to create lambda adapter", "err", err)
		os.Exit(1)
	}

	lambda.Start(adapter.Handle)
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}
