package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"concierge-agent/handler"
	"concierge-agent/internal/integrations/catalog"
	"concierge-agent/internal/integrations/openai"
	"concierge-agent/internal/integrations/paramstore"
	"concierge-agent/internal/usecase"
)

func main() {
	ctx := context.Background()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// ---- Configuration (read only here) ----
	paramPrefix := mustEnv("PARAM_PREFIX")
	snapshotLimit := envInt("SNAPSHOT_LIMIT", 15)
	maxMessageLen := envInt("MAX_MESSAGE_LENGTH", 500)
	attemptTimeoutMs := envInt("ATTEMPT_TIMEOUT_MS", 20000)

	// ---- AWS SDK config ----
	cfg, err := config.LoadDefaultConfig(ctx)
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
	openaiClient := openai.NewClient()
	catalogClient := catalog.NewClient()

	// ---- Handler ----
	conciergeService, err := usecase.NewConciergeService(ssmClient, openaiClient, catalogClient, logger, paramPrefix,
		usecase.WithSnapshotLimit(snapshotLimit),
		usecase.WithMaxMessageLength(maxMessageLen),
		usecase.WithAttemptTimeout(time.Duration(attemptTimeoutMs)*time.Millisecond),
	)
	if err != nil {
		slog.Error("failed to create concierge service", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(conciergeService, logger)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
