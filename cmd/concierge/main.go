// Lambda entry point for the AWS AI Concierge tool dispatcher.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	awsadapter "github.com/dzecena/aws-ai-concierge/internal/adapter/driven/aws"
	"github.com/dzecena/aws-ai-concierge/internal/adapter/driven/config"
	"github.com/dzecena/aws-ai-concierge/internal/adapter/driving/trigger"
	"github.com/dzecena/aws-ai-concierge/internal/application/audit"
	"github.com/dzecena/aws-ai-concierge/internal/application/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	recorder := audit.NewRecorder(logger)
	clients := awsadapter.NewClientFactory(cfg.DefaultRegion, cfg.RetryMaxAttempts)

	costRepo := awsadapter.NewCostRepository(clients, recorder)
	invRepo := awsadapter.NewInventoryRepository(clients, recorder)
	secRepo := awsadapter.NewSecurityRepository(clients, recorder)

	router := trigger.NewRouter(
		usecase.NewCostUseCase(costRepo, invRepo, recorder, logger),
		usecase.NewInventoryUseCase(invRepo, recorder, logger),
		usecase.NewSecurityUseCase(secRepo, recorder, logger),
		recorder,
	)
	orchestrator := trigger.NewOrchestrator(router, trigger.NewEnvelopeBuilder(), recorder, logger)

	lambda.Start(func(ctx context.Context, raw json.RawMessage) (any, error) {
		return orchestrator.Handle(ctx, requestID(ctx), raw), nil
	})
}

// requestID takes the Lambda request ID when present so responses correlate
// with platform logs, and mints one otherwise.
func requestID(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	return uuid.NewString()
}
