// concierge-cli runs a recorded trigger event through the same orchestration
// pipeline as the Lambda entry point and prints the envelope, for local
// development against real AWS credentials.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	awsadapter "github.com/dzecena/aws-ai-concierge/internal/adapter/driven/aws"
	"github.com/dzecena/aws-ai-concierge/internal/adapter/driven/config"
	"github.com/dzecena/aws-ai-concierge/internal/adapter/driving/trigger"
	"github.com/dzecena/aws-ai-concierge/internal/application/audit"
	"github.com/dzecena/aws-ai-concierge/internal/application/usecase"
	"github.com/dzecena/aws-ai-concierge/pkg/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:     "concierge-cli",
		Short:   "Run AWS AI Concierge tool events locally",
		Version: version.Full(),
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")

	invoke := &cobra.Command{
		Use:   "invoke [event-file]",
		Short: "Process one trigger event from a file (or stdin with -)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readEvent(args[0])
			if err != nil {
				return err
			}
			return runEvent(raw, logLevel)
		},
	}

	ops := &cobra.Command{
		Use:   "operations",
		Short: "List the canonical operations the dispatcher routes",
		Run: func(cmd *cobra.Command, args []string) {
			for _, op := range trigger.NewRouter(nil, nil, nil, nil).Operations() {
				fmt.Println(op)
			}
		},
	}

	root.AddCommand(invoke, ops)
	return root
}

func readEvent(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading event file: %w", err)
	}
	return raw, nil
}

func runEvent(raw []byte, logLevel string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

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

	envelope := orchestrator.Handle(context.Background(), uuid.NewString(), raw)

	pretty, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return err
	}

	color.Cyan("Response envelope:")
	fmt.Println(string(pretty))
	return nil
}
