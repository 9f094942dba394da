package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/imrishuroy/go-tailor-orderflow/internal/aws"
	"github.com/imrishuroy/go-tailor-orderflow/internal/config"
)

func main() {
	config.LoadDotEnv()
	cfg, err := config.LoadWorker()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	config.SetupLogger(cfg.LogLevel)

	clients, err := aws.NewClients(context.Background(), aws.Settings{Region: cfg.AWSRegion, EndpointOverride: cfg.EndpointOverride})
	if err != nil {
		slog.Error("failed to init aws clients", "error", err)
		os.Exit(1)
	}
	p := NewProcessor(clients.DynamoDB, cfg.IdempotencyTable, cfg.CustomersTable, idempotencyTTL)

	// RUN_LOCAL=true applies a single event from LOCAL_SQS_BODY and exits.
	if os.Getenv("RUN_LOCAL") == "true" {
		body := os.Getenv("LOCAL_SQS_BODY")
		if body == "" {
			slog.Error("LOCAL_SQS_BODY is required when RUN_LOCAL=true")
			os.Exit(1)
		}
		resp, _ := p.Handle(context.Background(), events.SQSEvent{
			Records: []events.SQSMessage{{MessageId: "local-1", Body: body}},
		})
		if len(resp.BatchItemFailures) > 0 {
			slog.Error("local event failed")
			os.Exit(1)
		}
		return
	}

	lambda.Start(p.Handle)
}
