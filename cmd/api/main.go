package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-tailor-orderflow/internal/aws"
	"github.com/imrishuroy/go-tailor-orderflow/internal/config"
	"github.com/imrishuroy/go-tailor-orderflow/internal/handlers"
)

func main() {
	config.LoadDotEnv()
	cfg, err := config.LoadAPI()
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

	r := handlers.NewRouter(handlers.HandlerConfig{
		DynamoDBClient:   clients.DynamoDB,
		SQSClient:        clients.SQS,
		CloudWatchClient: clients.CloudWatch,
		CustomersTable:   cfg.CustomersTable,
		OrdersTable:      cfg.OrdersTable,
		IdempotencyTable: cfg.IdempotencyTable,
		QueueURL:         cfg.EventsQueueURL,
		MetricsNamespace: cfg.MetricsNamespace,
		TTLWindow:        cfg.IdempotencyTTL,
		JWTSecret:        cfg.JWTSecret,
	})

	// RUN_LOCAL=true serves plain HTTP for development.
	if cfg.RunLocal {
		addr := ":" + cfg.Port
		slog.Info("running local server", "addr", addr)
		if err := r.Run(addr); err != nil {
			slog.Error("local server stopped", "error", err)
			os.Exit(1)
		}
		return
	}

	gin.SetMode(gin.ReleaseMode)
	adapter := ginadapter.New(r)
	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
