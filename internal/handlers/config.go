package handlers

import (
	"time"

	"github.com/imrishuroy/go-tailor-orderflow/internal/aws"
	"github.com/imrishuroy/go-tailor-orderflow/internal/customers"
	"github.com/imrishuroy/go-tailor-orderflow/internal/idempotency"
	"github.com/imrishuroy/go-tailor-orderflow/internal/orders"
	"github.com/imrishuroy/go-tailor-orderflow/internal/validation"
)

// HandlerConfig groups dependencies for the API routes.
type HandlerConfig struct {
	DynamoDBClient   aws.DynamoDBAPI
	SQSClient        aws.SQSAPI
	CloudWatchClient aws.CloudWatchAPI
	CustomersTable   string
	OrdersTable      string
	IdempotencyTable string
	QueueURL         string
	MetricsNamespace string
	TTLWindow        time.Duration
	JWTSecret        string
	// NowFunc overrides the clock used for validation and dashboard "today".
	NowFunc func() time.Time
}

// deps is what the route closures share.
type deps struct {
	validator   *validation.Validator
	customers   *customers.Store
	orders      *orders.Store
	idempotency *idempotency.Store
	publisher   *aws.Publisher
	metrics     *aws.Metrics
	nowFunc     func() time.Time
}

func newDeps(cfg HandlerConfig) *deps {
	now := cfg.NowFunc
	if now == nil {
		now = time.Now
	}
	return &deps{
		validator:   validation.NewWithClock(now),
		customers:   customers.NewStore(cfg.DynamoDBClient, cfg.CustomersTable),
		orders:      orders.NewStore(cfg.DynamoDBClient, cfg.OrdersTable),
		idempotency: idempotency.NewStore(cfg.DynamoDBClient, cfg.IdempotencyTable, cfg.TTLWindow),
		publisher:   aws.NewPublisher(cfg.SQSClient, cfg.QueueURL),
		metrics:     aws.NewMetrics(cfg.CloudWatchClient, cfg.MetricsNamespace),
		nowFunc:     now,
	}
}
