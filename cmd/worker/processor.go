package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/imrishuroy/go-tailor-orderflow/internal/aws"
	"github.com/imrishuroy/go-tailor-orderflow/internal/customers"
	orderevents "github.com/imrishuroy/go-tailor-orderflow/internal/events"
	"github.com/imrishuroy/go-tailor-orderflow/internal/idempotency"
)

// processed event ids are remembered for a week, longer than the queue's
// retention
const idempotencyTTL = 7 * 24 * time.Hour

// Processor applies order and payment events to customer lifetime stats.
// Each event id is applied at most once.
type Processor struct {
	idempStore    *idempotency.Store
	customerStore *customers.Store
}

// NewProcessor creates a new worker processor over the given tables.
func NewProcessor(dynamo aws.DynamoDBAPI, idempTable, customersTable string, ttl time.Duration) *Processor {
	return &Processor{
		idempStore:    idempotency.NewStore(dynamo, idempTable, ttl),
		customerStore: customers.NewStore(dynamo, customersTable),
	}
}

// Handle receives an SQS batch and reports the messages that failed so only
// those are redelivered.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			slog.Error("worker error", "message_id", rec.MessageId, "error", err)
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: rec.MessageId})
		}
	}
	return resp, nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var msg orderevents.Event
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}
	if msg.EventID == "" || msg.CustomerID == "" {
		return fmt.Errorf("event missing id or customer: %s", rec.Body)
	}

	var orderCount int
	switch msg.Type {
	case orderevents.TypeOrderCreated:
		orderCount = 1
	case orderevents.TypePaymentRecorded:
	default:
		slog.Warn("skipping unknown event", "event", msg.Type, "event_id", msg.EventID)
		return nil
	}

	log := slog.With("event", msg.Type, "event_id", msg.EventID, "order_id", msg.OrderID, "customer_id", msg.CustomerID)
	key := "event#" + msg.EventID

	idempPut, err := p.idempStore.TransactPut(key, idempotency.OpApplyEvent, msg.OrderID)
	if err != nil {
		return err
	}
	err = p.customerStore.AddStatsWithIdempotency(ctx, idempPut, msg.CustomerID, orderCount, msg.Amount)
	if errors.Is(err, customers.ErrStatsCancelled) {
		existing, gerr := p.idempStore.Get(ctx, key)
		if gerr != nil {
			return fmt.Errorf("check idempotency: %w", gerr)
		}
		if existing != nil {
			log.Info("duplicate event, already applied")
			return nil
		}
		return fmt.Errorf("customer %s not found", msg.CustomerID)
	}
	if err != nil {
		return fmt.Errorf("apply stats: %w", err)
	}

	if err := p.idempStore.MarkDone(ctx, key, "", 200); err != nil {
		log.Warn("mark event done", "error", err)
	}
	log.Info("event applied", "amount", msg.Amount)
	return nil
}
