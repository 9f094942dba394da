package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types published by the backend and consumed by the worker.
const (
	TypeOrderCreated    = "order.created"
	TypePaymentRecorded = "payment.recorded"
)

// Event is the message body sent API -> SQS -> worker.
type Event struct {
	EventID    string `json:"event_id"`
	Type       string `json:"type"`
	OrderID    string `json:"order_id"`
	CustomerID string `json:"customer_id"`
	// Amount is the money actually received: the advance for order.created,
	// the additional payment for payment.recorded.
	Amount        float64   `json:"amount"`
	OccurredAt    time.Time `json:"occurred_at"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// New stamps a fresh event id and time.
func New(eventType, orderID, customerID string, amount float64) Event {
	return Event{
		EventID:    uuid.NewString(),
		Type:       eventType,
		OrderID:    orderID,
		CustomerID: customerID,
		Amount:     amount,
		OccurredAt: time.Now().UTC(),
	}
}
