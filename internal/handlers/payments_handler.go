package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/imrishuroy/go-tailor-orderflow/internal/aws"
	"github.com/imrishuroy/go-tailor-orderflow/internal/events"
	"github.com/imrishuroy/go-tailor-orderflow/internal/idempotency"
	"github.com/imrishuroy/go-tailor-orderflow/internal/orders"
	"github.com/imrishuroy/go-tailor-orderflow/internal/validation"
)

// RegisterPaymentsRoutes registers the record-payment endpoint. With an
// Idempotency-Key a repeated request is answered from the stored response
// instead of charging twice.
func RegisterPaymentsRoutes(r gin.IRoutes, d *deps) {
	r.PATCH("/orders/:id/payment", func(c *gin.Context) {
		ctx := c.Request.Context()
		orderID := c.Param("id")

		var req validation.PaymentUpdateRequest
		if err := validation.BindAndValidate(c, &req, d.validator); err != nil {
			_ = d.metrics.Count(ctx, aws.MetricRejectedPayloads, 1, "Route", "/orders/:id/payment")
			return
		}
		req.OrderID = orderID

		key := c.GetHeader("Idempotency-Key")
		if key != "" {
			created, err := d.idempotency.CreateIfNotExists(ctx, key, idempotency.OpRecordPayment, orderID)
			if err != nil {
				slog.Error("create idempotency record", "idempotency_key", key, "error", err)
				fail(c, http.StatusInternalServerError, "internal_error", "Failed to record payment")
				return
			}
			if !created {
				rec, err := d.idempotency.Get(ctx, key)
				if err == nil && rec != nil && rec.Status == idempotency.StatusFailed {
					// a failed attempt may be retried with the same key
					if err := d.idempotency.Reclaim(ctx, key); err != nil {
						replay(c, d, key)
						return
					}
				} else {
					replay(c, d, key)
					return
				}
			}
		}

		updated, err := d.orders.ApplyPayment(ctx, orderID, orders.Payment{
			PaymentID: uuid.NewString(),
			Amount:    req.AdditionalPayment,
			Method:    req.PaymentMethod,
			Date:      req.PaymentDate,
			Note:      req.PaymentNote,
		})
		if err != nil {
			if key != "" {
				_ = d.idempotency.MarkFailed(ctx, key, err.Error())
			}
			switch {
			case errors.Is(err, orders.ErrNotFound):
				fail(c, http.StatusNotFound, "not_found", "Order not found")
			case errors.Is(err, orders.ErrOverpayment):
				fail(c, http.StatusConflict, "overpayment", "Payment exceeds the remaining balance")
			default:
				slog.Error("apply payment", "order_id", orderID, "error", err)
				fail(c, http.StatusInternalServerError, "internal_error", "Failed to record payment")
			}
			return
		}

		ev := events.New(events.TypePaymentRecorded, orderID, updated.CustomerID, req.AdditionalPayment)
		ev.CorrelationID = c.GetHeader("X-Request-Id")
		if err := d.publisher.Publish(ctx, ev); err != nil {
			slog.Error("publish payment event", "order_id", orderID, "event", ev.Type, "error", err)
		}
		_ = d.metrics.Count(ctx, aws.MetricPaymentsRecorded, 1, "Method", req.PaymentMethod)
		_ = d.metrics.Count(ctx, aws.MetricPaymentAmount, req.AdditionalPayment)

		body, _ := json.Marshal(gin.H{"success": true, "data": updated})
		if key != "" {
			if err := d.idempotency.MarkDone(ctx, key, string(body), http.StatusOK); err != nil {
				slog.Warn("mark idempotency done", "idempotency_key", key, "error", err)
			}
		}
		slog.Info("payment recorded", "order_id", orderID, "amount", req.AdditionalPayment, "balance", updated.BalanceAmount)
		c.Data(http.StatusOK, "application/json; charset=utf-8", body)
	})
}
