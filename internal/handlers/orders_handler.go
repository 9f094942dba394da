package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/imrishuroy/go-tailor-orderflow/internal/aws"
	"github.com/imrishuroy/go-tailor-orderflow/internal/events"
	"github.com/imrishuroy/go-tailor-orderflow/internal/idempotency"
	"github.com/imrishuroy/go-tailor-orderflow/internal/orders"
	"github.com/imrishuroy/go-tailor-orderflow/internal/validation"
)

// RegisterOrdersRoutes registers routes for the order API.
func RegisterOrdersRoutes(r gin.IRoutes, d *deps) {
	r.POST("/orders", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.CreateOrderRequest
		if err := validation.BindAndValidate(c, &req, d.validator); err != nil {
			// BindAndValidate already wrote a 400
			_ = d.metrics.Count(ctx, aws.MetricRejectedPayloads, 1, "Route", "/orders")
			return
		}

		idempKey := c.GetHeader("Idempotency-Key")
		if idempKey == "" {
			fail(c, http.StatusBadRequest, "missing_idempotency_key", "Idempotency-Key header is required")
			return
		}

		cust, err := d.customers.Get(ctx, req.CustomerID)
		if err != nil {
			slog.Error("lookup customer", "customer_id", req.CustomerID, "error", err)
			fail(c, http.StatusInternalServerError, "internal_error", "Failed to create order")
			return
		}
		if cust == nil {
			fail(c, http.StatusNotFound, "customer_not_found", "Customer not found")
			return
		}

		orderID := uuid.NewString()
		order := orders.Order{
			OrderID:        orderID,
			CustomerID:     req.CustomerID,
			CustomerName:   cust.Name,
			Status:         orders.StatusPending,
			DeliveryDate:   req.DeliveryDate,
			TotalAmount:    req.TotalAmount,
			PaidAmount:     req.PaidAmount,
			BalanceAmount:  req.BalanceAmount,
			Measurements:   req.Measurements,
			Notes:          req.Notes,
			AssignedWorker: req.AssignedWorker,
			WorkerName:     req.WorkerName,
			AssignmentMode: req.AssignmentMode,
		}
		for _, it := range req.Items {
			order.Items = append(order.Items, orders.Item{
				Type:           it.Type,
				Fabric:         it.Fabric,
				Quantity:       it.Quantity,
				Price:          it.Price,
				AssignedWorker: it.AssignedWorker,
				WorkerName:     it.WorkerName,
			})
		}

		idempPut, err := d.idempotency.TransactPut(idempKey, idempotency.OpCreateOrder, orderID)
		if err != nil {
			fail(c, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		// idempotency record and order are written atomically
		if err := d.orders.CreateWithIdempotency(ctx, idempPut, order); err != nil {
			if errors.Is(err, orders.ErrDuplicate) {
				replay(c, d, idempKey)
				return
			}
			slog.Error("create order", "idempotency_key", idempKey, "error", err)
			fail(c, http.StatusInternalServerError, "internal_error", "Failed to create order")
			return
		}

		created, err := d.orders.Get(ctx, orderID)
		if err != nil || created == nil {
			created = &order
		}

		// the order is committed; a lost event only delays customer stats
		ev := events.New(events.TypeOrderCreated, orderID, order.CustomerID, order.PaidAmount)
		ev.CorrelationID = c.GetHeader("X-Request-Id")
		if err := d.publisher.Publish(ctx, ev); err != nil {
			slog.Error("publish order event", "order_id", orderID, "event", ev.Type, "error", err)
		}

		_ = d.metrics.Count(ctx, aws.MetricOrdersCreated, 1)
		_ = d.metrics.Count(ctx, aws.MetricOrderValue, order.TotalAmount)

		body, _ := json.Marshal(gin.H{"success": true, "data": created})
		if err := d.idempotency.MarkDone(ctx, idempKey, string(body), http.StatusCreated); err != nil {
			slog.Warn("mark idempotency done", "idempotency_key", idempKey, "error", err)
		}

		slog.Info("order created", "order_id", orderID, "customer_id", order.CustomerID, "idempotency_key", idempKey)
		c.Header("Location", fmt.Sprintf("/orders/%s", orderID))
		c.Data(http.StatusCreated, "application/json; charset=utf-8", body)
	})

	r.GET("/orders", func(c *gin.Context) {
		list, err := d.orders.List(c.Request.Context(), orders.Filter{
			CustomerID: c.Query("customerId"),
			Status:     c.Query("status"),
		})
		if err != nil {
			slog.Error("list orders", "error", err)
			fail(c, http.StatusInternalServerError, "internal_error", "Failed to load orders")
			return
		}
		if n, err := strconv.Atoi(c.Query("limit")); err == nil && n > 0 && n < len(list) {
			list = list[:n]
		}
		if list == nil {
			list = []orders.Order{}
		}
		respond(c, http.StatusOK, list)
	})

	r.GET("/orders/:id", func(c *gin.Context) {
		o, err := d.orders.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			slog.Error("get order", "order_id", c.Param("id"), "error", err)
			fail(c, http.StatusInternalServerError, "internal_error", "Failed to load order")
			return
		}
		if o == nil {
			fail(c, http.StatusNotFound, "not_found", "Order not found")
			return
		}
		respond(c, http.StatusOK, o)
	})

	r.PATCH("/orders/:id/status", func(c *gin.Context) {
		ctx := c.Request.Context()
		id := c.Param("id")

		var req validation.StatusUpdateRequest
		if err := validation.BindAndValidate(c, &req, d.validator); err != nil {
			return
		}

		err := d.orders.UpdateStatus(ctx, id, req.From, req.To)
		switch {
		case errors.Is(err, orders.ErrInvalidTransition):
			fail(c, http.StatusBadRequest, "invalid_transition", fmt.Sprintf("Cannot move an order from %s to %s", req.From, req.To))
			return
		case errors.Is(err, orders.ErrStatusMismatch):
			fail(c, http.StatusConflict, "status_mismatch", "Order status has changed, reload and try again")
			return
		case err != nil:
			slog.Error("update status", "order_id", id, "error", err)
			fail(c, http.StatusInternalServerError, "internal_error", "Failed to update status")
			return
		}

		o, err := d.orders.Get(ctx, id)
		if err != nil || o == nil {
			respond(c, http.StatusOK, gin.H{"id": id, "status": req.To})
			return
		}
		slog.Info("order status changed", "order_id", id, "from", req.From, "to", req.To)
		respond(c, http.StatusOK, o)
	})
}

// replay answers a request whose idempotency key was already used.
func replay(c *gin.Context, d *deps, key string) {
	rec, err := d.idempotency.Get(c.Request.Context(), key)
	if err != nil {
		fail(c, http.StatusInternalServerError, "idempotency_check_failed", err.Error())
		return
	}
	if rec == nil {
		fail(c, http.StatusInternalServerError, "idempotency_record_missing", "Request could not be processed")
		return
	}
	switch rec.Status {
	case idempotency.StatusDone:
		if rec.ResponseBody != "" && json.Valid([]byte(rec.ResponseBody)) {
			c.Data(rec.ResponseStatus, "application/json; charset=utf-8", []byte(rec.ResponseBody))
			return
		}
		respond(c, http.StatusOK, gin.H{"id": rec.ResourceID})
	case idempotency.StatusInProgress:
		c.JSON(http.StatusAccepted, gin.H{"success": false, "error": "in_progress", "message": "Request already in progress", "data": gin.H{"id": rec.ResourceID}})
	case idempotency.StatusFailed:
		fail(c, http.StatusConflict, "previous_attempt_failed", "A previous attempt with this key failed")
	default:
		fail(c, http.StatusInternalServerError, "unknown_idempotency_status", "Request could not be processed")
	}
}
