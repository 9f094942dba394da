package handlers

import (
	"log/slog"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-tailor-orderflow/internal/dashboard"
	"github.com/imrishuroy/go-tailor-orderflow/internal/orders"
	"github.com/imrishuroy/go-tailor-orderflow/internal/payments"
	"github.com/imrishuroy/go-tailor-orderflow/internal/validation"
)

const defaultActivityLimit = 10

// RegisterDashboardRoutes registers the overview endpoints.
func RegisterDashboardRoutes(r gin.IRoutes, d *deps) {
	r.GET("/dashboard/stats", func(c *gin.Context) {
		ctx := c.Request.Context()
		list, err := d.orders.List(ctx, orders.Filter{})
		if err != nil {
			slog.Error("dashboard orders", "error", err)
			fail(c, http.StatusInternalServerError, "internal_error", "Failed to load stats")
			return
		}
		custs, err := d.customers.List(ctx)
		if err != nil {
			slog.Error("dashboard customers", "error", err)
			fail(c, http.StatusInternalServerError, "internal_error", "Failed to load stats")
			return
		}
		stats := computeStats(list, d.nowFunc().Format(validation.DateLayout))
		stats.TotalCustomers = len(custs)
		respond(c, http.StatusOK, stats)
	})

	r.GET("/dashboard/activities", func(c *gin.Context) {
		list, err := d.orders.List(c.Request.Context(), orders.Filter{})
		if err != nil {
			slog.Error("dashboard activities", "error", err)
			fail(c, http.StatusInternalServerError, "internal_error", "Failed to load activities")
			return
		}
		limit := defaultActivityLimit
		if n, err := strconv.Atoi(c.Query("limit")); err == nil && n > 0 {
			limit = n
		}
		respond(c, http.StatusOK, activities(list, limit))
	})
}

func computeStats(list []orders.Order, today string) dashboard.Stats {
	var s dashboard.Stats
	revenue, outstanding := decimal.Zero, decimal.Zero
	for _, o := range list {
		s.TotalOrders++
		switch o.Status {
		case orders.StatusPending:
			s.PendingOrders++
		case orders.StatusInProgress:
			s.InProgressOrders++
		case orders.StatusReady:
			s.ReadyOrders++
		case orders.StatusDelivered:
			s.DeliveredOrders++
		}
		if o.CreatedAt.Local().Format(validation.DateLayout) == today {
			s.TodayOrders++
		}
		revenue = revenue.Add(decimal.NewFromFloat(o.PaidAmount))
		if o.Status != orders.StatusCancelled {
			outstanding = outstanding.Add(decimal.NewFromFloat(o.BalanceAmount))
		}
	}
	s.TotalRevenue = revenue.InexactFloat64()
	s.OutstandingBalance = outstanding.InexactFloat64()
	return s
}

// activities derives the feed from order creation and payment history,
// newest first.
func activities(list []orders.Order, limit int) []dashboard.Activity {
	out := []dashboard.Activity{}
	for _, o := range list {
		who := o.CustomerName
		if who == "" {
			who = o.CustomerID
		}
		out = append(out, dashboard.Activity{
			Type:       dashboard.ActivityOrderCreated,
			Message:    "New order for " + who + " worth " + payments.FormatINR(decimal.NewFromFloat(o.TotalAmount)),
			OrderID:    o.OrderID,
			CustomerID: o.CustomerID,
			Amount:     o.TotalAmount,
			At:         o.CreatedAt,
		})
		for _, p := range o.Payments {
			out = append(out, dashboard.Activity{
				Type:       dashboard.ActivityPaymentRecorded,
				Message:    payments.FormatINR(decimal.NewFromFloat(p.Amount)) + " received from " + who,
				OrderID:    o.OrderID,
				CustomerID: o.CustomerID,
				Amount:     p.Amount,
				At:         p.RecordedAt,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.After(out[j].At) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
