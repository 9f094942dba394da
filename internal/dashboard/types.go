package dashboard

import "time"

// Stats is the headline numbers block.
type Stats struct {
	TotalOrders        int     `json:"totalOrders"`
	PendingOrders      int     `json:"pendingOrders"`
	InProgressOrders   int     `json:"inProgressOrders"`
	ReadyOrders        int     `json:"readyOrders"`
	DeliveredOrders    int     `json:"deliveredOrders"`
	TodayOrders        int     `json:"todayOrders"`
	TotalCustomers     int     `json:"totalCustomers"`
	TotalRevenue       float64 `json:"totalRevenue"`
	OutstandingBalance float64 `json:"outstandingBalance"`
}

const (
	ActivityOrderCreated    = "order_created"
	ActivityPaymentRecorded = "payment_recorded"
)

// Activity is one entry of the recent activity feed.
type Activity struct {
	Type       string    `json:"type"`
	Message    string    `json:"message"`
	OrderID    string    `json:"orderId,omitempty"`
	CustomerID string    `json:"customerId,omitempty"`
	Amount     float64   `json:"amount,omitempty"`
	At         time.Time `json:"at"`
}
