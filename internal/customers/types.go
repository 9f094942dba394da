package customers

import (
	"time"

	"github.com/imrishuroy/go-tailor-orderflow/internal/measurements"
)

// Customer is a shop customer with their last measurement snapshot and
// lifetime stats.
type Customer struct {
	CustomerID   string            `dynamodbav:"customer_id" json:"id"` // PK
	Name         string            `dynamodbav:"name" json:"name"`
	Email        string            `dynamodbav:"email" json:"email"`
	Phone        string            `dynamodbav:"phone" json:"phone"`
	Avatar       string            `dynamodbav:"avatar,omitempty" json:"avatar,omitempty"`
	PasswordHash string            `dynamodbav:"password_hash,omitempty" json:"-"`
	RoleID       int               `dynamodbav:"role_id" json:"-"`
	Measurements *measurements.Set `dynamodbav:"measurements,omitempty" json:"measurements,omitempty"`
	OrderCount   int               `dynamodbav:"order_count" json:"orderCount"`
	AmountSpent  float64           `dynamodbav:"amount_spent" json:"amountSpent"`
	CreatedAt    time.Time         `dynamodbav:"created_at" json:"createdAt"`
	UpdatedAt    time.Time         `dynamodbav:"updated_at" json:"updatedAt"`
}
