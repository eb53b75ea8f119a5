package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending       = "Pending"
	OrderStatusPaid          = "Paid"
	OrderStatusPaymentFailed = "Payment Failed"
)

type Order struct {
	ID            int             `json:"id"`
	UserID        int             `json:"user_id"`
	BillingID     int             `json:"billing_id"`
	OrderDate     time.Time       `json:"order_date"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	TotalQuantity int             `json:"total_quantity"`
	Status        string          `json:"status"` // Pending, Paid, Payment Failed
	Lines         []OrderLine     `json:"lines"`
	Billing       *BillingDetails `json:"billing,omitempty"`
}

// OrderLine is the price snapshot of one product at checkout time.
type OrderLine struct {
	ID        int             `json:"id"`
	OrderID   int             `json:"order_id"`
	ProductID int             `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// IsTerminal reports whether the order has left Pending.
func (o *Order) IsTerminal() bool {
	return o.Status != OrderStatusPending
}

// PaymentIntent records the gateway order created to collect payment for an Order.
type PaymentIntent struct {
	ID             int       `json:"id"`
	OrderID        int       `json:"order_id"`
	GatewayOrderID string    `json:"gateway_order_id"`
	Amount         int64     `json:"amount"`
	Currency       string    `json:"currency"`
	CreatedAt      time.Time `json:"created_at"`
}

// MinorUnits converts an amount to the smallest currency subdivision,
// truncating anything below it.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).IntPart()
}
