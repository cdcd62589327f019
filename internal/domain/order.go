package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the persisted checkout aggregate. Item prices and the four
// totals are frozen at creation; only the paid/delivered transitions
// mutate an order afterwards.
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user"`
	Items           []OrderItem     `json:"orderItems"`
	ShippingAddress map[string]any  `json:"shippingAddress,omitempty"`
	PaymentMethod   string          `json:"paymentMethod"`
	ItemsPrice      decimal.Decimal `json:"itemsPrice"`
	ShippingPrice   decimal.Decimal `json:"shippingPrice"`
	TaxPrice        decimal.Decimal `json:"taxPrice"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	IsPaid          bool            `json:"isPaid"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`
	PaymentResult   *PaymentResult  `json:"paymentResult,omitempty"`
	IsDelivered     bool            `json:"isDelivered"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`

	// Owner is the user projection joined on list/get endpoints.
	Owner *OrderOwner `json:"userDetails,omitempty"`
}

// OrderItem is one product-quantity-price tuple inside an order. Price is
// the catalog price captured at order creation, never the client's claim.
type OrderItem struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
}

// PaymentResult stores the gateway confirmation payload verbatim.
type PaymentResult struct {
	TransactionID string `json:"id"`
	Status        string `json:"status"`
	UpdateTime    string `json:"update_time"`
	PayerEmail    string `json:"email_address"`
}

// OrderOwner is the slim user projection attached to order reads.
type OrderOwner struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// DailySales is one bucket of the paid-orders-by-day aggregation.
type DailySales struct {
	Date       string          `json:"_id"`
	TotalSales decimal.Decimal `json:"totalSales"`
}
