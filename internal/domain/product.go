package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Image        string          `json:"image,omitempty"`
	Brand        string          `json:"brand"`
	CategoryID   string          `json:"category,omitempty"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	CountInStock int             `json:"countInStock"`
	Rating       decimal.Decimal `json:"rating"`
	NumReviews   int             `json:"numReviews"`
	Reviews      []Review        `json:"reviews,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Review is one customer's rating of a product. A user may review a product
// at most once.
type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"-"`
	UserID    string    `json:"user"`
	Name      string    `json:"name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
