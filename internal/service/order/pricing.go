package order

import (
	"github.com/M-ahmad144/Lymora-Backend/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	freeShippingThreshold = decimal.NewFromInt(100)
	flatShippingPrice     = decimal.NewFromInt(10)
	taxRate               = decimal.NewFromFloat(0.15)
)

// Prices is the derived pricing block stored on an order. All four amounts
// carry two decimal places and TotalPrice is the exact sum of the other
// three.
type Prices struct {
	ItemsPrice    decimal.Decimal
	ShippingPrice decimal.Decimal
	TaxPrice      decimal.Decimal
	TotalPrice    decimal.Decimal
}

// CalcPrices computes the order totals from authoritative line prices.
// The item sum stays unrounded until output; tax is 15% of that raw sum;
// shipping is free strictly above 100, so an order of exactly 100 still
// pays the flat 10. An empty item list prices to all zeros; callers
// reject empty orders before persisting.
func CalcPrices(items []domain.OrderItem) Prices {
	if len(items) == 0 {
		return Prices{
			ItemsPrice:    decimal.Zero,
			ShippingPrice: decimal.Zero,
			TaxPrice:      decimal.Zero,
			TotalPrice:    decimal.Zero,
		}
	}

	raw := decimal.Zero
	for _, item := range items {
		raw = raw.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	shipping := flatShippingPrice
	if raw.GreaterThan(freeShippingThreshold) {
		shipping = decimal.Zero
	}

	itemsPrice := raw.Round(2)
	taxPrice := raw.Mul(taxRate).Round(2)
	shipping = shipping.Round(2)

	return Prices{
		ItemsPrice:    itemsPrice,
		ShippingPrice: shipping,
		TaxPrice:      taxPrice,
		TotalPrice:    itemsPrice.Add(shipping).Add(taxPrice),
	}
}
