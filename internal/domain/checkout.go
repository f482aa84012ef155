package domain

import "github.com/shopspring/decimal"

var (
	FreeShippingThreshold = decimal.NewFromInt(100)
	FlatShippingPrice     = decimal.NewFromInt(10)
	TaxRate               = decimal.RequireFromString("0.082")
)

// PriceSummary is the checkout breakdown shown before an order is placed.
type PriceSummary struct {
	ItemsPrice    decimal.Decimal `json:"items_price"`
	ShippingPrice decimal.Decimal `json:"shipping_price"`
	TaxPrice      decimal.Decimal `json:"tax_price"`
	TotalPrice    decimal.Decimal `json:"total_price"`
}

// NewPriceSummary prices a cart. Orders over the threshold ship free, tax is a
// flat rate on the items price, and every component is rounded to cents.
func NewPriceSummary(c Cart) PriceSummary {
	items := c.Subtotal().Round(2)
	shipping := FlatShippingPrice
	if items.GreaterThan(FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	tax := items.Mul(TaxRate).Round(2)
	return PriceSummary{
		ItemsPrice:    items,
		ShippingPrice: shipping,
		TaxPrice:      tax,
		TotalPrice:    items.Add(shipping).Add(tax).Round(2),
	}
}

// OrderItemsFromCart freezes the cart lines into order lines.
func OrderItemsFromCart(c Cart) []OrderItem {
	items := make([]OrderItem, 0, len(c.Items))
	for _, line := range c.Items {
		items = append(items, OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Image:     line.Image,
			Quantity:  line.Quantity,
			Price:     line.Price,
		})
	}
	return items
}
