package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessionID identifies the shopper session that owns a cart.
type SessionID = uuid.UUID

// CartItem is one cart line. CountInStock is the stock ceiling seen at the
// last catalog sync.
type CartItem struct {
	ProductID    int             `json:"product_id"`
	Name         string          `json:"name"`
	Image        string          `json:"image"`
	Price        decimal.Decimal `json:"price"`
	CountInStock int             `json:"count_in_stock"`
	Quantity     int             `json:"quantity"`
}

// Cart is an ordered set of lines keyed by product. Every operation returns a
// new Cart and leaves the receiver untouched, so a failed transition needs no
// rollback.
type Cart struct {
	Items []CartItem `json:"cart_items"`
}

type CartRepository interface {
	LoadCart(ctx context.Context, session SessionID) (Cart, error)
	SaveCart(ctx context.Context, session SessionID, cart Cart) error
	DeleteCart(ctx context.Context, session SessionID) error
}

type CartUseCase interface {
	GetCart(ctx context.Context, session SessionID) (*CartSummary, error)
	AddItem(ctx context.Context, session SessionID, productID, quantity int) (*CartSummary, error)
	IncrementItem(ctx context.Context, session SessionID, productID int) (*CartSummary, error)
	DecrementItem(ctx context.Context, session SessionID, productID int) (*CartSummary, error)
	RemoveItem(ctx context.Context, session SessionID, productID int) (*CartSummary, error)
	ClearCart(ctx context.Context, session SessionID) error
	RefreshStock(ctx context.Context, session SessionID) (*CartSummary, []CartAdjustment, error)
	PlaceOrder(ctx context.Context, session SessionID, userID int, method PaymentMethod, address ShippingAddress) (*Order, error)
}

// CartSummary is what the cart page renders.
type CartSummary struct {
	Cart          Cart   `json:"cart"`
	TotalQuantity int    `json:"total_quantity"`
	Subtotal      string `json:"subtotal"`
}

func NewCartSummary(c Cart) *CartSummary {
	return &CartSummary{
		Cart:          c,
		TotalQuantity: c.TotalQuantity(),
		Subtotal:      c.SubtotalDisplay(),
	}
}

func (c Cart) clone() Cart {
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	return Cart{Items: items}
}

func (c Cart) index(productID int) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c Cart) Len() int { return len(c.Items) }

func (c Cart) IsEmpty() bool { return len(c.Items) == 0 }

func (c Cart) Item(productID int) (CartItem, bool) {
	if i := c.index(productID); i >= 0 {
		return c.Items[i], true
	}
	return CartItem{}, false
}

// Upsert replaces the line for item.ProductID in place, or appends it when the
// product is not in the cart yet.
func (c Cart) Upsert(item CartItem) (Cart, error) {
	if item.Quantity < 1 {
		return c, ErrInvalidQuantity
	}
	if item.Quantity > item.CountInStock {
		return c, ErrOutOfStock
	}
	next := c.clone()
	if i := next.index(item.ProductID); i >= 0 {
		next.Items[i] = item
	} else {
		next.Items = append(next.Items, item)
	}
	return next, nil
}

// Remove drops the line for productID. Removing an absent product is a no-op.
func (c Cart) Remove(productID int) Cart {
	i := c.index(productID)
	if i < 0 {
		return c
	}
	next := Cart{Items: make([]CartItem, 0, len(c.Items)-1)}
	next.Items = append(next.Items, c.Items[:i]...)
	next.Items = append(next.Items, c.Items[i+1:]...)
	return next
}

func (c Cart) Clear() Cart {
	return Cart{Items: []CartItem{}}
}

// Add puts a freshly fetched product into the cart with the given quantity,
// overwriting the existing line's snapshot. Quantity 0 means 1.
func (c Cart) Add(item CartItem) (Cart, error) {
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	return c.Upsert(item)
}

// SetQuantity stores quantity for an existing line; zero removes the line.
func (c Cart) SetQuantity(productID, quantity int) (Cart, error) {
	item, ok := c.Item(productID)
	if !ok {
		return c, ErrItemNotInCart
	}
	if quantity == 0 {
		return c.Remove(productID), nil
	}
	item.Quantity = quantity
	return c.Upsert(item)
}

func (c Cart) Increment(productID int) (Cart, error) {
	item, ok := c.Item(productID)
	if !ok {
		return c, ErrItemNotInCart
	}
	return c.SetQuantity(productID, item.Quantity+1)
}

func (c Cart) Decrement(productID int) (Cart, error) {
	item, ok := c.Item(productID)
	if !ok {
		return c, ErrItemNotInCart
	}
	return c.SetQuantity(productID, item.Quantity-1)
}

type AdjustmentReason string

const (
	AdjustmentClamped AdjustmentReason = "quantity_reduced"
	AdjustmentRemoved AdjustmentReason = "out_of_stock"
)

// CartAdjustment records a line changed by Reconcile.
type CartAdjustment struct {
	ProductID   int              `json:"product_id"`
	Reason      AdjustmentReason `json:"reason"`
	OldQuantity int              `json:"old_quantity"`
	NewQuantity int              `json:"new_quantity"`
}

// Reconcile applies fresh stock counts to the cart. Ceilings are updated,
// quantities above the new ceiling are reduced to it and lines with no stock
// left are removed. Products missing from stock keep their last known ceiling.
func (c Cart) Reconcile(stock []ProductStock) (Cart, []CartAdjustment) {
	idx := NewStockIndex(stock)
	next := Cart{Items: make([]CartItem, 0, len(c.Items))}
	var adjustments []CartAdjustment
	for _, item := range c.Items {
		count, ok := idx.CountInStock(item.ProductID)
		if !ok {
			next.Items = append(next.Items, item)
			continue
		}
		if count <= 0 {
			adjustments = append(adjustments, CartAdjustment{
				ProductID:   item.ProductID,
				Reason:      AdjustmentRemoved,
				OldQuantity: item.Quantity,
			})
			continue
		}
		item.CountInStock = count
		if item.Quantity > count {
			adjustments = append(adjustments, CartAdjustment{
				ProductID:   item.ProductID,
				Reason:      AdjustmentClamped,
				OldQuantity: item.Quantity,
				NewQuantity: count,
			})
			item.Quantity = count
		}
		next.Items = append(next.Items, item)
	}
	return next, adjustments
}

func (c Cart) TotalQuantity() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// Subtotal is the exact sum of quantity x price. Round only for display.
func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func (c Cart) SubtotalDisplay() string {
	return c.Subtotal().StringFixed(2)
}
