package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentPayPal PaymentMethod = "paypal"
)

type Order struct {
	ID              int             `json:"id"`
	UserID          int             `json:"user_id"`
	Items           []OrderItem     `json:"order_items"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	ItemsPrice      decimal.Decimal `json:"items_price"`
	ShippingPrice   decimal.Decimal `json:"shipping_price"`
	TaxPrice        decimal.Decimal `json:"tax_price"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	IsPaid          bool            `json:"is_paid"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	IsDelivered     bool            `json:"is_delivered"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// OrderItem is frozen at checkout; Name, Image and Price never follow the catalog.
type OrderItem struct {
	ProductID int             `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Quantity  int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
}

type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// PaymentOutcome is what the payment gateway reports back for an order.
type PaymentOutcome struct {
	Approved      bool            `json:"approved"`
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
}

type OrderRepository interface {
	CreateOrder(order *Order) (*Order, error)
	GetOrderByID(id int) (*Order, error)
	ListOrdersByUserID(userID int) ([]Order, error)
	MarkOrderPaid(id int, at time.Time) (*Order, error)
	MarkOrderDelivered(id int, at time.Time) (*Order, error)
}

type OrderUseCase interface {
	GetOrderView(ctx context.Context, id int) (*OrderView, error)
	ListUserOrders(ctx context.Context, userID int) (*OrderHistory, error)
	MarkAsPaid(ctx context.Context, id int) (*Order, error)
	MarkAsDelivered(ctx context.Context, id int) (*Order, error)
	ApplyPaymentOutcome(ctx context.Context, id int, outcome PaymentOutcome) (*Order, error)
}

// OrderView is a single order together with everything derived from it at read time.
type OrderView struct {
	Order   Order   `json:"order"`
	Label   Label   `json:"label"`
	Actions Actions `json:"actions"`
}

type OrderHistory struct {
	Open   []OrderView `json:"open"`
	Closed []OrderView `json:"closed"`
}

func IsValidPaymentMethod(method PaymentMethod) bool {
	switch method {
	case PaymentCash, PaymentPayPal:
		return true
	default:
		return false
	}
}

// MarkPaid flips IsPaid exactly once.
func (o *Order) MarkPaid(at time.Time) error {
	if o.IsPaid {
		return ErrAlreadyPaid
	}
	o.IsPaid = true
	o.PaidAt = &at
	return nil
}

// MarkDelivered flips IsDelivered exactly once.
func (o *Order) MarkDelivered(at time.Time) error {
	if o.IsDelivered {
		return ErrAlreadyDelivered
	}
	o.IsDelivered = true
	o.DeliveredAt = &at
	return nil
}

func (o Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}
