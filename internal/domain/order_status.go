package domain

import (
	"encoding/json"
	"sort"
	"time"
)

// Label is the lifecycle status of an order as seen by the shopper. It is
// derived on every read and never stored.
type Label int

const (
	LabelDelivered Label = iota
	LabelDeliveryInProgress
	LabelWaitingForPayment
	LabelCanceled
)

// PaymentExpiryWindow is how long an unpaid PayPal order waits for payment.
const PaymentExpiryWindow = 48 * time.Hour

var labelText = map[Label]string{
	LabelDelivered:          "Delivered",
	LabelDeliveryInProgress: "Delivery in progress",
	LabelWaitingForPayment:  "Waiting for payment",
	LabelCanceled:           "Canceled - Payment Failed",
}

var labelBadge = map[Label]string{
	LabelDelivered:          "success",
	LabelDeliveryInProgress: "primary",
	LabelWaitingForPayment:  "warning",
	LabelCanceled:           "default",
}

func (l Label) String() string {
	if s, ok := labelText[l]; ok {
		return s
	}
	return "Unknown"
}

// Badge is the colour hint used when rendering the label.
func (l Label) Badge() string {
	if s, ok := labelBadge[l]; ok {
		return s
	}
	return "default"
}

// IsOpen reports whether orders with this label belong to the open-orders tab.
func (l Label) IsOpen() bool {
	return l != LabelCanceled
}

func (l Label) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Text  string `json:"text"`
		Badge string `json:"badge"`
	}{l.String(), l.Badge()})
}

// PaymentExpired is true once more than PaymentExpiryWindow has passed since createdAt.
func PaymentExpired(createdAt, now time.Time) bool {
	return now.Sub(createdAt) > PaymentExpiryWindow
}

// Classify maps an order to its lifecycle label. The first matching rule wins:
// delivered, then cash or paid PayPal, then unpaid PayPal that is neither expired
// nor blocked by an out-of-stock item. Everything else is canceled.
func Classify(order Order, stock StockLookup, now time.Time) Label {
	switch {
	case order.IsDelivered:
		return LabelDelivered
	case order.PaymentMethod == PaymentCash,
		order.PaymentMethod == PaymentPayPal && order.IsPaid:
		return LabelDeliveryInProgress
	case order.PaymentMethod == PaymentPayPal &&
		!PaymentExpired(order.CreatedAt, now) &&
		AllItemsInStock(order.Items, stock):
		return LabelWaitingForPayment
	default:
		return LabelCanceled
	}
}

// Actions lists the buttons offered next to an order.
type Actions struct {
	Pay             bool `json:"pay"`
	MarkAsPaid      bool `json:"mark_as_paid"`
	MarkAsDelivered bool `json:"mark_as_delivered"`
}

func AvailableActions(order Order, label Label) Actions {
	var a Actions
	switch label {
	case LabelWaitingForPayment:
		a.Pay = true
	case LabelDeliveryInProgress:
		a.MarkAsDelivered = true
		a.MarkAsPaid = order.PaymentMethod == PaymentCash && !order.IsPaid
	}
	return a
}

func NewOrderView(order Order, stock StockLookup, now time.Time) OrderView {
	label := Classify(order, stock, now)
	return OrderView{
		Order:   order,
		Label:   label,
		Actions: AvailableActions(order, label),
	}
}

// PartitionOrders classifies every order and splits them into the open and
// closed lists, newest first. The input slice is not reordered.
func PartitionOrders(orders []Order, stock StockLookup, now time.Time) OrderHistory {
	sorted := make([]Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	history := OrderHistory{Open: []OrderView{}, Closed: []OrderView{}}
	for _, o := range sorted {
		view := NewOrderView(o, stock, now)
		if view.Label.IsOpen() {
			history.Open = append(history.Open, view)
		} else {
			history.Closed = append(history.Closed, view)
		}
	}
	return history
}
