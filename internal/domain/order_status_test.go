package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func paypalOrder(createdAt time.Time, productIDs ...int) Order {
	items := make([]OrderItem, 0, len(productIDs))
	for _, id := range productIDs {
		items = append(items, OrderItem{ProductID: id, Quantity: 1})
	}
	return Order{
		ID:            1,
		PaymentMethod: PaymentPayPal,
		CreatedAt:     createdAt,
		Items:         items,
	}
}

func TestClassify_AllCombinations(t *testing.T) {
	methods := []PaymentMethod{PaymentCash, PaymentPayPal}
	bools := []bool{false, true}

	for _, method := range methods {
		for _, delivered := range bools {
			for _, paid := range bools {
				for _, expired := range bools {
					for _, inStock := range bools {
						createdAt := baseNow.Add(-time.Hour)
						if expired {
							createdAt = baseNow.Add(-49 * time.Hour)
						}
						stock := StockIndex{1: 0}
						if inStock {
							stock[1] = 3
						}
						o := Order{
							PaymentMethod: method,
							IsPaid:        paid,
							IsDelivered:   delivered,
							CreatedAt:     createdAt,
							Items:         []OrderItem{{ProductID: 1, Quantity: 1}},
						}

						got := Classify(o, stock, baseNow)

						var want Label
						switch {
						case delivered:
							want = LabelDelivered
						case method == PaymentCash || paid:
							want = LabelDeliveryInProgress
						case !expired && inStock:
							want = LabelWaitingForPayment
						default:
							want = LabelCanceled
						}
						assert.Equal(t, want, got, "method=%s delivered=%v paid=%v expired=%v inStock=%v",
							method, delivered, paid, expired, inStock)
					}
				}
			}
		}
	}
}

func TestClassify_DeliveredWins(t *testing.T) {
	o := paypalOrder(baseNow.Add(-100*time.Hour), 1)
	o.IsDelivered = true

	assert.Equal(t, LabelDelivered, Classify(o, StockIndex{1: 0}, baseNow))
}

func TestClassify_WaitingTurnsCanceledWithTime(t *testing.T) {
	o := paypalOrder(baseNow.Add(-47*time.Hour), 1)
	stock := StockIndex{1: 5}

	assert.Equal(t, LabelWaitingForPayment, Classify(o, stock, baseNow))
	assert.Equal(t, LabelCanceled, Classify(o, stock, baseNow.Add(2*time.Hour)))
}

func TestClassify_ExpiredRegardlessOfStock(t *testing.T) {
	o := paypalOrder(baseNow.Add(-50*time.Hour), 1)

	assert.Equal(t, LabelCanceled, Classify(o, StockIndex{1: 5}, baseNow))
}

func TestClassify_OutOfStockCancels(t *testing.T) {
	o := paypalOrder(baseNow.Add(-time.Hour), 1, 2)

	assert.Equal(t, LabelCanceled, Classify(o, StockIndex{1: 4, 2: 0}, baseNow))
}

func TestClassify_UnknownProductCountsAsInStock(t *testing.T) {
	o := paypalOrder(baseNow.Add(-time.Hour), 1, 99)

	assert.Equal(t, LabelWaitingForPayment, Classify(o, StockIndex{1: 4}, baseNow))
	assert.Equal(t, LabelWaitingForPayment, Classify(o, nil, baseNow))
}

func TestClassify_UnknownPaymentMethodIsCanceled(t *testing.T) {
	o := Order{PaymentMethod: "bitcoin", CreatedAt: baseNow}

	assert.Equal(t, LabelCanceled, Classify(o, nil, baseNow))
}

func TestPaymentExpired_Boundary(t *testing.T) {
	created := baseNow.Add(-PaymentExpiryWindow)

	assert.False(t, PaymentExpired(created, baseNow))
	assert.True(t, PaymentExpired(created, baseNow.Add(time.Millisecond)))
}

func TestLabel_TextAndBadge(t *testing.T) {
	tests := []struct {
		label Label
		text  string
		badge string
		open  bool
	}{
		{LabelDelivered, "Delivered", "success", true},
		{LabelDeliveryInProgress, "Delivery in progress", "primary", true},
		{LabelWaitingForPayment, "Waiting for payment", "warning", true},
		{LabelCanceled, "Canceled - Payment Failed", "default", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.text, tt.label.String())
			assert.Equal(t, tt.badge, tt.label.Badge())
			assert.Equal(t, tt.open, tt.label.IsOpen())
		})
	}
}

func TestLabel_MarshalJSON(t *testing.T) {
	b, err := LabelWaitingForPayment.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"Waiting for payment","badge":"warning"}`, string(b))
}

func TestAvailableActions(t *testing.T) {
	cash := Order{PaymentMethod: PaymentCash}
	paidCash := Order{PaymentMethod: PaymentCash, IsPaid: true}
	paypal := Order{PaymentMethod: PaymentPayPal}

	assert.Equal(t, Actions{MarkAsPaid: true, MarkAsDelivered: true}, AvailableActions(cash, LabelDeliveryInProgress))
	assert.Equal(t, Actions{MarkAsDelivered: true}, AvailableActions(paidCash, LabelDeliveryInProgress))
	assert.Equal(t, Actions{Pay: true}, AvailableActions(paypal, LabelWaitingForPayment))
	assert.Equal(t, Actions{}, AvailableActions(paypal, LabelCanceled))
	assert.Equal(t, Actions{}, AvailableActions(cash, LabelDelivered))
}

func TestPartitionOrders(t *testing.T) {
	orders := []Order{
		{ID: 1, PaymentMethod: PaymentCash, CreatedAt: baseNow.Add(-72 * time.Hour)},
		{ID: 2, PaymentMethod: PaymentPayPal, CreatedAt: baseNow.Add(-60 * time.Hour)},
		{ID: 3, PaymentMethod: PaymentPayPal, CreatedAt: baseNow.Add(-time.Hour)},
		{ID: 4, PaymentMethod: PaymentPayPal, IsPaid: true, IsDelivered: true, CreatedAt: baseNow.Add(-100 * time.Hour)},
	}

	history := PartitionOrders(orders, nil, baseNow)

	openIDs := make([]int, 0, len(history.Open))
	for _, v := range history.Open {
		openIDs = append(openIDs, v.Order.ID)
	}
	require.Len(t, history.Closed, 1)
	assert.Equal(t, []int{3, 1, 4}, openIDs)
	assert.Equal(t, 2, history.Closed[0].Order.ID)
	assert.Equal(t, LabelCanceled, history.Closed[0].Label)
	assert.Equal(t, 1, orders[0].ID, "input must keep its order")
}

func TestPartitionOrders_Empty(t *testing.T) {
	history := PartitionOrders(nil, nil, baseNow)

	assert.Empty(t, history.Open)
	assert.Empty(t, history.Closed)
}

func TestOrder_MarkPaidOnce(t *testing.T) {
	o := Order{PaymentMethod: PaymentCash}

	require.NoError(t, o.MarkPaid(baseNow))
	require.NotNil(t, o.PaidAt)
	assert.True(t, o.IsPaid)
	assert.ErrorIs(t, o.MarkPaid(baseNow.Add(time.Hour)), ErrAlreadyPaid)
	assert.Equal(t, baseNow, *o.PaidAt)
}

func TestOrder_MarkDeliveredOnce(t *testing.T) {
	o := Order{PaymentMethod: PaymentCash}

	require.NoError(t, o.MarkDelivered(baseNow))
	assert.True(t, o.IsDelivered)
	assert.ErrorIs(t, o.MarkDelivered(baseNow), ErrAlreadyDelivered)
}

func TestStockLookupFunc(t *testing.T) {
	lookup := StockLookupFunc(func(id int) (int, bool) {
		if id == 7 {
			return 0, true
		}
		return 0, false
	})

	assert.False(t, ItemInStock(7, lookup))
	assert.True(t, ItemInStock(8, lookup))
	assert.False(t, AllItemsInStock([]OrderItem{{ProductID: 8}, {ProductID: 7}}, lookup))
	assert.True(t, AllItemsInStock(nil, lookup))
}

func TestNewStockIndex(t *testing.T) {
	idx := NewStockIndex([]ProductStock{{ProductID: 1, CountInStock: 2}, {ProductID: 2, CountInStock: 0}})

	count, ok := idx.CountInStock(1)
	assert.True(t, ok)
	assert.Equal(t, 2, count)
	_, ok = idx.CountInStock(3)
	assert.False(t, ok)
}

func TestOrder_ItemCount(t *testing.T) {
	o := Order{Items: []OrderItem{{ProductID: 1, Quantity: 3}, {ProductID: 2, Quantity: 1}}}

	assert.Equal(t, 4, o.ItemCount())
	assert.Equal(t, 0, Order{}.ItemCount())
}
