package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deliveredOrder(id int, at time.Time, productIDs ...int) Order {
	o := Order{ID: id, PaymentMethod: PaymentCash, IsPaid: true, IsDelivered: true, DeliveredAt: &at}
	for _, pid := range productIDs {
		o.Items = append(o.Items, OrderItem{ProductID: pid, Name: "p", Quantity: 1})
	}
	return o
}

func TestPendingReviews_FirstOccurrenceWins(t *testing.T) {
	deliveredA := baseNow.Add(-72 * time.Hour)
	deliveredB := baseNow.Add(-24 * time.Hour)
	orders := []Order{
		deliveredOrder(10, deliveredA, 1),
		deliveredOrder(11, deliveredB, 1, 2),
	}

	pending := PendingReviews(orders, nil)

	require.Len(t, pending, 2)
	assert.Equal(t, 1, pending[0].ProductID)
	assert.Equal(t, 10, pending[0].OrderID)
	assert.Equal(t, deliveredA, *pending[0].DeliveredAt)
	assert.Equal(t, 2, pending[1].ProductID)
	assert.Equal(t, 11, pending[1].OrderID)
}

func TestPendingReviews_ExcludesReviewedProducts(t *testing.T) {
	orders := []Order{deliveredOrder(10, baseNow, 2, 3)}
	reviews := []Review{{ProductID: 2, Rating: 4}}

	pending := PendingReviews(orders, reviews)

	require.Len(t, pending, 1)
	assert.Equal(t, 3, pending[0].ProductID)
}

func TestPendingReviews_SkipsUndeliveredOrders(t *testing.T) {
	orders := []Order{
		{ID: 1, PaymentMethod: PaymentCash, Items: []OrderItem{{ProductID: 5}}},
		deliveredOrder(2, baseNow, 6),
	}

	pending := PendingReviews(orders, nil)

	require.Len(t, pending, 1)
	assert.Equal(t, 6, pending[0].ProductID)
}

func TestPendingReviews_DuplicateLineInOneOrder(t *testing.T) {
	orders := []Order{deliveredOrder(1, baseNow, 4, 4)}

	assert.Len(t, PendingReviews(orders, nil), 1)
}

func TestPendingReviews_Empty(t *testing.T) {
	pending := PendingReviews(nil, nil)

	assert.NotNil(t, pending)
	assert.Empty(t, pending)
}

func TestPendingReviews_Deterministic(t *testing.T) {
	orders := []Order{deliveredOrder(1, baseNow, 3, 1, 2), deliveredOrder(2, baseNow, 2, 5)}

	assert.Equal(t, PendingReviews(orders, nil), PendingReviews(orders, nil))
}

func TestReview_Validate(t *testing.T) {
	for rating, valid := range map[int]bool{0: false, 1: true, 3: true, 5: true, 6: false, -1: false} {
		err := Review{Rating: rating}.Validate()
		if valid {
			assert.NoError(t, err, "rating %d", rating)
		} else {
			assert.ErrorIs(t, err, ErrInvalidRating, "rating %d", rating)
		}
	}
}
