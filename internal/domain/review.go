package domain

import (
	"context"
	"time"
)

type Review struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	ProductID int       `json:"product_id"`
	OrderID   int       `json:"order_id"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PendingReview is a delivered product the shopper has not reviewed yet.
type PendingReview struct {
	ProductID   int        `json:"product_id"`
	Name        string     `json:"name"`
	Image       string     `json:"image"`
	OrderID     int        `json:"order_id"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
}

type ReviewRepository interface {
	CreateReview(review *Review) (*Review, error)
	ListReviewsByUserID(userID int) ([]Review, error)
}

type ReviewUseCase interface {
	PendingReviews(ctx context.Context, userID int) ([]PendingReview, error)
	SubmitReview(ctx context.Context, review *Review) (*Review, error)
}

func (r Review) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return ErrInvalidRating
	}
	return nil
}

// PendingReviews walks delivered orders in the given order and returns the
// first line seen for every product that has no review yet.
func PendingReviews(orders []Order, reviews []Review) []PendingReview {
	seen := make(map[int]bool, len(reviews))
	for _, r := range reviews {
		seen[r.ProductID] = true
	}

	pending := []PendingReview{}
	for _, o := range orders {
		if !o.IsDelivered {
			continue
		}
		for _, item := range o.Items {
			if seen[item.ProductID] {
				continue
			}
			seen[item.ProductID] = true
			pending = append(pending, PendingReview{
				ProductID:   item.ProductID,
				Name:        item.Name,
				Image:       item.Image,
				OrderID:     o.ID,
				DeliveredAt: o.DeliveredAt,
			})
		}
	}
	return pending
}
