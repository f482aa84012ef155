package usecase

import (
	"context"
	"errors"
	"fmt"
	"proshop/internal/domain"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

var _ domain.ReviewUseCase = (*reviewUseCase)(nil)

type reviewUseCase struct {
	orderRepo  domain.OrderRepository
	reviewRepo domain.ReviewRepository
	log        *logrus.Logger
}

func NewReviewUseCase(orderRepo domain.OrderRepository, reviewRepo domain.ReviewRepository, logger *logrus.Logger) domain.ReviewUseCase {
	return &reviewUseCase{
		orderRepo:  orderRepo,
		reviewRepo: reviewRepo,
		log:        logger,
	}
}

func (uc *reviewUseCase) PendingReviews(ctx context.Context, userID int) ([]domain.PendingReview, error) {
	if userID <= 0 {
		return nil, errors.New("invalid user ID")
	}

	orders, err := uc.orderRepo.ListOrdersByUserID(userID)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to list orders for user %d: %v", userID, err)
		return nil, fmt.Errorf("could not retrieve orders for user %d: %w", userID, err)
	}
	reviews, err := uc.reviewRepo.ListReviewsByUserID(userID)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to list reviews for user %d: %v", userID, err)
		return nil, fmt.Errorf("could not retrieve reviews for user %d: %w", userID, err)
	}

	// The repository lists newest first; a product bought twice is reviewed
	// under the earliest order that contains it.
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
	pending := domain.PendingReviews(orders, reviews)
	uc.log.Infof("Use Case: User %d has %d pending reviews", userID, len(pending))
	return pending, nil
}

// SubmitReview stores a review for a product the user has received and not
// reviewed yet. The order it is filed under comes from the pending item.
func (uc *reviewUseCase) SubmitReview(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	if err := review.Validate(); err != nil {
		return nil, err
	}
	if review.Comment != nil {
		trimmed := strings.TrimSpace(*review.Comment)
		if trimmed == "" {
			review.Comment = nil
		} else {
			review.Comment = &trimmed
		}
	}

	pending, err := uc.PendingReviews(ctx, review.UserID)
	if err != nil {
		return nil, err
	}

	var source *domain.PendingReview
	for i := range pending {
		if pending[i].ProductID == review.ProductID {
			source = &pending[i]
			break
		}
	}
	if source == nil {
		uc.log.Warnf("Use Case: User %d tried to review product %d without a pending review", review.UserID, review.ProductID)
		return nil, fmt.Errorf("product %d: %w", review.ProductID, domain.ErrReviewNotAllowed)
	}
	review.OrderID = source.OrderID

	created, err := uc.reviewRepo.CreateReview(review)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create review for product %d: %v", review.ProductID, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Review %d submitted by user %d for product %d", created.ID, created.UserID, created.ProductID)
	return created, nil
}
