package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"proshop/internal/domain"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

var ErrDuplicateReview = errors.New("product already reviewed")

type postgresReviewRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresReviewRepository(db *sql.DB, logger *logrus.Logger) domain.ReviewRepository {
	return &postgresReviewRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresReviewRepository) CreateReview(review *domain.Review) (*domain.Review, error) {
	query := `
        INSERT INTO reviews (user_id, product_id, order_id, rating, comment)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at
    `
	err := r.db.QueryRow(query, review.UserID, review.ProductID, review.OrderID, review.Rating, review.Comment).
		Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			r.log.Warnf("Review for product %d by user %d already exists", review.ProductID, review.UserID)
			return nil, fmt.Errorf("product %d: %w", review.ProductID, ErrDuplicateReview)
		}
		r.log.Errorf("Failed to insert review for product %d by user %d: %v", review.ProductID, review.UserID, err)
		return nil, fmt.Errorf("could not create review: %w", err)
	}

	r.log.Infof("Review %d created for product %d by user %d", review.ID, review.ProductID, review.UserID)
	return review, nil
}

func (r *postgresReviewRepository) ListReviewsByUserID(userID int) ([]domain.Review, error) {
	query := `
        SELECT id, user_id, product_id, order_id, rating, comment, created_at
        FROM reviews
        WHERE user_id = $1
        ORDER BY created_at
    `
	rows, err := r.db.Query(query, userID)
	if err != nil {
		r.log.Errorf("Failed to list reviews for user ID %d: %v", userID, err)
		return nil, fmt.Errorf("could not retrieve reviews: %w", err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		var review domain.Review
		if err := rows.Scan(
			&review.ID,
			&review.UserID,
			&review.ProductID,
			&review.OrderID,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
		); err != nil {
			r.log.Errorf("Failed to scan review row for user ID %d: %v", userID, err)
			return nil, fmt.Errorf("error scanning review data: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during reviews iteration for user ID %d: %v", userID, err)
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}

	r.log.Infof("Retrieved %d reviews for user ID %d", len(reviews), userID)
	return reviews, nil
}
