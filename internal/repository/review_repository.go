package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"locallisting/internal/models"
)

type reviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepository(db *sqlx.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

const reviewSelect = `
	SELECT r.review_id, r.reviewer_id, u.username AS reviewer_username, r.reviewed_user_id,
		r.rating, r.content, r.created_at
	FROM reviews r
	JOIN users u ON u.user_id = r.reviewer_id
`

// Upsert writes the reviewer's review of the user, overwriting rating and content when
// one already exists. The bool reports whether a new row was inserted.
func (r *reviewRepository) Upsert(ctx context.Context, review *models.Review) (bool, error) {
	if review.ReviewID == "" {
		review.ReviewID = uuid.New().String()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now()
	}

	var result struct {
		ReviewID  string    `db:"review_id"`
		CreatedAt time.Time `db:"created_at"`
		Inserted  bool      `db:"inserted"`
	}

	err := r.db.GetContext(ctx, &result, `
		INSERT INTO reviews (review_id, reviewer_id, reviewed_user_id, rating, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (reviewer_id, reviewed_user_id)
		DO UPDATE SET rating = EXCLUDED.rating, content = EXCLUDED.content
		RETURNING review_id, created_at, (xmax = 0) AS inserted
	`, review.ReviewID, review.ReviewerID, review.ReviewedUserID, review.Rating, review.Content, review.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("error saving review: %w", err)
	}

	review.ReviewID = result.ReviewID
	review.CreatedAt = result.CreatedAt

	return result.Inserted, nil
}

func (r *reviewRepository) get(ctx context.Context, where string, args ...interface{}) (*models.Review, error) {
	var review models.Review

	err := r.db.GetContext(ctx, &review, reviewSelect+where, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error getting review: %w", err)
	}

	return &review, nil
}

func (r *reviewRepository) GetByID(ctx context.Context, reviewID string) (*models.Review, error) {
	return r.get(ctx, `WHERE r.review_id = $1`, reviewID)
}

func (r *reviewRepository) GetByPair(ctx context.Context, reviewerID, reviewedUserID string) (*models.Review, error) {
	return r.get(ctx, `WHERE r.reviewer_id = $1 AND r.reviewed_user_id = $2`, reviewerID, reviewedUserID)
}

func (r *reviewRepository) ListForUser(ctx context.Context, reviewedUserID string) ([]models.Review, error) {
	reviews := []models.Review{}

	err := r.db.SelectContext(ctx, &reviews, reviewSelect+`WHERE r.reviewed_user_id = $1 ORDER BY r.created_at DESC`, reviewedUserID)
	if err != nil {
		return nil, fmt.Errorf("error listing reviews: %w", err)
	}

	return reviews, nil
}

func (r *reviewRepository) Update(ctx context.Context, review *models.Review) error {
	result, err := r.db.NamedExecContext(ctx, `
		UPDATE reviews SET rating = :rating, content = :content
		WHERE review_id = :review_id
	`, review)
	if err != nil {
		return fmt.Errorf("error updating review: %w", err)
	}

	return checkAffected(result)
}

func (r *reviewRepository) Delete(ctx context.Context, reviewID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE review_id = $1`, reviewID)
	if err != nil {
		return fmt.Errorf("error deleting review: %w", err)
	}

	return checkAffected(result)
}
