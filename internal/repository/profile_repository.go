package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"locallisting/internal/models"
)

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) ProfileRepository {
	return &profileRepository{db: db}
}

const profileSelect = `
	SELECT p.user_id, u.username, u.email, p.bio, p.location, p.date_joined,
		p.total_listings, p.active_listings, p.rating, p.num_ratings
	FROM profiles p
	JOIN users u ON u.user_id = p.user_id
`

func (r *profileRepository) get(ctx context.Context, where string, arg interface{}) (*models.Profile, error) {
	var profile models.Profile

	err := r.db.GetContext(ctx, &profile, profileSelect+where, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error getting profile: %w", err)
	}

	return &profile, nil
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	return r.get(ctx, `WHERE p.user_id = $1`, userID)
}

func (r *profileRepository) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	return r.get(ctx, `WHERE u.username = $1`, username)
}

func (r *profileRepository) Update(ctx context.Context, profile *models.Profile) error {
	query := `
		UPDATE profiles
		SET bio = :bio, location = :location
		WHERE user_id = :user_id
	`

	result, err := r.db.NamedExecContext(ctx, query, profile)
	if err != nil {
		return fmt.Errorf("error updating profile: %w", err)
	}

	return checkAffected(result)
}

// UpdateListingCounts recomputes total and active listing counts from the listings table.
func (r *profileRepository) UpdateListingCounts(ctx context.Context, userID string) error {
	query := `
		UPDATE profiles SET
			total_listings = (SELECT COUNT(*) FROM listings WHERE owner_id = $1),
			active_listings = (SELECT COUNT(*) FROM listings WHERE owner_id = $1 AND is_active)
		WHERE user_id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("error updating listing counts: %w", err)
	}

	return nil
}

// RecalcRating sets rating to the average of received reviews and num_ratings to their count.
func (r *profileRepository) RecalcRating(ctx context.Context, userID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	var stats struct {
		Average float64 `db:"average"`
		Count   int     `db:"count"`
	}

	err = tx.GetContext(ctx, &stats, `
		SELECT COALESCE(AVG(rating), 0)::float8 AS average, COUNT(*) AS count
		FROM reviews WHERE reviewed_user_id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("error aggregating reviews: %w", err)
	}

	_, err = tx.ExecContext(ctx, `UPDATE profiles SET rating = ROUND($1::numeric, 2), num_ratings = $2 WHERE user_id = $3`,
		stats.Average, stats.Count, userID)
	if err != nil {
		return fmt.Errorf("error updating rating: %w", err)
	}

	return tx.Commit()
}
