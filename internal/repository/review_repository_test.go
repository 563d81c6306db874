package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locallisting/internal/models"
)

func TestReviewRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := NewReviewRepository(db)
	created := time.Now().Add(-time.Hour)

	upsert := regexp.QuoteMeta("ON CONFLICT (reviewer_id, reviewed_user_id) DO UPDATE SET rating = EXCLUDED.rating")

	t.Run("first submission inserts", func(t *testing.T) {
		review := &models.Review{ReviewerID: "u-1", ReviewedUserID: "u-2", Rating: 4, Content: "Great seller"}

		mock.ExpectQuery(upsert).
			WithArgs(sqlmock.AnyArg(), "u-1", "u-2", 4, "Great seller", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"review_id", "created_at", "inserted"}).AddRow("r-1", created, true))

		inserted, err := repo.Upsert(ctx, review)

		require.NoError(t, err)
		assert.True(t, inserted)
		assert.Equal(t, "r-1", review.ReviewID)
	})

	t.Run("second submission for the same pair updates", func(t *testing.T) {
		review := &models.Review{ReviewerID: "u-1", ReviewedUserID: "u-2", Rating: 2, Content: "Changed my mind"}

		mock.ExpectQuery(upsert).
			WithArgs(sqlmock.AnyArg(), "u-1", "u-2", 2, "Changed my mind", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"review_id", "created_at", "inserted"}).AddRow("r-1", created, false))

		inserted, err := repo.Upsert(ctx, review)

		require.NoError(t, err)
		assert.False(t, inserted)
		assert.Equal(t, "r-1", review.ReviewID)
		assert.True(t, review.CreatedAt.Equal(created))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReviewRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.review_id = $1")).
		WithArgs("r-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"review_id", "reviewer_id", "reviewer_username", "reviewed_user_id", "rating", "content", "created_at",
		}).AddRow("r-1", "u-1", "alice", "u-2", 5, "Smooth deal", time.Now()))

	review, err := repo.GetByID(context.Background(), "r-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", review.ReviewerUsername)
	assert.Equal(t, 5, review.Rating)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.review_id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Delete_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReviewRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM reviews WHERE review_id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "missing"), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
