package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"locallisting/internal/models"
	"locallisting/internal/repository"
)

func newTestReviewService() (*mockRepos, ReviewService) {
	m, rep := newMockRepos()
	return m, NewReviewService(rep)
}

func TestSubmitReview_Validation(t *testing.T) {
	tests := []struct {
		name  string
		req   repository.SubmitReviewRequest
		field string
	}{
		{
			name:  "self review",
			req:   repository.SubmitReviewRequest{ReviewerID: "u1", ReviewedUserID: "u1", Rating: 5, Content: "great"},
			field: "reviewedUser",
		},
		{
			name:  "rating too high",
			req:   repository.SubmitReviewRequest{ReviewerID: "u1", ReviewedUserID: "u2", Rating: 6, Content: "great"},
			field: "rating",
		},
		{
			name:  "rating zero",
			req:   repository.SubmitReviewRequest{ReviewerID: "u1", ReviewedUserID: "u2", Rating: 0, Content: "great"},
			field: "rating",
		},
		{
			name:  "empty content",
			req:   repository.SubmitReviewRequest{ReviewerID: "u1", ReviewedUserID: "u2", Rating: 3},
			field: "content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, svc := newTestReviewService()

			_, _, err := svc.SubmitReview(context.Background(), tt.req)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
			m.review.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
		})
	}
}

func TestSubmitReview_UnknownUser(t *testing.T) {
	m, svc := newTestReviewService()
	m.user.On("GetUserByID", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)

	_, _, err := svc.SubmitReview(context.Background(), repository.SubmitReviewRequest{
		ReviewerID: "u1", ReviewedUserID: "ghost", Rating: 4, Content: "ok",
	})

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitReview_UpsertRecalculatesRating(t *testing.T) {
	tests := []struct {
		name    string
		created bool
	}{
		{name: "first review", created: true},
		{name: "overwrite", created: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			m, svc := newTestReviewService()
			m.user.On("GetUserByID", mock.Anything, "u2").Return(&models.User{UserID: "u2"}, nil)
			m.review.On("Upsert", mock.Anything, mock.MatchedBy(func(r *models.Review) bool {
				return r.ReviewerID == "u1" && r.ReviewedUserID == "u2" && r.Rating == 4
			})).Run(func(args mock.Arguments) {
				args.Get(1).(*models.Review).ReviewID = "rev-1"
			}).Return(tt.created, nil)
			m.profile.On("RecalcRating", mock.Anything, "u2").Return(nil)
			m.review.On("GetByID", mock.Anything, "rev-1").
				Return(&models.Review{ReviewID: "rev-1", ReviewerUsername: "alice", Rating: 4}, nil)

			// Act
			review, created, err := svc.SubmitReview(context.Background(), repository.SubmitReviewRequest{
				ReviewerID: "u1", ReviewedUserID: "u2", Rating: 4, Content: "smooth deal",
			})

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.created, created)
			assert.Equal(t, "alice", review.ReviewerUsername)
			m.profile.AssertExpectations(t)
		})
	}
}

func TestUpdateReview_OnlyReviewer(t *testing.T) {
	m, svc := newTestReviewService()
	m.review.On("GetByID", mock.Anything, "rev-1").Return(&models.Review{ReviewID: "rev-1", ReviewerID: "u1"}, nil)
	rating := 2

	_, err := svc.UpdateReview(context.Background(), repository.UpdateReviewRequest{
		ReviewID: "rev-1", UserID: "u3", Rating: &rating,
	})

	assert.ErrorIs(t, err, ErrForbidden)
	m.review.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateReview_PartialKeepsContent(t *testing.T) {
	m, svc := newTestReviewService()
	m.review.On("GetByID", mock.Anything, "rev-1").
		Return(&models.Review{ReviewID: "rev-1", ReviewerID: "u1", ReviewedUserID: "u2", Rating: 5, Content: "great"}, nil)
	m.review.On("Update", mock.Anything, mock.MatchedBy(func(r *models.Review) bool {
		return r.Rating == 2 && r.Content == "great"
	})).Return(nil)
	m.profile.On("RecalcRating", mock.Anything, "u2").Return(nil)
	rating := 2

	review, err := svc.UpdateReview(context.Background(), repository.UpdateReviewRequest{
		ReviewID: "rev-1", UserID: "u1", Rating: &rating,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, review.Rating)
	m.review.AssertExpectations(t)
	m.profile.AssertExpectations(t)
}

func TestDeleteReview_RecalculatesRating(t *testing.T) {
	m, svc := newTestReviewService()
	m.review.On("GetByID", mock.Anything, "rev-1").
		Return(&models.Review{ReviewID: "rev-1", ReviewerID: "u1", ReviewedUserID: "u2"}, nil)
	m.review.On("Delete", mock.Anything, "rev-1").Return(nil)
	m.profile.On("RecalcRating", mock.Anything, "u2").Return(nil)

	err := svc.DeleteReview(context.Background(), "rev-1", "u1")

	require.NoError(t, err)
	m.profile.AssertExpectations(t)
}

func TestListForUser_UnknownUser(t *testing.T) {
	m, svc := newTestReviewService()
	m.user.On("GetUserByID", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)

	_, err := svc.ListForUser(context.Background(), "ghost")

	assert.ErrorIs(t, err, ErrNotFound)
}
