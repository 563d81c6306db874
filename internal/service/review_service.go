package service

import (
	"context"
	"strings"

	"locallisting/internal/metrics"
	"locallisting/internal/models"
	"locallisting/internal/repository"
)

const (
	minRating = 1
	maxRating = 5
)

type ReviewService interface {
	ListForUser(ctx context.Context, reviewedUserID string) ([]models.Review, error)
	SubmitReview(ctx context.Context, req repository.SubmitReviewRequest) (*models.Review, bool, error)
	GetReview(ctx context.Context, reviewID, userID string) (*models.Review, error)
	UpdateReview(ctx context.Context, req repository.UpdateReviewRequest) (*models.Review, error)
	DeleteReview(ctx context.Context, reviewID, userID string) error
	GetByReviewer(ctx context.Context, reviewedUserID, reviewerID string) (*models.Review, error)
}

type reviewService struct {
	reviewRepo  repository.ReviewRepository
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
}

func NewReviewService(rep *repository.Repository) ReviewService {
	return &reviewService{
		reviewRepo:  rep.Review,
		userRepo:    rep.User,
		profileRepo: rep.Profile,
	}
}

func validateReview(rating int, content string, v *ValidationError) {
	if rating < minRating || rating > maxRating {
		v.Add("rating", "Rating must be between 1 and 5.")
	}
	if strings.TrimSpace(content) == "" {
		v.Add("content", msgRequired)
	}
}

func (s *reviewService) ListForUser(ctx context.Context, reviewedUserID string) ([]models.Review, error) {
	if _, err := s.userRepo.GetUserByID(ctx, reviewedUserID); err != nil {
		return nil, err
	}

	return s.reviewRepo.ListForUser(ctx, reviewedUserID)
}

// SubmitReview creates the reviewer's review of the user or overwrites the existing one.
// The bool reports creation.
func (s *reviewService) SubmitReview(ctx context.Context, req repository.SubmitReviewRequest) (*models.Review, bool, error) {
	v := &ValidationError{}
	if req.ReviewerID == req.ReviewedUserID {
		v.Add("reviewedUser", "You cannot review yourself.")
	}
	validateReview(req.Rating, req.Content, v)
	if err := v.Err(); err != nil {
		return nil, false, err
	}

	if _, err := s.userRepo.GetUserByID(ctx, req.ReviewedUserID); err != nil {
		return nil, false, err
	}

	review := &models.Review{
		ReviewerID:     req.ReviewerID,
		ReviewedUserID: req.ReviewedUserID,
		Rating:         req.Rating,
		Content:        req.Content,
	}

	created, err := s.reviewRepo.Upsert(ctx, review)
	if err != nil {
		return nil, false, err
	}

	metrics.ReviewSubmitted(created)

	if err = s.profileRepo.RecalcRating(ctx, req.ReviewedUserID); err != nil {
		return nil, false, err
	}

	saved, err := s.reviewRepo.GetByID(ctx, review.ReviewID)
	if err != nil {
		return nil, false, err
	}

	return saved, created, nil
}

func (s *reviewService) getOwn(ctx context.Context, reviewID, userID string) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	if review.ReviewerID != userID {
		return nil, ErrForbidden
	}

	return review, nil
}

func (s *reviewService) GetReview(ctx context.Context, reviewID, userID string) (*models.Review, error) {
	return s.getOwn(ctx, reviewID, userID)
}

func (s *reviewService) UpdateReview(ctx context.Context, req repository.UpdateReviewRequest) (*models.Review, error) {
	review, err := s.getOwn(ctx, req.ReviewID, req.UserID)
	if err != nil {
		return nil, err
	}

	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.Content != nil {
		review.Content = *req.Content
	}

	v := &ValidationError{}
	validateReview(review.Rating, review.Content, v)
	if err = v.Err(); err != nil {
		return nil, err
	}

	if err = s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}

	if err = s.profileRepo.RecalcRating(ctx, review.ReviewedUserID); err != nil {
		return nil, err
	}

	return review, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, reviewID, userID string) error {
	review, err := s.getOwn(ctx, reviewID, userID)
	if err != nil {
		return err
	}

	if err = s.reviewRepo.Delete(ctx, reviewID); err != nil {
		return err
	}

	return s.profileRepo.RecalcRating(ctx, review.ReviewedUserID)
}

func (s *reviewService) GetByReviewer(ctx context.Context, reviewedUserID, reviewerID string) (*models.Review, error) {
	return s.reviewRepo.GetByPair(ctx, reviewerID, reviewedUserID)
}
