package service

import (
	"context"

	"locallisting/internal/models"
	"locallisting/internal/repository"
)

type ProfileService interface {
	GetOwnProfile(ctx context.Context, userID string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, req repository.UpdateProfileRequest) (*models.Profile, error)
	GetPublicProfile(ctx context.Context, username string) (*models.Profile, error)
	ListUserListings(ctx context.Context, username string) ([]models.Listing, error)
}

type profileService struct {
	profileRepo repository.ProfileRepository
	listingRepo repository.ListingRepository
	imageRepo   repository.ImageRepository
}

func NewProfileService(profileRepo repository.ProfileRepository, listingRepo repository.ListingRepository,
	imageRepo repository.ImageRepository) ProfileService {
	return &profileService{
		profileRepo: profileRepo,
		listingRepo: listingRepo,
		imageRepo:   imageRepo,
	}
}

func (s *profileService) GetOwnProfile(ctx context.Context, userID string) (*models.Profile, error) {
	return s.profileRepo.GetByUserID(ctx, userID)
}

func (s *profileService) UpdateProfile(ctx context.Context, req repository.UpdateProfileRequest) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.Location != nil {
		profile.Location = *req.Location
	}

	if err = s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

// GetPublicProfile hides the email address.
func (s *profileService) GetPublicProfile(ctx context.Context, username string) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	profile.Email = ""
	return profile, nil
}

func (s *profileService) ListUserListings(ctx context.Context, username string) ([]models.Listing, error) {
	profile, err := s.profileRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	listings, err := s.listingRepo.ListByOwner(ctx, profile.UserID, true)
	if err != nil {
		return nil, err
	}

	if err = attachImages(ctx, s.imageRepo, listings); err != nil {
		return nil, err
	}

	return listings, nil
}
