package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"locallisting/internal/metrics"
	"locallisting/internal/models"
	"locallisting/internal/repository"
	"locallisting/internal/storage"
)

const (
	FavoriteActionAdded   = "favorited"
	FavoriteActionRemoved = "unfavorited"
)

const (
	msgRequired      = "This field is required."
	maxTitleLength   = 200
	maxLocationChars = 255
)

var maxPrice = decimal.RequireFromString("99999999.99")

type ListingPage struct {
	Count    int              `json:"count"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
	Results  []models.Listing `json:"results"`
}

type ListingService interface {
	CreateListing(ctx context.Context, req repository.CreateListingRequest) (*models.Listing, error)
	GetListing(ctx context.Context, listingID string) (*models.Listing, error)
	UpdateListing(ctx context.Context, req repository.UpdateListingRequest) (*models.Listing, error)
	UpdateStatus(ctx context.Context, listingID, userID, status string) (*models.Listing, error)
	DeleteListing(ctx context.Context, listingID, userID string) error
	ListListings(ctx context.Context, filter repository.ListingFilter) (*ListingPage, error)
	MyListings(ctx context.Context, userID string) ([]models.Listing, error)
	FavoriteListings(ctx context.Context, userID string) ([]models.Listing, error)
	ToggleFavorite(ctx context.Context, listingID, userID string) (string, *models.Listing, error)
}

type listingService struct {
	listingRepo  repository.ListingRepository
	imageRepo    repository.ImageRepository
	categoryRepo repository.CategoryRepository
	profileRepo  repository.ProfileRepository
	storage      storage.Storage
	log          *logrus.Logger
}

func NewListingService(rep *repository.Repository, storage storage.Storage, log *logrus.Logger) ListingService {
	return &listingService{
		listingRepo:  rep.Listing,
		imageRepo:    rep.Image,
		categoryRepo: rep.Category,
		profileRepo:  rep.Profile,
		storage:      storage,
		log:          log,
	}
}

// applyFields copies the provided fields onto the listing. An empty id or condition clears the value.
func applyFields(listing *models.Listing, fields repository.ListingFields) {
	if fields.Title != nil {
		listing.Title = *fields.Title
	}
	if fields.Description != nil {
		listing.Description = *fields.Description
	}
	if fields.ListingType != nil {
		listing.ListingType = *fields.ListingType
	}
	if fields.CategoryID != nil {
		listing.CategoryID = emptyToNil(*fields.CategoryID)
	}
	if fields.SubcategoryID != nil {
		listing.SubcategoryID = emptyToNil(*fields.SubcategoryID)
	}
	if fields.Price != nil {
		listing.Price = decimal.NewNullDecimal(*fields.Price)
	}
	if fields.PriceType != nil {
		listing.PriceType = *fields.PriceType
	}
	if fields.Condition != nil {
		listing.Condition = emptyToNil(*fields.Condition)
	}
	if fields.DeliveryOption != nil {
		listing.DeliveryOption = *fields.DeliveryOption
	}
	if fields.Location != nil {
		listing.Location = *fields.Location
	}
	if fields.EventDate != nil {
		eventDate := *fields.EventDate
		listing.EventDate = &eventDate
	}
}

func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func choiceError(value string) string {
	return fmt.Sprintf("%q is not a valid choice.", value)
}

// validateListing checks the merged listing. A subcategory without a category
// assigns the subcategory's category.
func (s *listingService) validateListing(ctx context.Context, listing *models.Listing) error {
	v := &ValidationError{}

	switch {
	case listing.Title == "":
		v.Add("title", msgRequired)
	case len([]rune(listing.Title)) > maxTitleLength:
		v.Add("title", fmt.Sprintf("Ensure this field has no more than %d characters.", maxTitleLength))
	}
	if listing.Description == "" {
		v.Add("description", msgRequired)
	}
	if len([]rune(listing.Location)) > maxLocationChars {
		v.Add("location", fmt.Sprintf("Ensure this field has no more than %d characters.", maxLocationChars))
	}

	if !slices.Contains(models.ListingTypes, listing.ListingType) {
		v.Add("listingType", choiceError(listing.ListingType))
	}
	if !slices.Contains(models.PriceTypes, listing.PriceType) {
		v.Add("priceType", choiceError(listing.PriceType))
	}
	if !slices.Contains(models.DeliveryOptions, listing.DeliveryOption) {
		v.Add("deliveryOption", choiceError(listing.DeliveryOption))
	}
	if listing.Condition != nil && !slices.Contains(models.Conditions, *listing.Condition) {
		v.Add("condition", choiceError(*listing.Condition))
	}

	if listing.Price.Valid {
		switch {
		case listing.Price.Decimal.IsNegative():
			v.Add("price", "Ensure this value is greater than or equal to 0.")
		case listing.Price.Decimal.GreaterThan(maxPrice):
			v.Add("price", "Ensure that there are no more than 10 digits in total.")
		}
	} else if models.PriceRequired(listing.PriceType) {
		v.Add("price", "Price is required for this price type.")
	}

	if models.ConditionRequired(listing.ListingType) && listing.Condition == nil {
		v.Add("condition", "Condition is required for item listings.")
	}
	if listing.ListingType == models.ListingTypeEvent && listing.EventDate == nil {
		v.Add("eventDate", "Event date is required for events.")
	}

	if err := s.validateTaxonomy(ctx, listing, v); err != nil {
		return err
	}

	return v.Err()
}

func (s *listingService) validateTaxonomy(ctx context.Context, listing *models.Listing, v *ValidationError) error {
	if listing.CategoryID != nil {
		if _, err := uuid.Parse(*listing.CategoryID); err != nil {
			v.Add("category", "Invalid category.")
		} else if _, err = s.categoryRepo.GetCategory(ctx, *listing.CategoryID); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			v.Add("category", "Invalid category.")
		}
	}

	if listing.SubcategoryID == nil {
		return nil
	}

	if _, err := uuid.Parse(*listing.SubcategoryID); err != nil {
		v.Add("subcategory", "Invalid subcategory.")
		return nil
	}

	subcategory, err := s.categoryRepo.GetSubcategory(ctx, *listing.SubcategoryID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		v.Add("subcategory", "Invalid subcategory.")
		return nil
	}

	if listing.CategoryID == nil {
		categoryID := subcategory.CategoryID
		listing.CategoryID = &categoryID
	} else if *listing.CategoryID != subcategory.CategoryID {
		v.Add("subcategory", "Subcategory does not belong to the selected category.")
	}

	return nil
}

func (s *listingService) CreateListing(ctx context.Context, req repository.CreateListingRequest) (*models.Listing, error) {
	listing := &models.Listing{
		OwnerID:        req.OwnerID,
		ListingType:    models.ListingTypeOther,
		PriceType:      models.PriceTypeFixed,
		DeliveryOption: models.DeliveryNA,
	}
	applyFields(listing, req.Fields)
	listing.SetStatus(models.StatusActive)

	if err := s.validateListing(ctx, listing); err != nil {
		return nil, err
	}

	if err := s.listingRepo.Create(ctx, listing); err != nil {
		return nil, err
	}

	for _, upload := range req.Images {
		if _, err := s.addImage(ctx, listing.ListingID, upload); err != nil {
			s.discardListing(ctx, listing.ListingID)
			return nil, err
		}
	}

	metrics.ListingCreated()
	s.refreshProfileCounts(ctx, listing.OwnerID)

	return s.reload(ctx, listing.ListingID)
}

// GetListing counts a view and returns the listing with its images.
func (s *listingService) GetListing(ctx context.Context, listingID string) (*models.Listing, error) {
	if err := s.listingRepo.IncrementViewCount(ctx, listingID); err != nil {
		return nil, err
	}

	return s.reload(ctx, listingID)
}

func (s *listingService) getOwned(ctx context.Context, listingID, userID string) (*models.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if listing.OwnerID != userID {
		return nil, ErrForbidden
	}

	return listing, nil
}

func (s *listingService) UpdateListing(ctx context.Context, req repository.UpdateListingRequest) (*models.Listing, error) {
	listing, err := s.getOwned(ctx, req.ListingID, req.UserID)
	if err != nil {
		return nil, err
	}

	if !req.Partial {
		v := &ValidationError{}
		if req.Fields.Title == nil {
			v.Add("title", msgRequired)
		}
		if req.Fields.Description == nil {
			v.Add("description", msgRequired)
		}
		if err = v.Err(); err != nil {
			return nil, err
		}
	}

	applyFields(listing, req.Fields)

	if err = s.validateListing(ctx, listing); err != nil {
		return nil, err
	}

	if err = s.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}

	if req.ManageImages {
		if err = s.syncImages(ctx, listing.ListingID, req.ExistingImages, req.NewImages); err != nil {
			return nil, err
		}
	}

	s.refreshProfileCounts(ctx, listing.OwnerID)

	return s.reload(ctx, listing.ListingID)
}

// syncImages deletes every image whose id is not in keep and uploads the new files.
func (s *listingService) syncImages(ctx context.Context, listingID string, keep []string, uploads []storage.Upload) error {
	current, err := s.imageRepo.GetByListingID(ctx, listingID)
	if err != nil {
		return err
	}

	for _, image := range current {
		if slices.Contains(keep, image.ImageID) {
			continue
		}
		if err = s.deleteImage(ctx, image); err != nil {
			return err
		}
	}

	for _, upload := range uploads {
		if _, err = s.addImage(ctx, listingID, upload); err != nil {
			return err
		}
	}

	return nil
}

func (s *listingService) UpdateStatus(ctx context.Context, listingID, userID, status string) (*models.Listing, error) {
	if status == "" {
		return nil, NewValidationError("status", "Status is required.")
	}
	if !slices.Contains(models.ListingStatuses, status) {
		return nil, NewValidationError("status", choiceError(status))
	}

	listing, err := s.getOwned(ctx, listingID, userID)
	if err != nil {
		return nil, err
	}

	if err = s.listingRepo.UpdateStatus(ctx, listing.ListingID, status); err != nil {
		return nil, err
	}

	s.refreshProfileCounts(ctx, listing.OwnerID)

	return s.reload(ctx, listing.ListingID)
}

// DeleteListing removes the listing, its hosted images and its image rows. Host failures are only logged.
func (s *listingService) DeleteListing(ctx context.Context, listingID, userID string) error {
	listing, err := s.getOwned(ctx, listingID, userID)
	if err != nil {
		return err
	}

	images, err := s.imageRepo.GetByListingID(ctx, listingID)
	if err != nil {
		return err
	}

	for _, image := range images {
		s.removeHostedImage(ctx, image)
	}

	if err = s.imageRepo.DeleteByListingID(ctx, listingID); err != nil {
		return err
	}

	if err = s.listingRepo.Delete(ctx, listingID); err != nil {
		return err
	}

	s.refreshProfileCounts(ctx, listing.OwnerID)

	return nil
}

func (s *listingService) ListListings(ctx context.Context, filter repository.ListingFilter) (*ListingPage, error) {
	filter.Page, filter.PageSize = repository.NormalizePage(filter.Page, filter.PageSize)

	listings, total, err := s.listingRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	if err = attachImages(ctx, s.imageRepo, listings); err != nil {
		return nil, err
	}

	return &ListingPage{
		Count:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Results:  listings,
	}, nil
}

func (s *listingService) MyListings(ctx context.Context, userID string) ([]models.Listing, error) {
	listings, err := s.listingRepo.ListByOwner(ctx, userID, false)
	if err != nil {
		return nil, err
	}

	if err = attachImages(ctx, s.imageRepo, listings); err != nil {
		return nil, err
	}

	return listings, nil
}

func (s *listingService) FavoriteListings(ctx context.Context, userID string) ([]models.Listing, error) {
	listings, err := s.listingRepo.ListFavoritedBy(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err = attachImages(ctx, s.imageRepo, listings); err != nil {
		return nil, err
	}

	return listings, nil
}

// ToggleFavorite returns "favorited" or "unfavorited" and the listing with its recounted favorite_count.
func (s *listingService) ToggleFavorite(ctx context.Context, listingID, userID string) (string, *models.Listing, error) {
	favorited, count, err := s.listingRepo.ToggleFavorite(ctx, listingID, userID)
	if err != nil {
		return "", nil, err
	}

	action := FavoriteActionRemoved
	if favorited {
		action = FavoriteActionAdded
	}
	metrics.FavoriteToggled(action)

	listing, err := s.reload(ctx, listingID)
	if err != nil {
		return "", nil, err
	}
	listing.FavoriteCount = count

	return action, listing, nil
}

func (s *listingService) reload(ctx context.Context, listingID string) (*models.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	images, err := s.imageRepo.GetByListingID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	listing.Images = images

	return listing, nil
}

func (s *listingService) addImage(ctx context.Context, listingID string, upload storage.Upload) (*models.ListingImage, error) {
	objectName, imageURL, err := s.storage.UploadImage(ctx, listingID, upload)
	metrics.ImageOperation("upload", err)
	if err != nil {
		return nil, fmt.Errorf("error uploading image: %w", err)
	}

	image := &models.ListingImage{
		ListingID:   listingID,
		ExternalRef: objectName,
		ImageURL:    imageURL,
	}

	if err = s.imageRepo.Create(ctx, image); err != nil {
		s.removeHostedImage(ctx, *image)
		return nil, fmt.Errorf("error saving image: %w", err)
	}

	return image, nil
}

func (s *listingService) deleteImage(ctx context.Context, image models.ListingImage) error {
	s.removeHostedImage(ctx, image)

	err := s.imageRepo.Delete(ctx, image.ImageID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	return nil
}

func (s *listingService) removeHostedImage(ctx context.Context, image models.ListingImage) {
	err := s.storage.DeleteImage(ctx, image.ExternalRef)
	metrics.ImageOperation("delete", err)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"image_id":     image.ImageID,
			"external_ref": image.ExternalRef,
		}).Warn("failed to delete image from host")
	}
}

// discardListing undoes a create whose image upload failed.
func (s *listingService) discardListing(ctx context.Context, listingID string) {
	images, err := s.imageRepo.GetByListingID(ctx, listingID)
	if err == nil {
		for _, image := range images {
			s.removeHostedImage(ctx, image)
		}
	}

	if err = s.listingRepo.Delete(ctx, listingID); err != nil {
		s.log.WithError(err).WithField("listing_id", listingID).Error("failed to discard listing")
	}
}

func (s *listingService) refreshProfileCounts(ctx context.Context, userID string) {
	if err := s.profileRepo.UpdateListingCounts(ctx, userID); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("failed to update profile listing counts")
	}
}

// attachImages loads images for all listings with one query.
func attachImages(ctx context.Context, imageRepo repository.ImageRepository, listings []models.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	ids := make([]string, len(listings))
	for i := range listings {
		ids[i] = listings[i].ListingID
	}

	byListing, err := imageRepo.GetByListingIDs(ctx, ids)
	if err != nil {
		return err
	}

	for i := range listings {
		images := byListing[listings[i].ListingID]
		if images == nil {
			images = []models.ListingImage{}
		}
		listings[i].Images = images
	}

	return nil
}
