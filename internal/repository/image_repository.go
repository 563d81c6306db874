package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"locallisting/internal/models"
)

type imageRepository struct {
	db *sqlx.DB
}

func NewImageRepository(db *sqlx.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Create(ctx context.Context, image *models.ListingImage) error {
	query := `
		INSERT INTO listing_images (image_id, listing_id, external_ref, image_url, created_at)
		VALUES (:image_id, :listing_id, :external_ref, :image_url, :created_at)
	`

	if image.ImageID == "" {
		image.ImageID = uuid.New().String()
	}

	if image.CreatedAt.IsZero() {
		image.CreatedAt = time.Now()
	}

	_, err := r.db.NamedExecContext(ctx, query, image)
	if err != nil {
		return fmt.Errorf("error creating image: %w", err)
	}

	return nil
}

func (r *imageRepository) GetByListingID(ctx context.Context, listingID string) ([]models.ListingImage, error) {
	images := []models.ListingImage{}

	err := r.db.SelectContext(ctx, &images, `SELECT * FROM listing_images WHERE listing_id = $1 ORDER BY created_at`, listingID)
	if err != nil {
		return nil, fmt.Errorf("error getting images: %w", err)
	}

	return images, nil
}

// GetByListingIDs loads the images of many listings in one query, keyed by listing id.
func (r *imageRepository) GetByListingIDs(ctx context.Context, listingIDs []string) (map[string][]models.ListingImage, error) {
	byListing := make(map[string][]models.ListingImage, len(listingIDs))
	if len(listingIDs) == 0 {
		return byListing, nil
	}

	var images []models.ListingImage
	err := r.db.SelectContext(ctx, &images,
		`SELECT * FROM listing_images WHERE listing_id = ANY($1) ORDER BY created_at`, pq.Array(listingIDs))
	if err != nil {
		return nil, fmt.Errorf("error getting images: %w", err)
	}

	for _, image := range images {
		byListing[image.ListingID] = append(byListing[image.ListingID], image)
	}

	return byListing, nil
}

func (r *imageRepository) Delete(ctx context.Context, imageID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM listing_images WHERE image_id = $1`, imageID)
	if err != nil {
		return fmt.Errorf("error deleting image: %w", err)
	}

	return checkAffected(result)
}

func (r *imageRepository) DeleteByListingID(ctx context.Context, listingID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM listing_images WHERE listing_id = $1`, listingID)
	if err != nil {
		return fmt.Errorf("error deleting listing images: %w", err)
	}

	return nil
}
