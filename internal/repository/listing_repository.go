package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"locallisting/internal/models"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

const listingColumns = `
	l.listing_id, l.owner_id, u.username AS owner_username, l.title, l.description, l.listing_type,
	l.category_id, c.name AS category_name, l.subcategory_id, s.name AS subcategory_name,
	l.price, l.price_type, l.condition, l.delivery_option, l.location, l.event_date,
	l.created_at, l.updated_at, l.is_active, l.status, l.view_count, l.favorite_count
`

const listingJoins = `
	FROM listings l
	JOIN users u ON u.user_id = l.owner_id
	LEFT JOIN categories c ON c.category_id = l.category_id
	LEFT JOIN subcategories s ON s.subcategory_id = l.subcategory_id
`

var listingOrderings = map[string]string{
	"price":          "l.price",
	"created_at":     "l.created_at",
	"view_count":     "l.view_count",
	"favorite_count": "l.favorite_count",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type listingRepository struct {
	db *sqlx.DB
}

func NewListingRepository(db *sqlx.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) Create(ctx context.Context, listing *models.Listing) error {
	if listing.ListingID == "" {
		listing.ListingID = uuid.New().String()
	}

	now := time.Now()
	listing.CreatedAt = now
	listing.UpdatedAt = now

	query := `
		INSERT INTO listings
		(listing_id, owner_id, title, description, listing_type, category_id, subcategory_id, price, price_type,
		 condition, delivery_option, location, event_date, created_at, updated_at, is_active, status)
		VALUES
		(:listing_id, :owner_id, :title, :description, :listing_type, :category_id, :subcategory_id, :price, :price_type,
		 :condition, :delivery_option, :location, :event_date, :created_at, :updated_at, :is_active, :status)
	`

	if _, err := r.db.NamedExecContext(ctx, query, listing); err != nil {
		return fmt.Errorf("error creating listing: %w", err)
	}

	return nil
}

func (r *listingRepository) GetByID(ctx context.Context, listingID string) (*models.Listing, error) {
	var listing models.Listing

	query := `SELECT ` + listingColumns + listingJoins + ` WHERE l.listing_id = $1`

	err := r.db.GetContext(ctx, &listing, query, listingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error getting listing: %w", err)
	}

	return &listing, nil
}

// Update writes the editable fields. Status changes go through UpdateStatus only.
func (r *listingRepository) Update(ctx context.Context, listing *models.Listing) error {
	listing.UpdatedAt = time.Now()

	query := `
		UPDATE listings SET
			title = :title, description = :description, listing_type = :listing_type,
			category_id = :category_id, subcategory_id = :subcategory_id, price = :price,
			price_type = :price_type, condition = :condition, delivery_option = :delivery_option,
			location = :location, event_date = :event_date, updated_at = :updated_at
		WHERE listing_id = :listing_id
	`

	result, err := r.db.NamedExecContext(ctx, query, listing)
	if err != nil {
		return fmt.Errorf("error updating listing: %w", err)
	}

	return checkAffected(result)
}

func (r *listingRepository) UpdateStatus(ctx context.Context, listingID, status string) error {
	query := `
		UPDATE listings
		SET status = $1, is_active = $2, updated_at = $3
		WHERE listing_id = $4
	`

	result, err := r.db.ExecContext(ctx, query, status, status == models.StatusActive, time.Now(), listingID)
	if err != nil {
		return fmt.Errorf("error updating listing status: %w", err)
	}

	return checkAffected(result)
}

func (r *listingRepository) Delete(ctx context.Context, listingID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM listings WHERE listing_id = $1`, listingID)
	if err != nil {
		return fmt.Errorf("error deleting listing: %w", err)
	}

	return checkAffected(result)
}

// IncrementViewCount bumps the counter in a single statement so concurrent views are never lost.
func (r *listingRepository) IncrementViewCount(ctx context.Context, listingID string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE listings SET view_count = view_count + 1 WHERE listing_id = $1`, listingID)
	if err != nil {
		return fmt.Errorf("error incrementing view count: %w", err)
	}

	return checkAffected(result)
}

// buildListingWhere turns the filter into a WHERE clause with positional arguments.
func buildListingWhere(filter ListingFilter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(args))))
	}

	if filter.MinPrice != nil {
		add("l.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		add("l.price <= ?", *filter.MaxPrice)
	}
	if filter.CategoryID != "" {
		add("l.category_id = ?", filter.CategoryID)
	}
	if filter.SubcategoryID != "" {
		add("l.subcategory_id = ?", filter.SubcategoryID)
	}
	if filter.Condition != "" {
		add("l.condition = ?", filter.Condition)
	}
	if filter.DeliveryOption != "" {
		add("l.delivery_option = ?", filter.DeliveryOption)
	}
	if filter.ListingType != "" {
		add("l.listing_type = ?", filter.ListingType)
	}
	if filter.Location != "" {
		add("l.location ILIKE ?", "%"+likeEscaper.Replace(filter.Location)+"%")
	}
	if filter.StartDate != nil {
		add("l.event_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("l.event_date <= ?", *filter.EndDate)
	}
	if filter.Search != "" {
		add(`(l.title ILIKE ? OR l.description ILIKE ? OR l.location ILIKE ?
			OR c.name ILIKE ? OR s.name ILIKE ?)`, "%"+likeEscaper.Replace(filter.Search)+"%")
	}

	if len(conds) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

// listingOrderBy maps an ordering parameter such as "-price" to SQL; unknown fields fall back to newest first.
func listingOrderBy(ordering string) string {
	direction := "ASC"
	field := ordering
	if strings.HasPrefix(field, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(field, "-")
	}

	column, ok := listingOrderings[field]
	if !ok {
		return " ORDER BY l.created_at DESC"
	}

	if column == "l.price" {
		return fmt.Sprintf(" ORDER BY %s %s NULLS LAST, l.created_at DESC", column, direction)
	}
	return fmt.Sprintf(" ORDER BY %s %s, l.created_at DESC", column, direction)
}

func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// List returns one page of listings matching filter together with the total match count.
func (r *listingRepository) List(ctx context.Context, filter ListingFilter) ([]models.Listing, int, error) {
	where, args := buildListingWhere(filter)
	page, pageSize := NormalizePage(filter.Page, filter.PageSize)

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*)`+listingJoins+where, args...); err != nil {
		return nil, 0, fmt.Errorf("error counting listings: %w", err)
	}

	query := `SELECT ` + listingColumns + listingJoins + where + listingOrderBy(filter.Ordering) +
		fmt.Sprintf(" LIMIT %d OFFSET %d", pageSize, (page-1)*pageSize)

	listings := []models.Listing{}
	if err := r.db.SelectContext(ctx, &listings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("error listing listings: %w", err)
	}

	return listings, total, nil
}

func (r *listingRepository) ListByOwner(ctx context.Context, ownerID string, activeOnly bool) ([]models.Listing, error) {
	query := `SELECT ` + listingColumns + listingJoins + ` WHERE l.owner_id = $1`
	if activeOnly {
		query += ` AND l.is_active`
	}
	query += ` ORDER BY l.created_at DESC`

	listings := []models.Listing{}
	if err := r.db.SelectContext(ctx, &listings, query, ownerID); err != nil {
		return nil, fmt.Errorf("error listing owner listings: %w", err)
	}

	return listings, nil
}

func (r *listingRepository) ListFavoritedBy(ctx context.Context, userID string) ([]models.Listing, error) {
	query := `SELECT ` + listingColumns + listingJoins + `
		JOIN listing_favorites f ON f.listing_id = l.listing_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC`

	listings := []models.Listing{}
	if err := r.db.SelectContext(ctx, &listings, query, userID); err != nil {
		return nil, fmt.Errorf("error listing favorites: %w", err)
	}

	return listings, nil
}

// ToggleFavorite flips the user's membership in the listing's favorites and returns
// whether the listing is now favorited plus the recounted favorite_count.
func (r *listingRepository) ToggleFavorite(ctx context.Context, listingID, userID string) (bool, int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, 0, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	var locked string
	err = tx.GetContext(ctx, &locked, `SELECT listing_id FROM listings WHERE listing_id = $1 FOR UPDATE`, listingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, 0, ErrNotFound
		}
		return false, 0, fmt.Errorf("error locking listing: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM listing_favorites WHERE listing_id = $1 AND user_id = $2`, listingID, userID)
	if err != nil {
		return false, 0, fmt.Errorf("error removing favorite: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return false, 0, fmt.Errorf("error checking affected rows: %w", err)
	}

	favorited := removed == 0
	if favorited {
		_, err = tx.ExecContext(ctx, `INSERT INTO listing_favorites (listing_id, user_id) VALUES ($1, $2)`, listingID, userID)
		if err != nil {
			return false, 0, fmt.Errorf("error adding favorite: %w", err)
		}
	}

	var count int
	err = tx.GetContext(ctx, &count, `
		UPDATE listings
		SET favorite_count = (SELECT COUNT(*) FROM listing_favorites WHERE listing_id = $1)
		WHERE listing_id = $1
		RETURNING favorite_count
	`, listingID)
	if err != nil {
		return false, 0, fmt.Errorf("error recounting favorites: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return false, 0, fmt.Errorf("error committing favorite toggle: %w", err)
	}

	return favorited, count, nil
}
