package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"locallisting/internal/models"
)

type categoryRepository struct {
	db *sqlx.DB
}

func NewCategoryRepository(db *sqlx.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}

	err := r.db.SelectContext(ctx, &categories, `SELECT category_id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("error listing categories: %w", err)
	}

	return categories, nil
}

func (r *categoryRepository) GetCategory(ctx context.Context, categoryID string) (*models.Category, error) {
	var category models.Category

	err := r.db.GetContext(ctx, &category, `SELECT category_id, name FROM categories WHERE category_id = $1`, categoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error getting category: %w", err)
	}

	return &category, nil
}

func (r *categoryRepository) ListSubcategories(ctx context.Context) ([]models.Subcategory, error) {
	subcategories := []models.Subcategory{}

	err := r.db.SelectContext(ctx, &subcategories, `SELECT subcategory_id, name, category_id FROM subcategories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("error listing subcategories: %w", err)
	}

	return subcategories, nil
}

func (r *categoryRepository) GetSubcategory(ctx context.Context, subcategoryID string) (*models.Subcategory, error) {
	var subcategory models.Subcategory

	err := r.db.GetContext(ctx, &subcategory,
		`SELECT subcategory_id, name, category_id FROM subcategories WHERE subcategory_id = $1`, subcategoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error getting subcategory: %w", err)
	}

	return &subcategory, nil
}

func (r *categoryRepository) ListSubcategoriesByCategory(ctx context.Context, categoryID string) ([]models.Subcategory, error) {
	subcategories := []models.Subcategory{}

	err := r.db.SelectContext(ctx, &subcategories,
		`SELECT subcategory_id, name, category_id FROM subcategories WHERE category_id = $1 ORDER BY name`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("error listing subcategories: %w", err)
	}

	return subcategories, nil
}
