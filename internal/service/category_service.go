package service

import (
	"context"

	"locallisting/internal/models"
	"locallisting/internal/repository"
)

type CategoryService interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, categoryID string) (*models.Category, error)
	ListSubcategories(ctx context.Context) ([]models.Subcategory, error)
	GetSubcategory(ctx context.Context, subcategoryID string) (*models.Subcategory, error)
	ListSubcategoriesByCategory(ctx context.Context, categoryID string) ([]models.Subcategory, error)
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categoryRepo.ListCategories(ctx)
}

func (s *categoryService) GetCategory(ctx context.Context, categoryID string) (*models.Category, error) {
	return s.categoryRepo.GetCategory(ctx, categoryID)
}

func (s *categoryService) ListSubcategories(ctx context.Context) ([]models.Subcategory, error) {
	return s.categoryRepo.ListSubcategories(ctx)
}

func (s *categoryService) GetSubcategory(ctx context.Context, subcategoryID string) (*models.Subcategory, error) {
	return s.categoryRepo.GetSubcategory(ctx, subcategoryID)
}

// ListSubcategoriesByCategory returns ErrNotFound for an unknown category rather than an empty list.
func (s *categoryService) ListSubcategoriesByCategory(ctx context.Context, categoryID string) ([]models.Subcategory, error) {
	if _, err := s.categoryRepo.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	return s.categoryRepo.ListSubcategoriesByCategory(ctx, categoryID)
}
