package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/seoulscene/magazine-api/internal/models"
	"github.com/seoulscene/magazine-api/internal/repository"
)

// categoryService is the concrete implementation of CategoryService
type categoryService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newCategoryService creates a new CategoryService
func newCategoryService(repos *repository.Repositories, log zerolog.Logger) *categoryService {
	return &categoryService{
		repos: repos,
		log:   log.With().Str("service", "category").Logger(),
	}
}

// List returns all active categories in sort order
func (s *categoryService) List(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.repos.Category.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// ListWithCounts returns active categories plus published article counts
func (s *categoryService) ListWithCounts(ctx context.Context) ([]*models.CategoryWithCount, error) {
	categories, err := s.repos.Category.ListWithCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories with counts: %w", err)
	}
	return categories, nil
}

// GetBySlug resolves an active category by slug
func (s *categoryService) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	category, err := s.repos.Category.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return nil, ErrNotFound
	}
	return category, nil
}

// Create inserts a new category. Slugs are unique across categories.
func (s *categoryService) Create(ctx context.Context, input *models.CategoryInput) (*models.Category, error) {
	exists, err := s.repos.Category.SlugExists(ctx, input.Slug)
	if err != nil {
		return nil, fmt.Errorf("failed to check category slug: %w", err)
	}
	if exists {
		return nil, ErrDuplicateSlug
	}

	now := time.Now().UTC()
	category := &models.Category{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Slug:        input.Slug,
		Description: input.Description,
		Color:       input.Color,
		Icon:        input.Icon,
		SortOrder:   input.SortOrder,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}

	if err := s.repos.Category.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.log.Info().Str("category_id", category.ID).Str("slug", category.Slug).Msg("Category created")
	return category, nil
}

// Update writes the editable fields of a category
func (s *categoryService) Update(ctx context.Context, id string, input *models.CategoryInput) (*models.Category, error) {
	existing, err := s.repos.Category.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	if input.Slug != existing.Slug {
		exists, err := s.repos.Category.SlugExists(ctx, input.Slug)
		if err != nil {
			return nil, fmt.Errorf("failed to check category slug: %w", err)
		}
		if exists {
			return nil, ErrDuplicateSlug
		}
	}

	category := *existing
	category.Name = input.Name
	category.Slug = input.Slug
	category.Description = input.Description
	category.Color = input.Color
	category.Icon = input.Icon
	category.SortOrder = input.SortOrder
	category.UpdatedAt = time.Now().UTC()
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}

	if err := s.repos.Category.Update(ctx, &category); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.log.Info().Str("category_id", category.ID).Str("slug", category.Slug).Msg("Category updated")
	return &category, nil
}

// Delete removes a category. Categories still referenced by articles
// cannot be removed.
func (s *categoryService) Delete(ctx context.Context, id string) error {
	err := s.repos.Category.Delete(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
		return ErrCategoryInUse
	}
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.log.Info().Str("category_id", id).Msg("Category deleted")
	return nil
}
