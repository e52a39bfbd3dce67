package repository

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/seoulscene/magazine-api/internal/database"
	"github.com/seoulscene/magazine-api/internal/models"
)

// categoryRepo is the concrete implementation of CategoryRepository
type categoryRepo struct {
	db *database.DB
}

// NewCategoryRepo creates a new category repository
func NewCategoryRepo(db *database.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

var categoryColumns = []string{
	"id", "name", "slug", "description", "color", "icon",
	"sort_order", "is_active", "created_at", "updated_at",
}

// List returns categories ordered by sort_order
func (r *categoryRepo) List(ctx context.Context, activeOnly bool) ([]*models.Category, error) {
	builder := psql.Select(categoryColumns...).
		From("categories").
		OrderBy("sort_order ASC, name ASC")
	if activeOnly {
		builder = builder.Where(sq.Eq{"is_active": true})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	var categories []*models.Category
	if err := r.db.SelectContext(ctx, &categories, query, args...); err != nil {
		return nil, err
	}
	return categories, nil
}

// ListWithCounts returns active categories plus their published article counts
func (r *categoryRepo) ListWithCounts(ctx context.Context) ([]*models.CategoryWithCount, error) {
	query := `
		SELECT c.id, c.name, c.slug, c.description, c.color, c.icon,
			c.sort_order, c.is_active, c.created_at, c.updated_at,
			COUNT(a.id) FILTER (WHERE a.status = 'published') AS article_count
		FROM categories c
		LEFT JOIN articles a ON a.category_id = c.id
		WHERE c.is_active = TRUE
		GROUP BY c.id
		ORDER BY c.sort_order ASC, c.name ASC
	`

	var categories []*models.CategoryWithCount
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, err
	}
	return categories, nil
}

// GetByID retrieves a category by ID
func (r *categoryRepo) GetByID(ctx context.Context, id string) (*models.Category, error) {
	query, args, err := psql.Select(categoryColumns...).
		From("categories").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var category models.Category
	err = r.db.GetContext(ctx, &category, query, args...)
	if errors.Is(err, sql.ErrNoRows) || badUUID(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// GetBySlug retrieves an active category by slug
func (r *categoryRepo) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	query, args, err := psql.Select(categoryColumns...).
		From("categories").
		Where(sq.Eq{"slug": slug, "is_active": true}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var category models.Category
	err = r.db.GetContext(ctx, &category, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// SlugExists checks if a category with the given slug exists
func (r *categoryRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM categories WHERE slug = $1)", slug).Scan(&exists)
	return exists, err
}

// Create inserts a new category
func (r *categoryRepo) Create(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (id, name, slug, description, color, icon, sort_order, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		category.ID, category.Name, category.Slug, category.Description,
		category.Color, category.Icon, category.SortOrder, category.IsActive,
		category.CreatedAt, category.UpdatedAt,
	)
	return err
}

// Update writes the editable fields of a category
func (r *categoryRepo) Update(ctx context.Context, category *models.Category) error {
	query := `
		UPDATE categories
		SET name = $2, slug = $3, description = $4, color = $5, icon = $6,
			sort_order = $7, is_active = $8, updated_at = $9
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		category.ID, category.Name, category.Slug, category.Description,
		category.Color, category.Icon, category.SortOrder, category.IsActive,
		category.UpdatedAt,
	)
	if badUUID(err) {
		return sql.ErrNoRows
	}
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a category. Fails with a foreign key violation while
// articles still reference it.
func (r *categoryRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE id = $1", id)
	if badUUID(err) {
		return sql.ErrNoRows
	}
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Count returns the total number of categories
func (r *categoryRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories").Scan(&count)
	return count, err
}
