package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/seoulscene/magazine-api/internal/database"
	"github.com/seoulscene/magazine-api/internal/models"
)

// psql builds queries with PostgreSQL-style $N placeholders
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	db *database.DB
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *database.DB) ArticleRepository {
	return &articleRepo{db: db}
}

// articleRow is the flat scan target for the article/category join
type articleRow struct {
	models.Article
	CatID          string    `db:"cat_id"`
	CatName        string    `db:"cat_name"`
	CatSlug        string    `db:"cat_slug"`
	CatDescription string    `db:"cat_description"`
	CatColor       string    `db:"cat_color"`
	CatIcon        string    `db:"cat_icon"`
	CatSortOrder   int       `db:"cat_sort_order"`
	CatIsActive    bool      `db:"cat_is_active"`
	CatCreatedAt   time.Time `db:"cat_created_at"`
	CatUpdatedAt   time.Time `db:"cat_updated_at"`
}

func (r *articleRow) toModel() *models.ArticleWithCategory {
	return &models.ArticleWithCategory{
		Article: r.Article,
		Category: &models.Category{
			ID:          r.CatID,
			Name:        r.CatName,
			Slug:        r.CatSlug,
			Description: r.CatDescription,
			Color:       r.CatColor,
			Icon:        r.CatIcon,
			SortOrder:   r.CatSortOrder,
			IsActive:    r.CatIsActive,
			CreatedAt:   r.CatCreatedAt,
			UpdatedAt:   r.CatUpdatedAt,
		},
	}
}

var articleJoinColumns = []string{
	"a.id", "a.title", "a.slug", "a.content", "a.excerpt", "a.images",
	"a.category_id", "a.region", "a.views", "a.likes", "a.status",
	"a.meta_title", "a.meta_description", "a.created_at", "a.updated_at", "a.published_at",
	"c.id AS cat_id", "c.name AS cat_name", "c.slug AS cat_slug",
	"c.description AS cat_description", "c.color AS cat_color", "c.icon AS cat_icon",
	"c.sort_order AS cat_sort_order", "c.is_active AS cat_is_active",
	"c.created_at AS cat_created_at", "c.updated_at AS cat_updated_at",
}

// articleFilters translates a filter specification into WHERE predicates.
// Public callers get published-only by default; AllStatuses lifts the
// gate for admin listings.
func articleFilters(p models.ListParams) []sq.Sqlizer {
	var conds []sq.Sqlizer

	if p.Status != "" {
		conds = append(conds, sq.Eq{"a.status": p.Status})
	} else if !p.AllStatuses {
		conds = append(conds, sq.Eq{"a.status": models.StatusPublished})
	}

	if p.CategoryID != "" {
		conds = append(conds, sq.Eq{"a.category_id": p.CategoryID})
	}
	if p.Region != "" {
		conds = append(conds, sq.Eq{"a.region": p.Region})
	}
	if p.Search != "" {
		pattern := "%" + p.Search + "%"
		conds = append(conds, sq.Or{
			sq.ILike{"a.title": pattern},
			sq.ILike{"a.content": pattern},
			sq.ILike{"a.excerpt": pattern},
		})
	}

	return conds
}

// articleOrder maps a sort key to its ORDER BY clause. The article id
// is always the tie-break so equal sort keys page deterministically.
func articleOrder(sortBy string) string {
	switch sortBy {
	case models.SortPopular:
		return "a.views DESC, a.id DESC"
	case models.SortOldest:
		return "a.created_at ASC, a.id ASC"
	default:
		return "a.created_at DESC, a.id DESC"
	}
}

// List returns one page of articles matching the filter specification
// plus the total match count across all pages.
func (r *articleRepo) List(ctx context.Context, p models.ListParams) ([]*models.ArticleWithCategory, int, error) {
	conds := articleFilters(p)

	countQuery := psql.Select("COUNT(*)").From("articles a")
	for _, c := range conds {
		countQuery = countQuery.Where(c)
	}

	countSQL, countArgs, err := countQuery.ToSql()
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, err
	}

	query := psql.Select(articleJoinColumns...).
		From("articles a").
		Join("categories c ON c.id = a.category_id").
		OrderBy(articleOrder(p.SortBy)).
		Limit(uint64(p.PageSize)).
		Offset(uint64(p.Offset))
	for _, c := range conds {
		query = query.Where(c)
	}

	querySQL, queryArgs, err := query.ToSql()
	if err != nil {
		return nil, 0, err
	}

	var rows []articleRow
	if err := r.db.SelectContext(ctx, &rows, querySQL, queryArgs...); err != nil {
		return nil, 0, err
	}

	articles := make([]*models.ArticleWithCategory, 0, len(rows))
	for i := range rows {
		articles = append(articles, rows[i].toModel())
	}

	return articles, total, nil
}

// GetByID retrieves an article with its category by ID
func (r *articleRepo) GetByID(ctx context.Context, id string) (*models.ArticleWithCategory, error) {
	query, args, err := psql.Select(articleJoinColumns...).
		From("articles a").
		Join("categories c ON c.id = a.category_id").
		Where(sq.Eq{"a.id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var row articleRow
	err = r.db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) || badUUID(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return row.toModel(), nil
}

// GetBySlug retrieves an article with its category by slug
func (r *articleRepo) GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.ArticleWithCategory, error) {
	builder := psql.Select(articleJoinColumns...).
		From("articles a").
		Join("categories c ON c.id = a.category_id").
		Where(sq.Eq{"a.slug": slug})
	if publishedOnly {
		builder = builder.Where(sq.Eq{"a.status": models.StatusPublished})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	var row articleRow
	err = r.db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return row.toModel(), nil
}

// GetRelated returns published articles from the same category,
// excluding the article itself, newest first.
func (r *articleRepo) GetRelated(ctx context.Context, articleID, categoryID string, limit int) ([]*models.ArticleWithCategory, error) {
	query, args, err := psql.Select(articleJoinColumns...).
		From("articles a").
		Join("categories c ON c.id = a.category_id").
		Where(sq.Eq{"a.category_id": categoryID}).
		Where(sq.Eq{"a.status": models.StatusPublished}).
		Where(sq.NotEq{"a.id": articleID}).
		OrderBy("a.created_at DESC, a.id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []articleRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	articles := make([]*models.ArticleWithCategory, 0, len(rows))
	for i := range rows {
		articles = append(articles, rows[i].toModel())
	}
	return articles, nil
}

// Create inserts a new article
func (r *articleRepo) Create(ctx context.Context, article *models.Article) error {
	query := `
		INSERT INTO articles (id, title, slug, content, excerpt, images, category_id, region,
			views, likes, status, meta_title, meta_description, created_at, updated_at, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := r.db.ExecContext(ctx, query,
		article.ID, article.Title, article.Slug, article.Content, article.Excerpt,
		article.Images, article.CategoryID, article.Region,
		article.Views, article.Likes, article.Status,
		article.MetaTitle, article.MetaDescription,
		article.CreatedAt, article.UpdatedAt, article.PublishedAt,
	)
	return err
}

// Update writes the editable fields of an article
func (r *articleRepo) Update(ctx context.Context, article *models.Article) error {
	query := `
		UPDATE articles
		SET title = $2, slug = $3, content = $4, excerpt = $5, images = $6,
			category_id = $7, region = $8, status = $9, meta_title = $10,
			meta_description = $11, updated_at = $12, published_at = $13
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		article.ID, article.Title, article.Slug, article.Content, article.Excerpt,
		article.Images, article.CategoryID, article.Region, article.Status,
		article.MetaTitle, article.MetaDescription, article.UpdatedAt, article.PublishedAt,
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

// Delete removes an article and its share history
func (r *articleRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM shares WHERE article_id = $1", id); err != nil {
		if badUUID(err) {
			return sql.ErrNoRows
		}
		return err
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM articles WHERE id = $1", id)
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

	return tx.Commit()
}

// IncrementViews bumps the view counter in a single atomic statement
// and returns the new value.
func (r *articleRepo) IncrementViews(ctx context.Context, id string) (int, error) {
	var views int
	err := r.db.QueryRowContext(ctx,
		"UPDATE articles SET views = views + 1 WHERE id = $1 RETURNING views", id,
	).Scan(&views)
	if badUUID(err) {
		return 0, sql.ErrNoRows
	}
	return views, err
}

// IncrementLikes bumps the like counter in a single atomic statement
// and returns the new value.
func (r *articleRepo) IncrementLikes(ctx context.Context, id string) (int, error) {
	var likes int
	err := r.db.QueryRowContext(ctx,
		"UPDATE articles SET likes = likes + 1 WHERE id = $1 RETURNING likes", id,
	).Scan(&likes)
	if badUUID(err) {
		return 0, sql.ErrNoRows
	}
	return likes, err
}

// Exists checks if an article with the given ID exists
func (r *articleRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM articles WHERE id = $1)", id).Scan(&exists)
	if badUUID(err) {
		return false, nil
	}
	return exists, err
}

// Count returns the total number of articles
func (r *articleRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&count)
	return count, err
}
