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
	"github.com/seoulscene/magazine-api/internal/config"
	"github.com/seoulscene/magazine-api/internal/models"
	"github.com/seoulscene/magazine-api/internal/repository"
	"github.com/seoulscene/magazine-api/pkg/slug"
)

// articleService is the concrete implementation of ArticleService
type articleService struct {
	repos *repository.Repositories
	cfg   *config.Config
	log   zerolog.Logger
}

// newArticleService creates a new ArticleService
func newArticleService(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger) *articleService {
	return &articleService{
		repos: repos,
		cfg:   cfg,
		log:   log.With().Str("service", "article").Logger(),
	}
}

// normalize clamps page/pageSize and falls back to defaults for
// unknown sort or status values. PageSize is capped at MaxPageSize so
// no request can pull an unbounded result set.
func (s *articleService) normalize(p models.ListParams) models.ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = s.cfg.Listing.DefaultPageSize
	}
	if p.PageSize > s.cfg.Listing.MaxPageSize {
		p.PageSize = s.cfg.Listing.MaxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Offset == 0 && p.Page > 1 {
		p.Offset = (p.Page - 1) * p.PageSize
	}
	p.Page = p.Offset/p.PageSize + 1
	if !models.ValidSortKeys[p.SortBy] {
		p.SortBy = models.SortLatest
	}
	if p.Status != "" && !models.ValidStatuses[p.Status] {
		p.Status = ""
	}
	return p
}

// List returns one page of articles plus pagination metadata
func (s *articleService) List(ctx context.Context, params models.ListParams) (*models.ArticlePage, error) {
	params = s.normalize(params)

	data, total, err := s.repos.Article.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	totalPages := (total + params.PageSize - 1) / params.PageSize
	return &models.ArticlePage{
		Data:       data,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
		// Offset-based so windows not aligned to PageSize report
		// correctly whether anything lies past them.
		HasMore: params.Offset+params.PageSize < total,
	}, nil
}

// ListByCategorySlug resolves a category slug and returns that
// category's page of articles.
func (s *articleService) ListByCategorySlug(ctx context.Context, categorySlug string, params models.ListParams) (*models.Category, *models.ArticlePage, error) {
	category, err := s.repos.Category.GetBySlug(ctx, categorySlug)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve category: %w", err)
	}
	if category == nil {
		return nil, nil, ErrNotFound
	}

	params.CategoryID = category.ID
	page, err := s.List(ctx, params)
	if err != nil {
		return nil, nil, err
	}
	return category, page, nil
}

// Get retrieves one article by ID. Public callers see published
// articles only.
func (s *articleService) Get(ctx context.Context, id string, includeDrafts bool) (*models.ArticleWithCategory, error) {
	article, err := s.repos.Article.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	if article == nil {
		return nil, ErrNotFound
	}
	if !includeDrafts && article.Status != models.StatusPublished {
		return nil, ErrNotFound
	}
	return article, nil
}

// GetBySlug retrieves one article by slug
func (s *articleService) GetBySlug(ctx context.Context, articleSlug string, includeDrafts bool) (*models.ArticleWithCategory, error) {
	article, err := s.repos.Article.GetBySlug(ctx, articleSlug, !includeDrafts)
	if err != nil {
		return nil, fmt.Errorf("failed to get article by slug: %w", err)
	}
	if article == nil {
		return nil, ErrNotFound
	}
	return article, nil
}

// Related returns published articles from the same category
func (s *articleService) Related(ctx context.Context, id string, limit int) ([]*models.ArticleWithCategory, error) {
	if limit <= 0 || limit > s.cfg.Listing.MaxPageSize {
		limit = 3
	}

	article, err := s.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}

	related, err := s.repos.Article.GetRelated(ctx, article.ID, article.CategoryID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get related articles: %w", err)
	}
	return related, nil
}

// Create inserts a new article with a slug derived from its title
func (s *articleService) Create(ctx context.Context, input *models.ArticleInput) (*models.Article, error) {
	category, err := s.repos.Category.GetByID(ctx, input.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve category: %w", err)
	}
	if category == nil {
		return nil, ErrNotFound
	}

	now := time.Now().UTC()
	article := &models.Article{
		ID:              uuid.NewString(),
		Title:           input.Title,
		Slug:            slug.Make(input.Title),
		Content:         input.Content,
		Excerpt:         input.Excerpt,
		Images:          pq.StringArray(input.Images),
		CategoryID:      input.CategoryID,
		Region:          input.Region,
		Status:          input.Status,
		MetaTitle:       input.MetaTitle,
		MetaDescription: input.MetaDescription,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if article.Images == nil {
		article.Images = pq.StringArray{}
	}
	if article.Status == models.StatusPublished {
		article.PublishedAt = &now
	}

	if err := s.repos.Article.Create(ctx, article); err != nil {
		return nil, fmt.Errorf("failed to create article: %w", err)
	}

	s.log.Info().
		Str("article_id", article.ID).
		Str("slug", article.Slug).
		Str("status", article.Status).
		Msg("Article created")

	return article, nil
}

// Update rewrites an article's editable fields. The slug is
// regenerated whenever the title changes; published_at is stamped on
// the first transition to published.
func (s *articleService) Update(ctx context.Context, id string, input *models.ArticleInput) (*models.Article, error) {
	existing, err := s.repos.Article.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	category, err := s.repos.Category.GetByID(ctx, input.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve category: %w", err)
	}
	if category == nil {
		return nil, ErrNotFound
	}

	now := time.Now().UTC()
	article := existing.Article
	article.Title = input.Title
	article.Content = input.Content
	article.Excerpt = input.Excerpt
	article.CategoryID = input.CategoryID
	article.Region = input.Region
	article.Status = input.Status
	article.MetaTitle = input.MetaTitle
	article.MetaDescription = input.MetaDescription
	article.UpdatedAt = now
	if input.Images != nil {
		article.Images = pq.StringArray(input.Images)
	}
	if input.Title != existing.Title {
		article.Slug = slug.Make(input.Title)
	}
	if article.Status == models.StatusPublished && article.PublishedAt == nil {
		article.PublishedAt = &now
	}

	if err := s.repos.Article.Update(ctx, &article); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update article: %w", err)
	}

	s.log.Info().
		Str("article_id", article.ID).
		Str("slug", article.Slug).
		Str("status", article.Status).
		Msg("Article updated")

	return &article, nil
}

// Delete removes an article
func (s *articleService) Delete(ctx context.Context, id string) error {
	err := s.repos.Article.Delete(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}

	s.log.Info().Str("article_id", id).Msg("Article deleted")
	return nil
}

// RecordView atomically increments the view counter
func (s *articleService) RecordView(ctx context.Context, id string) (int, error) {
	views, err := s.repos.Article.IncrementViews(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to increment views: %w", err)
	}
	return views, nil
}

// RecordLike atomically increments the like counter
func (s *articleService) RecordLike(ctx context.Context, id string) (int, error) {
	likes, err := s.repos.Article.IncrementLikes(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to increment likes: %w", err)
	}
	return likes, nil
}
