package repository

import (
	"context"
	"errors"

	"github.com/lib/pq"
	"github.com/seoulscene/magazine-api/internal/database"
	"github.com/seoulscene/magazine-api/internal/models"
)

// badUUID reports whether err is Postgres rejecting a non-UUID value
// bound against a uuid column (invalid_text_representation, 22P02).
// Lookups treat it like no rows: a key that cannot be a uuid matches
// nothing.
func badUUID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code.Name() == "invalid_text_representation"
}

// ArticleRepository defines the interface for article data operations
type ArticleRepository interface {
	List(ctx context.Context, params models.ListParams) ([]*models.ArticleWithCategory, int, error)
	GetByID(ctx context.Context, id string) (*models.ArticleWithCategory, error)
	GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.ArticleWithCategory, error)
	GetRelated(ctx context.Context, articleID, categoryID string, limit int) ([]*models.ArticleWithCategory, error)
	Create(ctx context.Context, article *models.Article) error
	Update(ctx context.Context, article *models.Article) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) (int, error)
	IncrementLikes(ctx context.Context, id string) (int, error)
	Exists(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	List(ctx context.Context, activeOnly bool) ([]*models.Category, error)
	ListWithCounts(ctx context.Context) ([]*models.CategoryWithCount, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// SubscriptionRepository defines the interface for subscription data operations
type SubscriptionRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.Subscription, error)
	GetByToken(ctx context.Context, token string) (*models.Subscription, error)
	Create(ctx context.Context, sub *models.Subscription) error
	Update(ctx context.Context, sub *models.Subscription) error
	ListActive(ctx context.Context, limit, offset int) ([]*models.Subscription, error)
	Stats(ctx context.Context) (*models.SubscriptionStats, error)
	StreamActive(ctx context.Context, callback func(*models.Subscription) error) error
}

// ShareRepository defines the interface for share event operations
type ShareRepository interface {
	Create(ctx context.Context, share *models.Share) error
	StatsByArticle(ctx context.Context, articleID string) (*models.ShareStats, error)
	TopShared(ctx context.Context, limit int) ([]*models.TopSharedArticle, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Article      ArticleRepository
	Category     CategoryRepository
	Subscription SubscriptionRepository
	Share        ShareRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Article:      NewArticleRepo(db),
		Category:     NewCategoryRepo(db),
		Subscription: NewSubscriptionRepo(db),
		Share:        NewShareRepo(db),
	}
}
