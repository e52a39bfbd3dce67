package service

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog"
	"github.com/seoulscene/magazine-api/internal/config"
	"github.com/seoulscene/magazine-api/internal/models"
	"github.com/seoulscene/magazine-api/internal/repository"
)

// Sentinel errors returned by services. Handlers translate them into
// HTTP status codes.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidToken  = errors.New("verification token is invalid or already used")
	ErrDuplicateSlug = errors.New("slug already exists")
	ErrCategoryInUse = errors.New("category still has articles")
)

// ArticleService defines article operations for public and admin paths
type ArticleService interface {
	List(ctx context.Context, params models.ListParams) (*models.ArticlePage, error)
	ListByCategorySlug(ctx context.Context, slug string, params models.ListParams) (*models.Category, *models.ArticlePage, error)
	Get(ctx context.Context, id string, includeDrafts bool) (*models.ArticleWithCategory, error)
	GetBySlug(ctx context.Context, slug string, includeDrafts bool) (*models.ArticleWithCategory, error)
	Related(ctx context.Context, id string, limit int) ([]*models.ArticleWithCategory, error)
	Create(ctx context.Context, input *models.ArticleInput) (*models.Article, error)
	Update(ctx context.Context, id string, input *models.ArticleInput) (*models.Article, error)
	Delete(ctx context.Context, id string) error
	RecordView(ctx context.Context, id string) (int, error)
	RecordLike(ctx context.Context, id string) (int, error)
}

// CategoryService defines category operations
type CategoryService interface {
	List(ctx context.Context) ([]*models.Category, error)
	ListWithCounts(ctx context.Context) ([]*models.CategoryWithCount, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, input *models.CategoryInput) (*models.Category, error)
	Update(ctx context.Context, id string, input *models.CategoryInput) (*models.Category, error)
	Delete(ctx context.Context, id string) error
}

// SubscriptionService defines the subscription lifecycle operations
type SubscriptionService interface {
	Subscribe(ctx context.Context, email string, categories []string) (*models.Subscription, error)
	Verify(ctx context.Context, token string) (*models.Subscription, error)
	Unsubscribe(ctx context.Context, email string) (*models.Subscription, error)
	ListActive(ctx context.Context, limit, offset int) ([]*models.Subscription, error)
	Stats(ctx context.Context) (*models.SubscriptionStats, error)
	ExportActiveCSV(ctx context.Context, w io.Writer) error
}

// ShareService defines share recording and reporting operations
type ShareService interface {
	Record(ctx context.Context, share *models.Share) (*models.Share, error)
	Stats(ctx context.Context, articleID string) (*models.ShareStats, error)
	TopShared(ctx context.Context, limit int) ([]*models.TopSharedArticle, error)
}

// Services holds all service interfaces
type Services struct {
	Article      ArticleService
	Category     CategoryService
	Subscription SubscriptionService
	Share        ShareService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger) *Services {
	return &Services{
		Article:      newArticleService(repos, cfg, log),
		Category:     newCategoryService(repos, log),
		Subscription: newSubscriptionService(repos, newLogEmailSender(cfg, log), log),
		Share:        newShareService(repos, log),
	}
}
