package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/seoulscene/magazine-api/internal/config"
	"github.com/seoulscene/magazine-api/internal/mocks"
	"github.com/seoulscene/magazine-api/internal/models"
	"github.com/seoulscene/magazine-api/internal/repository"
	"github.com/seoulscene/magazine-api/internal/service"
)

type testEnv struct {
	services *service.Services
	articles *mocks.MockArticleRepository
	cats     *mocks.MockCategoryRepository
	subs     *mocks.MockSubscriptionRepository
	shares   *mocks.MockShareRepository
}

func newTestEnv() *testEnv {
	cats := mocks.NewMockCategoryRepository()
	articles := mocks.NewMockArticleRepository(cats)
	subs := mocks.NewMockSubscriptionRepository()
	shares := mocks.NewMockShareRepository()

	repos := &repository.Repositories{
		Article:      articles,
		Category:     cats,
		Subscription: subs,
		Share:        shares,
	}
	cfg := &config.Config{
		Server:  config.ServerConfig{BaseURL: "http://localhost:8080"},
		Listing: config.ListingConfig{DefaultPageSize: 20, MaxPageSize: 100},
	}

	return &testEnv{
		services: service.NewServices(repos, cfg, zerolog.Nop()),
		articles: articles,
		cats:     cats,
		subs:     subs,
		shares:   shares,
	}
}

func (e *testEnv) seedCategory(id, slug string) *models.Category {
	cat := &models.Category{
		ID:        id,
		Name:      slug,
		Slug:      slug,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	e.cats.Categories[id] = cat
	return cat
}

func (e *testEnv) seedArticle(id, categoryID, status string, views int, createdAt time.Time) *models.Article {
	article := &models.Article{
		ID:         id,
		Title:      "Article " + id,
		Slug:       "article-" + id,
		Content:    "content of " + id,
		CategoryID: categoryID,
		Status:     status,
		Views:      views,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	e.articles.Articles[id] = article
	return article
}

func TestListPaginationEnvelope(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedCategory("cat-1", "cafe")

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		env.seedArticle(fmt.Sprintf("a-%02d", i), "cat-1", models.StatusPublished, i, base.Add(time.Duration(i)*time.Hour))
	}

	page, err := env.services.Article.List(ctx, models.ListParams{Page: 2, PageSize: 10})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(page.Data) != 10 {
		t.Errorf("Expected 10 articles, got %d", len(page.Data))
	}
	if page.Total != 25 {
		t.Errorf("Expected total 25, got %d", page.Total)
	}
	if page.TotalPages != 3 {
		t.Errorf("Expected 3 total pages, got %d", page.TotalPages)
	}
	if !page.HasMore {
		t.Error("Expected hasMore on page 2 of 3")
	}

	last, err := env.services.Article.List(ctx, models.ListParams{Page: 3, PageSize: 10})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(last.Data) != 5 {
		t.Errorf("Expected 5 articles on last page, got %d", len(last.Data))
	}
	if last.HasMore {
		t.Error("Expected hasMore false on the last page")
	}
}

func TestListHasMoreWithUnalignedOffset(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedCategory("cat-1", "cafe")

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		env.seedArticle(fmt.Sprintf("a-%02d", i), "cat-1", models.StatusPublished, i, base.Add(time.Duration(i)*time.Hour))
	}

	// offset=5 limit=10 reaches the end of the 12 matches
	page, err := env.services.Article.List(ctx, models.ListParams{Offset: 5, PageSize: 10})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(page.Data) != 7 {
		t.Errorf("Expected 7 articles in the final window, got %d", len(page.Data))
	}
	if page.HasMore {
		t.Error("Expected hasMore false when the window reaches the end")
	}

	page, err = env.services.Article.List(ctx, models.ListParams{Offset: 0, PageSize: 10})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if !page.HasMore {
		t.Error("Expected hasMore true with matches past the window")
	}
}

func TestListPageSizeCap(t *testing.T) {
	env := newTestEnv()
	env.seedCategory("cat-1", "cafe")

	page, err := env.services.Article.List(context.Background(), models.ListParams{PageSize: 10000})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if page.PageSize != 100 {
		t.Errorf("Expected page size capped at 100, got %d", page.PageSize)
	}
}

func TestListExcludesDraftsByDefault(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedCategory("cat-1", "cafe")
	env.seedArticle("a-1", "cat-1", models.StatusPublished, 0, time.Now())
	env.seedArticle("a-2", "cat-1", models.StatusDraft, 0, time.Now())

	page, err := env.services.Article.List(ctx, models.ListParams{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if page.Total != 1 {
		t.Errorf("Expected 1 published article, got %d", page.Total)
	}
	for _, a := range page.Data {
		if a.Status != models.StatusPublished {
			t.Errorf("Draft article %s leaked into public listing", a.ID)
		}
	}

	adminPage, err := env.services.Article.List(ctx, models.ListParams{AllStatuses: true})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if adminPage.Total != 2 {
		t.Errorf("Expected 2 articles in admin scope, got %d", adminPage.Total)
	}
}

func TestListSortOrders(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedCategory("cat-1", "cafe")

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	env.seedArticle("a-1", "cat-1", models.StatusPublished, 5, base)
	env.seedArticle("a-2", "cat-1", models.StatusPublished, 50, base.Add(time.Hour))
	env.seedArticle("a-3", "cat-1", models.StatusPublished, 20, base.Add(2*time.Hour))

	popular, err := env.services.Article.List(ctx, models.ListParams{SortBy: models.SortPopular})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for i := 1; i < len(popular.Data); i++ {
		if popular.Data[i].Views > popular.Data[i-1].Views {
			t.Errorf("popular sort not non-increasing in views at index %d", i)
		}
	}

	oldest, err := env.services.Article.List(ctx, models.ListParams{SortBy: models.SortOldest})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for i := 1; i < len(oldest.Data); i++ {
		if oldest.Data[i].CreatedAt.Before(oldest.Data[i-1].CreatedAt) {
			t.Errorf("oldest sort not non-decreasing in created_at at index %d", i)
		}
	}

	latest, err := env.services.Article.List(ctx, models.ListParams{SortBy: models.SortLatest})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for i := 1; i < len(latest.Data); i++ {
		if latest.Data[i].CreatedAt.After(latest.Data[i-1].CreatedAt) {
			t.Errorf("latest sort not non-increasing in created_at at index %d", i)
		}
	}
}

func TestListRegionFilter(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedCategory("cat-1", "cafe")

	seoul := "seoul"
	busan := "busan"
	a1 := env.seedArticle("a-1", "cat-1", models.StatusPublished, 0, time.Now())
	a1.Region = &seoul
	a2 := env.seedArticle("a-2", "cat-1", models.StatusPublished, 0, time.Now())
	a2.Region = &busan

	page, err := env.services.Article.List(ctx, models.ListParams{Region: "seoul"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("Expected 1 article for region seoul, got %d", page.Total)
	}
	if page.Data[0].Region == nil || *page.Data[0].Region != "seoul" {
		t.Error("Region filter returned a non-matching article")
	}
}

func TestListSearchFilter(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedCategory("cat-1", "cafe")

	a := env.seedArticle("a-1", "cat-1", models.StatusPublished, 0, time.Now())
	a.Title = "성수동 카페 투어"
	env.seedArticle("a-2", "cat-1", models.StatusPublished, 0, time.Now())

	page, err := env.services.Article.List(ctx, models.ListParams{Search: "카페"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if page.Total != 1 {
		t.Errorf("Expected 1 search hit, got %d", page.Total)
	}
}

func TestCreateArticleDerivesSlug(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedCategory("cat-1", "cafe")

	article, err := env.services.Article.Create(ctx, &models.ArticleInput{
		Title:      "성수동 카페",
		Content:    "body",
		CategoryID: "cat-1",
		Status:     models.StatusPublished,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if article.Slug != "성수동-카페" {
		t.Errorf("Expected slug 성수동-카페, got %s", article.Slug)
	}
	if article.PublishedAt == nil {
		t.Error("Expected published_at set for a published article")
	}
	if article.Views != 0 || article.Likes != 0 {
		t.Error("Expected counters initialized to zero")
	}
}

func TestCreateDraftHasNoPublishedAt(t *testing.T) {
	env := newTestEnv()
	env.seedCategory("cat-1", "cafe")

	article, err := env.services.Article.Create(context.Background(), &models.ArticleInput{
		Title:      "Draft piece",
		Content:    "body",
		CategoryID: "cat-1",
		Status:     models.StatusDraft,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if article.PublishedAt != nil {
		t.Error("Expected no published_at on a draft")
	}
}

func TestUpdateRegeneratesSlugOnTitleChange(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedCategory("cat-1", "cafe")

	created, err := env.services.Article.Create(ctx, &models.ArticleInput{
		Title:      "Old Title",
		Content:    "body",
		CategoryID: "cat-1",
		Status:     models.StatusDraft,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	updated, err := env.services.Article.Update(ctx, created.ID, &models.ArticleInput{
		Title:      "Brand New Title",
		Content:    "body",
		CategoryID: "cat-1",
		Status:     models.StatusPublished,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.Slug != "brand-new-title" {
		t.Errorf("Expected regenerated slug, got %s", updated.Slug)
	}
	if updated.PublishedAt == nil {
		t.Error("Expected published_at stamped when the draft was published")
	}
}

func TestRecordViewSequential(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedCategory("cat-1", "cafe")
	env.seedArticle("a-1", "cat-1", models.StatusPublished, 10, time.Now())

	if _, err := env.services.Article.RecordView(ctx, "a-1"); err != nil {
		t.Fatalf("RecordView failed: %v", err)
	}
	views, err := env.services.Article.RecordView(ctx, "a-1")
	if err != nil {
		t.Fatalf("RecordView failed: %v", err)
	}
	if views != 12 {
		t.Errorf("Expected views 12 after two sequential increments, got %d", views)
	}
}

func TestRecordViewUnknownArticle(t *testing.T) {
	env := newTestEnv()

	_, err := env.services.Article.RecordView(context.Background(), "missing")
	if !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestGetHidesDraftFromPublicScope(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedCategory("cat-1", "cafe")
	env.seedArticle("a-1", "cat-1", models.StatusDraft, 0, time.Now())

	if _, err := env.services.Article.Get(ctx, "a-1", false); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for draft in public scope, got %v", err)
	}

	article, err := env.services.Article.Get(ctx, "a-1", true)
	if err != nil {
		t.Fatalf("Admin Get failed: %v", err)
	}
	if article.Status != models.StatusDraft {
		t.Errorf("Expected draft article, got status %s", article.Status)
	}
}

func TestRelatedExcludesSelfAndDrafts(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedCategory("cat-1", "cafe")

	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	env.seedArticle("a-1", "cat-1", models.StatusPublished, 0, base)
	env.seedArticle("a-2", "cat-1", models.StatusPublished, 0, base.Add(time.Hour))
	env.seedArticle("a-3", "cat-1", models.StatusDraft, 0, base.Add(2*time.Hour))

	related, err := env.services.Article.Related(ctx, "a-1", 5)
	if err != nil {
		t.Fatalf("Related failed: %v", err)
	}
	if len(related) != 1 {
		t.Fatalf("Expected 1 related article, got %d", len(related))
	}
	if related[0].ID != "a-2" {
		t.Errorf("Expected a-2, got %s", related[0].ID)
	}
}

func TestListByCategorySlugUnknown(t *testing.T) {
	env := newTestEnv()

	_, _, err := env.services.Article.ListByCategorySlug(context.Background(), "nope", models.ListParams{})
	if !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown category slug, got %v", err)
	}
}

func TestCategoryCreateDuplicateSlug(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	if _, err := env.services.Category.Create(ctx, &models.CategoryInput{Name: "Cafe", Slug: "cafe"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_, err := env.services.Category.Create(ctx, &models.CategoryInput{Name: "Cafe 2", Slug: "cafe"})
	if !errors.Is(err, service.ErrDuplicateSlug) {
		t.Errorf("Expected ErrDuplicateSlug, got %v", err)
	}
}
