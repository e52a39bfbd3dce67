package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/seoulscene/magazine-api/internal/api"
	"github.com/seoulscene/magazine-api/internal/config"
	"github.com/seoulscene/magazine-api/internal/mocks"
	"github.com/seoulscene/magazine-api/internal/models"
	"github.com/seoulscene/magazine-api/internal/repository"
	"github.com/seoulscene/magazine-api/internal/service"
)

type testBackend struct {
	router   *gin.Engine
	articles *mocks.MockArticleRepository
	cats     *mocks.MockCategoryRepository
	subs     *mocks.MockSubscriptionRepository
	shares   *mocks.MockShareRepository
}

func setupTestRouter() *testBackend {
	gin.SetMode(gin.TestMode)

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
		Server:  config.ServerConfig{Port: "8080", BaseURL: "http://localhost:8080"},
		Listing: config.ListingConfig{DefaultPageSize: 20, MaxPageSize: 100},
	}

	services := service.NewServices(repos, cfg, zerolog.Nop())
	router := api.NewRouter(services, nil, cfg, zerolog.Nop())

	return &testBackend{
		router:   router,
		articles: articles,
		cats:     cats,
		subs:     subs,
		shares:   shares,
	}
}

func (b *testBackend) seedCategory(id, slug string) {
	b.cats.Categories[id] = &models.Category{
		ID:        id,
		Name:      slug,
		Slug:      slug,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func (b *testBackend) seedArticle(id, categoryID, status string, createdAt time.Time) {
	b.articles.Articles[id] = &models.Article{
		ID:         id,
		Title:      "Article " + id,
		Slug:       "article-" + id,
		Content:    "content",
		CategoryID: categoryID,
		Status:     status,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
}

func (b *testBackend) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	b.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("Failed to decode response: %v\nbody: %s", err, w.Body.String())
	}
	return out
}

func TestHealthEndpoint(t *testing.T) {
	b := setupTestRouter()

	w := b.do(t, "GET", "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	resp := decode(t, w)
	if resp["status"] != "healthy" {
		t.Errorf("Expected status healthy, got %v", resp["status"])
	}
	if resp["service"] != "magazine-api" {
		t.Errorf("Expected service name, got %v", resp["service"])
	}
}

func TestListArticlesEnvelope(t *testing.T) {
	b := setupTestRouter()
	b.seedCategory("cat-1", "cafe")
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		b.seedArticle(seqID(i), "cat-1", models.StatusPublished, base.Add(time.Duration(i)*time.Hour))
	}

	w := b.do(t, "GET", "/api/articles?limit=10&offset=0", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := decode(t, w)
	articles := resp["articles"].([]interface{})
	if len(articles) != 10 {
		t.Errorf("Expected 10 articles, got %d", len(articles))
	}
	if resp["total"].(float64) != 15 {
		t.Errorf("Expected total 15, got %v", resp["total"])
	}
	if resp["sortBy"] != "latest" {
		t.Errorf("Expected sortBy latest, got %v", resp["sortBy"])
	}

	pagination := resp["pagination"].(map[string]interface{})
	if pagination["limit"].(float64) != 10 {
		t.Errorf("Expected limit 10, got %v", pagination["limit"])
	}
	if pagination["hasMore"] != true {
		t.Errorf("Expected hasMore true, got %v", pagination["hasMore"])
	}

	w = b.do(t, "GET", "/api/articles?limit=10&offset=10", nil)
	resp = decode(t, w)
	pagination = resp["pagination"].(map[string]interface{})
	if pagination["hasMore"] != false {
		t.Errorf("Expected hasMore false on last window, got %v", pagination["hasMore"])
	}
}

func seqID(i int) string {
	return string(rune('a'+i/10)) + string(rune('0'+i%10))
}

func TestListArticlesUnknownCategory(t *testing.T) {
	b := setupTestRouter()

	w := b.do(t, "GET", "/api/articles?category=nope", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown category slug, got %d", w.Code)
	}
}

func TestCategoryArticlesLifecycle(t *testing.T) {
	b := setupTestRouter()

	// Create the category through the admin surface
	w := b.do(t, "POST", "/admin/categories", map[string]interface{}{
		"name": "카페",
		"slug": "cafe",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	categoryID := decode(t, w)["id"].(string)

	// Create a published article in it
	w = b.do(t, "POST", "/admin/articles", map[string]interface{}{
		"title":       "성수동 카페",
		"content":     "본문",
		"category_id": categoryID,
		"status":      "published",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	articleID := decode(t, w)["id"].(string)

	// The public category listing returns exactly that article
	w = b.do(t, "GET", "/api/categories/cafe/articles", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decode(t, w)
	articles := resp["articles"].([]interface{})
	if len(articles) != 1 {
		t.Fatalf("Expected exactly 1 article, got %d", len(articles))
	}
	if articles[0].(map[string]interface{})["id"] != articleID {
		t.Error("Listing returned a different article")
	}

	// Demote to draft: gone from the public listing, still in admin
	w = b.do(t, "PUT", "/admin/articles/"+articleID, map[string]interface{}{
		"title":       "성수동 카페",
		"content":     "본문",
		"category_id": categoryID,
		"status":      "draft",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = b.do(t, "GET", "/api/categories/cafe/articles", nil)
	resp = decode(t, w)
	if resp["total"].(float64) != 0 {
		t.Errorf("Expected draft excluded from public listing, total %v", resp["total"])
	}

	w = b.do(t, "GET", "/admin/articles/"+articleID, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected draft still visible in admin scope, got %d", w.Code)
	}
}

func TestGetArticleByIDOrSlug(t *testing.T) {
	b := setupTestRouter()
	b.seedCategory("cat-1", "cafe")
	b.seedArticle("a1", "cat-1", models.StatusPublished, time.Now())
	b.seedArticle("a2", "cat-1", models.StatusDraft, time.Now())

	w := b.do(t, "GET", "/api/articles/a1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 by id, got %d", w.Code)
	}

	w = b.do(t, "GET", "/api/articles/article-a1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 by slug, got %d", w.Code)
	}
	if decode(t, w)["id"] != "a1" {
		t.Error("Slug lookup resolved the wrong article")
	}

	// Drafts stay invisible on the public detail endpoint
	w = b.do(t, "GET", "/api/articles/a2", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for draft, got %d", w.Code)
	}
}

func TestMalformedKeysReturnNotFound(t *testing.T) {
	b := setupTestRouter()
	b.seedCategory("cat-1", "cafe")

	paths := []struct {
		method string
		path   string
		body   interface{}
	}{
		{"GET", "/api/articles/성수동-카페-없는-글", nil},
		{"GET", "/api/articles/not-a-uuid/related", nil},
		{"GET", "/api/articles/not-a-uuid/shares", nil},
		{"POST", "/api/articles/not-a-uuid/views", nil},
		{"POST", "/api/articles/not-a-uuid/likes", nil},
		{"GET", "/admin/articles/not-a-uuid", nil},
		{"DELETE", "/admin/articles/not-a-uuid", nil},
		{"PUT", "/admin/articles/not-a-uuid", map[string]interface{}{
			"title": "t", "content": "c", "category_id": "cat-1", "status": "draft",
		}},
		{"PUT", "/admin/categories/not-a-uuid", map[string]interface{}{
			"name": "n", "slug": "n",
		}},
		{"DELETE", "/admin/categories/not-a-uuid", nil},
	}

	for _, p := range paths {
		w := b.do(t, p.method, p.path, p.body)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s %s: expected 404, got %d", p.method, p.path, w.Code)
		}
	}
}

func TestSearchEndpoint(t *testing.T) {
	b := setupTestRouter()
	b.seedCategory("cat-1", "cafe")
	b.seedArticle("a1", "cat-1", models.StatusPublished, time.Now())
	b.articles.Articles["a1"].Title = "성수동 카페 투어"
	b.seedArticle("a2", "cat-1", models.StatusPublished, time.Now())

	w := b.do(t, "GET", "/api/search?q=카페", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	resp := decode(t, w)
	if resp["query"] != "카페" {
		t.Errorf("Expected query echoed, got %v", resp["query"])
	}
	if resp["total"].(float64) != 1 {
		t.Errorf("Expected 1 hit, got %v", resp["total"])
	}
}

func TestShareInvalidPlatform(t *testing.T) {
	b := setupTestRouter()
	b.seedCategory("cat-1", "cafe")
	b.seedArticle("a1", "cat-1", models.StatusPublished, time.Now())

	w := b.do(t, "POST", "/api/share", map[string]interface{}{
		"article_id": "a1",
		"platform":   "carrierpigeon",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown platform, got %d", w.Code)
	}
	if len(b.shares.Shares) != 0 {
		t.Error("No share row should be created for an invalid platform")
	}
}

func TestShareMissingFields(t *testing.T) {
	b := setupTestRouter()

	w := b.do(t, "POST", "/api/share", map[string]interface{}{"platform": "kakao"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing article_id, got %d", w.Code)
	}

	w = b.do(t, "POST", "/api/share", map[string]interface{}{"article_id": "a1"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing platform, got %d", w.Code)
	}
}

func TestShareValid(t *testing.T) {
	b := setupTestRouter()
	b.seedCategory("cat-1", "cafe")
	b.seedArticle("a1", "cat-1", models.StatusPublished, time.Now())

	w := b.do(t, "POST", "/api/share", map[string]interface{}{
		"article_id": "a1",
		"platform":   "kakao",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := decode(t, w)
	if resp["success"] != true {
		t.Errorf("Expected success true, got %v", resp["success"])
	}
	if len(b.shares.Shares) != 1 {
		t.Errorf("Expected 1 share row, got %d", len(b.shares.Shares))
	}
}

func TestRecordViewEndpoint(t *testing.T) {
	b := setupTestRouter()
	b.seedCategory("cat-1", "cafe")
	b.seedArticle("a1", "cat-1", models.StatusPublished, time.Now())

	b.do(t, "POST", "/api/articles/a1/views", nil)
	w := b.do(t, "POST", "/api/articles/a1/views", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	resp := decode(t, w)
	if resp["views"].(float64) != 2 {
		t.Errorf("Expected 2 views after two increments, got %v", resp["views"])
	}

	w = b.do(t, "POST", "/api/articles/missing/views", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown article, got %d", w.Code)
	}
}

func TestSubscriptionFlow(t *testing.T) {
	b := setupTestRouter()

	w := b.do(t, "POST", "/api/subscriptions", map[string]interface{}{
		"email":      "reader@example.com",
		"categories": []string{"cafe"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	stored := b.subs.Subscriptions["reader@example.com"]
	if stored == nil || stored.VerificationToken == nil {
		t.Fatal("Expected stored subscription with a token")
	}
	token := *stored.VerificationToken

	w = b.do(t, "GET", "/api/subscriptions/verify?token="+token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on verify, got %d: %s", w.Code, w.Body.String())
	}

	// The token is single-use
	w = b.do(t, "GET", "/api/subscriptions/verify?token="+token, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 on token reuse, got %d", w.Code)
	}

	w = b.do(t, "POST", "/api/subscriptions/unsubscribe", map[string]interface{}{
		"email": "reader@example.com",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on unsubscribe, got %d", w.Code)
	}
	if b.subs.Subscriptions["reader@example.com"].IsActive {
		t.Error("Expected subscription deactivated")
	}
}

func TestSubscribeInvalidEmail(t *testing.T) {
	b := setupTestRouter()

	w := b.do(t, "POST", "/api/subscriptions", map[string]interface{}{"email": "not-an-email"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed email, got %d", w.Code)
	}
}

func TestListCategories(t *testing.T) {
	b := setupTestRouter()
	b.seedCategory("cat-1", "cafe")
	b.seedCategory("cat-2", "restaurant")

	w := b.do(t, "GET", "/api/categories", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	resp := decode(t, w)
	if resp["total"].(float64) != 2 {
		t.Errorf("Expected 2 categories, got %v", resp["total"])
	}
}

func TestListCategoriesWithCounts(t *testing.T) {
	b := setupTestRouter()
	b.seedCategory("cat-1", "cafe")
	b.seedCategory("cat-2", "restaurant")
	b.seedArticle("a1", "cat-1", models.StatusPublished, time.Now())
	b.seedArticle("a2", "cat-1", models.StatusPublished, time.Now())
	b.seedArticle("a3", "cat-1", models.StatusDraft, time.Now())

	w := b.do(t, "GET", "/api/categories?counts=true", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	resp := decode(t, w)
	categories := resp["categories"].([]interface{})
	if len(categories) != 2 {
		t.Fatalf("Expected 2 categories, got %d", len(categories))
	}

	bySlug := make(map[string]float64)
	for _, c := range categories {
		cat := c.(map[string]interface{})
		bySlug[cat["slug"].(string)] = cat["article_count"].(float64)
	}
	if bySlug["cafe"] != 2 {
		t.Errorf("Expected cafe to count 2 published articles, got %v", bySlug["cafe"])
	}
	if bySlug["restaurant"] != 0 {
		t.Errorf("Expected restaurant to count 0 articles, got %v", bySlug["restaurant"])
	}
}

func TestAdminCreateArticleValidation(t *testing.T) {
	b := setupTestRouter()
	b.seedCategory("cat-1", "cafe")

	w := b.do(t, "POST", "/admin/articles", map[string]interface{}{
		"content":     "body without title",
		"category_id": "cat-1",
		"status":      "published",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing title, got %d", w.Code)
	}

	w = b.do(t, "POST", "/admin/articles", map[string]interface{}{
		"title":       "Title",
		"content":     "body",
		"category_id": "cat-1",
		"status":      "archived",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid status, got %d", w.Code)
	}
}

func TestAdminSubscriptionStats(t *testing.T) {
	b := setupTestRouter()

	b.do(t, "POST", "/api/subscriptions", map[string]interface{}{"email": "a@example.com"})

	w := b.do(t, "GET", "/admin/subscriptions/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	resp := decode(t, w)
	if resp["total"].(float64) != 1 {
		t.Errorf("Expected 1 total subscriber, got %v", resp["total"])
	}
}

func TestAdminExportSubscriptions(t *testing.T) {
	b := setupTestRouter()

	b.do(t, "POST", "/api/subscriptions", map[string]interface{}{"email": "a@example.com"})
	token := *b.subs.Subscriptions["a@example.com"].VerificationToken
	b.do(t, "GET", "/api/subscriptions/verify?token="+token, nil)

	w := b.do(t, "GET", "/admin/subscriptions/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Expected text/csv, got %s", ct)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("a@example.com")) {
		t.Error("Expected subscriber email in CSV export")
	}
}
