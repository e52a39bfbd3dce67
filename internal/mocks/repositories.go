package mocks

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"

	"github.com/seoulscene/magazine-api/internal/models"
)

// MockArticleRepository is an in-memory implementation of
// repository.ArticleRepository. Listing applies the same filter,
// sort, and windowing semantics as the SQL implementation.
type MockArticleRepository struct {
	mu         sync.Mutex
	Articles   map[string]*models.Article
	Categories map[string]*models.Category
	Err        error
}

func NewMockArticleRepository(categories *MockCategoryRepository) *MockArticleRepository {
	m := &MockArticleRepository{
		Articles:   make(map[string]*models.Article),
		Categories: categories.Categories,
	}
	// The category mock reads articles back for its count aggregation
	categories.Articles = m.Articles
	return m
}

func (m *MockArticleRepository) withCategory(a *models.Article) *models.ArticleWithCategory {
	copied := *a
	out := &models.ArticleWithCategory{Article: copied}
	if cat, ok := m.Categories[a.CategoryID]; ok {
		copied := *cat
		out.Category = &copied
	}
	return out
}

func matches(a *models.Article, p models.ListParams) bool {
	if p.Status != "" {
		if a.Status != p.Status {
			return false
		}
	} else if !p.AllStatuses && a.Status != models.StatusPublished {
		return false
	}
	if p.CategoryID != "" && a.CategoryID != p.CategoryID {
		return false
	}
	if p.Region != "" && (a.Region == nil || *a.Region != p.Region) {
		return false
	}
	if p.Search != "" {
		needle := strings.ToLower(p.Search)
		excerpt := ""
		if a.Excerpt != nil {
			excerpt = *a.Excerpt
		}
		if !strings.Contains(strings.ToLower(a.Title), needle) &&
			!strings.Contains(strings.ToLower(a.Content), needle) &&
			!strings.Contains(strings.ToLower(excerpt), needle) {
			return false
		}
	}
	return true
}

func (m *MockArticleRepository) List(ctx context.Context, p models.ListParams) ([]*models.ArticleWithCategory, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, 0, m.Err
	}

	var filtered []*models.Article
	for _, a := range m.Articles {
		if matches(a, p) {
			filtered = append(filtered, a)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		switch p.SortBy {
		case models.SortPopular:
			if a.Views != b.Views {
				return a.Views > b.Views
			}
			return a.ID > b.ID
		case models.SortOldest:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.ID < b.ID
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID > b.ID
		}
	})

	total := len(filtered)
	start := p.Offset
	if start > total {
		start = total
	}
	end := start + p.PageSize
	if end > total {
		end = total
	}

	page := make([]*models.ArticleWithCategory, 0, end-start)
	for _, a := range filtered[start:end] {
		page = append(page, m.withCategory(a))
	}
	return page, total, nil
}

func (m *MockArticleRepository) GetByID(ctx context.Context, id string) (*models.ArticleWithCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	a, ok := m.Articles[id]
	if !ok {
		return nil, nil
	}
	return m.withCategory(a), nil
}

func (m *MockArticleRepository) GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.ArticleWithCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Articles {
		if a.Slug != slug {
			continue
		}
		if publishedOnly && a.Status != models.StatusPublished {
			continue
		}
		return m.withCategory(a), nil
	}
	return nil, nil
}

func (m *MockArticleRepository) GetRelated(ctx context.Context, articleID, categoryID string, limit int) ([]*models.ArticleWithCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var related []*models.Article
	for _, a := range m.Articles {
		if a.ID == articleID || a.CategoryID != categoryID || a.Status != models.StatusPublished {
			continue
		}
		related = append(related, a)
	}
	sort.Slice(related, func(i, j int) bool {
		if !related[i].CreatedAt.Equal(related[j].CreatedAt) {
			return related[i].CreatedAt.After(related[j].CreatedAt)
		}
		return related[i].ID > related[j].ID
	})
	if len(related) > limit {
		related = related[:limit]
	}
	out := make([]*models.ArticleWithCategory, 0, len(related))
	for _, a := range related {
		out = append(out, m.withCategory(a))
	}
	return out, nil
}

func (m *MockArticleRepository) Create(ctx context.Context, article *models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	copied := *article
	m.Articles[article.ID] = &copied
	return nil
}

func (m *MockArticleRepository) Update(ctx context.Context, article *models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Articles[article.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *article
	m.Articles[article.ID] = &copied
	return nil
}

func (m *MockArticleRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Articles[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.Articles, id)
	return nil
}

func (m *MockArticleRepository) IncrementViews(ctx context.Context, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Articles[id]
	if !ok {
		return 0, sql.ErrNoRows
	}
	a.Views++
	return a.Views, nil
}

func (m *MockArticleRepository) IncrementLikes(ctx context.Context, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Articles[id]
	if !ok {
		return 0, sql.ErrNoRows
	}
	a.Likes++
	return a.Likes, nil
}

func (m *MockArticleRepository) Exists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Articles[id]
	return ok, nil
}

func (m *MockArticleRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Articles), nil
}

// MockCategoryRepository is an in-memory implementation of
// repository.CategoryRepository
type MockCategoryRepository struct {
	mu         sync.Mutex
	Categories map[string]*models.Category
	Articles   map[string]*models.Article
	Err        error
}

func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{Categories: make(map[string]*models.Category)}
}

func (m *MockCategoryRepository) sorted(activeOnly bool) []*models.Category {
	var out []*models.Category
	for _, c := range m.Categories {
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (m *MockCategoryRepository) List(ctx context.Context, activeOnly bool) ([]*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.sorted(activeOnly), nil
}

func (m *MockCategoryRepository) ListWithCounts(ctx context.Context) ([]*models.CategoryWithCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	counts := make(map[string]int)
	for _, a := range m.Articles {
		if a.Status == models.StatusPublished {
			counts[a.CategoryID]++
		}
	}
	var out []*models.CategoryWithCount
	for _, c := range m.sorted(true) {
		out = append(out, &models.CategoryWithCount{Category: *c, ArticleCount: counts[c.ID]})
	}
	return out, nil
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Categories[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (m *MockCategoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Categories {
		if c.Slug == slug && c.IsActive {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *MockCategoryRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Categories {
		if c.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	copied := *category
	m.Categories[category.ID] = &copied
	return nil
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Categories[category.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *category
	m.Categories[category.ID] = &copied
	return nil
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Categories[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.Categories, id)
	return nil
}

func (m *MockCategoryRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Categories), nil
}

// MockSubscriptionRepository is an in-memory implementation of
// repository.SubscriptionRepository
type MockSubscriptionRepository struct {
	mu            sync.Mutex
	Subscriptions map[string]*models.Subscription
	Err           error
}

func NewMockSubscriptionRepository() *MockSubscriptionRepository {
	return &MockSubscriptionRepository{Subscriptions: make(map[string]*models.Subscription)}
}

func (m *MockSubscriptionRepository) GetByEmail(ctx context.Context, email string) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	s, ok := m.Subscriptions[email]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (m *MockSubscriptionRepository) GetByToken(ctx context.Context, token string) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.Subscriptions {
		if s.VerificationToken != nil && *s.VerificationToken == token {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *MockSubscriptionRepository) Create(ctx context.Context, sub *models.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	copied := *sub
	m.Subscriptions[sub.Email] = &copied
	return nil
}

func (m *MockSubscriptionRepository) Update(ctx context.Context, sub *models.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Subscriptions[sub.Email]; !ok {
		return sql.ErrNoRows
	}
	copied := *sub
	m.Subscriptions[sub.Email] = &copied
	return nil
}

func (m *MockSubscriptionRepository) ListActive(ctx context.Context, limit, offset int) ([]*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Subscription
	for _, s := range m.Subscriptions {
		if s.IsActive && s.IsVerified {
			copied := *s
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if offset > len(out) {
		offset = len(out)
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (m *MockSubscriptionRepository) Stats(ctx context.Context) (*models.SubscriptionStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &models.SubscriptionStats{}
	for _, s := range m.Subscriptions {
		stats.Total++
		if s.IsActive {
			stats.Active++
			if s.IsVerified {
				stats.Verified++
			}
		}
	}
	return stats, nil
}

func (m *MockSubscriptionRepository) StreamActive(ctx context.Context, callback func(*models.Subscription) error) error {
	subs, err := m.ListActive(ctx, 1<<30, 0)
	if err != nil {
		return err
	}
	for _, s := range subs {
		if err := callback(s); err != nil {
			return err
		}
	}
	return nil
}

// MockShareRepository is an in-memory implementation of
// repository.ShareRepository
type MockShareRepository struct {
	mu     sync.Mutex
	Shares []*models.Share
	Err    error
}

func NewMockShareRepository() *MockShareRepository {
	return &MockShareRepository{}
}

func (m *MockShareRepository) Create(ctx context.Context, share *models.Share) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	copied := *share
	m.Shares = append(m.Shares, &copied)
	return nil
}

func (m *MockShareRepository) StatsByArticle(ctx context.Context, articleID string) (*models.ShareStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int)
	for _, s := range m.Shares {
		if s.ArticleID == articleID {
			counts[s.Platform]++
		}
	}
	stats := &models.ShareStats{ArticleID: articleID}
	for platform, count := range counts {
		stats.Platforms = append(stats.Platforms, models.PlatformCount{Platform: platform, Count: count})
		stats.TotalShares += count
	}
	sort.Slice(stats.Platforms, func(i, j int) bool {
		return stats.Platforms[i].Count > stats.Platforms[j].Count
	})
	return stats, nil
}

func (m *MockShareRepository) TopShared(ctx context.Context, limit int) ([]*models.TopSharedArticle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int)
	for _, s := range m.Shares {
		counts[s.ArticleID]++
	}
	var top []*models.TopSharedArticle
	for id, count := range counts {
		top = append(top, &models.TopSharedArticle{ArticleID: id, TotalShares: count})
	}
	sort.Slice(top, func(i, j int) bool {
		return top[i].TotalShares > top[j].TotalShares
	})
	if len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}
