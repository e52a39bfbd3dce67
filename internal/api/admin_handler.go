package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/seoulscene/magazine-api/internal/config"
	"github.com/seoulscene/magazine-api/internal/models"
	"github.com/seoulscene/magazine-api/internal/service"
	"github.com/seoulscene/magazine-api/internal/validation"
)

// AdminHandler handles the admin panel endpoints
type AdminHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "admin").Logger(),
	}
}

// ListArticles handles GET /admin/articles. Unlike the public
// listing, drafts are included unless a status filter narrows it.
func (h *AdminHandler) ListArticles(c *gin.Context) {
	params := models.ListParams{
		PageSize:    intQuery(c, "limit", h.cfg.Listing.DefaultPageSize),
		Offset:      intQuery(c, "offset", 0),
		Region:      c.Query("region"),
		Search:      c.Query("q"),
		SortBy:      c.DefaultQuery("sort", models.SortLatest),
		Status:      c.Query("status"),
		AllStatuses: true,
	}

	if categorySlug := c.Query("category"); categorySlug != "" {
		category, err := h.services.Category.GetBySlug(c.Request.Context(), categorySlug)
		if err != nil {
			abortForError(c, err, "Category not found")
			return
		}
		params.CategoryID = category.ID
	}

	page, err := h.services.Article.List(c.Request.Context(), params)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list articles")
		abortForError(c, err, "Articles not found")
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetArticle handles GET /admin/articles/:id, drafts included
func (h *AdminHandler) GetArticle(c *gin.Context) {
	article, err := h.services.Article.Get(c.Request.Context(), c.Param("id"), true)
	if err != nil {
		abortForError(c, err, "Article not found")
		return
	}
	c.JSON(http.StatusOK, article)
}

// CreateArticle handles POST /admin/articles
func (h *AdminHandler) CreateArticle(c *gin.Context) {
	var input models.ArticleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if errs := validation.ValidateArticleInput(&input); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	article, err := h.services.Article.Create(c.Request.Context(), &input)
	if err != nil {
		abortForError(c, err, "Category not found")
		return
	}
	c.JSON(http.StatusCreated, article)
}

// UpdateArticle handles PUT /admin/articles/:id
func (h *AdminHandler) UpdateArticle(c *gin.Context) {
	var input models.ArticleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if errs := validation.ValidateArticleInput(&input); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	article, err := h.services.Article.Update(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		abortForError(c, err, "Article not found")
		return
	}
	c.JSON(http.StatusOK, article)
}

// DeleteArticle handles DELETE /admin/articles/:id
func (h *AdminHandler) DeleteArticle(c *gin.Context) {
	if err := h.services.Article.Delete(c.Request.Context(), c.Param("id")); err != nil {
		abortForError(c, err, "Article not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CreateCategory handles POST /admin/categories
func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var input models.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if errs := validation.ValidateCategoryInput(&input); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	category, err := h.services.Category.Create(c.Request.Context(), &input)
	if err != nil {
		abortForError(c, err, "Category not found")
		return
	}
	c.JSON(http.StatusCreated, category)
}

// UpdateCategory handles PUT /admin/categories/:id
func (h *AdminHandler) UpdateCategory(c *gin.Context) {
	var input models.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if errs := validation.ValidateCategoryInput(&input); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	category, err := h.services.Category.Update(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		abortForError(c, err, "Category not found")
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeleteCategory handles DELETE /admin/categories/:id
func (h *AdminHandler) DeleteCategory(c *gin.Context) {
	if err := h.services.Category.Delete(c.Request.Context(), c.Param("id")); err != nil {
		abortForError(c, err, "Category not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListSubscriptions handles GET /admin/subscriptions?limit&offset
func (h *AdminHandler) ListSubscriptions(c *gin.Context) {
	limit := intQuery(c, "limit", 100)
	offset := intQuery(c, "offset", 0)

	subs, err := h.services.Subscription.ListActive(c.Request.Context(), limit, offset)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list subscriptions")
		abortForError(c, err, "Subscriptions not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subscriptions": subs,
		"total":         len(subs),
		"pagination": gin.H{
			"limit":  limit,
			"offset": offset,
		},
	})
}

// SubscriptionStats handles GET /admin/subscriptions/stats
func (h *AdminHandler) SubscriptionStats(c *gin.Context) {
	stats, err := h.services.Subscription.Stats(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get subscription stats")
		abortForError(c, err, "Stats not found")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ExportSubscriptions handles GET /admin/subscriptions/export,
// streaming the active subscriber list as CSV.
func (h *AdminHandler) ExportSubscriptions(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=subscribers.csv")

	if err := h.services.Subscription.ExportActiveCSV(c.Request.Context(), c.Writer); err != nil {
		// Can't return error JSON after streaming has started
		h.log.Error().Err(err).Msg("Subscriber export failed")
		return
	}
}

// TopShares handles GET /admin/shares/top?limit
func (h *AdminHandler) TopShares(c *gin.Context) {
	limit := intQuery(c, "limit", 10)

	top, err := h.services.Share.TopShared(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get top shared articles")
		abortForError(c, err, "Shares not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": top,
		"total":    len(top),
	})
}
