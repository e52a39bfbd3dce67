package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/seoulscene/magazine-api/internal/config"
	"github.com/seoulscene/magazine-api/internal/models"
	"github.com/seoulscene/magazine-api/internal/service"
)

// ArticleHandler handles public article endpoints
type ArticleHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *ArticleHandler {
	return &ArticleHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "article").Logger(),
	}
}

// listingResponse shapes one page of articles into the public
// listing envelope.
func listingResponse(page *models.ArticlePage, limit, offset int) gin.H {
	return gin.H{
		"articles": page.Data,
		"total":    page.Total,
		"pagination": gin.H{
			"limit":   limit,
			"offset":  offset,
			"hasMore": offset+limit < page.Total,
		},
	}
}

// List handles GET /api/articles?category&region&sort&limit&offset.
// The category parameter is a slug; an unknown slug is a 404.
func (h *ArticleHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	categorySlug := c.Query("category")
	region := c.Query("region")
	sortBy := c.DefaultQuery("sort", models.SortLatest)
	limit := intQuery(c, "limit", h.cfg.Listing.DefaultPageSize)
	offset := intQuery(c, "offset", 0)

	params := models.ListParams{
		PageSize: limit,
		Offset:   offset,
		Region:   region,
		SortBy:   sortBy,
	}

	if categorySlug != "" {
		category, err := h.services.Category.GetBySlug(ctx, categorySlug)
		if err != nil {
			abortForError(c, err, "Category not found")
			return
		}
		params.CategoryID = category.ID
	}

	page, err := h.services.Article.List(ctx, params)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list articles")
		abortForError(c, err, "Articles not found")
		return
	}

	response := listingResponse(page, page.PageSize, offset)
	response["category"] = nilIfEmpty(categorySlug)
	response["region"] = nilIfEmpty(region)
	response["sortBy"] = sortBy
	c.JSON(http.StatusOK, response)
}

// Search handles GET /api/search?q&category&region&sort&limit&offset
func (h *ArticleHandler) Search(c *gin.Context) {
	ctx := c.Request.Context()

	query := c.Query("q")
	categorySlug := c.Query("category")
	region := c.Query("region")
	sortBy := c.DefaultQuery("sort", models.SortLatest)
	limit := intQuery(c, "limit", h.cfg.Listing.DefaultPageSize)
	offset := intQuery(c, "offset", 0)

	params := models.ListParams{
		PageSize: limit,
		Offset:   offset,
		Region:   region,
		Search:   query,
		SortBy:   sortBy,
	}

	if categorySlug != "" {
		category, err := h.services.Category.GetBySlug(ctx, categorySlug)
		if err != nil {
			abortForError(c, err, "Category not found")
			return
		}
		params.CategoryID = category.ID
	}

	page, err := h.services.Article.List(ctx, params)
	if err != nil {
		h.log.Error().Err(err).Msg("Search failed")
		abortForError(c, err, "Articles not found")
		return
	}

	response := listingResponse(page, page.PageSize, offset)
	response["query"] = nilIfEmpty(query)
	response["category"] = nilIfEmpty(categorySlug)
	response["region"] = nilIfEmpty(region)
	response["sortBy"] = sortBy
	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/articles/:id. The parameter is an article id,
// with a slug fallback so canonical article URLs resolve too. Drafts
// are invisible here.
func (h *ArticleHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	key := c.Param("id")

	article, err := h.services.Article.Get(ctx, key, false)
	if errors.Is(err, service.ErrNotFound) {
		article, err = h.services.Article.GetBySlug(ctx, key, false)
	}
	if err != nil {
		if !errors.Is(err, service.ErrNotFound) {
			h.log.Error().Err(err).Str("article_id", key).Msg("Failed to get article")
		}
		abortForError(c, err, "Article not found")
		return
	}
	c.JSON(http.StatusOK, article)
}

// Related handles GET /api/articles/:id/related?limit
func (h *ArticleHandler) Related(c *gin.Context) {
	limit := intQuery(c, "limit", 3)

	related, err := h.services.Article.Related(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		abortForError(c, err, "Article not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"articles": related,
		"total":    len(related),
	})
}

// RecordView handles POST /api/articles/:id/views
func (h *ArticleHandler) RecordView(c *gin.Context) {
	views, err := h.services.Article.RecordView(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortForError(c, err, "Article not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"views": views})
}

// RecordLike handles POST /api/articles/:id/likes
func (h *ArticleHandler) RecordLike(c *gin.Context) {
	likes, err := h.services.Article.RecordLike(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortForError(c, err, "Article not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"likes": likes})
}

func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
