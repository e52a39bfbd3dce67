package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/seoulscene/magazine-api/internal/config"
	"github.com/seoulscene/magazine-api/internal/models"
	"github.com/seoulscene/magazine-api/internal/service"
)

// CategoryHandler handles public category endpoints
type CategoryHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "category").Logger(),
	}
}

// List handles GET /api/categories. With counts=true each category
// carries its published article count.
func (h *CategoryHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	if c.Query("counts") == "true" {
		categories, err := h.services.Category.ListWithCounts(ctx)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to list categories with counts")
			abortForError(c, err, "Categories not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"categories": categories,
			"total":      len(categories),
		})
		return
	}

	categories, err := h.services.Category.List(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list categories")
		abortForError(c, err, "Categories not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"total":      len(categories),
	})
}

// Articles handles GET /api/categories/:slug/articles?sort&limit&offset
func (h *CategoryHandler) Articles(c *gin.Context) {
	ctx := c.Request.Context()

	sortBy := c.DefaultQuery("sort", models.SortLatest)
	limit := intQuery(c, "limit", h.cfg.Listing.DefaultPageSize)
	offset := intQuery(c, "offset", 0)

	params := models.ListParams{
		PageSize: limit,
		Offset:   offset,
		SortBy:   sortBy,
	}

	category, page, err := h.services.Article.ListByCategorySlug(ctx, c.Param("slug"), params)
	if err != nil {
		abortForError(c, err, "Category not found")
		return
	}

	response := listingResponse(page, page.PageSize, offset)
	response["category"] = category
	response["sortBy"] = sortBy
	c.JSON(http.StatusOK, response)
}
