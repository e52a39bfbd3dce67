package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/seoulscene/magazine-api/internal/models"
	"github.com/seoulscene/magazine-api/internal/service"
	"github.com/seoulscene/magazine-api/internal/validation"
)

// ShareHandler handles share recording and stats endpoints
type ShareHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewShareHandler creates a new ShareHandler
func NewShareHandler(services *service.Services, log zerolog.Logger) *ShareHandler {
	return &ShareHandler{
		services: services,
		log:      log.With().Str("handler", "share").Logger(),
	}
}

// shareRequest is the POST /api/share body
type shareRequest struct {
	ArticleID   string  `json:"article_id"`
	Platform    string  `json:"platform"`
	AnonymousID *string `json:"anonymous_id,omitempty"`
}

// Record handles POST /api/share. The platform must be in the fixed
// enum; anything else is rejected before any row is written.
func (h *ShareHandler) Record(c *gin.Context) {
	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.ArticleID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "article_id is required"})
		return
	}
	if verr := validation.ValidatePlatform(req.Platform); verr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
		return
	}

	share := &models.Share{
		ArticleID:   req.ArticleID,
		Platform:    req.Platform,
		AnonymousID: req.AnonymousID,
		UserAgent:   c.Request.UserAgent(),
	}
	if referrer := c.Request.Referer(); referrer != "" {
		share.Referrer = &referrer
	}

	if _, err := h.services.Share.Record(c.Request.Context(), share); err != nil {
		abortForError(c, err, "Article not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Share recorded",
	})
}

// Stats handles GET /api/articles/:id/shares
func (h *ShareHandler) Stats(c *gin.Context) {
	stats, err := h.services.Share.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortForError(c, err, "Article not found")
		return
	}
	c.JSON(http.StatusOK, stats)
}
