package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/seoulscene/magazine-api/internal/service"
	"github.com/seoulscene/magazine-api/internal/validation"
)

// SubscriptionHandler handles the public subscription lifecycle
type SubscriptionHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewSubscriptionHandler creates a new SubscriptionHandler
func NewSubscriptionHandler(services *service.Services, log zerolog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		services: services,
		log:      log.With().Str("handler", "subscription").Logger(),
	}
}

// subscribeRequest is the POST /api/subscriptions body
type subscribeRequest struct {
	Email      string   `json:"email"`
	Categories []string `json:"categories"`
}

// Subscribe handles POST /api/subscriptions
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if verr := validation.ValidateEmail(req.Email); verr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
		return
	}

	sub, err := h.services.Subscription.Subscribe(c.Request.Context(), req.Email, req.Categories)
	if err != nil {
		h.log.Error().Err(err).Msg("Subscribe failed")
		abortForError(c, err, "Subscription not found")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":      true,
		"subscription": sub,
	})
}

// Verify handles GET /api/subscriptions/verify?token=...
func (h *SubscriptionHandler) Verify(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	sub, err := h.services.Subscription.Verify(c.Request.Context(), token)
	if err != nil {
		abortForError(c, err, "Subscription not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"subscription": sub,
	})
}

// unsubscribeRequest is the POST /api/subscriptions/unsubscribe body
type unsubscribeRequest struct {
	Email string `json:"email"`
}

// Unsubscribe handles POST /api/subscriptions/unsubscribe
func (h *SubscriptionHandler) Unsubscribe(c *gin.Context) {
	var req unsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if verr := validation.ValidateEmail(req.Email); verr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
		return
	}

	sub, err := h.services.Subscription.Unsubscribe(c.Request.Context(), req.Email)
	if err != nil {
		abortForError(c, err, "Subscription not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"subscription": sub,
	})
}
