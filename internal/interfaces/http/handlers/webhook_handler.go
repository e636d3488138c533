package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	domainerrors "echoforge.backend/internal/domain/errors"
	"echoforge.backend/internal/interfaces/http/response"
)

type WebhookService interface {
	HandleStripe(ctx context.Context, body []byte, sigHeader string) error
	HandleFlutterwave(ctx context.Context, body []byte, verifHash string) error
}

// WebhookHandler handles provider webhook endpoints. The raw body is
// read before any parsing because the signature covers the exact bytes.
type WebhookHandler struct {
	webhookUsecase WebhookService
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(webhookUsecase WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookUsecase: webhookUsecase}
}

// HandleStripeWebhook handles incoming Stripe events
// POST /api/v1/webhooks/stripe
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		response.Error(c, domainerrors.BadRequest("unable to read request body"))
		return
	}

	if err := h.webhookUsecase.HandleStripe(c.Request.Context(), body, c.GetHeader("Stripe-Signature")); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// HandleFlutterwaveWebhook handles incoming Flutterwave events
// POST /api/v1/webhooks/flutterwave
func (h *WebhookHandler) HandleFlutterwaveWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		response.Error(c, domainerrors.BadRequest("unable to read request body"))
		return
	}

	if err := h.webhookUsecase.HandleFlutterwave(c.Request.Context(), body, c.GetHeader("verif-hash")); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
