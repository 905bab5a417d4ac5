package handler

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"vital/config"
	"vital/internal/domain"
	"vital/internal/payments"
	"vital/internal/service"
)

// WebhookHandler terminates the asynchronous confirmation protocols:
// POST /webhook/:provider with a signed raw JSON body.
type WebhookHandler struct {
	router *service.ConfirmationRouter
	cfg    *config.Config
}

func NewWebhookHandler(router *service.ConfirmationRouter, cfg *config.Config) *WebhookHandler {
	return &WebhookHandler{router: router, cfg: cfg}
}

// Handle verifies and processes one delivery. 200 means durably
// materialized (even when later stages degraded); non-200 tells the
// provider to redeliver.
func (h *WebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	var ev payments.VerifiedEvent
	var verr error
	providerID := c.Param("provider")
	switch providerID {
	case domain.ProviderCardDirect:
		ev, verr = payments.VerifyDirectWebhook(body, c.GetHeader("X-Webhook-Signature"), h.cfg.DirectGateway.WebhookSecret)
	case domain.ProviderCardGateway:
		ev, verr = payments.VerifyGatewayWebhook(body, c.GetHeader("Stripe-Signature"), h.cfg.Gateway.WebhookSecret)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown provider"})
		return
	}
	if verr != nil {
		log.Printf("[webhook] %s rejected: %v", providerID, verr)
		var ve *payments.VerificationError
		if errors.As(verr, &ve) && ve.Reason == payments.ReasonMalformedPayload {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	out, err := h.router.Process(c.Request.Context(), ev)
	if err != nil {
		if errors.Is(err, payments.ErrRetryableStorage) {
			// Not yet processed; the provider must retry delivery.
			log.Printf("[webhook] %s retryable failure: %v", providerID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "not processed"})
			return
		}
		log.Printf("[webhook] %s bad event: %v", providerID, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "unprocessable event"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true, "status": out.Status})
}
