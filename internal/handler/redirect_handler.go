package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"vital/config"
	"vital/internal/domain"
	"vital/internal/payments"
	"vital/internal/service"
	"vital/pkg/provider"
)

// RedirectHandler terminates the synchronous confirmation protocols: the
// customer lands back here with a token or session id, and the server
// completes the provider round trip before routing the confirmation.
type RedirectHandler struct {
	router  *service.ConfirmationRouter
	bnplA   *provider.CaptureClient
	bnplB   *provider.FinalizeClient
	gateway *provider.GatewayClient
	cfg     *config.Config
}

func NewRedirectHandler(
	router *service.ConfirmationRouter,
	bnplA *provider.CaptureClient,
	bnplB *provider.FinalizeClient,
	gateway *provider.GatewayClient,
	cfg *config.Config,
) *RedirectHandler {
	return &RedirectHandler{router: router, bnplA: bnplA, bnplB: bnplB, gateway: gateway, cfg: cfg}
}

// Confirm handles GET /checkout/confirm/:provider. Once the provider
// reports the payment cleared, the customer is always sent to the success
// page: document or email degradation never surfaces here.
func (h *RedirectHandler) Confirm(c *gin.Context) {
	providerID := c.Param("provider")
	ctx := c.Request.Context()

	var ev payments.VerifiedEvent
	var err error
	switch providerID {
	case domain.ProviderBnplA:
		ev, err = h.confirmBnplA(c)
	case domain.ProviderBnplB:
		ev, err = h.confirmBnplB(c)
	case domain.ProviderCardGateway:
		ev, err = h.confirmGatewaySession(c)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown provider"})
		return
	}
	if err != nil {
		var ve *payments.VerificationError
		if errors.As(err, &ve) {
			log.Printf("[redirect] %s not approved: %v", providerID, err)
			c.Redirect(http.StatusSeeOther, h.cfg.Payment.ErrorURL+"?reason=not_approved")
			return
		}
		log.Printf("[redirect] %s provider call failed: %v", providerID, err)
		c.Redirect(http.StatusSeeOther, h.cfg.Payment.ErrorURL+"?reason=provider_error")
		return
	}

	if _, err := h.router.Process(ctx, ev); err != nil {
		if errors.Is(err, payments.ErrRetryableStorage) {
			// Money moved but the record didn't stick. Support can
			// re-trigger from the provider reference; show the retry page.
			log.Printf("[redirect] %s materialization failed: %v", providerID, err)
			c.Redirect(http.StatusSeeOther, h.cfg.Payment.ErrorURL+"?reason=processing")
			return
		}
		log.Printf("[redirect] %s unprocessable confirmation: %v", providerID, err)
		c.Redirect(http.StatusSeeOther, h.cfg.Payment.ErrorURL+"?reason=invalid")
		return
	}
	c.Redirect(http.StatusSeeOther, h.cfg.Payment.SuccessURL)
}

func (h *RedirectHandler) confirmBnplA(c *gin.Context) (payments.VerifiedEvent, error) {
	token := c.Query("token")
	if token == "" {
		return nil, payments.NotApproved("missing redirect token")
	}
	auth, err := h.bnplA.Authorize(c.Request.Context(), token)
	if err != nil {
		return nil, err
	}
	if auth.Status != "approved" {
		return nil, payments.NotApproved("authorization status %q", auth.Status)
	}
	capture, err := h.bnplA.Capture(c.Request.Context(), auth.ID)
	if err != nil {
		return nil, err
	}
	return &payments.BnplASettlement{Authorization: auth, Capture: capture}, nil
}

func (h *RedirectHandler) confirmBnplB(c *gin.Context) (payments.VerifiedEvent, error) {
	token := c.Query("order_token")
	if token == "" {
		token = c.Query("token")
	}
	if token == "" {
		return nil, payments.NotApproved("missing order token")
	}
	order, err := h.bnplB.FinalizeOrder(c.Request.Context(), token)
	if err != nil {
		return nil, err
	}
	if order.Status != "settled" {
		return nil, payments.NotApproved("order status %q", order.Status)
	}
	return &payments.BnplBSettlement{Order: order}, nil
}

func (h *RedirectHandler) confirmGatewaySession(c *gin.Context) (payments.VerifiedEvent, error) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		return nil, payments.NotApproved("missing session_id")
	}
	sess, err := h.gateway.RetrieveSession(c.Request.Context(), sessionID)
	if err != nil {
		return nil, err
	}
	if sess.PaymentStatus != "paid" && sess.PaymentStatus != "no_payment_required" {
		return nil, payments.NotApproved("session payment status %q", sess.PaymentStatus)
	}
	return &payments.GatewaySession{Session: sess}, nil
}
