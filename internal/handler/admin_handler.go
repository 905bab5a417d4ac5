package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vital/internal/models"
	"vital/internal/repository"
	"vital/internal/service"
)

// AdminHandler is the support tooling: order lookup plus re-triggering the
// degraded-but-recoverable work (documents, email) for an already-paid
// order.
type AdminHandler struct {
	authSvc  *service.AuthService
	orders   *repository.OrderRepository
	docs     *service.DocumentService
	notifier *service.Notifier
}

func NewAdminHandler(authSvc *service.AuthService, orders *repository.OrderRepository, docs *service.DocumentService, notifier *service.Notifier) *AdminHandler {
	return &AdminHandler{authSvc: authSvc, orders: orders, docs: docs, notifier: notifier}
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
		return
	}
	token, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token})
}

func (h *AdminHandler) ListOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	orders, err := h.orders.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *AdminHandler) GetOrder(c *gin.Context) {
	order, err := h.orders.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

// RetriggerDocuments re-runs the document pipeline for one order. Existing
// documents are reused, never re-minted, so this is safe to call repeatedly.
func (h *AdminHandler) RetriggerDocuments(c *gin.Context) {
	order, err := h.orders.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	result, err := h.docs.Process(c.Request.Context(), order)
	if err != nil {
		log.Printf("[admin] retrigger documents for %s: %v", order.OrderNumber, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "document generation failed"})
		return
	}
	resp := gin.H{"order_number": order.OrderNumber}
	if result.Lmn != nil {
		resp["lmn_number"] = result.Lmn.LmnNumber
	}
	if result.Invoice != nil {
		resp["invoice_number"] = result.Invoice.InvoiceNumber
	}
	c.JSON(http.StatusOK, resp)
}

// ResendEmail re-sends the confirmation email with the current documents.
func (h *AdminHandler) ResendEmail(c *gin.Context) {
	order, err := h.orders.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	result, err := h.docs.Process(c.Request.Context(), order)
	if err != nil {
		log.Printf("[admin] resend email documents for %s: %v", order.OrderNumber, err)
	}
	var lmn *models.LmnRecord
	if result != nil {
		lmn = result.Lmn
	}
	if err := h.notifier.OrderConfirmed(c.Request.Context(), order, lmn); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "email send failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": true})
}
