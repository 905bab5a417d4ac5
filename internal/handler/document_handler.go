package handler

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vital/internal/service"
)

// DocumentHandler serves stored documents, regenerating the PDF from the
// structured record on every request.
type DocumentHandler struct {
	docs *service.DocumentService
}

func NewDocumentHandler(docs *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{docs: docs}
}

// Get handles GET /documents/:number for LMN-* and INV-* numbers.
func (h *DocumentHandler) Get(c *gin.Context) {
	number := c.Param("number")
	var content []byte
	var err error
	switch {
	case strings.HasPrefix(number, "LMN-"):
		content, err = h.docs.LmnPDF(c.Request.Context(), number)
	case strings.HasPrefix(number, "INV-"):
		content, err = h.docs.InvoicePDF(c.Request.Context(), number)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown document number"})
		return
	}
	if err != nil {
		log.Printf("[documents] serve %s: %v", number, err)
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+number+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", content)
}
