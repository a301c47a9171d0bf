package handlers

import (
	"net/http"

	"pharmacy_pos_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// LookupHandler serves the reference tables the point of sale picks from.
type LookupHandler struct {
	lookupService services.LookupService
}

func NewLookupHandler(ls services.LookupService) *LookupHandler {
	return &LookupHandler{lookupService: ls}
}

func (h *LookupHandler) GetPaymentTypes(c *gin.Context) {
	types, err := h.lookupService.ListPaymentTypes(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to list payment types.")
		return
	}
	c.JSON(http.StatusOK, types)
}

func (h *LookupHandler) GetReceiptTypes(c *gin.Context) {
	types, err := h.lookupService.ListReceiptTypes(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to list receipt types.")
		return
	}
	c.JSON(http.StatusOK, types)
}
