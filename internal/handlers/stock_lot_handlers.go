package handlers

import (
	"net/http"

	"pharmacy_pos_backend/internal/models"
	"pharmacy_pos_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type StockLotHandler struct {
	lotService services.StockLotService
}

func NewStockLotHandler(ls services.StockLotService) *StockLotHandler {
	return &StockLotHandler{lotService: ls}
}

// ReceiveLot registers a goods receipt.
func (h *StockLotHandler) ReceiveLot(c *gin.Context) {
	employeeID, ok := currentEmployeeID(c)
	if !ok {
		return
	}
	var payload models.ReceiveLotPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}

	lot, err := h.lotService.ReceiveLot(c.Request.Context(), employeeID, payload)
	if err != nil {
		respondServiceError(c, err, "Failed to receive stock lot.")
		return
	}
	c.JSON(http.StatusCreated, lot)
}

// AdjustLot corrects a lot's quantity after a physical count.
func (h *StockLotHandler) AdjustLot(c *gin.Context) {
	employeeID, ok := currentEmployeeID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var payload models.AdjustLotPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}

	lot, err := h.lotService.AdjustLot(c.Request.Context(), employeeID, id, payload)
	if err != nil {
		respondServiceError(c, err, "Failed to adjust stock lot.")
		return
	}
	c.JSON(http.StatusOK, lot)
}

func (h *StockLotHandler) GetLot(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	lot, err := h.lotService.GetLot(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve stock lot.")
		return
	}
	c.JSON(http.StatusOK, lot)
}

func (h *StockLotHandler) ListLots(c *gin.Context) {
	var filters models.StockLotFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		respondBindError(c, err)
		return
	}
	filters.Normalize()

	lots, total, err := h.lotService.ListLots(c.Request.Context(), filters)
	if err != nil {
		respondServiceError(c, err, "Failed to list stock lots.")
		return
	}
	c.JSON(http.StatusOK, models.NewPaginatedResponse(lots, filters.Pagination, total))
}

func (h *StockLotHandler) ListMovements(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	movements, err := h.lotService.ListMovements(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to list stock movements.")
		return
	}
	c.JSON(http.StatusOK, movements)
}
