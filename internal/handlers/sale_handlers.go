package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"pharmacy_pos_backend/internal/models"
	"pharmacy_pos_backend/internal/services"
	"pharmacy_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type SaleHandler struct {
	saleService services.SaleService
}

func NewSaleHandler(ss services.SaleService) *SaleHandler {
	return &SaleHandler{saleService: ss}
}

// Checkout records a sale for the authenticated employee and answers 201 with
// the receipt number and totals.
func (h *SaleHandler) Checkout(c *gin.Context) {
	employeeID, ok := currentEmployeeID(c)
	if !ok {
		return
	}

	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	sale, err := h.saleService.Checkout(c.Request.Context(), employeeID, req)
	if err != nil {
		respondServiceError(c, err, "Failed to complete checkout.")
		return
	}
	c.Header("Location", "/api/v1/sales/"+utils.Int64ToStr(sale.ID))
	c.JSON(http.StatusCreated, models.NewCheckoutResponse(sale))
}

func (h *SaleHandler) GetSale(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	sale, err := h.saleService.GetSale(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve sale.")
		return
	}
	c.JSON(http.StatusOK, sale)
}

func (h *SaleHandler) ListSales(c *gin.Context) {
	var filters models.SaleFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		respondBindError(c, err)
		return
	}
	filters.Normalize()

	sales, total, err := h.saleService.ListSales(c.Request.Context(), filters)
	if err != nil {
		respondServiceError(c, err, "Failed to list sales.")
		return
	}
	c.JSON(http.StatusOK, models.NewPaginatedResponse(sales, filters.Pagination, total))
}

// ExportSales streams the filtered sales as an XLSX attachment.
func (h *SaleHandler) ExportSales(c *gin.Context) {
	var filters models.SaleFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		respondBindError(c, err)
		return
	}

	// Buffered so a failure midway still yields a JSON error instead of a truncated file.
	var buf bytes.Buffer
	if err := h.saleService.ExportSales(c.Request.Context(), filters, &buf); err != nil {
		respondServiceError(c, err, "Failed to export sales.")
		return
	}

	filename := fmt.Sprintf("sales-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
