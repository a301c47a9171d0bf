package handlers

import (
	"net/http"

	"pharmacy_pos_backend/internal/models"
	"pharmacy_pos_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	productService services.ProductService
}

func NewProductHandler(ps services.ProductService) *ProductHandler {
	return &ProductHandler{productService: ps}
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var payload models.CreateProductPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	product, err := h.productService.CreateProduct(c.Request.Context(), payload)
	if err != nil {
		respondServiceError(c, err, "Failed to create product.")
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) GetProductByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	product, err := h.productService.GetProductByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve product.")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) GetProducts(c *gin.Context) {
	var filters models.ProductFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		respondBindError(c, err)
		return
	}
	filters.Normalize()

	products, total, err := h.productService.GetProducts(c.Request.Context(), filters)
	if err != nil {
		respondServiceError(c, err, "Failed to list products.")
		return
	}
	c.JSON(http.StatusOK, models.NewPaginatedResponse(products, filters.Pagination, total))
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var payload models.UpdateProductPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	product, err := h.productService.UpdateProduct(c.Request.Context(), id, payload)
	if err != nil {
		respondServiceError(c, err, "Failed to update product.")
		return
	}
	c.JSON(http.StatusOK, product)
}
