package handlers

import (
	"net/http"

	"pharmacy_pos_backend/internal/models"
	"pharmacy_pos_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// CustomerHandler holds the customer service.
type CustomerHandler struct {
	customerService services.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(cs services.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: cs}
}

func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var payload models.CreateCustomerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	customer, err := h.customerService.CreateCustomer(c.Request.Context(), payload)
	if err != nil {
		respondServiceError(c, err, "Failed to create customer.")
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func (h *CustomerHandler) GetCustomerByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	customer, err := h.customerService.GetCustomerByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve customer.")
		return
	}
	c.JSON(http.StatusOK, customer)
}

// GetCustomers lists customers, optionally matching a name, document or phone.
func (h *CustomerHandler) GetCustomers(c *gin.Context) {
	var filters models.CustomerFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		respondBindError(c, err)
		return
	}
	filters.Normalize()

	customers, total, err := h.customerService.GetCustomers(c.Request.Context(), filters)
	if err != nil {
		respondServiceError(c, err, "Failed to list customers.")
		return
	}
	c.JSON(http.StatusOK, models.NewPaginatedResponse(customers, filters.Pagination, total))
}

func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var payload models.UpdateCustomerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), id, payload)
	if err != nil {
		respondServiceError(c, err, "Failed to update customer.")
		return
	}
	c.JSON(http.StatusOK, customer)
}
