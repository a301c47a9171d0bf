package handlers

import (
	"errors"
	"net/http"

	"pharmacy_pos_backend/internal/middleware"
	"pharmacy_pos_backend/internal/services"
	"pharmacy_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// Order matters: the first matching sentinel wins.
var serviceErrors = []errorMapping{
	{services.ErrEmptyCart, http.StatusBadRequest, utils.ErrCodeEmptyCart},
	{services.ErrInsufficientStock, http.StatusBadRequest, utils.ErrCodeInsufficientStock},
	{services.ErrPaymentTypeNotFound, http.StatusBadRequest, utils.ErrCodePaymentTypeNotFound},
	{services.ErrValidation, http.StatusBadRequest, utils.ErrCodeValidationFailed},
	{services.ErrLotNotFound, http.StatusNotFound, utils.ErrCodeLotNotFound},
	{services.ErrCustomerNotFound, http.StatusNotFound, utils.ErrCodeCustomerNotFound},
	{services.ErrSaleNotFound, http.StatusNotFound, utils.ErrCodeNotFound},
	{services.ErrProductNotFound, http.StatusNotFound, utils.ErrCodeNotFound},
	{services.ErrCategoryNotFound, http.StatusNotFound, utils.ErrCodeNotFound},
	{services.ErrSupplierNotFound, http.StatusNotFound, utils.ErrCodeNotFound},
	{services.ErrEmployeeNotFound, http.StatusNotFound, utils.ErrCodeNotFound},
	{services.ErrSettingNotFound, http.StatusNotFound, utils.ErrCodeNotFound},
	{services.ErrCheckoutConflict, http.StatusConflict, utils.ErrCodeCheckoutConflict},
	{services.ErrConcurrentUpdate, http.StatusConflict, utils.ErrCodeConflict},
	{services.ErrDuplicate, http.StatusConflict, utils.ErrCodeConflict},
	{services.ErrUsernameTaken, http.StatusConflict, utils.ErrCodeConflict},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, utils.ErrCodeUnauthorized},
	{services.ErrInactiveAccount, http.StatusForbidden, utils.ErrCodeForbidden},
	{services.ErrConfiguration, http.StatusInternalServerError, utils.ErrCodeConfiguration},
}

// respondServiceError maps a service error onto the API error envelope.
// Anything unrecognised becomes a 500 whose details stay in the server log.
func respondServiceError(c *gin.Context, err error, fallback string) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.target) {
			if m.status >= http.StatusInternalServerError {
				_ = c.Error(err)
			}
			utils.RespondWithError(c, utils.NewAPIError(m.status, m.code, err.Error(), ""))
			return
		}
	}
	utils.RespondInternalError(c, err, fallback)
}

func respondBindError(c *gin.Context, err error) {
	utils.RespondValidationFailed(c, err.Error())
}

// pathID reads a positive int64 route parameter, answering 400 otherwise.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := utils.ParsePositiveID(c.Param(name))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid "+name, err.Error()))
		return 0, false
	}
	return id, true
}

// currentEmployeeID returns the authenticated employee set by AuthMiddleware.
func currentEmployeeID(c *gin.Context) (int64, bool) {
	id, ok := c.Get(middleware.ContextUserID)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", "Missing user ID in context"))
		return 0, false
	}
	employeeID, ok := id.(int64)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User ID format incorrect.", "Invalid user ID format in context"))
		return 0, false
	}
	return employeeID, true
}
