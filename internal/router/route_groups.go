package router

import (
	"pharmacy_pos_backend/internal/handlers"
	"pharmacy_pos_backend/internal/middleware"
	"pharmacy_pos_backend/internal/models"

	"github.com/gin-gonic/gin"
)

var (
	allRoles   = []string{models.RoleAdmin, models.RolePharmacist, models.RoleCashier}
	stockRoles = []string{models.RoleAdmin, models.RolePharmacist}
	adminRoles = []string{models.RoleAdmin}
)

// SetupPublicAuthRoutes registers the routes reachable without a token.
func SetupPublicAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler, limiter *middleware.IPRateLimiter) {
	group.POST("/login", limiter.Middleware(), authHandler.Login)
}

func SetupAuthenticatedAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.GET("/me", authHandler.GetCurrentUser)
	group.POST("/logout", authHandler.Logout)
	group.POST("/register", middleware.RoleAuthMiddleware(adminRoles...), authHandler.RegisterEmployee)
}

// SetupSaleRoutes sets up checkout and sales history.
// Every role can sell; history and exports are for admins and pharmacists.
func SetupSaleRoutes(authenticatedGroup *gin.RouterGroup, saleHandler *handlers.SaleHandler) {
	saleRoutes := authenticatedGroup.Group("/sales")
	{
		saleRoutes.POST("", middleware.RoleAuthMiddleware(allRoles...), saleHandler.Checkout)
		saleRoutes.GET("", middleware.RoleAuthMiddleware(stockRoles...), saleHandler.ListSales)
		saleRoutes.GET("/export", middleware.RoleAuthMiddleware(stockRoles...), saleHandler.ExportSales)
		saleRoutes.GET("/:id", middleware.RoleAuthMiddleware(allRoles...), saleHandler.GetSale)
	}
}

// SetupStockLotRoutes sets up the lot ledger routes.
func SetupStockLotRoutes(authenticatedGroup *gin.RouterGroup, lotHandler *handlers.StockLotHandler) {
	lotRoutes := authenticatedGroup.Group("/stock-lots")
	{
		lotRoutes.GET("", lotHandler.ListLots)
		lotRoutes.GET("/:id", lotHandler.GetLot)
		lotRoutes.GET("/:id/movements", lotHandler.ListMovements)
		lotRoutes.POST("", middleware.RoleAuthMiddleware(stockRoles...), lotHandler.ReceiveLot)
		lotRoutes.PATCH("/:id/quantity", middleware.RoleAuthMiddleware(stockRoles...), lotHandler.AdjustLot)
	}
}

// SetupProductRoutes sets up the catalog routes.
func SetupProductRoutes(authenticatedGroup *gin.RouterGroup, productHandler *handlers.ProductHandler) {
	productRoutes := authenticatedGroup.Group("/products")
	{
		productRoutes.GET("", productHandler.GetProducts)
		productRoutes.GET("/:id", productHandler.GetProductByID)
		productRoutes.POST("", middleware.RoleAuthMiddleware(stockRoles...), productHandler.CreateProduct)
		productRoutes.PUT("/:id", middleware.RoleAuthMiddleware(stockRoles...), productHandler.UpdateProduct)
	}
}

// SetupCustomerRoutes sets up the customer routes.
func SetupCustomerRoutes(authenticatedGroup *gin.RouterGroup, customerHandler *handlers.CustomerHandler) {
	customerRoutes := authenticatedGroup.Group("/customers")
	customerRoutes.Use(middleware.RoleAuthMiddleware(allRoles...))
	{
		customerRoutes.POST("", customerHandler.CreateCustomer)
		customerRoutes.GET("", customerHandler.GetCustomers)
		customerRoutes.GET("/:id", customerHandler.GetCustomerByID)
		customerRoutes.PUT("/:id", customerHandler.UpdateCustomer)
	}
}

func SetupLookupRoutes(authenticatedGroup *gin.RouterGroup, lookupHandler *handlers.LookupHandler) {
	authenticatedGroup.GET("/payment-types", lookupHandler.GetPaymentTypes)
	authenticatedGroup.GET("/receipt-types", lookupHandler.GetReceiptTypes)
}

// SetupSettingsRoutes sets up the application settings routes.
func SetupSettingsRoutes(authenticatedGroup *gin.RouterGroup, settingHandler *handlers.SettingHandler) {
	settingsRoutes := authenticatedGroup.Group("/settings")
	settingsRoutes.Use(middleware.RoleAuthMiddleware(adminRoles...))
	{
		settingsRoutes.GET("", settingHandler.GetApplicationSettings)
		settingsRoutes.GET("/:key", settingHandler.GetApplicationSettingByKey)
		settingsRoutes.PUT("/:key", settingHandler.PutApplicationSetting)
		settingsRoutes.DELETE("/:key", settingHandler.DeleteApplicationSettingByKey)
	}
}
