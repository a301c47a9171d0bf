package router

import (
	"net/http"

	"pharmacy_pos_backend/internal/config"
	"pharmacy_pos_backend/internal/handlers"
	"pharmacy_pos_backend/internal/middleware"
	"pharmacy_pos_backend/internal/repositories"
	"pharmacy_pos_backend/internal/services"
	"pharmacy_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sqlx.DB, cfg *config.Config) {
	handlers.RegisterValidators()

	// Initialize Repositories
	authRepo := repositories.NewAuthRepository(db)
	customerRepo := repositories.NewCustomerRepository(db)
	productRepo := repositories.NewProductRepository(db)
	lotRepo := repositories.NewStockLotRepository(db)
	movementRepo := repositories.NewStockMovementRepository(db)
	saleRepo := repositories.NewSaleRepository(db)
	lookupRepo := repositories.NewLookupRepository(db)
	settingRepo := repositories.NewSettingRepository(db)
	sequenceRepo := repositories.NewReceiptSequenceRepository()

	// Initialize Services
	jwt := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)

	authService := services.NewAuthService(authRepo, db, jwt)
	customerService := services.NewCustomerService(customerRepo, db)
	productService := services.NewProductService(productRepo, db)
	lotService := services.NewStockLotService(db, lotRepo, movementRepo, productRepo, cfg.Checkout.MaxTxAttempts)
	saleService := services.NewSaleService(db, saleRepo, lotRepo, movementRepo, customerRepo, lookupRepo,
		settingRepo, sequenceRepo, cfg.Checkout)
	lookupService := services.NewLookupService(lookupRepo)
	settingService := services.NewSettingService(settingRepo, lookupRepo, db)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	productHandler := handlers.NewProductHandler(productService)
	lotHandler := handlers.NewStockLotHandler(lotService)
	saleHandler := handlers.NewSaleHandler(saleService)
	lookupHandler := handlers.NewLookupHandler(lookupService)
	settingHandler := handlers.NewSettingHandler(settingService)

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := engine.Group("/api/v1")

	loginLimiter := middleware.NewIPRateLimiter(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.LoginBurst)
	SetupPublicAuthRoutes(apiV1.Group("/auth"), authHandler, loginLimiter)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware(jwt))
	{
		SetupAuthenticatedAuthRoutes(authenticated.Group("/auth"), authHandler)
		SetupSaleRoutes(authenticated, saleHandler)
		SetupStockLotRoutes(authenticated, lotHandler)
		SetupProductRoutes(authenticated, productHandler)
		SetupCustomerRoutes(authenticated, customerHandler)
		SetupLookupRoutes(authenticated, lookupHandler)
		SetupSettingsRoutes(authenticated, settingHandler)
	}
}
