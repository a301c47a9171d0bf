package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pharmacy_pos_backend/internal/config"
	"pharmacy_pos_backend/internal/database"
	"pharmacy_pos_backend/internal/router"
	"pharmacy_pos_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.InitLogger("info", true)
		utils.LogError(err, "Invalid configuration")
		os.Exit(1)
	}
	utils.InitLogger(cfg.Log.Level, cfg.Log.Pretty)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		utils.LogError(err, "Failed to connect to database", map[string]interface{}{"driver": cfg.Database.Driver})
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		utils.LogError(err, "Failed to apply schema")
		os.Exit(1)
	}
	if err := database.Seed(ctx, db, cfg); err != nil {
		utils.LogError(err, "Failed to seed reference data")
		os.Exit(1)
	}
	utils.LogInfo("Database initialized", map[string]interface{}{"driver": cfg.Database.Driver})

	if cfg.IsProduction() || !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(utils.GinLogger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", utils.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{utils.RequestIDHeader, "Content-Disposition", "Retry-After"}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	router.Setup(engine, db, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.LogInfo("Server starting", map[string]interface{}{"port": cfg.App.Port, "env": cfg.App.Env})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.LogError(err, "Failed to start server")
			stop()
		}
	}()

	<-ctx.Done()
	utils.LogInfo("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.LogError(err, "Server forced to shut down")
	}
}
