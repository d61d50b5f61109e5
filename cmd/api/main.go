package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/arsitekta/arsitekta-api/api/swagger"
	"github.com/arsitekta/arsitekta-api/internal/handler"
	"github.com/arsitekta/arsitekta-api/internal/middleware"
	"github.com/arsitekta/arsitekta-api/internal/models"
	"github.com/arsitekta/arsitekta-api/internal/repository"
	"github.com/arsitekta/arsitekta-api/internal/service"
	"github.com/arsitekta/arsitekta-api/pkg/config"
	"github.com/arsitekta/arsitekta-api/pkg/database"
	"github.com/arsitekta/arsitekta-api/pkg/logger"
	corsmiddleware "github.com/arsitekta/arsitekta-api/pkg/middleware/cors"
	reqidmiddleware "github.com/arsitekta/arsitekta-api/pkg/middleware/requestid"
	"github.com/arsitekta/arsitekta-api/pkg/storage"

	rediscache "github.com/arsitekta/arsitekta-api/pkg/cache"
)

// @title Arsitekta API
// @version 1.0.0
// @description Architect portfolio and design catalog backend
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	// Redis is an accelerator, not a dependency: the catalog degrades to
	// repository reads when it is unreachable.
	redisClient, err := rediscache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, catalog cache disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	uploadStorage, err := storage.NewLocalStorage(cfg.Uploads.BaseDir, cfg.Uploads.PublicBaseURL)
	if err != nil {
		logr.Sugar().Fatalw("failed to init upload storage", "error", err)
	}

	architectRepo := repository.NewArchitectRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	designRepo := repository.NewDesignRepository(db)
	portfolioRepo := repository.NewPortfolioLinkRepository(db)
	arsipediaRepo := repository.NewArsipediaRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(architectRepo, adminRepo, validator.New(), logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	designSvc := service.NewDesignService(designRepo, architectRepo, uploadStorage, cacheRepo, metricsSvc, logr, service.DesignServiceConfig{
		CacheTTL:    cfg.Catalog.CacheTTL,
		LatestLimit: cfg.Catalog.LatestLimit,
	})
	portfolioSvc := service.NewPortfolioLinkService(portfolioRepo, architectRepo, logr)
	arsipediaSvc := service.NewArsipediaService(arsipediaRepo, adminRepo, uploadStorage, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	designHandler := handler.NewDesignHandler(designSvc)
	portfolioHandler := handler.NewPortfolioLinkHandler(portfolioSvc)
	arsipediaHandler := handler.NewArsipediaHandler(arsipediaSvc, uploadStorage)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = cfg.Uploads.MaxFileSizeBytes
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)
	r.Static(cfg.Uploads.PublicBaseURL, cfg.Uploads.BaseDir)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/admin/login", authHandler.AdminLogin)
	}

	designs := api.Group("/designs")
	{
		designs.GET("", designHandler.List)
		designs.GET("/search", designHandler.Search)
		designs.GET("/latest", designHandler.ListLatest)
		designs.GET("/category/:kategori", designHandler.ListByKategori)
		designs.GET("/:id", designHandler.Get)
	}

	arsipedia := api.Group("/arsipedia")
	{
		arsipedia.GET("", arsipediaHandler.List)
		arsipedia.GET("/:id", arsipediaHandler.Get)
	}

	architects := api.Group("/architects")
	architects.Use(middleware.JWT(authSvc), middleware.RequireRoles(models.RoleArchitect))
	{
		architects.POST("/designs", designHandler.Create)
		architects.GET("/designs", designHandler.ListMine)
		architects.GET("/designs/statistics", designHandler.Statistics)
		architects.GET("/designs/export", designHandler.Export)
		architects.PUT("/designs/:id", designHandler.Update)
		architects.DELETE("/designs/:id", designHandler.Delete)

		architects.POST("/portfolio-links", portfolioHandler.Create)
		architects.GET("/portfolio-links", portfolioHandler.ListMine)
		architects.POST("/portfolio-links/reorder", portfolioHandler.Reorder)
		architects.GET("/portfolio-links/:id", portfolioHandler.Get)
		architects.PUT("/portfolio-links/:id", portfolioHandler.Update)
		architects.DELETE("/portfolio-links/:id", portfolioHandler.Delete)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.PUT("/designs/:id", designHandler.AdminUpdate)
		admin.DELETE("/designs/:id", designHandler.AdminDelete)

		admin.POST("/arsipedia", arsipediaHandler.Create)
		admin.PUT("/arsipedia/:id", arsipediaHandler.Update)
		admin.DELETE("/arsipedia/:id", arsipediaHandler.Delete)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
