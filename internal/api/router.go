package api

import (
	"time"

	dietHandler "recipe-finder/internal/api/handlers/diet"
	"recipe-finder/internal/api/handlers/health"
	recipeHandler "recipe-finder/internal/api/handlers/recipe"
	"recipe-finder/internal/api/middleware"
	"recipe-finder/internal/core/diet"
	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services 路由所需的服務
type Services struct {
	Source   recipe.Source
	Pipeline *diet.Pipeline
	Jobs     *diet.JobManager
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, svc Services) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "Location", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// 健康檢查路由
	var pinger health.Pinger
	if p, ok := svc.Source.(health.Pinger); ok {
		pinger = p
	}
	healthHandler := health.NewHandler(cfg, pinger, svc.Jobs)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	{
		recipes := recipeHandler.NewHandler(svc.Source)
		recipeGroup := api.Group("/recipes")
		{
			recipeGroup.POST("/search", recipes.HandleSearch)
			recipeGroup.POST("/suggestions", recipes.HandleSuggestions)
		}

		diets := dietHandler.NewHandler(svc.Pipeline, svc.Jobs)
		dietGroup := api.Group("/diet")
		{
			dietGroup.POST("/classify", diets.HandleClassify)
			dietGroup.POST("/exports", middleware.Deduplication(cfg.DedupWindow), diets.HandleCreateExport)
			dietGroup.GET("/exports/:id", diets.HandleGetExport)
			dietGroup.GET("/exports/:id/download", diets.HandleDownloadExport)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.String("store", cfg.Store.Driver),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router
}
