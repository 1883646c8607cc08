package api

import (
	"github.com/gin-gonic/gin"

	"github.com/tobbe/lexalpha/internal/api/handler"
	"github.com/tobbe/lexalpha/internal/api/middleware"
	"github.com/tobbe/lexalpha/internal/logger"
	"github.com/tobbe/lexalpha/internal/repository"
	"github.com/tobbe/lexalpha/internal/service"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	forgeService *service.ForgeService,
	sentinelService *service.SentinelService,
	legRepo *repository.LegislationRepository,
	analysisRepo *repository.AnalysisRepository,
	log *logger.Logger,
	mode string,
	corsOrigins []string,
) *gin.Engine {
	// Set Gin mode
	switch mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  corsOrigins,
		AllowAllOrigins: len(corsOrigins) == 0,
	}))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	forgeHandler := handler.NewForgeHandler(forgeService, sentinelService)
	legislationHandler := handler.NewLegislationHandler(legRepo, analysisRepo)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Pipeline triggers
		v1.POST("/forge/run", forgeHandler.RunBatch)
		v1.POST("/sentinel/run", forgeHandler.RunSentinel)

		// Legislation queue
		v1.GET("/legislations", legislationHandler.List)
		v1.GET("/legislations/:id", legislationHandler.Get)
		v1.GET("/legislations/:id/analysis", legislationHandler.GetAnalysis)

		// Verdicts
		v1.GET("/analyses", legislationHandler.ListAnalyses)
	}

	return r
}
