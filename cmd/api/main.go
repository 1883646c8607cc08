package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tobbe/lexalpha/internal/api"
	"github.com/tobbe/lexalpha/internal/config"
	"github.com/tobbe/lexalpha/internal/logger"
	"github.com/tobbe/lexalpha/internal/repository"
	"github.com/tobbe/lexalpha/internal/retry"
	"github.com/tobbe/lexalpha/internal/service"
	"github.com/tobbe/lexalpha/internal/storage"
)

func main() {
	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLog := logger.NewDefault()
	logger.SetDefaultLogger(appLog)
	defer logger.Sync()

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize repositories
	legRepo := repository.NewLegislationRepository(db)
	analysisRepo := repository.NewAnalysisRepository(db)

	// Initialize document archive (optional, S3-compatible)
	var archive storage.ObjectStorage
	if cfg.Archive.Enabled {
		archive, err = storage.NewStorage(&storage.S3Config{
			Endpoint:  cfg.Archive.Endpoint,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			UseSSL:    cfg.Archive.UseSSL,
			Bucket:    cfg.Archive.Bucket,
			Region:    cfg.Archive.Region,
			PublicURL: cfg.Archive.PublicURL,
		})
		if err != nil {
			appLog.WithError(err).Fatal("Failed to initialize document archive")
		}
		if ensurer, ok := archive.(interface{ EnsureBucket(context.Context) error }); ok {
			if err := ensurer.EnsureBucket(context.Background()); err != nil {
				appLog.WithError(err).Fatal("Failed to ensure archive bucket")
			}
		}
	}

	// Initialize model access shared by scout, synthesis and repair
	modelService := service.NewModelService(&service.ModelConfig{
		APIKey:     cfg.Model.APIKey,
		BaseURL:    cfg.Model.BaseURL,
		ScoutModel: cfg.Model.ScoutModel,
		SynthModel: cfg.Model.SynthModel,
	})

	policy := retry.DefaultPolicy()
	if cfg.Forge.RetryAttempts > 0 {
		policy.Attempts = cfg.Forge.RetryAttempts
	}
	if cfg.Forge.RetryInitialWait > 0 {
		policy.InitialWait = cfg.Forge.RetryInitialWait
	}

	acquireService := service.NewAcquireService(&service.AcquireConfig{
		Origin:       cfg.Acquire.Origin,
		UserAgent:    cfg.Acquire.UserAgent,
		LocaleMarker: cfg.Acquire.LocaleMarker,
		PageTimeout:  cfg.Acquire.PageTimeout,
		DocTimeout:   cfg.Acquire.DocTimeout,
	}, archive, appLog)

	scoutService := service.NewScoutService(modelService, policy, cfg.Forge.Workers, appLog)
	synthService := service.NewSynthesizerService(modelService, policy, appLog)
	repairService := service.NewRepairService(modelService, policy, appLog)

	mailerService := service.NewMailerService(&service.MailerConfig{
		Enabled:   cfg.Mail.Enabled,
		APIKey:    cfg.Mail.APIKey,
		BaseURL:   cfg.Mail.BaseURL,
		From:      cfg.Mail.From,
		Recipient: cfg.Mail.Recipient,
	})
	if mailerService.IsEnabled() {
		appLog.WithField("recipient", cfg.Mail.Recipient).Info("Verdict alerts enabled")
	}

	forgeService := service.NewForgeService(
		legRepo,
		analysisRepo,
		acquireService,
		scoutService,
		synthService,
		repairService,
		mailerService,
		appLog,
		&service.ForgeConfig{
			ChunkSize: cfg.Forge.ChunkSize,
			Budget:    cfg.Forge.Budget,
		},
	)

	var sentinelService *service.SentinelService
	if cfg.Sentinel.Enabled {
		sentinelService = service.NewSentinelService(legRepo, &service.SentinelConfig{
			FeedURL:   cfg.Sentinel.FeedURL,
			Origin:    cfg.Acquire.Origin,
			UserAgent: cfg.Acquire.UserAgent,
			MaxNew:    cfg.Sentinel.MaxNew,
		}, appLog)
	}

	// Setup router
	corsOrigins := cfg.Server.CORS.AllowedOrigins
	if cfg.Server.CORS.AllowAllOrigins {
		corsOrigins = nil
	}
	router := api.SetupRouter(forgeService, sentinelService, legRepo, analysisRepo, appLog, cfg.Server.Mode, corsOrigins)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLog.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.WithError(err).Fatal("Server forced to shutdown")
	}

	appLog.Info("Server exited")
}
