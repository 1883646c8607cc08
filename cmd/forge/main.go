package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/tobbe/lexalpha/internal/config"
	"github.com/tobbe/lexalpha/internal/logger"
	"github.com/tobbe/lexalpha/internal/repository"
	"github.com/tobbe/lexalpha/internal/retry"
	"github.com/tobbe/lexalpha/internal/service"
	"github.com/tobbe/lexalpha/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: ./configs/config.yaml)")
	budget := flag.Duration("budget", 0, "override the batch wall-clock budget, e.g. 90s")
	sentinel := flag.Bool("sentinel", false, "run a discovery pass before the batch")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *budget > 0 {
		cfg.Forge.Budget = *budget
	}

	appLog := logger.NewDefault()
	logger.SetDefaultLogger(appLog)
	defer logger.Sync()

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize database")
	}

	legRepo := repository.NewLegislationRepository(db)
	analysisRepo := repository.NewAnalysisRepository(db)

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
	}

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

	forgeService := service.NewForgeService(
		legRepo,
		analysisRepo,
		acquireService,
		service.NewScoutService(modelService, policy, cfg.Forge.Workers, appLog),
		service.NewSynthesizerService(modelService, policy, appLog),
		service.NewRepairService(modelService, policy, appLog),
		service.NewMailerService(&service.MailerConfig{
			Enabled:   cfg.Mail.Enabled,
			APIKey:    cfg.Mail.APIKey,
			BaseURL:   cfg.Mail.BaseURL,
			From:      cfg.Mail.From,
			Recipient: cfg.Mail.Recipient,
		}),
		appLog,
		&service.ForgeConfig{
			ChunkSize: cfg.Forge.ChunkSize,
			Budget:    cfg.Forge.Budget,
		},
	)

	ctx := context.Background()

	if *sentinel {
		if !cfg.Sentinel.Enabled {
			appLog.Fatal("Sentinel requested but sentinel.enabled is false")
		}
		sentinelService := service.NewSentinelService(legRepo, &service.SentinelConfig{
			FeedURL:   cfg.Sentinel.FeedURL,
			Origin:    cfg.Acquire.Origin,
			UserAgent: cfg.Acquire.UserAgent,
			MaxNew:    cfg.Sentinel.MaxNew,
		}, appLog)

		ingested, err := sentinelService.Ingest(ctx)
		if err != nil {
			appLog.WithError(err).Fatal("Sentinel ingestion failed")
		}
		appLog.WithField("ingested", ingested).Info("Sentinel pass complete")
	}

	start := time.Now()
	stats, err := forgeService.RunBatch(ctx)
	if err != nil {
		appLog.WithError(err).Fatal("Batch aborted on store failure")
	}

	appLog.WithFields(logger.Fields{
		"processed":   stats.Processed,
		"ignored":     stats.Ignored,
		"failed":      stats.Failed,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Batch complete")

	// Stats on stdout so the run can be piped or scraped
	out, _ := json.Marshal(stats)
	fmt.Fprintln(os.Stdout, string(out))
}
