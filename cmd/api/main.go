package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bakery_quote_backend/internal/admin"
	"bakery_quote_backend/internal/bom"
	"bakery_quote_backend/internal/chat"
	"bakery_quote_backend/internal/dates"
	datesclient "bakery_quote_backend/internal/dates/client"
	"bakery_quote_backend/internal/email"
	apphttp "bakery_quote_backend/internal/http"
	"bakery_quote_backend/internal/http/router"
	"bakery_quote_backend/internal/materials"
	"bakery_quote_backend/internal/pdf"
	"bakery_quote_backend/internal/pricing"
	"bakery_quote_backend/internal/quoting"
	quotingsvc "bakery_quote_backend/internal/quoting/service"
	"bakery_quote_backend/internal/sheets"
	"bakery_quote_backend/internal/storage"
	"bakery_quote_backend/platform/ai/mistral"
	"bakery_quote_backend/platform/config"
	"bakery_quote_backend/platform/db"
	"bakery_quote_backend/platform/logger"
	"bakery_quote_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Shared validator instance for dependency injection
	val := validator.New()

	registry := bom.NewRegistry()
	if path := cfg.GetBOMRegistryPath(); path != "" {
		registry, err = bom.LoadRegistry(path)
		if err != nil {
			log.Error("failed to load recipe registry", "error", err, "path", path)
			panic("failed to load recipe registry: " + err.Error())
		}
		log.Info("recipe registry loaded", "path", path, "jobTypes", registry.JobTypes())
	}

	// Date services: worldtime for "today", a public-holiday calendar as the
	// availability check for customer-supplied due dates.
	today := datesclient.NewWorldTimeClient(cfg.GetWorldTimeAPIURL(), log)
	resolver := dates.NewResolver(today, cfg.GetDateValidationToday())
	holiday := datesclient.NewHolidayClient(cfg.GetDateValidationAPIURL(), cfg.GetDateValidationCountry(), log)

	model := mistral.NewClient(mistral.Config{
		APIKey:  cfg.GetMistralAPIKey(),
		BaseURL: cfg.GetMistralBaseURL(),
		Model:   cfg.GetMistralModel(),
	})
	log.Info("chat model configured", "model", model.Model())

	var converter quotingsvc.HTMLConverter
	if cfg.IsGotenbergEnabled() {
		converter = pdf.NewGotenbergClient(cfg.GetGotenbergURL(), cfg.GetGotenbergUsername(), cfg.GetGotenbergPassword())
		log.Info("gotenberg PDF generator initialized", "url", cfg.GetGotenbergURL())
	}

	var archiver quotingsvc.ArtifactArchiver
	if cfg.IsMinIOEnabled() {
		minioArchiver, err := storage.NewArchiver(cfg, log)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		if err := withRetry(ctx, log, "ensure quote-artifacts bucket", 5, 2*time.Second, func() error {
			return minioArchiver.EnsureBucket(ctx)
		}); err != nil {
			log.Error("failed to ensure storage bucket exists", "error", err, "bucket", cfg.GetMinioBucketQuoteArtifacts())
			panic("failed to ensure storage bucket exists: " + err.Error())
		}
		archiver = minioArchiver
		log.Info("storage service initialized", "quoteArtifactsBucket", cfg.GetMinioBucketQuoteArtifacts())
	}

	sender := email.NewSender(cfg)
	if !sender.Enabled() {
		log.Warn("SMTP not configured; quote emails disabled")
	}
	sheet := sheets.NewClient(cfg, log)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	materialsModule := materials.NewModule(pool, val, log)
	estimator := pricing.NewEstimator(registry, materialsModule.Service(), cfg.GetFXRates(), pricing.Defaults{
		Currency:  cfg.GetDefaultCurrency(),
		LaborRate: cfg.GetDefaultLaborRate(),
		MarkupPct: cfg.GetDefaultMarkupPct(),
		VATPct:    cfg.GetDefaultVATPct(),
	})

	quotingModule := quoting.NewModule(cfg, converter, archiver, log)
	adminModule := admin.NewModule(cfg, val)

	chatModule := chat.NewModule(chat.Deps{
		Model:      model,
		Estimator:  estimator,
		Catalog:    materialsModule.Service(),
		Resolver:   resolver,
		Holiday:    holiday,
		Builder:    quotingModule.Builder(),
		Email:      sender,
		Sheets:     sheet,
		SenderName: cfg.GetSenderName(),
		FXRates:    cfg.GetFXRates(),
	}, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:    cfg,
		Logger:    log,
		Health:    db.NewPoolAdapter(pool),
		AdminAuth: adminModule.AuthMiddleware(),
		Modules: []apphttp.Module{
			chatModule,
			quotingModule,
			materialsModule,
			adminModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", name, attempts, lastErr)
}
