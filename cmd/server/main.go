// @title           ERPDesk API
// @version         1.0
// @description     Document lifecycle and GST totals for expense reports, quotations, e-invoices, e-way bills and bookings.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"erpdesk/internal/config"
	_ "erpdesk/internal/docs"
	"erpdesk/internal/email/noop"
	"erpdesk/internal/email/ses"
	"erpdesk/internal/handler"
	"erpdesk/internal/lifecycle"
	"erpdesk/internal/logger"
	"erpdesk/internal/port"
	"erpdesk/internal/realtime"
	"erpdesk/internal/repository/postgres"
	"erpdesk/internal/router"
	"erpdesk/internal/service"
	s3storage "erpdesk/internal/storage/s3"
)

const shutdownTimeout = 15 * time.Second

func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log)
	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Server.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(ctx, &cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	tenantRepo := postgres.NewTenantRepo(db)
	userRepo := postgres.NewUserRepo(db)
	docRepo := postgres.NewDocumentRepo(db)
	seqRepo := postgres.NewSequenceRepo(db)
	auditRepo := postgres.NewDocumentAuditRepo(db)
	hsnRepo := postgres.NewHSNRepo(db)
	statsRepo := postgres.NewStatsRepo(db)

	// Initialize storage; exports can still be downloaded without it
	var storage port.ObjectStorage
	if cfg.S3.Bucket != "" {
		storage, err = s3storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	var emailSender port.EmailSender
	switch cfg.Email.Provider {
	case "ses":
		emailSender, err = ses.NewSESSender(ctx, cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName, cfg.Email.FrontendURL)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		emailSender = noop.NewNoopSender(cfg.Email.FrontendURL, log)
	}

	hub := realtime.NewHub(cfg.CORS.AllowedOrigins, log)
	go hub.Run(ctx)

	// Initialize services
	notifier := service.NewNotifier(hub, emailSender, userRepo, log)
	docSvc := service.NewDocumentService(
		docRepo, seqRepo, auditRepo, userRepo, tenantRepo, hsnRepo,
		lifecycle.NewMachine(), notifier,
		service.DocumentConfig{Tax: cfg.Tax, Workflow: cfg.Workflow},
		log,
	)
	authSvc := service.NewAuthService(userRepo, tenantRepo, cfg.JWT, log)
	registrationSvc := service.NewRegistrationService(tenantRepo, userRepo, authSvc, cfg.Tax.DefaultStateCode, log)
	userSvc := service.NewUserService(userRepo)
	tenantSvc := service.NewTenantService(tenantRepo)
	statsSvc := service.NewStatsService(statsRepo)
	exportSvc := service.NewExportService(docRepo, storage, cfg.S3, log)

	if cfg.Expiry.Enabled {
		worker := service.NewExpiryWorker(docRepo, docSvc, service.ExpiryWorkerConfig{
			PollInterval: time.Duration(cfg.Expiry.PollIntervalSecs) * time.Second,
			BatchSize:    cfg.Expiry.BatchSize,
			Concurrency:  cfg.Expiry.Concurrency,
		}, log)
		go worker.Start(ctx)
	}

	var storagePinger handler.Pinger
	if storage != nil {
		storagePinger = handler.PingFunc(func(ctx context.Context) error {
			return storage.Ping(ctx, cfg.S3.Bucket)
		})
	}

	// Initialize handlers
	handlers := router.Handlers{
		Auth:     handler.NewAuthHandler(authSvc, registrationSvc, log),
		Document: handler.NewDocumentHandler(docSvc, log),
		Tax:      handler.NewTaxHandler(docSvc, hsnRepo, log),
		Export:   handler.NewExportHandler(exportSvc, log),
		Stats:    handler.NewStatsHandler(statsSvc, log),
		Tenant:   handler.NewTenantHandler(tenantSvc, log),
		User:     handler.NewUserHandler(userSvc, log),
		Health:   handler.NewHealthHandler(db, storagePinger),
		Realtime: handler.NewRealtimeHandler(hub, log),
	}

	r := router.Setup(authSvc, handlers, router.Options{
		CORS:    cfg.CORS,
		Swagger: cfg.Server.Environment == "development",
	}, log)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Port).Str("env", cfg.Server.Environment).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
