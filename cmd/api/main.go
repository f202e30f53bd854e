package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pdfapi/internal/config"
	"pdfapi/internal/database"
	"pdfapi/internal/database/migration"
	handlers "pdfapi/internal/http/handler"
	"pdfapi/internal/http/middleware"
	"pdfapi/internal/logging"
	"pdfapi/internal/metrics"
	"pdfapi/internal/otel"
	"pdfapi/internal/pdf"
	"pdfapi/internal/repository"
	"pdfapi/internal/repository/memory"
	"pdfapi/internal/repository/postgres"
	"pdfapi/internal/service"
	"pdfapi/internal/staging"
	"pdfapi/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// @title PDF API
// @version 1.0
// @description Merge, watermark, split, rotate and extract text from PDF files, and generate cover letters.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := cfg.Location()
	log := logging.New(os.Stdout, loc, logging.ParseLevel(cfg.LogLevel))

	if err := run(cfg, loc, log); err != nil {
		log.Error("startup_failed", logging.KeyError, err.Error())
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, loc *time.Location, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing_shutdown_failed", logging.KeyError, err.Error())
		}
	}()

	stager, err := staging.New(cfg.Storage.UploadDir)
	if err != nil {
		return err
	}

	// Outbound artifact area: local directory or S3-compatible bucket
	objStore, err := storage.New(cfg)
	if err != nil {
		return err
	}

	db, repo, err := openRegistry(ctx, cfg, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	pipelineMetrics, err := metrics.NewPipeline(reg)
	if err != nil {
		return err
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return err
	}

	pdfSvc := service.NewPDFService(service.Dependencies{
		Stager:            stager,
		Store:             objStore,
		Repo:              repo,
		Engine:            pdf.NewEngine(),
		Metrics:           pipelineMetrics,
		Logger:            log,
		AllowedExtensions: cfg.Storage.AllowedExtensions,
		Location:          loc,
	})
	artifactSvc := service.NewArtifactService(objStore, repo)

	app := fiber.New(fiber.Config{
		AppName:               "pdfapi",
		BodyLimit:             int(cfg.Storage.MaxRequestBytes),
		ErrorHandler:          handlers.ErrorHandler(cfg.Storage.MaxRequestBytes),
		DisableStartupMessage: true,
	})

	// Register global middleware
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics"
	})))
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.LoggerWithWriter(os.Stdout, loc))
	app.Use(httpMetrics.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	handlers.RegisterRoutes(app, handlers.Services{
		DB:        db,
		PDF:       pdfSvc,
		Artifacts: artifactSvc,
		Limiter:   middleware.NewLimiter(cfg.Limits.RateLimitRPS, cfg.Limits.RateLimitBurst),
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(addr)
	}()

	srvLog := log.With(logging.KeyComponent, "server")
	srvLog.Info("server_started",
		"addr", addr,
		"app_host", cfg.AppHost,
		"storage_backend", cfg.Storage.Backend,
		"registry", registryName(db),
		"upload_dir", cfg.Storage.UploadDir,
		"max_request_bytes", cfg.Storage.MaxRequestBytes,
		"endpoints", handlers.Endpoints())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	srvLog.Info("server_stopping")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	srvLog.Info("server_stopped")
	return nil
}

// openRegistry connects the Postgres registry when configured and falls back
// to an in-process one otherwise.
func openRegistry(ctx context.Context, cfg *config.AppConfig, log *slog.Logger) (*sql.DB, repository.ArtifactRepository, error) {
	if !cfg.Database.Enabled() {
		return nil, memory.NewArtifactMemory(memory.DefaultCapacity), nil
	}

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := migration.EnsureMigrated(ctx, db, log); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, postgres.NewArtifactPostgres(db), nil
}

func registryName(db *sql.DB) string {
	if db == nil {
		return "memory"
	}
	return "postgres"
}
