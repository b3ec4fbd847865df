package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"etasync/internal/config"
	"etasync/internal/database"
	"etasync/internal/database/migration"
	"etasync/internal/eta"
	handlers "etasync/internal/http/handler"
	"etasync/internal/http/middleware"
	"etasync/internal/logutils"
	"etasync/internal/metrics"
	"etasync/internal/otel"
	"etasync/internal/repository/postgres"
	"etasync/internal/service"
	"etasync/internal/storage"
)

var log = logrus.StandardLogger()

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := cfg.Location()
	logutils.Setup(cfg.LogLevel, loc)

	shutdownTracing, err := otel.Init(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var archive storage.Storage
	if cfg.MinIO.Enabled() {
		archive, err = storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			log.Fatalf("failed to initialize object storage: %v", err)
		}
	} else {
		log.Info("MINIO_ENDPOINT not set, raw document archive disabled")
	}

	client, err := eta.New(cfg.ETA)
	if err != nil {
		log.Fatalf("failed to configure eta client: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	syncMetrics, err := metrics.NewSyncMetrics(reg)
	if err != nil {
		log.Fatalf("failed to register sync metrics: %v", err)
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatalf("failed to register http metrics: %v", err)
	}

	repo := postgres.NewInvoicePostgres(db)
	syncOpts := []service.SyncOption{service.WithRecorder(syncMetrics)}
	if archive != nil {
		syncOpts = append(syncOpts, service.WithArchive(archive))
	}
	syncSvc := service.NewInvoiceSyncService(client, repo, service.SyncConfigFrom(cfg.ETA), syncOpts...)
	invoiceSvc := service.NewInvoiceService(repo, archive)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(httpMetrics.Handler())

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:       db,
		Sync:     syncSvc,
		Invoices: invoiceSvc,
		Gatherer: reg,
		Location: loc,
	})

	go func() {
		<-ctx.Done()
		log.Info("shutting down http server")
		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			log.WithError(err).Error("http server shutdown failed")
		}
	}()

	addr := ":" + cfg.Port
	log.WithField("addr", addr).Info("starting http server")
	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
