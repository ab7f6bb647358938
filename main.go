package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fenilmodi00/tender-backend/config"
	"github.com/fenilmodi00/tender-backend/database"
	"github.com/fenilmodi00/tender-backend/handlers"
	"github.com/fenilmodi00/tender-backend/jobs"
	"github.com/fenilmodi00/tender-backend/services"
	"github.com/fenilmodi00/tender-backend/shared"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load config
	cfg := config.LoadConfig()
	unified := cfg.ToUnifiedConfiguration()

	logCloser, err := shared.ConfigureLogging(unified.Logging)
	if err != nil {
		logrus.Fatalf("Failed to configure logging: %v", err)
	}
	defer logCloser.Close()

	if err := unified.Validate(); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}
	if effective, err := unified.ToJSON(); err == nil {
		logrus.Debugf("Effective configuration: %s", effective)
	}

	// Connect to database
	db, dialect, err := database.ConnectWithConfig(cfg.DatabaseURL, &unified.Database)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.Migrate(context.Background(), db); err != nil {
		logrus.Fatalf("Failed to migrate database: %v", err)
	}

	location := unified.Location()
	metrics := shared.NewIngestionMetrics()
	store := services.NewSQLTenderStore(db, dialect)

	// Pipeline components
	navigator := services.NewListingNavigator(
		services.NewChromeSessionFactory(unified.Browser),
		unified.Browser,
		services.DefaultSearchFormSelectors(),
	)
	extractor := services.NewHTMLListingExtractor(services.DefaultListingRowSelectors())

	limiter := shared.NewHTTPRequestRateLimiter(unified.Detail.RequestsPerSecond, unified.Detail.MaxConcurrency)
	fetcher := services.NewDetailFetcher(unified.Detail, limiter)
	if httpFetcher, ok := fetcher.(*services.HTTPDetailFetcher); ok {
		defer httpFetcher.Close()
	}
	enricher, err := services.NewDetailEnricher(fetcher, services.NewDetailExtractor(services.DefaultDetailPageSelectors()), unified.Detail)
	if err != nil {
		logrus.Fatalf("Failed to create detail enricher: %v", err)
	}

	ingestionJob := jobs.NewTenderIngestionJob(navigator, extractor, enricher, store, metrics, unified.Pipeline, location)

	logrus.WithFields(logrus.Fields{
		"database_driver":    dialect,
		"detail_fetcher":     unified.Detail.Fetcher,
		"detail_concurrency": unified.Detail.MaxConcurrency,
		"detail_rate":        unified.Detail.RequestsPerSecond,
		"navigation_timeout": unified.Browser.NavigationTimeout,
		"time_zone":          location.String(),
		"headless":           unified.Browser.Headless,
		"insecure_tls":       unified.Detail.InsecureSkipVerify,
		"run_interval":       unified.Pipeline.RunInterval,
	}).Info("Tender ingestion services initialized")

	// Optional scheduled runs
	ingestionJob.Start(unified.Pipeline.RunInterval)
	defer ingestionJob.Stop()

	// Setup Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: unified.Pipeline.RunTimeout + 30*time.Second,
	})

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New())

	ingestHandler := handlers.NewIngestHandler(ingestionJob, store, metrics, location, unified.Pipeline.RunTimeout)
	healthHandler := handlers.NewHealthHandler(func(ctx context.Context) error {
		return database.HealthCheck(ctx, db)
	})
	handlers.RegisterRoutes(app, ingestHandler, healthHandler)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logrus.Info("Shutting down server")
		metrics.LogSummary()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logrus.WithError(err).Error("Server shutdown failed")
		}
	}()

	// Start server
	logrus.Infof("Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logrus.Fatalf("Server failed to start: %v", err)
	}
}
