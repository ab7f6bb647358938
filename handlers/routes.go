package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the tender ingestion API on app
func RegisterRoutes(app *fiber.App, ingest *IngestHandler, health *HealthHandler) {
	app.Get("/health", health.GetHealth)

	// Legacy trigger endpoint
	app.Get("/", ingest.TriggerIngestion)

	api := app.Group("/api/v1")
	api.Post("/ingest", ingest.TriggerIngestion)
	api.Get("/ingest/stats", ingest.GetIngestionStats)
	api.Get("/tenders", ingest.GetTenders)
}
