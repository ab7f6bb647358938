package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/fenilmodi00/tender-backend/models"
	"github.com/fenilmodi00/tender-backend/services"
	"github.com/fenilmodi00/tender-backend/shared"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// IngestionRunner runs one ingestion pass
type IngestionRunner interface {
	Run(ctx context.Context) (*models.IngestionSummary, error)
}

type IngestHandler struct {
	Runner     IngestionRunner
	Store      services.TenderStore
	Metrics    *shared.IngestionMetrics
	Location   *time.Location
	RunTimeout time.Duration
}

func NewIngestHandler(runner IngestionRunner, store services.TenderStore, metrics *shared.IngestionMetrics, location *time.Location, runTimeout time.Duration) *IngestHandler {
	return &IngestHandler{
		Runner:     runner,
		Store:      store,
		Metrics:    metrics,
		Location:   location,
		RunTimeout: runTimeout,
	}
}

// TriggerIngestion runs the pipeline synchronously and responds with the run summary
func (h *IngestHandler) TriggerIngestion(c *fiber.Ctx) error {
	logrus.WithField("component", "IngestHandler").Info("Tender ingestion triggered via HTTP")

	ctx := c.UserContext()
	if h.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.RunTimeout)
		defer cancel()
	}

	summary, err := h.Runner.Run(ctx)
	if errors.Is(err, shared.ErrRunInProgress) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Error occurred during scraping: " + err.Error(),
		})
	}

	message := "Scraper finished"
	if summary.NoData {
		message = "No data available to scrape"
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"message":  message,
		"data":     summary,
		"duration": summary.Duration().String(),
	})
}

// GetIngestionStats returns cumulative run metrics
func (h *IngestHandler) GetIngestionStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success":      true,
		"data":         h.Metrics.GetSnapshot(),
		"success_rate": h.Metrics.GetSuccessRate(),
	})
}

// GetTenders lists stored tenders for ?date=dd/mm/yyyy, defaulting to today
func (h *IngestHandler) GetTenders(c *fiber.Ctx) error {
	date := c.Query("date")
	if date == "" {
		date = models.NewTodayWindow(time.Now(), h.Location).String()
	} else if _, err := time.Parse(models.PublishedDateLayout, date); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "date must use the dd/mm/yyyy format",
		})
	}

	records, err := h.Store.QueryByPublishedDate(c.UserContext(), date)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to query tenders: " + err.Error(),
		})
	}
	if records == nil {
		records = []models.TenderRecord{}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"date":    date,
		"count":   len(records),
		"data":    records,
	})
}
