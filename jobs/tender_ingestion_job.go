package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fenilmodi00/tender-backend/models"
	"github.com/fenilmodi00/tender-backend/services"
	"github.com/fenilmodi00/tender-backend/shared"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ListingSource returns the rendered search result page
type ListingSource interface {
	FetchListingPage(ctx context.Context) (string, error)
}

// ListingParser turns listing markup into today's candidates
type ListingParser interface {
	Extract(html string, window models.TodayWindow) (*services.ListingExtraction, error)
}

// Enricher merges detail page fields into candidates
type Enricher interface {
	Enrich(ctx context.Context, candidates []models.CandidateListing) *services.EnrichmentBatch
}

// TenderIngestionJob runs the daily tender pipeline. Only one run may be in flight.
type TenderIngestionJob struct {
	Source     ListingSource
	Parser     ListingParser
	Enricher   Enricher
	Store      services.TenderStore
	Metrics    *shared.IngestionMetrics
	Location   *time.Location
	Now        func() time.Time
	RunTimeout time.Duration

	running  sync.Mutex
	stopOnce sync.Once
	stop     chan struct{}
	logger   *logrus.Entry
}

func NewTenderIngestionJob(source ListingSource, parser ListingParser, enricher Enricher, store services.TenderStore, metrics *shared.IngestionMetrics, config shared.PipelineConfig, location *time.Location) *TenderIngestionJob {
	if metrics == nil {
		metrics = shared.NewIngestionMetrics()
	}
	return &TenderIngestionJob{
		Source:     source,
		Parser:     parser,
		Enricher:   enricher,
		Store:      store,
		Metrics:    metrics,
		Location:   location,
		Now:        time.Now,
		RunTimeout: config.RunTimeout,
		stop:       make(chan struct{}),
		logger: logrus.WithFields(logrus.Fields{
			"component": "TenderIngestionJob",
		}),
	}
}

// Run executes one ingestion pass for today's window. A concurrent call returns
// shared.ErrRunInProgress. A search with no result table yields a summary with NoData set.
func (j *TenderIngestionJob) Run(ctx context.Context) (*models.IngestionSummary, error) {
	if !j.running.TryLock() {
		j.Metrics.RecordRejected()
		j.logger.Warn("Ingestion run rejected, another run is in progress")
		return nil, shared.ErrRunInProgress
	}
	defer j.running.Unlock()

	window := models.NewTodayWindow(j.Now(), j.Location)
	summary := &models.IngestionSummary{
		RunID:     uuid.NewString(),
		Window:    window.String(),
		StartedAt: time.Now(),
	}
	logger := j.logger.WithFields(logrus.Fields{
		"method": "Run",
		"run_id": summary.RunID,
		"window": summary.Window,
	})
	logger.Info("Starting tender ingestion run")

	err := j.run(ctx, window, summary, logger)
	summary.FinishedAt = time.Now()

	j.Metrics.RecordRun(shared.RunOutcome{
		NoData:           summary.NoData,
		Inserted:         summary.InsertedCount,
		Duplicates:       summary.SkippedAsDuplicate,
		FailedEnrichment: summary.FailedEnrichment,
		Duration:         summary.Duration(),
		Err:              err,
	})

	if err != nil {
		logFatal(logger, err)
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"listed_rows":          summary.ListedRows,
		"candidates":           summary.Candidates,
		"enriched":             summary.Enriched,
		"failed_enrichment":    summary.FailedEnrichment,
		"skipped_as_duplicate": summary.SkippedAsDuplicate,
		"inserted_count":       summary.InsertedCount,
		"no_data":              summary.NoData,
		"processing_time":      summary.Duration(),
	}).Info("Completed tender ingestion run")

	return summary, nil
}

func (j *TenderIngestionJob) run(ctx context.Context, window models.TodayWindow, summary *models.IngestionSummary, logger *logrus.Entry) error {
	html, err := j.Source.FetchListingPage(ctx)
	if services.IsNoData(err) {
		summary.NoData = true
		logger.Info("No data available to scrape")
		return nil
	}
	if err != nil {
		return err
	}

	extraction, err := j.Parser.Extract(html, window)
	if err != nil {
		return shared.NewServiceError(shared.ErrorCategoryProcessing, "LISTING_PARSE_FAILED",
			"failed to parse listing page", "TenderIngestionJob", "extract", false, err).
			WithDetails(map[string]interface{}{"html_bytes": len(html)})
	}
	summary.ListedRows = extraction.Rows
	summary.Candidates = len(extraction.Candidates)

	// Enrichment and the lookup of today's stored records run side by side.
	// A failed lookup cancels the enrichment and fails the run.
	var batch *services.EnrichmentBatch
	var existing []models.TenderRecord

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		batch = j.Enricher.Enrich(gCtx, extraction.Candidates)
		return nil
	})
	g.Go(func() error {
		records, err := j.Store.QueryByPublishedDate(gCtx, window.String())
		if err != nil {
			return err
		}
		existing = records
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	enriched := batch.Records()
	failures := batch.Failures()
	summary.Enriched = len(enriched)
	summary.FailedEnrichment = len(failures)
	if len(failures) > 0 {
		summary.FailureSummary = shared.BuildBatchProcessingErrorSummary(len(enriched), len(failures), failures)
		logger.WithField("failure_summary", summary.FailureSummary).Warn("Some detail pages could not be enriched")
	}

	dedup := services.FilterDuplicates(enriched, existing)
	summary.SkippedAsDuplicate = dedup.Duplicates

	if len(dedup.Kept) == 0 {
		logger.Info("No new tenders to insert")
		return nil
	}

	inserted, err := j.Store.InsertMany(ctx, dedup.Kept)
	if err != nil {
		return err
	}
	summary.InsertedCount = inserted
	return nil
}

// Start runs the job every interval until Stop is called. Runs that collide with a
// manually triggered one are skipped.
func (j *TenderIngestionJob) Start(interval time.Duration) {
	if interval <= 0 {
		return
	}
	j.logger.WithField("interval", interval).Info("Starting scheduled tender ingestion")

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				j.runScheduled()
			case <-j.stop:
				j.logger.Info("Stopped scheduled tender ingestion")
				return
			}
		}
	}()
}

// Stop ends the scheduler started by Start
func (j *TenderIngestionJob) Stop() {
	j.stopOnce.Do(func() {
		close(j.stop)
	})
}

func (j *TenderIngestionJob) runScheduled() {
	ctx := context.Background()
	if j.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.RunTimeout)
		defer cancel()
	}

	if _, err := j.Run(ctx); errors.Is(err, shared.ErrRunInProgress) {
		j.logger.Debug("Skipped scheduled run, another run is in progress")
	}
}

func logFatal(logger *logrus.Entry, err error) {
	var serviceErr *shared.ServiceError
	if errors.As(err, &serviceErr) {
		serviceErr.LogError()
		return
	}
	logger.WithError(err).Error("Tender ingestion run failed")
}
