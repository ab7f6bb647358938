package services

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/fenilmodi00/tender-backend/models"
	"github.com/fenilmodi00/tender-backend/shared"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// EnrichmentResult holds the outcome for the candidate at the same input index.
// Exactly one of Record and Err is meaningful.
type EnrichmentResult struct {
	Record models.TenderRecord
	Err    error
}

// EnrichmentBatch is the outcome of enriching a candidate list
type EnrichmentBatch struct {
	Results []EnrichmentResult
}

// Records returns the enriched records in input order, leaving out failures
func (b *EnrichmentBatch) Records() []models.TenderRecord {
	records := make([]models.TenderRecord, 0, len(b.Results))
	for _, result := range b.Results {
		if result.Err == nil {
			records = append(records, result.Record)
		}
	}
	return records
}

// Failures returns the per-item errors in input order
func (b *EnrichmentBatch) Failures() []error {
	var failures []error
	for _, result := range b.Results {
		if result.Err != nil {
			failures = append(failures, result.Err)
		}
	}
	return failures
}

// DetailEnricher fetches detail pages for candidate listings with bounded concurrency
type DetailEnricher struct {
	fetcher        DetailFetcher
	extractor      *DetailExtractor
	baseURL        *url.URL
	maxConcurrency int
	requestTimeout time.Duration
	logger         *logrus.Entry
}

// NewDetailEnricher creates an enricher resolving relative detail links against config.SiteBaseURL
func NewDetailEnricher(fetcher DetailFetcher, extractor *DetailExtractor, config shared.DetailConfig) (*DetailEnricher, error) {
	baseURL, err := url.Parse(config.SiteBaseURL)
	if err != nil {
		return nil, shared.NewServiceError(shared.ErrorCategoryConfiguration, "INVALID_SITE_BASE_URL",
			"site base URL does not parse", "DetailEnricher", "NewDetailEnricher", false, err)
	}

	maxConcurrency := config.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = 5
	}

	return &DetailEnricher{
		fetcher:        fetcher,
		extractor:      extractor,
		baseURL:        baseURL,
		maxConcurrency: maxConcurrency,
		requestTimeout: config.HTTPRequestTimeout,
		logger: logrus.WithFields(logrus.Fields{
			"component": "DetailEnricher",
		}),
	}, nil
}

// Enrich fetches the detail page of every candidate that has a detail link. One failed
// item never aborts the others; results keep the input order. Candidates without a link
// are passed through with empty detail fields.
func (e *DetailEnricher) Enrich(ctx context.Context, candidates []models.CandidateListing) *EnrichmentBatch {
	logger := e.logger.WithField("method", "Enrich")
	startTime := time.Now()

	batch := &EnrichmentBatch{Results: make([]EnrichmentResult, len(candidates))}

	var g errgroup.Group
	g.SetLimit(e.maxConcurrency)

	for i, candidate := range candidates {
		if !candidate.HasDetailLink() {
			batch.Results[i] = EnrichmentResult{Record: models.NewTenderRecord(candidate, models.DetailFields{})}
			continue
		}

		g.Go(func() error {
			batch.Results[i] = e.enrichOne(ctx, candidate)
			return nil
		})
	}

	_ = g.Wait()

	failures := batch.Failures()
	var timedOut, unreachable int
	for _, err := range failures {
		switch {
		case shared.IsCategory(err, shared.ErrorCategoryTimeout):
			timedOut++
		case shared.IsCategory(err, shared.ErrorCategoryNetwork):
			unreachable++
		}
	}

	logger.WithFields(logrus.Fields{
		"candidates":      len(candidates),
		"enriched":        len(candidates) - len(failures),
		"failed":          len(failures),
		"timed_out":       timedOut,
		"unreachable":     unreachable,
		"processing_time": time.Since(startTime),
	}).Info("Completed detail enrichment")

	return batch
}

func (e *DetailEnricher) enrichOne(ctx context.Context, candidate models.CandidateListing) EnrichmentResult {
	detailURL := e.ResolveDetailURL(candidate.DetailLink)

	itemCtx := ctx
	if e.requestTimeout > 0 {
		var cancel context.CancelFunc
		itemCtx, cancel = context.WithTimeout(ctx, e.requestTimeout)
		defer cancel()
	}

	body, err := e.fetcher.Fetch(itemCtx, detailURL)
	if err != nil {
		e.logger.WithFields(logrus.Fields{
			"method": "enrichOne",
			"url":    detailURL,
		}).WithError(err).Warn("Detail fetch failed")
		return EnrichmentResult{Err: shared.NewEnrichmentError(detailURL, err)}
	}

	details, err := e.extractor.Extract(body, detailURL)
	if err != nil {
		return EnrichmentResult{Err: shared.NewEnrichmentError(detailURL, err)}
	}

	return EnrichmentResult{Record: models.NewTenderRecord(candidate, details)}
}

// ResolveDetailURL turns the row's link into an absolute URL on the tender site
func (e *DetailEnricher) ResolveDetailURL(link string) string {
	link = strings.TrimSpace(link)
	ref, err := url.Parse(link)
	if err != nil {
		return e.baseURL.String() + link
	}
	return e.baseURL.ResolveReference(ref).String()
}
