package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"

	"github.com/fenilmodi00/tender-backend/shared"
	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
)

const (
	maxDetailPageBytes = 10 << 20
	htmlAcceptHeader   = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

// DetailFetcher retrieves the raw markup of a tender detail page
type DetailFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// NewDetailFetcher builds the fetcher selected by config.Fetcher
func NewDetailFetcher(config shared.DetailConfig, limiter *shared.HTTPRequestRateLimiter) DetailFetcher {
	if config.Fetcher == shared.DetailFetcherColly {
		return NewCollyDetailFetcher(config, limiter)
	}
	return NewHTTPDetailFetcher(config, limiter)
}

// HTTPDetailFetcher fetches detail pages with net/http, retrying transient failures
type HTTPDetailFetcher struct {
	client           *http.Client
	limiter          *shared.HTTPRequestRateLimiter
	maxRetryAttempts int
	logger           *logrus.Entry
}

func NewHTTPDetailFetcher(config shared.DetailConfig, limiter *shared.HTTPRequestRateLimiter) *HTTPDetailFetcher {
	client := shared.NewOptimizedHTTPClient(config.HTTPRequestTimeout, config.MaxConcurrency)
	if transport, ok := client.Transport.(*http.Transport); ok && config.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &HTTPDetailFetcher{
		client:           client,
		limiter:          limiter,
		maxRetryAttempts: config.MaxRetryAttempts,
		logger: logrus.WithFields(logrus.Fields{
			"component": "HTTPDetailFetcher",
		}),
	}
}

func (f *HTTPDetailFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	shared.SetBrowserLikeHeaders(request, htmlAcceptHeader)

	response, err := shared.ExecuteHTTPRequestWithRetry(f.client, request, f.maxRetryAttempts)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxDetailPageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read detail page: %w", err)
	}

	f.logger.WithFields(logrus.Fields{
		"method": "Fetch",
		"url":    url,
		"bytes":  len(body),
	}).Debug("Fetched detail page")

	return body, nil
}

// Close releases idle connections
func (f *HTTPDetailFetcher) Close() {
	shared.CleanupHTTPClient(f.client)
}

// CollyDetailFetcher fetches detail pages with a colly collector
type CollyDetailFetcher struct {
	collector *colly.Collector
	limiter   *shared.HTTPRequestRateLimiter
	logger    *logrus.Entry
}

func NewCollyDetailFetcher(config shared.DetailConfig, limiter *shared.HTTPRequestRateLimiter) *CollyDetailFetcher {
	collector := colly.NewCollector(
		colly.UserAgent(shared.BrowserUserAgent()),
		colly.AllowURLRevisit(),
		colly.MaxBodySize(maxDetailPageBytes),
	)
	collector.SetRequestTimeout(config.HTTPRequestTimeout)
	if config.InsecureSkipVerify {
		collector.WithTransport(&http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		})
	}

	return &CollyDetailFetcher{
		collector: collector,
		limiter:   limiter,
		logger: logrus.WithFields(logrus.Fields{
			"component": "CollyDetailFetcher",
		}),
	}
}

// Fetch visits url with a clone of the base collector so callbacks stay per request
func (f *CollyDetailFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	c := f.collector.Clone()
	c.Context = ctx

	var body []byte
	var responseErr error

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", htmlAcceptHeader)
		r.Headers.Set("Accept-Language", "fr-FR,fr;q=0.9,en;q=0.8")
	})

	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	c.OnError(func(r *colly.Response, err error) {
		responseErr = fmt.Errorf("HTTP %d: %w", r.StatusCode, err)
	})

	if err := c.Visit(url); err != nil {
		if responseErr != nil {
			return nil, responseErr
		}
		return nil, fmt.Errorf("failed to visit detail page: %w", err)
	}
	if responseErr != nil {
		return nil, responseErr
	}
	if body == nil {
		return nil, fmt.Errorf("empty response from %s", url)
	}

	f.logger.WithFields(logrus.Fields{
		"method": "Fetch",
		"url":    url,
		"bytes":  len(body),
	}).Debug("Fetched detail page")

	return body, nil
}
