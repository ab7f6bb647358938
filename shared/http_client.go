package shared

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// NewOptimizedHTTPClient creates an HTTP client with connection pooling sized for the
// detail enrichment workers
func NewOptimizedHTTPClient(timeout time.Duration, maxConnsPerHost int) *http.Client {
	if maxConnsPerHost <= 0 {
		maxConnsPerHost = 10
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: maxConnsPerHost,
			MaxConnsPerHost:     maxConnsPerHost,
			IdleConnTimeout:     90 * time.Second,

			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: timeout,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// SetBrowserLikeHeaders configures HTTP request headers to mimic browser behavior
func SetBrowserLikeHeaders(request *http.Request, acceptHeader string) {
	request.Header.Set("User-Agent", browserUserAgent)
	request.Header.Set("Accept", acceptHeader)
	request.Header.Set("Accept-Language", "fr-FR,fr;q=0.9,en;q=0.8")
	request.Header.Set("Cache-Control", "no-cache")
	request.Header.Set("Connection", "keep-alive")
}

// BrowserUserAgent returns the user agent sent with every upstream request
func BrowserUserAgent() string {
	return browserUserAgent
}

// ExecuteHTTPRequestWithRetry executes HTTP requests with exponential backoff retry logic.
// The request context bounds the whole sequence, backoff sleeps included.
func ExecuteHTTPRequestWithRetry(client *http.Client, request *http.Request, maxRetryAttempts int) (*http.Response, error) {
	ctx := request.Context()
	logger := logrus.WithFields(logrus.Fields{
		"component": "HTTPClient",
		"method":    "ExecuteHTTPRequestWithRetry",
		"url":       request.URL.String(),
	})

	var lastExecutionError error

	for attemptNumber := 0; attemptNumber <= maxRetryAttempts; attemptNumber++ {
		if attemptNumber > 0 {
			baseBackoffDuration := time.Duration(1<<uint(attemptNumber-1)) * 500 * time.Millisecond
			jitterDuration := time.Duration(float64(baseBackoffDuration) * 0.1 * (0.5 + 0.5*float64(attemptNumber%3)/2))
			totalBackoffDuration := baseBackoffDuration + jitterDuration

			logger.WithFields(logrus.Fields{
				"attempt":          attemptNumber + 1,
				"backoff_duration": totalBackoffDuration,
			}).Debug("Retrying HTTP request after backoff")

			if err := sleepContext(ctx, totalBackoffDuration); err != nil {
				return nil, fmt.Errorf("retry aborted after %d attempts: %w", attemptNumber, err)
			}
		}

		httpResponse, err := client.Do(request)
		if err == nil && httpResponse.StatusCode == http.StatusOK {
			return httpResponse, nil
		}

		if err != nil {
			lastExecutionError = fmt.Errorf("attempt %d failed with network error: %w", attemptNumber+1, err)
			logger.WithError(err).Debug("HTTP request failed with network error")
			if ctx.Err() != nil {
				break
			}
			continue
		}

		lastExecutionError = fmt.Errorf("attempt %d failed with HTTP %d: %s", attemptNumber+1, httpResponse.StatusCode, http.StatusText(httpResponse.StatusCode))
		httpResponse.Body.Close()
		logger.WithField("status_code", httpResponse.StatusCode).Debug("HTTP request failed with non-200 status")

		// Client errors other than throttling will not improve on retry
		if httpResponse.StatusCode >= 400 && httpResponse.StatusCode < 500 && httpResponse.StatusCode != http.StatusTooManyRequests {
			break
		}
	}

	return nil, fmt.Errorf("HTTP request failed: %w", lastExecutionError)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// CleanupHTTPClient closes idle connections held by the client
func CleanupHTTPClient(client *http.Client) {
	if client != nil && client.Transport != nil {
		if transport, ok := client.Transport.(*http.Transport); ok {
			transport.CloseIdleConnections()
		}
	}
}
