package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fenilmodi00/tender-backend/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func detailServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/detail/42", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, shared.BrowserUserAgent(), r.Header.Get("User-Agent"))
		assert.Contains(t, r.Header.Get("Accept-Language"), "fr-FR")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(detailFixture))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testDetailConfig(fetcher string) shared.DetailConfig {
	config := shared.NewDefaultUnifiedConfiguration().Detail
	config.Fetcher = fetcher
	config.HTTPRequestTimeout = 5 * time.Second
	config.MaxRetryAttempts = 0
	return config
}

func TestDetailFetchers(t *testing.T) {
	server := detailServer(t)

	for _, name := range []string{shared.DetailFetcherHTTP, shared.DetailFetcherColly} {
		t.Run(name, func(t *testing.T) {
			limiter := shared.NewHTTPRequestRateLimiter(0, 1)
			fetcher := NewDetailFetcher(testDetailConfig(name), limiter)

			body, err := fetcher.Fetch(context.Background(), server.URL+"/detail/42")
			require.NoError(t, err)
			assert.Contains(t, string(body), "REF-42")

			_, err = fetcher.Fetch(context.Background(), server.URL+"/missing")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "404")

			assert.Equal(t, int64(2), limiter.GetRequestCount())
		})
	}
}

func TestNewDetailFetcherSelectsImplementation(t *testing.T) {
	_, isHTTP := NewDetailFetcher(testDetailConfig(shared.DetailFetcherHTTP), nil).(*HTTPDetailFetcher)
	assert.True(t, isHTTP)

	_, isColly := NewDetailFetcher(testDetailConfig(shared.DetailFetcherColly), nil).(*CollyDetailFetcher)
	assert.True(t, isColly)
}

func TestHTTPDetailFetcherHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	fetcher := NewHTTPDetailFetcher(testDetailConfig(shared.DetailFetcherHTTP), nil)
	defer fetcher.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	started := time.Now()
	_, err := fetcher.Fetch(ctx, server.URL)
	require.Error(t, err)
	assert.Less(t, time.Since(started), time.Second)
}

func TestDetailFetchersVerifyCertificates(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(detailFixture))
	}))
	defer server.Close()

	for _, name := range []string{shared.DetailFetcherHTTP, shared.DetailFetcherColly} {
		t.Run(name, func(t *testing.T) {
			config := shared.NewDefaultUnifiedConfiguration().Detail
			config.Fetcher = name
			config.MaxRetryAttempts = 0
			require.False(t, config.InsecureSkipVerify)

			_, err := NewDetailFetcher(config, nil).Fetch(context.Background(), server.URL)
			require.Error(t, err)

			config.InsecureSkipVerify = true
			body, err := NewDetailFetcher(config, nil).Fetch(context.Background(), server.URL)
			require.NoError(t, err)
			assert.Contains(t, string(body), "REF-42")
		})
	}
}
