package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/navid-fn/bestex/internal/models"
)

// Snapshotter is implemented by venues that can answer a one-shot quote read
// over REST. The router only uses it when the cache has nothing for the venue.
type Snapshotter interface {
	Snapshot(ctx context.Context, pair string) (models.Quote, error)
}

// HTTPConfig holds REST polling settings.
type HTTPConfig struct {
	BaseURL        string
	RateLimiter    *rate.Limiter
	RequestTimeout time.Duration
}

func DefaultHTTPConfig(baseURL string, requestsPerSecond float64) HTTPConfig {
	return HTTPConfig{
		BaseURL:        baseURL,
		RateLimiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 5),
		RequestTimeout: 3 * time.Second,
	}
}

// HTTPFetcher performs rate-limited GETs against one venue's REST API.
type HTTPFetcher struct {
	config HTTPConfig
	client *http.Client
}

func NewHTTPFetcher(config HTTPConfig) *HTTPFetcher {
	return &HTTPFetcher{
		config: config,
		client: &http.Client{Timeout: config.RequestTimeout},
	}
}

// Get fetches BaseURL+path and returns the body of a 200 response.
func (f *HTTPFetcher) Get(ctx context.Context, path string) ([]byte, error) {
	if f.config.RateLimiter != nil {
		if err := f.config.RateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.config.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}
