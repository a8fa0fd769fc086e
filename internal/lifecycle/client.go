package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"github.com/trendpulse/backend/internal/contracts"
	"github.com/trendpulse/backend/pkg/config"
	"github.com/trendpulse/backend/pkg/httputil"
	"github.com/trendpulse/backend/pkg/logger"
)

// Client fetches lifecycle stage classifications from the upstream
// classifier service. The classifier is an optional collaborator: callers
// treat any failure here as a degraded hint (nil LifecycleInfo), never as a
// reason to fail an evaluation.
type Client struct {
	http    *httputil.Client
	baseURL string
	limiter *rate.Limiter
	enabled bool
	logger  *logger.Logger
}

// New creates a lifecycle classifier client.
func New(cfg *config.Config, log *logger.Logger) *Client {
	return &Client{
		http:    httputil.NewWithTimeout(log, cfg.Lifecycle.Timeout),
		baseURL: cfg.Lifecycle.BaseURL,
		limiter: rate.NewLimiter(rate.Limit(cfg.Lifecycle.RequestsPerSec), 1),
		enabled: cfg.Lifecycle.Enabled,
		logger:  log,
	}
}

// GetLifecycle returns the classifier's stage hint for a trend, or
// (nil, nil) when the classifier is disabled or the trend is unclassified.
func (c *Client) GetLifecycle(ctx context.Context, trendID string) (*contracts.LifecycleInfo, error) {
	if !c.enabled {
		return nil, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	reqURL := fmt.Sprintf("%s/api/lifecycle/%s", c.baseURL, url.PathEscape(trendID))
	resp, err := c.http.Get(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("lifecycle request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// Unclassified trend. Same degraded path as a missing classifier.
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lifecycle classifier returned status %d", resp.StatusCode)
	}

	var info contracts.LifecycleInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode lifecycle response: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"trend_id":   trendID,
		"stage":      info.Stage,
		"confidence": info.Confidence,
	}).Debug("Lifecycle hint fetched")

	return &info, nil
}
