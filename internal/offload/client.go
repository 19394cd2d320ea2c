package offload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// ClientConfig configures the remote engine client.
type ClientConfig struct {
	BaseURL        string        `yaml:"base_url"`
	Timeout        time.Duration `yaml:"timeout"`
	BreakerTimeout time.Duration `yaml:"breaker_timeout"`
	MaxFailures    uint32        `yaml:"max_failures"`
}

// DefaultClientConfig returns the default client configuration.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:        60 * time.Second,
		BreakerTimeout: 2 * time.Minute,
		MaxFailures:    3,
	}
}

// Client speaks the offload engine's HTTP protocol. All calls go through a
// circuit breaker so a dead engine stops costing a timeout per batch.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewClient creates a client for the engine at cfg.BaseURL.
func NewClient(cfg ClientConfig) *Client {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 3
	}
	settings := gobreaker.Settings{
		Name:    "offload-engine",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("offload breaker state change")
		},
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// HealthCheck reports whether the remote engine is reachable and healthy.
func (c *Client) HealthCheck(ctx context.Context) bool {
	var health healthResponse
	err := c.get(ctx, "/health", &health)
	if err != nil {
		log.Debug().Err(err).Msg("offload health check failed")
		return false
	}
	return health.Status == "ok" || health.Status == "healthy"
}

// CacheData uploads a dataset and returns its opaque cache id.
func (c *Client) CacheData(ctx context.Context, req CacheDataRequest) (string, error) {
	var resp CacheDataResponse
	if err := c.post(ctx, "/datasets", req, &resp); err != nil {
		return "", err
	}
	if resp.CacheID == "" {
		return "", fmt.Errorf("offload engine returned empty cache id")
	}
	return resp.CacheID, nil
}

// RunBatch executes a batch with inline bars. Results are keyed by job id;
// missing ids are the caller's problem to re-run locally.
func (c *Client) RunBatch(ctx context.Context, req BatchRequest) (map[int64]*BatchResultItem, error) {
	var resp BatchResponse
	if err := c.post(ctx, "/backtest/batch", req, &resp); err != nil {
		return nil, err
	}
	return keyResults(resp), nil
}

// RunCachedBatch executes a batch against a previously uploaded dataset.
func (c *Client) RunCachedBatch(ctx context.Context, cacheID string, req CachedBatchRequest) (map[int64]*BatchResultItem, error) {
	var resp BatchResponse
	if err := c.post(ctx, "/backtest/batch/"+cacheID, req, &resp); err != nil {
		return nil, err
	}
	return keyResults(resp), nil
}

// BreakerState reports the circuit breaker state for status surfaces.
func (c *Client) BreakerState() string { return c.breaker.State().String() }

func keyResults(resp BatchResponse) map[int64]*BatchResultItem {
	out := make(map[int64]*BatchResultItem, len(resp.Results))
	for i := range resp.Results {
		item := resp.Results[i]
		if item.Result != nil {
			out[item.ID] = &item
		}
	}
	return out
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	_, err := c.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, err
		}
		return nil, c.do(req, out)
	})
	return err
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", path, err)
	}
	_, err = c.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return nil, c.do(req, out)
	})
	return err
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("offload engine %s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, body)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}
