// Package gateway is the JSON-over-HTTP client of the booking backend.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"campus-rms-console/config"
	"campus-rms-console/internal/apierr"
	"campus-rms-console/internal/metrics"
)

// maxPages bounds how many paginated pages a single list call follows.
const maxPages = 50

// Client calls the booking backend. It is safe for concurrent use.
type Client struct {
	baseURL string
	headers map[string]string
	client  *http.Client
	limiter *rate.Limiter
	metrics metrics.Recorder
	logger  *zap.Logger
}

// NewClient creates a client for the backend described by cfg.
func NewClient(cfg *config.UpstreamConfig, logger *zap.Logger, rec metrics.Recorder) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rec == nil {
		rec = metrics.Nop{}
	}

	var transport http.RoundTripper = &http.Transport{}
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			logger.Warn("invalid upstream proxy URL, calling backend directly",
				zap.String("proxy", cfg.HTTPProxy), zap.Error(err))
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RateLimitPerSec > 0 {
		burst := cfg.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitPerSec), burst)
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		headers: cfg.Headers,
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		limiter: limiter,
		metrics: rec,
		logger:  logger,
	}
}

// BaseURL is the backend root every path is resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do performs one call. path is relative to the base URL unless it is already
// absolute (pagination links). A nil out discards the body.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	raw, err := c.send(ctx, op, method, path, in)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, op, method, path string, in any) ([]byte, error) {
	var body io.Reader
	if in != nil {
		jsonBody, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to marshal request payload: %w", op, err)
		}
		body = bytes.NewReader(jsonBody)
	}

	target := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		target = c.baseURL + path
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.metrics.RecordUpstreamFailure(op)
		c.logger.Warn("backend unreachable", zap.String("op", op), zap.String("url", target), zap.Error(err))
		return nil, &apierr.NetworkError{BaseURL: c.baseURL, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	c.metrics.RecordUpstream(op, resp.StatusCode, elapsed)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response body: %w", op, err)
	}

	c.logger.Debug("backend call",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", elapsed),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &apierr.StatusError{Status: resp.StatusCode, Body: raw}
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	return raw, nil
}

type page[T any] struct {
	Next    *string `json:"next"`
	Results []T     `json:"results"`
}

// list fetches a collection. The backend answers either with a bare array or
// with a paginated {"next": ..., "results": [...]} object; pages are followed.
func list[T any](ctx context.Context, c *Client, op, path string) ([]T, error) {
	items := []T{}
	next := path
	for n := 0; next != "" && n < maxPages; n++ {
		raw, err := c.send(ctx, op, http.MethodGet, next, nil)
		if err != nil {
			return nil, err
		}
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 {
			return items, nil
		}
		if trimmed[0] != '{' {
			var all []T
			if err := json.Unmarshal(trimmed, &all); err != nil {
				return nil, fmt.Errorf("%s: failed to decode list: %w", op, err)
			}
			return append(items, all...), nil
		}

		var p page[T]
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return nil, fmt.Errorf("%s: failed to decode page: %w", op, err)
		}
		items = append(items, p.Results...)
		next = ""
		if p.Next != nil {
			next = *p.Next
		}
	}
	if next != "" {
		return nil, errors.New(op + ": too many pages")
	}
	return items, nil
}

func idPath(collection string, id int64, suffix ...string) string {
	p := fmt.Sprintf("/%s/%d/", collection, id)
	for _, s := range suffix {
		p += s + "/"
	}
	return p
}
