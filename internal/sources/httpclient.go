package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/scholarscope/professor-search-service/internal/domain"
)

// HTTPClientConfig configures the shared provider HTTP client.
type HTTPClientConfig struct {
	// Source names the provider this client talks to, for typed rate-limit
	// errors.
	Source domain.SourceType

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// RateLimit is the sustained requests per second.
	RateLimit float64

	// BurstSize is the maximum request burst.
	BurstSize int

	// MaxRetries is the number of retry attempts after the first request.
	MaxRetries int

	// RetryDelay is the base delay between retries when the provider does
	// not supply a Retry-After header.
	RetryDelay time.Duration

	// UserAgent identifies the service to providers.
	UserAgent string

	// APIKey and APIKeyHeader configure optional key authentication.
	APIKey       string
	APIKeyHeader string
}

// HTTPClient wraps http.Client with rate limiting and retry on transient
// failures. All provider requests are GETs, so retries never need to replay
// a request body. Safe for concurrent use.
type HTTPClient struct {
	client      *http.Client
	rateLimiter *RateLimiter
	config      HTTPClientConfig
}

// NewHTTPClient creates a client that waits on its rate limiter before every
// attempt and retries on 429 (honoring Retry-After) and 5xx responses.
func NewHTTPClient(cfg HTTPClientConfig) *HTTPClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 5
	}
	if cfg.BurstSize == 0 {
		cfg.BurstSize = 5
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "ScholarScope-ProfessorSearch/1.0 (academic research tool)"
	}

	return &HTTPClient{
		client:      &http.Client{Timeout: cfg.Timeout},
		rateLimiter: NewRateLimiter(cfg.RateLimit, cfg.BurstSize),
		config:      cfg,
	}
}

// Get executes a GET request against the URL with rate limiting and retries.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	return c.Do(req)
}

// Do executes a request with rate limiting and retries.
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.config.UserAgent)
	if c.config.APIKey != "" && c.config.APIKeyHeader != "" {
		req.Header.Set(c.config.APIKeyHeader, c.config.APIKey)
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if err := c.rateLimiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			lastErr = fmt.Errorf("request failed: %w", err)
			if attempt < c.config.MaxRetries {
				if err := sleepCtx(req.Context(), c.config.RetryDelay); err != nil {
					return nil, err
				}
				continue
			}
			return nil, lastErr
		}

		if !retryableStatus(resp.StatusCode) {
			return resp, nil
		}

		delay := retryDelay(resp, c.config.RetryDelay)
		drainAndClose(resp)

		if attempt < c.config.MaxRetries {
			lastErr = fmt.Errorf("server returned status %d", resp.StatusCode)
			if err := sleepCtx(req.Context(), delay); err != nil {
				return nil, err
			}
			continue
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, &domain.RateLimitError{Source: c.config.Source, RetryAfter: delay}
		}
		return nil, fmt.Errorf("max retries exhausted after %d attempts, last status: %d",
			c.config.MaxRetries+1, resp.StatusCode)
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errors.New("no response received")
}

// retryableStatus reports whether the status warrants another attempt.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || (code >= 500 && code < 600)
}

// retryDelay honors Retry-After (seconds or HTTP date) when present.
func retryDelay(resp *http.Response, fallback time.Duration) time.Duration {
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return fallback
	}
	if seconds, err := strconv.ParseInt(retryAfter, 10, 64); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(retryAfter); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return fallback
}

func drainAndClose(resp *http.Response) {
	if resp.Body != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
