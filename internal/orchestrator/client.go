package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"comicdesk/internal/appconfig"
	"comicdesk/internal/jobs"
	"comicdesk/internal/logging"
)

// DefaultTimeout bounds connect and whole-request time for every call.
const DefaultTimeout = 5 * time.Second

const maxBodyBytes = 16 << 20

// Client talks to the orchestrator's JSON HTTP API. It is safe for
// concurrent use; the base URL may be changed while requests are in flight.
type Client struct {
	base    atomic.Pointer[string]
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New returns a client for baseURL. Callers resolve the URL (flag, env,
// saved config, default) before constructing the client.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "orchestrator")
	if c.http == nil {
		c.http = &http.Client{
			Timeout: c.timeout,
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           (&net.Dialer{Timeout: c.timeout}).DialContext,
				ResponseHeaderTimeout: c.timeout,
				IdleConnTimeout:       30 * time.Second,
				MaxIdleConnsPerHost:   4,
			},
		}
	}
	c.SetBaseURL(baseURL)
	return c
}

// SetBaseURL repoints the client. Surrounding whitespace and trailing slashes
// are stripped.
func (c *Client) SetBaseURL(raw string) {
	normalized := strings.TrimRight(strings.TrimSpace(raw), "/")
	c.base.Store(&normalized)
}

// BaseURL returns the current base URL.
func (c *Client) BaseURL() string {
	if p := c.base.Load(); p != nil {
		return *p
	}
	return ""
}

// Jobs returns the orchestrator's job list, or an empty list on any failure.
func (c *Client) Jobs(ctx context.Context) []jobs.Job {
	list, err := c.FetchJobs(ctx)
	if err != nil {
		c.logFailure("/jobs", err)
		return []jobs.Job{}
	}
	return list
}

// Job returns one job. ok is false on any failure, 404 included.
func (c *Client) Job(ctx context.Context, key string) (jobs.Job, bool) {
	job, err := c.FetchJob(ctx, key)
	if err != nil {
		c.logFailure("/jobs/"+key, err)
		return jobs.Job{}, false
	}
	return job, true
}

// Metrics returns the orchestrator metrics, or an empty map on any failure.
func (c *Client) Metrics(ctx context.Context) Metrics {
	metrics, err := c.FetchMetrics(ctx)
	if err != nil {
		c.logFailure("/metrics", err)
		return Metrics{}
	}
	return metrics
}

// PostConfig pushes cfg and reports whether the orchestrator accepted it.
func (c *Client) PostConfig(ctx context.Context, cfg appconfig.AppConfig) bool {
	if _, err := c.PushConfig(ctx, cfg); err != nil {
		c.logFailure("/config", err)
		return false
	}
	return true
}

// FetchJobs is Jobs with the failure reported.
func (c *Client) FetchJobs(ctx context.Context) ([]jobs.Job, error) {
	var elems []json.RawMessage
	if err := c.getJSON(ctx, "/jobs", &elems); err != nil {
		return nil, err
	}
	list, skipped := decodeJobList(elems)
	if skipped > 0 {
		c.logger.Debug("skipped malformed job entries",
			logging.String(logging.FieldURL, c.BaseURL()+"/jobs"),
			logging.Int("skipped", skipped))
	}
	return list, nil
}

// FetchJob is Job with the failure reported.
func (c *Client) FetchJob(ctx context.Context, key string) (jobs.Job, error) {
	if strings.TrimSpace(key) == "" {
		return jobs.Job{}, fmt.Errorf("job key is required")
	}
	var wire wireJob
	if err := c.getJSON(ctx, "/jobs/"+url.PathEscape(key), &wire); err != nil {
		return jobs.Job{}, err
	}
	return wire.toJob(), nil
}

// FetchMetrics is Metrics with the failure reported.
func (c *Client) FetchMetrics(ctx context.Context) (Metrics, error) {
	var metrics Metrics
	if err := c.getJSON(ctx, "/metrics", &metrics); err != nil {
		return nil, err
	}
	if metrics == nil {
		metrics = Metrics{}
	}
	return metrics, nil
}

// FetchConfig reads the configuration the orchestrator is running with.
func (c *Client) FetchConfig(ctx context.Context) (RuntimeConfig, error) {
	var cfg RuntimeConfig
	if err := c.getJSON(ctx, "/config", &cfg); err != nil {
		return RuntimeConfig{}, err
	}
	return cfg, nil
}

// PushConfig posts cfg and returns the raw response body.
func (c *Client) PushConfig(ctx context.Context, cfg appconfig.AppConfig) ([]byte, error) {
	payload, err := json.Marshal(PatchFromAppConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return c.do(ctx, http.MethodPost, "/config", payload)
}

func (c *Client) getJSON(ctx context.Context, path string, target any) error {
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	base := c.BaseURL()
	if base == "" {
		return nil, fmt.Errorf("%w: base url not set", ErrUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, base+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Method: method, Path: path, Code: resp.StatusCode}
	}
	return body, nil
}

// Transport failures are routine while the orchestrator is down, so they stay
// at debug level.
func (c *Client) logFailure(path string, err error) {
	c.logger.Debug("orchestrator request failed",
		logging.String(logging.FieldURL, c.BaseURL()+path),
		logging.Bool("unavailable", IsUnavailable(err)),
		logging.Error(err))
}
