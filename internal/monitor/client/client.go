package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/printyx/printyx-monitor/internal/config"
	"github.com/printyx/printyx-monitor/internal/monitor/model"
)

// TenantHeader carries the tenant scope on every platform request.
const TenantHeader = "x-tenant-id"

// FetchError marks a transport-level failure (unreachable, non-2xx, bad JSON).
// Monitoring feeds treat it as "no data this tick"; the validation gate maps
// it to a synthetic failed result instead.
type FetchError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.Endpoint, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client talks to the Printyx platform API on behalf of one tenant.
type Client struct {
	baseURL    string
	tenantID   string
	httpClient *http.Client
}

func New(baseURL, tenantID string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		tenantID:   tenantID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NewFromConfig builds a client from the app's platform config.
func NewFromConfig(c *config.PlatformConfig) *Client {
	if c == nil {
		return New("http://localhost:5000", "", 0)
	}
	timeout, _ := time.ParseDuration(c.Timeout)
	return New(c.BaseURL, c.TenantID, timeout)
}

// FetchAlerts retrieves the latest alert batch. Any failure is a *FetchError;
// callers treat it as an empty batch rather than a blocking error.
func (c *Client) FetchAlerts(ctx context.Context) ([]model.AlertRecord, error) {
	var out []model.AlertRecord
	if err := c.getJSON(ctx, "/api/performance/alerts", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchBreaches retrieves the current SLA breach metrics.
func (c *Client) FetchBreaches(ctx context.Context) ([]model.BreachMetric, error) {
	var out []model.BreachMetric
	if err := c.getJSON(ctx, "/api/reports/breaches", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchMetricsSummary retrieves the dashboard KPI scalar object.
func (c *Client) FetchMetricsSummary(ctx context.Context) (*model.MetricsSummary, error) {
	var out model.MetricsSummary
	if err := c.getJSON(ctx, "/api/performance/metrics", &out); err != nil {
		return nil, err
	}
	out.FetchedAt = time.Now().UTC()
	return &out, nil
}

// Validate asks the platform validator whether a record may move through the
// given workflow transition.
func (c *Client) Validate(ctx context.Context, transitionType, recordID string) (*model.ValidationResult, error) {
	path := "/api/validate/" + url.PathEscape(transitionType) + "/" + url.PathEscape(recordID)
	var out model.ValidationResult
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	endpoint := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &FetchError{Endpoint: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.tenantID != "" {
		req.Header.Set(TenantHeader, c.tenantID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &FetchError{Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &FetchError{Endpoint: path, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{Endpoint: path, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
