// Package client is the Go SDK for the commerce-batch HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	batchtypes "github.com/retailcore/commerce-batch/pkg/types/batch"
)

// Version of the SDK, sent in the User-Agent header.
const Version = "0.1.0"

// Logger is the minimal logging interface the client uses.
type Logger interface {
	Debugf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...interface{}) {}
func (noopLogger) Errorf(string, ...interface{}) {}

// ProductData is the payload of one product batch operation. Pointer fields
// are optional; which ones are required depends on the operation type.
type ProductData struct {
	ID          *uuid.UUID             `json:"id,omitempty"`
	TenantID    uuid.UUID              `json:"tenant_id,omitempty"`
	LocationID  *uuid.UUID             `json:"location_id,omitempty"`
	SKU         *string                `json:"sku,omitempty"`
	Name        *string                `json:"name,omitempty"`
	Description *string                `json:"description,omitempty"`
	Category    *string                `json:"category,omitempty"`
	Price       *float64               `json:"price,omitempty"`
	TaxRate     *float64               `json:"tax_rate,omitempty"`
	IsActive    *bool                  `json:"is_active,omitempty"`
	Quantity    *int                   `json:"quantity,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// APIError is an error response from the batch API.
type APIError struct {
	StatusCode int    `json:"status_code"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("commerce-batch: %s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
}

// IsNotFound reports whether the error is a 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsServerError reports whether the error is a 5xx.
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// Client talks to one commerce-batch deployment.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	tenantHeader string
	tenantID     string
	userAgent    string
	logger       Logger
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
}

// NewClient builds a Client for the API at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid baseURL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("baseURL scheme must be http or https")
	}

	c := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   &http.Client{Timeout: 10 * time.Minute},
		tenantHeader: "X-Tenant-ID",
		userAgent:    fmt.Sprintf("commerce-batch-go-sdk/%s", Version),
		logger:       noopLogger{},
		retryMax:     3,
		retryWaitMin: 500 * time.Millisecond,
		retryWaitMax: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SubmitProductBatch submits a batch of product operations and blocks until
// every operation finished.
func (c *Client) SubmitProductBatch(ctx context.Context, req batchtypes.BatchRequest[ProductData]) (*batchtypes.BatchResponse, error) {
	var resp batchtypes.BatchResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/batch/products", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// BatchStatus fetches the status of a batch by ID.
func (c *Client) BatchStatus(ctx context.Context, batchID string) (*batchtypes.BatchStatus, error) {
	var status batchtypes.BatchStatus
	if err := c.do(ctx, http.MethodGet, "/api/v1/batch/"+url.PathEscape(batchID), nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// BatchProgress fetches live completion figures for a batch.
func (c *Client) BatchProgress(ctx context.Context, batchID string) (*batchtypes.Progress, error) {
	var progress batchtypes.Progress
	if err := c.do(ctx, http.MethodGet, "/api/v1/batch/"+url.PathEscape(batchID)+"/progress", nil, &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}

// CancelBatch requests cancellation. The returned bool reports whether the
// batch actually transitioned to cancelled; false means it had already
// finished.
func (c *Client) CancelBatch(ctx context.Context, batchID string) (bool, error) {
	var resp struct {
		BatchID   string `json:"batch_id"`
		Cancelled bool   `json:"cancelled"`
	}
	if err := c.do(ctx, http.MethodDelete, "/api/v1/batch/"+url.PathEscape(batchID), nil, &resp); err != nil {
		return false, err
	}
	return resp.Cancelled, nil
}

// do performs one API request with retries on transport errors and 5xx
// responses. Submissions are not idempotent, so POST is never retried.
func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var bodyBytes []byte
	if body != nil {
		var err error
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	retries := c.retryMax
	if method == http.MethodPost {
		retries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			wait := c.backoff(attempt)
			c.logger.Debugf("retry %d after %v", attempt, wait)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		var reader io.Reader
		if bodyBytes != nil {
			reader = bytes.NewReader(bodyBytes)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)
		if c.tenantID != "" {
			req.Header.Set(c.tenantHeader, c.tenantID)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			c.logger.Errorf("request failed: %v", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode >= 400 {
			apiErr := parseAPIError(resp.StatusCode, respBody)
			if apiErr.IsServerError() && attempt < retries {
				lastErr = apiErr
				continue
			}
			return apiErr
		}

		if result != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, result); err != nil {
				return fmt.Errorf("failed to decode response: %w", err)
			}
		}
		return nil
	}
	return lastErr
}

func parseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Code != "" {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
		return apiErr
	}
	apiErr.Code = http.StatusText(statusCode)
	apiErr.Message = strings.TrimSpace(string(body))
	return apiErr
}

// backoff doubles the wait per attempt with jitter, capped at retryWaitMax.
func (c *Client) backoff(attempt int) time.Duration {
	wait := c.retryWaitMin << (attempt - 1)
	if wait > c.retryWaitMax {
		wait = c.retryWaitMax
	}
	jitter := time.Duration(rand.Int63n(int64(wait) / 4))
	return wait + jitter
}
