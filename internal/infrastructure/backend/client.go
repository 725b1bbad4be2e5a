// Package backend talks to the remote inference backend over HTTP.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/doeshing/unlp/internal/domain"
	"github.com/doeshing/unlp/internal/ports"
	"github.com/doeshing/unlp/internal/version"
)

// Client implements ports.Processor and ports.ModelCatalog.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     ports.Logger
}

// NewHTTPClient returns the traced client used against a real backend.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = domain.DefaultHTTPClientTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// NewClient builds a client rooted at baseURL. A nil httpClient gets NewHTTPClient defaults.
func NewClient(baseURL string, httpClient *http.Client, logger ports.Logger) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient(0)
	}
	if baseURL == "" {
		baseURL = domain.DefaultBackendBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListModels fetches the model catalog.
func (c *Client) ListModels(ctx context.Context) ([]domain.ModelDescriptor, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+domain.ModelsPath, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("accept", "application/json")

	status, body, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, decodeError(status, body)
	}

	var payload modelsResponseBody
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &domain.DeserializationError{Err: err}
	}
	return payload.Models, nil
}

// Health calls the backend's health endpoint.
func (c *Client) Health(ctx context.Context) (domain.BackendHealth, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+domain.HealthPath, nil)
	if err != nil {
		return domain.BackendHealth{}, err
	}
	status, body, err := c.do(httpReq)
	if err != nil {
		return domain.BackendHealth{}, err
	}
	if status < 200 || status > 299 {
		return domain.BackendHealth{}, decodeError(status, body)
	}
	var health domain.BackendHealth
	if err := json.Unmarshal(body, &health); err != nil {
		return domain.BackendHealth{}, &domain.DeserializationError{Err: err}
	}
	return health, nil
}

// Process dispatches one task.
func (c *Client) Process(ctx context.Context, req domain.ProcessRequest) (domain.ProcessingResult, error) {
	requestBody, err := json.Marshal(newProcessRequestBody(req))
	if err != nil {
		return domain.ProcessingResult{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+domain.ProcessPath, bytes.NewReader(requestBody))
	if err != nil {
		return domain.ProcessingResult{}, err
	}
	httpReq.Header.Set("content-type", "application/json")

	started := time.Now()
	status, body, err := c.do(httpReq)
	if err != nil {
		return domain.ProcessingResult{}, err
	}
	c.debug("process response", map[string]interface{}{
		"status":      status,
		"model":       req.ModelID,
		"duration_ms": time.Since(started).Milliseconds(),
	})
	if status < 200 || status > 299 {
		return domain.ProcessingResult{}, decodeError(status, body)
	}

	var payload processResponseBody
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.ProcessingResult{}, &domain.DeserializationError{Err: err}
	}
	return payload.toResult(), nil
}

func (c *Client) do(httpReq *http.Request) (int, []byte, error) {
	httpReq.Header.Set("user-agent", version.UserAgent())
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, &domain.TransportError{Err: err}
	}
	defer resp.Body.Close()

	var responseBody bytes.Buffer
	if _, err := responseBody.ReadFrom(resp.Body); err != nil && !errors.Is(err, io.EOF) {
		return 0, nil, &domain.TransportError{Err: fmt.Errorf("read body: %w", err)}
	}
	return resp.StatusCode, responseBody.Bytes(), nil
}

// decodeError turns a non-2xx answer into a BackendError. An unreadable body
// still yields a BackendError, just without a message.
func decodeError(status int, body []byte) error {
	backendErr := &domain.BackendError{StatusCode: status}
	var payload errorResponseBody
	if err := json.Unmarshal(body, &payload); err == nil {
		backendErr.Message = payload.message()
		backendErr.Code = payload.Code
	}
	return backendErr
}

func (c *Client) debug(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, fields)
	}
}

var (
	_ ports.Processor    = (*Client)(nil)
	_ ports.ModelCatalog = (*Client)(nil)
	_ ports.HealthProbe  = (*Client)(nil)
)
