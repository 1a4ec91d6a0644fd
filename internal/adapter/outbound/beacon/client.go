package beacon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/beaconlabs/beacon-mcp/internal/domain"
)

// Client talks to the Beacon platform's REST API. It implements
// usecase.AnalyticsClient.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	token      string
	orgID      string
	logger     *slog.Logger
}

// APIError is returned for non-2xx upstream responses. It carries the raw
// response body so the agent sees the platform's own error message.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("beacon API returned HTTP %d: %s", e.StatusCode, e.Body)
}

// NewClient creates a Client for the given base URL and API token.
// orgID may be empty for personal tokens.
func NewClient(httpClient *http.Client, baseURL, token, orgID string, logger *slog.Logger) (*Client, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %s: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL %s must be absolute", baseURL)
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    u,
		token:      token,
		orgID:      orgID,
		logger:     logger.With("component", "beacon_client"),
	}, nil
}

type queryRequest struct {
	Query     string `json:"query"`
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
}

// Query runs a pipeline-language query via POST /v1/query.
func (c *Client) Query(ctx context.Context, q, startTime, endTime string) (*domain.QueryResult, error) {
	var result domain.QueryResult
	body := queryRequest{Query: q, StartTime: startTime, EndTime: endTime}
	if err := c.do(ctx, http.MethodPost, "/v1/query", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Datasets lists datasets via GET /v1/datasets.
func (c *Client) Datasets(ctx context.Context) ([]domain.Dataset, error) {
	var datasets []domain.Dataset
	if err := c.do(ctx, http.MethodGet, "/v1/datasets", nil, &datasets); err != nil {
		return nil, err
	}
	return datasets, nil
}

// DatasetFields returns the raw field descriptors of a dataset via
// GET /v1/datasets/{name}/fields. Descriptors stay untyped here; validation
// and defaulting happen in the domain layer.
func (c *Client) DatasetFields(ctx context.Context, dataset string) ([]map[string]any, error) {
	var fields []map[string]any
	reqPath := fmt.Sprintf("/v1/datasets/%s/fields", url.PathEscape(dataset))
	if err := c.do(ctx, http.MethodGet, reqPath, nil, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// do executes one API request and decodes the JSON response into out.
func (c *Client) do(ctx context.Context, method, reqPath string, body, out any) error {
	requestID := uuid.NewString()
	log := c.logger.With(
		slog.String("method", method),
		slog.String("path", reqPath),
		slog.String("request_id", requestID),
	)

	// reqPath arrives with its segments already percent-escaped; splice it
	// onto the base URL as-is so escapes survive intact.
	endpoint := strings.TrimSuffix(c.baseURL.String(), "/") + reqPath

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.orgID != "" {
		req.Header.Set("X-Beacon-Org-ID", c.orgID)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.Debug("Executing API request")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("API request failed", slog.Any("error", err))
		return fmt.Errorf("request execution failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read response body", slog.Any("error", err))
		return fmt.Errorf("failed to read response body: %w", err)
	}

	log = log.With(slog.Int("status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn("Received non-success status code", slog.String("response_body", string(respBody)))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			log.Error("Failed to unmarshal response", slog.Any("error", err))
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	log.Debug("API request succeeded")
	return nil
}
