package usecase

import (
	"context"
	"errors"

	"github.com/beaconlabs/beacon-mcp/internal/domain"
)

// Standard errors returned by use cases.
var (
	// ErrRateLimited is returned when a tool invocation exceeds its
	// configured rate limit. The caller should surface it to the agent
	// rather than retry.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrEmptyQuery is returned when the query tool is invoked without a
	// query string.
	ErrEmptyQuery = errors.New("query must not be empty")

	// ErrEmptyDataset is returned when the schema tool is invoked without a
	// dataset name.
	ErrEmptyDataset = errors.New("dataset name must not be empty")
)

// AnalyticsClient is the outbound port to the Beacon platform API.
// Implementations own transport, authentication headers, and response
// decoding; use cases own rate limiting and payload reshaping.
type AnalyticsClient interface {
	// Query runs a pipeline-language query. startTime and endTime are
	// optional RFC3339 bounds passed through to the upstream untouched.
	Query(ctx context.Context, q, startTime, endTime string) (*domain.QueryResult, error)

	// Datasets lists the datasets visible to the configured token.
	Datasets(ctx context.Context) ([]domain.Dataset, error)

	// DatasetFields returns the raw field descriptors of one dataset, as
	// delivered by the dataset-info endpoint's fields array.
	DatasetFields(ctx context.Context, dataset string) ([]map[string]any, error)
}
