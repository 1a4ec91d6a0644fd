package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/beaconlabs/beacon-mcp/internal/domain"
)

// DatasetSchemaUseCase backs the get_dataset_schema tool. It fetches the
// raw field descriptors of a dataset and reshapes them into a compact type
// description: the upstream fields array is validated, folded into a nested
// tree along the dotted field names, and rendered as an indented block that
// replaces the array in the returned payload.
type DatasetSchemaUseCase struct {
	client  AnalyticsClient
	limiter *rate.Limiter
	tracer  trace.Tracer
	logger  *slog.Logger
}

// NewDatasetSchemaUseCase creates a new DatasetSchemaUseCase.
func NewDatasetSchemaUseCase(client AnalyticsClient, limiter *rate.Limiter, logger *slog.Logger) *DatasetSchemaUseCase {
	return &DatasetSchemaUseCase{
		client:  client,
		limiter: limiter,
		tracer:  otel.Tracer("usecase/dataset_schema"),
		logger:  logger.With("usecase", "DatasetSchema"),
	}
}

// Execute fetches and flattens the schema of the named dataset. Validation
// of the upstream field descriptors is atomic: one malformed descriptor
// fails the whole call before any tree is built.
func (uc *DatasetSchemaUseCase) Execute(ctx context.Context, dataset string) (*domain.DatasetSchema, error) {
	ctx, span := uc.tracer.Start(ctx, "DatasetSchema.Execute")
	defer span.End()

	if strings.TrimSpace(dataset) == "" {
		return nil, ErrEmptyDataset
	}
	if !uc.limiter.Allow() {
		uc.logger.Warn("Schema fetch rate limited", slog.String("dataset", dataset))
		return nil, ErrRateLimited
	}

	log := uc.logger.With(slog.String("dataset", dataset))

	raw, err := uc.client.DatasetFields(ctx, dataset)
	if err != nil {
		log.Error("Failed to fetch dataset fields", slog.Any("error", err))
		return nil, fmt.Errorf("failed to fetch fields for dataset %s: %w", dataset, err)
	}

	fields, err := domain.ValidateFields(raw)
	if err != nil {
		log.Error("Upstream returned malformed field descriptors", slog.Any("error", err))
		return nil, fmt.Errorf("invalid field descriptors for dataset %s: %w", dataset, err)
	}

	rendered := domain.BuildSchemaTree(fields).String()
	log.Info("Flattened dataset schema", slog.Int("field_count", len(fields)))

	return &domain.DatasetSchema{Dataset: dataset, Fields: rendered}, nil
}
