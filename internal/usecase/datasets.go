package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/beaconlabs/beacon-mcp/internal/domain"
)

// ListDatasetsUseCase backs the list_datasets tool.
type ListDatasetsUseCase struct {
	client  AnalyticsClient
	limiter *rate.Limiter
	tracer  trace.Tracer
	logger  *slog.Logger
}

// NewListDatasetsUseCase creates a new ListDatasetsUseCase.
func NewListDatasetsUseCase(client AnalyticsClient, limiter *rate.Limiter, logger *slog.Logger) *ListDatasetsUseCase {
	return &ListDatasetsUseCase{
		client:  client,
		limiter: limiter,
		tracer:  otel.Tracer("usecase/datasets"),
		logger:  logger.With("usecase", "ListDatasets"),
	}
}

// Execute lists the datasets visible to the configured token.
func (uc *ListDatasetsUseCase) Execute(ctx context.Context) ([]domain.Dataset, error) {
	ctx, span := uc.tracer.Start(ctx, "ListDatasets.Execute")
	defer span.End()

	if !uc.limiter.Allow() {
		uc.logger.Warn("Dataset listing rate limited")
		return nil, ErrRateLimited
	}

	datasets, err := uc.client.Datasets(ctx)
	if err != nil {
		uc.logger.Error("Failed to list datasets", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}

	uc.logger.Info("Listed datasets", slog.Int("count", len(datasets)))
	return datasets, nil
}
