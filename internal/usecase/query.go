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

// QueryUseCase runs pipeline-language queries against the platform on
// behalf of the query tool.
type QueryUseCase struct {
	client  AnalyticsClient
	limiter *rate.Limiter
	tracer  trace.Tracer
	logger  *slog.Logger
}

// NewQueryUseCase creates a new QueryUseCase.
func NewQueryUseCase(client AnalyticsClient, limiter *rate.Limiter, logger *slog.Logger) *QueryUseCase {
	return &QueryUseCase{
		client:  client,
		limiter: limiter,
		tracer:  otel.Tracer("usecase/query"),
		logger:  logger.With("usecase", "Query"),
	}
}

// Execute validates the invocation, charges the rate limiter, and delegates
// to the upstream client. A denied limiter token fails synchronously with
// ErrRateLimited; nothing is queued.
func (uc *QueryUseCase) Execute(ctx context.Context, q, startTime, endTime string) (*domain.QueryResult, error) {
	ctx, span := uc.tracer.Start(ctx, "Query.Execute")
	defer span.End()

	if strings.TrimSpace(q) == "" {
		return nil, ErrEmptyQuery
	}
	if !uc.limiter.Allow() {
		uc.logger.Warn("Query invocation rate limited")
		return nil, ErrRateLimited
	}

	log := uc.logger.With(slog.String("query", q))
	log.Info("Running query", slog.String("start_time", startTime), slog.String("end_time", endTime))

	result, err := uc.client.Query(ctx, q, startTime, endTime)
	if err != nil {
		log.Error("Query failed", slog.Any("error", err))
		return nil, fmt.Errorf("query failed: %w", err)
	}

	log.Info("Query succeeded",
		slog.Uint64("rows_matched", result.Status.RowsMatched),
		slog.Int64("elapsed_ms", result.Status.ElapsedTime))
	return result, nil
}
