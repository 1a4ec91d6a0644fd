package usecase_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/beaconlabs/beacon-mcp/internal/domain"
	"github.com/beaconlabs/beacon-mcp/internal/usecase"
)

// MockAnalyticsClient is a mock implementation of usecase.AnalyticsClient,
// shared by the tests in this package.
type MockAnalyticsClient struct {
	mock.Mock
}

func (m *MockAnalyticsClient) Query(ctx context.Context, q, startTime, endTime string) (*domain.QueryResult, error) {
	args := m.Called(ctx, q, startTime, endTime)
	if res := args.Get(0); res != nil {
		return res.(*domain.QueryResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAnalyticsClient) Datasets(ctx context.Context) ([]domain.Dataset, error) {
	args := m.Called(ctx)
	if res := args.Get(0); res != nil {
		return res.([]domain.Dataset), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAnalyticsClient) DatasetFields(ctx context.Context, dataset string) ([]map[string]any, error) {
	args := m.Called(ctx, dataset)
	if res := args.Get(0); res != nil {
		return res.([]map[string]any), args.Error(1)
	}
	return nil, args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// openLimiter never denies a token.
func openLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Inf, 1)
}

// closedLimiter denies every token.
func closedLimiter() *rate.Limiter {
	return rate.NewLimiter(0, 0)
}

func TestQueryUseCase_Execute(t *testing.T) {
	ctx := context.Background()
	upstreamErr := errors.New("upstream exploded")

	okResult := &domain.QueryResult{
		Status: domain.QueryStatus{ElapsedTime: 12, RowsExamined: 100, RowsMatched: 3},
		Matches: []domain.QueryMatch{
			{Time: "2026-08-29T10:00:00Z", Data: map[string]any{"status": 200}},
		},
	}

	tests := []struct {
		name      string
		query     string
		startTime string
		endTime   string
		limiter   *rate.Limiter
		mockSetup func(*MockAnalyticsClient)
		want      *domain.QueryResult
		wantErr   error
	}{
		{
			name:    "success",
			query:   "['http-logs'] | where status == 200",
			limiter: openLimiter(),
			mockSetup: func(c *MockAnalyticsClient) {
				c.On("Query", mock.Anything, "['http-logs'] | where status == 200", "", "").
					Return(okResult, nil).Once()
			},
			want: okResult,
		},
		{
			name:      "time bounds passed through",
			query:     "['http-logs'] | count",
			startTime: "2026-08-29T00:00:00Z",
			endTime:   "2026-08-30T00:00:00Z",
			limiter:   openLimiter(),
			mockSetup: func(c *MockAnalyticsClient) {
				c.On("Query", mock.Anything, "['http-logs'] | count",
					"2026-08-29T00:00:00Z", "2026-08-30T00:00:00Z").
					Return(okResult, nil).Once()
			},
			want: okResult,
		},
		{
			name:      "empty query rejected before limiter or client",
			query:     "   ",
			limiter:   closedLimiter(),
			mockSetup: func(c *MockAnalyticsClient) {},
			wantErr:   usecase.ErrEmptyQuery,
		},
		{
			name:      "rate limited",
			query:     "['http-logs'] | count",
			limiter:   closedLimiter(),
			mockSetup: func(c *MockAnalyticsClient) {},
			wantErr:   usecase.ErrRateLimited,
		},
		{
			name:    "upstream error wrapped",
			query:   "['http-logs'] | count",
			limiter: openLimiter(),
			mockSetup: func(c *MockAnalyticsClient) {
				c.On("Query", mock.Anything, "['http-logs'] | count", "", "").
					Return(nil, upstreamErr).Once()
			},
			wantErr: upstreamErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockAnalyticsClient)
			tt.mockSetup(client)

			uc := usecase.NewQueryUseCase(client, tt.limiter, testLogger())
			got, err := uc.Execute(ctx, tt.query, tt.startTime, tt.endTime)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			client.AssertExpectations(t)
		})
	}
}

func TestQueryUseCase_LimiterChargesPerCall(t *testing.T) {
	ctx := context.Background()
	client := new(MockAnalyticsClient)
	client.On("Query", mock.Anything, "['a'] | count", "", "").
		Return(&domain.QueryResult{}, nil).Once()

	// Burst of one and no refill: the first call goes through, the second
	// is denied.
	uc := usecase.NewQueryUseCase(client, rate.NewLimiter(0, 1), testLogger())

	_, err := uc.Execute(ctx, "['a'] | count", "", "")
	require.NoError(t, err)

	_, err = uc.Execute(ctx, "['a'] | count", "", "")
	assert.ErrorIs(t, err, usecase.ErrRateLimited)
	client.AssertExpectations(t)
}
