package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/beaconlabs/beacon-mcp/internal/domain"
	"github.com/beaconlabs/beacon-mcp/internal/usecase"
)

func TestListDatasetsUseCase_Execute(t *testing.T) {
	ctx := context.Background()
	upstreamErr := errors.New("upstream exploded")

	someDatasets := []domain.Dataset{
		{ID: "ds1", Name: "http-logs", Description: "Edge request logs"},
		{ID: "ds2", Name: "deploys"},
	}

	tests := []struct {
		name      string
		limiter   *rate.Limiter
		mockSetup func(*MockAnalyticsClient)
		want      []domain.Dataset
		wantErr   error
	}{
		{
			name:    "success",
			limiter: openLimiter(),
			mockSetup: func(c *MockAnalyticsClient) {
				c.On("Datasets", mock.Anything).Return(someDatasets, nil).Once()
			},
			want: someDatasets,
		},
		{
			name:    "empty listing is not an error",
			limiter: openLimiter(),
			mockSetup: func(c *MockAnalyticsClient) {
				c.On("Datasets", mock.Anything).Return([]domain.Dataset{}, nil).Once()
			},
			want: []domain.Dataset{},
		},
		{
			name:      "rate limited",
			limiter:   closedLimiter(),
			mockSetup: func(c *MockAnalyticsClient) {},
			wantErr:   usecase.ErrRateLimited,
		},
		{
			name:    "upstream error wrapped",
			limiter: openLimiter(),
			mockSetup: func(c *MockAnalyticsClient) {
				c.On("Datasets", mock.Anything).Return(nil, upstreamErr).Once()
			},
			wantErr: upstreamErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockAnalyticsClient)
			tt.mockSetup(client)

			uc := usecase.NewListDatasetsUseCase(client, tt.limiter, testLogger())
			got, err := uc.Execute(ctx)

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
