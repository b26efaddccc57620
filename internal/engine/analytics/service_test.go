package analytics

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"burnstop/internal/platform/models"
	"burnstop/internal/platform/repositories"
	"burnstop/internal/platform/store"
)

func TestSummarizeAggregatesActiveServices(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	serviceRepo := repositories.NewServiceRepository(store.NewWithClient(client))

	ctx := context.Background()
	services := []*models.Service{
		{ID: "s1", OrgID: "org1", Name: "prod-db", Platform: models.PlatformAWS, ServiceType: "rds", Cost: 300, Status: models.StatusActive},
		{ID: "s2", OrgID: "org1", Name: "cache", Platform: models.PlatformAWS, ServiceType: "elasticache", Cost: 100, Status: models.StatusActive},
		{ID: "s3", OrgID: "org1", Name: "builds", Platform: models.PlatformGCP, ServiceType: "cloud_build", Cost: 50, Status: models.StatusActive},
		{ID: "s4", OrgID: "org1", Name: "retired", Platform: models.PlatformAzure, ServiceType: "vm", Cost: 999, Status: models.StatusPendingDeletion},
	}
	for _, svc := range services {
		require.NoError(t, serviceRepo.Create(ctx, svc))
	}

	summary, err := NewService(serviceRepo).Summarize(ctx, "org1")
	require.NoError(t, err)

	// The pending-deletion service contributes nothing.
	assert.Equal(t, 3, summary.TotalServices)
	assert.InDelta(t, 450, summary.TotalMonthlyCost, 0.001)
	assert.InDelta(t, 400, summary.CostByPlatform["aws"], 0.001)
	assert.InDelta(t, 50, summary.CostByPlatform["gcp"], 0.001)
	assert.NotContains(t, summary.CostByPlatform, "azure")
	assert.InDelta(t, 300, summary.CostByType["rds"], 0.001)

	// No real history and active services present: the trend is synthesized
	// and the forecast comes out of the fitted line, not the raw total.
	require.Len(t, summary.CostTrend, 6)
	for _, p := range summary.CostTrend {
		assert.True(t, p.Synthetic)
	}
	assert.Greater(t, summary.PredictedNextMonth, 0.0)
}

func TestSummarizeEmptyOrganization(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	serviceRepo := repositories.NewServiceRepository(store.NewWithClient(client))

	summary, err := NewService(serviceRepo).Summarize(context.Background(), "empty-org")
	require.NoError(t, err)

	assert.Zero(t, summary.TotalServices)
	assert.Zero(t, summary.TotalMonthlyCost)
	assert.Empty(t, summary.CostTrend)
	assert.Zero(t, summary.PredictedNextMonth)
}
