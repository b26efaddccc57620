package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"burnstop/internal/platform/models"
)

func point(date string, cost float64) models.CostPoint {
	return models.CostPoint{Date: date, Cost: cost}
}

func TestForecastLinearSeries(t *testing.T) {
	trend := []models.CostPoint{
		point("2026-01-01", 100),
		point("2026-02-01", 110),
		point("2026-03-01", 120),
		point("2026-04-01", 130),
	}

	// Perfectly linear history extrapolates one more step.
	assert.InDelta(t, 140, Forecast(trend, 130), 0.001)
}

func TestForecastConstantSeries(t *testing.T) {
	trend := []models.CostPoint{
		point("2026-01-01", 50),
		point("2026-02-01", 50),
		point("2026-03-01", 50),
	}

	assert.InDelta(t, 50, Forecast(trend, 50), 0.001)
}

func TestForecastTooFewPointsFallsBack(t *testing.T) {
	assert.Equal(t, 250.0, Forecast(nil, 250))
	assert.Equal(t, 250.0, Forecast([]models.CostPoint{point("2026-01-01", 10)}, 250))
}

func TestForecastNeverNegative(t *testing.T) {
	trend := []models.CostPoint{
		point("2026-01-01", 100),
		point("2026-02-01", 40),
		point("2026-03-01", 5),
	}

	assert.GreaterOrEqual(t, Forecast(trend, 5), 0.0)
}

func TestForecastUsesOnlyRecentWindow(t *testing.T) {
	// Old spike outside the six-point window must not influence the fit.
	trend := []models.CostPoint{point("2025-01-01", 100000)}
	for month := 2; month <= 8; month++ {
		trend = append(trend, point(time.Date(2025, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02"), 100))
	}

	assert.InDelta(t, 100, Forecast(trend, 100), 0.001)
}

func TestBuildTrendKeepsRealHistory(t *testing.T) {
	points := []models.CostPoint{
		point("2026-03-01", 120),
		point("2026-01-01", 100),
		point("2026-04-01", 130),
		point("2026-02-01", 110),
	}

	trend := BuildTrend(points, 130, 2, time.Now())
	require.Len(t, trend, 4)

	// Sorted ascending, nothing synthesized.
	assert.Equal(t, "2026-01-01", trend[0].Date)
	assert.Equal(t, "2026-04-01", trend[3].Date)
	for _, p := range trend {
		assert.False(t, p.Synthetic)
	}
}

func TestBuildTrendSynthesizesWhenSparse(t *testing.T) {
	now := time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)
	total := 200.0

	trend := BuildTrend([]models.CostPoint{point("2026-08-01", total)}, total, 3, now)
	require.Len(t, trend, 6)

	for i, p := range trend {
		assert.True(t, p.Synthetic, "point %d should be synthetic", i)
		assert.LessOrEqual(t, p.Cost, total)
		if i > 0 {
			assert.GreaterOrEqual(t, p.Cost, trend[i-1].Cost, "trend should be non-decreasing")
		}
	}

	// Ramp starts at 75% of the current total.
	assert.InDelta(t, 150, trend[0].Cost, 0.01)
}

func TestBuildTrendNoActiveServicesNoSynthesis(t *testing.T) {
	trend := BuildTrend(nil, 0, 0, time.Now())
	assert.Empty(t, trend)
}

func TestSeedHistory(t *testing.T) {
	now := time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC)
	points := SeedHistory(90, now)
	require.Len(t, points, 4)

	for _, p := range points[:3] {
		assert.True(t, p.Synthetic)
		assert.LessOrEqual(t, p.Cost, 90.0)
	}

	last := points[3]
	assert.False(t, last.Synthetic)
	assert.Equal(t, 90.0, last.Cost)

	for i := 1; i < len(points); i++ {
		assert.GreaterOrEqual(t, points[i].Cost, points[i-1].Cost)
	}
}
