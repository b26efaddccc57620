package analytics

import (
	"math"
	"sort"
	"time"

	"burnstop/internal/platform/models"
)

// Summary is the analytics payload for one organization.
type Summary struct {
	TotalMonthlyCost   float64            `json:"total_monthly_cost"`
	TotalServices      int                `json:"total_services"`
	CostByPlatform     map[string]float64 `json:"cost_by_platform"`
	CostByType         map[string]float64 `json:"cost_by_type"`
	PredictedNextMonth float64            `json:"predicted_next_month"`
	CostTrend          []models.CostPoint `json:"cost_trend"`
}

// trendWindow is how many recent points feed the regression.
const trendWindow = 6

// minRealPoints is the threshold below which the trend is backfilled with
// synthesized monthly points.
const minRealPoints = 4

// BuildTrend sorts the combined cost history ascending by date. When fewer
// than four real points exist and the organization has active services, a
// six-point monthly series is synthesized, ramping from 75% to ~96% of the
// current total. Synthesized points carry Synthetic=true: they are a
// presentation heuristic, not measured history, and consumers must be able
// to tell the difference.
func BuildTrend(points []models.CostPoint, totalCost float64, activeServices int, now time.Time) []models.CostPoint {
	trend := make([]models.CostPoint, len(points))
	copy(trend, points)
	sort.SliceStable(trend, func(i, j int) bool { return trend[i].Date < trend[j].Date })

	if len(trend) >= minRealPoints || activeServices == 0 {
		return trend
	}

	synthesized := make([]models.CostPoint, 0, trendWindow)
	for i := trendWindow; i >= 1; i-- {
		monthStart := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		factor := 0.75 + 0.25*float64(trendWindow-i)/float64(trendWindow)
		synthesized = append(synthesized, models.CostPoint{
			Date:      monthStart.Format(time.RFC3339),
			Cost:      math.Round(totalCost*factor*100) / 100,
			Synthetic: true,
		})
	}

	// Only substitute when the fabricated series is actually richer.
	if len(synthesized) > len(trend) {
		return synthesized
	}
	return trend
}

// Forecast fits an ordinary least-squares line over the last min(6, N) trend
// points (x = point index) and extrapolates one step. Falls back to the
// current total when fewer than two points exist, and never predicts a
// negative cost.
func Forecast(trend []models.CostPoint, totalCost float64) float64 {
	if len(trend) < 2 {
		return totalCost
	}

	recent := trend
	if len(recent) > trendWindow {
		recent = recent[len(recent)-trendWindow:]
	}

	n := float64(len(recent))
	var sumX, sumY, sumXY, sumXX float64
	for i, p := range recent {
		x := float64(i)
		sumX += x
		sumY += p.Cost
		sumXY += x * p.Cost
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return totalCost
	}

	m := (n*sumXY - sumX*sumY) / denom
	b := (sumY - m*sumX) / n

	predicted := m*n + b
	if predicted < 0 {
		return 0
	}
	return predicted
}

// SeedHistory fabricates three months of plausible lead-in points behind a
// service's initial cost so first-day charts are not empty, then appends the
// real initial point. Backfill is marked synthetic.
func SeedHistory(cost float64, now time.Time) []models.CostPoint {
	points := make([]models.CostPoint, 0, 4)
	for i := 3; i >= 1; i-- {
		historical := time.Date(now.Year(), now.Month()-time.Month(i), now.Day(), 0, 0, 0, 0, time.UTC)
		factor := 0.8 + 0.2*float64(4-i)/3
		points = append(points, models.CostPoint{
			Date:      historical.Format(time.RFC3339),
			Cost:      math.Round(cost*factor*100) / 100,
			Synthetic: true,
		})
	}
	points = append(points, models.CostPoint{Date: now.UTC().Format(time.RFC3339), Cost: cost})
	return points
}
