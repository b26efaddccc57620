package analytics

import (
	"context"
	"time"

	"burnstop/internal/platform/models"
	"burnstop/internal/platform/repositories"
)

type Service struct {
	services *repositories.ServiceRepository
}

func NewService(services *repositories.ServiceRepository) *Service {
	return &Service{services: services}
}

// Summarize aggregates the organization's active services into totals,
// per-platform and per-type breakdowns, the cost trend, and the next-month
// forecast.
func (s *Service) Summarize(ctx context.Context, orgID string) (*Summary, error) {
	services, err := s.services.ActiveByOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		CostByPlatform: map[string]float64{},
		CostByType:     map[string]float64{},
	}

	var history []models.CostPoint
	for _, svc := range services {
		summary.TotalServices++
		summary.TotalMonthlyCost += svc.Cost
		summary.CostByPlatform[string(svc.Platform)] += svc.Cost
		summary.CostByType[svc.ServiceType] += svc.Cost

		points, err := s.services.CostHistory(ctx, orgID, svc.ID)
		if err != nil {
			return nil, err
		}
		history = append(history, points...)
	}

	summary.CostTrend = BuildTrend(history, summary.TotalMonthlyCost, summary.TotalServices, time.Now())
	summary.PredictedNextMonth = Forecast(summary.CostTrend, summary.TotalMonthlyCost)
	return summary, nil
}
