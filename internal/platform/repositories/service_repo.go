package repositories

import (
	"context"

	"burnstop/internal/platform/models"
	"burnstop/internal/platform/store"
)

type ServiceRepository struct {
	store *store.Store
}

func NewServiceRepository(s *store.Store) *ServiceRepository {
	return &ServiceRepository{store: s}
}

func (r *ServiceRepository) Create(ctx context.Context, svc *models.Service) error {
	if err := r.store.SetJSON(ctx, store.ServiceKey(svc.ID), svc); err != nil {
		return err
	}
	return r.addToOrgIndex(ctx, svc.OrgID, svc.ID)
}

func (r *ServiceRepository) GetByID(ctx context.Context, id string) (*models.Service, error) {
	svc := &models.Service{}
	found, err := r.store.GetJSON(ctx, store.ServiceKey(id), svc)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return svc, nil
}

func (r *ServiceRepository) Save(ctx context.Context, svc *models.Service) error {
	return r.store.SetJSON(ctx, store.ServiceKey(svc.ID), svc)
}

func (r *ServiceRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, store.ServiceKey(id))
}

// IDsByOrg returns the organization's service id list, soft-deleted entries
// included. The list is a single rewritten-wholesale key; concurrent creates
// can race (tolerated last-write-wins, low-contention workload).
func (r *ServiceRepository) IDsByOrg(ctx context.Context, orgID string) ([]string, error) {
	var ids []string
	if _, err := r.store.GetJSON(ctx, store.OrgServicesKey(orgID), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// ActiveByOrg loads the organization's services, filtered to status active.
func (r *ServiceRepository) ActiveByOrg(ctx context.Context, orgID string) ([]*models.Service, error) {
	ids, err := r.IDsByOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	services := make([]*models.Service, 0, len(ids))
	for _, id := range ids {
		svc, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if svc != nil && svc.Status == models.StatusActive {
			services = append(services, svc)
		}
	}
	return services, nil
}

func (r *ServiceRepository) addToOrgIndex(ctx context.Context, orgID, serviceID string) error {
	ids, err := r.IDsByOrg(ctx, orgID)
	if err != nil {
		return err
	}
	ids = append(ids, serviceID)
	return r.store.SetJSON(ctx, store.OrgServicesKey(orgID), ids)
}

func (r *ServiceRepository) DeleteOrgIndex(ctx context.Context, orgID string) error {
	return r.store.Delete(ctx, store.OrgServicesKey(orgID))
}

// CostHistory returns the append-only cost series for a service.
func (r *ServiceRepository) CostHistory(ctx context.Context, orgID, serviceID string) ([]models.CostPoint, error) {
	var points []models.CostPoint
	if _, err := r.store.GetJSON(ctx, store.CostHistoryKey(orgID, serviceID), &points); err != nil {
		return nil, err
	}
	return points, nil
}

func (r *ServiceRepository) AppendCostHistory(ctx context.Context, orgID, serviceID string, points ...models.CostPoint) error {
	existing, err := r.CostHistory(ctx, orgID, serviceID)
	if err != nil {
		return err
	}
	existing = append(existing, points...)
	return r.store.SetJSON(ctx, store.CostHistoryKey(orgID, serviceID), existing)
}

func (r *ServiceRepository) DeleteCostHistory(ctx context.Context, orgID, serviceID string) error {
	return r.store.Delete(ctx, store.CostHistoryKey(orgID, serviceID))
}
