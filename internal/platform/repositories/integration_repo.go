package repositories

import (
	"context"

	"burnstop/internal/platform/models"
	"burnstop/internal/platform/store"
)

type IntegrationRepository struct {
	store *store.Store
}

func NewIntegrationRepository(s *store.Store) *IntegrationRepository {
	return &IntegrationRepository{store: s}
}

// Get returns the organization's integration of the given type, or nil.
// At most one integration exists per (org, type); the key encodes both.
func (r *IntegrationRepository) Get(ctx context.Context, orgID string, typ models.IntegrationType) (*models.Integration, error) {
	integration := &models.Integration{}
	found, err := r.store.GetJSON(ctx, store.IntegrationKey(orgID, string(typ)), integration)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return integration, nil
}

func (r *IntegrationRepository) Save(ctx context.Context, integration *models.Integration) error {
	key := store.IntegrationKey(integration.OrganizationID, string(integration.Type))
	return r.store.SetJSON(ctx, key, integration)
}

func (r *IntegrationRepository) Delete(ctx context.Context, orgID string, typ models.IntegrationType) error {
	return r.store.Delete(ctx, store.IntegrationKey(orgID, string(typ)))
}

func (r *IntegrationRepository) ListByOrg(ctx context.Context, orgID string) ([]*models.Integration, error) {
	integrations := make([]*models.Integration, 0, len(models.AllIntegrationTypes))
	for _, typ := range models.AllIntegrationTypes {
		integration, err := r.Get(ctx, orgID, typ)
		if err != nil {
			return nil, err
		}
		if integration != nil {
			integrations = append(integrations, integration)
		}
	}
	return integrations, nil
}

func (r *IntegrationRepository) ListEnabledByOrg(ctx context.Context, orgID string) ([]*models.Integration, error) {
	all, err := r.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	enabled := all[:0]
	for _, integration := range all {
		if integration.Enabled {
			enabled = append(enabled, integration)
		}
	}
	return enabled, nil
}

// DeleteAllForOrg removes every integration key of the organization, used by
// the org delete cascade.
func (r *IntegrationRepository) DeleteAllForOrg(ctx context.Context, orgID string) error {
	keys, err := r.store.Keys(ctx, store.IntegrationPattern(orgID))
	if err != nil {
		return err
	}
	return r.store.Delete(ctx, keys...)
}
