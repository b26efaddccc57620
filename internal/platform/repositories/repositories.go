package repositories

import (
	"context"

	"burnstop/internal/platform/models"
	"burnstop/internal/platform/store"
)

type UserRepository struct {
	store *store.Store
}

func NewUserRepository(s *store.Store) *UserRepository {
	return &UserRepository{store: s}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.store.SetJSON(ctx, store.UserKey(user.ID), user); err != nil {
		return err
	}
	// Email to user id mapping for login and member lookup
	return r.store.SetJSON(ctx, store.EmailKey(user.Email), user.ID)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{}
	found, err := r.store.GetJSON(ctx, store.UserKey(id), user)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var userID string
	found, err := r.store.GetJSON(ctx, store.EmailKey(email), &userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return r.GetByID(ctx, userID)
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.store.Exists(ctx, store.EmailKey(email))
}

func (r *UserRepository) Save(ctx context.Context, user *models.User) error {
	return r.store.SetJSON(ctx, store.UserKey(user.ID), user)
}

// AddOrganization appends orgID to the user's membership list.
func (r *UserRepository) AddOrganization(ctx context.Context, userID, orgID string) error {
	user, err := r.GetByID(ctx, userID)
	if err != nil || user == nil {
		return err
	}
	for _, id := range user.Organizations {
		if id == orgID {
			return nil
		}
	}
	user.Organizations = append(user.Organizations, orgID)
	return r.Save(ctx, user)
}

func (r *UserRepository) RemoveOrganization(ctx context.Context, userID, orgID string) error {
	user, err := r.GetByID(ctx, userID)
	if err != nil || user == nil {
		return err
	}
	kept := user.Organizations[:0]
	for _, id := range user.Organizations {
		if id != orgID {
			kept = append(kept, id)
		}
	}
	user.Organizations = kept
	return r.Save(ctx, user)
}

type OrganizationRepository struct {
	store *store.Store
}

func NewOrganizationRepository(s *store.Store) *OrganizationRepository {
	return &OrganizationRepository{store: s}
}

func (r *OrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	return r.store.SetJSON(ctx, store.OrgKey(org.ID), org)
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id string) (*models.Organization, error) {
	org := &models.Organization{}
	found, err := r.store.GetJSON(ctx, store.OrgKey(id), org)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	if org.Moderators == nil {
		org.Moderators = []string{}
	}
	return org, nil
}

func (r *OrganizationRepository) Save(ctx context.Context, org *models.Organization) error {
	return r.store.SetJSON(ctx, store.OrgKey(org.ID), org)
}

func (r *OrganizationRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, store.OrgKey(id))
}

// ListIDs enumerates every organization id in the store. Used by the
// reminder scan worker.
func (r *OrganizationRepository) ListIDs(ctx context.Context) ([]string, error) {
	keys, err := r.store.Keys(ctx, store.OrgPattern)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		ids = append(ids, key[len("org:"):])
	}
	return ids, nil
}
