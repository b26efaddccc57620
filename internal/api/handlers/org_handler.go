package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"burnstop/internal/engine/reminders"
	"burnstop/internal/pkg/errors"
	"burnstop/internal/platform/models"
	"burnstop/internal/platform/repositories"
)

type OrgHandler struct {
	orgRepo         *repositories.OrganizationRepository
	userRepo        *repositories.UserRepository
	serviceRepo     *repositories.ServiceRepository
	integrationRepo *repositories.IntegrationRepository
	reminderIndex   *reminders.Index
}

func NewOrgHandler(
	orgRepo *repositories.OrganizationRepository,
	userRepo *repositories.UserRepository,
	serviceRepo *repositories.ServiceRepository,
	integrationRepo *repositories.IntegrationRepository,
	reminderIndex *reminders.Index,
) *OrgHandler {
	return &OrgHandler{
		orgRepo:         orgRepo,
		userRepo:        userRepo,
		serviceRepo:     serviceRepo,
		integrationRepo: integrationRepo,
		reminderIndex:   reminderIndex,
	}
}

type CreateOrgRequest struct {
	Name   string   `json:"name"`
	Budget *float64 `json:"budget,omitempty"`
}

func (h *OrgHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	var req CreateOrgRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.Name == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Organization name is required", nil)
		return
	}

	org := &models.Organization{
		ID:         uuid.NewString(),
		Name:       req.Name,
		Budget:     req.Budget,
		OwnerID:    claims.UserID,
		Members:    []string{claims.UserID},
		Moderators: []string{},
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	if err := h.orgRepo.Create(r.Context(), org); err != nil {
		errors.WriteFromError(w, err)
		return
	}
	if err := h.userRepo.AddOrganization(r.Context(), claims.UserID, org.ID); err != nil {
		errors.WriteFromError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, org)
}

// List returns the organizations in the caller's membership set.
func (h *OrgHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	user, err := h.userRepo.GetByID(r.Context(), claims.UserID)
	if err != nil {
		errors.WriteFromError(w, err)
		return
	}
	if user == nil {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "User not found", nil)
		return
	}

	orgs := make([]*models.Organization, 0, len(user.Organizations))
	for _, orgID := range user.Organizations {
		org, err := h.orgRepo.GetByID(r.Context(), orgID)
		if err != nil {
			errors.WriteFromError(w, err)
			return
		}
		if org != nil {
			orgs = append(orgs, org)
		}
	}

	writeJSON(w, http.StatusOK, orgs)
}

func (h *OrgHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, orgFrom(r).Org)
}

type UpdateBudgetRequest struct {
	Budget float64 `json:"budget"`
}

func (h *OrgHandler) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	org := orgFrom(r).Org

	var req UpdateBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.Budget < 0 {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Budget must be non-negative", nil)
		return
	}

	org.Budget = &req.Budget
	if err := h.orgRepo.Save(r.Context(), org); err != nil {
		errors.WriteFromError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Budget updated successfully", "budget": req.Budget})
}

// Delete removes the organization and cascades: services, cost histories,
// the reminder index, integrations, and every member's membership list.
// Deletes span multiple keys without a transaction; a crash mid-cascade
// leaves orphans behind.
func (h *OrgHandler) Delete(w http.ResponseWriter, r *http.Request) {
	org := orgFrom(r).Org
	ctx := r.Context()

	for _, memberID := range org.Members {
		if err := h.userRepo.RemoveOrganization(ctx, memberID, org.ID); err != nil {
			log.Error().Err(err).Str("user_id", memberID).Str("org_id", org.ID).Msg("cascade: failed to detach member")
		}
	}

	serviceIDs, err := h.serviceRepo.IDsByOrg(ctx, org.ID)
	if err != nil {
		errors.WriteFromError(w, err)
		return
	}
	for _, serviceID := range serviceIDs {
		if err := h.serviceRepo.DeleteCostHistory(ctx, org.ID, serviceID); err != nil {
			log.Error().Err(err).Str("service_id", serviceID).Msg("cascade: failed to delete cost history")
		}
		if err := h.serviceRepo.Delete(ctx, serviceID); err != nil {
			log.Error().Err(err).Str("service_id", serviceID).Msg("cascade: failed to delete service")
		}
	}
	if err := h.serviceRepo.DeleteOrgIndex(ctx, org.ID); err != nil {
		log.Error().Err(err).Str("org_id", org.ID).Msg("cascade: failed to delete service index")
	}

	if err := h.reminderIndex.Drop(ctx, org.ID); err != nil {
		log.Error().Err(err).Str("org_id", org.ID).Msg("cascade: failed to drop reminder index")
	}
	if err := h.integrationRepo.DeleteAllForOrg(ctx, org.ID); err != nil {
		log.Error().Err(err).Str("org_id", org.ID).Msg("cascade: failed to delete integrations")
	}

	if err := h.orgRepo.Delete(ctx, org.ID); err != nil {
		errors.WriteFromError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Organization deleted successfully"})
}

type MemberInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	IsOwner bool   `json:"is_owner"`
}

func (h *OrgHandler) Members(w http.ResponseWriter, r *http.Request) {
	org := orgFrom(r).Org

	members := make([]MemberInfo, 0, len(org.Members))
	for _, memberID := range org.Members {
		user, err := h.userRepo.GetByID(r.Context(), memberID)
		if err != nil {
			errors.WriteFromError(w, err)
			return
		}
		if user != nil {
			members = append(members, MemberInfo{ID: memberID, Email: user.Email, IsOwner: memberID == org.OwnerID})
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"members": members})
}

type AddUserRequest struct {
	UserEmail string `json:"user_email"`
}

func (h *OrgHandler) AddUser(w http.ResponseWriter, r *http.Request) {
	org := orgFrom(r).Org

	var req AddUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	user, err := h.userRepo.GetByEmail(r.Context(), req.UserEmail)
	if err != nil {
		errors.WriteFromError(w, err)
		return
	}
	if user == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "User not found", nil)
		return
	}

	if org.IsMember(user.ID) {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeConflict, "User is already a member", nil)
		return
	}

	org.Members = append(org.Members, user.ID)
	if err := h.orgRepo.Save(r.Context(), org); err != nil {
		errors.WriteFromError(w, err)
		return
	}
	if err := h.userRepo.AddOrganization(r.Context(), user.ID, org.ID); err != nil {
		errors.WriteFromError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "User added successfully"})
}

func (h *OrgHandler) RemoveUser(w http.ResponseWriter, r *http.Request) {
	org := orgFrom(r).Org
	userID := paramFrom(r, "user_id")

	if userID == org.OwnerID {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Cannot remove organization owner", nil)
		return
	}

	org.Members = removeID(org.Members, userID)
	// Losing membership also revokes moderator status
	org.Moderators = removeID(org.Moderators, userID)
	if err := h.orgRepo.Save(r.Context(), org); err != nil {
		errors.WriteFromError(w, err)
		return
	}
	if err := h.userRepo.RemoveOrganization(r.Context(), userID, org.ID); err != nil {
		errors.WriteFromError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "User removed successfully"})
}

type ModeratorInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (h *OrgHandler) Moderators(w http.ResponseWriter, r *http.Request) {
	org := orgFrom(r).Org

	moderators := make([]ModeratorInfo, 0, len(org.Moderators))
	for _, moderatorID := range org.Moderators {
		user, err := h.userRepo.GetByID(r.Context(), moderatorID)
		if err != nil {
			errors.WriteFromError(w, err)
			return
		}
		if user != nil {
			moderators = append(moderators, ModeratorInfo{ID: moderatorID, Email: user.Email})
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"moderators": moderators})
}

func (h *OrgHandler) AddModerator(w http.ResponseWriter, r *http.Request) {
	org := orgFrom(r).Org

	var req AddUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	user, err := h.userRepo.GetByEmail(r.Context(), req.UserEmail)
	if err != nil {
		errors.WriteFromError(w, err)
		return
	}
	if user == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "User not found", nil)
		return
	}

	switch org.RoleOf(user.ID) {
	case models.RoleNone:
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "User must be a member before becoming a moderator", nil)
		return
	case models.RoleModerator:
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeConflict, "User is already a moderator", nil)
		return
	case models.RoleOwner:
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Owner already has all permissions", nil)
		return
	}

	org.Moderators = append(org.Moderators, user.ID)
	if err := h.orgRepo.Save(r.Context(), org); err != nil {
		errors.WriteFromError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "User added as moderator successfully"})
}

func (h *OrgHandler) RemoveModerator(w http.ResponseWriter, r *http.Request) {
	org := orgFrom(r).Org
	userID := paramFrom(r, "user_id")

	if org.RoleOf(userID) != models.RoleModerator {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "User is not a moderator", nil)
		return
	}

	org.Moderators = removeID(org.Moderators, userID)
	if err := h.orgRepo.Save(r.Context(), org); err != nil {
		errors.WriteFromError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Moderator removed successfully"})
}

func removeID(ids []string, target string) []string {
	kept := ids[:0]
	for _, id := range ids {
		if id != target {
			kept = append(kept, id)
		}
	}
	return kept
}
