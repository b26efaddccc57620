package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"burnstop/internal/engine/analytics"
	"burnstop/internal/engine/notify"
	"burnstop/internal/engine/reminders"
	"burnstop/internal/pkg/errors"
	"burnstop/internal/platform/models"
	"burnstop/internal/platform/repositories"
)

type ServiceHandler struct {
	serviceRepo   *repositories.ServiceRepository
	reminderIndex *reminders.Index
	fanout        *notify.Fanout
	analytics     *analytics.Service
}

func NewServiceHandler(
	serviceRepo *repositories.ServiceRepository,
	reminderIndex *reminders.Index,
	fanout *notify.Fanout,
	analyticsSvc *analytics.Service,
) *ServiceHandler {
	return &ServiceHandler{
		serviceRepo:   serviceRepo,
		reminderIndex: reminderIndex,
		fanout:        fanout,
		analytics:     analyticsSvc,
	}
}

// ServiceRequest doubles as the create and update body. Pointer fields
// distinguish "omitted" from a zero value: an omitted field is never applied
// on update.
type ServiceRequest struct {
	Name         string   `json:"name"`
	Platform     string   `json:"platform"`
	ServiceType  string   `json:"service_type"`
	Cost         *float64 `json:"cost,omitempty"`
	ReminderDate string   `json:"reminder_date"`

	IAMNumber      string `json:"iam_number,omitempty"`
	InstanceID     string `json:"instance_id,omitempty"`
	ProviderID     string `json:"provider_id,omitempty"`
	Region         string `json:"region,omitempty"`
	APIQuotaTokens *int   `json:"api_quota_tokens,omitempty"`
	APIUsageTokens *int   `json:"api_usage_tokens,omitempty"`
	Description    string `json:"description,omitempty"`
	Tags           string `json:"tags,omitempty"`
	OwnerEmail     string `json:"owner_email,omitempty"`
}

// parseReminderDate accepts a calendar date or a full timestamp and
// returns the renewal instant used for scheduling.
func parseReminderDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func (h *ServiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	org := orgFrom(r).Org

	var req ServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.Name == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Service name is required", nil)
		return
	}
	platform := models.CloudPlatform(req.Platform)
	if !platform.Valid() {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid platform", map[string]string{"platform": req.Platform})
		return
	}
	var cost float64
	if req.Cost != nil {
		cost = *req.Cost
	}
	if cost < 0 {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Cost must be non-negative", nil)
		return
	}
	due, err := parseReminderDate(req.ReminderDate)
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid reminder date", map[string]string{"reminder_date": req.ReminderDate})
		return
	}

	now := time.Now().UTC()
	svc := &models.Service{
		ID:             uuid.NewString(),
		OrgID:          org.ID,
		Name:           req.Name,
		Platform:       platform,
		ServiceType:    req.ServiceType,
		Cost:           cost,
		ReminderDate:   req.ReminderDate,
		Status:         models.StatusActive,
		CreatedAt:      now.Format(time.RFC3339),
		IAMNumber:      req.IAMNumber,
		InstanceID:     req.InstanceID,
		ProviderID:     req.ProviderID,
		Region:         req.Region,
		APIQuotaTokens: req.APIQuotaTokens,
		APIUsageTokens: req.APIUsageTokens,
		Description:    req.Description,
		Tags:           req.Tags,
		OwnerEmail:     req.OwnerEmail,
	}

	if err := h.serviceRepo.Create(r.Context(), svc); err != nil {
		errors.WriteFromError(w, err)
		return
	}
	if err := h.reminderIndex.Schedule(r.Context(), org.ID, svc.ID, due.Unix()); err != nil {
		errors.WriteFromError(w, err)
		return
	}
	seed := analytics.SeedHistory(svc.Cost, now)
	if err := h.serviceRepo.AppendCostHistory(r.Context(), org.ID, svc.ID, seed...); err != nil {
		log.Error().Err(err).Str("service_id", svc.ID).Msg("failed to seed cost history")
	}

	// Notify off the request path; delivery failures never fail the create.
	go h.fanout.Notify(context.WithoutCancel(r.Context()), claims.UserID, notify.Event{
		Kind:    notify.EventServiceCreated,
		Service: svc,
		OrgName: org.Name,
	})

	writeJSON(w, http.StatusCreated, svc)
}

func (h *ServiceHandler) List(w http.ResponseWriter, r *http.Request) {
	org := orgFrom(r).Org

	services, err := h.serviceRepo.ActiveByOrg(r.Context(), org.ID)
	if err != nil {
		errors.WriteFromError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, services)
}

func (h *ServiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.loadOrgService(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

func (h *ServiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	org := orgFrom(r).Org

	svc, ok := h.loadOrgService(w, r)
	if !ok {
		return
	}

	var req ServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	now := time.Now().UTC()

	if req.Name != "" {
		svc.Name = req.Name
	}
	if req.Platform != "" {
		platform := models.CloudPlatform(req.Platform)
		if !platform.Valid() {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid platform", map[string]string{"platform": req.Platform})
			return
		}
		svc.Platform = platform
	}
	if req.ServiceType != "" {
		svc.ServiceType = req.ServiceType
	}

	if req.Cost != nil && *req.Cost != svc.Cost {
		if *req.Cost < 0 {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Cost must be non-negative", nil)
			return
		}
		svc.Cost = *req.Cost
		point := models.CostPoint{Date: now.Format("2006-01-02"), Cost: *req.Cost}
		if err := h.serviceRepo.AppendCostHistory(r.Context(), org.ID, svc.ID, point); err != nil {
			log.Error().Err(err).Str("service_id", svc.ID).Msg("failed to append cost history")
		}
	}

	if req.ReminderDate != "" && req.ReminderDate != svc.ReminderDate {
		due, err := parseReminderDate(req.ReminderDate)
		if err != nil {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid reminder date", map[string]string{"reminder_date": req.ReminderDate})
			return
		}
		svc.ReminderDate = req.ReminderDate
		if err := h.reminderIndex.Schedule(r.Context(), org.ID, svc.ID, due.Unix()); err != nil {
			errors.WriteFromError(w, err)
			return
		}
	}

	if req.IAMNumber != "" {
		svc.IAMNumber = req.IAMNumber
	}
	if req.InstanceID != "" {
		svc.InstanceID = req.InstanceID
	}
	if req.ProviderID != "" {
		svc.ProviderID = req.ProviderID
	}
	if req.Region != "" {
		svc.Region = req.Region
	}
	if req.APIQuotaTokens != nil {
		svc.APIQuotaTokens = req.APIQuotaTokens
	}
	if req.APIUsageTokens != nil {
		svc.APIUsageTokens = req.APIUsageTokens
	}
	if req.Description != "" {
		svc.Description = req.Description
	}
	if req.Tags != "" {
		svc.Tags = req.Tags
	}
	if req.OwnerEmail != "" {
		svc.OwnerEmail = req.OwnerEmail
	}

	svc.UpdatedAt = now.Format(time.RFC3339)
	if err := h.serviceRepo.Save(r.Context(), svc); err != nil {
		errors.WriteFromError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, svc)
}

// Delete soft-deletes: the record stays around as pending_deletion so the
// deletion notification and any in-flight readers still see it, but it
// drops out of active listings and the reminder index.
func (h *ServiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	org := orgFrom(r).Org

	svc, ok := h.loadOrgService(w, r)
	if !ok {
		return
	}

	svc.Status = models.StatusPendingDeletion
	svc.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	if err := h.serviceRepo.Save(r.Context(), svc); err != nil {
		errors.WriteFromError(w, err)
		return
	}
	if err := h.reminderIndex.Unschedule(r.Context(), org.ID, svc.ID); err != nil {
		log.Error().Err(err).Str("service_id", svc.ID).Msg("failed to unschedule reminder")
	}

	go h.fanout.Notify(context.WithoutCancel(r.Context()), claims.UserID, notify.Event{
		Kind:    notify.EventServiceDeleted,
		Service: svc,
		OrgName: org.Name,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "Service marked for deletion"})
}

func (h *ServiceHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	org := orgFrom(r).Org

	summary, err := h.analytics.Summarize(r.Context(), org.ID)
	if err != nil {
		errors.WriteFromError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// loadOrgService fetches the :service_id service and confirms it belongs to
// the organization already resolved by the membership middleware.
func (h *ServiceHandler) loadOrgService(w http.ResponseWriter, r *http.Request) (*models.Service, bool) {
	org := orgFrom(r).Org
	serviceID := paramFrom(r, "service_id")

	svc, err := h.serviceRepo.GetByID(r.Context(), serviceID)
	if err != nil {
		errors.WriteFromError(w, err)
		return nil, false
	}
	if svc == nil || svc.OrgID != org.ID {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Service not found", nil)
		return nil, false
	}
	return svc, true
}
