package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"burnstop/internal/engine/notify"
	"burnstop/internal/pkg/errors"
	"burnstop/internal/platform/models"
	"burnstop/internal/platform/repositories"
)

const testAlertMessage = "🔥 Test alert from BurnStop! Your integration is working correctly."
const testAlertSubject = "🔥 BurnStop Test Alert"

type IntegrationHandler struct {
	integrationRepo *repositories.IntegrationRepository
	fanout          *notify.Fanout
}

func NewIntegrationHandler(integrationRepo *repositories.IntegrationRepository, fanout *notify.Fanout) *IntegrationHandler {
	return &IntegrationHandler{integrationRepo: integrationRepo, fanout: fanout}
}

type IntegrationRequest struct {
	Type    string                   `json:"type"`
	Config  models.IntegrationConfig `json:"config"`
	Enabled *bool                    `json:"enabled,omitempty"`
}

func (h *IntegrationHandler) List(w http.ResponseWriter, r *http.Request) {
	org := orgFrom(r).Org

	integrations, err := h.integrationRepo.ListByOrg(r.Context(), org.ID)
	if err != nil {
		errors.WriteFromError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"integrations": integrations})
}

func (h *IntegrationHandler) Create(w http.ResponseWriter, r *http.Request) {
	org := orgFrom(r).Org

	var req IntegrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	typ := models.IntegrationType(req.Type)
	if !typ.Valid() {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Unknown integration type", map[string]string{"type": req.Type})
		return
	}

	existing, err := h.integrationRepo.Get(r.Context(), org.ID, typ)
	if err != nil {
		errors.WriteFromError(w, err)
		return
	}
	if existing != nil {
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "Integration of this type already exists", nil)
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	now := time.Now().UTC().Format(time.RFC3339)
	integration := &models.Integration{
		ID:             uuid.NewString(),
		OrganizationID: org.ID,
		Type:           typ,
		Config:         req.Config,
		Enabled:        enabled,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.integrationRepo.Save(r.Context(), integration); err != nil {
		errors.WriteFromError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, integration)
}

func (h *IntegrationHandler) Get(w http.ResponseWriter, r *http.Request) {
	integration, ok := h.loadIntegration(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, integration)
}

func (h *IntegrationHandler) Update(w http.ResponseWriter, r *http.Request) {
	integration, ok := h.loadIntegration(w, r)
	if !ok {
		return
	}

	var req IntegrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	integration.Config = req.Config
	if req.Enabled != nil {
		integration.Enabled = *req.Enabled
	}
	integration.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	if err := h.integrationRepo.Save(r.Context(), integration); err != nil {
		errors.WriteFromError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, integration)
}

func (h *IntegrationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	org := orgFrom(r).Org

	integration, ok := h.loadIntegration(w, r)
	if !ok {
		return
	}

	if err := h.integrationRepo.Delete(r.Context(), org.ID, integration.Type); err != nil {
		errors.WriteFromError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Integration deleted successfully"})
}

// Test fires the canned test alert through a single integration and reports
// the delivery result synchronously, unlike event fan-out.
func (h *IntegrationHandler) Test(w http.ResponseWriter, r *http.Request) {
	integration, ok := h.loadIntegration(w, r)
	if !ok {
		return
	}
	if !integration.Enabled {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Integration is disabled", nil)
		return
	}

	if err := h.fanout.SendDirect(r.Context(), integration, testAlertMessage, testAlertSubject); err != nil {
		errors.WriteError(w, http.StatusBadGateway, errors.ErrCodeUpstreamFailed, "Test alert delivery failed", map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Test alert sent successfully", "type": integration.Type})
}

type SendAlertRequest struct {
	Message string `json:"message"`
	Subject string `json:"subject,omitempty"`
}

type DeliveryResult struct {
	Type    models.IntegrationType `json:"type"`
	Success bool                   `json:"success"`
	Error   string                 `json:"error,omitempty"`
}

// SendAlert delivers a caller-supplied message to every enabled integration
// in the organization, reporting per-sink outcomes.
func (h *IntegrationHandler) SendAlert(w http.ResponseWriter, r *http.Request) {
	var req SendAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.Message == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Message is required", nil)
		return
	}
	if req.Subject == "" {
		req.Subject = "🔥 BurnStop Alert"
	}

	h.deliverToEnabled(w, r, req.Message, req.Subject)
}

// TestAll fires the canned test alert at every enabled integration.
func (h *IntegrationHandler) TestAll(w http.ResponseWriter, r *http.Request) {
	h.deliverToEnabled(w, r, testAlertMessage, testAlertSubject)
}

func (h *IntegrationHandler) deliverToEnabled(w http.ResponseWriter, r *http.Request, message, subject string) {
	org := orgFrom(r).Org

	enabled, err := h.integrationRepo.ListEnabledByOrg(r.Context(), org.ID)
	if err != nil {
		errors.WriteFromError(w, err)
		return
	}

	results := make([]DeliveryResult, 0, len(enabled))
	succeeded := 0
	for _, integration := range enabled {
		result := DeliveryResult{Type: integration.Type, Success: true}
		if err := h.fanout.SendDirect(r.Context(), integration, message, subject); err != nil {
			result.Success = false
			result.Error = err.Error()
		} else {
			succeeded++
		}
		results = append(results, result)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results":   results,
		"succeeded": succeeded,
		"total":     len(enabled),
	})
}

// testConfigurations are the canned demo sink settings used to exercise the
// notification path without real credentials.
func testConfigurations() map[models.IntegrationType]models.IntegrationConfig {
	return map[models.IntegrationType]models.IntegrationConfig{
		models.IntegrationSlack: {
			WebhookURL: "https://hooks.slack.com/services/TEST/TEST/TEST",
			Channel:    "#burnstop-alerts",
			Username:   "BurnStop",
		},
		models.IntegrationGoogleWorkspace: {
			WebhookURL: "https://chat.googleapis.com/v1/spaces/TEST/messages?key=TEST",
			SpaceName:  "BurnStop Alerts",
		},
		models.IntegrationEmail: {
			SMTPServer:  "smtp.gmail.com",
			SMTPPort:    587,
			Email:       "alerts@example.com",
			AppPassword: "test-app-password",
			ToEmail:     "team@example.com",
			FromName:    "BurnStop Alerts",
		},
		models.IntegrationDiscord: {
			WebhookURL: "https://discord.com/api/webhooks/TEST/TEST",
			Username:   "BurnStop",
		},
		models.IntegrationTeams: {
			WebhookURL: "https://outlook.office.com/webhook/TEST",
		},
	}
}

// TestConfigurations returns the canned settings without touching the store.
func (h *IntegrationHandler) TestConfigurations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"configurations": testConfigurations()})
}

// SetupTestIntegrations seeds one disabled demo integration per type that
// does not already exist, so the dashboard has something to show.
func (h *IntegrationHandler) SetupTestIntegrations(w http.ResponseWriter, r *http.Request) {
	org := orgFrom(r).Org
	configs := testConfigurations()

	now := time.Now().UTC().Format(time.RFC3339)
	created := make([]models.IntegrationType, 0, len(models.AllIntegrationTypes))
	skipped := make([]models.IntegrationType, 0)
	for _, typ := range models.AllIntegrationTypes {
		existing, err := h.integrationRepo.Get(r.Context(), org.ID, typ)
		if err != nil {
			errors.WriteFromError(w, err)
			return
		}
		if existing != nil {
			skipped = append(skipped, typ)
			continue
		}

		integration := &models.Integration{
			ID:             uuid.NewString(),
			OrganizationID: org.ID,
			Type:           typ,
			Config:         configs[typ],
			Enabled:        false,
			IsTest:         true,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := h.integrationRepo.Save(r.Context(), integration); err != nil {
			errors.WriteFromError(w, err)
			return
		}
		created = append(created, typ)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Test integrations ready",
		"created": created,
		"skipped": skipped,
	})
}

func (h *IntegrationHandler) loadIntegration(w http.ResponseWriter, r *http.Request) (*models.Integration, bool) {
	org := orgFrom(r).Org
	typ := models.IntegrationType(paramFrom(r, "type"))
	if !typ.Valid() {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Unknown integration type", map[string]string{"type": string(typ)})
		return nil, false
	}

	integration, err := h.integrationRepo.Get(r.Context(), org.ID, typ)
	if err != nil {
		errors.WriteFromError(w, err)
		return nil, false
	}
	if integration == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Integration not found", nil)
		return nil, false
	}
	return integration, true
}
