package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"burnstop/internal/engine/reminders"
	"burnstop/internal/pkg/errors"
)

const upcomingWindow = 30 * 24 * time.Hour

type ReminderHandler struct {
	reminderSvc *reminders.Service
}

func NewReminderHandler(reminderSvc *reminders.Service) *ReminderHandler {
	return &ReminderHandler{reminderSvc: reminderSvc}
}

// Upcoming lists reminders due in the next thirty days. Already-overdue
// entries are excluded; the background worker handles those.
func (h *ReminderHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	org := orgFrom(r).Org

	now := time.Now().UTC()
	upcoming, err := h.reminderSvc.Upcoming(r.Context(), org.ID, now.Unix(), now.Add(upcomingWindow).Unix())
	if err != nil {
		errors.WriteFromError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"reminders": upcoming})
}

type AcknowledgeRequest struct {
	ActionTaken string `json:"action_taken"`
}

func (h *ReminderHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	org := orgFrom(r).Org
	reminderID := paramFrom(r, "reminder_id")

	var req AcknowledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.ActionTaken == "" {
		req.ActionTaken = "acknowledged"
	}

	if err := h.reminderSvc.Acknowledge(r.Context(), org.ID, reminderID, claims.UserID, req.ActionTaken); err != nil {
		errors.WriteFromError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Reminder acknowledged", "reminder_id": reminderID})
}
