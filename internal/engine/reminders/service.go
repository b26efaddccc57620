package reminders

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "burnstop/internal/pkg/errors"
	"burnstop/internal/platform/models"
	"burnstop/internal/platform/repositories"
	"burnstop/internal/platform/store"
)

// Service materializes reminders from the index plus service records and
// handles acknowledgments. Reminders are derived, never stored.
type Service struct {
	index    *Index
	store    *store.Store
	services *repositories.ServiceRepository
}

func NewService(index *Index, s *store.Store, services *repositories.ServiceRepository) *Service {
	return &Service{index: index, store: s, services: services}
}

// ReminderID builds the composite reminder identifier. Service ids are UUIDs
// and can contain no underscores themselves, but ParseReminderID tolerates
// them anyway.
func ReminderID(serviceID string, dueTS int64) string {
	return fmt.Sprintf("reminder_%s_%d", serviceID, dueTS)
}

// ParseReminderID splits a composite reminder id back into service id and
// due timestamp.
func ParseReminderID(reminderID string) (serviceID string, dueTS int64, err error) {
	parts := strings.Split(reminderID, "_")
	if len(parts) < 3 || parts[0] != "reminder" {
		return "", 0, fmt.Errorf("%w: malformed reminder id", apperrors.ErrValidation)
	}
	dueTS, err = strconv.ParseInt(parts[len(parts)-1], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("%w: malformed reminder timestamp", apperrors.ErrValidation)
	}
	serviceID = strings.Join(parts[1:len(parts)-1], "_")
	return serviceID, dueTS, nil
}

// Upcoming returns the organization's reminders due in [from, to],
// ascending, joined with their service records. Entries whose service is
// missing or no longer active are skipped.
func (s *Service) Upcoming(ctx context.Context, orgID string, from, to int64) ([]*models.Reminder, error) {
	entries, err := s.index.DueWithin(ctx, orgID, from, to)
	if err != nil {
		return nil, err
	}

	result := make([]*models.Reminder, 0, len(entries))
	for _, entry := range entries {
		svc, err := s.services.GetByID(ctx, entry.ServiceID)
		if err != nil {
			return nil, err
		}
		if svc == nil || svc.Status != models.StatusActive {
			continue
		}
		result = append(result, &models.Reminder{
			ID:           ReminderID(entry.ServiceID, entry.DueTS),
			ServiceID:    entry.ServiceID,
			ServiceName:  svc.Name,
			Cost:         svc.Cost,
			ReminderDate: time.Unix(entry.DueTS, 0).UTC().Format(time.RFC3339),
			OrgID:        orgID,
		})
	}
	return result, nil
}

// Acknowledge records the acknowledgment and removes the index entry. The
// service record itself is left untouched.
func (s *Service) Acknowledge(ctx context.Context, orgID, reminderID, userID, actionTaken string) error {
	serviceID, _, err := ParseReminderID(reminderID)
	if err != nil {
		return err
	}

	ack := &models.Acknowledgment{
		ReminderID:     reminderID,
		ServiceID:      serviceID,
		UserID:         userID,
		ActionTaken:    actionTaken,
		AcknowledgedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.store.SetJSON(ctx, store.AckKey(reminderID), ack); err != nil {
		return err
	}

	return s.index.Unschedule(ctx, orgID, serviceID)
}
