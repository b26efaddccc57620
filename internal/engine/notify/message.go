package notify

import (
	"fmt"
	"strings"

	"burnstop/internal/platform/models"
)

type EventKind string

const (
	EventServiceCreated EventKind = "service_created"
	EventServiceDeleted EventKind = "service_deleted"
	EventReminderDue    EventKind = "reminder_due"
)

// Event is a notification trigger: a service-level change inside an
// organization.
type Event struct {
	Kind    EventKind
	Service *models.Service
	OrgName string
}

// Render produces the fixed, event-specific message text and subject.
// Optional metadata lines appear only when the fields are set.
func (e Event) Render() (message, subject string) {
	svc := e.Service

	var b strings.Builder
	switch e.Kind {
	case EventServiceCreated:
		subject = "🚀 BurnStop: Service Added"
		fmt.Fprintf(&b, "New service tracked: %s (%s) in %s - $%.2f/month", svc.Name, svc.Platform, e.OrgName, svc.Cost)
	case EventServiceDeleted:
		subject = "🗑️ BurnStop: Service Removed"
		fmt.Fprintf(&b, "Service removed: %s (%s) in %s - was $%.2f/month", svc.Name, svc.Platform, e.OrgName, svc.Cost)
	case EventReminderDue:
		subject = "⏰ BurnStop: Renewal Due"
		fmt.Fprintf(&b, "Renewal due: %s (%s) in %s - $%.2f/month, due %s", svc.Name, svc.Platform, e.OrgName, svc.Cost, svc.ReminderDate)
	default:
		subject = "🔥 BurnStop Alert"
		fmt.Fprintf(&b, "%s: %s in %s", e.Kind, svc.Name, e.OrgName)
	}

	if svc.Region != "" {
		fmt.Fprintf(&b, "\nRegion: %s", svc.Region)
	}
	if svc.OwnerEmail != "" {
		fmt.Fprintf(&b, "\nOwner: %s", svc.OwnerEmail)
	}

	return b.String(), subject
}
