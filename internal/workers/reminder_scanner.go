package workers

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"burnstop/internal/engine/notify"
	"burnstop/internal/engine/reminders"
	"burnstop/internal/platform/models"
	"burnstop/internal/platform/repositories"
	"burnstop/internal/platform/store"
)

// notifiedMarkerTTL keeps the dedup marker alive well past the scan that set
// it, so restarts inside the lead window do not re-alert.
const notifiedMarkerTTL = 48 * time.Hour

// ReminderScanner walks every organization's reminder index on an interval
// and fans out a renewal alert for each entry falling due inside the lead
// window. A per-reminder marker key makes repeat scans idempotent.
type ReminderScanner struct {
	store    *store.Store
	orgs     *repositories.OrganizationRepository
	services *repositories.ServiceRepository
	index    *reminders.Index
	fanout   *notify.Fanout

	interval time.Duration
	lead     time.Duration
}

func NewReminderScanner(
	s *store.Store,
	orgs *repositories.OrganizationRepository,
	services *repositories.ServiceRepository,
	index *reminders.Index,
	fanout *notify.Fanout,
	interval, lead time.Duration,
) *ReminderScanner {
	if interval <= 0 {
		interval = time.Hour
	}
	if lead <= 0 {
		lead = 24 * time.Hour
	}
	return &ReminderScanner{
		store:    s,
		orgs:     orgs,
		services: services,
		index:    index,
		fanout:   fanout,
		interval: interval,
		lead:     lead,
	}
}

// Run scans immediately, then on every tick until the context is canceled.
func (s *ReminderScanner) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.ScanOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.ScanOnce(ctx)
		}
	}
}

func (s *ReminderScanner) ScanOnce(ctx context.Context) {
	now := time.Now().UTC()
	orgIDs, err := s.orgs.ListIDs(ctx)
	if err != nil {
		log.Error().Err(err).Msg("scanner: failed to list organizations")
		return
	}

	notified := 0
	for _, orgID := range orgIDs {
		notified += s.scanOrg(ctx, orgID, now)
	}
	log.Info().Int("orgs", len(orgIDs)).Int("notified", notified).Msg("scanner: scan complete")
}

func (s *ReminderScanner) scanOrg(ctx context.Context, orgID string, now time.Time) int {
	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil || org == nil {
		if err != nil {
			log.Error().Err(err).Str("org_id", orgID).Msg("scanner: failed to load organization")
		}
		return 0
	}

	entries, err := s.index.DueWithin(ctx, orgID, now.Unix(), now.Add(s.lead).Unix())
	if err != nil {
		log.Error().Err(err).Str("org_id", orgID).Msg("scanner: failed to read reminder index")
		return 0
	}

	notified := 0
	for _, entry := range entries {
		marker := store.ReminderNotifiedKey(orgID, entry.ServiceID, entry.DueTS)
		seen, err := s.store.Exists(ctx, marker)
		if err != nil {
			log.Error().Err(err).Str("org_id", orgID).Msg("scanner: marker check failed")
			continue
		}
		if seen {
			continue
		}

		svc, err := s.services.GetByID(ctx, entry.ServiceID)
		if err != nil {
			log.Error().Err(err).Str("service_id", entry.ServiceID).Msg("scanner: failed to load service")
			continue
		}
		if svc == nil || svc.Status != models.StatusActive {
			// Stale index entry; drop it so the next scan skips the lookup.
			if err := s.index.Unschedule(ctx, orgID, entry.ServiceID); err != nil {
				log.Error().Err(err).Str("service_id", entry.ServiceID).Msg("scanner: failed to prune stale entry")
			}
			continue
		}

		report := s.fanout.Notify(ctx, org.OwnerID, notify.Event{
			Kind:    notify.EventReminderDue,
			Service: svc,
			OrgName: org.Name,
		})
		log.Info().
			Str("org_id", orgID).
			Str("service_id", svc.ID).
			Int("succeeded", report.Succeeded).
			Int("total", report.Total).
			Msg("scanner: reminder alert dispatched")

		if err := s.store.SetJSONTTL(ctx, marker, map[string]string{"notified_at": now.Format(time.RFC3339)}, notifiedMarkerTTL); err != nil {
			log.Error().Err(err).Str("org_id", orgID).Msg("scanner: failed to set notified marker")
		}
		notified++
	}
	return notified
}
