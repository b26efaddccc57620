package notify

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"burnstop/internal/platform/models"
	"burnstop/internal/platform/repositories"
)

// Report summarizes one fan-out: how many sink dispatches succeeded out of
// how many were attempted.
type Report struct {
	Succeeded int `json:"succeeded"`
	Total     int `json:"total"`
}

// Fanout resolves the enabled sinks for a triggering user and delivers a
// rendered event message to each of them, best effort. Dispatch failures are
// logged and counted, never propagated: the triggering write has already
// completed by the time fan-out runs.
type Fanout struct {
	users        *repositories.UserRepository
	integrations *repositories.IntegrationRepository
	client       *http.Client
	timeout      time.Duration

	// sinkFor is swapped out in tests.
	sinkFor func(*models.Integration, *http.Client) (Sink, error)
}

func NewFanout(users *repositories.UserRepository, integrations *repositories.IntegrationRepository, sinkTimeout time.Duration) *Fanout {
	if sinkTimeout <= 0 {
		sinkTimeout = 10 * time.Second
	}
	return &Fanout{
		users:        users,
		integrations: integrations,
		client:       &http.Client{Timeout: sinkTimeout},
		timeout:      sinkTimeout,
		sinkFor:      SinkFor,
	}
}

// Notify fans the event out to every enabled integration configured in any
// organization the acting user belongs to. The scope is deliberately the
// user's whole membership set, not just the event's organization; this
// mirrors the behavior the product shipped with and is tracked as a
// stakeholder question, not silently narrowed.
func (f *Fanout) Notify(ctx context.Context, userID string, event Event) Report {
	integrations := f.resolve(ctx, userID)
	return f.Dispatch(ctx, integrations, event)
}

func (f *Fanout) resolve(ctx context.Context, userID string) []*models.Integration {
	user, err := f.users.GetByID(ctx, userID)
	if err != nil || user == nil {
		if err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("fanout: failed to load acting user")
		}
		return nil
	}

	var all []*models.Integration
	for _, orgID := range user.Organizations {
		enabled, err := f.integrations.ListEnabledByOrg(ctx, orgID)
		if err != nil {
			log.Error().Err(err).Str("org_id", orgID).Msg("fanout: failed to list integrations")
			continue
		}
		all = append(all, enabled...)
	}
	return all
}

// SendDirect delivers a pre-rendered message to a single integration,
// honoring the per-sink timeout. The integration test endpoints use it to
// exercise one sink at a time and surface the error to the caller.
func (f *Fanout) SendDirect(ctx context.Context, integration *models.Integration, message, subject string) error {
	sink, err := f.sinkFor(integration, f.client)
	if err != nil {
		return err
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
	defer cancel()
	return sink.Send(sendCtx, message, subject)
}

// Dispatch renders the event once and sends it to each integration
// independently and concurrently. A slow or failing sink affects only its
// own slot in the report.
func (f *Fanout) Dispatch(ctx context.Context, integrations []*models.Integration, event Event) Report {
	message, subject := event.Render()

	report := Report{Total: len(integrations)}
	if report.Total == 0 {
		return report
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for _, integration := range integrations {
		wg.Add(1)
		go func(integration *models.Integration) {
			defer wg.Done()

			sink, err := f.sinkFor(integration, f.client)
			if err != nil {
				log.Error().Err(err).
					Str("org_id", integration.OrganizationID).
					Str("sink", string(integration.Type)).
					Msg("fanout: unusable integration config")
				return
			}

			sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
			defer cancel()

			if err := sink.Send(sendCtx, message, subject); err != nil {
				log.Warn().Err(err).
					Str("org_id", integration.OrganizationID).
					Str("sink", string(integration.Type)).
					Str("event", string(event.Kind)).
					Msg("fanout: sink dispatch failed")
				return
			}

			mu.Lock()
			succeeded++
			mu.Unlock()
		}(integration)
	}
	wg.Wait()

	report.Succeeded = succeeded
	log.Info().
		Str("event", string(event.Kind)).
		Int("succeeded", report.Succeeded).
		Int("total", report.Total).
		Msg("fanout: dispatch complete")
	return report
}
