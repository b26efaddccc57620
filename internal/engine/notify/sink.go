package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "burnstop/internal/pkg/errors"
	"burnstop/internal/platform/models"
)

// Sink is a notification channel behind a uniform send contract. Sends are
// single-attempt and stateless; a failed send is the caller's problem to
// count, not to retry.
type Sink interface {
	Type() models.IntegrationType
	Send(ctx context.Context, message, subject string) error
}

// SinkFor builds the sink implementation for an integration record.
func SinkFor(integration *models.Integration, client *http.Client) (Sink, error) {
	cfg := integration.Config
	switch integration.Type {
	case models.IntegrationSlack:
		return &slackSink{webhookURL: cfg.WebhookURL, channel: cfg.Channel, username: cfg.Username, client: client}, nil
	case models.IntegrationGoogleWorkspace:
		return &googleChatSink{webhookURL: cfg.WebhookURL, spaceName: cfg.SpaceName, client: client}, nil
	case models.IntegrationDiscord:
		return &discordSink{webhookURL: cfg.WebhookURL, username: cfg.Username, client: client}, nil
	case models.IntegrationTeams:
		return &teamsSink{webhookURL: cfg.WebhookURL, client: client}, nil
	case models.IntegrationEmail:
		return newEmailSink(cfg), nil
	default:
		return nil, fmt.Errorf("%w: unknown integration type %q", apperrors.ErrValidation, integration.Type)
	}
}

func postJSON(ctx context.Context, client *http.Client, url string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: HTTP %d", apperrors.ErrUpstream, resp.StatusCode)
	}
	return nil
}
