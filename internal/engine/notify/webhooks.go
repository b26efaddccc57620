package notify

import (
	"context"
	"net/http"
	"time"

	"burnstop/internal/platform/models"
)

const defaultUsername = "BurnStop"

type slackSink struct {
	webhookURL string
	channel    string
	username   string
	client     *http.Client
}

func (s *slackSink) Type() models.IntegrationType { return models.IntegrationSlack }

func (s *slackSink) Send(ctx context.Context, message, subject string) error {
	username := s.username
	if username == "" {
		username = defaultUsername
	}

	payload := map[string]interface{}{
		"text":       message,
		"username":   username,
		"icon_emoji": ":fire:",
		"attachments": []map[string]interface{}{
			{
				"color":  "#ff6b6b",
				"title":  subject,
				"text":   message,
				"footer": "BurnStop Cost Monitor",
				"ts":     time.Now().Unix(),
			},
		},
	}
	if s.channel != "" {
		payload["channel"] = s.channel
	}

	return postJSON(ctx, s.client, s.webhookURL, payload)
}

type googleChatSink struct {
	webhookURL string
	spaceName  string
	client     *http.Client
}

func (s *googleChatSink) Type() models.IntegrationType { return models.IntegrationGoogleWorkspace }

func (s *googleChatSink) Send(ctx context.Context, message, subject string) error {
	subtitle := s.spaceName
	if subtitle == "" {
		subtitle = "Cost Management Alert"
	}

	payload := map[string]interface{}{
		"cards": []map[string]interface{}{
			{
				"header": map[string]interface{}{
					"title":    subject,
					"subtitle": subtitle,
				},
				"sections": []map[string]interface{}{
					{
						"widgets": []map[string]interface{}{
							{
								"textParagraph": map[string]interface{}{
									"text": "<b>Alert:</b> " + message,
								},
							},
						},
					},
				},
			},
		},
	}

	return postJSON(ctx, s.client, s.webhookURL, payload)
}

type discordSink struct {
	webhookURL string
	username   string
	client     *http.Client
}

func (s *discordSink) Type() models.IntegrationType { return models.IntegrationDiscord }

func (s *discordSink) Send(ctx context.Context, message, subject string) error {
	username := s.username
	if username == "" {
		username = defaultUsername
	}

	payload := map[string]interface{}{
		"content":  message,
		"username": username,
		"embeds": []map[string]interface{}{
			{
				"title":       subject,
				"description": message,
				"color":       16733525, // #ff6b6b
				"footer": map[string]interface{}{
					"text": "BurnStop Cost Monitor",
				},
			},
		},
	}

	return postJSON(ctx, s.client, s.webhookURL, payload)
}

type teamsSink struct {
	webhookURL string
	client     *http.Client
}

func (s *teamsSink) Type() models.IntegrationType { return models.IntegrationTeams }

func (s *teamsSink) Send(ctx context.Context, message, subject string) error {
	payload := map[string]interface{}{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"themeColor": "ff6b6b",
		"summary":    subject,
		"sections": []map[string]interface{}{
			{
				"activityTitle":    subject,
				"activitySubtitle": "Cost Management System",
				"facts": []map[string]string{
					{"name": "Alert:", "value": message},
					{"name": "System:", "value": "BurnStop Cost Monitor"},
				},
				"markdown": true,
			},
		},
	}

	return postJSON(ctx, s.client, s.webhookURL, payload)
}
