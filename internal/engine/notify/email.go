package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	apperrors "burnstop/internal/pkg/errors"
	"burnstop/internal/platform/models"
)

type emailSink struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
	to       string
}

func newEmailSink(cfg models.IntegrationConfig) *emailSink {
	to := cfg.ToEmail
	if to == "" {
		to = cfg.Email
	}
	fromName := cfg.FromName
	if fromName == "" {
		fromName = "BurnStop Alerts"
	}
	return &emailSink{
		dialer:   gomail.NewDialer(cfg.SMTPServer, cfg.SMTPPort, cfg.Email, cfg.AppPassword),
		from:     cfg.Email,
		fromName: fromName,
		to:       to,
	}
}

func (s *emailSink) Type() models.IntegrationType { return models.IntegrationEmail }

// Send delivers the message over SMTP. gomail's DialAndSend takes no
// context, so ctx does not bound the dial or the send; cancellation only
// takes effect between deliveries.
func (s *emailSink) Send(ctx context.Context, message, subject string) error {
	if s.to == "" {
		return fmt.Errorf("%w: missing recipient address", apperrors.ErrValidation)
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetHeader("To", s.to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", emailBody(message))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("%w: smtp send: %v", apperrors.ErrUpstream, err)
	}
	return nil
}

func emailBody(message string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <div style="max-width: 600px; margin: 0 auto;">
    <div style="background-color: #ff6b6b; color: white; padding: 20px; text-align: center;">
      <h1>🔥 BurnStop Alert</h1>
      <p>Cost Management System</p>
    </div>
    <div style="padding: 30px;">
      <div style="background-color: #fff3cd; border-left: 4px solid #ffc107; padding: 15px;">
        <p>%s</p>
      </div>
    </div>
    <div style="background-color: #f4f4f4; padding: 15px; text-align: center; font-size: 12px; color: #666;">
      <p>BurnStop - Stop burning money on cloud services!</p>
      <p>This is an automated message from your cost monitoring system.</p>
    </div>
  </div>
</body>
</html>`, message)
}
