package notification

import (
	"context"
	"fmt"

	"kinecare/config"
	"kinecare/utils"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// EmailSender sends one email. Implementations can be swapped without
// changing the dispatcher.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) (messageID string, err error)
}

// EmailMessage is one outbound email.
type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	Body    string
	HTML    string
}

// SendGridSender delivers email through the SendGrid API.
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

// NewSendGridSender builds a sender from the app configuration. Returns
// nil when no API key is configured; the dispatcher then skips the email
// channel.
func NewSendGridSender() *SendGridSender {
	if config.AppConfig.SendGridAPIKey == "" {
		utils.GetLogger().Warn("no SendGrid API key configured, email channel disabled")
		return nil
	}
	return &SendGridSender{
		client:    sendgrid.NewSendClient(config.AppConfig.SendGridAPIKey),
		fromEmail: config.AppConfig.FromEmail,
		fromName:  config.AppConfig.FromName,
	}
}

func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) (string, error) {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.To)

	html := msg.HTML
	if html == "" {
		html = msg.Body
	}
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.Body, html)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return "", fmt.Errorf("sendgrid send failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		utils.GetLogger().Error("sendgrid returned error status",
			zap.Int("status", resp.StatusCode), zap.String("to", msg.To))
		return "", fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	if ids := resp.Headers["X-Message-Id"]; len(ids) > 0 {
		return ids[0], nil
	}
	return "", nil
}
