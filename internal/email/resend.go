// Package email delivers notification mail.
package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"

	"github.com/msomdec/task-tracker/internal/domain"
)

// ResendSender sends emails via the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

var _ domain.Mailer = (*ResendSender)(nil)

// NewResendSender creates a new ResendSender with the given API key and default from address.
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (s *ResendSender) Send(ctx context.Context, mail domain.Mail) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      mail.To,
		Subject: mail.Subject,
		Html:    mail.HTML,
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("resend send: %w", err)
	}

	slog.Info("email sent", "message_id", sent.Id, "to", mail.To, "subject", mail.Subject)
	return nil
}
