package mailer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendgridSender delivers mail through the SendGrid v3 API.
type SendgridSender struct {
	client     *sendgrid.Client
	from       *sgmail.Email
	subjPrefix string
}

// NewSendgridSender constructs a SendGrid-backed sender.
func NewSendgridSender(apiKey, fromName, fromAddress, subjPrefix string) *SendgridSender {
	return &SendgridSender{
		client:     sendgrid.NewSendClient(apiKey),
		from:       sgmail.NewEmail(fromName, fromAddress),
		subjPrefix: subjPrefix,
	}
}

// Send delivers a single message. Non-2xx provider responses are errors.
func (s *SendgridSender) Send(ctx context.Context, msg Message) error {
	if !msg.HasRecipient() {
		return fmt.Errorf("message has no recipient")
	}

	to := sgmail.NewEmail(msg.ToName, msg.ToAddress)
	html := msg.HTMLBody
	if html == "" {
		html = msg.TextBody
	}
	m := sgmail.NewSingleEmail(s.from, s.subjPrefix+msg.Subject, to, msg.TextBody, html)

	res, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid send: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}
