package mailer

import "context"

// Message is a single outbound email.
type Message struct {
	ToName    string
	ToAddress string
	Subject   string
	TextBody  string
	HTMLBody  string
}

// HasRecipient reports whether the message can be delivered at all.
func (m Message) HasRecipient() bool { return m.ToAddress != "" }

// Sender delivers messages to an outbound mail provider.
// Implementations return an error so the mail queue can retry.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
