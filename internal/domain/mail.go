package domain

import "context"

// Mail is an outgoing HTML e-mail.
type Mail struct {
	To      []string
	Subject string
	HTML    string
}

// Mailer delivers e-mail through an external provider.
type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}
