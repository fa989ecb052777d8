// Package notifications delivers messages from site visitors to the team.
package notifications

import "context"

// ContactMessage is one submission of the contact form.
type ContactMessage struct {
	Name      string
	Email     string
	Message   string
	RequestID string
}

type Notifier interface {
	SendContactMessage(ctx context.Context, msg ContactMessage) error
}
