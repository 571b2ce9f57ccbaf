// Package mail sends transactional email to users.
package mail

import "context"

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender defines the interface for delivering email messages.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}
