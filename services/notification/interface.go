package notification

import (
	"context"

	"fixerhub/models"
)

// Notifier hands messages off for asynchronous delivery. Delivery failures never fail the
// calling operation.
type Notifier interface {
	Push(ctx context.Context, payload models.PushPayload)
	Email(ctx context.Context, payload models.EmailPayload)
}

// PushSender delivers a push notification synchronously.
type PushSender interface {
	Send(ctx context.Context, payload models.PushPayload) error
}

// EmailSender delivers an email synchronously.
type EmailSender interface {
	Send(ctx context.Context, payload models.EmailPayload) error
}

// Discard drops every message.
type Discard struct{}

func (Discard) Push(context.Context, models.PushPayload)   {}
func (Discard) Email(context.Context, models.EmailPayload) {}
