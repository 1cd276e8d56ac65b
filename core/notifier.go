package core

import "context"

// Notifier delivers notifications to an external channel.
type Notifier interface {
	Name() string
	Send(ctx context.Context, n Notification) error
}

// Registrar registers the webhook URL with the messaging provider.
type Registrar interface {
	SetWebhook(ctx context.Context, url string) (bool, error)
}
