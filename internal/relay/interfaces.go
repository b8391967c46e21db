package relay

import (
	"context"

	"github.com/samvad-hq/unzer-simple/pkg/publishers"
	"github.com/samvad-hq/unzer-simple/pkg/unzer"
)

// WebhookAPI is the slice of unzer.Webhooks the relay needs.
type WebhookAPI interface {
	Endpoint() string
	ResolveRetrieveURL(ctx context.Context, target any) (*unzer.Response, error)
	IsRegistered(ctx context.Context, url, event string) (*unzer.WebhookEvent, error)
	Create(ctx context.Context, webhook any) (*unzer.Response, error)
}

// EventPublisher publishes resolved notifications downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}
