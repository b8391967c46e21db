package unzer

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
)

// WebhookEvent is one registered webhook.
type WebhookEvent struct {
	ID    string `json:"id"`
	Event string `json:"event"`
	URL   string `json:"url"`
}

// Notification is the body Unzer posts to a registered webhook URL.
// RetrieveURL points at the resource the event is about.
type Notification struct {
	Event       string `json:"event"`
	PublicKey   string `json:"publicKey"`
	RetrieveURL string `json:"retrieveUrl"`
	PaymentID   string `json:"paymentId,omitempty"`
}

// Webhooks manages webhook registrations.
// https://docs.unzer.com/reference/webhook-supported-events/
type Webhooks struct {
	path string
	r    Requester
}

// NewWebhooks binds the webhook endpoints to r.
func NewWebhooks(r Requester) *Webhooks {
	return &Webhooks{path: "/webhooks", r: r}
}

func (w *Webhooks) eventPath(eventID string) string {
	if eventID == "" {
		return w.path
	}
	return w.path + "/" + eventID
}

// Get returns one webhook, or all of them when eventID is empty.
func (w *Webhooks) Get(ctx context.Context, eventID string) (*Response, error) {
	return w.r.Get(ctx, w.eventPath(eventID), nil)
}

// Delete removes one webhook, or all of them when eventID is empty.
func (w *Webhooks) Delete(ctx context.Context, eventID string) (*Response, error) {
	return w.r.Delete(ctx, w.eventPath(eventID), nil)
}

// Create registers a webhook, e.g. {"url": ..., "event": "payment.completed"}.
func (w *Webhooks) Create(ctx context.Context, webhook any) (*Response, error) {
	return w.r.Post(ctx, w.path, webhook, nil, true)
}

// Update changes a registered webhook.
func (w *Webhooks) Update(ctx context.Context, eventID string, webhook any) (*Response, error) {
	return w.r.Put(ctx, w.path+"/"+eventID, webhook, nil, true)
}

// List returns every registered webhook.
func (w *Webhooks) List(ctx context.Context) ([]WebhookEvent, error) {
	resp, err := w.Get(ctx, "")
	if err != nil {
		return nil, err
	}
	var list struct {
		Events *[]WebhookEvent `json:"events"`
	}
	if err := resp.Decode(&list); err != nil {
		return nil, err
	}
	if list.Events == nil {
		return nil, &ParseError{StatusCode: resp.StatusCode, Body: resp.Body, Err: errors.New("response has no events list")}
	}
	return *list.Events, nil
}

// IsRegistered returns the first webhook registered for url, also matching
// event when it is non-empty. It returns nil when nothing matches.
func (w *Webhooks) IsRegistered(ctx context.Context, url, event string) (*WebhookEvent, error) {
	events, err := w.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range events {
		e := events[i]
		if e.URL != url {
			continue
		}
		if event != "" && e.Event != event {
			continue
		}
		return &e, nil
	}
	return nil, nil
}

// Endpoint returns the API prefix retrieve URLs are expected to start with.
func (w *Webhooks) Endpoint() string {
	return w.r.Endpoint()
}

// ResolveRetrieveURL fetches the resource a notification refers to. target
// is either the retrieve URL itself or something carrying it: a
// Notification, *Notification, a decoded map with a "retrieveUrl" string or
// a value with a RetrieveURL() method.
func (w *Webhooks) ResolveRetrieveURL(ctx context.Context, target any) (*Response, error) {
	raw, err := retrieveURLOf(target)
	if err != nil {
		return nil, err
	}
	prefix := w.r.Endpoint()
	if !strings.Contains(raw, prefix) {
		prefix = DefaultBaseURL + "/" + APIVersion
	}
	return w.r.Get(ctx, strings.Replace(raw, prefix, "", 1), nil)
}

func retrieveURLOf(target any) (string, error) {
	switch v := target.(type) {
	case string:
		return v, nil
	case Notification:
		return v.RetrieveURL, nil
	case *Notification:
		if v == nil {
			return "", invalidArgument("nil notification")
		}
		return v.RetrieveURL, nil
	case map[string]any:
		raw, ok := v["retrieveUrl"]
		if !ok {
			return "", invalidArgument("object is missing the retrieveUrl property")
		}
		s, ok := raw.(string)
		if !ok {
			return "", invalidArgument("retrieveUrl of type %T", raw)
		}
		return s, nil
	case interface{ RetrieveURL() string }:
		return v.RetrieveURL(), nil
	default:
		return "", invalidArgument("retrieve target of type %T is neither a URL nor an object with retrieveUrl", target)
	}
}
