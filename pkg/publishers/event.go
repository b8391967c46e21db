package publishers

import (
	"encoding/json"
	"time"
)

// Event is the payload published downstream: the webhook notification plus
// the resource its retrieveUrl resolved to.
type Event struct {
	EventType   string          `json:"event"`
	PaymentID   string          `json:"payment_id,omitempty"`
	RetrieveURL string          `json:"retrieve_url"`
	Resource    json.RawMessage `json:"resource,omitempty"`
	ReceivedAt  time.Time       `json:"received_at"`
}

// NewEvent builds an Event stamped with the current time.
func NewEvent(eventType, paymentID, retrieveURL string, resource []byte) Event {
	var raw json.RawMessage
	if len(resource) > 0 {
		raw = append(raw, resource...)
	}
	return Event{
		EventType:   eventType,
		PaymentID:   paymentID,
		RetrieveURL: retrieveURL,
		Resource:    raw,
		ReceivedAt:  time.Now().UTC(),
	}
}
