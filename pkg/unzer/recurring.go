package unzer

import "context"

// Recurring enables recurring payments on payment types.
type Recurring struct {
	path string
	r    Requester
}

// NewRecurring binds the recurring endpoints to r.
func NewRecurring(r Requester) *Recurring {
	return &Recurring{path: "/types", r: r}
}

// Get returns the recurring state of a payment type.
func (rc *Recurring) Get(ctx context.Context, methodID string) (*Response, error) {
	return rc.r.Get(ctx, rc.path+"/"+methodID+"/recurring", nil)
}

// SetByUUID enables recurring for the payment type with the given uuid.
func (rc *Recurring) SetByUUID(ctx context.Context, uuid string) (*Response, error) {
	return rc.r.Post(ctx, rc.path+"/recurring", map[string]any{"uuid": uuid}, nil, true)
}

// SetByMethodID enables recurring for a payment type id.
func (rc *Recurring) SetByMethodID(ctx context.Context, methodID string, payload any) (*Response, error) {
	return rc.r.Post(ctx, rc.path+"/"+methodID+"/recurring", payload, nil, true)
}
