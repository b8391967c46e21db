package unzer

import "context"

// Paypage creates hosted payment pages.
type Paypage struct {
	path string
	r    Requester
}

// NewPaypage binds the paypage endpoints to r.
func NewPaypage(r Requester) *Paypage {
	return &Paypage{path: "/paypage", r: r}
}

// Get fetches a created paypage.
func (p *Paypage) Get(ctx context.Context, paypageID string) (*Response, error) {
	return p.r.Get(ctx, p.path+"/"+paypageID, nil)
}

// Authorize creates a paypage that authorizes the payment.
func (p *Paypage) Authorize(ctx context.Context, payload any) (*Response, error) {
	return p.r.Post(ctx, p.path+"/authorize", payload, nil, true)
}

// Charge creates a paypage that charges the payment.
func (p *Paypage) Charge(ctx context.Context, payload any) (*Response, error) {
	return p.r.Post(ctx, p.path+"/charge", payload, nil, true)
}
