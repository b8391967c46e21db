package unzer

import "context"

// Payments manages charges.
type Payments struct {
	path string
	r    Requester
}

// NewPayments binds the payment endpoints to r.
func NewPayments(r Requester) *Payments {
	return &Payments{path: "/payments", r: r}
}

// GetCharge returns detail information for a charge. anyID may be a charge,
// payment or order id.
func (p *Payments) GetCharge(ctx context.Context, anyID string) (*Response, error) {
	return p.r.Get(ctx, p.path+"/charges/"+anyID, nil)
}

// DirectCharge creates a payment and charges it in one call.
func (p *Payments) DirectCharge(ctx context.Context, charge any) (*Response, error) {
	return p.r.Post(ctx, p.path+"/charges", charge, nil, true)
}

// Charge charges an existing (authorized) payment.
func (p *Payments) Charge(ctx context.Context, paymentID string, charge any) (*Response, error) {
	return p.r.Post(ctx, p.path+"/"+paymentID+"/charges", charge, nil, true)
}
