package unzer

import "context"

// Customers works with customer resources. Identifiers may be the Unzer
// customer id or the merchant's external id.
type Customers struct {
	path string
	r    Requester
}

// NewCustomers binds the customer endpoints to r.
func NewCustomers(r Requester) *Customers {
	return &Customers{path: "/customers", r: r}
}

// Get fetches a customer.
func (c *Customers) Get(ctx context.Context, customerID string) (*Response, error) {
	return c.r.Get(ctx, c.path+"/"+customerID, nil)
}

// Create posts a new customer.
func (c *Customers) Create(ctx context.Context, customer any) (*Response, error) {
	return c.r.Post(ctx, c.path, customer, nil, true)
}

// Update replaces a customer.
func (c *Customers) Update(ctx context.Context, customerID string, customer any) (*Response, error) {
	return c.r.Put(ctx, c.path+"/"+customerID, customer, nil, true)
}

// Delete removes a customer.
func (c *Customers) Delete(ctx context.Context, customerID string) (*Response, error) {
	return c.r.Delete(ctx, c.path+"/"+customerID, nil)
}
