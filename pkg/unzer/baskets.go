package unzer

import "context"

// Baskets works with basket resources.
type Baskets struct {
	path string
	r    Requester
}

// NewBaskets binds the basket endpoints to r.
func NewBaskets(r Requester) *Baskets {
	return &Baskets{path: "/baskets", r: r}
}

// Get fetches a basket.
// https://docs.unzer.com/reference/api/#get-/v1/baskets/{basketid}
func (b *Baskets) Get(ctx context.Context, basketID string) (*Response, error) {
	return b.r.Get(ctx, b.path+"/"+basketID, nil)
}

// Create posts a new basket.
func (b *Baskets) Create(ctx context.Context, basket any) (*Response, error) {
	return b.r.Post(ctx, b.path, basket, nil, true)
}

// Update replaces a basket.
func (b *Baskets) Update(ctx context.Context, basketID string, basket any) (*Response, error) {
	return b.r.Put(ctx, b.path+"/"+basketID, basket, nil, true)
}
