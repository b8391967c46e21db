package unzer

import "context"

// Metadata works with metadata resources.
type Metadata struct {
	path string
	r    Requester
}

// NewMetadata binds the metadata endpoints to r.
func NewMetadata(r Requester) *Metadata {
	return &Metadata{path: "/metadata", r: r}
}

func (m *Metadata) Get(ctx context.Context, metadataID string) (*Response, error) {
	return m.r.Get(ctx, m.path+"/"+metadataID, nil)
}

func (m *Metadata) Create(ctx context.Context, metadata any) (*Response, error) {
	return m.r.Post(ctx, m.path, metadata, nil, true)
}

func (m *Metadata) Update(ctx context.Context, metadataID string, metadata any) (*Response, error) {
	return m.r.Put(ctx, m.path+"/"+metadataID, metadata, nil, true)
}
