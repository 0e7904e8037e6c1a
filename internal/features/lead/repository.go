package lead

import (
	"context"

	"nextgen-crm/internal/store"
)

type LeadRepository interface {
	FindByID(ctx context.Context, id string) (*Lead, error)
	ListAll(ctx context.Context) ([]Lead, error)
	Delete(ctx context.Context, id string) error
	Watch(h store.SnapshotHandler) store.Subscription
}

type LeadRepositoryImpl struct {
	Store store.Store
}

func NewLeadRepository(s store.Store) LeadRepository {
	return &LeadRepositoryImpl{Store: s}
}

func (r *LeadRepositoryImpl) FindByID(ctx context.Context, id string) (*Lead, error) {
	doc, err := r.Store.GetByID(ctx, Collection, id)
	if err != nil || doc == nil {
		return nil, err
	}

	var l Lead
	if err := store.Decode(*doc, &l); err != nil {
		return nil, err
	}
	l.ID = doc.ID
	return &l, nil
}

func (r *LeadRepositoryImpl) ListAll(ctx context.Context) ([]Lead, error) {
	docs, err := r.Store.Get(ctx, store.Query{Collection: Collection})
	if err != nil {
		return nil, err
	}
	return DecodeAll(docs), nil
}

func (r *LeadRepositoryImpl) Delete(ctx context.Context, id string) error {
	return r.Store.Delete(ctx, Collection, id)
}

func (r *LeadRepositoryImpl) Watch(h store.SnapshotHandler) store.Subscription {
	return r.Store.Subscribe(store.Query{Collection: Collection}, h)
}

// DecodeAll converts a snapshot into typed leads.
func DecodeAll(docs []store.Document) []Lead {
	out := make([]Lead, 0, len(docs))
	for _, doc := range docs {
		var l Lead
		if err := store.Decode(doc, &l); err != nil {
			continue
		}
		l.ID = doc.ID
		out = append(out, l)
	}
	return out
}
