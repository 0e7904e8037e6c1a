package prospect

import (
	"context"

	"nextgen-crm/internal/store"
)

type ProspectRepository interface {
	FindByID(ctx context.Context, id string) (*Prospect, error)
	List(ctx context.Context, q store.Query) ([]Prospect, error)
	ListAll(ctx context.Context) ([]Prospect, error)
	Create(ctx context.Context, p *Prospect) (string, error)
	Update(ctx context.Context, id string, p *Prospect) error
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	Watch(q store.Query, h store.SnapshotHandler) store.Subscription
}

type ProspectRepositoryImpl struct {
	Store store.Store
}

func NewProspectRepository(s store.Store) ProspectRepository {
	return &ProspectRepositoryImpl{Store: s}
}

func (r *ProspectRepositoryImpl) FindByID(ctx context.Context, id string) (*Prospect, error) {
	doc, err := r.Store.GetByID(ctx, Collection, id)
	if err != nil || doc == nil {
		return nil, err
	}

	var p Prospect
	if err := store.Decode(*doc, &p); err != nil {
		return nil, err
	}
	p.ID = doc.ID
	return &p, nil
}

func (r *ProspectRepositoryImpl) List(ctx context.Context, q store.Query) ([]Prospect, error) {
	q.Collection = Collection
	docs, err := r.Store.Get(ctx, q)
	if err != nil {
		return nil, err
	}
	return DecodeAll(docs), nil
}

func (r *ProspectRepositoryImpl) ListAll(ctx context.Context) ([]Prospect, error) {
	return r.List(ctx, store.Query{OrderBy: byCreatedDesc})
}

func (r *ProspectRepositoryImpl) Create(ctx context.Context, p *Prospect) (string, error) {
	data, err := store.Encode(p)
	if err != nil {
		return "", err
	}
	return r.Store.Add(ctx, Collection, data)
}

func (r *ProspectRepositoryImpl) Update(ctx context.Context, id string, p *Prospect) error {
	data, err := store.Encode(p)
	if err != nil {
		return err
	}
	return r.Store.Set(ctx, Collection, id, data)
}

func (r *ProspectRepositoryImpl) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.Store.Update(ctx, Collection, id, fields)
}

func (r *ProspectRepositoryImpl) Delete(ctx context.Context, id string) error {
	return r.Store.Delete(ctx, Collection, id)
}

func (r *ProspectRepositoryImpl) Watch(q store.Query, h store.SnapshotHandler) store.Subscription {
	q.Collection = Collection
	return r.Store.Subscribe(q, h)
}
