package template

import (
	"context"

	"nextgen-crm/internal/store"
)

type TemplateRepository interface {
	FindByID(ctx context.Context, id string) (*Template, error)
	ListAll(ctx context.Context) ([]Template, error)
	Create(ctx context.Context, t *Template) (string, error)
	Update(ctx context.Context, id string, t *Template) error
	Delete(ctx context.Context, id string) error
	Watch(h store.SnapshotHandler) store.Subscription
}

type TemplateRepositoryImpl struct {
	Store store.Store
}

func NewTemplateRepository(s store.Store) TemplateRepository {
	return &TemplateRepositoryImpl{Store: s}
}

func (r *TemplateRepositoryImpl) FindByID(ctx context.Context, id string) (*Template, error) {
	doc, err := r.Store.GetByID(ctx, Collection, id)
	if err != nil || doc == nil {
		return nil, err
	}

	var t Template
	if err := store.Decode(*doc, &t); err != nil {
		return nil, err
	}
	t.ID = doc.ID
	return &t, nil
}

func (r *TemplateRepositoryImpl) ListAll(ctx context.Context) ([]Template, error) {
	docs, err := r.Store.Get(ctx, store.Query{
		Collection: Collection,
		OrderBy:    &store.OrderBy{Field: "updatedAt", Desc: true},
	})
	if err != nil {
		return nil, err
	}
	return DecodeAll(docs), nil
}

func (r *TemplateRepositoryImpl) Create(ctx context.Context, t *Template) (string, error) {
	data, err := store.Encode(t)
	if err != nil {
		return "", err
	}
	return r.Store.Add(ctx, Collection, data)
}

func (r *TemplateRepositoryImpl) Update(ctx context.Context, id string, t *Template) error {
	data, err := store.Encode(t)
	if err != nil {
		return err
	}
	return r.Store.Set(ctx, Collection, id, data)
}

func (r *TemplateRepositoryImpl) Delete(ctx context.Context, id string) error {
	return r.Store.Delete(ctx, Collection, id)
}

func (r *TemplateRepositoryImpl) Watch(h store.SnapshotHandler) store.Subscription {
	return r.Store.Subscribe(store.Query{
		Collection: Collection,
		OrderBy:    &store.OrderBy{Field: "updatedAt", Desc: true},
	}, h)
}

func DecodeAll(docs []store.Document) []Template {
	out := make([]Template, 0, len(docs))
	for _, doc := range docs {
		var t Template
		if err := store.Decode(doc, &t); err != nil {
			continue
		}
		t.ID = doc.ID
		out = append(out, t)
	}
	return out
}
