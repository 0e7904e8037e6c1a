package team

import (
	"context"

	"nextgen-crm/internal/store"
)

type TeamRepository interface {
	FindByID(ctx context.Context, id string) (*Team, error)
	ListAll(ctx context.Context) ([]Team, error)
	Create(ctx context.Context, t *Team) (string, error)
	Update(ctx context.Context, id string, t *Team) error
	Delete(ctx context.Context, id string) error
	Watch(h store.SnapshotHandler) store.Subscription
}

type TeamRepositoryImpl struct {
	Store store.Store
}

func NewTeamRepository(s store.Store) TeamRepository {
	return &TeamRepositoryImpl{Store: s}
}

func (r *TeamRepositoryImpl) FindByID(ctx context.Context, id string) (*Team, error) {
	doc, err := r.Store.GetByID(ctx, Collection, id)
	if err != nil || doc == nil {
		return nil, err
	}

	var t Team
	if err := store.Decode(*doc, &t); err != nil {
		return nil, err
	}
	t.ID = doc.ID
	return &t, nil
}

func (r *TeamRepositoryImpl) ListAll(ctx context.Context) ([]Team, error) {
	docs, err := r.Store.Get(ctx, store.Query{Collection: Collection})
	if err != nil {
		return nil, err
	}
	return DecodeAll(docs), nil
}

func (r *TeamRepositoryImpl) Create(ctx context.Context, t *Team) (string, error) {
	data, err := store.Encode(t)
	if err != nil {
		return "", err
	}
	return r.Store.Add(ctx, Collection, data)
}

func (r *TeamRepositoryImpl) Update(ctx context.Context, id string, t *Team) error {
	data, err := store.Encode(t)
	if err != nil {
		return err
	}
	return r.Store.Set(ctx, Collection, id, data)
}

func (r *TeamRepositoryImpl) Delete(ctx context.Context, id string) error {
	return r.Store.Delete(ctx, Collection, id)
}

func (r *TeamRepositoryImpl) Watch(h store.SnapshotHandler) store.Subscription {
	return r.Store.Subscribe(store.Query{Collection: Collection}, h)
}

func DecodeAll(docs []store.Document) []Team {
	out := make([]Team, 0, len(docs))
	for _, doc := range docs {
		var t Team
		if err := store.Decode(doc, &t); err != nil {
			continue
		}
		t.ID = doc.ID
		out = append(out, t)
	}
	return out
}
