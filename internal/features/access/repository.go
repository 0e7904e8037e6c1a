package access

import (
	"context"

	"nextgen-crm/internal/store"
)

type AccessRepository interface {
	FindEmployeeByEmail(ctx context.Context, email string) (*Employee, error)
	FindGrantsByEmployee(ctx context.Context, employeeID string) ([]AccessGrant, error)
	FindRoleByName(ctx context.Context, name string) (*RoleDefinition, error)
	UpdateRolePermissions(ctx context.Context, id string, role *RoleDefinition) error

	// Live watches used for mid-session revocation handling.
	WatchGrants(employeeID string, h store.SnapshotHandler) store.Subscription
	WatchRole(name string, h store.SnapshotHandler) store.Subscription
}

type AccessRepositoryImpl struct {
	Store store.Store
}

func NewAccessRepository(s store.Store) AccessRepository {
	return &AccessRepositoryImpl{Store: s}
}

func (r *AccessRepositoryImpl) FindEmployeeByEmail(ctx context.Context, email string) (*Employee, error) {
	docs, err := r.Store.Get(ctx, store.Query{
		Collection: CollectionEmployees,
		Filters:    []store.Filter{store.Where("email", "==", email)},
	})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}

	var emp Employee
	if err := store.Decode(docs[0], &emp); err != nil {
		return nil, err
	}
	emp.ID = docs[0].ID
	return &emp, nil
}

func (r *AccessRepositoryImpl) FindGrantsByEmployee(ctx context.Context, employeeID string) ([]AccessGrant, error) {
	docs, err := r.Store.Get(ctx, store.Query{
		Collection: CollectionGrants,
		Filters:    []store.Filter{store.Where("employeeId", "==", employeeID)},
	})
	if err != nil {
		return nil, err
	}
	return DecodeGrants(docs)
}

func (r *AccessRepositoryImpl) FindRoleByName(ctx context.Context, name string) (*RoleDefinition, error) {
	docs, err := r.Store.Get(ctx, store.Query{
		Collection: CollectionRoles,
		Filters:    []store.Filter{store.Where("name", "==", name)},
	})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}

	var role RoleDefinition
	if err := store.Decode(docs[0], &role); err != nil {
		return nil, err
	}
	role.ID = docs[0].ID
	return &role, nil
}

func (r *AccessRepositoryImpl) UpdateRolePermissions(ctx context.Context, id string, role *RoleDefinition) error {
	data, err := store.Encode(role)
	if err != nil {
		return err
	}
	return r.Store.Set(ctx, CollectionRoles, id, data)
}

func (r *AccessRepositoryImpl) WatchGrants(employeeID string, h store.SnapshotHandler) store.Subscription {
	return r.Store.Subscribe(store.Query{
		Collection: CollectionGrants,
		Filters:    []store.Filter{store.Where("employeeId", "==", employeeID)},
	}, h)
}

func (r *AccessRepositoryImpl) WatchRole(name string, h store.SnapshotHandler) store.Subscription {
	return r.Store.Subscribe(store.Query{
		Collection: CollectionRoles,
		Filters:    []store.Filter{store.Where("name", "==", name)},
	}, h)
}

// DecodeGrants converts a grant snapshot into typed records, preserving
// delivery order.
func DecodeGrants(docs []store.Document) ([]AccessGrant, error) {
	grants := make([]AccessGrant, 0, len(docs))
	for _, doc := range docs {
		var g AccessGrant
		if err := store.Decode(doc, &g); err != nil {
			return nil, err
		}
		g.ID = doc.ID
		grants = append(grants, g)
	}
	return grants, nil
}
