package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
)

// Document is a single record as held by the backing document store.
// Data never contains the document id.
type Document struct {
	ID   string
	Data map[string]interface{}
}

// Filter is a single field predicate. Supported operators: "==", "!=", "in".
type Filter struct {
	Field string
	Op    string
	Value interface{}
}

// Where builds a filter in the style of a hosted document-store query.
func Where(field, op string, value interface{}) Filter {
	return Filter{Field: field, Op: op, Value: value}
}

// OrderBy sorts a result set on a single field.
type OrderBy struct {
	Field string
	Desc  bool
}

// Query identifies one live or one-shot query against a collection.
type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    *OrderBy
}

// SnapshotHandler receives the complete current result set for a query.
// Handlers must fully replace their slice of state from each snapshot;
// deltas are never incremental patches.
type SnapshotHandler func(docs []Document)

// Subscription is a live query held open until Unsubscribe.
type Subscription interface {
	Unsubscribe()
}

// Batch accumulates writes committed as one unit.
type Batch interface {
	Set(collection, id string, data map[string]interface{})
	Delete(collection, id string)
	Size() int
	Commit(ctx context.Context) error
}

// Store is the document store boundary. Every persisted entity is owned
// by the store; callers hold non-authoritative snapshots delivered by
// Subscribe and must never splice local writes into them.
type Store interface {
	Get(ctx context.Context, q Query) ([]Document, error)
	GetByID(ctx context.Context, collection, id string) (*Document, error)
	Add(ctx context.Context, collection string, data map[string]interface{}) (string, error)
	Set(ctx context.Context, collection, id string, data map[string]interface{}) error
	Update(ctx context.Context, collection, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, collection, id string) error
	Batch() Batch
	Subscribe(q Query, h SnapshotHandler) Subscription
}

// Decode unmarshals a document's data into a typed model via its bson tags.
func Decode(doc Document, out interface{}) error {
	raw, err := bson.Marshal(bson.M(doc.Data))
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, out)
}

// Encode marshals a typed model into document data via its bson tags.
func Encode(v interface{}) (map[string]interface{}, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	delete(m, "_id")
	return m, nil
}
