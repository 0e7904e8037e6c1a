package store

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore is an in-process Store used by tests and local development.
// It shares the live-query hub with the Mongo implementation so
// subscription semantics are identical across drivers.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]map[string]interface{} // collection -> id -> doc
	hub  *hub
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		data: make(map[string]map[string]map[string]interface{}),
	}
	s.hub = newHub(s.Get)
	return s
}

func (s *MemoryStore) Get(ctx context.Context, q Query) ([]Document, error) {
	s.mu.RLock()
	col := s.data[q.Collection]
	docs := make([]Document, 0, len(col))
	for id, data := range col {
		if matchesAll(data, q.Filters) {
			docs = append(docs, Document{ID: id, Data: copyDoc(data)})
		}
	}
	s.mu.RUnlock()

	// Stable id order first so ordering ties are deterministic.
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	if q.OrderBy != nil {
		ob := *q.OrderBy
		sort.SliceStable(docs, func(i, j int) bool {
			c := compareValues(docs[i].Data[ob.Field], docs[j].Data[ob.Field])
			if ob.Desc {
				return c > 0
			}
			return c < 0
		})
	}
	return docs, nil
}

func (s *MemoryStore) GetByID(ctx context.Context, collection, id string) (*Document, error) {
	s.mu.RLock()
	data, ok := s.data[collection][id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return &Document{ID: id, Data: copyDoc(data)}, nil
}

func (s *MemoryStore) Add(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, data map[string]interface{}) error {
	s.mu.Lock()
	col, ok := s.data[collection]
	if !ok {
		col = make(map[string]map[string]interface{})
		s.data[collection] = col
	}
	col[id] = copyDoc(data)
	s.mu.Unlock()

	s.hub.notify(collection)
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	s.mu.Lock()
	doc, ok := s.data[collection][id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("document %s/%s not found", collection, id)
	}
	for k, v := range fields {
		doc[k] = v
	}
	s.mu.Unlock()

	s.hub.notify(collection)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	delete(s.data[collection], id)
	s.mu.Unlock()

	s.hub.notify(collection)
	return nil
}

func (s *MemoryStore) Batch() Batch {
	return &memoryBatch{store: s}
}

func (s *MemoryStore) Subscribe(q Query, h SnapshotHandler) Subscription {
	return s.hub.subscribe(q, h)
}

type batchOp struct {
	collection string
	id         string
	data       map[string]interface{} // nil means delete
}

type memoryBatch struct {
	store *MemoryStore
	ops   []batchOp
}

func (b *memoryBatch) Set(collection, id string, data map[string]interface{}) {
	b.ops = append(b.ops, batchOp{collection: collection, id: id, data: copyDoc(data)})
}

func (b *memoryBatch) Delete(collection, id string) {
	b.ops = append(b.ops, batchOp{collection: collection, id: id})
}

func (b *memoryBatch) Size() int { return len(b.ops) }

// Commit applies every queued op under one lock, then notifies each
// touched collection exactly once.
func (b *memoryBatch) Commit(ctx context.Context) error {
	touched := make(map[string]bool)

	b.store.mu.Lock()
	for _, op := range b.ops {
		col, ok := b.store.data[op.collection]
		if !ok {
			col = make(map[string]map[string]interface{})
			b.store.data[op.collection] = col
		}
		if op.data == nil {
			delete(col, op.id)
		} else {
			col[op.id] = op.data
		}
		touched[op.collection] = true
	}
	b.store.mu.Unlock()

	collections := make([]string, 0, len(touched))
	for c := range touched {
		collections = append(collections, c)
	}
	b.store.hub.notify(collections...)
	return nil
}

func matchesAll(doc map[string]interface{}, filters []Filter) bool {
	for _, f := range filters {
		if !matches(doc, f) {
			return false
		}
	}
	return true
}

func matches(doc map[string]interface{}, f Filter) bool {
	val, ok := doc[f.Field]
	switch f.Op {
	case "==":
		return ok && equalValues(val, f.Value)
	case "!=":
		return !ok || !equalValues(val, f.Value)
	case "in":
		if !ok {
			return false
		}
		list, isList := f.Value.([]interface{})
		if !isList {
			return false
		}
		for _, item := range list {
			if equalValues(val, item) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func equalValues(a, b interface{}) bool {
	if ta, ok := asTime(a); ok {
		if tb, tok := asTime(b); tok {
			return ta.Equal(tb)
		}
		return false
	}
	if fa, ok := asFloat(a); ok {
		if fb, fok := asFloat(b); fok {
			return fa == fb
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

// compareValues orders two field values; a missing value (nil) sorts as
// the earliest/lowest possible, so descending time order puts it last.
func compareValues(a, b interface{}) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	if ta, ok := asTime(a); ok {
		if tb, tok := asTime(b); tok {
			switch {
			case ta.Before(tb):
				return -1
			case ta.After(tb):
				return 1
			default:
				return 0
			}
		}
	}
	if fa, ok := asFloat(a); ok {
		if fb, fok := asFloat(b); fok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		}
	}
	sa, sb := fmt.Sprintf("%v", a), fmt.Sprintf("%v", b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	default:
		return 0
	}
}

func asTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case primitive.DateTime:
		return t.Time(), true
	default:
		return time.Time{}, false
	}
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func copyDoc(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
