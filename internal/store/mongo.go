package store

import (
	"context"
	"fmt"

	"nextgen-crm/internal/database"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore persists documents in MongoDB. Writes flow through this
// store so the hub can re-run live queries after every commit; this is
// the single write path, mirroring the hosted-backend SDK boundary.
type MongoStore struct {
	db  *mongo.Database
	hub *hub
}

func NewMongoStore(mongodb *database.MongodbDB) *MongoStore {
	s := &MongoStore{db: mongodb.DB}
	s.hub = newHub(s.Get)
	return s
}

func (s *MongoStore) Get(ctx context.Context, q Query) ([]Document, error) {
	filter, err := buildFilter(q.Filters)
	if err != nil {
		return nil, err
	}

	opts := options.Find()
	if q.OrderBy != nil {
		dir := 1
		if q.OrderBy.Desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: q.OrderBy.Field, Value: dir}})
	}

	cursor, err := s.db.Collection(q.Collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var raw []bson.M
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(raw))
	for _, m := range raw {
		id, _ := m["_id"].(string)
		delete(m, "_id")
		docs = append(docs, Document{ID: id, Data: m})
	}
	return docs, nil
}

func (s *MongoStore) GetByID(ctx context.Context, collection, id string) (*Document, error) {
	var m bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	delete(m, "_id")
	return &Document{ID: id, Data: m}, nil
}

func (s *MongoStore) Add(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	id := uuid.NewString()
	doc := bson.M(copyDoc(data))
	doc["_id"] = id

	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return "", err
	}
	s.hub.notify(collection)
	return id, nil
}

func (s *MongoStore) Set(ctx context.Context, collection, id string, data map[string]interface{}) error {
	doc := bson.M(copyDoc(data))
	doc["_id"] = id

	opts := options.Replace().SetUpsert(true)
	if _, err := s.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, doc, opts); err != nil {
		return err
	}
	s.hub.notify(collection)
	return nil
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("document %s/%s not found", collection, id)
	}
	s.hub.notify(collection)
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return err
	}
	s.hub.notify(collection)
	return nil
}

func (s *MongoStore) Batch() Batch {
	return &mongoBatch{store: s}
}

func (s *MongoStore) Subscribe(q Query, h SnapshotHandler) Subscription {
	return s.hub.subscribe(q, h)
}

type mongoBatch struct {
	store *MongoStore
	ops   []batchOp
}

func (b *mongoBatch) Set(collection, id string, data map[string]interface{}) {
	b.ops = append(b.ops, batchOp{collection: collection, id: id, data: copyDoc(data)})
}

func (b *mongoBatch) Delete(collection, id string) {
	b.ops = append(b.ops, batchOp{collection: collection, id: id})
}

func (b *mongoBatch) Size() int { return len(b.ops) }

// Commit submits all queued ops as one bulk write per collection.
// The batch aborts on the first failed collection; subscribers are
// notified only for collections that committed.
func (b *mongoBatch) Commit(ctx context.Context) error {
	models := make(map[string][]mongo.WriteModel)
	for _, op := range b.ops {
		if op.data == nil {
			models[op.collection] = append(models[op.collection],
				mongo.NewDeleteOneModel().SetFilter(bson.M{"_id": op.id}))
			continue
		}
		doc := bson.M(op.data)
		doc["_id"] = op.id
		models[op.collection] = append(models[op.collection],
			mongo.NewReplaceOneModel().SetFilter(bson.M{"_id": op.id}).SetReplacement(doc).SetUpsert(true))
	}

	var committed []string
	for collection, writes := range models {
		if _, err := b.store.db.Collection(collection).BulkWrite(ctx, writes); err != nil {
			b.store.hub.notify(committed...)
			return err
		}
		committed = append(committed, collection)
	}
	b.store.hub.notify(committed...)
	return nil
}

func buildFilter(filters []Filter) (bson.M, error) {
	out := bson.M{}
	for _, f := range filters {
		switch f.Op {
		case "==":
			out[f.Field] = f.Value
		case "!=":
			out[f.Field] = bson.M{"$ne": f.Value}
		case "in":
			out[f.Field] = bson.M{"$in": f.Value}
		default:
			return nil, fmt.Errorf("unsupported filter operator %q", f.Op)
		}
	}
	return out, nil
}
