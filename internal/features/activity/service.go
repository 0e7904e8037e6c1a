package activity

import (
	"context"
	"time"

	"nextgen-crm/internal/store"

	"go.uber.org/zap"
)

type ActivityService interface {
	Log(ctx context.Context, userID, action, details string) error
	Recent(ctx context.Context, limit int) ([]Activity, error)
	Watch(h store.SnapshotHandler) store.Subscription
}

type ActivityServiceImpl struct {
	Store  store.Store
	Logger *zap.Logger
}

func NewActivityService(s store.Store, log *zap.Logger) ActivityService {
	return &ActivityServiceImpl{Store: s, Logger: log}
}

// Log appends an activity entry. Failures are logged and swallowed so
// a broken activity feed never fails the action it documents.
func (s *ActivityServiceImpl) Log(ctx context.Context, userID, action, details string) error {
	entry := Activity{
		UserID:    userID,
		Action:    action,
		Details:   details,
		Timestamp: time.Now(),
	}
	data, err := store.Encode(&entry)
	if err == nil {
		_, err = s.Store.Add(ctx, Collection, data)
	}
	if err != nil {
		s.Logger.Warn("failed to write activity entry",
			zap.String("action", action), zap.Error(err))
	}
	return err
}

func (s *ActivityServiceImpl) Recent(ctx context.Context, limit int) ([]Activity, error) {
	docs, err := s.Store.Get(ctx, store.Query{
		Collection: Collection,
		OrderBy:    &store.OrderBy{Field: "timestamp", Desc: true},
	})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}

	out := make([]Activity, 0, len(docs))
	for _, doc := range docs {
		var a Activity
		if err := store.Decode(doc, &a); err != nil {
			continue
		}
		a.ID = doc.ID
		out = append(out, a)
	}
	return out, nil
}

func (s *ActivityServiceImpl) Watch(h store.SnapshotHandler) store.Subscription {
	return s.Store.Subscribe(store.Query{
		Collection: Collection,
		OrderBy:    &store.OrderBy{Field: "timestamp", Desc: true},
	}, h)
}
