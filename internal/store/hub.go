package store

import (
	"context"
	"sync"
)

// reader runs a one-shot query; both store implementations satisfy it
// with their Get method so the hub can re-run live queries after writes.
type reader func(ctx context.Context, q Query) ([]Document, error)

// hub tracks open live queries. After any committed write it re-runs
// every query registered on the touched collections and delivers the
// full result snapshot to each subscriber. Because snapshots are total
// replacements, intermediate snapshots may be coalesced: only the
// latest pending snapshot is guaranteed to reach the handler.
type hub struct {
	mu   sync.Mutex
	subs map[int64]*subscription
	next int64
	read reader
}

func newHub(read reader) *hub {
	return &hub{
		subs: make(map[int64]*subscription),
		read: read,
	}
}

type subscription struct {
	hub *hub
	id  int64
	q   Query
	h   SnapshotHandler

	mu      sync.Mutex
	pending []Document
	kick    chan struct{}
	done    chan struct{}
	once    sync.Once
}

func (h *hub) subscribe(q Query, handler SnapshotHandler) Subscription {
	h.mu.Lock()
	h.next++
	sub := &subscription{
		hub:  h,
		id:   h.next,
		q:    q,
		h:    handler,
		kick: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	h.subs[sub.id] = sub
	h.mu.Unlock()

	go sub.run()

	// Initial snapshot, mirroring hosted-store onSnapshot semantics.
	if docs, err := h.read(context.Background(), q); err == nil {
		sub.deliver(docs)
	}
	return sub
}

// notify re-runs every live query registered on the given collections.
func (h *hub) notify(collections ...string) {
	touched := make(map[string]bool, len(collections))
	for _, c := range collections {
		touched[c] = true
	}

	h.mu.Lock()
	var targets []*subscription
	for _, sub := range h.subs {
		if touched[sub.q.Collection] {
			targets = append(targets, sub)
		}
	}
	h.mu.Unlock()

	for _, sub := range targets {
		docs, err := h.read(context.Background(), sub.q)
		if err != nil {
			continue
		}
		sub.deliver(docs)
	}
}

func (s *subscription) deliver(docs []Document) {
	s.mu.Lock()
	s.pending = docs
	s.mu.Unlock()

	select {
	case s.kick <- struct{}{}:
	default:
	}
}

func (s *subscription) run() {
	for {
		select {
		case <-s.done:
			return
		case <-s.kick:
			s.mu.Lock()
			docs := s.pending
			s.mu.Unlock()
			s.h(docs)
		}
	}
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		close(s.done)
		s.hub.mu.Lock()
		delete(s.hub.subs, s.id)
		s.hub.mu.Unlock()
	})
}
