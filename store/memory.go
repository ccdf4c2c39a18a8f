package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"
	"github.com/oklog/ulid/v2"
)

// MemoryStore is an in-process Store. Writes are visible to listeners
// synchronously, before the writing call returns, except while a listener's
// callback is already running: that listener gets the snapshot when its
// callback returns. It backs tests and the
// "memory" backend, and can simulate a lost connection with SetOffline.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]*memoryCollection
	listeners   map[string][]*memoryListener
	offline     bool
	closed      bool
	seq         uint64
}

type memoryCollection struct {
	order []string
	docs  map[string]map[string]interface{}
}

type memoryListener struct {
	onSnapshot SnapshotFunc
	onError    ErrorFunc

	// delivery is serialized per listener and never goes backwards. A
	// snapshot that arrives while a callback runs is queued, and the
	// delivering goroutine hands over the latest one when the callback
	// returns, so writes from inside a callback do not block.
	deliverMu  sync.Mutex
	delivered  uint64
	delivering bool
	queued     []Document
	hasQueued  bool
	active     atomic.Bool
}

type pendingSnapshot struct {
	listener *memoryListener
	seq      uint64
	docs     []Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: map[string]*memoryCollection{},
		listeners:   map[string][]*memoryListener{},
	}
}

// SetOffline toggles simulated connectivity loss. Going back online pushes a
// fresh snapshot to every listener.
func (s *MemoryStore) SetOffline(offline bool) {
	s.mu.Lock()
	wasOffline := s.offline
	s.offline = offline
	var pending []pendingSnapshot
	if wasOffline && !offline {
		for collection := range s.listeners {
			pending = append(pending, s.snapshotsLocked(collection)...)
		}
	}
	s.mu.Unlock()
	deliver(pending)
}

// Close drops every listener; later calls fail with ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for _, listeners := range s.listeners {
		for _, l := range listeners {
			l.active.Store(false)
		}
	}
	s.listeners = map[string][]*memoryListener{}
	return nil
}

// ListenerCount reports the live listeners on a collection.
func (s *MemoryStore) ListenerCount(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners[collection])
}

func (s *MemoryStore) checkLocked() error {
	if s.closed {
		return ErrClosed
	}
	if s.offline {
		return ErrConnectivity
	}
	return nil
}

func (s *MemoryStore) collectionLocked(name string) *memoryCollection {
	c, ok := s.collections[name]
	if !ok {
		c = &memoryCollection{docs: map[string]map[string]interface{}{}}
		s.collections[name] = c
	}
	return c
}

func (s *MemoryStore) docsLocked(collection string) []Document {
	c := s.collectionLocked(collection)
	docs := make([]Document, 0, len(c.order))
	for _, id := range c.order {
		docs = append(docs, Document{ID: id, Data: cloneData(c.docs[id])})
	}
	return docs
}

func (s *MemoryStore) snapshotsLocked(collection string) []pendingSnapshot {
	listeners := s.listeners[collection]
	if len(listeners) == 0 {
		return nil
	}
	s.seq++
	pending := make([]pendingSnapshot, 0, len(listeners))
	for _, l := range listeners {
		pending = append(pending, pendingSnapshot{listener: l, seq: s.seq, docs: s.docsLocked(collection)})
	}
	return pending
}

func deliver(pending []pendingSnapshot) {
	for _, p := range pending {
		p.listener.offer(p.seq, p.docs)
	}
}

func (l *memoryListener) offer(seq uint64, docs []Document) {
	l.deliverMu.Lock()
	if !l.active.Load() || seq <= l.delivered {
		l.deliverMu.Unlock()
		return
	}
	l.delivered = seq
	if l.delivering {
		l.queued, l.hasQueued = docs, true
		l.deliverMu.Unlock()
		return
	}
	l.delivering = true
	for {
		l.deliverMu.Unlock()
		l.onSnapshot(docs)
		l.deliverMu.Lock()
		if !l.hasQueued || !l.active.Load() {
			break
		}
		docs = l.queued
		l.queued, l.hasQueued = nil, false
	}
	l.queued, l.hasQueued = nil, false
	l.delivering = false
	l.deliverMu.Unlock()
}

func (s *MemoryStore) GetAll(ctx context.Context, collection string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLocked(); err != nil {
		return nil, err
	}
	return s.docsLocked(collection), nil
}

func (s *MemoryStore) Subscribe(ctx context.Context, collection string, onSnapshot SnapshotFunc, onError ErrorFunc) (Unsubscribe, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	l := &memoryListener{onSnapshot: onSnapshot, onError: onError}
	l.active.Store(true)
	s.listeners[collection] = append(s.listeners[collection], l)
	offline := s.offline
	var initial []pendingSnapshot
	if !offline {
		s.seq++
		initial = []pendingSnapshot{{listener: l, seq: s.seq, docs: s.docsLocked(collection)}}
	}
	s.mu.Unlock()

	if offline {
		if onError != nil {
			onError(ErrConnectivity)
		}
	} else {
		deliver(initial)
	}

	stop := make(chan struct{})
	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			close(stop)
			s.mu.Lock()
			s.listeners[collection] = slices.DeleteFunc(s.listeners[collection], func(x *memoryListener) bool {
				return x == l
			})
			s.mu.Unlock()
			l.active.Store(false)
			glog.V(2).Infof("[memory]unsubscribe %s\n", collection)
		})
	}
	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				unsubscribe()
			case <-stop:
			}
		}()
	}
	return unsubscribe, nil
}

// errUnchanged ends a write that changed nothing, without notifying listeners.
var errUnchanged = errors.New("unchanged")

func (s *MemoryStore) write(ctx context.Context, collection string, fn func(c *memoryCollection) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	if err := s.checkLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := fn(s.collectionLocked(collection)); err != nil {
		s.mu.Unlock()
		if errors.Is(err, errUnchanged) {
			return nil
		}
		return err
	}
	pending := s.snapshotsLocked(collection)
	s.mu.Unlock()
	deliver(pending)
	return nil
}

func (s *MemoryStore) Create(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	id := ulid.Make().String()
	err := s.write(ctx, collection, func(c *memoryCollection) error {
		c.order = append(c.order, id)
		c.docs[id] = StripUnset(data, false)
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, data map[string]interface{}) error {
	return s.write(ctx, collection, func(c *memoryCollection) error {
		if _, exists := c.docs[id]; !exists {
			c.order = append(c.order, id)
		}
		c.docs[id] = StripUnset(data, false)
		return nil
	})
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	return s.write(ctx, collection, func(c *memoryCollection) error {
		doc, ok := c.docs[id]
		if !ok {
			return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
		}
		applyFields(doc, fields)
		return nil
	})
}

func applyFields(doc map[string]interface{}, fields map[string]interface{}) {
	for k, v := range StripUnset(fields, true) {
		if v == DeleteField {
			delete(doc, k)
			continue
		}
		doc[k] = v
	}
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	return s.write(ctx, collection, func(c *memoryCollection) error {
		if _, ok := c.docs[id]; !ok {
			return errUnchanged
		}
		delete(c.docs, id)
		c.order = slices.DeleteFunc(c.order, func(x string) bool { return x == id })
		return nil
	})
}

func (s *MemoryStore) ArrayAppend(ctx context.Context, collection, id, field string, value interface{}) error {
	elem, ok := Normalize(value)
	if !ok {
		return fmt.Errorf("append to %s: empty value", field)
	}
	return s.write(ctx, collection, func(c *memoryCollection) error {
		doc, ok := c.docs[id]
		if !ok {
			return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
		}
		arr, _ := doc[field].([]interface{})
		for _, existing := range arr {
			if equalNormalized(existing, elem) {
				return errUnchanged
			}
		}
		doc[field] = append(slices.Clone(arr), elem)
		return nil
	})
}

func (s *MemoryStore) ArrayRemove(ctx context.Context, collection, id, field string, value interface{}) error {
	elem, ok := Normalize(value)
	if !ok {
		return fmt.Errorf("remove from %s: empty value", field)
	}
	return s.write(ctx, collection, func(c *memoryCollection) error {
		doc, ok := c.docs[id]
		if !ok {
			return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
		}
		arr, _ := doc[field].([]interface{})
		kept := slices.DeleteFunc(slices.Clone(arr), func(x interface{}) bool {
			return equalNormalized(x, elem)
		})
		if len(kept) == len(arr) {
			return errUnchanged
		}
		doc[field] = kept
		return nil
	})
}

func (s *MemoryStore) Transform(ctx context.Context, collection, id string, fn TransformFunc) error {
	return s.write(ctx, collection, func(c *memoryCollection) error {
		doc, ok := c.docs[id]
		if !ok {
			return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
		}
		fields, err := fn(Document{ID: id, Data: cloneData(doc)})
		if err != nil {
			return err
		}
		applyFields(doc, fields)
		return nil
	})
}
