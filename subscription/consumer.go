package subscription

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"checklistapp/store"

	"github.com/golang/glog"
)

var errStarted = errors.New("consumer already started")

// Source is a typed collection subscription, as exposed by the repositories.
type Source[T any] func(ctx context.Context, onUpdate func([]T), onError func(error)) (store.Unsubscribe, error)

// Slot holds the latest value of one collection for one consumer. It is
// only touched on the consumer's dispatcher.
type Slot[T any] struct {
	items  []T
	loaded bool
}

func (s *Slot[T]) Get() []T {
	return s.items
}

// Loaded reports whether at least one snapshot has arrived.
func (s *Slot[T]) Loaded() bool {
	return s.loaded
}

// Set replaces the local value, as an optimistic update does.
func (s *Slot[T]) Set(items []T) {
	s.items = items
}

// Consumer is one screen: the collections it watches, its local copy of
// each, and a single teardown.
type Consumer struct {
	name       string
	dispatcher *Dispatcher
	onChange   func()
	onError    func(error)

	subs []SubscribeFunc

	mu          sync.Mutex
	started     bool
	unsubscribe store.Unsubscribe
	disposed    atomic.Bool
}

// NewConsumer creates a consumer whose callbacks run on d. onChange runs
// after any watched collection changes; onError receives listener errors.
func NewConsumer(name string, d *Dispatcher, onChange func(), onError func(error)) *Consumer {
	return &Consumer{
		name:       name,
		dispatcher: d,
		onChange:   onChange,
		onError:    onError,
	}
}

// Watch adds a collection to the consumer. Call it before Start.
func Watch[T any](c *Consumer, source Source[T]) *Slot[T] {
	slot := &Slot[T]{}
	c.subs = append(c.subs, func(ctx context.Context) (store.Unsubscribe, error) {
		return source(ctx,
			func(items []T) {
				c.Dispatch(func() {
					slot.items = items
					slot.loaded = true
					glog.V(2).Infof("[%s]snapshot %d\n", c.name, len(items))
					if c.onChange != nil {
						c.onChange()
					}
				})
			},
			func(err error) {
				c.Dispatch(func() {
					if c.onError != nil {
						c.onError(err)
					}
				})
			},
		)
	})
	return slot
}

// Start subscribes to every watched collection. On a partial failure the
// started subscriptions keep running and are stopped by Close.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return errStarted
	}
	c.started = true
	c.mu.Unlock()

	unsubscribe, err := Compose(ctx, c.subs...)

	c.mu.Lock()
	c.unsubscribe = unsubscribe
	closed := c.disposed.Load()
	c.mu.Unlock()
	if closed {
		unsubscribe()
	}
	if err != nil {
		glog.Infof("[%s]start: %s\n", c.name, err)
	}
	return err
}

// Dispatch runs fn on the dispatcher unless the consumer has been closed by
// the time fn would run.
func (c *Consumer) Dispatch(fn func()) bool {
	if c.disposed.Load() {
		return false
	}
	return c.dispatcher.Post(func() {
		if c.disposed.Load() {
			return
		}
		fn()
	})
}

// Close tears down every subscription exactly once.
func (c *Consumer) Close() {
	c.mu.Lock()
	if c.disposed.Load() {
		c.mu.Unlock()
		return
	}
	c.disposed.Store(true)
	unsubscribe := c.unsubscribe
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	glog.V(2).Infof("[%s]closed\n", c.name)
}

func (c *Consumer) Closed() bool {
	return c.disposed.Load()
}
