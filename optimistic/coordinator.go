// Package optimistic applies mutations to a consumer's local state before
// they are persisted, and settles them when the write returns.
package optimistic

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/golang/glog"
	"github.com/oklog/ulid/v2"
)

var ErrUnknownEntity = errors.New("entity is not in local state")

type State int

const (
	Idle State = iota
	Applied
	Confirmed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Applied:
		return "applied"
	case Confirmed:
		return "confirmed"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Local is the consumer state a coordinator writes to.
type Local[T any] interface {
	Get(key string) (T, bool)
	Put(key string, v T)
}

// Poster runs settle callbacks on the consumer's dispatcher. It returns false
// when the consumer is gone, in which case the result is dropped.
type Poster interface {
	Dispatch(fn func()) bool
}

// Mutation is one optimistic change.
type Mutation struct {
	ID    string
	Key   string
	Label string
	State State
	Err   error
}

type Options struct {
	// Rollback restores the previous local value when a write fails, as long
	// as nothing has replaced the optimistic value in the meantime.
	Rollback bool
	// OnChange runs after the local state changed.
	OnChange func()
	// OnFailed runs when a write fails.
	OnFailed func(m Mutation)
}

const keepSettled = 256

// Coordinator must be used from the consumer's dispatcher goroutine; only
// the persist calls run elsewhere.
type Coordinator[T any] struct {
	local  Local[T]
	poster Poster
	equal  func(a, b T) bool
	opts   Options

	inflight sync.WaitGroup

	mu        sync.Mutex
	mutations map[string]*Mutation
	settled   []string
}

func NewCoordinator[T any](local Local[T], poster Poster, equal func(a, b T) bool, opts Options) *Coordinator[T] {
	return &Coordinator[T]{
		local:     local,
		poster:    poster,
		equal:     equal,
		opts:      opts,
		mutations: map[string]*Mutation{},
	}
}

// Apply replaces the local value under key with change(current), then runs
// persist in the background. It returns the mutation id.
//
// persist is not cancelled when ctx is: a write that was sent completes on
// its own, and its result is dropped if the consumer is gone.
func (c *Coordinator[T]) Apply(ctx context.Context, key, label string, change func(T) T, persist func(ctx context.Context) error) (string, error) {
	prev, ok := c.local.Get(key)
	if !ok {
		return "", fmt.Errorf("%s %s: %w", label, key, ErrUnknownEntity)
	}
	next := change(prev)

	m := &Mutation{ID: ulid.Make().String(), Key: key, Label: label, State: Applied}
	c.mu.Lock()
	c.mutations[m.ID] = m
	c.mu.Unlock()

	c.local.Put(key, next)
	c.changed()
	glog.V(2).Infof("[optimistic]%s %s applied %s\n", label, key, m.ID)

	persistCtx := context.WithoutCancel(ctx)
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		err := persist(persistCtx)
		c.poster.Dispatch(func() {
			c.settle(m, prev, next, err)
		})
	}()
	return m.ID, nil
}

func (c *Coordinator[T]) settle(m *Mutation, prev, next T, err error) {
	c.mu.Lock()
	if err == nil {
		m.State = Confirmed
	} else {
		m.State = Failed
		m.Err = err
	}
	result := *m
	c.settled = append(c.settled, m.ID)
	for len(c.settled) > keepSettled {
		delete(c.mutations, c.settled[0])
		c.settled = c.settled[1:]
	}
	c.mu.Unlock()

	if err == nil {
		glog.V(2).Infof("[optimistic]%s %s confirmed %s\n", m.Label, m.Key, m.ID)
		return
	}
	glog.Infof("[optimistic]%s %s failed: %s\n", m.Label, m.Key, err)

	if c.opts.Rollback {
		if current, ok := c.local.Get(m.Key); ok && c.equal(current, next) {
			c.local.Put(m.Key, prev)
			c.changed()
		}
	}
	if c.opts.OnFailed != nil {
		c.opts.OnFailed(result)
	}
}

func (c *Coordinator[T]) changed() {
	if c.opts.OnChange != nil {
		c.opts.OnChange()
	}
}

// State returns the state of a recent mutation, or Idle if it is unknown.
func (c *Coordinator[T]) State(id string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.mutations[id]; ok {
		return m.State
	}
	return Idle
}

// Wait blocks until every persist call has returned. Settling still happens
// on the dispatcher afterwards.
func (c *Coordinator[T]) Wait() {
	c.inflight.Wait()
}
