// Package subscription fans the per-collection store subscriptions of one
// consumer into a single lifetime, and serializes their callbacks onto one
// goroutine.
package subscription

import (
	"sync"

	"github.com/golang/glog"
)

// Dispatcher runs posted functions one at a time, in post order, on its own
// goroutine. Everything a consumer does with its local state happens there,
// so the state needs no locks.
type Dispatcher struct {
	mu      sync.Mutex
	queue   []func()
	closed  bool
	wake    chan struct{}
	stopped chan struct{}
}

func NewDispatcher() *Dispatcher {
	d := &Dispatcher{
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
	go d.run()
	return d
}

// Post queues fn. It never blocks and reports false once the dispatcher is
// closed.
func (d *Dispatcher) Post(fn func()) bool {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return false
	}
	d.queue = append(d.queue, fn)
	d.mu.Unlock()
	select {
	case d.wake <- struct{}{}:
	default:
	}
	return true
}

// Sync waits until everything posted before it has run. It must not be
// called from a posted function.
func (d *Dispatcher) Sync() {
	done := make(chan struct{})
	if !d.Post(func() { close(done) }) {
		<-d.stopped
		return
	}
	select {
	case <-done:
	case <-d.stopped:
	}
}

// Close drains the queue and stops the goroutine.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.stopped
		return
	}
	d.closed = true
	d.mu.Unlock()
	select {
	case d.wake <- struct{}{}:
	default:
	}
	<-d.stopped
}

func (d *Dispatcher) run() {
	defer close(d.stopped)
	for {
		d.mu.Lock()
		batch := d.queue
		d.queue = nil
		closed := d.closed
		d.mu.Unlock()

		for _, fn := range batch {
			d.call(fn)
		}
		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		<-d.wake
	}
}

func (d *Dispatcher) call(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			glog.Errorf("[dispatch]callback panic: %v\n", r)
		}
	}()
	fn()
}
