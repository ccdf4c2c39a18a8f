package subscription

import (
	"context"
	"errors"
	"sync"

	"checklistapp/store"
)

// SubscribeFunc starts one subscription.
type SubscribeFunc func(ctx context.Context) (store.Unsubscribe, error)

// Compose starts every subscription once and returns a single handle that
// stops all of them. The handle is safe to call more than once.
//
// A failing subscription does not stop the others: the returned handle
// covers the ones that started and the error joins every failure.
func Compose(ctx context.Context, subs ...SubscribeFunc) (store.Unsubscribe, error) {
	var (
		started []store.Unsubscribe
		errs    []error
	)
	for _, sub := range subs {
		unsubscribe, err := sub(ctx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if unsubscribe != nil {
			started = append(started, unsubscribe)
		}
	}
	var once sync.Once
	combined := func() {
		once.Do(func() {
			for _, unsubscribe := range started {
				unsubscribe()
			}
		})
	}
	return combined, errors.Join(errs...)
}
