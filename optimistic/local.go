package optimistic

// SliceState is the consumer-side collection a SliceLocal edits, such as a
// subscription.Slot.
type SliceState[T any] interface {
	Get() []T
	Set(items []T)
}

// SliceLocal adapts a collection held as a slice to Local.
type SliceLocal[T any] struct {
	State SliceState[T]
	Key   func(T) string
}

func (l SliceLocal[T]) Get(key string) (T, bool) {
	for _, v := range l.State.Get() {
		if l.Key(v) == key {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Put writes a new slice so that snapshots already handed out are not
// modified.
func (l SliceLocal[T]) Put(key string, v T) {
	items := l.State.Get()
	next := make([]T, len(items))
	copy(next, items)
	for i := range next {
		if l.Key(next[i]) == key {
			next[i] = v
			l.State.Set(next)
			return
		}
	}
}
