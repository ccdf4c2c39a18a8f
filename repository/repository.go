// Package repository maps store documents to typed entities and exposes the
// per-collection operations used by the rest of the app.
package repository

import (
	"context"
	"fmt"

	"checklistapp/store"

	"github.com/golang/glog"
)

// Codec converts between one entity kind and its document form.
type Codec[T any] interface {
	Decode(doc store.Document) (T, error)
	Encode(v T) map[string]interface{}
	Key(v T) string
	WithKey(v T, id string) T
}

// Repository is the shared implementation behind the task, team and user
// repositories.
type Repository[T any] struct {
	store      store.Store
	collection string
	codec      Codec[T]
}

func New[T any](s store.Store, collection string, codec Codec[T]) *Repository[T] {
	return &Repository[T]{store: s, collection: collection, codec: codec}
}

func (r *Repository[T]) Collection() string {
	return r.collection
}

// decodeAll decodes a snapshot, skipping documents that fail to decode.
func (r *Repository[T]) decodeAll(docs []store.Document) []T {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		v, err := r.codec.Decode(doc)
		if err != nil {
			glog.Infof("[repo]skip %s/%s: %s\n", r.collection, doc.ID, err)
			continue
		}
		out = append(out, v)
	}
	return out
}

// Subscribe delivers the decoded collection on every snapshot.
func (r *Repository[T]) Subscribe(ctx context.Context, onUpdate func([]T), onError func(error)) (store.Unsubscribe, error) {
	return r.store.Subscribe(ctx, r.collection,
		func(docs []store.Document) {
			onUpdate(r.decodeAll(docs))
		},
		func(err error) {
			if onError != nil {
				onError(err)
			}
		},
	)
}

func (r *Repository[T]) GetAll(ctx context.Context) ([]T, error) {
	docs, err := r.store.GetAll(ctx, r.collection)
	if err != nil {
		return nil, err
	}
	return r.decodeAll(docs), nil
}

func (r *Repository[T]) GetByID(ctx context.Context, id string) (T, error) {
	var zero T
	all, err := r.GetAll(ctx)
	if err != nil {
		return zero, err
	}
	for _, v := range all {
		if r.codec.Key(v) == id {
			return v, nil
		}
	}
	return zero, fmt.Errorf("%s/%s: %w", r.collection, id, store.ErrNotFound)
}

// GetByIDs returns the entities whose key is in ids, in collection order.
// Unknown ids are ignored.
func (r *Repository[T]) GetByIDs(ctx context.Context, ids []string) ([]T, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return r.GetByPredicate(ctx, func(v T) bool {
		return want[r.codec.Key(v)]
	})
}

func (r *Repository[T]) GetByPredicate(ctx context.Context, pred func(T) bool) ([]T, error) {
	all, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(all))
	for _, v := range all {
		if pred(v) {
			out = append(out, v)
		}
	}
	return out, nil
}

// create writes v under a generated ID and returns v carrying that ID.
func (r *Repository[T]) create(ctx context.Context, v T) (T, error) {
	id, err := r.store.Create(ctx, r.collection, r.codec.Encode(v))
	if err != nil {
		var zero T
		return zero, err
	}
	return r.codec.WithKey(v, id), nil
}

func (r *Repository[T]) update(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.store.Update(ctx, r.collection, id, fields)
}

func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, r.collection, id)
}
