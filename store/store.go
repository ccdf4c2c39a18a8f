// Package store is the adapter over the remote document store holding the
// users, teams and tasks collections.
//
// Documents travel as plain maps. Values are normalized to the shapes the
// Firestore client returns (int64, float64, string, bool, time.Time,
// []interface{}, map[string]interface{}), so decoders only ever see those.
package store

import (
	"context"
	"errors"
)

const (
	CollectionUsers       = "users"
	CollectionTeams       = "teams"
	CollectionTasks       = "tasks"
	CollectionCredentials = "credentials"
)

var (
	// ErrConnectivity is returned when no network path exists and no cached
	// copy can serve the request. Writes are never served from cache.
	ErrConnectivity = errors.New("no connection to the remote store")
	ErrNotFound     = errors.New("document not found")
	ErrClosed       = errors.New("store is closed")
)

type deleteField struct{}

// DeleteField, used as a value in Update, removes the field from the document.
var DeleteField interface{} = deleteField{}

// Document is one raw document of a collection.
type Document struct {
	ID   string
	Data map[string]interface{}
}

// Unsubscribe stops snapshot delivery. Calling it more than once is safe.
type Unsubscribe func()

// SnapshotFunc receives the full contents of a collection.
type SnapshotFunc func(docs []Document)

// ErrorFunc receives errors raised while listening.
type ErrorFunc func(err error)

// TransformFunc computes the fields to update from the document's current
// state inside a transaction.
type TransformFunc func(current Document) (map[string]interface{}, error)

type Store interface {
	// GetAll reads a collection once.
	GetAll(ctx context.Context, collection string) ([]Document, error)

	// Subscribe delivers the current contents of the collection once, then
	// again after every change, until the returned Unsubscribe is called or
	// ctx is done.
	Subscribe(ctx context.Context, collection string, onSnapshot SnapshotFunc, onError ErrorFunc) (Unsubscribe, error)

	// Create adds a document and returns its generated ID.
	Create(ctx context.Context, collection string, data map[string]interface{}) (string, error)

	// Set writes a document under a caller-chosen ID, replacing it if present.
	Set(ctx context.Context, collection, id string, data map[string]interface{}) error

	// Update replaces the given top-level fields.
	Update(ctx context.Context, collection, id string, fields map[string]interface{}) error

	Delete(ctx context.Context, collection, id string) error

	// ArrayAppend adds value to the array field unless a deep-equal element
	// is already present.
	ArrayAppend(ctx context.Context, collection, id, field string, value interface{}) error

	// ArrayRemove removes every element deep-equal to value.
	ArrayRemove(ctx context.Context, collection, id, field string, value interface{}) error

	// Transform runs a read-modify-write of one document atomically.
	Transform(ctx context.Context, collection, id string, fn TransformFunc) error
}
