package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cloud.google.com/go/firestore"
	"github.com/golang/glog"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore is the Store backed by a Cloud Firestore client.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

// mapError folds gRPC status codes into the store's error taxonomy.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%s: %w: %v", op, ErrConnectivity, err)
	case codes.NotFound:
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %v", op, ErrConnectivity, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func toDocument(snap *firestore.DocumentSnapshot) Document {
	return Document{ID: snap.Ref.ID, Data: snap.Data()}
}

// toUpdates converts a field map into Firestore updates. DeleteField becomes
// firestore.Delete and unset values are dropped.
func toUpdates(fields map[string]interface{}) []firestore.Update {
	clean := StripUnset(fields, true)
	updates := make([]firestore.Update, 0, len(clean))
	for path, value := range clean {
		if value == DeleteField {
			value = firestore.Delete
		}
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	return updates
}

func (s *FirestoreStore) GetAll(ctx context.Context, collection string) ([]Document, error) {
	iter := s.client.Collection(collection).Documents(ctx)
	defer iter.Stop()

	var docs []Document
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, mapError("get "+collection, err)
		}
		docs = append(docs, toDocument(snap))
	}
	return docs, nil
}

func (s *FirestoreStore) Subscribe(ctx context.Context, collection string, onSnapshot SnapshotFunc, onError ErrorFunc) (Unsubscribe, error) {
	listenCtx, cancel := context.WithCancel(ctx)
	it := s.client.Collection(collection).Snapshots(listenCtx)

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			cancel()
			glog.V(2).Infof("[firestore]unsubscribe %s\n", collection)
		})
	}

	go func() {
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				if listenCtx.Err() != nil || status.Code(err) == codes.Canceled || err == iterator.Done {
					return
				}
				glog.Infof("[firestore]listen %s error = %s\n", collection, err)
				if onError != nil {
					onError(mapError("listen "+collection, err))
				}
				return
			}
			snaps, err := snap.Documents.GetAll()
			if err != nil {
				if onError != nil {
					onError(mapError("listen "+collection, err))
				}
				continue
			}
			docs := make([]Document, 0, len(snaps))
			for _, ds := range snaps {
				docs = append(docs, toDocument(ds))
			}
			if listenCtx.Err() != nil {
				return
			}
			onSnapshot(docs)
		}
	}()

	return unsubscribe, nil
}

func (s *FirestoreStore) Create(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, StripUnset(data, false))
	if err != nil {
		return "", mapError("create "+collection, err)
	}
	return ref.ID, nil
}

func (s *FirestoreStore) Set(ctx context.Context, collection, id string, data map[string]interface{}) error {
	_, err := s.client.Collection(collection).Doc(id).Set(ctx, StripUnset(data, false))
	return mapError("set "+collection+"/"+id, err)
}

func (s *FirestoreStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	updates := toUpdates(fields)
	if len(updates) == 0 {
		return nil
	}
	_, err := s.client.Collection(collection).Doc(id).Update(ctx, updates)
	return mapError("update "+collection+"/"+id, err)
}

func (s *FirestoreStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.client.Collection(collection).Doc(id).Delete(ctx)
	return mapError("delete "+collection+"/"+id, err)
}

func (s *FirestoreStore) ArrayAppend(ctx context.Context, collection, id, field string, value interface{}) error {
	elem, ok := Normalize(value)
	if !ok {
		return fmt.Errorf("append to %s: empty value", field)
	}
	_, err := s.client.Collection(collection).Doc(id).Update(ctx, []firestore.Update{
		{Path: field, Value: firestore.ArrayUnion(elem)},
	})
	return mapError("append "+collection+"/"+id, err)
}

func (s *FirestoreStore) ArrayRemove(ctx context.Context, collection, id, field string, value interface{}) error {
	elem, ok := Normalize(value)
	if !ok {
		return fmt.Errorf("remove from %s: empty value", field)
	}
	_, err := s.client.Collection(collection).Doc(id).Update(ctx, []firestore.Update{
		{Path: field, Value: firestore.ArrayRemove(elem)},
	})
	return mapError("remove "+collection+"/"+id, err)
}

func (s *FirestoreStore) Transform(ctx context.Context, collection, id string, fn TransformFunc) error {
	ref := s.client.Collection(collection).Doc(id)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		if !snap.Exists() {
			return ErrNotFound
		}
		fields, err := fn(toDocument(snap))
		if err != nil {
			return err
		}
		updates := toUpdates(fields)
		if len(updates) == 0 {
			return nil
		}
		return tx.Update(ref, updates)
	})
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("transform %s/%s: %w", collection, id, ErrNotFound)
	}
	return mapError("transform "+collection+"/"+id, err)
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
