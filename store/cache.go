package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/glog"
	_ "modernc.org/sqlite"
)

const cacheSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	collection TEXT PRIMARY KEY,
	taken_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id TEXT NOT NULL,
	position INTEGER NOT NULL,
	data TEXT NOT NULL,
	PRIMARY KEY (collection, id)
);

CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection, position);
`

// CachedStore keeps the last snapshot of every collection it has seen in a
// sqlite file and serves reads from it while the remote store is
// unreachable. Writes always go to the remote store.
type CachedStore struct {
	Store
	db *sql.DB
}

// OpenCache opens or creates the cache database at path in front of remote.
func OpenCache(path string, remote Store) (*CachedStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	if _, err := db.Exec(cacheSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}
	return &CachedStore{Store: remote, db: db}, nil
}

func (s *CachedStore) Close() error {
	return s.db.Close()
}

func (s *CachedStore) GetAll(ctx context.Context, collection string) ([]Document, error) {
	docs, err := s.Store.GetAll(ctx, collection)
	if err == nil {
		if serr := s.save(collection, docs); serr != nil {
			glog.Infof("[cache]save %s error = %s\n", collection, serr)
		}
		return docs, nil
	}
	if !errors.Is(err, ErrConnectivity) {
		return nil, err
	}
	cached, ok, cerr := s.load(collection)
	if cerr != nil {
		glog.Errorf("[cache]load %s error = %s\n", collection, cerr)
		return nil, err
	}
	if !ok {
		return nil, err
	}
	glog.V(2).Infof("[cache]serve %s from cache (%d docs)\n", collection, len(cached))
	return cached, nil
}

func (s *CachedStore) Subscribe(ctx context.Context, collection string, onSnapshot SnapshotFunc, onError ErrorFunc) (Unsubscribe, error) {
	return s.Store.Subscribe(ctx, collection,
		func(docs []Document) {
			if err := s.save(collection, docs); err != nil {
				glog.Infof("[cache]save %s error = %s\n", collection, err)
			}
			onSnapshot(docs)
		},
		func(err error) {
			if errors.Is(err, ErrConnectivity) {
				if cached, ok, cerr := s.load(collection); cerr == nil && ok {
					onSnapshot(cached)
				}
			}
			if onError != nil {
				onError(err)
			}
		},
	)
}

// save replaces the cached copy of a collection.
func (s *CachedStore) save(collection string, docs []Document) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM documents WHERE collection = ?`, collection); err != nil {
		return err
	}
	for i, doc := range docs {
		data, err := encodeCached(doc.Data)
		if err != nil {
			return fmt.Errorf("encode %s/%s: %w", collection, doc.ID, err)
		}
		if _, err := tx.Exec(`INSERT INTO documents (collection, id, position, data) VALUES (?, ?, ?, ?)`,
			collection, doc.ID, i, data); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO snapshots (collection, taken_at) VALUES (?, ?)`,
		collection, time.Now().UTC()); err != nil {
		return err
	}
	return tx.Commit()
}

// load returns the cached copy; ok is false if the collection was never cached.
func (s *CachedStore) load(collection string) ([]Document, bool, error) {
	var takenAt time.Time
	err := s.db.QueryRow(`SELECT taken_at FROM snapshots WHERE collection = ?`, collection).Scan(&takenAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	rows, err := s.db.Query(`SELECT id, data FROM documents WHERE collection = ? ORDER BY position`, collection)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, false, err
		}
		data, err := decodeCached(raw)
		if err != nil {
			return nil, false, fmt.Errorf("decode %s/%s: %w", collection, id, err)
		}
		docs = append(docs, Document{ID: id, Data: data})
	}
	return docs, true, rows.Err()
}

// The cached form tags the value shapes JSON would otherwise lose.
type cachedValue struct {
	Time *time.Time             `json:"t,omitempty"`
	Int  *int64                 `json:"i,omitempty"`
	Any  interface{}            `json:"v"`
	List []cachedValue          `json:"l,omitempty"`
	Map  map[string]cachedValue `json:"m,omitempty"`
	Kind string                 `json:"k"`
}

func encodeCached(data map[string]interface{}) (string, error) {
	b, err := json.Marshal(toCached(data))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeCached(raw string) (map[string]interface{}, error) {
	var v cachedValue
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, err
	}
	data, ok := fromCached(v).(map[string]interface{})
	if !ok {
		return nil, errors.New("cached document is not a map")
	}
	return data, nil
}

func toCached(v interface{}) cachedValue {
	switch x := v.(type) {
	case time.Time:
		return cachedValue{Kind: "time", Time: &x}
	case int64:
		return cachedValue{Kind: "int", Int: &x}
	case []interface{}:
		list := make([]cachedValue, len(x))
		for i := range x {
			list[i] = toCached(x[i])
		}
		return cachedValue{Kind: "list", List: list}
	case map[string]interface{}:
		m := make(map[string]cachedValue, len(x))
		for k, e := range x {
			m[k] = toCached(e)
		}
		return cachedValue{Kind: "map", Map: m}
	}
	return cachedValue{Kind: "scalar", Any: v}
}

func fromCached(v cachedValue) interface{} {
	switch v.Kind {
	case "time":
		if v.Time == nil {
			return time.Time{}
		}
		return v.Time.UTC()
	case "int":
		if v.Int == nil {
			return int64(0)
		}
		return *v.Int
	case "list":
		out := make([]interface{}, len(v.List))
		for i := range v.List {
			out[i] = fromCached(v.List[i])
		}
		return out
	case "map":
		out := make(map[string]interface{}, len(v.Map))
		for k, e := range v.Map {
			out[k] = fromCached(e)
		}
		return out
	}
	return v.Any
}
