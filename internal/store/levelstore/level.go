// Package levelstore implements store.Backend on top of LevelDB.
// It is the default backend: one database directory per note store.
package levelstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/greminder/greminder/internal/store"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

// LevelStore is a store.Backend backed by a goleveldb database.
type LevelStore struct {
	db   *leveldb.DB
	sync *opt.WriteOptions
}

var _ store.Backend = (*LevelStore)(nil)

// Open opens the database directory at path, creating it and its parents
// if needed.
func Open(path string) (*LevelStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := leveldb.OpenFile(path, &opt.Options{
		ErrorIfMissing: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb %s: %w", path, err)
	}
	return newLevelStore(db), nil
}

// OpenMemory opens a database held entirely in memory, for tests.
func OpenMemory() (*LevelStore, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory leveldb: %w", err)
	}
	return newLevelStore(db), nil
}

func newLevelStore(db *leveldb.DB) *LevelStore {
	return &LevelStore{
		db:   db,
		sync: &opt.WriteOptions{Sync: true},
	}
}

// Get returns the value stored under key.
func (l *LevelStore) Get(key []byte) ([]byte, error) {
	value, err := l.db.Get(key, nil)
	if err != nil {
		return nil, mapError(err)
	}
	return value, nil
}

// Put writes key synchronously.
func (l *LevelStore) Put(key, value []byte) error {
	return mapError(l.db.Put(key, value, l.sync))
}

// Delete removes key. Deleting a missing key is not an error.
func (l *LevelStore) Delete(key []byte) error {
	return mapError(l.db.Delete(key, l.sync))
}

// Scan iterates from the first key >= seek until fn returns false.
func (l *LevelStore) Scan(seek []byte, fn func(key, value []byte) bool) error {
	iter := l.db.NewIterator(nil, nil)
	defer iter.Release()

	for ok := iter.Seek(seek); ok; ok = iter.Next() {
		if !fn(iter.Key(), iter.Value()) {
			break
		}
	}
	return mapError(iter.Error())
}

// Close closes the database.
func (l *LevelStore) Close() error {
	return mapError(l.db.Close())
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, leveldb.ErrNotFound):
		return store.ErrNotFound
	case errors.Is(err, leveldb.ErrClosed):
		return store.ErrClosed
	default:
		return err
	}
}
