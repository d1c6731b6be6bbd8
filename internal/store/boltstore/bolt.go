// Package boltstore implements store.Backend on a single bbolt bucket.
package boltstore

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/greminder/greminder/internal/store"
	bolt "go.etcd.io/bbolt"
)

var bucketName = []byte("greminder")

// BoltStore is a store.Backend backed by a bbolt file. Every Put and
// Delete is its own transaction, committed with fsync.
type BoltStore struct {
	db *bolt.DB
}

var (
	_ store.Backend = (*BoltStore)(nil)
	_ store.Counter = (*BoltStore)(nil)
)

// Open opens or creates the bbolt file at path.
func Open(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Get returns a copy of the value stored under key.
func (b *BoltStore) Get(key []byte) ([]byte, error) {
	var value []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get(key)
		if v == nil {
			return store.ErrNotFound
		}
		value = bytes.Clone(v)
		return nil
	})
	return value, mapError(err)
}

// Put writes key in its own transaction.
func (b *BoltStore) Put(key, value []byte) error {
	return mapError(b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put(key, value)
	}))
}

// Delete removes key if present.
func (b *BoltStore) Delete(key []byte) error {
	return mapError(b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete(key)
	}))
}

// Scan walks the bucket cursor from seek inside one read transaction.
func (b *BoltStore) Scan(seek []byte, fn func(key, value []byte) bool) error {
	return mapError(b.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketName).Cursor()

		var k, v []byte
		if len(seek) == 0 {
			k, v = c.First()
		} else {
			k, v = c.Seek(seek)
		}
		for ; k != nil; k, v = c.Next() {
			if !fn(k, v) {
				return nil
			}
		}
		return nil
	}))
}

// Count implements store.Counter from the bucket statistics.
func (b *BoltStore) Count() (int, error) {
	var n int
	err := b.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketName).Stats().KeyN
		return nil
	})
	return n, mapError(err)
}

// Close closes the database file.
func (b *BoltStore) Close() error {
	return b.db.Close()
}

func mapError(err error) error {
	if errors.Is(err, bolt.ErrDatabaseNotOpen) {
		return store.ErrClosed
	}
	return err
}
