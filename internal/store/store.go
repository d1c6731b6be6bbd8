// Package store defines greminder's persistence layer: the Item type, the
// ordered key-value Backend contract, and NoteStore, which keeps note
// contents and a keyword index in a single flat keyspace.
//
// Three record families share the keyspace:
//
//	fingerprint                  -> contents     (primary)
//	keyword 0x00 fingerprint     -> fingerprint  (forward index)
//	fingerprint 0x00 keyword     -> keyword      (reverse index)
//
// Backend implementations live in the memstore, levelstore, boltstore and
// dbstore subpackages.
package store

import (
	"errors"
)

var (
	// ErrNotFound is returned when a key or item does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAmbiguous is returned when a fingerprint prefix matches more than
	// one item.
	ErrAmbiguous = errors.New("ambiguous fingerprint prefix")

	// ErrEmptyContents is returned when an item would have no contents.
	ErrEmptyContents = errors.New("item contents must not be empty")

	// ErrNoKeywords is returned when an item is created without keywords.
	ErrNoKeywords = errors.New("item must have at least one keyword")

	// ErrInvalidKeyword is returned for keywords that cannot be indexed.
	ErrInvalidKeyword = errors.New("invalid keyword")

	// ErrClosed is returned by backends used after Close.
	ErrClosed = errors.New("store is closed")
)

// Backend is an ordered key-value store with byte-string keys.
//
// Keys are compared bytewise. Writes must be durable before Put or Delete
// return.
type Backend interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(key []byte) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	Put(key, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key []byte) error

	// Scan visits records in ascending key order starting at the first key
	// greater than or equal to seek. Iteration stops when fn returns false.
	// The key and value slices are only valid for the duration of the call.
	// Implementations release their iterator on every return path.
	Scan(seek []byte, fn func(key, value []byte) bool) error

	// Close releases the backend. The backend must not be used afterwards.
	Close() error
}

// Counter is implemented by backends that count their records without a
// full scan.
type Counter interface {
	Count() (int, error)
}

// SchemaVersioner is implemented by backends that record the version of
// their on-disk schema.
type SchemaVersioner interface {
	SchemaVersion() (string, error)
}
