package store_test

import (
	"errors"

	"github.com/greminder/greminder/internal/store/memstore"
)

var errInjected = errors.New("injected backend failure")

// faultyBackend is an in-memory backend that fails on demand.
type faultyBackend struct {
	*memstore.MemoryStore

	failGet  bool
	failScan bool

	// failPutAfter lets that many puts succeed and fails the rest.
	// Zero disables the fault.
	failPutAfter    int
	failDeleteAfter int

	puts    int
	deletes int
}

func newFaultyBackend() *faultyBackend {
	return &faultyBackend{MemoryStore: memstore.NewMemoryStore()}
}

func (f *faultyBackend) Get(key []byte) ([]byte, error) {
	if f.failGet {
		return nil, errInjected
	}
	return f.MemoryStore.Get(key)
}

func (f *faultyBackend) Put(key, value []byte) error {
	f.puts++
	if f.failPutAfter > 0 && f.puts > f.failPutAfter {
		return errInjected
	}
	return f.MemoryStore.Put(key, value)
}

func (f *faultyBackend) Delete(key []byte) error {
	f.deletes++
	if f.failDeleteAfter > 0 && f.deletes > f.failDeleteAfter {
		return errInjected
	}
	return f.MemoryStore.Delete(key)
}

func (f *faultyBackend) Scan(seek []byte, fn func(key, value []byte) bool) error {
	if f.failScan {
		return errInjected
	}
	return f.MemoryStore.Scan(seek, fn)
}
