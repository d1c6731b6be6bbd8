// Package storetest provides a conformance suite shared by the
// store.Backend implementations.
package storetest

import (
	"bytes"
	"errors"
	"testing"

	"github.com/greminder/greminder/internal/store"
)

// Factory opens a fresh, empty backend for one test.
type Factory func(t *testing.T) store.Backend

// RunBackendTests exercises the ordered key-value contract of a backend.
func RunBackendTests(t *testing.T, open Factory) {
	t.Run("GetMissing", func(t *testing.T) {
		b := open(t)
		if _, err := b.Get([]byte("missing")); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("PutGet", func(t *testing.T) {
		b := open(t)
		mustPut(t, b, "key", "value")

		got, err := b.Get([]byte("key"))
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if string(got) != "value" {
			t.Errorf("Get() = %q, want %q", got, "value")
		}
	})

	t.Run("PutOverwrites", func(t *testing.T) {
		b := open(t)
		mustPut(t, b, "key", "first")
		mustPut(t, b, "key", "second")

		got, err := b.Get([]byte("key"))
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if string(got) != "second" {
			t.Errorf("Get() = %q, want %q", got, "second")
		}
	})

	t.Run("BinaryKeys", func(t *testing.T) {
		b := open(t)
		key := []byte("kw\x00abc")
		if err := b.Put(key, []byte("abc")); err != nil {
			t.Fatalf("Put() error: %v", err)
		}
		if _, err := b.Get([]byte("kw")); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("Get(kw) error = %v, want ErrNotFound", err)
		}
		got, err := b.Get(key)
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if string(got) != "abc" {
			t.Errorf("Get() = %q, want %q", got, "abc")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		b := open(t)
		mustPut(t, b, "key", "value")

		if err := b.Delete([]byte("key")); err != nil {
			t.Fatalf("Delete() error: %v", err)
		}
		if _, err := b.Get([]byte("key")); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("Get() after Delete error = %v, want ErrNotFound", err)
		}
		if err := b.Delete([]byte("key")); err != nil {
			t.Errorf("Delete() of missing key error: %v", err)
		}
	})

	t.Run("ScanOrder", func(t *testing.T) {
		b := open(t)
		for _, k := range []string{"b", "a\x00z", "a", "c", "a\x01", "ab"} {
			mustPut(t, b, k, "v-"+k)
		}

		got := collect(t, b, nil, -1)
		want := []string{"a", "a\x00z", "a\x01", "ab", "b", "c"}
		if !equal(got, want) {
			t.Errorf("Scan(nil) keys = %q, want %q", got, want)
		}
	})

	t.Run("ScanSeek", func(t *testing.T) {
		b := open(t)
		for _, k := range []string{"foo\x00a", "foo\x00b", "foobar\x00c", "fop"} {
			mustPut(t, b, k, "v")
		}

		got := collect(t, b, []byte("foo\x00"), -1)
		want := []string{"foo\x00a", "foo\x00b", "foobar\x00c", "fop"}
		if !equal(got, want) {
			t.Errorf("Scan(foo) keys = %q, want %q", got, want)
		}

		got = collect(t, b, []byte("fooa"), -1)
		want = []string{"foobar\x00c", "fop"}
		if !equal(got, want) {
			t.Errorf("Scan(fooa) keys = %q, want %q", got, want)
		}
	})

	t.Run("ScanStop", func(t *testing.T) {
		b := open(t)
		for _, k := range []string{"a", "b", "c", "d"} {
			mustPut(t, b, k, "v")
		}

		got := collect(t, b, []byte("b"), 2)
		want := []string{"b", "c"}
		if !equal(got, want) {
			t.Errorf("Scan(b, limit 2) keys = %q, want %q", got, want)
		}

		// A stopped scan must release its iterator so writes still work.
		mustPut(t, b, "e", "v")
	})

	t.Run("ScanValues", func(t *testing.T) {
		b := open(t)
		mustPut(t, b, "k1", "one")
		mustPut(t, b, "k2", "two")

		values := make(map[string]string)
		err := b.Scan(nil, func(key, value []byte) bool {
			values[string(key)] = string(value)
			return true
		})
		if err != nil {
			t.Fatalf("Scan() error: %v", err)
		}
		if values["k1"] != "one" || values["k2"] != "two" {
			t.Errorf("Scan() values = %v", values)
		}
	})

	t.Run("ScanEmpty", func(t *testing.T) {
		b := open(t)
		if got := collect(t, b, nil, -1); len(got) != 0 {
			t.Errorf("Scan() on empty backend = %q, want none", got)
		}
	})

	t.Run("NoteStore", func(t *testing.T) {
		s := store.New(open(t))
		a, _ := store.NewItem([]string{"shopping", "milk"}, "Buy milk")
		c, _ := store.NewItem([]string{"shopping", "bread"}, "Buy bread")
		for _, item := range []*store.Item{a, c} {
			if err := s.Save(item); err != nil {
				t.Fatalf("Save() error: %v", err)
			}
		}

		items, err := s.Find("shopping milk")
		if err != nil {
			t.Fatalf("Find() error: %v", err)
		}
		if len(items) != 1 || items[0].Fingerprint() != a.Fingerprint() {
			t.Errorf("Find(shopping milk) = %v, want [%v]", items, a)
		}

		keywords, err := s.AllKeywords()
		if err != nil {
			t.Fatalf("AllKeywords() error: %v", err)
		}
		if want := []string{"bread", "milk", "shopping"}; !equal(keywords, want) {
			t.Errorf("AllKeywords() = %q, want %q", keywords, want)
		}
	})
}

func mustPut(t *testing.T, b store.Backend, key, value string) {
	t.Helper()
	if err := b.Put([]byte(key), []byte(value)); err != nil {
		t.Fatalf("Put(%q) error: %v", key, err)
	}
}

// collect returns up to limit keys from seek on (all keys when limit < 0).
func collect(t *testing.T, b store.Backend, seek []byte, limit int) []string {
	t.Helper()
	var keys []string
	err := b.Scan(seek, func(key, _ []byte) bool {
		keys = append(keys, string(bytes.Clone(key)))
		return limit < 0 || len(keys) < limit
	})
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	return keys
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
