package store_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/greminder/greminder/internal/store"
	"github.com/greminder/greminder/internal/store/memstore"
)

// setupTestStore creates a NoteStore over an in-memory backend.
func setupTestStore(t *testing.T) (*store.NoteStore, *memstore.MemoryStore) {
	t.Helper()
	backend := memstore.NewMemoryStore()
	s := store.New(backend)
	t.Cleanup(func() { s.Close() })
	return s, backend
}

func mustItem(t *testing.T, contents string, keywords ...string) *store.Item {
	t.Helper()
	item, err := store.NewItem(keywords, contents)
	if err != nil {
		t.Fatalf("NewItem(%q) error: %v", contents, err)
	}
	return item
}

func mustSave(t *testing.T, s *store.NoteStore, items ...*store.Item) {
	t.Helper()
	for _, item := range items {
		if err := s.Save(item); err != nil {
			t.Fatalf("Save(%v) error: %v", item, err)
		}
	}
}

func mustFind(t *testing.T, s *store.NoteStore, query string) []*store.Item {
	t.Helper()
	items, err := s.Find(query)
	if err != nil {
		t.Fatalf("Find(%q) error: %v", query, err)
	}
	return items
}

// contentsOf returns the sorted contents of items.
func contentsOf(items []*store.Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Contents())
	}
	slices.Sort(out)
	return out
}

func assertFind(t *testing.T, s *store.NoteStore, query string, want ...string) {
	t.Helper()
	slices.Sort(want)
	got := contentsOf(mustFind(t, s, query))
	if !slices.Equal(got, want) {
		t.Errorf("Find(%q) = %q, want %q", query, got, want)
	}
}

func TestNoteStore_Save(t *testing.T) {
	s, backend := setupTestStore(t)
	item := mustItem(t, "Buy milk", "shopping", "milk", "shopping")
	mustSave(t, s, item)

	// one primary record plus a forward and a reverse record per distinct keyword
	if backend.Len() != 5 {
		t.Errorf("record count = %d, want 5", backend.Len())
	}

	fp := item.Fingerprint()
	tests := []struct {
		key   string
		value string
	}{
		{fp, "Buy milk"},
		{"shopping\x00" + fp, fp},
		{"milk\x00" + fp, fp},
		{fp + "\x00shopping", "shopping"},
		{fp + "\x00milk", "milk"},
	}
	for _, tt := range tests {
		got, err := backend.Get([]byte(tt.key))
		if err != nil {
			t.Errorf("Get(%q) error: %v", tt.key, err)
			continue
		}
		if string(got) != tt.value {
			t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.value)
		}
	}

	// Saving again is an upsert.
	mustSave(t, s, item)
	if backend.Len() != 5 {
		t.Errorf("record count after second save = %d, want 5", backend.Len())
	}
}

func TestNoteStore_FindScenario(t *testing.T) {
	s, _ := setupTestStore(t)
	a := mustItem(t, "Buy milk", "shopping", "milk")
	b := mustItem(t, "Buy bread", "shopping", "bread")
	mustSave(t, s, a, b)

	assertFind(t, s, "shopping", "Buy milk", "Buy bread")
	assertFind(t, s, "milk", "Buy milk")
	assertFind(t, s, "shopping milk", "Buy milk")
	assertFind(t, s, "bread milk")
	assertFind(t, s, "cheese")
}

func TestNoteStore_FindReturnsFullItems(t *testing.T) {
	s, _ := setupTestStore(t)
	a := mustItem(t, "Buy milk", "shopping", "milk")
	mustSave(t, s, a)

	items := mustFind(t, s, "milk")
	if len(items) != 1 {
		t.Fatalf("Find(milk) returned %d items, want 1", len(items))
	}
	got := items[0]
	if got.Fingerprint() != a.Fingerprint() {
		t.Errorf("Fingerprint() = %q, want %q", got.Fingerprint(), a.Fingerprint())
	}
	kws := got.Keywords()
	slices.Sort(kws)
	if !slices.Equal(kws, []string{"milk", "shopping"}) {
		t.Errorf("Keywords() = %q, want [milk shopping]", kws)
	}
}

func TestNoteStore_FindQueryParsing(t *testing.T) {
	s, _ := setupTestStore(t)
	mustSave(t, s, mustItem(t, "Buy milk", "shopping", "milk"))

	tests := []struct {
		query string
		want  []string
	}{
		{"", nil},
		{" ", nil},
		{"  shopping  ", []string{"Buy milk"}},
		{"shopping  milk", []string{"Buy milk"}},
		{"shopping\tmilk", nil},
		{"milk milk", []string{"Buy milk"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assertFind(t, s, tt.query, tt.want...)
		})
	}
}

func TestNoteStore_FindPrefixBoundary(t *testing.T) {
	s, _ := setupTestStore(t)
	mustSave(t, s,
		mustItem(t, "long keyword", "foobar"),
		mustItem(t, "other keyword", "fo"),
	)

	assertFind(t, s, "foo")
	assertFind(t, s, "foobar", "long keyword")
	assertFind(t, s, "fo", "other keyword")
}

func TestNoteStore_FindOrder(t *testing.T) {
	s, _ := setupTestStore(t)
	for _, c := range []string{"one", "two", "three", "four"} {
		mustSave(t, s, mustItem(t, c, "all"))
	}

	items := mustFind(t, s, "all")
	fps := make([]string, 0, len(items))
	for _, item := range items {
		fps = append(fps, item.Fingerprint())
	}
	if !slices.IsSorted(fps) {
		t.Errorf("Find() fingerprints not ascending: %q", fps)
	}
}

func TestNoteStore_FindDropsMissingPrimary(t *testing.T) {
	s, backend := setupTestStore(t)
	a := mustItem(t, "Buy milk", "shopping")
	b := mustItem(t, "Buy bread", "shopping")
	mustSave(t, s, a, b)

	if err := backend.Delete([]byte(a.Fingerprint())); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	assertFind(t, s, "shopping", "Buy bread")
}

func TestNoteStore_Delete(t *testing.T) {
	s, backend := setupTestStore(t)
	a := mustItem(t, "Buy milk", "shopping", "milk")
	b := mustItem(t, "Buy bread", "shopping", "bread")
	mustSave(t, s, a, b)

	if err := s.Delete(a); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	assertFind(t, s, "milk")
	assertFind(t, s, "shopping", "Buy bread")
	if backend.Len() != 5 {
		t.Errorf("record count = %d, want 5", backend.Len())
	}
	if _, err := s.Get(a.Fingerprint()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get() after Delete error = %v, want ErrNotFound", err)
	}

	// Deleting again is harmless.
	if err := s.Delete(a); err != nil {
		t.Errorf("second Delete() error: %v", err)
	}
}

func TestNoteStore_EditScenario(t *testing.T) {
	s, _ := setupTestStore(t)
	a := mustItem(t, "Buy milk", "shopping", "milk")
	b := mustItem(t, "Buy bread", "shopping", "bread")
	mustSave(t, s, a, b)

	edited := a.Clone()
	edited.RemoveKeyword("milk")
	if err := edited.AddKeyword("dairy"); err != nil {
		t.Fatalf("AddKeyword() error: %v", err)
	}
	mustSave(t, s, edited)
	if err := s.DeleteWithSuffix("milk", a.Fingerprint()); err != nil {
		t.Fatalf("DeleteWithSuffix() error: %v", err)
	}
	if err := s.DeleteWithSuffix(a.Fingerprint(), "milk"); err != nil {
		t.Fatalf("DeleteWithSuffix() error: %v", err)
	}

	assertFind(t, s, "milk")
	assertFind(t, s, "dairy", "Buy milk")
	assertFind(t, s, "shopping", "Buy milk", "Buy bread")
}

func TestNoteStore_EditContents(t *testing.T) {
	s, _ := setupTestStore(t)
	a := mustItem(t, "Buy milk", "shopping")
	mustSave(t, s, a)
	oldFP := a.Fingerprint()

	edited := a.Clone()
	if err := edited.SetContents("Buy oat milk"); err != nil {
		t.Fatalf("SetContents() error: %v", err)
	}
	mustSave(t, s, edited)
	if err := s.DeleteKey(oldFP); err != nil {
		t.Fatalf("DeleteKey() error: %v", err)
	}

	// The old links now point at a missing primary and are dropped.
	assertFind(t, s, "shopping", "Buy oat milk")
}

func TestNoteStore_Get(t *testing.T) {
	s, _ := setupTestStore(t)
	a := mustItem(t, "Buy milk", "shopping", "milk")
	mustSave(t, s, a)

	got, err := s.Get(a.Fingerprint())
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Contents() != "Buy milk" {
		t.Errorf("Contents() = %q, want %q", got.Contents(), "Buy milk")
	}
	if len(got.Keywords()) != 2 {
		t.Errorf("Keywords() = %q, want 2 keywords", got.Keywords())
	}

	if _, err := s.Get(store.Fingerprint("missing")); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestNoteStore_AllKeywords(t *testing.T) {
	s, _ := setupTestStore(t)
	mustSave(t, s,
		mustItem(t, "Buy milk", "shopping", "milk"),
		mustItem(t, "Buy bread", "shopping", "bread"),
		mustItem(t, "Call mum", "phone", "shopping"),
	)

	got, err := s.AllKeywords()
	if err != nil {
		t.Fatalf("AllKeywords() error: %v", err)
	}
	want := []string{"bread", "milk", "phone", "shopping"}
	if !slices.Equal(got, want) {
		t.Errorf("AllKeywords() = %q, want %q", got, want)
	}
}

func TestNoteStore_AllKeywordsEmpty(t *testing.T) {
	s, _ := setupTestStore(t)
	got, err := s.AllKeywords()
	if err != nil {
		t.Fatalf("AllKeywords() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("AllKeywords() = %q, want none", got)
	}
}

func TestNoteStore_FingerprintKeywordRejected(t *testing.T) {
	s, _ := setupTestStore(t)
	b := mustItem(t, "beta", "b")
	mustSave(t, s, b)

	if _, err := store.NewItem([]string{b.Fingerprint()}, "alpha"); !errors.Is(err, store.ErrInvalidKeyword) {
		t.Errorf("NewItem() with a fingerprint keyword error = %v, want ErrInvalidKeyword", err)
	}
	if _, err := store.NewItem([]string{"foo bar"}, "alpha"); !errors.Is(err, store.ErrInvalidKeyword) {
		t.Errorf("NewItem() with a spaced keyword error = %v, want ErrInvalidKeyword", err)
	}
}

func TestNoteStore_FingerprintPairRecordIgnored(t *testing.T) {
	s, backend := setupTestStore(t)
	a := mustItem(t, "alpha", "a")
	b := mustItem(t, "beta", "b")
	mustSave(t, s, a, b)

	// A record pairing two stored fingerprints cannot be told apart as
	// forward or reverse.
	pair := b.Fingerprint() + "\x00" + a.Fingerprint()
	if err := backend.Put([]byte(pair), []byte(a.Fingerprint())); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	// Nor can a record without any fingerprint half.
	if err := backend.Put([]byte("x\x00y"), []byte("z")); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	got, err := s.AllKeywords()
	if err != nil {
		t.Fatalf("AllKeywords() error: %v", err)
	}
	if want := []string{"a", "b"}; !slices.Equal(got, want) {
		t.Errorf("AllKeywords() = %q, want %q", got, want)
	}

	stored, err := s.Get(b.Fingerprint())
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if kws := stored.Keywords(); !slices.Equal(kws, []string{"b"}) {
		t.Errorf("Get().Keywords() = %q, want [b]", kws)
	}

	items, err := s.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	for _, item := range items {
		if len(item.Keywords()) != 1 {
			t.Errorf("List() item %v has keywords %q, want one", item, item.Keywords())
		}
	}

	if err := s.Delete(stored); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	assertFind(t, s, "a", "alpha")
	if _, err := backend.Get([]byte(pair)); err != nil {
		t.Errorf("Delete() removed an unrelated record: %v", err)
	}

	report, err := s.Check()
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if report.Foreign != 2 {
		t.Errorf("Foreign = %d, want 2", report.Foreign)
	}
}

func TestNoteStore_List(t *testing.T) {
	s, _ := setupTestStore(t)
	mustSave(t, s,
		mustItem(t, "Buy milk", "shopping", "milk"),
		mustItem(t, "Buy bread", "shopping", "bread"),
	)

	items, err := s.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if got := contentsOf(items); !slices.Equal(got, []string{"Buy bread", "Buy milk"}) {
		t.Errorf("List() = %q", got)
	}
	for _, item := range items {
		if len(item.Keywords()) != 2 {
			t.Errorf("List() item %v has %d keywords, want 2", item, len(item.Keywords()))
		}
	}
	if items[0].Fingerprint() > items[1].Fingerprint() {
		t.Error("List() not sorted by fingerprint")
	}
}

func TestNoteStore_Resolve(t *testing.T) {
	s, _ := setupTestStore(t)
	a := mustItem(t, "Buy milk", "shopping")
	mustSave(t, s, a)
	fp := a.Fingerprint()

	got, err := s.Resolve(fp[:6])
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got != fp {
		t.Errorf("Resolve() = %q, want %q", got, fp)
	}

	if got, err := s.Resolve(fp); err != nil || got != fp {
		t.Errorf("Resolve(full) = %q, %v", got, err)
	}
	if _, err := s.Resolve(""); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Resolve(\"\") error = %v, want ErrNotFound", err)
	}
	if _, err := s.Resolve("zzz"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Resolve(zzz) error = %v, want ErrNotFound", err)
	}
	// A keyword is not a fingerprint.
	if _, err := s.Resolve("shop"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Resolve(shop) error = %v, want ErrNotFound", err)
	}
}

func TestNoteStore_ResolveAmbiguous(t *testing.T) {
	s, _ := setupTestStore(t)

	// Find two contents whose fingerprints share a first digit.
	seen := make(map[byte]string)
	var first, second string
	for i := 0; first == ""; i++ {
		c := string(rune('a'+i%26)) + string(rune('a'+i/26))
		d := store.Fingerprint(c)[0]
		if prev, ok := seen[d]; ok {
			first, second = prev, c
		}
		seen[d] = c
	}
	mustSave(t, s, mustItem(t, first, "k"), mustItem(t, second, "k"))

	_, err := s.Resolve(store.Fingerprint(first)[:1])
	if !errors.Is(err, store.ErrAmbiguous) {
		t.Errorf("Resolve() error = %v, want ErrAmbiguous", err)
	}
}

func TestNoteStore_BackendFailure(t *testing.T) {
	backend := newFaultyBackend()
	s := store.New(backend)
	defer s.Close()

	backend.failGet = true
	if _, err := s.Get(store.Fingerprint("x")); !errors.Is(err, errInjected) {
		t.Errorf("Get() error = %v, want injected error", err)
	}
	backend.failGet = false

	backend.failScan = true
	if _, err := s.Find("shopping"); !errors.Is(err, errInjected) {
		t.Errorf("Find() error = %v, want injected error", err)
	}
	if _, err := s.AllKeywords(); !errors.Is(err, errInjected) {
		t.Errorf("AllKeywords() error = %v, want injected error", err)
	}
	if _, err := s.List(); !errors.Is(err, errInjected) {
		t.Errorf("List() error = %v, want injected error", err)
	}
}

func TestNoteStore_PartialSave(t *testing.T) {
	backend := newFaultyBackend()
	s := store.New(backend)
	defer s.Close()

	item := mustItem(t, "Buy milk", "shopping", "milk")

	// primary, shopping forward, shopping reverse, then fail on milk forward
	backend.failPutAfter = 3
	if err := s.Save(item); !errors.Is(err, errInjected) {
		t.Fatalf("Save() error = %v, want injected error", err)
	}
	if backend.Len() != 3 {
		t.Errorf("record count after partial save = %d, want 3", backend.Len())
	}

	// The half-written item is still reachable through the keyword that made it.
	assertFind(t, s, "shopping", "Buy milk")
	assertFind(t, s, "milk")
}

func TestNoteStore_PartialDelete(t *testing.T) {
	backend := newFaultyBackend()
	s := store.New(backend)
	defer s.Close()

	item := mustItem(t, "Buy milk", "shopping", "milk")
	mustSave(t, s, item)

	backend.failDeleteAfter = 1
	if err := s.Delete(item); !errors.Is(err, errInjected) {
		t.Fatalf("Delete() error = %v, want injected error", err)
	}
	// Only the primary record is gone; find drops the dangling links.
	if backend.Len() != 4 {
		t.Errorf("record count after partial delete = %d, want 4", backend.Len())
	}
	assertFind(t, s, "shopping")
}

// uncountedBackend hides the Counter implementation of its backend.
type uncountedBackend struct {
	store.Backend
}

func TestNoteStore_Stats(t *testing.T) {
	tests := []struct {
		name string
		wrap func(store.Backend) store.Backend
	}{
		{"counter", func(b store.Backend) store.Backend { return b }},
		{"scan", func(b store.Backend) store.Backend { return uncountedBackend{b} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := store.New(tt.wrap(memstore.NewMemoryStore()))
			defer s.Close()
			mustSave(t, s,
				mustItem(t, "Buy milk", "shopping", "milk"),
				mustItem(t, "Call mom", "todo"),
			)

			stats, err := s.Stats()
			if err != nil {
				t.Fatalf("Stats() error: %v", err)
			}
			// 2 primaries, 3 forward, 3 reverse
			if stats.Records != 8 {
				t.Errorf("Records = %d, want 8", stats.Records)
			}
			if stats.Schema != "" {
				t.Errorf("Schema = %q, want empty", stats.Schema)
			}
		})
	}
}
