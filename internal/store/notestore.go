package store

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// NoteStore persists items and their keyword index in a Backend.
//
// Every mutating operation writes or deletes several records one at a
// time. There is no rollback: when a write fails the operation returns the
// error and the records written before it stay in place. Check and Repair
// detect and clean up the resulting inconsistencies.
//
// A NoteStore is not safe for concurrent mutation.
type NoteStore struct {
	backend Backend
	logger  *slog.Logger
}

// Option configures a NoteStore.
type Option func(*NoteStore)

// WithLogger sets the logger used for debug and repair events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *NoteStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a NoteStore on top of an open backend. The NoteStore owns the
// backend from now on and closes it in Close.
func New(backend Backend, opts ...Option) *NoteStore {
	s := &NoteStore{
		backend: backend,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close closes the underlying backend.
func (s *NoteStore) Close() error {
	return s.backend.Close()
}

// Save writes the primary record and one forward and one reverse record
// per distinct keyword. Saving an item again overwrites its primary record
// and adds links for new keywords; links for keywords the item no longer
// has are left alone.
func (s *NoteStore) Save(item *Item) error {
	fp := item.Fingerprint()

	if err := s.backend.Put([]byte(fp), []byte(item.Contents())); err != nil {
		return fmt.Errorf("failed to write item %s: %w", shortFingerprint(fp), err)
	}

	for _, kw := range item.indexKeywords() {
		if err := s.backend.Put(compositeKey(kw, fp), []byte(fp)); err != nil {
			return fmt.Errorf("failed to write keyword link %q: %w", kw, err)
		}
		if err := s.backend.Put(compositeKey(fp, kw), []byte(kw)); err != nil {
			return fmt.Errorf("failed to write item link %q: %w", kw, err)
		}
	}

	s.logger.Debug("item saved",
		slog.String("fingerprint", fp),
		slog.Int("keywords", len(item.indexKeywords())))
	return nil
}

// Delete removes the primary record of item and the forward and reverse
// records of each of its keywords.
func (s *NoteStore) Delete(item *Item) error {
	fp := item.Fingerprint()

	if err := s.backend.Delete([]byte(fp)); err != nil {
		return fmt.Errorf("failed to delete item %s: %w", shortFingerprint(fp), err)
	}

	for _, kw := range item.indexKeywords() {
		if err := s.DeleteWithSuffix(kw, fp); err != nil {
			return err
		}
		if err := s.DeleteWithSuffix(fp, kw); err != nil {
			return err
		}
	}

	s.logger.Debug("item deleted", slog.String("fingerprint", fp))
	return nil
}

// DeleteKey deletes a single raw key, typically the primary record left
// behind when an edit changed an item's contents.
func (s *NoteStore) DeleteKey(key string) error {
	if err := s.backend.Delete([]byte(key)); err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}

// DeleteWithSuffix deletes exactly the composite record key 0x00 suffix.
func (s *NoteStore) DeleteWithSuffix(key, suffix string) error {
	if err := s.backend.Delete(compositeKey(key, suffix)); err != nil {
		return fmt.Errorf("failed to delete link %q -> %q: %w", key, suffix, err)
	}
	return nil
}

// Find returns the items carrying every keyword of query. Keywords are
// separated by single spaces; empty tokens are ignored. Items are returned
// in ascending fingerprint order. Index entries whose primary record is
// missing are skipped.
func (s *NoteStore) Find(query string) ([]*Item, error) {
	tokens := lo.Filter(strings.Split(query, QueryDelimiter), func(t string, _ int) bool {
		return t != ""
	})
	if len(tokens) == 0 {
		return []*Item{}, nil
	}

	var candidates []string
	for i, token := range tokens {
		fps, err := s.lookup(token)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			candidates = fps
		} else {
			candidates = lo.Intersect(candidates, fps)
		}
		if len(candidates) == 0 {
			return []*Item{}, nil
		}
	}

	items := make([]*Item, 0, len(candidates))
	for _, fp := range candidates {
		item, err := s.Get(fp)
		if errors.Is(err, ErrNotFound) {
			s.logger.Debug("dropping index entry without item", slog.String("fingerprint", fp))
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// lookup returns the fingerprints filed under keyword, in key order.
func (s *NoteStore) lookup(keyword string) ([]string, error) {
	if strings.IndexByte(keyword, Separator) >= 0 {
		return nil, nil
	}

	prefix := scanPrefix(keyword)
	var fps []string
	err := s.backend.Scan(prefix, func(key, value []byte) bool {
		if !hasLeft(key, prefix) {
			return false
		}
		fps = append(fps, string(value))
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan keyword %q: %w", keyword, err)
	}
	return lo.Uniq(fps), nil
}

// Get loads the item stored under fingerprint fp, with its keywords
// rebuilt from the reverse index.
func (s *NoteStore) Get(fp string) (*Item, error) {
	contents, err := s.backend.Get([]byte(fp))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read item %s: %w", shortFingerprint(fp), err)
	}

	keywords, err := s.keywordsOf(fp)
	if err != nil {
		return nil, err
	}
	return s.restoreItem(fp, string(contents), keywords), nil
}

// keywordsOf scans the reverse records of fp. Records pairing two
// fingerprints are not reverse records and are skipped.
func (s *NoteStore) keywordsOf(fp string) ([]string, error) {
	prefix := scanPrefix(fp)
	var keywords []string
	err := s.backend.Scan(prefix, func(key, value []byte) bool {
		if !hasLeft(key, prefix) {
			return false
		}
		if _, ok := classify(record{key: key}); ok {
			keywords = append(keywords, string(value))
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan keywords of %s: %w", shortFingerprint(fp), err)
	}
	return keywords, nil
}

// restoreItem builds an item from stored records without the validation of
// NewItem, so that inconsistent data can still be displayed and deleted.
func (s *NoteStore) restoreItem(key, contents string, keywords []string) *Item {
	// Keep the stored key so the item can still be deleted.
	if fp := Fingerprint(contents); fp != key {
		s.logger.Warn("stored contents do not match their key",
			slog.String("key", key),
			slog.String("fingerprint", fp))
	}
	return &Item{
		contents:    contents,
		fingerprint: key,
		keywords:    keywords,
	}
}

// AllKeywords returns every indexed keyword once, sorted.
func (s *NoteStore) AllKeywords() ([]string, error) {
	records, _, err := s.scanAll()
	if err != nil {
		return nil, err
	}

	keywords := make([]string, 0, len(records)/2)
	for _, rec := range records {
		if link, ok := classify(rec); ok {
			keywords = append(keywords, link.Keyword)
		}
	}

	keywords = lo.Uniq(keywords)
	slices.Sort(keywords)
	return keywords, nil
}

// List returns every stored item in fingerprint order.
func (s *NoteStore) List() ([]*Item, error) {
	var (
		items   []*Item
		current *Item
		prefix  []byte
	)

	// A primary record F sorts directly before its reverse records
	// F 0x00 keyword, so one ordered pass is enough.
	err := s.backend.Scan(nil, func(key, value []byte) bool {
		if current != nil && hasLeft(key, prefix) {
			if _, ok := classify(record{key: key}); ok {
				current.keywords = append(current.keywords, string(value))
			}
			return true
		}
		if _, _, composite := splitComposite(key); composite || !IsFingerprint(string(key)) {
			return true
		}
		current = s.restoreItem(string(key), string(value), nil)
		prefix = scanPrefix(string(key))
		items = append(items, current)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// Stats describes the backend behind a NoteStore.
type Stats struct {
	// Records counts every record of every family.
	Records int
	// Schema is the backend's schema version, or "" if it has none.
	Schema string
}

// Stats reports the record count and schema version of the backend.
func (s *NoteStore) Stats() (*Stats, error) {
	stats := &Stats{}

	if c, ok := s.backend.(Counter); ok {
		n, err := c.Count()
		if err != nil {
			return nil, fmt.Errorf("failed to count records: %w", err)
		}
		stats.Records = n
	} else {
		err := s.backend.Scan(nil, func(_, _ []byte) bool {
			stats.Records++
			return true
		})
		if err != nil {
			return nil, fmt.Errorf("failed to count records: %w", err)
		}
	}

	if v, ok := s.backend.(SchemaVersioner); ok {
		version, err := v.SchemaVersion()
		if err != nil {
			return nil, fmt.Errorf("failed to read schema version: %w", err)
		}
		stats.Schema = version
	}
	return stats, nil
}

// Resolve expands a fingerprint prefix to the full fingerprint of the one
// item it identifies.
func (s *NoteStore) Resolve(prefix string) (string, error) {
	if prefix == "" {
		return "", ErrNotFound
	}

	var matches []string
	err := s.backend.Scan([]byte(prefix), func(key, _ []byte) bool {
		k := string(key)
		if !strings.HasPrefix(k, prefix) {
			return false
		}
		if IsFingerprint(k) {
			matches = append(matches, k)
		}
		return len(matches) < 2
	})
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", prefix, err)
	}

	switch len(matches) {
	case 0:
		return "", ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %q", ErrAmbiguous, prefix)
	}
}

// record is a copied key/value pair from a full scan.
type record struct {
	key   []byte
	value []byte
}

// scanAll copies every composite record and collects the set of primary
// keys.
func (s *NoteStore) scanAll() ([]record, map[string]string, error) {
	var records []record
	primaries := make(map[string]string)

	err := s.backend.Scan(nil, func(key, value []byte) bool {
		if _, _, composite := splitComposite(key); !composite {
			primaries[string(key)] = string(value)
			return true
		}
		records = append(records, record{
			key:   append([]byte(nil), key...),
			value: append([]byte(nil), value...),
		})
		return true
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan store: %w", err)
	}
	return records, primaries, nil
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
