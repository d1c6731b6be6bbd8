// Package notes implements the note editing flows on top of a NoteStore:
// creating, editing with keyword diffs, deleting and searching items.
package notes

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/greminder/greminder/internal/store"
	"github.com/samber/lo"
)

// ErrBinaryContents is returned for contents that do not look like text.
var ErrBinaryContents = errors.New("contents look like binary data")

// NoteManager runs the user-level note operations. Every operation is
// a sequence of NoteStore calls; see store.NoteStore for the failure
// semantics.
type NoteManager struct {
	store       *store.NoteStore
	resultLimit int
	logger      *slog.Logger
}

// NewNoteManager creates a note manager with no result limit.
func NewNoteManager(s *store.NoteStore) *NoteManager {
	return NewNoteManagerWithConfig(s, 0, nil)
}

// NewNoteManagerWithConfig creates a note manager that returns at most
// resultLimit items from Search and List (0 means no limit).
func NewNoteManagerWithConfig(s *store.NoteStore, resultLimit int, logger *slog.Logger) *NoteManager {
	if resultLimit < 0 {
		resultLimit = 0
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &NoteManager{
		store:       s,
		resultLimit: resultLimit,
		logger:      logger,
	}
}

// ParseKeywords splits a space separated keyword list, dropping empty
// tokens. It uses the same rules as search queries.
func ParseKeywords(s string) []string {
	return lo.Filter(strings.Split(s, store.QueryDelimiter), func(kw string, _ int) bool {
		return kw != ""
	})
}

// Create stores a new item.
func (m *NoteManager) Create(keywords []string, contents string) (*store.Item, error) {
	if isBinary([]byte(contents)) {
		return nil, ErrBinaryContents
	}

	item, err := store.NewItem(keywords, contents)
	if err != nil {
		return nil, err
	}
	if err := m.store.Save(item); err != nil {
		return nil, fmt.Errorf("failed to store item: %w", err)
	}

	m.logger.Info("item created",
		slog.String("fingerprint", item.Fingerprint()),
		slog.Any("keywords", item.Keywords()))
	return item, nil
}

// Edit replaces old with an item built from keywords and contents.
//
// The new item is saved first. If the contents changed, the old item is
// deleted with all of its links. Otherwise only the links of keywords
// that were dropped are deleted.
func (m *NoteManager) Edit(old *store.Item, keywords []string, contents string) (*store.Item, error) {
	if isBinary([]byte(contents)) {
		return nil, ErrBinaryContents
	}

	item, err := store.NewItem(keywords, contents)
	if err != nil {
		return nil, err
	}
	if err := m.store.Save(item); err != nil {
		return nil, fmt.Errorf("failed to store item: %w", err)
	}

	oldFP := old.Fingerprint()
	if item.Fingerprint() != oldFP {
		if err := m.store.Delete(old); err != nil {
			return nil, fmt.Errorf("failed to remove previous version: %w", err)
		}
	} else {
		dropped := lo.Uniq(lo.Without(old.Keywords(), item.Keywords()...))
		for _, kw := range dropped {
			if err := m.store.DeleteWithSuffix(kw, oldFP); err != nil {
				return nil, err
			}
			if err := m.store.DeleteWithSuffix(oldFP, kw); err != nil {
				return nil, err
			}
		}
	}

	m.logger.Info("item edited",
		slog.String("previous", oldFP),
		slog.String("fingerprint", item.Fingerprint()))
	return item, nil
}

// Delete removes item and its links.
func (m *NoteManager) Delete(item *store.Item) error {
	if err := m.store.Delete(item); err != nil {
		return err
	}
	m.logger.Info("item deleted", slog.String("fingerprint", item.Fingerprint()))
	return nil
}

// Get loads an item by full fingerprint or unique fingerprint prefix.
func (m *NoteManager) Get(ref string) (*store.Item, error) {
	fp := ref
	if !store.IsFingerprint(ref) {
		resolved, err := m.store.Resolve(ref)
		if err != nil {
			return nil, err
		}
		fp = resolved
	}
	return m.store.Get(fp)
}

// Search returns the items carrying every keyword of query.
func (m *NoteManager) Search(query string) ([]*store.Item, error) {
	items, err := m.store.Find(query)
	if err != nil {
		return nil, err
	}
	return m.limit(items), nil
}

// List returns every item in fingerprint order.
func (m *NoteManager) List() ([]*store.Item, error) {
	items, err := m.store.List()
	if err != nil {
		return nil, err
	}
	return m.limit(items), nil
}

// Keywords returns every keyword in use, sorted.
func (m *NoteManager) Keywords() ([]string, error) {
	return m.store.AllKeywords()
}

// Check audits the index. With repair set, found problems are fixed and
// the returned report describes the state before the repair.
func (m *NoteManager) Check(repair bool) (*store.Report, error) {
	report, err := m.store.Check()
	if err != nil {
		return nil, err
	}
	if repair && !report.Clean() {
		if err := m.store.Repair(report); err != nil {
			return report, fmt.Errorf("failed to repair: %w", err)
		}
	}
	return report, nil
}

// Stats describes the backend holding the notes.
func (m *NoteManager) Stats() (*store.Stats, error) {
	return m.store.Stats()
}

// GetResultLimit returns the configured result limit (0 means none).
func (m *NoteManager) GetResultLimit() int {
	return m.resultLimit
}

// Close releases store resources.
func (m *NoteManager) Close() error {
	return m.store.Close()
}

func (m *NoteManager) limit(items []*store.Item) []*store.Item {
	if m.resultLimit > 0 && len(items) > m.resultLimit {
		return items[:m.resultLimit]
	}
	return items
}

// isBinary detects if data is binary by checking for non-printable characters.
func isBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	// Check up to first 8KB for performance
	sampleSize := min(len(data), 8192)

	nonPrintable := 0
	for i := 0; i < sampleSize; i++ {
		b := data[i]

		// Null byte is a strong indicator of binary content
		if b == 0 {
			return true
		}

		if b < 32 && b != '\n' && b != '\r' && b != '\t' {
			nonPrintable++
		}
	}

	// If more than 30% of characters are non-printable, consider it binary
	return float64(nonPrintable)/float64(sampleSize) > 0.3
}
