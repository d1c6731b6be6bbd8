package store

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// FingerprintLen is the length of a hex-encoded SHA-1 fingerprint.
const FingerprintLen = sha1.Size * 2

// Item is a single note: its text, the fingerprint derived from that text,
// and the keywords it is filed under.
//
// The fingerprint is never set by callers. It is computed from the contents
// on construction and on every SetContents.
type Item struct {
	// contents is the note text (non-empty).
	contents string

	// fingerprint is the hex SHA-1 of contents and the primary storage key.
	fingerprint string

	// keywords keeps insertion order for display. Duplicates are allowed
	// here but contribute a single index entry.
	keywords []string
}

// NewItem creates an item from keywords and contents.
// At least one keyword is required so the item is reachable through Find.
func NewItem(keywords []string, contents string) (*Item, error) {
	if contents == "" {
		return nil, ErrEmptyContents
	}
	if len(keywords) == 0 {
		return nil, ErrNoKeywords
	}
	for _, kw := range keywords {
		if err := validateKeyword(kw); err != nil {
			return nil, err
		}
	}

	return &Item{
		contents:    contents,
		fingerprint: Fingerprint(contents),
		keywords:    append([]string(nil), keywords...),
	}, nil
}

// Contents returns the note text.
func (i *Item) Contents() string {
	return i.contents
}

// Fingerprint returns the hex-encoded content hash.
func (i *Item) Fingerprint() string {
	return i.fingerprint
}

// Keywords returns a copy of the keywords in insertion order.
func (i *Item) Keywords() []string {
	return append([]string(nil), i.keywords...)
}

// HasKeyword reports whether kw is one of the item's keywords.
func (i *Item) HasKeyword(kw string) bool {
	return lo.Contains(i.keywords, kw)
}

// SetContents replaces the contents and recomputes the fingerprint.
// Nothing is written to a store.
func (i *Item) SetContents(contents string) error {
	if contents == "" {
		return ErrEmptyContents
	}
	i.contents = contents
	i.fingerprint = Fingerprint(contents)
	return nil
}

// AddKeyword appends kw to the keyword list.
func (i *Item) AddKeyword(kw string) error {
	if err := validateKeyword(kw); err != nil {
		return err
	}
	i.keywords = append(i.keywords, kw)
	return nil
}

// RemoveKeyword removes the first exact match of kw. It is a no-op when kw
// is absent.
func (i *Item) RemoveKeyword(kw string) {
	_, idx, found := lo.FindIndexOf(i.keywords, func(k string) bool { return k == kw })
	if !found {
		return
	}
	i.keywords = append(i.keywords[:idx], i.keywords[idx+1:]...)
}

// Clone returns an independent copy of the item.
func (i *Item) Clone() *Item {
	return &Item{
		contents:    i.contents,
		fingerprint: i.fingerprint,
		keywords:    i.Keywords(),
	}
}

// indexKeywords returns the distinct keywords, first occurrence first.
func (i *Item) indexKeywords() []string {
	return lo.Uniq(i.keywords)
}

func (i *Item) String() string {
	return fmt.Sprintf("%s [%s]", i.fingerprint, strings.Join(i.keywords, " "))
}

// Fingerprint returns the hex-encoded SHA-1 of contents.
func Fingerprint(contents string) string {
	sum := sha1.Sum([]byte(contents))
	return hex.EncodeToString(sum[:])
}

// IsFingerprint reports whether s has the shape of a fingerprint:
// FingerprintLen lowercase hex digits.
func IsFingerprint(s string) bool {
	if len(s) != FingerprintLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// validateKeyword rejects keywords that would break the composite key
// layout or that a query could never match.
func validateKeyword(kw string) error {
	switch {
	case kw == "":
		return fmt.Errorf("%w: empty keyword", ErrInvalidKeyword)
	case strings.IndexByte(kw, Separator) >= 0:
		return fmt.Errorf("%w: %q contains the key separator", ErrInvalidKeyword, kw)
	case strings.Contains(kw, QueryDelimiter):
		return fmt.Errorf("%w: %q contains a space", ErrInvalidKeyword, kw)
	case IsFingerprint(kw):
		// A fingerprint-shaped keyword makes forward and reverse records
		// indistinguishable.
		return fmt.Errorf("%w: %q has the shape of a fingerprint", ErrInvalidKeyword, kw)
	}
	return nil
}
