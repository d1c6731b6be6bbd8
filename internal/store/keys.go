package store

import (
	"bytes"
)

// Separator joins the two halves of forward and reverse index keys. It
// cannot appear in a fingerprint and keywords are not allowed to contain it.
const Separator byte = 0x00

// QueryDelimiter separates the keywords of a Find query.
const QueryDelimiter = " "

// compositeKey builds left 0x00 right.
func compositeKey(left, right string) []byte {
	key := make([]byte, 0, len(left)+1+len(right))
	key = append(key, left...)
	key = append(key, Separator)
	key = append(key, right...)
	return key
}

// scanPrefix is the seek position and required prefix for every record
// whose left half is exactly left.
func scanPrefix(left string) []byte {
	return compositeKey(left, "")
}

// splitComposite splits key at its first separator. ok is false for
// primary records.
func splitComposite(key []byte) (left, right string, ok bool) {
	idx := bytes.IndexByte(key, Separator)
	if idx < 0 {
		return "", "", false
	}
	return string(key[:idx]), string(key[idx+1:]), true
}

// hasLeft reports whether key is a composite record whose left half is
// exactly the left half encoded in prefix. prefix always ends with the
// separator, so a scan for "foo" stops at "foobar\x00..." instead of
// treating it as a match.
func hasLeft(key, prefix []byte) bool {
	return bytes.HasPrefix(key, prefix)
}
