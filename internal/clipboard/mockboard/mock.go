// Package mockboard provides a mock clipboard implementation for testing.
package mockboard

import (
	"bytes"
	"errors"
	"io"
)

// ErrUnsupported is returned by a clipboard marked unsupported.
var ErrUnsupported = errors.New("clipboard not supported")

// MockClipboard implements clipboard.Clipboard in memory.
type MockClipboard struct {
	data        []byte
	unsupported bool
	writes      int
}

// New creates a new MockClipboard instance
func New() *MockClipboard {
	return &MockClipboard{}
}

// Read implements Clipboard.Read for MockClipboard
func (m *MockClipboard) Read() (io.ReadCloser, error) {
	if m.unsupported {
		return nil, ErrUnsupported
	}
	return io.NopCloser(bytes.NewReader(m.data)), nil
}

// Write implements Clipboard.Write for MockClipboard
func (m *MockClipboard) Write(r io.Reader) error {
	if m.unsupported {
		return ErrUnsupported
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.data = data
	m.writes++
	return nil
}

// SetData sets the mock clipboard data directly (for testing)
func (m *MockClipboard) SetData(data []byte) {
	m.data = data
}

// GetData returns the current clipboard data (for testing)
func (m *MockClipboard) GetData() []byte {
	return m.data
}

// Writes returns how many times Write succeeded.
func (m *MockClipboard) Writes() int {
	return m.writes
}

// SetUnsupported makes every later Read and Write fail.
func (m *MockClipboard) SetUnsupported(unsupported bool) {
	m.unsupported = unsupported
}

// IsSupported reports whether the mock is usable.
func (m *MockClipboard) IsSupported() bool {
	return !m.unsupported
}
