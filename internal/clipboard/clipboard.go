// Package clipboard moves note contents between greminder and the
// desktop clipboard.
package clipboard

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/greminder/greminder/internal/clipboard/sysboard"
	nativeboard "golang.design/x/clipboard"
)

// Clipboard is a source and sink of clipboard text.
type Clipboard interface {
	Read() (io.ReadCloser, error)
	Write(r io.Reader) error
	IsSupported() bool
}

// ReadText reads the clipboard as text. One trailing newline is removed.
func ReadText(cb Clipboard) (string, error) {
	rc, err := cb.Read()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	text := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(text, "\r"), nil
}

// WriteText replaces the clipboard contents with text.
func WriteText(cb Clipboard, text string) error {
	return cb.Write(strings.NewReader(text))
}

// NativeClipboard talks to the platform clipboard API directly.
type NativeClipboard struct{}

var (
	initOnce sync.Once
	initErr  error
)

func initNative() error {
	initOnce.Do(func() {
		initErr = nativeboard.Init()
	})
	return initErr
}

// IsSupported reports whether the platform clipboard could be initialized.
func (NativeClipboard) IsSupported() bool {
	return initNative() == nil
}

// Read returns the text currently on the clipboard.
func (NativeClipboard) Read() (io.ReadCloser, error) {
	if err := initNative(); err != nil {
		return nil, fmt.Errorf("clipboard unavailable: %w", err)
	}
	return io.NopCloser(bytes.NewReader(nativeboard.Read(nativeboard.FmtText))), nil
}

// Write puts the text read from r on the clipboard.
func (NativeClipboard) Write(r io.Reader) error {
	if err := initNative(); err != nil {
		return fmt.Errorf("clipboard unavailable: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	nativeboard.Write(nativeboard.FmtText, data)
	return nil
}

// Default returns the native clipboard when available and the
// command-line tools (pbcopy, xclip, xsel) otherwise.
func Default() Clipboard {
	native := NativeClipboard{}
	if native.IsSupported() {
		return native
	}
	return sysboard.New()
}
