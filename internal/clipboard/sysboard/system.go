// Package sysboard implements clipboard access through command-line tools:
// pbcopy/pbpaste on macOS, wl-copy/wl-paste on Wayland and xclip or xsel
// on X11.
package sysboard

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
)

// tool is a pair of commands that read and write the clipboard.
type tool struct {
	read  []string
	write []string
}

var (
	pasteboard = tool{read: []string{"pbpaste"}, write: []string{"pbcopy"}}
	wayland    = tool{read: []string{"wl-paste", "--no-newline"}, write: []string{"wl-copy"}}
	xclip      = tool{read: []string{"xclip", "-selection", "clipboard", "-o"}, write: []string{"xclip", "-selection", "clipboard"}}
	xsel       = tool{read: []string{"xsel", "--clipboard", "--output"}, write: []string{"xsel", "--clipboard", "--input"}}
)

// SystemClipboard implements clipboard.Clipboard using system commands
type SystemClipboard struct {
	goos     string
	lookPath func(string) (string, error)
	getenv   func(string) string
}

// New creates a new SystemClipboard instance
func New() *SystemClipboard {
	return &SystemClipboard{
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		getenv:   os.Getenv,
	}
}

// candidates lists the tools worth trying on this system, in order.
func (s *SystemClipboard) candidates() []tool {
	switch s.goos {
	case "darwin":
		return []tool{pasteboard}
	case "linux", "freebsd", "openbsd", "netbsd":
		var tools []tool
		if s.getenv("WAYLAND_DISPLAY") != "" {
			tools = append(tools, wayland)
		}
		return append(tools, xclip, xsel)
	default:
		return nil
	}
}

// available returns the candidate tools whose commands are installed.
func (s *SystemClipboard) available() []tool {
	var tools []tool
	for _, t := range s.candidates() {
		if _, err := s.lookPath(t.read[0]); err != nil {
			continue
		}
		if _, err := s.lookPath(t.write[0]); err != nil {
			continue
		}
		tools = append(tools, t)
	}
	return tools
}

// IsSupported returns true if clipboard operations are supported on this system
func (s *SystemClipboard) IsSupported() bool {
	return len(s.available()) > 0
}

// Read streams the clipboard contents from the first tool that starts.
func (s *SystemClipboard) Read() (io.ReadCloser, error) {
	tools := s.available()
	if len(tools) == 0 {
		return nil, fmt.Errorf("clipboard operations not supported on %s", s.goos)
	}

	var lastErr error
	for _, t := range tools {
		reader, err := readWithCommand(t.read[0], t.read[1:]...)
		if err == nil {
			return reader, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("failed to read clipboard: %w", lastErr)
}

// Write sends r to the clipboard through the first available tool.
// r is consumed by the first attempt, so only that tool is tried.
func (s *SystemClipboard) Write(r io.Reader) error {
	tools := s.available()
	if len(tools) == 0 {
		return fmt.Errorf("clipboard operations not supported on %s", s.goos)
	}

	t := tools[0]
	if err := writeWithCommand(r, t.write[0], t.write[1:]...); err != nil {
		return fmt.Errorf("failed to run %s: %w", t.write[0], err)
	}
	return nil
}

// cmdReadCloser wraps a command's stdout and ensures the command is waited on when closed
type cmdReadCloser struct {
	stdout io.ReadCloser
	cmd    *exec.Cmd
}

func (c *cmdReadCloser) Read(p []byte) (n int, err error) {
	return c.stdout.Read(p)
}

func (c *cmdReadCloser) Close() error {
	if err := c.stdout.Close(); err != nil {
		c.cmd.Wait()
		return err
	}

	if runtime.GOOS != "windows" {
		c.cmd.Process.Signal(os.Interrupt)
	}
	return c.cmd.Wait()
}

// readWithCommand executes a command and returns its output as a stream
func readWithCommand(name string, args ...string) (io.ReadCloser, error) {
	cmd := exec.Command(name, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	return &cmdReadCloser{stdout: stdout, cmd: cmd}, nil
}

// writeWithCommand executes a command with data as stdin
func writeWithCommand(r io.Reader, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = r

	return cmd.Run()
}
