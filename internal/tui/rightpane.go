package tui

import (
	"fmt"
	"strings"

	"github.com/acarl005/stripansi"
	"github.com/greminder/greminder/internal/notes"
	"github.com/greminder/greminder/internal/store"
)

// RightPaneMsg represents messages that the note viewer handles
type RightPaneMsg interface {
	isRightPaneMsg()
}

type ScrollToTopMsg struct{}

func (ScrollToTopMsg) isRightPaneMsg() {}

type ScrollToBottomMsg struct {
	MaxScroll int
}

func (ScrollToBottomMsg) isRightPaneMsg() {}

type PageUpMsg struct{}

func (PageUpMsg) isRightPaneMsg() {}

type PageDownMsg struct {
	MaxScroll int
}

func (PageDownMsg) isRightPaneMsg() {}

type JumpMsg struct {
	Direction string // "j" for down, "k" for up
	Lines     int
	MaxScroll int
}

func (JumpMsg) isRightPaneMsg() {}

type ResizeRightPaneMsg struct {
	Width  int
	Height int
}

func (ResizeRightPaneMsg) isRightPaneMsg() {}

// UpdateContentMsg resets the viewer for a newly selected note.
type UpdateContentMsg struct{}

func (UpdateContentMsg) isRightPaneMsg() {}

// RightPaneModel holds the state of the note viewer
type RightPaneModel struct {
	Width   int
	Height  int
	ViewPos int // First visible wrapped line
}

// NewRightPaneModel creates a viewer of the given size
func NewRightPaneModel(width, height int) RightPaneModel {
	return RightPaneModel{
		Width:  width,
		Height: height,
	}
}

// Update applies a viewer message.
func (r *RightPaneModel) Update(msg RightPaneMsg) {
	switch m := msg.(type) {
	case ScrollToTopMsg:
		r.ViewPos = 0
	case ScrollToBottomMsg:
		r.ViewPos = m.MaxScroll
	case PageUpMsg:
		r.ViewPos = max(r.ViewPos-r.pageSize(), 0)
	case PageDownMsg:
		r.ViewPos = min(r.ViewPos+r.pageSize(), m.MaxScroll)
	case JumpMsg:
		switch m.Direction {
		case "j":
			r.ViewPos = min(r.ViewPos+m.Lines, m.MaxScroll)
		case "k":
			r.ViewPos = max(r.ViewPos-m.Lines, 0)
		}
	case ResizeRightPaneMsg:
		r.Width = m.Width
		r.Height = m.Height
	case UpdateContentMsg:
		r.ViewPos = 0
	}
}

// pageSize is half the visible text height.
func (r *RightPaneModel) pageSize() int {
	return max(r.textHeight()/2, 1)
}

// textHeight is the number of content lines below the header.
func (r *RightPaneModel) textHeight() int {
	return max(r.Height-3, 1)
}

// textWidth is the wrap width inside border and padding.
func (r *RightPaneModel) textWidth() int {
	return max(r.Width-2, 1)
}

// wrappedLines returns the note contents wrapped to the viewer width,
// with terminal escape sequences removed.
func wrappedLines(model RightPaneModel, item *store.Item) []string {
	if item == nil {
		return nil
	}
	return WrapText(stripansi.Strip(item.Contents()), model.textWidth())
}

// getMaxScroll returns the largest useful ViewPos for item.
func getMaxScroll(model RightPaneModel, item *store.Item) int {
	return max(len(wrappedLines(model, item))-model.textHeight(), 0)
}

// RightPaneView renders the note viewer
func RightPaneView(model RightPaneModel, item *store.Item, focused bool) string {
	var content strings.Builder

	if item == nil {
		content.WriteString(titleStyle.Render("Note") + "\n\n")
		content.WriteString(mutedStyle.Render("No note selected"))
		return paneStyle(model.Width, model.Height, focused).Render(content.String())
	}

	lines := wrappedLines(model, item)
	height := model.textHeight()

	title := notes.ShortFingerprint(item.Fingerprint())
	if focused {
		title = "● " + title
	}
	if len(lines) > height {
		bottom := min(model.ViewPos+height, len(lines))
		title += fmt.Sprintf(" (%d-%d/%d)", model.ViewPos+1, bottom, len(lines))
	}
	content.WriteString(titleStyle.Render(title) + "\n")

	keywords := notes.TruncateTitle(strings.Join(item.Keywords(), " "), model.textWidth())
	content.WriteString(keywordStyle.Render(keywords) + "\n\n")

	end := min(model.ViewPos+height, len(lines))
	for i := model.ViewPos; i < end; i++ {
		content.WriteString(lines[i] + "\n")
	}

	return paneStyle(model.Width, model.Height, focused).
		Render(strings.TrimSuffix(content.String(), "\n"))
}
