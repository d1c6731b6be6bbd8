package tui

import (
	"fmt"
	"strings"

	"github.com/greminder/greminder/internal/notes"
	"github.com/greminder/greminder/internal/store"
)

// LeftPaneMsg represents messages that the result list handles
type LeftPaneMsg interface {
	isLeftPaneMsg()
}

type NavigateUpMsg struct{}

func (NavigateUpMsg) isLeftPaneMsg() {}

type NavigateDownMsg struct {
	MaxIndex int
}

func (NavigateDownMsg) isLeftPaneMsg() {}

type GoToTopMsg struct{}

func (GoToTopMsg) isLeftPaneMsg() {}

type GoToBottomMsg struct {
	MaxIndex int
}

func (GoToBottomMsg) isLeftPaneMsg() {}

type JumpToIndexMsg struct {
	Index    int
	MaxIndex int
}

func (JumpToIndexMsg) isLeftPaneMsg() {}

type ResizeLeftPaneMsg struct {
	Width  int
	Height int
}

func (ResizeLeftPaneMsg) isLeftPaneMsg() {}

// LeftPaneModel holds the state of the result list
type LeftPaneModel struct {
	Cursor int // Selected result
	Offset int // First visible result
	Width  int
	Height int
}

// NewLeftPaneModel creates a result list of the given size
func NewLeftPaneModel(width, height int) LeftPaneModel {
	return LeftPaneModel{
		Width:  width,
		Height: height,
	}
}

// Update applies a list message.
func (l *LeftPaneModel) Update(msg LeftPaneMsg) {
	switch m := msg.(type) {
	case NavigateUpMsg:
		if l.Cursor > 0 {
			l.Cursor--
		}
	case NavigateDownMsg:
		if l.Cursor < m.MaxIndex {
			l.Cursor++
		}
	case GoToTopMsg:
		l.Cursor = 0
	case GoToBottomMsg:
		l.Cursor = max(m.MaxIndex, 0)
	case JumpToIndexMsg:
		if m.Index >= 0 && m.Index <= m.MaxIndex {
			l.Cursor = m.Index
		}
	case ResizeLeftPaneMsg:
		l.Width = m.Width
		l.Height = m.Height
	}
	l.scrollToCursor()
}

// visibleRows is the number of results that fit below the pane title.
func (l *LeftPaneModel) visibleRows() int {
	return max(l.Height-2, 1)
}

func (l *LeftPaneModel) scrollToCursor() {
	rows := l.visibleRows()
	if l.Cursor < l.Offset {
		l.Offset = l.Cursor
	}
	if l.Cursor >= l.Offset+rows {
		l.Offset = l.Cursor - rows + 1
	}
}

// LeftPaneView renders the result list
func LeftPaneView(model LeftPaneModel, items []*store.Item, focused bool) string {
	var content strings.Builder

	title := fmt.Sprintf("Notes (%d)", len(items))
	if focused {
		title = "● " + title
	}
	content.WriteString(titleStyle.Render(title) + "\n\n")

	if len(items) == 0 {
		content.WriteString(mutedStyle.Render("No matching notes"))
	}

	lineWidth := max(model.Width-2, 1)
	end := min(model.Offset+model.visibleRows(), len(items))
	for i := model.Offset; i < end; i++ {
		item := items[i]
		line := notes.ShortFingerprint(item.Fingerprint()) + " " +
			notes.GenerateTitle(item.Contents())
		line = notes.TruncateTitle(line, lineWidth)

		if i == model.Cursor {
			line = selectedStyle.Width(lineWidth).Render(line)
		}
		content.WriteString(line + "\n")
	}

	return paneStyle(model.Width, model.Height, focused).
		Render(strings.TrimSuffix(content.String(), "\n"))
}
