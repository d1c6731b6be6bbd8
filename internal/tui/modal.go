package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/greminder/greminder/internal/notes"
	"github.com/greminder/greminder/internal/store"
)

// ModalMsg represents messages that the modal component handles
type ModalMsg interface {
	isModalMsg()
}

type ShowModalMsg struct {
	Title   string
	Content string
	Options string
}

func (ShowModalMsg) isModalMsg() {}

type HideModalMsg struct{}

func (HideModalMsg) isModalMsg() {}

// ModalModel holds the state for modal dialogs
type ModalModel struct {
	Active  bool
	Title   string
	Content string
	Options string
	Width   int
}

// NewModalModel creates a new modal model
func NewModalModel() ModalModel {
	return ModalModel{Width: 60}
}

// Update handles modal messages
func (m *ModalModel) Update(msg ModalMsg) {
	switch msg := msg.(type) {
	case ShowModalMsg:
		m.Active = true
		m.Title = msg.Title
		m.Content = msg.Content
		m.Options = msg.Options
	case HideModalMsg:
		m.Active = false
		m.Title = ""
		m.Content = ""
		m.Options = ""
	}
}

// ModalView renders the modal centered in a window of the given size
func ModalView(model ModalModel, windowWidth, windowHeight int) string {
	parts := []string{titleStyle.Render(model.Title)}
	if model.Content != "" {
		parts = append(parts, model.Content)
	}
	if model.Options != "" {
		parts = append(parts, mutedStyle.Render(model.Options))
	}

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorDanger).
		Padding(1, 2).
		Width(min(model.Width, max(windowWidth-4, 10))).
		Render(strings.Join(parts, "\n\n"))

	return lipgloss.Place(windowWidth, windowHeight, lipgloss.Center, lipgloss.Center, modal)
}

// ShowDeleteConfirmation creates a delete confirmation modal
func ShowDeleteConfirmation(item *store.Item) ShowModalMsg {
	return ShowModalMsg{
		Title: "Delete note?",
		Content: fmt.Sprintf("%s  %s\n[%s]",
			notes.ShortFingerprint(item.Fingerprint()),
			notes.TruncateTitle(notes.GenerateTitle(item.Contents()), 40),
			strings.Join(item.Keywords(), " ")),
		Options: "[Y] Yes, delete    [N] No, cancel",
	}
}
