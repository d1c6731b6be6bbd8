// Package tui implements the interactive note browser: a keyword query
// box with completion, a result list and a note viewer.
package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/greminder/greminder/internal/clipboard"
	"github.com/greminder/greminder/internal/store"
	"github.com/samber/lo"
)

// Notes is the note source the browser reads from and deletes in.
type Notes interface {
	Search(query string) ([]*store.Item, error)
	List() ([]*store.Item, error)
	Keywords() ([]string, error)
	Delete(item *store.Item) error
}

// PaneType represents which pane is focused
type PaneType int

const (
	LeftPane PaneType = iota
	RightPane
)

// UIMode represents the current modal state of the application
type UIMode int

const (
	NormalMode UIMode = iota
	QueryMode
	HelpMode
	NumberInputMode
	DeleteMode
)

const flashDuration = 2 * time.Second

type searchResultsMsg struct {
	query string
	items []*store.Item
	err   error
}

type keywordsLoadedMsg struct {
	keywords []string
	err      error
}

type noteDeletedMsg struct {
	item *store.Item
	err  error
}

type flashExpiredMsg struct{}

// AppModel orchestrates all sub-models
type AppModel struct {
	Width       int
	Height      int
	LeftWidth   int
	RightWidth  int
	ActivePane  PaneType
	CurrentMode UIMode

	Query     QueryModel
	LeftPane  LeftPaneModel
	RightPane RightPaneModel
	Modal     ModalModel

	// Items are the results of LastQuery.
	Items     []*store.Item
	LastQuery string

	// Count prefix for movement keys, as in "10j"
	NumberBuffer string
	BufferPane   PaneType

	FlashMessage string
	FlashExpiry  time.Time
	FlashError   bool

	notes     Notes
	clipboard clipboard.Clipboard
}

// NewModel creates the browser over n, starting with query in the
// query box. The query box has focus.
func NewModel(n Notes, cb clipboard.Clipboard, query string) *AppModel {
	if cb == nil {
		cb = clipboard.Default()
	}

	width, height := 120, 24
	a := &AppModel{
		Width:       width,
		Height:      height,
		ActivePane:  LeftPane,
		CurrentMode: QueryMode,
		Query:       NewQueryModel(query),
		Modal:       NewModalModel(),
		notes:       n,
		clipboard:   cb,
	}
	a.LeftPane = NewLeftPaneModel(0, 0)
	a.RightPane = NewRightPaneModel(0, 0)
	a.layout(width, height)
	a.Query.Focus()
	return a
}

// Init loads the keyword vocabulary and the first results
func (a *AppModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.loadKeywords(), a.search())
}

// search runs the current query. A blank query lists every note.
func (a *AppModel) search() tea.Cmd {
	n, query := a.notes, a.Query.Value()
	return func() tea.Msg {
		var items []*store.Item
		var err error
		if strings.TrimSpace(query) == "" {
			items, err = n.List()
		} else {
			items, err = n.Search(query)
		}
		return searchResultsMsg{query: query, items: items, err: err}
	}
}

func (a *AppModel) loadKeywords() tea.Cmd {
	n := a.notes
	return func() tea.Msg {
		keywords, err := n.Keywords()
		return keywordsLoadedMsg{keywords: keywords, err: err}
	}
}

func (a *AppModel) deleteNote(item *store.Item) tea.Cmd {
	n := a.notes
	return func() tea.Msg {
		return noteDeletedMsg{item: item, err: n.Delete(item)}
	}
}

// Update handles app-level messages and routes to appropriate sub-models
func (a *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.layout(m.Width, m.Height)
		return a, nil
	case tea.KeyMsg:
		return a.handleKeyPress(m)
	case searchResultsMsg:
		return a.handleSearchResults(m)
	case keywordsLoadedMsg:
		if m.err != nil {
			return a, a.setErrorMessage(fmt.Sprintf("Error loading keywords: %v", m.err))
		}
		a.Query.SetKeywords(m.keywords)
		return a, nil
	case noteDeletedMsg:
		return a.handleNoteDeleted(m)
	case flashExpiredMsg:
		if !time.Now().Before(a.FlashExpiry) {
			a.FlashMessage = ""
			a.FlashExpiry = time.Time{}
		}
		return a, nil
	}

	// Cursor blinks and other text input traffic
	if a.CurrentMode == QueryMode {
		return a, a.Query.Update(msg)
	}
	return a, nil
}

// layout sizes the panes for a window of the given size
func (a *AppModel) layout(width, height int) {
	const (
		minTotalWidth  = 40
		minTotalHeight = 8
		minLeftWidth   = 15
		minRightWidth  = 20
		preferredLeft  = 40
		// Both pane borders
		borderSpacing = 4
	)

	a.Width = max(width, minTotalWidth)
	a.Height = max(height, minTotalHeight)
	a.LeftWidth = max(min(preferredLeft, a.Width*2/5), minLeftWidth)
	a.RightWidth = max(a.Width-a.LeftWidth-borderSpacing, minRightWidth)

	// Query line, status line and pane borders
	paneHeight := a.Height - 4
	a.LeftPane.Update(ResizeLeftPaneMsg{Width: a.LeftWidth, Height: paneHeight})
	a.RightPane.Update(ResizeRightPaneMsg{Width: a.RightWidth, Height: paneHeight})
	a.RightPane.ViewPos = min(a.RightPane.ViewPos, getMaxScroll(a.RightPane, a.SelectedItem()))
	a.Query.Input.Width = max(a.Width-len(a.Query.Input.Prompt)-1, 10)
}

func (a *AppModel) handleSearchResults(msg searchResultsMsg) (tea.Model, tea.Cmd) {
	if msg.query != a.Query.Value() {
		// The query changed while this search ran.
		return a, nil
	}
	if msg.err != nil {
		return a, a.setErrorMessage(fmt.Sprintf("Search failed: %v", msg.err))
	}

	a.Items = msg.items
	a.LastQuery = msg.query
	a.LeftPane.Update(GoToTopMsg{})
	a.RightPane.Update(UpdateContentMsg{})
	return a, nil
}

func (a *AppModel) handleNoteDeleted(msg noteDeletedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return a, a.setErrorMessage(fmt.Sprintf("Failed to delete note: %v", msg.err))
	}

	fp := msg.item.Fingerprint()
	a.Items = lo.Reject(a.Items, func(item *store.Item, _ int) bool {
		return item.Fingerprint() == fp
	})
	a.LeftPane.Update(JumpToIndexMsg{Index: min(a.LeftPane.Cursor, len(a.Items)-1), MaxIndex: len(a.Items) - 1})
	if len(a.Items) == 0 {
		a.LeftPane.Update(GoToTopMsg{})
	}
	a.RightPane.Update(UpdateContentMsg{})

	// Keywords used only by the deleted note disappear.
	return a, tea.Batch(a.setFlashMessage("Note deleted"), a.loadKeywords())
}

// handleKeyPress processes key press events using mode-first architecture
func (a *AppModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.CurrentMode {
	case QueryMode:
		return a.handleQueryModeKeys(msg)
	case HelpMode:
		return a.handleHelpModeKeys(msg.String())
	case NumberInputMode:
		return a.handleNumberInputModeKeys(msg.String())
	case DeleteMode:
		return a.handleDeleteModeKeys(msg.String())
	default:
		return a.handleNormalModeKeys(msg.String())
	}
}

// handleQueryModeKeys edits the query and searches as it changes
func (a *AppModel) handleQueryModeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "esc", "enter":
		a.Query.Blur()
		a.CurrentMode = NormalMode
		a.ActivePane = LeftPane
		return a, nil
	}

	before := a.Query.Value()
	cmd := a.Query.Update(msg)
	if a.Query.Value() != before {
		return a, tea.Batch(cmd, a.search())
	}
	return a, cmd
}

// handleHelpModeKeys processes keys when in help mode
func (a *AppModel) handleHelpModeKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c":
		return a, tea.Quit
	case "z", "esc", "q":
		a.CurrentMode = NormalMode
	}
	return a, nil
}

// handleNumberInputModeKeys processes keys when in number input mode
func (a *AppModel) handleNumberInputModeKeys(key string) (tea.Model, tea.Cmd) {
	switch {
	case key == "ctrl+c":
		return a, tea.Quit
	case key == "esc":
		a.NumberBuffer = ""
		a.CurrentMode = NormalMode
	case key == "backspace":
		a.NumberBuffer = a.NumberBuffer[:len(a.NumberBuffer)-1]
		if a.NumberBuffer == "" {
			a.CurrentMode = NormalMode
		}
	case len(key) == 1 && key >= "0" && key <= "9":
		a.NumberBuffer += key
	case isMovementCommand(key):
		multiplier, err := strconv.Atoi(a.NumberBuffer)
		if err != nil {
			multiplier = 1
		}
		a.NumberBuffer = ""
		a.CurrentMode = NormalMode
		return a.executeCommand(multiplier, key, a.BufferPane)
	default:
		a.NumberBuffer = ""
		a.CurrentMode = NormalMode
	}
	return a, nil
}

// handleDeleteModeKeys processes keys when in delete confirmation mode
func (a *AppModel) handleDeleteModeKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c":
		return a, tea.Quit
	case "y", "Y":
		a.Modal.Update(HideModalMsg{})
		a.CurrentMode = NormalMode
		if item := a.SelectedItem(); item != nil {
			return a, a.deleteNote(item)
		}
	case "n", "N", "esc":
		a.Modal.Update(HideModalMsg{})
		a.CurrentMode = NormalMode
	}
	return a, nil
}

// handleNormalModeKeys processes keys when in normal mode
func (a *AppModel) handleNormalModeKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", "q", "esc":
		return a, tea.Quit
	case "/", "i":
		a.CurrentMode = QueryMode
		return a, a.Query.Focus()
	case "z":
		a.CurrentMode = HelpMode
		return a, nil
	case "c":
		return a, a.copyToClipboard()
	case "r":
		return a, tea.Batch(a.search(), a.loadKeywords())
	case "tab":
		if a.ActivePane == LeftPane {
			a.ActivePane = RightPane
		} else {
			a.ActivePane = LeftPane
		}
		return a, nil
	case "h", "left":
		a.ActivePane = LeftPane
		return a, nil
	case "l", "right":
		a.ActivePane = RightPane
		return a, nil
	}

	if key >= "1" && key <= "9" && len(key) == 1 {
		a.NumberBuffer = key
		a.BufferPane = a.ActivePane
		a.CurrentMode = NumberInputMode
		return a, nil
	}

	if isMovementCommand(key) {
		return a.executeCommand(1, key, a.ActivePane)
	}

	switch a.ActivePane {
	case LeftPane:
		return a.handleLeftPaneKeys(key)
	default:
		return a.handleRightPaneKeys(key)
	}
}

// handleLeftPaneKeys processes keys when the result list is focused
func (a *AppModel) handleLeftPaneKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "d":
		if item := a.SelectedItem(); item != nil {
			a.CurrentMode = DeleteMode
			a.Modal.Update(ShowDeleteConfirmation(item))
		}
	case "enter":
		if a.SelectedItem() != nil {
			a.ActivePane = RightPane
		}
	}
	return a, nil
}

// handleRightPaneKeys processes keys when the viewer is focused
func (a *AppModel) handleRightPaneKeys(key string) (tea.Model, tea.Cmd) {
	maxScroll := getMaxScroll(a.RightPane, a.SelectedItem())
	page := a.RightPane.textHeight()

	switch key {
	case "ctrl+u":
		a.RightPane.Update(PageUpMsg{})
	case "ctrl+d":
		a.RightPane.Update(PageDownMsg{MaxScroll: maxScroll})
	case "ctrl+b":
		a.RightPane.Update(JumpMsg{Direction: "k", Lines: page, MaxScroll: maxScroll})
	case "ctrl+f":
		a.RightPane.Update(JumpMsg{Direction: "j", Lines: page, MaxScroll: maxScroll})
	}
	return a, nil
}

// isMovementCommand checks if a key is a movement command that can use multipliers
func isMovementCommand(key string) bool {
	switch key {
	case "up", "k", "down", "j", "g", "G":
		return true
	}
	return false
}

// executeCommand executes a movement with a count on the given pane
func (a *AppModel) executeCommand(multiplier int, key string, pane PaneType) (tea.Model, tea.Cmd) {
	if pane == LeftPane {
		maxIndex := len(a.Items) - 1
		if maxIndex < 0 {
			return a, nil
		}

		switch key {
		case "up", "k":
			a.LeftPane.Update(JumpToIndexMsg{Index: max(a.LeftPane.Cursor-multiplier, 0), MaxIndex: maxIndex})
		case "down", "j":
			a.LeftPane.Update(JumpToIndexMsg{Index: min(a.LeftPane.Cursor+multiplier, maxIndex), MaxIndex: maxIndex})
		case "g":
			if multiplier > 1 {
				a.LeftPane.Update(JumpToIndexMsg{Index: min(multiplier-1, maxIndex), MaxIndex: maxIndex})
			} else {
				a.LeftPane.Update(GoToTopMsg{})
			}
		case "G":
			a.LeftPane.Update(GoToBottomMsg{MaxIndex: maxIndex})
		}
		a.RightPane.Update(UpdateContentMsg{})
		return a, nil
	}

	maxScroll := getMaxScroll(a.RightPane, a.SelectedItem())
	switch key {
	case "up", "k":
		a.RightPane.Update(JumpMsg{Direction: "k", Lines: multiplier, MaxScroll: maxScroll})
	case "down", "j":
		a.RightPane.Update(JumpMsg{Direction: "j", Lines: multiplier, MaxScroll: maxScroll})
	case "g":
		if multiplier > 1 {
			a.RightPane.ViewPos = min(multiplier-1, maxScroll)
		} else {
			a.RightPane.Update(ScrollToTopMsg{})
		}
	case "G":
		a.RightPane.Update(ScrollToBottomMsg{MaxScroll: maxScroll})
	}
	return a, nil
}

// SelectedItem returns the note under the cursor, or nil.
func (a *AppModel) SelectedItem() *store.Item {
	if a.LeftPane.Cursor < 0 || a.LeftPane.Cursor >= len(a.Items) {
		return nil
	}
	return a.Items[a.LeftPane.Cursor]
}

// setFlashMessage shows message in the status line for flashDuration
func (a *AppModel) setFlashMessage(message string) tea.Cmd {
	a.FlashMessage = message
	a.FlashError = false
	a.FlashExpiry = time.Now().Add(flashDuration)
	return tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return flashExpiredMsg{}
	})
}

// setErrorMessage is setFlashMessage rendered as a failure
func (a *AppModel) setErrorMessage(message string) tea.Cmd {
	cmd := a.setFlashMessage(message)
	a.FlashError = true
	return cmd
}

// copyToClipboard copies the selected note to the clipboard
func (a *AppModel) copyToClipboard() tea.Cmd {
	item := a.SelectedItem()
	if item == nil {
		return a.setFlashMessage("No note selected")
	}
	if !a.clipboard.IsSupported() {
		return a.setErrorMessage("Clipboard not available")
	}
	if err := clipboard.WriteText(a.clipboard, item.Contents()); err != nil {
		return a.setErrorMessage(fmt.Sprintf("Error writing clipboard: %v", err))
	}
	return a.setFlashMessage(fmt.Sprintf("Copied %d bytes to clipboard", len(item.Contents())))
}

// View method for tea.Model compatibility
func (a *AppModel) View() string {
	return AppView(*a)
}

// AppView renders the complete application
func AppView(model AppModel) string {
	if model.CurrentMode == HelpMode {
		return renderHelpView(model) + "\n" + renderStatusLine(model)
	}

	var body string
	if model.Modal.Active {
		body = ModalView(model.Modal, model.Width, model.Height-2)
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			LeftPaneView(model.LeftPane, model.Items, model.ActivePane == LeftPane && model.CurrentMode != QueryMode),
			RightPaneView(model.RightPane, model.SelectedItem(), model.ActivePane == RightPane && model.CurrentMode != QueryMode),
		)
	}

	return QueryView(model.Query, model.Width) + "\n" + body + "\n" + renderStatusLine(model)
}

// renderStatusLine renders the bottom status line
func renderStatusLine(model AppModel) string {
	style := lipgloss.NewStyle().Width(model.Width)

	if model.FlashMessage != "" && time.Now().Before(model.FlashExpiry) {
		if model.FlashError {
			return style.Inherit(errorStyle).Render(model.FlashMessage)
		}
		return style.Inherit(flashStyle).Render(model.FlashMessage)
	}

	var status string
	switch model.CurrentMode {
	case QueryMode:
		status = "Tab: complete keyword  Enter/Esc: browse results"
	case HelpMode:
		status = "Press z to return, q to quit"
	case NumberInputMode:
		status = model.NumberBuffer
	case DeleteMode:
		status = "Delete note? y/n"
	default:
		status = "/ search  c copy  d delete  z help  q quit"
	}
	return style.Render(status)
}

// renderHelpView renders the key reference
func renderHelpView(model AppModel) string {
	help := `greminder - keyword-indexed notes

SEARCH:
  /, i        Edit the keyword query (results update as you type)
  Tab         Complete the keyword being typed
  Enter, Esc  Leave the query box
  r           Reload results and keywords

NAVIGATION:
  j, ↓        Next note / scroll down
  k, ↑        Previous note / scroll up
  g, G        First / last (with count: go to N)
  #j, #k      Move N notes or lines
  Tab         Toggle between list and viewer
  h, l        Focus list / viewer
  Enter       Open the selected note in the viewer
  Ctrl+u/d    Half page up / down (viewer)
  Ctrl+b/f    Page up / down (viewer)

NOTES:
  c           Copy the selected note to the clipboard
  d           Delete the selected note

GLOBAL:
  z           Toggle this help
  q, Esc      Quit
  Ctrl+c      Force quit`

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(1).
		Width(max(model.Width-4, 10)).
		Height(max(model.Height-4, 1)).
		Render(help)
}
