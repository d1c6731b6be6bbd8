package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
)

// QueryModel is the keyword search box. The last word typed is completed
// from the keywords in use; tab accepts the suggestion.
type QueryModel struct {
	Input    textinput.Model
	keywords []string
}

// NewQueryModel creates a query box holding query.
func NewQueryModel(query string) QueryModel {
	ti := textinput.New()
	ti.Prompt = "keywords: "
	ti.Placeholder = "type keywords separated by spaces"
	ti.CharLimit = 256
	ti.Width = 60
	ti.ShowSuggestions = true
	ti.CompletionStyle = lipgloss.NewStyle().Foreground(colorSuggestion)
	ti.SetValue(query)
	ti.CursorEnd()

	return QueryModel{Input: ti}
}

// SetKeywords replaces the completion vocabulary.
func (q *QueryModel) SetKeywords(keywords []string) {
	q.keywords = keywords
	q.refreshSuggestions()
}

// Keywords returns the completion vocabulary.
func (q *QueryModel) Keywords() []string {
	return q.keywords
}

// Value returns the query text.
func (q *QueryModel) Value() string {
	return q.Input.Value()
}

// Focus gives the query box the cursor.
func (q *QueryModel) Focus() tea.Cmd {
	return q.Input.Focus()
}

// Blur takes the cursor away from the query box.
func (q *QueryModel) Blur() {
	q.Input.Blur()
}

// Focused reports whether the query box has the cursor.
func (q *QueryModel) Focused() bool {
	return q.Input.Focused()
}

// Update forwards msg to the text input and recomputes suggestions.
func (q *QueryModel) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	q.Input, cmd = q.Input.Update(msg)
	q.refreshSuggestions()
	return cmd
}

func (q *QueryModel) refreshSuggestions() {
	q.Input.SetSuggestions(completions(q.Input.Value(), q.keywords))
}

// completions returns every full query value that completes the last word
// of value with a known keyword. Keywords already in the query are not
// offered again.
func completions(value string, keywords []string) []string {
	head, last := "", value
	if i := strings.LastIndex(value, " "); i >= 0 {
		head, last = value[:i+1], value[i+1:]
	}
	if last == "" {
		return nil
	}

	used := strings.Split(head, " ")
	return lo.FilterMap(keywords, func(kw string, _ int) (string, bool) {
		if kw == last || !strings.HasPrefix(kw, last) || lo.Contains(used, kw) {
			return "", false
		}
		return head + kw, true
	})
}

// QueryView renders the query box on one line.
func QueryView(model QueryModel, width int) string {
	style := lipgloss.NewStyle().Width(width)
	if model.Focused() {
		style = style.Foreground(colorQuery)
	}
	return style.Render(model.Input.View())
}
