package main

import (
	"fmt"
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/greminder/greminder/internal/clipboard/mockboard"
	"github.com/greminder/greminder/internal/notes"
	"github.com/greminder/greminder/internal/store"
	"github.com/greminder/greminder/internal/store/memstore"
	"github.com/greminder/greminder/internal/tui"
)

// Renders the browser over sample notes and checks that both panes keep
// their borders.
func main() {
	fmt.Println("Testing TUI Border Layout")
	fmt.Println("=========================")

	nm := notes.NewNoteManager(store.New(memstore.NewMemoryStore()))
	defer nm.Close()

	for i := range 5 {
		contents := fmt.Sprintf("Sample note %d\n%s", i, strings.Repeat("lorem ipsum dolor sit amet ", 20))
		if _, err := nm.Create([]string{"sample", fmt.Sprintf("n%d", i)}, contents); err != nil {
			log.Fatalf("Error storing note: %v", err)
		}
	}

	model := tui.NewModel(nm, mockboard.New(), "sample")
	model.Update(tea.WindowSizeMsg{Width: 120, Height: 20})
	items, err := nm.Search("sample")
	if err != nil {
		log.Fatalf("Error searching: %v", err)
	}
	model.Items = items

	lines := strings.Split(model.View(), "\n")
	fmt.Printf("Rendered TUI view (%d lines):\n", len(lines))
	fmt.Println(strings.Repeat("=", 120))
	for i, line := range lines[:min(15, len(lines))] {
		fmt.Printf("Line %2d: %s\n", i, line)
	}
	fmt.Println(strings.Repeat("=", 120))

	var borderCheckLine string
	for i, line := range lines {
		if i > 2 && i < len(lines)-3 && strings.Count(line, "│") >= 4 {
			borderCheckLine = line
			break
		}
	}
	if borderCheckLine == "" {
		fmt.Println("Missing border characters")
		return
	}

	var positions []int
	col := 0
	for _, r := range borderCheckLine {
		if r == '│' {
			positions = append(positions, col)
		}
		col++
	}
	fmt.Printf("Border columns: %v\n", positions)
	fmt.Println("Both panes have left and right borders.")
}
