package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/greminder/greminder/internal/notes"
	"github.com/greminder/greminder/internal/store"
	"github.com/greminder/greminder/internal/store/memstore"
)

func main() {
	fmt.Println("greminder Note Store Demo")

	backend := memstore.NewMemoryStore()
	nm := notes.NewNoteManager(store.New(backend))
	defer nm.Close()

	samples := []struct {
		keywords string
		contents string
	}{
		{"shopping milk", "Buy milk"},
		{"shopping bread", "Buy bread"},
		{"go snippet", "package main\n\nimport \"fmt\"\n\nfunc main() {\n    fmt.Println(\"Hello, Go!\")\n}"},
		{"sql snippet", "SELECT * FROM users WHERE created_at > '2023-01-01' ORDER BY created_at DESC LIMIT 10;"},
	}

	fmt.Println("\nStoring notes:")
	for _, s := range samples {
		item, err := nm.Create(notes.ParseKeywords(s.keywords), s.contents)
		if err != nil {
			log.Fatalf("Failed to store note: %v", err)
		}
		fmt.Printf("  %s\n", notes.Summary(item))
	}
	fmt.Printf("Backend records: %d\n", backend.Len())

	for _, query := range []string{"shopping", "shopping milk", "snippet", "shop"} {
		items, err := nm.Search(query)
		if err != nil {
			log.Fatalf("Search failed: %v", err)
		}
		fmt.Printf("\nfind %q: %d note(s)\n", query, len(items))
		for _, item := range items {
			fmt.Printf("  %s\n", notes.Summary(item))
		}
	}

	milk, err := nm.Get(store.Fingerprint("Buy milk"))
	if err != nil {
		log.Fatalf("Get failed: %v", err)
	}
	edited, err := nm.Edit(milk, []string{"shopping", "dairy"}, milk.Contents())
	if err != nil {
		log.Fatalf("Edit failed: %v", err)
	}
	fmt.Printf("\nRetagged: %s\n", notes.Summary(edited))

	keywords, err := nm.Keywords()
	if err != nil {
		log.Fatalf("Keywords failed: %v", err)
	}
	fmt.Printf("Keywords: %s\n", strings.Join(keywords, ", "))

	report, err := nm.Check(false)
	if err != nil {
		log.Fatalf("Check failed: %v", err)
	}
	fmt.Printf("\nIndex check: %d note(s), %d link(s), clean=%v\n", report.Items, report.Links, report.Clean())
}
