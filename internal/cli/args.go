package cli

import (
	"fmt"
	"slices"

	"github.com/greminder/greminder/internal/config"
)

// Args represents the top-level command structure
type Args struct {
	DBPath  *string `arg:"--db,env:GREMINDER_DB" help:"database location (default: $XDG_DATA_HOME/greminder/greminder.db)"`
	Backend *string `arg:"--backend,env:GREMINDER_BACKEND" help:"storage backend: leveldb, bolt, sqlite or memory"`
	Verbose bool    `arg:"-v,--verbose" help:"log debug events to stderr"`

	Add      *AddCmd      `arg:"subcommand:add" help:"Store a new note"`
	Find     *FindCmd     `arg:"subcommand:find" help:"List notes carrying every given keyword"`
	Show     *ShowCmd     `arg:"subcommand:show" help:"Print a note by fingerprint"`
	Edit     *EditCmd     `arg:"subcommand:edit" help:"Change the contents or keywords of a note"`
	Delete   *DeleteCmd   `arg:"subcommand:delete" help:"Delete notes by fingerprint"`
	Keywords *KeywordsCmd `arg:"subcommand:keywords" help:"List every keyword in use"`
	List     *ListCmd     `arg:"subcommand:list" help:"List every note"`
	Check    *CheckCmd    `arg:"subcommand:check" help:"Check the keyword index for inconsistencies"`
	Config   *ConfigCmd   `arg:"subcommand:config" help:"Manage configuration settings"`
	Browse   *BrowseCmd   `arg:"subcommand:browse" help:"Search notes interactively (default)"`
}

// AddCmd represents the 'greminder add' command
type AddCmd struct {
	Keywords  string   `arg:"-k,--keywords,required" help:"space separated keywords"`
	Text      []string `arg:"positional" help:"note text (read from stdin when omitted)"`
	File      *string  `arg:"-f,--file" help:"read the note from a file"`
	Clipboard bool     `arg:"-c,--clipboard" help:"read the note from the clipboard"`
}

// FindCmd represents the 'greminder find' command
type FindCmd struct {
	Query []string `arg:"positional,required" help:"keywords; a note must carry all of them"`
	Full  bool     `arg:"--full" help:"print whole notes instead of one line each"`
}

// ShowCmd represents the 'greminder show' command
type ShowCmd struct {
	Ref       string  `arg:"positional,required" help:"fingerprint or unique fingerprint prefix"`
	Output    *string `arg:"-o,--output" help:"write the note to a file"`
	Clipboard bool    `arg:"-c,--clipboard" help:"copy the note to the clipboard"`
}

// EditCmd represents the 'greminder edit' command
type EditCmd struct {
	Ref       string  `arg:"positional,required" help:"fingerprint or unique fingerprint prefix"`
	Keywords  *string `arg:"-k,--keywords" help:"replace all keywords"`
	Add       *string `arg:"--add" help:"space separated keywords to add"`
	Remove    *string `arg:"--remove" help:"space separated keywords to remove"`
	Text      *string `arg:"-t,--text" help:"replace the note text"`
	File      *string `arg:"-f,--file" help:"replace the note text with a file"`
	Clipboard bool    `arg:"-c,--clipboard" help:"replace the note text with the clipboard"`
}

// DeleteCmd represents the 'greminder delete' command
type DeleteCmd struct {
	Refs  []string `arg:"positional,required" help:"fingerprints or unique fingerprint prefixes"`
	Force bool     `arg:"-f,--force" help:"skip confirmation prompt"`
}

// KeywordsCmd represents the 'greminder keywords' command
type KeywordsCmd struct{}

// ListCmd represents the 'greminder list' command
type ListCmd struct{}

// CheckCmd represents the 'greminder check' command
type CheckCmd struct {
	Repair bool `arg:"--repair" help:"delete orphan links and restore missing index records"`
}

// BrowseCmd represents the 'greminder browse' command
type BrowseCmd struct {
	Query []string `arg:"positional" help:"initial search keywords"`
}

// ConfigCmd represents the 'greminder config' command
type ConfigCmd struct {
	Get  *ConfigGetCmd  `arg:"subcommand:get" help:"Get configuration value"`
	Set  *ConfigSetCmd  `arg:"subcommand:set" help:"Set configuration value"`
	List *ConfigListCmd `arg:"subcommand:list" help:"List all configuration"`
}

// ConfigGetCmd represents the 'greminder config get' command
type ConfigGetCmd struct {
	Key string `arg:"positional,required" help:"configuration key (backend, db-path, log-level, result-limit)"`
}

// ConfigSetCmd represents the 'greminder config set' command
type ConfigSetCmd struct {
	Key   string `arg:"positional,required" help:"configuration key"`
	Value string `arg:"positional,required" help:"configuration value"`
}

// ConfigListCmd represents the 'greminder config list' command
type ConfigListCmd struct{}

// Description returns the program description
func (Args) Description() string {
	return "greminder - keyword-indexed note store"
}

// Version returns the program version
func (Args) Version() string {
	return "greminder 0.3.0"
}

// Epilogue returns additional help text
func (Args) Epilogue() string {
	return `Examples:
  greminder add -k "shopping milk" Buy milk      # Store a note
  echo "Buy bread" | greminder add -k shopping   # Store a note from stdin
  greminder find shopping milk                   # Notes with both keywords
  greminder show 3f2a                            # Print a note by fingerprint prefix
  greminder edit 3f2a --remove milk --add dairy  # Change keywords
  greminder delete 3f2a                          # Delete a note
  greminder                                      # Interactive search`
}

// NeedsStore reports whether the parsed command reads or writes notes.
func (args *Args) NeedsStore() bool {
	return args.Config == nil
}

// Validate performs validation on the parsed arguments
func (args *Args) Validate() error {
	if args.Backend != nil && !slices.Contains(config.Backends, *args.Backend) {
		return fmt.Errorf("unknown backend %q (want one of %v)", *args.Backend, config.Backends)
	}

	switch {
	case args.Add != nil:
		return args.Add.Validate()
	case args.Edit != nil:
		return args.Edit.Validate()
	}
	return nil
}

// Validate validates add command arguments
func (a *AddCmd) Validate() error {
	return checkSources(len(a.Text) > 0, a.File != nil, a.Clipboard)
}

// Validate validates edit command arguments
func (e *EditCmd) Validate() error {
	if e.Keywords != nil && (e.Add != nil || e.Remove != nil) {
		return fmt.Errorf("cannot combine --keywords with --add or --remove")
	}
	if err := checkSources(e.Text != nil, e.File != nil, e.Clipboard); err != nil {
		return err
	}
	if e.Keywords == nil && e.Add == nil && e.Remove == nil && !e.changesText() {
		return fmt.Errorf("nothing to change")
	}
	return nil
}

func (e *EditCmd) changesText() bool {
	return e.Text != nil || e.File != nil || e.Clipboard
}

// checkSources rejects more than one note text source.
func checkSources(sources ...bool) error {
	n := 0
	for _, set := range sources {
		if set {
			n++
		}
	}
	if n > 1 {
		return fmt.Errorf("specify only one of text, --file and --clipboard")
	}
	return nil
}
