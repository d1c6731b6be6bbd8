package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/greminder/greminder/internal/clipboard"
	"github.com/greminder/greminder/internal/config"
	"github.com/greminder/greminder/internal/notes"
	"github.com/greminder/greminder/internal/store"
	"github.com/greminder/greminder/internal/tui"
	"github.com/samber/lo"
)

// CLI handles the command-line interface
type CLI struct {
	notes         *notes.NoteManager
	config        *config.Config
	configManager *config.ConfigManager
	clipboard     clipboard.Clipboard
	logger        *slog.Logger
	in            io.Reader
	out           io.Writer
}

// Option configures a CLI.
type Option func(*CLI)

// WithConfigManager sets the configuration source.
func WithConfigManager(cm *config.ConfigManager) Option {
	return func(c *CLI) { c.configManager = cm }
}

// WithClipboard sets the clipboard used by add, show, edit and browse.
func WithClipboard(cb clipboard.Clipboard) Option {
	return func(c *CLI) { c.clipboard = cb }
}

// WithInput sets where note text and confirmations are read from.
func WithInput(r io.Reader) Option {
	return func(c *CLI) { c.in = r }
}

// WithOutput sets where command output is written.
func WithOutput(w io.Writer) Option {
	return func(c *CLI) { c.out = w }
}

// WithLogger sets the logger. By default events at the configured level
// go to stderr.
func WithLogger(logger *slog.Logger) Option {
	return func(c *CLI) { c.logger = logger }
}

// NewWithArgs creates a new CLI instance. Configuration is resolved with
// the precedence flag > environment > config file > default, and the
// note store is opened unless the command only touches configuration.
func NewWithArgs(args *Args, opts ...Option) (*CLI, error) {
	c := &CLI{
		in:  os.Stdin,
		out: os.Stdout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if args == nil {
		args = &Args{}
	}

	if c.configManager == nil {
		cm, err := config.NewConfigManager()
		if err != nil {
			return nil, err
		}
		c.configManager = cm
	}

	// Configuration commands must work on a file holding bad values.
	load := c.configManager.Load
	if !args.NeedsStore() {
		load = c.configManager.Read
	}
	cfg, err := load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if args.Backend != nil {
		cfg.Backend = *args.Backend
	}
	if args.DBPath != nil {
		cfg.DBPath = *args.DBPath
	}
	if args.Verbose {
		cfg.LogLevel = "debug"
	}
	if args.NeedsStore() {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}
	c.config = cfg

	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	}
	if c.clipboard == nil {
		c.clipboard = clipboard.Default()
	}

	if !args.NeedsStore() {
		return c, nil
	}

	dbPath, err := cfg.ResolveDBPath()
	if err != nil {
		return nil, err
	}
	backend, err := OpenBackend(cfg.Backend, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store at %s: %w", cfg.Backend, dbPath, err)
	}
	c.logger.Debug("store opened",
		slog.String("backend", cfg.Backend),
		slog.String("path", dbPath))

	s := store.New(backend, store.WithLogger(c.logger))
	c.notes = notes.NewNoteManagerWithConfig(s, cfg.ResultLimit, c.logger)
	return c, nil
}

// Close releases the note store, if one was opened.
func (c *CLI) Close() error {
	if c.notes == nil {
		return nil
	}
	return c.notes.Close()
}

// Execute runs the CLI command based on parsed arguments
func (c *CLI) Execute(args *Args) error {
	if err := args.Validate(); err != nil {
		return err
	}

	switch {
	case args.Add != nil:
		return c.executeAdd(args.Add)
	case args.Find != nil:
		return c.executeFind(args.Find)
	case args.Show != nil:
		return c.executeShow(args.Show)
	case args.Edit != nil:
		return c.executeEdit(args.Edit)
	case args.Delete != nil:
		return c.executeDelete(args.Delete)
	case args.Keywords != nil:
		return c.executeKeywords()
	case args.List != nil:
		return c.executeList()
	case args.Check != nil:
		return c.executeCheck(args.Check)
	case args.Config != nil:
		return c.executeConfig(args.Config)
	case args.Browse != nil:
		return c.launchTUI(strings.Join(args.Browse.Query, " "))
	default:
		return c.launchTUI("")
	}
}

// executeAdd handles the 'greminder add' command
func (c *CLI) executeAdd(cmd *AddCmd) error {
	var contents string
	var err error
	switch {
	case len(cmd.Text) > 0:
		contents = strings.Join(cmd.Text, " ")
	case cmd.File != nil:
		contents, err = c.readFromFile(*cmd.File)
	case cmd.Clipboard:
		contents, err = c.readFromClipboard()
	default:
		contents, err = c.readFromStdin()
	}
	if err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}

	item, err := c.notes.Create(notes.ParseKeywords(cmd.Keywords), contents)
	if err != nil {
		return fmt.Errorf("failed to store note: %w", err)
	}
	fmt.Fprintf(c.out, "Stored: %s\n", notes.Summary(item))
	return nil
}

// executeFind handles the 'greminder find' command
func (c *CLI) executeFind(cmd *FindCmd) error {
	query := strings.Join(cmd.Query, " ")
	items, err := c.notes.Search(query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(items) == 0 {
		return fmt.Errorf("no notes match: %s", query)
	}

	for i, item := range items {
		if !cmd.Full {
			fmt.Fprintln(c.out, notes.Summary(item))
			continue
		}
		if i > 0 {
			fmt.Fprintln(c.out)
		}
		fmt.Fprintf(c.out, "# %s [%s]\n", item.Fingerprint(), strings.Join(item.Keywords(), " "))
		c.writeContents(item.Contents())
	}
	if !cmd.Full {
		c.noteLimit(len(items))
	}
	return nil
}

// executeShow handles the 'greminder show' command
func (c *CLI) executeShow(cmd *ShowCmd) error {
	item, err := c.notes.Get(cmd.Ref)
	if err != nil {
		return fmt.Errorf("failed to get note %s: %w", cmd.Ref, err)
	}
	title := notes.TruncateTitle(notes.GenerateTitle(item.Contents()), notes.TitleLen)

	switch {
	case cmd.Clipboard:
		if err := clipboard.WriteText(c.clipboard, item.Contents()); err != nil {
			return fmt.Errorf("failed to write to clipboard: %w", err)
		}
		fmt.Fprintf(c.out, "Copied to clipboard: %s\n", title)
	case cmd.Output != nil:
		if err := os.WriteFile(*cmd.Output, []byte(item.Contents()), 0644); err != nil {
			return fmt.Errorf("failed to write to file: %w", err)
		}
		fmt.Fprintf(c.out, "Written to %s: %s\n", *cmd.Output, title)
	default:
		c.writeContents(item.Contents())
	}
	return nil
}

// executeEdit handles the 'greminder edit' command
func (c *CLI) executeEdit(cmd *EditCmd) error {
	old, err := c.notes.Get(cmd.Ref)
	if err != nil {
		return fmt.Errorf("failed to get note %s: %w", cmd.Ref, err)
	}

	draft := old.Clone()
	var remove, add []string
	switch {
	case cmd.Keywords != nil:
		remove, add = old.Keywords(), notes.ParseKeywords(*cmd.Keywords)
	default:
		if cmd.Remove != nil {
			remove = notes.ParseKeywords(*cmd.Remove)
		}
		if cmd.Add != nil {
			add = notes.ParseKeywords(*cmd.Add)
		}
	}
	for _, kw := range remove {
		for draft.HasKeyword(kw) {
			draft.RemoveKeyword(kw)
		}
	}
	for _, kw := range add {
		if err := draft.AddKeyword(kw); err != nil {
			return fmt.Errorf("failed to edit note: %w", err)
		}
	}

	contents := old.Contents()
	switch {
	case cmd.Text != nil:
		contents = *cmd.Text
	case cmd.File != nil:
		contents, err = c.readFromFile(*cmd.File)
	case cmd.Clipboard:
		contents, err = c.readFromClipboard()
	}
	if err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}

	item, err := c.notes.Edit(old, draft.Keywords(), contents)
	if err != nil {
		return fmt.Errorf("failed to edit note: %w", err)
	}
	fmt.Fprintf(c.out, "Updated: %s\n", notes.Summary(item))
	return nil
}

// executeDelete handles the 'greminder delete' command
func (c *CLI) executeDelete(cmd *DeleteCmd) error {
	items := make([]*store.Item, 0, len(cmd.Refs))
	for _, ref := range cmd.Refs {
		item, err := c.notes.Get(ref)
		if err != nil {
			return fmt.Errorf("failed to get note %s: %w", ref, err)
		}
		items = append(items, item)
	}
	items = lo.UniqBy(items, (*store.Item).Fingerprint)

	if !cmd.Force {
		for _, item := range items {
			fmt.Fprintln(c.out, notes.Summary(item))
		}
		ok, err := c.confirm(fmt.Sprintf("Delete %d note(s)?", len(items)))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(c.out, "Cancelled.")
			return nil
		}
	}

	for _, item := range items {
		if err := c.notes.Delete(item); err != nil {
			return fmt.Errorf("failed to delete note %s: %w", notes.ShortFingerprint(item.Fingerprint()), err)
		}
	}
	fmt.Fprintf(c.out, "Deleted %d note(s).\n", len(items))
	return nil
}

// executeKeywords handles the 'greminder keywords' command
func (c *CLI) executeKeywords() error {
	keywords, err := c.notes.Keywords()
	if err != nil {
		return fmt.Errorf("failed to list keywords: %w", err)
	}
	for _, kw := range keywords {
		fmt.Fprintln(c.out, kw)
	}
	return nil
}

// executeList handles the 'greminder list' command
func (c *CLI) executeList() error {
	items, err := c.notes.List()
	if err != nil {
		return fmt.Errorf("failed to list notes: %w", err)
	}
	if len(items) == 0 {
		fmt.Fprintln(c.out, "No notes stored.")
		return nil
	}
	for _, item := range items {
		fmt.Fprintln(c.out, notes.Summary(item))
	}
	c.noteLimit(len(items))
	return nil
}

// noteLimit tells the user when a listing was cut at the result limit.
func (c *CLI) noteLimit(shown int) {
	if limit := c.notes.GetResultLimit(); limit > 0 && shown >= limit {
		fmt.Fprintf(c.out, "(showing the first %d notes; raise result-limit to see more)\n", limit)
	}
}

// executeCheck handles the 'greminder check' command
func (c *CLI) executeCheck(cmd *CheckCmd) error {
	report, err := c.notes.Check(cmd.Repair)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	stats, err := c.notes.Stats()
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	fmt.Fprintf(c.out, "%d note(s), %d keyword link(s), %d record(s)\n", report.Items, report.Links, stats.Records)
	if stats.Schema != "" {
		fmt.Fprintf(c.out, "Schema version: %s\n", stats.Schema)
	}
	if report.Clean() {
		fmt.Fprintln(c.out, "Index is consistent.")
		return nil
	}

	problems := []struct {
		label string
		count int
	}{
		{"orphan links", len(report.Orphans)},
		{"missing reverse records", len(report.MissingReverse)},
		{"missing forward records", len(report.MissingForward)},
		{"notes without keywords", len(report.Unindexed)},
		{"notes with mismatched fingerprints", len(report.Mismatched)},
		{"unrecognised records", report.Foreign},
	}
	for _, p := range problems {
		if p.count > 0 {
			fmt.Fprintf(c.out, "  %s: %d\n", p.label, p.count)
		}
	}

	if !cmd.Repair {
		return fmt.Errorf("index is inconsistent; run 'greminder check --repair'")
	}
	fmt.Fprintln(c.out, "Repaired.")
	return nil
}

// executeConfig handles the 'greminder config' command
func (c *CLI) executeConfig(cmd *ConfigCmd) error {
	switch {
	case cmd.Get != nil:
		value, err := c.configManager.Get(cmd.Get.Key)
		if err != nil {
			return fmt.Errorf("failed to get config value: %w", err)
		}
		fmt.Fprintln(c.out, value)
		return nil
	case cmd.Set != nil:
		if err := c.configManager.Update(cmd.Set.Key, cmd.Set.Value); err != nil {
			return fmt.Errorf("failed to set config value: %w", err)
		}
		fmt.Fprintf(c.out, "Set %s = %s\n", cmd.Set.Key, cmd.Set.Value)
		return nil
	case cmd.List != nil:
		values, err := c.configManager.List()
		if err != nil {
			return fmt.Errorf("failed to list config values: %w", err)
		}
		keys := lo.Keys(values)
		slices.Sort(keys)
		fmt.Fprintf(c.out, "Current configuration (%s):\n", c.configManager.GetConfigPath())
		for _, key := range keys {
			fmt.Fprintf(c.out, "  %s = %s\n", key, values[key])
		}
		return nil
	default:
		return fmt.Errorf("no config subcommand specified")
	}
}

// launchTUI starts the interactive browser
func (c *CLI) launchTUI(query string) error {
	model := tui.NewModel(c.notes, c.clipboard, query)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// confirm asks a yes/no question on the CLI input.
func (c *CLI) confirm(question string) (bool, error) {
	fmt.Fprintf(c.out, "%s [y/N]: ", question)
	response, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read response: %w", err)
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes", nil
}

// writeContents prints contents, ending with a newline.
func (c *CLI) writeContents(contents string) {
	fmt.Fprint(c.out, contents)
	if !strings.HasSuffix(contents, "\n") {
		fmt.Fprintln(c.out)
	}
}

func (c *CLI) readFromClipboard() (string, error) {
	text, err := clipboard.ReadText(c.clipboard)
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	if text == "" {
		return "", fmt.Errorf("clipboard is empty")
	}
	return text, nil
}

func (c *CLI) readFromFile(filename string) (string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// readFromStdin reads the CLI input. One trailing newline is removed.
func (c *CLI) readFromStdin() (string, error) {
	data, err := io.ReadAll(c.in)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("no input provided")
	}
	text := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(text, "\r"), nil
}
