package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikbrunner/autotag/internal/ai"
	"github.com/nikbrunner/autotag/internal/exporter"
	"github.com/nikbrunner/autotag/internal/frontmatter"
	"github.com/nikbrunner/autotag/internal/importer"
	"github.com/nikbrunner/autotag/internal/logging"
	"github.com/nikbrunner/autotag/internal/model"
	"github.com/nikbrunner/autotag/internal/notice"
	"github.com/nikbrunner/autotag/internal/picker"
	"github.com/nikbrunner/autotag/internal/search"
	"github.com/nikbrunner/autotag/internal/storage"
	"github.com/nikbrunner/autotag/internal/tagger"
)

func main() {
	if len(os.Args) < 2 {
		printHelp()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	args := os.Args[2:]
	switch os.Args[1] {
	case "help", "--help", "-h":
		printHelp()
	case "suggest":
		runSuggest(ctx, args)
	case "tag":
		if len(args) < 1 {
			fmt.Fprintf(os.Stderr, "Usage: autotag tag <note.md>\n")
			os.Exit(1)
		}
		runTag(ctx, args[0])
	case "batch":
		var target string
		if len(args) >= 1 {
			target = args[0]
		}
		runBatch(ctx, target)
	case "import":
		if len(args) < 1 {
			fmt.Fprintf(os.Stderr, "Usage: autotag import <file.html>\n")
			os.Exit(1)
		}
		runImport(args[0])
	case "search":
		if len(args) < 1 {
			fmt.Fprintf(os.Stderr, "Usage: autotag search <query>\n")
			os.Exit(1)
		}
		runSearch(strings.Join(args, " "))
	case "index":
		var outputPath string
		if len(args) >= 1 {
			outputPath = args[0]
		}
		runIndex(outputPath)
	case "models":
		runModels()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printHelp()
		os.Exit(1)
	}
}

func printHelp() {
	help := `autotag - tag suggestions for notes via the OpenAI API

Usage:
  autotag suggest [file|-] [--copy]   Suggest tags for a file or stdin
  autotag tag <note.md>               Suggest, pick and write tags to front matter
  autotag batch [dir]                 Tag every untagged markdown note in dir
  autotag batch --imported            Tag imported notes that have no tags yet
  autotag import <file.html>          Import notes from an HTML export
  autotag search <query>              Fuzzy search notes (#query searches tags)
  autotag index [path|-]              Write a markdown tag index
  autotag models                      List supported models
  autotag help                        Show this help

Picker Keybindings:
  j/k         Move down/up
  space       Toggle tag
  a/n         Select all/none
  +           Add a custom tag
  enter       Accept
  q/esc       Cancel

Environment:
  OPENAI_API_KEY   API key (overrides the config file, read from .env too)
  DEBUG            Log suggested tags and request details

Data Storage:
  ~/.config/autotag/config.json
  ~/.config/autotag/notes.db (or notes.json)
`
	fmt.Print(help)
}

// exit is swapped in tests.
var exit = os.Exit

// cleanups run in reverse order before fatal exits, since os.Exit skips
// deferred calls.
var cleanups []func()

// onFatal registers fn to run if fatal is called.
func onFatal(fn func()) {
	cleanups = append(cleanups, fn)
}

// fatal prints msg, runs the registered cleanups and exits with status 1.
func fatal(format string, args ...any) {
	ancli.PrintErr(fmt.Sprintf(format+"\n", args...))
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
	exit(1)
}

// env bundles what the API-facing commands share.
type env struct {
	cfg    *storage.Config
	client *ai.Client
}

// setup loads .env and config, installs logging and builds the client.
func setup() env {
	if err := storage.LoadDotEnv(); err != nil {
		ancli.PrintWarn(fmt.Sprintf("failed to load .env: %v\n", err))
	}

	logger := logging.Setup()

	configPath, err := storage.DefaultConfigFilePath()
	if err != nil {
		fatal("Error getting config path: %v", err)
	}
	cfg, err := storage.LoadConfig(configPath)
	if err != nil {
		fatal("Error loading config: %v", err)
	}

	client := ai.NewClient(ai.ClientParams{
		HTTPClient: &http.Client{Timeout: cfg.RequestTimeout()},
		Logger:     logger,
		Notifier:   notice.NewTerminal(os.Stderr),
	})

	return env{cfg: cfg, client: client}
}

// openStore opens the configured backend and loads the store. The returned
// func closes the backend.
func openStore() (storage.Storage, *model.Store, func()) {
	st, err := storage.OpenStorage()
	if err != nil {
		fatal("Error opening storage: %v", err)
	}
	var once sync.Once
	closeFn := func() {
		once.Do(func() {
			if c, ok := st.(io.Closer); ok {
				_ = c.Close()
			}
		})
	}
	onFatal(closeFn)

	store, err := st.Load()
	if err != nil {
		fatal("Error loading notes: %v", err)
	}
	return st, store, closeFn
}

// requestTags wraps RequestTags with CLI error reporting. A missing key has
// already been reported by the notifier and yields no tags.
func (e env) requestTags(ctx context.Context, text string) []string {
	tags, err := e.client.RequestTags(ctx, e.cfg.APIKey(), text)
	if err != nil {
		fatal("Error suggesting tags (%s): %v", ai.KindOf(err), err)
	}
	return model.NormalizeTags(tags)
}

// runSuggest prints tag suggestions for a file or stdin.
func runSuggest(ctx context.Context, args []string) {
	var copyTags bool
	source := "-"
	for _, arg := range args {
		if arg == "--copy" {
			copyTags = true
			continue
		}
		source = arg
	}

	text, err := readInput(source)
	if err != nil {
		fatal("Error reading input: %v", err)
	}

	e := setup()
	tags := e.requestTags(ctx, text)
	if len(tags) == 0 {
		ancli.PrintWarn("no tags suggested\n")
		return
	}

	for _, tag := range tags {
		fmt.Println(tag)
	}

	if copyTags {
		if err := clipboard.WriteAll(strings.Join(tags, " ")); err != nil {
			fatal("Error copying to clipboard: %v", err)
		}
		ancli.PrintOK(fmt.Sprintf("copied %d tags to clipboard\n", len(tags)))
	}
}

// readInput reads source, or stdin for "-". HTML files are reduced to text.
func readInput(source string) (string, error) {
	if source == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}

	file, err := os.Open(source)
	if err != nil {
		return "", err
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(source)) {
	case ".html", ".htm":
		return importer.ExtractText(file)
	}

	data, err := io.ReadAll(file)
	return string(data), err
}

// noteFromDocument builds a note for a markdown file.
func noteFromDocument(path string, doc *frontmatter.Document) model.Note {
	title := doc.Title()
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return model.NewNote(model.NewNoteParams{
		Title: title,
		Path:  path,
		Body:  doc.Body,
		Tags:  doc.Tags(),
	})
}

// runTag suggests tags for one note, lets the user pick, and writes them back.
func runTag(ctx context.Context, notePath string) {
	path, err := filepath.Abs(notePath)
	if err != nil {
		fatal("Error resolving path: %v", err)
	}

	doc, err := frontmatter.ReadFile(path)
	if err != nil {
		fatal("Error reading note: %v", err)
	}
	note := noteFromDocument(path, doc)

	e := setup()
	suggested := e.requestTags(ctx, note.Text())

	p := picker.New(note.Title, suggested, note.Tags)
	program := tea.NewProgram(p)
	finalModel, err := program.Run()
	if err != nil {
		fatal("Error running picker: %v", err)
	}

	finalPicker := finalModel.(picker.Picker)
	if finalPicker.Cancelled() {
		return
	}
	selected := finalPicker.SelectedTags()

	doc.SetTags(selected)
	if err := frontmatter.WriteFile(path, doc); err != nil {
		fatal("Error writing note: %v", err)
	}

	st, store, closeStore := openStore()
	defer closeStore()

	note.Tags = nil
	note.ApplyTags(selected, time.Now())
	store.UpsertNote(note)
	if err := st.Save(store); err != nil {
		fatal("Error saving notes: %v", err)
	}

	ancli.PrintOK(fmt.Sprintf("tagged %s: %s\n", filepath.Base(path), strings.Join(selected, ", ")))
}

// runBatch tags every untagged markdown note under dir, or every untagged
// imported note for --imported.
func runBatch(ctx context.Context, target string) {
	e := setup()
	if target == "" {
		target = e.cfg.NotesDir
	}

	st, store, closeStore := openStore()
	defer closeStore()

	var notes []model.Note
	var docs []*frontmatter.Document
	if target == "--imported" {
		for _, n := range store.UntaggedNotes() {
			if n.Path == "" {
				notes = append(notes, n)
			}
		}
	} else {
		var err error
		notes, docs, err = collectUntagged(target)
		if err != nil {
			fatal("Error scanning %s: %v", target, err)
		}
	}

	if len(notes) == 0 {
		ancli.PrintOK("nothing to tag\n")
		return
	}
	ancli.PrintOK(fmt.Sprintf("found %d untagged notes\n", len(notes)))

	// Report a missing key once instead of per note.
	if e.cfg.APIKey() == "" {
		e.requestTags(ctx, notes[0].Text())
		return
	}

	results := tagger.SuggestAll(ctx, notes, tagger.Params{
		Suggester:   e.client,
		APIKey:      e.cfg.APIKey(),
		Concurrency: e.cfg.BatchConcurrency,
		OnProgress: func(completed, total int) {
			fmt.Fprintf(os.Stderr, "\r[%d/%d]", completed, total)
		},
	})
	fmt.Fprintln(os.Stderr)

	now := time.Now()
	for i, r := range results {
		switch r.Status {
		case tagger.Failed:
			ancli.PrintWarn(fmt.Sprintf("%s: %s: %v\n", r.Note.Title, r.Kind, r.Err))
			continue
		case tagger.Skipped, tagger.Empty:
			continue
		}

		if docs != nil {
			docs[i].SetTags(model.MergeTags(docs[i].Tags(), r.Tags))
			if err := frontmatter.WriteFile(r.Note.Path, docs[i]); err != nil {
				ancli.PrintWarn(fmt.Sprintf("failed to write %s: %v\n", r.Note.Path, err))
				continue
			}
		}

		r.Note.ApplyTags(r.Tags, now)
		store.UpsertNote(*r.Note)
	}

	if err := st.Save(store); err != nil {
		fatal("Error saving notes: %v", err)
	}

	counts := tagger.Summary(results)
	ancli.PrintOK(fmt.Sprintf("%d tagged, %d empty, %d skipped, %d failed\n",
		counts[tagger.Tagged], counts[tagger.Empty], counts[tagger.Skipped], counts[tagger.Failed]))
}

// collectUntagged reads every markdown file under dir whose front matter
// carries no tags.
func collectUntagged(dir string) ([]model.Note, []*frontmatter.Document, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, nil, err
	}

	var notes []model.Note
	var docs []*frontmatter.Document
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}

		doc, err := frontmatter.ReadFile(path)
		if err != nil {
			if errors.Is(err, frontmatter.ErrNotMapping) {
				ancli.PrintWarn(fmt.Sprintf("skipping %s: %v\n", path, err))
				return nil
			}
			return err
		}
		if len(doc.Tags()) > 0 {
			return nil
		}

		notes = append(notes, noteFromDocument(path, doc))
		docs = append(docs, doc)
		return nil
	})

	return notes, docs, err
}

// runImport handles the import subcommand.
func runImport(filePath string) {
	file, err := os.Open(filePath)
	if err != nil {
		fatal("Error opening file: %v", err)
	}
	defer file.Close()

	notes, err := importer.ParseHTMLNotes(file)
	if err != nil {
		fatal("Error parsing HTML: %v", err)
	}

	st, store, closeStore := openStore()
	defer closeStore()

	added, skipped := store.ImportNotes(notes)
	if err := st.Save(store); err != nil {
		fatal("Error saving notes: %v", err)
	}

	msg := fmt.Sprintf("imported %d notes", added)
	if skipped > 0 {
		msg += fmt.Sprintf(" (%d duplicates skipped)", skipped)
	}
	ancli.PrintOK(msg + "\n")
}

// runSearch prints notes matching query. A leading # searches tags instead.
func runSearch(query string) {
	_, store, closeStore := openStore()
	defer closeStore()

	if strings.HasPrefix(query, "#") {
		tags := search.FilterTags(store.AllTags(), strings.TrimPrefix(query, "#"))
		if len(tags) == 0 {
			fmt.Printf("No tags found for '%s'\n", query)
			return
		}
		for _, tag := range tags {
			notes := store.NotesWithTag(tag)
			fmt.Printf("#%s (%d)\n", tag, len(notes))
			for _, n := range notes {
				fmt.Printf("  %s\n", n.Title)
			}
		}
		return
	}

	results := search.FuzzySearchNotes(store, query)
	if len(results) == 0 {
		fmt.Printf("No notes found for '%s'\n", query)
		return
	}

	for _, r := range results {
		line := r.Note.Title
		if line == "" {
			line = r.Note.Path
		}
		if len(r.Note.Tags) > 0 {
			line += "  #" + strings.Join(r.Note.Tags, " #")
		}
		fmt.Println(line)
	}
}

// runIndex writes the tag index to outputPath, or stdout for "-".
func runIndex(outputPath string) {
	if outputPath == "" {
		var err error
		outputPath, err = exporter.DefaultExportPath()
		if err != nil {
			fatal("Error getting default export path: %v", err)
		}
	}

	_, store, closeStore := openStore()
	defer closeStore()

	index := exporter.ExportTagIndex(store)

	if outputPath == "-" {
		fmt.Print(index)
		return
	}

	if err := os.WriteFile(outputPath, []byte(index), 0644); err != nil {
		fatal("Error writing file: %v", err)
	}

	ancli.PrintOK(fmt.Sprintf("exported %d tags to %s\n", len(store.AllTags()), outputPath))
}

// runModels lists the catalog with the cost of a full-length reply.
func runModels() {
	for _, m := range ai.Models {
		marker := " "
		if m.ID == ai.Model {
			marker = "*"
		}
		fmt.Printf("%s %-22s %-38s %6d ctx  ~$%.4f per 1K in + %d out\n",
			marker, m.ID, m.Name, m.Context, m.EstimateCost(1000, ai.MaxTokens), ai.MaxTokens)
	}
}
