package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nikbrunner/autotag/internal/model"
)

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/tag-index-YYYY-MM-DD.md
func DefaultExportPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("tag-index-%s.md", time.Now().Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportTagIndex renders a markdown index mapping each tag to its notes.
// Tags are sorted, notes within a tag are sorted by title.
func ExportTagIndex(store *model.Store) string {
	var b strings.Builder

	b.WriteString("# Tag Index\n")

	tags := store.AllTags()
	if len(tags) == 0 {
		b.WriteString("\n_No tagged notes._\n")
		return b.String()
	}

	for _, tag := range tags {
		notes := store.NotesWithTag(tag)
		sort.SliceStable(notes, func(i, j int) bool {
			return strings.ToLower(displayTitle(notes[i])) < strings.ToLower(displayTitle(notes[j]))
		})

		fmt.Fprintf(&b, "\n## #%s (%d)\n\n", tag, len(notes))
		for _, n := range notes {
			writeNote(&b, n)
		}
	}

	return b.String()
}

// writeNote writes one list entry, linking to the source file if there is one.
func writeNote(b *strings.Builder, n model.Note) {
	title := escapeMarkdown(displayTitle(n))
	if n.Path == "" {
		fmt.Fprintf(b, "- %s\n", title)
		return
	}
	fmt.Fprintf(b, "- [%s](%s)\n", title, strings.ReplaceAll(n.Path, " ", "%20"))
}

func displayTitle(n model.Note) string {
	if n.Title != "" {
		return n.Title
	}
	if n.Path != "" {
		return filepath.Base(n.Path)
	}
	return "Untitled"
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	`[`, `\[`,
	`]`, `\]`,
	`*`, `\*`,
	`_`, `\_`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
