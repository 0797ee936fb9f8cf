package search

import (
	"github.com/nikbrunner/autotag/internal/model"
	"github.com/sahilm/fuzzy"
)

// SearchResult is one note matched by a query, with the matched
// positions in its display title.
type SearchResult struct {
	Note           *model.Note
	MatchedIndexes []int
	Score          int
}

// noteTitles exposes note display titles to the matcher. A note without a
// title is shown, and matched, by its path.
type noteTitles []*model.Note

func (nt noteTitles) String(i int) string {
	if nt[i].Title == "" {
		return nt[i].Path
	}
	return nt[i].Title
}

func (nt noteTitles) Len() int {
	return len(nt)
}

// FuzzySearchNotes ranks the store's notes against query, highest score
// first. Result notes point into store.Notes. An empty query matches nothing.
func FuzzySearchNotes(store *model.Store, query string) []SearchResult {
	if query == "" {
		return nil
	}

	notes := make(noteTitles, len(store.Notes))
	for i := range store.Notes {
		notes[i] = &store.Notes[i]
	}

	matches := fuzzy.FindFrom(query, notes)

	results := make([]SearchResult, len(matches))
	for i, m := range matches {
		results[i] = SearchResult{
			Note:           notes[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}

	return results
}

// FilterTags narrows tags to those matching query, highest score first.
// An empty query keeps every tag.
func FilterTags(tags []string, query string) []string {
	if query == "" {
		return tags
	}

	matches := fuzzy.Find(query, tags)
	result := make([]string, len(matches))
	for i, m := range matches {
		result[i] = m.Str
	}
	return result
}
