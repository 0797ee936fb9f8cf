package model

import "sort"

// Store holds all notes.
type Store struct {
	Notes []Note `json:"notes"`
}

// NewStore creates an empty Store with initialized slices.
func NewStore() *Store {
	return &Store{
		Notes: []Note{},
	}
}

// AddNote appends a note to the store.
func (s *Store) AddNote(n Note) {
	s.Notes = append(s.Notes, n)
}

// GetNoteByID finds a note by ID, returns nil if not found.
func (s *Store) GetNoteByID(id string) *Note {
	for i := range s.Notes {
		if s.Notes[i].ID == id {
			return &s.Notes[i]
		}
	}
	return nil
}

// GetNoteByPath finds a note by its source path, returns nil if not found.
func (s *Store) GetNoteByPath(path string) *Note {
	if path == "" {
		return nil
	}
	for i := range s.Notes {
		if s.Notes[i].Path == path {
			return &s.Notes[i]
		}
	}
	return nil
}

// UpsertNote replaces the note with the same path (or ID) or appends it.
// Returns the stored note.
func (s *Store) UpsertNote(n Note) *Note {
	existing := s.GetNoteByPath(n.Path)
	if existing == nil {
		existing = s.GetNoteByID(n.ID)
	}
	if existing != nil {
		n.ID = existing.ID
		n.CreatedAt = existing.CreatedAt
		*existing = n
		return existing
	}
	s.Notes = append(s.Notes, n)
	return &s.Notes[len(s.Notes)-1]
}

// UntaggedNotes returns notes that have never been tagged.
func (s *Store) UntaggedNotes() []Note {
	var result []Note
	for _, n := range s.Notes {
		if n.TaggedAt == nil {
			result = append(result, n)
		}
	}
	return result
}

// AllTags returns every tag in the store, sorted.
func (s *Store) AllTags() []string {
	tagSet := make(map[string]bool)
	for _, n := range s.Notes {
		for _, tag := range n.Tags {
			tagSet[tag] = true
		}
	}

	tags := make([]string, 0, len(tagSet))
	for tag := range tagSet {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	return tags
}

// NotesWithTag returns notes carrying the given tag.
func (s *Store) NotesWithTag(tag string) []Note {
	var result []Note
	for _, n := range s.Notes {
		for _, t := range n.Tags {
			if t == tag {
				result = append(result, n)
				break
			}
		}
	}
	return result
}

// ImportNotes adds notes, skipping any whose title and body match a note
// already in the store. Returns the counts of added and skipped notes.
func (s *Store) ImportNotes(notes []Note) (added, skipped int) {
	type key struct{ title, body string }
	seen := make(map[key]bool, len(s.Notes))
	for _, n := range s.Notes {
		seen[key{n.Title, n.Body}] = true
	}

	for _, n := range notes {
		k := key{n.Title, n.Body}
		if seen[k] {
			skipped++
			continue
		}
		seen[k] = true
		s.AddNote(n)
		added++
	}
	return added, skipped
}
