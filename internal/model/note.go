package model

import "time"

// Note represents a piece of text that can be tagged.
type Note struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Path      string     `json:"path"` // source file, empty for imported notes
	Body      string     `json:"body"`
	Tags      []string   `json:"tags"`
	CreatedAt time.Time  `json:"createdAt"`
	TaggedAt  *time.Time `json:"taggedAt"` // nil = never tagged
}

// NewNoteParams holds parameters for creating a new Note.
type NewNoteParams struct {
	Title string
	Path  string
	Body  string
	Tags  []string
}

// NewNote creates a Note with generated UUID and timestamps.
func NewNote(params NewNoteParams) Note {
	tags := params.Tags
	if tags == nil {
		tags = []string{}
	}

	return Note{
		ID:        GenerateUUID(),
		Title:     params.Title,
		Path:      params.Path,
		Body:      params.Body,
		Tags:      tags,
		CreatedAt: time.Now(),
		TaggedAt:  nil,
	}
}

// Text returns the text sent for tag suggestions: title and body.
func (n Note) Text() string {
	switch {
	case n.Title == "":
		return n.Body
	case n.Body == "":
		return n.Title
	default:
		return n.Title + "\n\n" + n.Body
	}
}

// ApplyTags merges tags into the note and stamps TaggedAt.
func (n *Note) ApplyTags(tags []string, at time.Time) {
	n.Tags = MergeTags(n.Tags, tags)
	n.TaggedAt = &at
}
