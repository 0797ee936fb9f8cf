package model_test

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/nikbrunner/autotag/internal/model"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestNote_JSONSerialization(t *testing.T) {
	note := model.Note{
		ID:        "n1",
		Title:     "Pasta night",
		Path:      "/notes/pasta.md",
		Body:      "Fresh tagliatelle with ragù.",
		Tags:      []string{"cooking", "italian"},
		CreatedAt: time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC),
		TaggedAt:  timePtr(time.Date(2025, 1, 20, 14, 22, 0, 0, time.UTC)),
	}

	data, err := json.Marshal(note)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var got model.Note
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if got.ID != note.ID || got.Path != note.Path {
		t.Errorf("identity mismatch: got %q/%q", got.ID, got.Path)
	}
	if !reflect.DeepEqual(got.Tags, note.Tags) {
		t.Errorf("Tags mismatch: got %v, want %v", got.Tags, note.Tags)
	}
	if got.TaggedAt == nil || !got.TaggedAt.Equal(*note.TaggedAt) {
		t.Errorf("TaggedAt mismatch: got %v", got.TaggedAt)
	}
}

func TestNewNote_InitializesTags(t *testing.T) {
	n := model.NewNote(model.NewNoteParams{Title: "Empty"})

	if n.ID == "" {
		t.Error("expected generated ID")
	}
	if n.Tags == nil {
		t.Error("expected non-nil tags slice")
	}
	if n.TaggedAt != nil {
		t.Error("new note should not be tagged")
	}
}

func TestNote_Text(t *testing.T) {
	tests := []struct {
		name string
		note model.Note
		want string
	}{
		{"title and body", model.Note{Title: "Trip", Body: "Lisbon in May"}, "Trip\n\nLisbon in May"},
		{"body only", model.Note{Body: "Lisbon in May"}, "Lisbon in May"},
		{"title only", model.Note{Title: "Trip"}, "Trip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.note.Text(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNote_ApplyTags(t *testing.T) {
	n := model.Note{Tags: []string{"travel"}}
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	n.ApplyTags([]string{"Travel", "Portugal", "city-break"}, at)

	want := []string{"travel", "portugal", "city_break"}
	if !reflect.DeepEqual(n.Tags, want) {
		t.Errorf("got %v, want %v", n.Tags, want)
	}
	if n.TaggedAt == nil || !n.TaggedAt.Equal(at) {
		t.Errorf("expected TaggedAt %v, got %v", at, n.TaggedAt)
	}
}

func TestNormalizeTag(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"cooking", "cooking"},
		{"Machine Learning", "machine_learning"},
		{"#golang", "golang"},
		{"city-break", "city_break"},
		{"  spaced   out  ", "spaced_out"},
		{"c++", "c"},
		{"___", ""},
		{"web3", "web3"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := model.NormalizeTag(tt.in); got != tt.want {
				t.Errorf("NormalizeTag(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMergeTags_KeepsOrderAndSkipsDuplicates(t *testing.T) {
	got := model.MergeTags([]string{"a", "b"}, []string{"B", "c", "", "c"})
	want := []string{"a", "b", "c"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestStore_Lookups(t *testing.T) {
	store := model.NewStore()
	store.AddNote(model.Note{ID: "n1", Title: "One", Path: "/one.md", Tags: []string{"b", "a"}})
	store.AddNote(model.Note{ID: "n2", Title: "Two", Tags: []string{"a"}, TaggedAt: timePtr(time.Now())})

	if n := store.GetNoteByID("n2"); n == nil || n.Title != "Two" {
		t.Errorf("expected to find n2, got %v", n)
	}
	if store.GetNoteByID("missing") != nil {
		t.Error("expected nil for missing id")
	}
	if n := store.GetNoteByPath("/one.md"); n == nil || n.ID != "n1" {
		t.Errorf("expected to find n1 by path, got %v", n)
	}
	if store.GetNoteByPath("") != nil {
		t.Error("empty path should never match")
	}

	if tags := store.AllTags(); !reflect.DeepEqual(tags, []string{"a", "b"}) {
		t.Errorf("expected sorted unique tags, got %v", tags)
	}
	if untagged := store.UntaggedNotes(); len(untagged) != 1 || untagged[0].ID != "n1" {
		t.Errorf("expected only n1 untagged, got %v", untagged)
	}
	if withA := store.NotesWithTag("a"); len(withA) != 2 {
		t.Errorf("expected 2 notes tagged a, got %d", len(withA))
	}
}

func TestStore_UpsertNote(t *testing.T) {
	created := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	store := &model.Store{Notes: []model.Note{
		{ID: "n1", Title: "Old", Path: "/a.md", CreatedAt: created},
	}}

	updated := store.UpsertNote(model.Note{ID: "other", Title: "New", Path: "/a.md"})
	if len(store.Notes) != 1 {
		t.Fatalf("expected upsert to replace, got %d notes", len(store.Notes))
	}
	if updated.ID != "n1" || updated.Title != "New" || !updated.CreatedAt.Equal(created) {
		t.Errorf("unexpected upserted note: %+v", *updated)
	}

	store.UpsertNote(model.Note{ID: "n2", Title: "Fresh", Path: "/b.md"})
	if len(store.Notes) != 2 {
		t.Errorf("expected append for new path, got %d notes", len(store.Notes))
	}
}

func TestStore_ImportNotes_SkipsDuplicates(t *testing.T) {
	store := &model.Store{
		Notes: []model.Note{{ID: "n1", Title: "Pasta", Body: "Boil water."}},
	}

	added, skipped := store.ImportNotes([]model.Note{
		{ID: "i1", Title: "Pasta", Body: "Boil water."},
		{ID: "i2", Title: "Pasta", Body: "Make sauce."},
		{ID: "i3", Title: "Pasta", Body: "Make sauce."},
	})

	if added != 1 || skipped != 2 {
		t.Errorf("expected 1 added and 2 skipped, got %d and %d", added, skipped)
	}
	if len(store.Notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(store.Notes))
	}
	if store.Notes[1].ID != "i2" {
		t.Errorf("expected i2 appended, got %s", store.Notes[1].ID)
	}
}
