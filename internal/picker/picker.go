package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nikbrunner/autotag/internal/model"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	existingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))
)

// Item is one tag row in the picker.
type Item struct {
	Tag      string
	Selected bool
	Existing bool // already on the note
}

// Picker is a TUI for choosing which suggested tags to keep.
type Picker struct {
	title     string
	items     []Item
	cursor    int
	keys      KeyMap
	adding    bool
	input     textinput.Model
	accepted  bool
	cancelled bool
}

// New creates a Picker. Existing tags come first, followed by suggestions
// not already on the note. Everything starts selected.
func New(title string, suggested, existing []string) Picker {
	var items []Item
	seen := make(map[string]bool)
	for _, tag := range existing {
		if seen[tag] {
			continue
		}
		seen[tag] = true
		items = append(items, Item{Tag: tag, Selected: true, Existing: true})
	}
	for _, tag := range model.NormalizeTags(suggested) {
		if seen[tag] {
			continue
		}
		seen[tag] = true
		items = append(items, Item{Tag: tag, Selected: true})
	}

	input := textinput.New()
	input.Placeholder = "new_tag"
	input.Prompt = "+ "
	input.CharLimit = 64

	return Picker{
		title: title,
		items: items,
		keys:  DefaultKeyMap(),
		input: input,
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if p.adding {
			return p.updateAdding(msg)
		}

		switch {
		case key.Matches(msg, p.keys.Cancel):
			p.cancelled = true
			return p, tea.Quit

		case key.Matches(msg, p.keys.Accept):
			p.accepted = true
			return p, tea.Quit

		case key.Matches(msg, p.keys.Down):
			if p.cursor < len(p.items)-1 {
				p.cursor++
			}

		case key.Matches(msg, p.keys.Up):
			if p.cursor > 0 {
				p.cursor--
			}

		case key.Matches(msg, p.keys.Toggle):
			if p.cursor < len(p.items) {
				p.items[p.cursor].Selected = !p.items[p.cursor].Selected
			}

		case key.Matches(msg, p.keys.All):
			p.setAll(true)

		case key.Matches(msg, p.keys.None):
			p.setAll(false)

		case key.Matches(msg, p.keys.Add):
			p.adding = true
			p.input.Reset()
			cmd := p.input.Focus()
			return p, cmd
		}
	}

	return p, nil
}

// updateAdding handles keys while the new-tag input is open.
func (p Picker) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		p.adding = false
		p.input.Blur()
		return p, nil

	case tea.KeyEnter:
		p.adding = false
		p.input.Blur()
		p.addTag(p.input.Value())
		return p, nil
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

// addTag appends a normalized tag, or selects it if already listed.
func (p *Picker) addTag(raw string) {
	tag := model.NormalizeTag(raw)
	if tag == "" {
		return
	}
	for i := range p.items {
		if p.items[i].Tag == tag {
			p.items[i].Selected = true
			p.cursor = i
			return
		}
	}
	p.items = append(p.items, Item{Tag: tag, Selected: true})
	p.cursor = len(p.items) - 1
}

func (p *Picker) setAll(selected bool) {
	for i := range p.items {
		p.items[i].Selected = selected
	}
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Tags for: " + p.title))
	b.WriteString("\n\n")

	if len(p.items) == 0 {
		b.WriteString(existingStyle.Render("  No tags suggested"))
		b.WriteString("\n")
	}

	for i, item := range p.items {
		cursor := "  "
		style := normalStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedStyle
		}

		box := "[ ]"
		if item.Selected {
			box = "[x]"
		}

		b.WriteString(fmt.Sprintf("%s%s %s", cursor, box, style.Render(item.Tag)))
		if item.Existing {
			b.WriteString(" " + existingStyle.Render("(existing)"))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if p.adding {
		b.WriteString(p.input.View())
		b.WriteString("\n\n")
		b.WriteString(hintStyle.Render("enter: add  esc: back"))
		return b.String()
	}

	b.WriteString(hintStyle.Render(p.keys.hints()))

	return b.String()
}

// Items returns the current rows.
func (p Picker) Items() []Item {
	return p.items
}

// SelectedTags returns the selected tags in display order, or nil if the
// picker was cancelled.
func (p Picker) SelectedTags() []string {
	if p.cancelled || !p.accepted {
		return nil
	}
	tags := []string{}
	for _, item := range p.items {
		if item.Selected {
			tags = append(tags, item.Tag)
		}
	}
	return tags
}

// Cancelled returns true if the user cancelled the selection.
func (p Picker) Cancelled() bool {
	return p.cancelled
}

func joinHints(parts []string) string {
	return strings.Join(parts, "  ")
}
