// Package notice formats user-facing notices raised by the tag client.
package notice

import (
	"fmt"
	"html"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/nikbrunner/autotag/internal/ai"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Source labels every notice.
const Source = "Auto Tag"

// Message returns the user-facing text for n.
func Message(n ai.Notice) string {
	return "Error: " + n.Message
}

// HTML renders n as a markup fragment for hosts that display rich notices.
func HTML(n ai.Notice) string {
	return fmt.Sprintf("<strong>%s</strong><br>%s", html.EscapeString(Source), html.EscapeString(Message(n)))
}

// Plain flattens a markup fragment to text, turning <br> into newlines.
func Plain(fragment string) (string, error) {
	nodes, err := xhtml.ParseFragment(strings.NewReader(fragment), &xhtml.Node{
		Type:     xhtml.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		switch {
		case n.Type == xhtml.TextNode:
			b.WriteString(n.Data)
		case n.Type == xhtml.ElementNode && n.Data == "br":
			b.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}

	return strings.TrimSpace(b.String()), nil
}

var (
	sourceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true)

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))
)

// Terminal prints notices to a writer, one line each.
type Terminal struct {
	mu  sync.Mutex
	out io.Writer
}

// NewTerminal creates a Terminal writing to out.
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

// Notify implements ai.Notifier. The notice is built as a markup fragment
// and flattened, so the terminal shows the same heading and message lines a
// rich host would.
func (t *Terminal) Notify(n ai.Notice) {
	heading, message := Source, Message(n)
	if text, err := Plain(HTML(n)); err == nil {
		if h, m, ok := strings.Cut(text, "\n"); ok {
			heading, message = h, m
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "%s %s\n", sourceStyle.Render(heading), messageStyle.Render(message))
}
