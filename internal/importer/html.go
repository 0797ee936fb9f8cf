package importer

import (
	"io"
	"strings"

	"github.com/nikbrunner/autotag/internal/model"
	"golang.org/x/net/html"
)

// blockElements end a line when extracting text.
var blockElements = map[string]bool{
	"p": true, "div": true, "li": true, "br": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"article": true, "section": true, "blockquote": true, "pre": true,
}

// ParseHTMLNotes parses an HTML export into notes. Each <article> becomes a
// note; a document without articles becomes a single note.
func ParseHTMLNotes(r io.Reader) ([]model.Note, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var articles []*html.Node
	var find func(*html.Node)
	find = func(n *html.Node) {
		if n.Type == html.ElementNode && strings.ToLower(n.Data) == "article" {
			articles = append(articles, n)
			return // Nested articles belong to their parent
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(doc)

	if len(articles) == 0 {
		note, ok := noteFromNode(doc, findElement(doc, "title"))
		if !ok {
			return []model.Note{}, nil
		}
		return []model.Note{note}, nil
	}

	notes := make([]model.Note, 0, len(articles))
	for _, a := range articles {
		if note, ok := noteFromNode(a, nil); ok {
			notes = append(notes, note)
		}
	}
	return notes, nil
}

// noteFromNode builds a note from n. fallbackTitle is used when n has no
// heading. Returns false if the node has no text at all.
func noteFromNode(n *html.Node, fallbackTitle *html.Node) (model.Note, bool) {
	heading := findElement(n, "h1", "h2")

	title := ""
	if heading != nil {
		title = getTextContent(heading)
	} else if fallbackTitle != nil {
		title = getTextContent(fallbackTitle)
	}

	body := strings.TrimSpace(extractText(n, heading))
	if title == "" && body == "" {
		return model.Note{}, false
	}

	return model.NewNote(model.NewNoteParams{
		Title: title,
		Body:  body,
		Tags:  model.NormalizeTags(findTags(n)),
	}), true
}

// ExtractText returns the readable text of an HTML document, one line per
// block element.
func ExtractText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(extractText(doc, nil)), nil
}

// extractText walks n, skipping script, style, head and the skip node.
func extractText(n *html.Node, skip *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n == skip {
			return
		}
		switch n.Type {
		case html.TextNode:
			text := strings.Join(strings.Fields(n.Data), " ")
			if text != "" {
				if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
					b.WriteString(" ")
				}
				b.WriteString(text)
			}
			return
		case html.ElementNode:
			switch strings.ToLower(n.Data) {
			case "script", "style", "head", "title", "template":
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && blockElements[strings.ToLower(n.Data)] {
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
				b.WriteString("\n")
			}
		}
	}
	walk(n)
	return b.String()
}

// findTags returns the text of <a rel="tag"> links under n.
func findTags(n *html.Node) []string {
	var tags []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && strings.ToLower(n.Data) == "a" {
			for _, rel := range strings.Fields(getAttr(n, "rel")) {
				if strings.EqualFold(rel, "tag") {
					tags = append(tags, getTextContent(n))
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return tags
}

// findElement returns the first element under n matching one of names.
func findElement(n *html.Node, names ...string) *html.Node {
	if n.Type == html.ElementNode {
		for _, name := range names {
			if strings.EqualFold(n.Data, name) {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, names...); found != nil {
			return found
		}
	}
	return nil
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Join(strings.Fields(text.String()), " ")
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == key {
			return attr.Val
		}
	}
	return ""
}
