package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

var ErrNotMapping = errors.New("front matter is not a mapping")

// Document is a markdown note split into YAML front matter and body.
// Key order and comments in the front matter survive a round trip.
type Document struct {
	meta *yaml.Node // mapping node, nil when the note has no front matter
	Body string
}

// Parse splits data into front matter and body.
func Parse(data []byte) (*Document, error) {
	front, body, ok := split(string(data))
	if !ok {
		return &Document{Body: string(data)}, nil
	}

	doc := &Document{Body: body}
	if strings.TrimSpace(front) == "" {
		doc.meta = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		return doc, nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal([]byte(front), &root); err != nil {
		return nil, fmt.Errorf("parse front matter: %w", err)
	}
	meta, err := topMapping(&root)
	if err != nil {
		return nil, err
	}
	doc.meta = meta

	return doc, nil
}

// topMapping returns the mapping at the top of a parsed front matter block.
// A block holding only comments or a null value counts as an empty mapping,
// keeping its comment.
func topMapping(root *yaml.Node) (*yaml.Node, error) {
	empty := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", HeadComment: root.HeadComment}

	switch {
	case root.Kind == 0:
		return empty, nil
	case root.Kind != yaml.DocumentNode:
		return nil, ErrNotMapping
	case len(root.Content) == 0:
		return empty, nil
	}

	top := root.Content[0]
	switch {
	case top.Kind == yaml.MappingNode:
		return top, nil
	case top.Kind == yaml.ScalarNode && top.Tag == "!!null":
		for _, c := range []string{top.HeadComment, top.LineComment, top.FootComment, root.FootComment} {
			if empty.HeadComment == "" {
				empty.HeadComment = c
			}
		}
		return empty, nil
	}
	return nil, ErrNotMapping
}

// ReadFile parses the markdown file at path.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// WriteFile renders doc to path.
func WriteFile(path string, doc *Document) error {
	data, err := doc.Render()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// split returns the front matter text between the opening and closing
// delimiter lines and the body after it.
func split(s string) (front, body string, ok bool) {
	if !strings.HasPrefix(s, delimiter+"\n") && !strings.HasPrefix(s, delimiter+"\r\n") {
		return "", s, false
	}
	rest := s[strings.IndexByte(s, '\n')+1:]

	idx := 0
	for {
		end := strings.IndexByte(rest[idx:], '\n')
		line := rest[idx:]
		if end != -1 {
			line = rest[idx : idx+end]
		}
		if strings.TrimRight(line, "\r") == delimiter {
			if end == -1 {
				return rest[:idx], "", true
			}
			return rest[:idx], rest[idx+end+1:], true
		}
		if end == -1 {
			return "", s, false
		}
		idx += end + 1
	}
}

// HasFrontMatter reports whether the note had (or now has) front matter.
func (d *Document) HasFrontMatter() bool {
	return d.meta != nil
}

// value returns the value node for key, or nil.
func (d *Document) value(key string) *yaml.Node {
	if d.meta == nil {
		return nil
	}
	for i := 0; i+1 < len(d.meta.Content); i += 2 {
		if d.meta.Content[i].Value == key {
			return d.meta.Content[i+1]
		}
	}
	return nil
}

// Tags returns the tags listed under the "tags" key. Both a YAML list and
// a comma or space separated string are accepted.
func (d *Document) Tags() []string {
	node := d.value("tags")
	if node == nil {
		return []string{}
	}

	var raw []string
	switch node.Kind {
	case yaml.SequenceNode:
		for _, item := range node.Content {
			if item.Kind == yaml.ScalarNode {
				raw = append(raw, item.Value)
			}
		}
	case yaml.ScalarNode:
		raw = strings.FieldsFunc(node.Value, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
	}

	tags := make([]string, 0, len(raw))
	for _, tag := range raw {
		tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// SetTags replaces the "tags" key with a YAML list, creating front matter
// if the note has none.
func (d *Document) SetTags(tags []string) {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, tag := range tags {
		seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: tag})
	}

	if d.meta == nil {
		d.meta = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	}
	for i := 0; i+1 < len(d.meta.Content); i += 2 {
		if d.meta.Content[i].Value == "tags" {
			d.meta.Content[i+1] = seq
			return
		}
	}
	d.meta.Content = append(d.meta.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "tags"},
		seq,
	)
}

// Title returns the "title" key, falling back to the first level-one
// heading of the body.
func (d *Document) Title() string {
	if node := d.value("title"); node != nil && node.Kind == yaml.ScalarNode {
		return node.Value
	}
	for _, line := range strings.Split(d.Body, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:])
		}
	}
	return ""
}

// Render serializes the document back to markdown.
func (d *Document) Render() ([]byte, error) {
	if d.meta == nil {
		return []byte(d.Body), nil
	}

	var buf bytes.Buffer
	buf.WriteString(delimiter + "\n")
	switch {
	case len(d.meta.Content) == 0 && d.meta.HeadComment != "":
		buf.WriteString(d.meta.HeadComment + "\n")
	case len(d.meta.Content) > 0:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(d.meta); err != nil {
			return nil, fmt.Errorf("encode front matter: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode front matter: %w", err)
		}
	}
	buf.WriteString(delimiter + "\n")
	buf.WriteString(d.Body)

	return buf.Bytes(), nil
}
