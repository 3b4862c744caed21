// Package parser reads and writes the markdown-with-frontmatter form of a
// post used by the importer and the MCP tools.
package parser

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/canvas/internal/models"
)

const delim = "---"

// Frontmatter is the YAML header of a post document.
type Frontmatter struct {
	ID    string  `yaml:"id,omitempty"`
	Title string  `yaml:"title,omitempty"`
	Tags  TagList `yaml:"tags,omitempty"`
}

// TagList accepts either a YAML sequence or a comma-separated string.
type TagList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *TagList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*t = SplitTags(s)
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		*t = items
		return nil
	default:
		return fmt.Errorf("tags: unsupported YAML kind %d", node.Kind)
	}
}

// Result holds the output of parsing a post document.
type Result struct {
	Frontmatter *Frontmatter
	Body        string
	Title       string
}

// Parse separates frontmatter from body. The title comes from frontmatter,
// falling back to the first H1 heading. Invalid YAML leaves the whole input
// as body.
func Parse(data []byte) *Result {
	fm, body := splitFrontmatter(data)
	return &Result{
		Frontmatter: fm,
		Body:        body,
		Title:       deriveTitle(fm, body),
	}
}

// Tags returns the frontmatter tags, or nil without frontmatter.
func (r *Result) Tags() []string {
	if r.Frontmatter == nil {
		return nil
	}
	return r.Frontmatter.Tags
}

// ID returns the frontmatter id, or "".
func (r *Result) ID() string {
	if r.Frontmatter == nil {
		return ""
	}
	return strings.TrimSpace(r.Frontmatter.ID)
}

// splitFrontmatter separates YAML frontmatter (between leading --- lines)
// from the body. Without frontmatter the entire content is body.
func splitFrontmatter(data []byte) (*Frontmatter, string) {
	trimmed := bytes.TrimLeft(data, "\n\r")
	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	yamlBlock := rest[:idx]
	// Only the closing delimiter's own line ending is dropped; blank lines
	// after it belong to the body.
	body := string(rest[idx+1+len(delim):])
	if strings.HasPrefix(body, "\r\n") {
		body = body[2:]
	} else if strings.HasPrefix(body, "\n") {
		body = body[1:]
	}

	var fm Frontmatter
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, string(data)
	}
	return &fm, body
}

// deriveTitle returns the frontmatter title if present, otherwise the first
// H1 heading, otherwise "".
func deriveTitle(fm *Frontmatter, body string) string {
	if fm != nil && strings.TrimSpace(fm.Title) != "" {
		return strings.TrimSpace(fm.Title)
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// SplitTags splits a comma-separated list, dropping blank entries.
func SplitTags(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Format writes p as a markdown document with frontmatter. Parse reads it back.
func Format(p *models.Post) ([]byte, error) {
	fm, err := yaml.Marshal(Frontmatter{ID: p.ID, Title: p.Title, Tags: p.Tags})
	if err != nil {
		return nil, fmt.Errorf("parser: encode frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(delim + "\n")
	buf.Write(fm)
	buf.WriteString(delim + "\n")
	buf.WriteString(p.Content)
	return buf.Bytes(), nil
}
