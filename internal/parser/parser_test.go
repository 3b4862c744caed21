package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/canvas/internal/models"
)

func TestParse_FrontmatterAndBody(t *testing.T) {
	input := []byte("---\nid: p1\ntitle: Hello\ntags:\n  - go\n  - canvas\n---\n# Hello\nBody text.\n")
	r := Parse(input)
	assert.Equal(t, "Hello", r.Title)
	assert.Equal(t, "p1", r.ID())
	assert.Equal(t, []string{"go", "canvas"}, r.Tags())
	assert.Equal(t, "# Hello\nBody text.\n", r.Body)
}

func TestParse_CommaSeparatedTags(t *testing.T) {
	r := Parse([]byte("---\ntags: travel, food ,, art\n---\nbody"))
	assert.Equal(t, []string{"travel", "food", "art"}, r.Tags())
}

func TestParse_NoFrontmatter(t *testing.T) {
	r := Parse([]byte("# Just a heading\nSome text.\n"))
	assert.Nil(t, r.Frontmatter)
	assert.Equal(t, "Just a heading", r.Title)
	assert.Empty(t, r.ID())
	assert.Nil(t, r.Tags())
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	input := []byte("---\n: invalid: yaml: {{{\n---\nBody\n")
	r := Parse(input)
	assert.Nil(t, r.Frontmatter)
	assert.Equal(t, string(input), r.Body)
}

func TestParse_UnclosedFrontmatter(t *testing.T) {
	input := []byte("---\ntitle: x\nno closing line")
	r := Parse(input)
	assert.Nil(t, r.Frontmatter)
	assert.Equal(t, string(input), r.Body)
}

func TestParse_BlankLinesAfterFrontmatterKept(t *testing.T) {
	tests := []struct {
		name  string
		input string
		body  string
	}{
		{"lf", "---\ntitle: x\n---\n\n\nBody", "\n\nBody"},
		{"crlf", "---\r\ntitle: x\r\n---\r\n\r\nBody", "\r\nBody"},
		{"no trailing newline", "---\ntitle: x\n---", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Parse([]byte(tt.input))
			require.NotNil(t, r.Frontmatter)
			assert.Equal(t, tt.body, r.Body)
		})
	}
}

func TestDeriveTitle_FrontmatterOverH1(t *testing.T) {
	assert.Equal(t, "FM Title", deriveTitle(&Frontmatter{Title: "FM Title"}, "# H1 Title\ntext"))
}

func TestDeriveTitle_H1Fallback(t *testing.T) {
	assert.Equal(t, "My Heading", deriveTitle(nil, "some text\n# My Heading\nmore"))
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b c"}, SplitTags(" a ,, b c ,"))
	assert.Nil(t, SplitTags(""))
}

func TestFormat_RoundTrip(t *testing.T) {
	for name, content := range map[string]string{
		"text and image": "Body\n\n![alt text](x.png)",
		"image only":     "\n\n![alt text](x.png)",
		"leading blank":  "\nBody",
		"empty":          "",
	} {
		t.Run(name, func(t *testing.T) {
			p := &models.Post{ID: "p1", Title: "Hello: world", Tags: []string{"a", "b"}, Content: content}
			data, err := Format(p)
			require.NoError(t, err)

			r := Parse(data)
			assert.Equal(t, "p1", r.ID())
			assert.Equal(t, "Hello: world", r.Title)
			assert.Equal(t, []string{"a", "b"}, r.Tags())
			assert.Equal(t, content, r.Body)
		})
	}
}
