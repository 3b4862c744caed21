package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTML_Basics(t *testing.T) {
	r := New(DefaultStyle)

	out, err := r.HTML("# Hello World\n\nSome *text*.")
	require.NoError(t, err)
	assert.Contains(t, out, `<h1 id="hello-world">Hello World</h1>`)
	assert.Contains(t, out, "<em>text</em>")
}

func TestHTML_Image(t *testing.T) {
	r := New(DefaultStyle)

	out, err := r.HTML("intro\n\n![alt text](https://cdn.test/images/1-a.png)")
	require.NoError(t, err)
	assert.Contains(t, out, `<img src="https://cdn.test/images/1-a.png" alt="alt text">`)
}

func TestHTML_GFM(t *testing.T) {
	r := New(DefaultStyle)

	out, err := r.HTML("| a | b |\n|---|---|\n| 1 | 2 |\n\n~~gone~~\n\n- [x] done")
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<del>gone</del>")
	assert.Contains(t, out, `type="checkbox"`)
}

func TestHTML_RawHTMLOmitted(t *testing.T) {
	r := New(DefaultStyle)

	out, err := r.HTML("<script>alert(1)</script>\n\nok")
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "<p>ok</p>")
}

func TestHTML_HighlightsFencedCode(t *testing.T) {
	r := New(DefaultStyle)

	out, err := r.HTML("```go\nfunc main() {}\n```\n")
	require.NoError(t, err)
	assert.Contains(t, out, `class="chroma"`)
	assert.Contains(t, out, "func")
}

func TestHTML_UnknownLanguageFallsBack(t *testing.T) {
	r := New("no-such-style")

	out, err := r.HTML("```klingon\n<b>qapla'</b>\n```\n")
	require.NoError(t, err)
	assert.NotContains(t, out, "<b>")
	assert.Contains(t, out, "&lt;b&gt;")
}

func TestCSS(t *testing.T) {
	css := New(DefaultStyle).CSS()
	assert.True(t, strings.Contains(css, ".chroma"), "css: %q", css)
}
