package mcpserver

// PostFormat describes how posts are written so LLM clients produce bodies
// the viewer renders well.
const PostFormat = `# Canvas Post Format

A post has a title, a Markdown body and up to five tags.

## Reading

` + "`read_post`" + ` returns the post with YAML frontmatter:

` + "```" + `markdown
---
id: 0b7c6f0e-2f55-4a7e-9b1f-6a3d2f1c9e10
title: A week in Lisbon
tags:
    - travel
    - food
---
Body text in Markdown.
` + "```" + `

## Saving

Call ` + "`save_post`" + ` with ` + "`title`" + `, ` + "`content`" + ` (body only, no frontmatter) and
optional comma-separated ` + "`tags`" + `. Pass ` + "`id`" + ` to replace an existing post; omit it to
create one. Saving replaces the whole post.

## Tags

1. At most **5** tags per post. Extra tags are dropped silently.
2. Tags are trimmed. Empty tags are ignored.
3. Duplicates are dropped. Comparison is case-sensitive, so ` + "`Go`" + ` and ` + "`go`" + ` are different tags.
4. Order is kept as given.

## Images

- Upload with ` + "`upload_asset`" + ` (http(s) URL or base64 data URI; png, jpg, gif or webp, detected from the bytes).
- It returns a ` + "`markdown`" + ` field such as ` + "`![alt text](https://.../images/1718000000000-photo.png)`" + `.
- Append it to the end of the body after a blank line.

## Body

- GitHub-flavored Markdown: tables, task lists, strikethrough, fenced code with a language.
- Raw HTML is not rendered.
`
