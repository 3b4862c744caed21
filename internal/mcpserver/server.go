// Package mcpserver provides an MCP (Model Context Protocol) server that lets
// an LLM read and publish posts as a configured author over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/canvas/internal/apperr"
	"github.com/starford/canvas/internal/auth"
	"github.com/starford/canvas/internal/draft"
	"github.com/starford/canvas/internal/editor"
	"github.com/starford/canvas/internal/parser"
	"github.com/starford/canvas/internal/postservice"
)

const formatURI = "canvas://post-format"

// Server wraps the MCP server with canvas tools.
type Server struct {
	mcp    *server.MCPServer
	editor *editor.Editor
	posts  *postservice.Service
	author *auth.Session
	fetch  fetcher
}

// New creates an MCP server. author is the session used by save_post; when
// nil every save is refused. Uploads go through ed and share its size cap.
func New(ed *editor.Editor, posts *postservice.Service, author *auth.Session) *Server {
	s := &Server{editor: ed, posts: posts, author: author, fetch: fetchHTTP}

	s.mcp = server.NewMCPServer(
		"Canvas",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_posts",
		mcp.WithDescription("List posts, most recently updated first. Optionally filter by a title or tag substring."),
		mcp.WithString("query", mcp.Description("Case-insensitive filter on title and tags")),
	), s.listPosts)

	s.mcp.AddTool(mcp.NewTool("read_post",
		mcp.WithDescription("Read a post as Markdown with YAML frontmatter (id, title, tags)."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Post id")),
	), s.readPost)

	s.mcp.AddTool(mcp.NewTool("save_post",
		mcp.WithDescription("Create a post, or replace an existing one when id is given. "+
			"At most 5 distinct tags are kept; extra or duplicate tags are dropped. "+
			"Read the format first via get_post_format or the "+formatURI+" resource."),
		mcp.WithString("id", mcp.Description("Existing post id; omit to create a new post")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Post title")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown body without frontmatter")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags, e.g. \"travel, food\"")),
	), s.savePost)

	s.mcp.AddTool(mcp.NewTool("upload_asset",
		mcp.WithDescription("Store an image from an http(s) URL or a base64 data URI and return the Markdown embed to append to a post body."),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or data:image/...;base64,... URI")),
		mcp.WithString("filename", mcp.Description("Optional file name; derived from the URL when omitted")),
	), s.uploadAsset)

	s.mcp.AddTool(mcp.NewTool("get_post_format",
		mcp.WithDescription("Returns the canvas post format. Call this before saving posts."),
	), s.getPostFormat)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Post Format",
			mcp.WithResourceDescription("Markdown post format used by canvas."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPostFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.posts.List(ctx, req.GetString("query", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.posts.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := parser.Format(&p.Post)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(doc)), nil
}

type saveResult struct {
	ID   string   `json:"id"`
	Tags []string `json:"tags"`
}

func (s *Server) savePost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if s.author == nil {
		return mcp.NewToolResultError(apperr.ErrNoSession.Error() + ": no author configured"), nil
	}

	v, err := s.editor.Open(ctx, req.GetString("id", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	_, err = s.editor.Update(v.Handle, func(d *draft.Draft) error {
		d.SetTitle(title)
		d.SetBody(content)
		d.ReplaceTags(parser.SplitTags(req.GetString("tags", "")))
		return nil
	})
	if err != nil {
		_ = s.editor.Discard(v.Handle)
		return mcp.NewToolResultError(err.Error()), nil
	}

	saved, err := s.editor.Save(ctx, s.author, v.Handle)
	if err != nil {
		_ = s.editor.Discard(v.Handle)
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.Marshal(saveResult{ID: saved.ID, Tags: saved.Tags})
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getPostFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PostFormat), nil
}

func (s *Server) readPostFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     PostFormat,
		},
	}, nil
}
