// Package importer turns a directory of markdown files into posts. Each file
// goes through the same editor flow as an interactive save, so tag rules and
// id handling are identical.
package importer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/canvas/internal/auth"
	"github.com/starford/canvas/internal/checksum"
	"github.com/starford/canvas/internal/database"
	"github.com/starford/canvas/internal/draft"
	"github.com/starford/canvas/internal/editor"
	"github.com/starford/canvas/internal/parser"
	"github.com/starford/canvas/internal/storage"
)

// Sources remembers which post each file was imported as.
type Sources interface {
	GetImportSource(ctx context.Context, path string) (*database.ImportSource, error)
	PutImportSource(ctx context.Context, src database.ImportSource) error
	DeleteImportSource(ctx context.Context, path string) error
	AllImportChecksums(ctx context.Context) (map[string]string, error)
}

// Result counts the outcome of a Sync pass.
type Result struct {
	Imported int
	Skipped  int
	Failed   int
}

// Importer imports markdown files from a directory as the configured author.
type Importer struct {
	editor  *editor.Editor
	sources Sources
	files   *storage.FS
	author  *auth.Session
	logger  *slog.Logger
}

// New creates an importer reading from files.
func New(ed *editor.Editor, sources Sources, files *storage.FS, author *auth.Session, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{editor: ed, sources: sources, files: files, author: author, logger: logger}
}

// Sync walks the directory and imports every new or changed file. Unchanged
// files (same checksum as the last import) are skipped. A failing file is
// logged and counted; the pass continues. Paths that no longer exist are
// forgotten, their posts are kept.
func (im *Importer) Sync(ctx context.Context) (Result, error) {
	var res Result

	metas, err := im.files.List("")
	if err != nil {
		return res, err
	}
	checksums, err := im.sources.AllImportChecksums(ctx)
	if err != nil {
		return res, err
	}

	present := make(map[string]bool, len(metas))
	for _, m := range metas {
		present[m.Path] = true
	}
	for path := range checksums {
		if present[path] {
			continue
		}
		if err := im.sources.DeleteImportSource(ctx, path); err != nil {
			return res, err
		}
		im.logger.Debug("import: source gone", slog.String("path", path))
	}

	for _, m := range metas {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if sum, ok := checksums[m.Path]; ok && sum == m.Checksum {
			res.Skipped++
			continue
		}

		data, err := im.files.Read(m.Path)
		if err != nil {
			im.logger.Warn("import: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			res.Failed++
			continue
		}
		id, err := im.ImportFile(ctx, m.Path, data)
		if err != nil {
			im.logger.Warn("import: save failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			res.Failed++
			continue
		}
		im.logger.Debug("import: saved", slog.String("path", m.Path), slog.String("post_id", id))
		res.Imported++
	}
	return res, nil
}

// ImportFile saves data as a post and records the source path. The post is
// edited in place when the frontmatter carries an id or path was imported
// before; otherwise a new post is created. It returns the post id.
func (im *Importer) ImportFile(ctx context.Context, path string, data []byte) (string, error) {
	doc := parser.Parse(data)

	id := doc.ID()
	if id == "" {
		src, err := im.sources.GetImportSource(ctx, path)
		if err != nil {
			return "", err
		}
		if src != nil {
			id = src.PostID
		}
	}

	v, err := im.editor.Open(ctx, id)
	if err != nil {
		return "", err
	}
	_, err = im.editor.Update(v.Handle, func(d *draft.Draft) error {
		d.SetTitle(doc.Title)
		d.SetBody(doc.Body)
		if kept := d.ReplaceTags(doc.Tags()); kept < len(doc.Tags()) {
			im.logger.Debug("import: tags dropped", slog.String("path", path), slog.Int("kept", kept))
		}
		return nil
	})
	if err != nil {
		_ = im.editor.Discard(v.Handle)
		return "", err
	}

	saved, err := im.editor.Save(ctx, im.author, v.Handle)
	if err != nil {
		_ = im.editor.Discard(v.Handle)
		return "", fmt.Errorf("import %s: %w", path, err)
	}

	if err := im.sources.PutImportSource(ctx, database.ImportSource{
		Path:     path,
		PostID:   saved.ID,
		Checksum: checksum.Sum(data),
	}); err != nil {
		return saved.ID, err
	}
	return saved.ID, nil
}
