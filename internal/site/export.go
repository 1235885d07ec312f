package site

import (
	"context"
	"fmt"
	"html"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/actionhero/docsite/pkg/core"
	"github.com/actionhero/docsite/pkg/logging"
	"github.com/actionhero/docsite/pkg/pool"
)

// ExportResult summarizes a static export.
type ExportResult struct {
	Pages  int
	Assets int
}

// RenderPage renders one page as static HTML with section highlighted.
// The output carries no live client script.
func (s *Site) RenderPage(ctx context.Context, urlPath, section string) (string, error) {
	page, ok := s.lib.Page(urlPath)
	if !ok {
		return "", fmt.Errorf("page %q not found", urlPath)
	}

	view := newPageView(s, page)
	view.static = true

	params := core.Params{"path": page.Path}
	if section != "" {
		params[SectionParam] = section
	}
	if err := view.Mount(ctx, params, core.Session{}); err != nil {
		return "", fmt.Errorf("mounting %s: %w", page.Path, err)
	}
	return pool.RenderString(ctx, view.Render(ctx))
}

// Export writes every page to outDir/<path>/index.html and copies the
// static assets to outDir/static.
func (s *Site) Export(ctx context.Context, outDir string) (*ExportResult, error) {
	res := &ExportResult{}

	for _, page := range s.lib.Pages() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		doc, err := s.RenderPage(ctx, page.Path, "")
		if err != nil {
			return res, err
		}
		target := filepath.Join(outDir, filepath.FromSlash(strings.TrimPrefix(page.Path, "/")), "index.html")
		if err := writeFile(target, []byte(doc)); err != nil {
			return res, err
		}
		s.logger.Debug("exported page", logging.Page(page.Path), logging.String("file", target))
		res.Pages++
	}

	if pages := s.lib.Pages(); len(pages) > 0 {
		if err := writeFile(filepath.Join(outDir, "index.html"), redirectDocument(pages[0].Path)); err != nil {
			return res, err
		}
	}

	if s.static != nil {
		n, err := copyAssets(s.static, filepath.Join(outDir, "static"))
		res.Assets = n
		if err != nil {
			return res, err
		}
	}

	s.logger.Info("export complete",
		logging.String("dir", outDir),
		logging.Int("pages", res.Pages),
		logging.Int("assets", res.Assets),
	)
	return res, nil
}

func copyAssets(fsys fs.FS, dst string) (int, error) {
	matches, err := doublestar.Glob(fsys, "**", doublestar.WithFilesOnly())
	if err != nil {
		return 0, fmt.Errorf("listing assets: %w", err)
	}
	n := 0
	for _, name := range matches {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return n, fmt.Errorf("reading %s: %w", name, err)
		}
		if err := writeFile(filepath.Join(dst, filepath.FromSlash(path.Clean(name))), data); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func writeFile(name string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(name), err)
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

func redirectDocument(to string) []byte {
	u := html.EscapeString(to)
	return []byte(fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta http-equiv="refresh" content="0; url=%s">
<link rel="canonical" href="%s">
</head>
<body><a href="%s">%s</a></body>
</html>
`, u, u, u, u))
}
