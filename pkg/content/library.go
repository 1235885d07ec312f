package content

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/yuin/goldmark"

	"github.com/actionhero/docsite/pkg/core"
	"github.com/actionhero/docsite/pkg/docpage"
	"github.com/actionhero/docsite/pkg/logging"
)

// Content errors.
var (
	ErrNoPages         = errors.New("content: no pages found")
	ErrInvalidManifest = errors.New("content: invalid manifest")
	ErrDuplicatePath   = errors.New("content: duplicate page path")
	ErrMissingBlock    = errors.New("content: block has no markdown file")
)

// Block is one rendered section body.
type Block struct {
	ID   string
	Body core.HTML
}

// Page is a loaded documentation page.
type Page struct {
	Path     string
	Dir      string
	Title    docpage.TitleSection
	Sections []docpage.Section
	Links    []docpage.Link
	Blocks   []Block
}

// Registry builds the page's section registry.
func (p *Page) Registry() *docpage.Registry {
	return docpage.NewRegistry(p.Sections...)
}

// HasSection reports whether id is a sidebar section of the page.
func (p *Page) HasSection(id string) bool {
	for _, s := range p.Sections {
		if s.ID == id {
			return true
		}
	}
	return false
}

// Build assembles a docpage for one render with current as the
// highlighted section.
func (p *Page) Build(current string, opts ...docpage.Option) *docpage.Page {
	page := docpage.New(p.Registry(), current, p.Title, p.Links, opts...)
	for _, b := range p.Blocks {
		page.RegisterSection(b.ID, b.Body)
	}
	return page
}

// Library is an immutable set of pages keyed by URL path.
type Library struct {
	pages map[string]*Page
	paths []string
}

type loadConfig struct {
	md     goldmark.Markdown
	logger logging.Logger
}

// LoadOption configures Load.
type LoadOption func(*loadConfig)

// WithMarkdown sets the markdown converter.
func WithMarkdown(md goldmark.Markdown) LoadOption {
	return func(c *loadConfig) {
		c.md = md
	}
}

// WithLogger sets the logger used for authoring warnings.
func WithLogger(logger logging.Logger) LoadOption {
	return func(c *loadConfig) {
		c.logger = logger
	}
}

// Load reads every page.yaml under fsys.
func Load(fsys fs.FS, opts ...LoadOption) (*Library, error) {
	cfg := &loadConfig{logger: logging.NopLogger{}}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.md == nil {
		cfg.md = NewMarkdown("")
	}

	matches, err := doublestar.Glob(fsys, "**/"+ManifestName)
	if err != nil {
		return nil, fmt.Errorf("finding manifests: %w", err)
	}
	if len(matches) == 0 {
		return nil, ErrNoPages
	}
	sort.Strings(matches)

	lib := &Library{pages: make(map[string]*Page, len(matches))}
	for _, match := range matches {
		page, err := loadPage(fsys, match, cfg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", match, err)
		}
		if prev, ok := lib.pages[page.Path]; ok {
			return nil, fmt.Errorf("%w: %s in %s and %s", ErrDuplicatePath, page.Path, prev.Dir, page.Dir)
		}
		lib.pages[page.Path] = page
		lib.paths = append(lib.paths, page.Path)
	}
	sort.Strings(lib.paths)

	return lib, nil
}

func loadPage(fsys fs.FS, manifestPath string, cfg *loadConfig) (*Page, error) {
	data, err := fs.ReadFile(fsys, manifestPath)
	if err != nil {
		return nil, err
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, err
	}

	dir := path.Dir(manifestPath)
	page := &Page{
		Path:     NormalizePath(m.Path),
		Dir:      dir,
		Title:    docpage.TitleSection{Title: m.Title, Icon: m.Icon},
		Sections: []docpage.Section(m.Sections),
		Links:    m.Links,
	}
	if m.Path == "" {
		page.Path = NormalizePath(dir)
	}

	explicit := len(m.Blocks) > 0
	ids := m.Blocks
	if !explicit {
		ids = make([]string, len(m.Sections))
		for i, s := range m.Sections {
			ids[i] = s.ID
		}
	}

	for _, id := range ids {
		src, err := fs.ReadFile(fsys, path.Join(dir, id+".md"))
		if errors.Is(err, fs.ErrNotExist) {
			if explicit {
				return nil, fmt.Errorf("%w: %s", ErrMissingBlock, id)
			}
			cfg.logger.Warn("section has no content", logging.Page(page.Path), logging.String("section", id))
			continue
		}
		if err != nil {
			return nil, err
		}
		body, err := RenderMarkdown(cfg.md, src)
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", id, err)
		}
		if !page.HasSection(id) {
			cfg.logger.Debug("anchor-only section", logging.Page(page.Path), logging.String("section", id))
		}
		page.Blocks = append(page.Blocks, Block{ID: id, Body: body})
	}

	return page, nil
}

// NormalizePath returns p with a single leading slash and no trailing
// slash. "." and "" map to "/".
func NormalizePath(p string) string {
	if p == "" || p == "." {
		return "/"
	}
	p = path.Clean("/" + strings.TrimSpace(p))
	return p
}

// Page returns the page at urlPath.
func (l *Library) Page(urlPath string) (*Page, bool) {
	p, ok := l.pages[NormalizePath(urlPath)]
	return p, ok
}

// Pages returns every page sorted by path.
func (l *Library) Pages() []*Page {
	out := make([]*Page, len(l.paths))
	for i, p := range l.paths {
		out[i] = l.pages[p]
	}
	return out
}

// Len returns the number of pages.
func (l *Library) Len() int {
	return len(l.paths)
}
