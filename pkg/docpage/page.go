package docpage

import (
	"context"
	"fmt"
	"html"
	"io"
	"strconv"

	"github.com/actionhero/docsite/pkg/core"
)

// Slot names wrapped around the parts of a page that change between
// renders: the sidebar and body with the current section, the link row
// with button press state.
const (
	SidebarSlot = "sidebar"
	ContentSlot = "content"
	LinksSlot   = "links"
)

// NavEvent is the live event a sidebar entry sends when clicked. Its
// payload carries the section id under "section".
const NavEvent = "nav"

// TitleSection is the heading block rendered once at the top of a page.
type TitleSection struct {
	Title string `yaml:"title" json:"title"`
	Icon  string `yaml:"icon" json:"icon"`
}

// Link is one entry of the prev/next row.
type Link struct {
	Link  string `yaml:"link" json:"link"`
	Title string `yaml:"title" json:"title"`
}

// NavEntry is one rendered sidebar item.
type NavEntry struct {
	ID     string
	Title  string
	Href   string
	Active bool
}

// LinkRenderer renders one prev/next link.
type LinkRenderer func(link Link) core.Renderer

// Option configures a Page.
type Option func(*Page)

// WithLinkRenderer replaces the default anchor rendering of prev/next links.
func WithLinkRenderer(fn LinkRenderer) Option {
	return func(p *Page) {
		if fn != nil {
			p.linkRenderer = fn
		}
	}
}

// Page is a single documentation page instance. It is built per render
// and is not safe for concurrent use.
type Page struct {
	sections *Registry
	current  string
	title    TitleSection
	links    []Link
	blocks   []*Block

	linkRenderer LinkRenderer
}

// New creates a page. A nil registry renders an empty sidebar.
func New(sections *Registry, currentSection string, title TitleSection, links []Link, opts ...Option) *Page {
	if sections == nil {
		sections = NewRegistry()
	}
	p := &Page{
		sections:     sections,
		current:      currentSection,
		title:        title,
		links:        append([]Link(nil), links...),
		linkRenderer: defaultLinkRenderer,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Sections returns the page's registry.
func (p *Page) Sections() *Registry {
	return p.sections
}

// CurrentSection returns the id the sidebar highlights, possibly empty.
func (p *Page) CurrentSection() string {
	return p.current
}

// RegisterSection appends a content block anchored at id. Ids missing
// from the registry still render but have no sidebar entry.
func (p *Page) RegisterSection(id string, content core.Renderer) *Block {
	b := &Block{
		ID:      id,
		Active:  id != "" && id == p.current,
		Listed:  p.sections.Has(id),
		content: content,
	}
	p.blocks = append(p.blocks, b)
	return b
}

// Blocks returns the registered blocks in call order.
func (p *Page) Blocks() []*Block {
	return append([]*Block(nil), p.blocks...)
}

// Sidebar returns one entry per registered section in registry order.
// At most one entry is active.
func (p *Page) Sidebar() []NavEntry {
	sections := p.sections.Sections()
	entries := make([]NavEntry, len(sections))
	for i, s := range sections {
		entries[i] = NavEntry{
			ID:     s.ID,
			Title:  s.Title,
			Href:   "#" + s.ID,
			Active: p.current != "" && s.ID == p.current,
		}
	}
	return entries
}

// Links returns the prev/next links that will be rendered, skipping any
// without a target.
func (p *Page) Links() []Link {
	out := make([]Link, 0, len(p.links))
	for _, l := range p.links {
		if l.Link == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Render returns the full page: title, sidebar, blocks and link row.
func (p *Page) Render(ctx context.Context) core.Renderer {
	return core.RendererFunc(func(ctx context.Context, w io.Writer) error {
		ew := &errWriter{w: w}

		ew.printf(`<div class="docs-page">`)
		p.writeTitle(ew)
		ew.printf(`<div class="docs-layout">`)
		ew.printf(`<nav class="docs-sidebar" aria-label="Sections"><div data-slot="%s">`, SidebarSlot)
		p.writeSidebar(ew)
		ew.printf(`</div></nav>`)
		ew.printf(`<main class="docs-content"><div data-slot="%s">`, ContentSlot)
		if ew.err != nil {
			return ew.err
		}
		for _, b := range p.blocks {
			if err := b.Render(ctx, w); err != nil {
				return err
			}
		}
		ew.printf(`</div>`)
		if err := p.writeLinks(ctx, ew); err != nil {
			return err
		}
		ew.printf(`</main></div></div>`)
		return ew.err
	})
}

func (p *Page) writeTitle(ew *errWriter) {
	ew.printf(`<header class="docs-title">`)
	if p.title.Icon != "" {
		ew.printf(`<img src="%s" alt="" width="64" height="64">`, html.EscapeString(p.title.Icon))
	}
	ew.printf(`<h1>%s</h1></header>`, html.EscapeString(p.title.Title))
}

func (p *Page) writeSidebar(ew *errWriter) {
	ew.printf(`<ul class="docs-nav-list">`)
	for _, e := range p.Sidebar() {
		class := "docs-nav-item"
		current := ""
		if e.Active {
			class += " docs-nav-item-active"
			current = ` aria-current="true"`
		}
		id := html.EscapeString(e.ID)
		ew.printf(`<li><a href="%s" class="%s" data-section="%s" lv-click="%s" lv-value-section="%s"%s>%s</a></li>`,
			html.EscapeString(e.Href), class, id, NavEvent, id, current, html.EscapeString(e.Title))
	}
	ew.printf(`</ul>`)
}

func (p *Page) writeLinks(ctx context.Context, ew *errWriter) error {
	links := p.Links()
	if len(links) == 0 {
		return ew.err
	}
	ew.printf(`<div class="docs-links" data-slot="%s">`, LinksSlot)
	if ew.err != nil {
		return ew.err
	}
	for _, l := range links {
		if err := p.linkRenderer(l).Render(ctx, ew.w); err != nil {
			return err
		}
	}
	ew.printf(`</div>`)
	return ew.err
}

func defaultLinkRenderer(l Link) core.Renderer {
	return core.HTML(fmt.Sprintf(`<a class="docs-link" href="%s">%s</a>`,
		html.EscapeString(l.Link), html.EscapeString(l.Title)))
}

// Block is a registered content block. It renders its content inside a
// section element anchored at its id.
type Block struct {
	ID string

	// Active is true when the block's id is the page's current section.
	Active bool

	// Listed is false for blocks whose id has no sidebar entry.
	Listed bool

	content core.Renderer
}

// Render implements core.Renderer.
func (b *Block) Render(ctx context.Context, w io.Writer) error {
	ew := &errWriter{w: w}
	ew.printf(`<section id="%s" class="docs-section" data-active="%s" data-listed="%s">`,
		html.EscapeString(b.ID), strconv.FormatBool(b.Active), strconv.FormatBool(b.Listed))
	if ew.err != nil {
		return ew.err
	}
	if b.content != nil {
		if err := b.content.Render(ctx, w); err != nil {
			return fmt.Errorf("section %q: %w", b.ID, err)
		}
	}
	ew.printf(`</section>`)
	return ew.err
}

// errWriter remembers the first write error and drops later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
