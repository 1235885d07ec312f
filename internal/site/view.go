package site

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/actionhero/docsite/internal/website"
	"github.com/actionhero/docsite/pkg/button"
	"github.com/actionhero/docsite/pkg/content"
	"github.com/actionhero/docsite/pkg/core"
	"github.com/actionhero/docsite/pkg/docpage"
	"github.com/actionhero/docsite/pkg/pool"
	"github.com/actionhero/docsite/pkg/router"
)

// View errors returned to the client as error replies.
var (
	ErrUnknownSection = errors.New("unknown section")
	ErrUnknownButton  = errors.New("unknown button")
	ErrUnknownEvent   = errors.New("unknown event")
)

// SectionParam is the query parameter selecting the initial section.
const SectionParam = "section"

// PageView is the live component behind one documentation page. It owns
// the current section and the press state of the page's link buttons.
type PageView struct {
	core.BaseComponent

	site *Site
	page *content.Page
	nav  button.Navigator

	// static renders without the live client script.
	static bool

	mu      sync.Mutex
	current string
	buttons map[string]*button.Button
	byHref  map[string]*button.Button
}

func newPageView(s *Site, page *content.Page) *PageView {
	return &PageView{
		site: s,
		page: page,
		nav:  button.SocketNavigator{},
	}
}

func (v *PageView) Name() string {
	return "docs-page"
}

// Mount selects the initial section and builds the link buttons. An
// unknown section is kept as is: nothing is highlighted.
func (v *PageView) Mount(ctx context.Context, params core.Params, session core.Session) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.current = params.Get(SectionParam)
	v.buttons = make(map[string]*button.Button)
	v.byHref = make(map[string]*button.Button)

	for i, link := range v.page.Links {
		if link.Link == "" {
			continue
		}
		id := fmt.Sprintf("link-%d", i)
		b := button.NewNavigation(link.Link,
			button.WithID(id),
			button.WithText(link.Title),
			button.WithColors("primary", "white"),
		)
		v.buttons[id] = b
		v.byHref[link.Link] = b
	}
	return nil
}

// CurrentSection returns the highlighted section id.
func (v *PageView) CurrentSection() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Button returns the link button with the given element id.
func (v *PageView) Button(id string) (*button.Button, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	b, ok := v.buttons[id]
	return b, ok
}

// HandleEvent handles sidebar navigation and link button events.
func (v *PageView) HandleEvent(ctx context.Context, event string, payload map[string]any) error {
	switch event {
	case docpage.NavEvent:
		section, _ := payload[SectionParam].(string)
		if !v.hasAnchor(section) {
			return fmt.Errorf("%w: %q", ErrUnknownSection, section)
		}
		v.mu.Lock()
		v.current = section
		v.mu.Unlock()
		return nil

	case button.EventPointerDown, button.EventPointerUp, button.EventClick:
		id, _ := payload["id"].(string)
		b, ok := v.Button(id)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownButton, id)
		}
		_, err := button.Dispatch(ctx, b, v.nav, event)
		return err
	}
	return fmt.Errorf("%w: %q", ErrUnknownEvent, event)
}

// hasAnchor reports whether id names a rendered section of the page,
// listed in the sidebar or not.
func (v *PageView) hasAnchor(id string) bool {
	if id == "" {
		return false
	}
	if v.page.HasSection(id) {
		return true
	}
	for _, b := range v.page.Blocks {
		if b.ID == id {
			return true
		}
	}
	return false
}

func (v *PageView) linkButton(link docpage.Link) core.Renderer {
	v.mu.Lock()
	b, ok := v.byHref[link.Link]
	v.mu.Unlock()
	if !ok {
		return button.NewNavigation(link.Link, button.WithText(link.Title))
	}
	return b
}

// Render writes the full HTML document for the page.
func (v *PageView) Render(ctx context.Context) core.Renderer {
	return core.RendererFunc(func(ctx context.Context, w io.Writer) error {
		doc := v.page.Build(v.CurrentSection(), docpage.WithLinkRenderer(v.linkButton))

		body, err := pool.RenderString(ctx, doc.Render(ctx))
		if err != nil {
			return err
		}

		cfg := v.site.pageConfig(v.page)
		cfg.Nonce = router.CSPNonce(ctx)
		if v.static {
			cfg.ScriptSrc = ""
		}

		_, err = io.WriteString(w, website.RenderDocument(cfg, v.site.navLinks(), body))
		return err
	})
}
