// Package site serves a content library as a live documentation website
// and exports it as static HTML.
package site

import (
	"fmt"
	"io/fs"
	"net/http"

	"github.com/actionhero/docsite/client"
	"github.com/actionhero/docsite/internal/config"
	"github.com/actionhero/docsite/internal/website"
	"github.com/actionhero/docsite/pkg/button"
	"github.com/actionhero/docsite/pkg/content"
	"github.com/actionhero/docsite/pkg/core"
	"github.com/actionhero/docsite/pkg/docpage"
	"github.com/actionhero/docsite/pkg/health"
	"github.com/actionhero/docsite/pkg/logging"
	"github.com/actionhero/docsite/pkg/metrics"
	"github.com/actionhero/docsite/pkg/protocol"
	"github.com/actionhero/docsite/pkg/router"
	"github.com/actionhero/docsite/pkg/transport"
)

// Site binds a content library to the configuration it is served with.
type Site struct {
	cfg     *config.Config
	lib     *content.Library
	static  fs.FS
	logger  logging.Logger
	metrics *metrics.Metrics
	version string
}

// Option configures a Site.
type Option func(*Site)

// WithStatic serves fsys under /static/.
func WithStatic(fsys fs.FS) Option {
	return func(s *Site) {
		s.static = fsys
	}
}

// WithLogger sets the site logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *Site) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option {
	return func(s *Site) {
		s.version = v
	}
}

// New creates a site. A nil config takes the defaults.
func New(cfg *config.Config, lib *content.Library, opts ...Option) *Site {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Site{
		cfg:     cfg,
		lib:     lib,
		logger:  logging.NopLogger{},
		version: "dev",
		metrics: metrics.New("docsite",
			docpage.NavEvent, button.EventPointerDown, button.EventPointerUp, button.EventClick),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Library returns the served pages.
func (s *Site) Library() *content.Library {
	return s.lib
}

func (s *Site) pageConfig(page *content.Page) website.PageConfig {
	return website.PageConfig{
		Title:     page.Title.Title,
		URL:       s.cfg.CanonicalURL(page.Path),
		SiteName:  s.cfg.SiteName,
		ScriptSrc: website.DefaultScriptSrc,
	}
}

func (s *Site) navLinks() []website.NavLink {
	pages := s.lib.Pages()
	links := make([]website.NavLink, 0, len(pages))
	for _, p := range pages {
		links = append(links, website.NavLink{Label: p.Title.Title, URL: p.Path})
	}
	return links
}

// Router builds the HTTP router: one live route per page plus the
// supporting endpoints.
func (s *Site) Router() (*router.Router, error) {
	codecs := protocol.NewCodecRegistry()
	if err := codecs.SetDefault(s.cfg.Codec); err != nil {
		return nil, fmt.Errorf("site: %w", err)
	}

	timeouts := s.cfg.TimeoutConfig()
	tcfg := transport.DefaultConfig()
	tcfg.ReadTimeout = timeouts.WebSocketRead
	tcfg.WriteTimeout = timeouts.WebSocketWrite
	if err := tcfg.Validate(); err != nil {
		return nil, fmt.Errorf("site: %w", err)
	}

	acceptor := transport.NewAcceptor(tcfg, &transport.WebSocketConfig{
		AllowedOrigins:  s.cfg.WebSocket.AllowedOrigins,
		InsecureDevMode: s.cfg.WebSocket.InsecureDevMode,
	}, codecs, s.logger)

	r := router.New(
		router.WithLogger(s.logger),
		router.WithAcceptor(acceptor),
		router.WithTimeouts(timeouts),
		router.WithObserver(s.metrics),
	)
	r.Use(router.SecureHeaders())

	for _, page := range s.lib.Pages() {
		r.Live(page.Path, func() core.Component {
			return newPageView(s, page)
		}, router.WithMeta("title", page.Title.Title))
	}

	r.HandleFunc("GET /{$}", s.handleIndex)
	checker := health.NewChecker(s.version)
	checker.Register(health.Check{Name: "pages", Fn: health.Count(s.lib.Len), Critical: true})
	checker.Register(health.Check{Name: "live", Fn: health.Accepting(r.Sockets().IsShutdown)})
	r.Handle("GET /health", checker.Handler())
	r.Handle("GET /health/live", checker.LivenessHandler())
	r.Handle("GET /health/ready", checker.ReadinessHandler())
	r.Handle("GET /metrics", s.metrics.Handler())
	r.HandleFunc("GET /robots.txt", s.handleRobots)
	r.Handle("GET /_live/", http.StripPrefix("/_live/", client.Handler()))
	if s.static != nil {
		r.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(s.static))))
	}

	return r, nil
}

// Handler wraps the router with request logging and panic recovery.
func (s *Site) Handler() (http.Handler, *router.Router, error) {
	r, err := s.Router()
	if err != nil {
		return nil, nil, err
	}
	var h http.Handler = r
	h = router.Recovery(s.logger)(h)
	h = logging.RequestLogger(s.logger)(h)
	return h, r, nil
}

// handleIndex redirects to the first page.
func (s *Site) handleIndex(w http.ResponseWriter, r *http.Request) {
	pages := s.lib.Pages()
	if len(pages) == 0 {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, pages[0].Path, http.StatusFound)
}

func (s *Site) handleRobots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, "User-agent: *\nAllow: /\n")
}
