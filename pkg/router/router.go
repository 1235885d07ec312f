// Package router serves live components over HTTP and keeps them in sync
// with the browser over a websocket on the same path.
package router

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/actionhero/docsite/pkg/core"
	"github.com/actionhero/docsite/pkg/logging"
	"github.com/actionhero/docsite/pkg/pool"
	"github.com/actionhero/docsite/pkg/protocol"
	"github.com/actionhero/docsite/pkg/transport"
)

// Router errors.
var (
	ErrNilRenderer = errors.New("component returned nil renderer")
	ErrNotJoined   = errors.New("event before join")
)

// Middleware wraps an HTTP handler.
type Middleware func(http.Handler) http.Handler

// ErrorHandler writes the response for a failed render.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// LiveRoute is a path served by a component factory.
type LiveRoute struct {
	Path       string
	Component  func() core.Component
	Middleware []Middleware
	Meta       map[string]any
}

// RouteOption configures a LiveRoute.
type RouteOption func(*LiveRoute)

// WithRouteMiddleware adds middleware to one route only.
func WithRouteMiddleware(mw ...Middleware) RouteOption {
	return func(r *LiveRoute) {
		r.Middleware = append(r.Middleware, mw...)
	}
}

// WithMeta attaches metadata readable through RouteFromContext.
func WithMeta(key string, value any) RouteOption {
	return func(r *LiveRoute) {
		if r.Meta == nil {
			r.Meta = make(map[string]any)
		}
		r.Meta[key] = value
	}
}

// Observer is told about page renders, live sessions and events.
type Observer interface {
	PageRendered(path string, err error)
	SessionOpened()
	SessionClosed()
	EventHandled(event string, d time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) PageRendered(string, error)                {}
func (nopObserver) SessionOpened()                            {}
func (nopObserver) SessionClosed()                            {}
func (nopObserver) EventHandled(string, time.Duration, error) {}

// Router dispatches HTTP requests and live connections.
type Router struct {
	mux          *http.ServeMux
	liveRoutes   map[string]*LiveRoute
	middleware   []Middleware
	errorHandler ErrorHandler

	sessions *SessionManager
	sockets  *core.SocketManager
	acceptor *transport.Acceptor
	timeouts core.TimeoutConfig
	logger   logging.Logger
	observer Observer

	mu sync.RWMutex
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the router logger.
func WithLogger(logger logging.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithAcceptor replaces the default websocket acceptor.
func WithAcceptor(a *transport.Acceptor) Option {
	return func(r *Router) {
		if a != nil {
			r.acceptor = a
		}
	}
}

// WithTimeouts bounds component mount and event handling.
func WithTimeouts(t core.TimeoutConfig) Option {
	return func(r *Router) {
		r.timeouts = t
	}
}

// WithObserver reports router activity to o.
func WithObserver(o Observer) Option {
	return func(r *Router) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithErrorHandler replaces the default 500 handler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(r *Router) {
		if h != nil {
			r.errorHandler = h
		}
	}
}

// New creates a router.
func New(opts ...Option) *Router {
	r := &Router{
		mux:        http.NewServeMux(),
		liveRoutes: make(map[string]*LiveRoute),
		sessions:   NewSessionManager(),
		sockets:    core.NewSocketManager(),
		timeouts:   core.DefaultTimeoutConfig(),
		logger:     logging.NopLogger{},
		observer:   nopObserver{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.acceptor == nil {
		r.acceptor = transport.NewAcceptor(nil, nil, nil, r.logger)
	}
	if r.errorHandler == nil {
		logger := r.logger
		r.errorHandler = func(w http.ResponseWriter, req *http.Request, err error) {
			l := logging.LoggerFromContext(req.Context())
			if l == nil {
				l = logger
			}
			l.Error("render failed", logging.String("path", req.URL.Path), logging.Err(err))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
	}
	return r
}

// Use adds global middleware applied to live routes.
func (r *Router) Use(mw Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware = append(r.middleware, mw)
}

// Sessions returns the live session manager.
func (r *Router) Sessions() *SessionManager {
	return r.sessions
}

// Sockets returns the socket manager.
func (r *Router) Sockets() *core.SocketManager {
	return r.sockets
}

// Live registers a component route. A GET renders the component; a
// websocket upgrade on the same path starts a live session.
func (r *Router) Live(path string, component func() core.Component, opts ...RouteOption) {
	route := &LiveRoute{Path: path, Component: component}
	for _, opt := range opts {
		opt(route)
	}

	r.mu.Lock()
	r.liveRoutes[path] = route
	r.mu.Unlock()

	r.mux.Handle(path, r.handleLive(route))
}

// Route returns the live route registered at path.
func (r *Router) Route(path string) (*LiveRoute, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	route, ok := r.liveRoutes[path]
	return route, ok
}

// Handle registers a plain handler.
func (r *Router) Handle(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, handler)
}

// HandleFunc registers a plain handler function.
func (r *Router) HandleFunc(pattern string, handler http.HandlerFunc) {
	r.mux.HandleFunc(pattern, handler)
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) handleLive(route *LiveRoute) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			r.renderLive(w, req, route)
		})

		for i := len(route.Middleware) - 1; i >= 0; i-- {
			handler = route.Middleware[i](handler)
		}

		r.mu.RLock()
		middleware := make([]Middleware, len(r.middleware))
		copy(middleware, r.middleware)
		r.mu.RUnlock()

		for i := len(middleware) - 1; i >= 0; i-- {
			handler = middleware[i](handler)
		}

		handler.ServeHTTP(w, req.WithContext(WithRouteContext(req.Context(), route)))
	}
}

func (r *Router) renderLive(w http.ResponseWriter, req *http.Request, route *LiveRoute) {
	if isWebSocketRequest(req) {
		r.handleWebSocket(w, req, route)
		return
	}
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	html, err := r.renderPage(req, route)
	r.observer.PageRendered(route.Path, err)
	if err != nil {
		r.errorHandler(w, req, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if req.Method == http.MethodHead {
		return
	}
	_, _ = w.Write([]byte(html))
}

func (r *Router) renderPage(req *http.Request, route *LiveRoute) (string, error) {
	component := route.Component()
	params := extractParams(req)
	session := extractSession(req)
	ctx := core.BuildContext(req.Context(), nil, session, params)

	mountCtx, cancel := context.WithTimeout(ctx, r.timeouts.ComponentMount)
	err := component.Mount(mountCtx, params, session)
	cancel()
	if err != nil {
		return "", err
	}

	renderer := component.Render(ctx)
	if renderer == nil {
		return "", ErrNilRenderer
	}
	return pool.RenderString(ctx, renderer)
}

func (r *Router) handleWebSocket(w http.ResponseWriter, req *http.Request, route *LiveRoute) {
	if r.sockets.IsShutdown() {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}

	tr, err := r.acceptor.Accept(w, req)
	if err != nil {
		r.logger.Warn("websocket rejected", logging.String("path", req.URL.Path), logging.Err(err))
		return
	}

	component := route.Component()
	params := extractParams(req)
	session := extractSession(req)

	lv := r.sessions.Create(component, params, session)
	lv.Transport = tr
	lv.Socket = core.NewSocket(lv.ID, transportAdapter{t: tr})
	if bc, ok := component.(interface{ SetSocket(*core.Socket) }); ok {
		bc.SetSocket(lv.Socket)
	}
	r.sockets.Add(lv.Socket)
	r.observer.SessionOpened()

	r.logger.Debug("live session opened", sessionField(lv), logging.Page(route.Path))

	// The connection outlives the upgrade request, so the loop gets a
	// background context.
	ctx := core.BuildContext(context.Background(), lv.Socket, session, params)
	go func() {
		r.messageLoop(ctx, lv)
		r.disconnect(lv, core.TerminateNormal)
	}()
}

func (r *Router) messageLoop(ctx context.Context, s *LiveSession) {
	for msg := range s.Transport.Receive() {
		s.Socket.UpdateActivity()

		switch msg.Type() {
		case protocol.MsgHeartbeat:
			r.send(s, protocol.OkReply(msg.Ref, msg.Topic, nil))

		case protocol.MsgJoin:
			r.handleJoin(ctx, s, msg)

		case protocol.MsgLeave:
			r.send(s, protocol.OkReply(msg.Ref, msg.Topic, nil))
			return

		case protocol.MsgEvent:
			r.handleEvent(ctx, s, msg)

		default:
			r.logger.Debug("ignoring client message", sessionField(s), logging.Event(msg.Event))
		}
	}
}

func (r *Router) handleJoin(ctx context.Context, s *LiveSession, msg *protocol.Message) {
	if s.IsMounted() {
		r.send(s, protocol.ErrorReply(msg.Ref, msg.Topic, "already joined"))
		return
	}

	// Join params refine the query params of the upgrade request.
	if extra := msg.GetPayloadMap("params"); extra != nil {
		for k, v := range extra {
			if str, ok := v.(string); ok {
				s.Params[k] = str
			}
		}
	}

	mountCtx, cancel := context.WithTimeout(ctx, r.timeouts.ComponentMount)
	err := s.Component.Mount(mountCtx, s.Params, s.Session)
	cancel()
	if err != nil {
		r.logger.Warn("mount failed", sessionField(s), logging.Err(err))
		r.send(s, protocol.ErrorReply(msg.Ref, msg.Topic, err.Error()))
		return
	}

	html, err := r.render(ctx, s)
	if err != nil {
		r.send(s, protocol.ErrorReply(msg.Ref, msg.Topic, err.Error()))
		return
	}

	joinRef := msg.JoinRef
	if joinRef == "" {
		joinRef = msg.Ref
	}
	s.setMounted(joinRef)
	r.buildDiff(s, html)

	r.send(s, protocol.OkReply(msg.Ref, msg.Topic, map[string]any{
		"id":       s.ID,
		"rendered": html,
	}))
}

func (r *Router) handleEvent(ctx context.Context, s *LiveSession, msg *protocol.Message) {
	if !s.IsMounted() {
		r.send(s, protocol.ErrorReply(msg.Ref, msg.Topic, ErrNotJoined.Error()))
		return
	}

	payload := msg.Payload
	if payload == nil {
		payload = make(map[string]any)
	}

	start := time.Now()
	eventCtx, cancel := context.WithTimeout(ctx, r.timeouts.ComponentEvent)
	err := s.Component.HandleEvent(eventCtx, msg.Event, payload)
	cancel()
	r.observer.EventHandled(msg.Event, time.Since(start), err)
	if err != nil {
		r.logger.Debug("event rejected", sessionField(s), logging.Event(msg.Event), logging.Err(err))
		r.send(s, protocol.ErrorReply(msg.Ref, msg.Topic, err.Error()))
		return
	}

	html, err := r.render(ctx, s)
	if err != nil {
		r.send(s, protocol.ErrorReply(msg.Ref, msg.Topic, err.Error()))
		return
	}

	if err := s.Socket.SendDiff(r.buildDiff(s, html)); err != nil {
		r.logger.Debug("diff not sent", sessionField(s), logging.Err(err))
	}
	r.send(s, protocol.OkReply(msg.Ref, msg.Topic, nil))
}

func (r *Router) render(ctx context.Context, s *LiveSession) (string, error) {
	renderer := s.Component.Render(ctx)
	if renderer == nil {
		return "", ErrNilRenderer
	}
	return pool.RenderString(ctx, renderer)
}

// buildDiff compares the slots of html against the hashes of the previous
// render. Slots whose content is unchanged are omitted; a render without
// any slots is sent whole.
func (r *Router) buildDiff(s *LiveSession, html string) *core.DiffPayload {
	textSlots, htmlSlots := extractSlots(html)

	next := make(map[string]uint64, len(textSlots)+len(htmlSlots))
	for id, content := range textSlots {
		next[id] = hashSlotContent(content)
	}
	for id, content := range htmlSlots {
		next[id] = hashSlotContent(content)
	}
	prev, version := s.swapSlotHashes(next)

	payload := &core.DiffPayload{
		Version:   version,
		Slots:     make(map[string]string),
		HTMLSlots: make(map[string]string),
	}
	for id, content := range textSlots {
		if h, ok := prev[id]; !ok || h != next[id] {
			payload.Slots[id] = content
		}
	}
	for id, content := range htmlSlots {
		if h, ok := prev[id]; !ok || h != next[id] {
			payload.HTMLSlots[id] = content
		}
	}

	if len(next) == 0 {
		payload.Full = html
	}
	return payload
}

// extractSlots returns the inner content of every element carrying a
// data-slot attribute, split into plain-text and markup slots. Nested
// elements of the same tag are matched by depth.
func extractSlots(html string) (textSlots, htmlSlots map[string]string) {
	textSlots = make(map[string]string)
	htmlSlots = make(map[string]string)

	const marker = `data-slot="`
	htmlLen := len(html)
	pos := 0

	for pos < htmlLen {
		idx := strings.Index(html[pos:], marker)
		if idx == -1 {
			break
		}

		slotStart := pos + idx + len(marker)
		slotEnd := strings.IndexByte(html[slotStart:], '"')
		if slotEnd == -1 {
			break
		}
		slotID := html[slotStart : slotStart+slotEnd]

		tagStart := pos + idx
		for tagStart > 0 && html[tagStart] != '<' {
			tagStart--
		}
		tagNameEnd := tagStart + 1
		for tagNameEnd < htmlLen && !isTagNameEnd(html[tagNameEnd]) {
			tagNameEnd++
		}
		tagName := html[tagStart+1 : tagNameEnd]

		closeAngle := strings.IndexByte(html[slotStart+slotEnd:], '>')
		if closeAngle == -1 {
			break
		}
		contentStart := slotStart + slotEnd + closeAngle + 1

		openTag := "<" + tagName
		closeTag := "</" + tagName + ">"
		depth := 1
		searchPos := contentStart
		contentEnd := -1

		for depth > 0 && searchPos < htmlLen {
			nextClose := strings.Index(html[searchPos:], closeTag)
			if nextClose == -1 {
				break
			}
			nextClose += searchPos

			nextOpen := strings.Index(html[searchPos:], openTag)
			if nextOpen == -1 {
				nextOpen = htmlLen
			} else {
				nextOpen += searchPos
			}

			if nextOpen < nextClose {
				after := nextOpen + len(openTag)
				if after < htmlLen && isTagNameEnd(html[after]) {
					depth++
				}
				searchPos = after
				continue
			}

			depth--
			if depth == 0 {
				contentEnd = nextClose
			}
			searchPos = nextClose + len(closeTag)
		}

		if contentEnd == -1 {
			pos = contentStart
			continue
		}

		// Outer slots are reported whole and inner slots are found again
		// on their own, so scanning resumes inside the content.
		content := strings.TrimSpace(html[contentStart:contentEnd])
		if strings.ContainsAny(content, "<>") {
			htmlSlots[slotID] = content
		} else {
			textSlots[slotID] = content
		}
		pos = contentStart
	}

	return textSlots, htmlSlots
}

func isTagNameEnd(c byte) bool {
	return c == ' ' || c == '>' || c == '/' || c == '\t' || c == '\n'
}

func hashSlotContent(content string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(content))
	return h.Sum64()
}

func (r *Router) send(s *LiveSession, msg *protocol.Message) {
	if err := s.Transport.Send(msg); err != nil {
		r.logger.Debug("send failed", sessionField(s), logging.Event(msg.Event), logging.Err(err))
	}
}

// disconnect tears a session down once.
func (r *Router) disconnect(s *LiveSession, reason core.TerminateReason) {
	s.closeOnce.Do(func() {
		if err := s.Component.Terminate(context.Background(), reason); err != nil {
			r.logger.Warn("terminate failed", sessionField(s), logging.Err(err))
		}
		r.sessions.Remove(s.ID)
		r.sockets.Remove(s.ID)
		_ = s.Transport.Close()
		r.observer.SessionClosed()
		r.logger.Debug("live session closed", sessionField(s), logging.String("reason", reason.String()))
	})
}

// Shutdown terminates every live session and refuses new ones.
func (r *Router) Shutdown(ctx context.Context) error {
	r.sessions.mu.RLock()
	open := make([]*LiveSession, 0, len(r.sessions.sessions))
	for _, s := range r.sessions.sessions {
		open = append(open, s)
	}
	r.sessions.mu.RUnlock()

	for _, s := range open {
		r.disconnect(s, core.TerminateShutdown)
	}
	if err := r.sockets.Shutdown(ctx); err != nil {
		return fmt.Errorf("router shutdown: %w", err)
	}
	return nil
}

func sessionField(s *LiveSession) logging.Field {
	return logging.Socket(s.ID)
}

func extractSession(req *http.Request) core.Session {
	session := make(core.Session)
	for _, cookie := range req.Cookies() {
		session["cookie:"+cookie.Name] = cookie.Value
	}
	if id := req.Header.Get(logging.RequestIDHeader); id != "" {
		session["request_id"] = id
	}
	return session
}

func extractParams(req *http.Request) core.Params {
	params := make(core.Params)
	params["path"] = req.URL.Path
	for key, values := range req.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	return params
}

func isWebSocketRequest(req *http.Request) bool {
	return strings.Contains(strings.ToLower(req.Header.Get("Upgrade")), "websocket")
}

type routeKey struct{}

// WithRouteContext stores route in ctx.
func WithRouteContext(ctx context.Context, route *LiveRoute) context.Context {
	return context.WithValue(ctx, routeKey{}, route)
}

// RouteFromContext returns the live route serving the request, or nil.
func RouteFromContext(ctx context.Context) *LiveRoute {
	route, _ := ctx.Value(routeKey{}).(*LiveRoute)
	return route
}
