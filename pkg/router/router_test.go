package router

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/actionhero/docsite/pkg/core"
	"github.com/actionhero/docsite/pkg/protocol"
	"github.com/actionhero/docsite/pkg/transport"
)

// counterComponent renders a static header and a counter slot.
type counterComponent struct {
	core.BaseComponent

	mu         sync.Mutex
	count      int
	params     core.Params
	terminated chan core.TerminateReason
}

func newCounter() *counterComponent {
	return &counterComponent{terminated: make(chan core.TerminateReason, 1)}
}

func (c *counterComponent) Name() string { return "counter" }

func (c *counterComponent) Mount(ctx context.Context, params core.Params, session core.Session) error {
	c.params = params
	if params.Get("fail") != "" {
		return errors.New("mount refused")
	}
	return nil
}

func (c *counterComponent) HandleEvent(ctx context.Context, event string, payload map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch event {
	case "inc":
		c.count++
		return nil
	case "noop":
		return nil
	}
	return fmt.Errorf("unknown event %q", event)
}

func (c *counterComponent) Render(ctx context.Context) core.Renderer {
	c.mu.Lock()
	n := c.count
	c.mu.Unlock()
	return core.HTML(fmt.Sprintf(`<h1>Counter</h1><div data-slot="count">%d</div><div data-slot="list"><ul><li>%d</li></ul></div>`, n, n*2))
}

func (c *counterComponent) Terminate(ctx context.Context, reason core.TerminateReason) error {
	select {
	case c.terminated <- reason:
	default:
	}
	return nil
}

func TestRouter_InitialHTTPRender(t *testing.T) {
	r := New()
	var mounted *counterComponent
	r.Live("/counter", func() core.Component {
		mounted = newCounter()
		return mounted
	})

	req := httptest.NewRequest(http.MethodGet, "/counter?section=methods", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("unexpected content type %q", ct)
	}
	if !strings.Contains(w.Body.String(), `<div data-slot="count">0</div>`) {
		t.Errorf("unexpected body %q", w.Body.String())
	}
	if mounted.params.Get("section") != "methods" || mounted.params.Get("path") != "/counter" {
		t.Errorf("unexpected params %v", mounted.params)
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	r := New()
	r.Live("/counter", func() core.Component { return newCounter() })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/counter", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}

func TestRouter_MountErrorUsesErrorHandler(t *testing.T) {
	var got error
	r := New(WithErrorHandler(func(w http.ResponseWriter, req *http.Request, err error) {
		got = err
		w.WriteHeader(http.StatusTeapot)
	}))
	r.Live("/counter", func() core.Component { return newCounter() })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/counter?fail=1", nil))

	if w.Code != http.StatusTeapot || got == nil {
		t.Errorf("expected error handler to run, code=%d err=%v", w.Code, got)
	}
}

func TestRouter_MiddlewareOrder(t *testing.T) {
	r := New()
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, req)
			})
		}
	}
	r.Use(mark("global"))
	r.Live("/counter", func() core.Component { return newCounter() },
		WithRouteMiddleware(mark("route")),
		WithMeta("title", "Counter"),
	)

	var meta any
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if route := RouteFromContext(req.Context()); route != nil {
				meta = route.Meta["title"]
			}
			next.ServeHTTP(w, req)
		})
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/counter", nil))

	if strings.Join(order, ",") != "global,route" {
		t.Errorf("unexpected order %v", order)
	}
	if meta != "Counter" {
		t.Errorf("expected route meta, got %v", meta)
	}
	if _, ok := r.Route("/counter"); !ok {
		t.Error("route not registered")
	}
}

func TestRouter_Handle(t *testing.T) {
	r := New()
	r.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		io.WriteString(w, "ok")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Body.String() != "ok" {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}

func TestExtractSlots(t *testing.T) {
	html := `<div data-slot="a">plain</div>` +
		`<div data-slot="b"><div><div>x</div></div></div>` +
		`<span data-slot="c"> trimmed </span>` +
		`<div data-slot="outer"><div data-slot="inner">in</div></div>`

	text, markup := extractSlots(html)

	if text["a"] != "plain" {
		t.Errorf("slot a = %q", text["a"])
	}
	if markup["b"] != "<div><div>x</div></div>" {
		t.Errorf("slot b = %q", markup["b"])
	}
	if text["c"] != "trimmed" {
		t.Errorf("slot c = %q", text["c"])
	}
	if markup["outer"] != `<div data-slot="inner">in</div>` {
		t.Errorf("slot outer = %q", markup["outer"])
	}
	if text["inner"] != "in" {
		t.Errorf("slot inner = %q", text["inner"])
	}
}

func TestBuildDiff(t *testing.T) {
	r := New()
	s := newLiveSession("s1", newCounter(), core.Params{}, core.Session{})

	first := r.buildDiff(s, `<div data-slot="a">1</div><div data-slot="b">2</div>`)
	if len(first.Slots) != 2 || first.Version != 1 {
		t.Fatalf("first diff should carry every slot: %+v", first)
	}

	second := r.buildDiff(s, `<div data-slot="a">1</div><div data-slot="b">3</div>`)
	if len(second.Slots) != 1 || second.Slots["b"] != "3" || second.Version != 2 {
		t.Errorf("second diff should carry only b: %+v", second)
	}

	same := r.buildDiff(s, `<div data-slot="a">1</div><div data-slot="b">3</div>`)
	if !same.IsEmpty() {
		t.Errorf("unchanged render should be empty: %+v", same)
	}

	full := r.buildDiff(s, `<p>no slots</p>`)
	if full.Full != `<p>no slots</p>` {
		t.Errorf("slotless render should be full: %+v", full)
	}
}

func TestIsWebSocketRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if isWebSocketRequest(req) {
		t.Error("plain request detected as websocket")
	}
	req.Header.Set("Upgrade", "WebSocket")
	if !isWebSocketRequest(req) {
		t.Error("upgrade request not detected")
	}
}

func TestSecureHeaders(t *testing.T) {
	var nonce string
	h := SecureHeaders()(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		nonce = CSPNonce(req.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if nonce == "" {
		t.Fatal("expected a nonce in the request context")
	}
	if csp := w.Header().Get("Content-Security-Policy"); !strings.Contains(csp, "'nonce-"+nonce+"'") {
		t.Errorf("CSP missing nonce: %q", csp)
	}
	if w.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("missing X-Frame-Options")
	}
	if w.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be sent over plain HTTP")
	}
}

func TestRecovery(t *testing.T) {
	h := Recovery(nil)(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		panic("boom")
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

// liveClient dials the router's live endpoint and reads replies in order.
type liveClient struct {
	t   *testing.T
	tr  *transport.WebSocketTransport
	ctx context.Context
}

func dialLive(t *testing.T, srv *httptest.Server, path string) *liveClient {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	tr, err := transport.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+path, nil, nil, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { tr.Close() })
	return &liveClient{t: t, tr: tr, ctx: ctx}
}

func (c *liveClient) send(msg *protocol.Message) {
	c.t.Helper()
	if err := c.tr.Send(msg); err != nil {
		c.t.Fatalf("send: %v", err)
	}
}

func (c *liveClient) next() *protocol.Message {
	c.t.Helper()
	select {
	case msg, ok := <-c.tr.Receive():
		if !ok {
			c.t.Fatal("connection closed")
		}
		return msg
	case <-c.ctx.Done():
		c.t.Fatal("timed out waiting for message")
	}
	return nil
}

func replyStatus(msg *protocol.Message) string {
	return msg.GetPayloadString("status")
}

func TestRouter_LiveSession(t *testing.T) {
	r := New()
	comp := newCounter()
	r.Live("/counter", func() core.Component { return comp })

	srv := httptest.NewServer(r)
	defer srv.Close()

	c := dialLive(t, srv, "/counter")

	c.send(protocol.EventMessage("0", "lv:page", "inc", nil))
	if msg := c.next(); replyStatus(msg) != protocol.StatusError {
		t.Fatalf("event before join should fail, got %+v", msg)
	}

	c.send(protocol.JoinMessage("1", "lv:page", map[string]any{"params": map[string]any{"section": "middleware"}}))
	join := c.next()
	if join.Event != protocol.EventReply || replyStatus(join) != protocol.StatusOK {
		t.Fatalf("unexpected join reply %+v", join)
	}
	response := join.GetPayloadMap("response")
	if html, _ := response["rendered"].(string); !strings.Contains(html, `data-slot="count">0<`) {
		t.Errorf("join reply missing render: %v", response)
	}
	if comp.params.Get("section") != "middleware" {
		t.Errorf("join params not merged: %v", comp.params)
	}
	if r.Sessions().Count() != 1 || r.Sockets().Count() != 1 {
		t.Errorf("expected one session and socket")
	}

	c.send(protocol.EventMessage("2", "lv:page", "inc", nil))
	diff := c.next()
	if diff.Event != protocol.EventDiff {
		t.Fatalf("expected diff, got %+v", diff)
	}
	if slots := diff.GetPayloadMap("s"); slots["count"] != "1" {
		t.Errorf("count slot not updated: %v", diff.Payload)
	}
	if html := diff.GetPayloadMap("h"); html["list"] != "<ul><li>2</li></ul>" {
		t.Errorf("list slot not updated: %v", diff.Payload)
	}
	if ack := c.next(); ack.Ref != "2" || replyStatus(ack) != protocol.StatusOK {
		t.Errorf("unexpected ack %+v", ack)
	}

	c.send(protocol.EventMessage("3", "lv:page", "noop", nil))
	if ack := c.next(); ack.Event != protocol.EventReply || ack.Ref != "3" {
		t.Errorf("unchanged render should send no diff, got %+v", ack)
	}

	c.send(protocol.EventMessage("4", "lv:page", "bogus", nil))
	if msg := c.next(); replyStatus(msg) != protocol.StatusError {
		t.Errorf("unknown event should fail, got %+v", msg)
	}

	c.send(protocol.HeartbeatMessage("5"))
	if msg := c.next(); msg.Ref != "5" || replyStatus(msg) != protocol.StatusOK {
		t.Errorf("unexpected heartbeat reply %+v", msg)
	}

	c.send(&protocol.Message{Ref: "6", Topic: "lv:page", Event: protocol.EventLeave})

	select {
	case reason := <-comp.terminated:
		if reason != core.TerminateNormal {
			t.Errorf("unexpected terminate reason %v", reason)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("component was not terminated")
	}
}

func TestRouter_ShutdownRefusesSessions(t *testing.T) {
	r := New()
	r.Live("/counter", func() core.Component { return newCounter() })
	if err := r.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/counter", nil)
	req.Header.Set("Upgrade", "websocket")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

type recordingObserver struct {
	mu      sync.Mutex
	renders []string
	events  []string
	opened  int
}

func (o *recordingObserver) PageRendered(path string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.renders = append(o.renders, fmt.Sprintf("%s:%v", path, err == nil))
}

func (o *recordingObserver) SessionOpened() {
	o.mu.Lock()
	o.opened++
	o.mu.Unlock()
}

func (o *recordingObserver) SessionClosed() {}

func (o *recordingObserver) EventHandled(event string, d time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, fmt.Sprintf("%s:%v", event, err == nil))
}

func TestRouter_Observer(t *testing.T) {
	obs := &recordingObserver{}
	r := New(WithObserver(obs))
	r.Live("/counter", func() core.Component { return newCounter() })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/counter", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/counter?fail=1", nil))

	srv := httptest.NewServer(r)
	defer srv.Close()
	c := dialLive(t, srv, "/counter")
	c.send(protocol.JoinMessage("1", "lv:page", nil))
	c.next()
	c.send(protocol.EventMessage("2", "lv:page", "bogus", nil))
	c.next()

	obs.mu.Lock()
	defer obs.mu.Unlock()
	if got := strings.Join(obs.renders, ","); got != "/counter:true,/counter:false" {
		t.Errorf("unexpected renders %q", got)
	}
	if obs.opened != 1 {
		t.Errorf("expected one session, got %d", obs.opened)
	}
	if got := strings.Join(obs.events, ","); got != "bogus:false" {
		t.Errorf("unexpected events %q", got)
	}
}
