// Package core defines live components: server-side views rendered once
// over HTTP and then kept current through a socket.
package core

import (
	"context"
	"io"
)

// Component is a live view. One instance serves one page load: it is
// mounted for the HTTP render and again for the live session.
type Component interface {
	Name() string

	// Mount receives the URL query (plus "path") and the visitor session
	// before the first render.
	Mount(ctx context.Context, params Params, session Session) error

	Render(ctx context.Context) Renderer

	// HandleEvent applies one client event. A returned error is sent back
	// to the client and the render is left as it was.
	HandleEvent(ctx context.Context, event string, payload map[string]any) error

	Terminate(ctx context.Context, reason TerminateReason) error
}

// Renderer writes HTML.
type Renderer interface {
	Render(ctx context.Context, w io.Writer) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, w io.Writer) error

func (f RendererFunc) Render(ctx context.Context, w io.Writer) error {
	return f(ctx, w)
}

// HTML is trusted markup that renders itself verbatim.
type HTML string

func (h HTML) Render(ctx context.Context, w io.Writer) error {
	_, err := io.WriteString(w, string(h))
	return err
}

// Params are the string parameters a component is mounted with.
type Params map[string]string

// Get returns the value for key, or "".
func (p Params) Get(key string) string {
	return p[key]
}

// Session carries per-visitor values taken from the upgrade request.
type Session map[string]any

// TerminateReason says why a component is torn down.
type TerminateReason int

const (
	TerminateNormal TerminateReason = iota
	TerminateShutdown
	TerminateError
)

func (r TerminateReason) String() string {
	switch r {
	case TerminateNormal:
		return "normal"
	case TerminateShutdown:
		return "shutdown"
	case TerminateError:
		return "error"
	default:
		return "unknown"
	}
}

// BaseComponent gives no-op Mount, HandleEvent and Terminate methods and
// holds the socket the router attaches.
type BaseComponent struct {
	socket *Socket
}

// SetSocket is called by the router when a live session starts.
func (bc *BaseComponent) SetSocket(s *Socket) {
	bc.socket = s
}

// Socket returns the attached socket, nil during the HTTP render.
func (bc *BaseComponent) Socket() *Socket {
	return bc.socket
}

func (bc *BaseComponent) Mount(ctx context.Context, params Params, session Session) error {
	return nil
}

func (bc *BaseComponent) HandleEvent(ctx context.Context, event string, payload map[string]any) error {
	return nil
}

func (bc *BaseComponent) Terminate(ctx context.Context, reason TerminateReason) error {
	return nil
}
