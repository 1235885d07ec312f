package button

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/actionhero/docsite/pkg/core"
)

// NavigateEvent is pushed to the client to request a page change.
const NavigateEvent = "navigate"

// ErrNoSocket is returned when navigation is requested outside a live
// connection.
var ErrNoSocket = errors.New("button: no live socket in context")

// SocketNavigator navigates by pushing a navigate event to the socket
// found in the context.
type SocketNavigator struct{}

// Navigate implements Navigator.
func (SocketNavigator) Navigate(ctx context.Context, href string) error {
	socket := core.SocketFromContext(ctx)
	if socket == nil {
		return ErrNoSocket
	}
	return socket.Push(NavigateEvent, map[string]any{"to": href})
}

// Dispatch applies a live button event. It reports whether the event was
// a button event at all.
func Dispatch(ctx context.Context, b *Button, nav Navigator, event string) (bool, error) {
	switch event {
	case EventPointerDown:
		b.PointerDown()
	case EventPointerUp:
		b.PointerUp()
	case EventClick:
		return true, b.Activate(ctx, nav)
	default:
		return false, nil
	}
	return true, nil
}

// Live hosts a single button as a live component.
type Live struct {
	core.BaseComponent

	Button    *Button
	Navigator Navigator
}

// NewLive wraps b in a live component navigating through the socket.
func NewLive(b *Button) *Live {
	return &Live{Button: b, Navigator: SocketNavigator{}}
}

func (l *Live) Name() string {
	return "button"
}

func (l *Live) Render(ctx context.Context) core.Renderer {
	return core.RendererFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<div data-slot="button">`); err != nil {
			return err
		}
		if err := l.Button.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

func (l *Live) HandleEvent(ctx context.Context, event string, payload map[string]any) error {
	handled, err := Dispatch(ctx, l.Button, l.Navigator, event)
	if err != nil {
		return err
	}
	if !handled {
		return fmt.Errorf("button: unknown event %q", event)
	}
	return nil
}
