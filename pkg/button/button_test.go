package button

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/actionhero/docsite/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNavigator struct {
	mu    sync.Mutex
	hrefs []string
}

func (r *recordingNavigator) Navigate(_ context.Context, href string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hrefs = append(r.hrefs, href)
	return nil
}

func (r *recordingNavigator) Hrefs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.hrefs...)
}

func counter() (func(context.Context) error, func() int) {
	var mu sync.Mutex
	n := 0
	return func(context.Context) error {
			mu.Lock()
			n++
			mu.Unlock()
			return nil
		}, func() int {
			mu.Lock()
			defer mu.Unlock()
			return n
		}
}

func renderButton(t *testing.T, b *Button) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, b.Render(context.Background(), &buf))
	return buf.String()
}

func TestPressState_Transitions(t *testing.T) {
	b := NewAction(nil)
	assert.Equal(t, Released, b.State())

	b.PointerDown()
	assert.Equal(t, Pressed, b.State())

	b.PointerUp()
	assert.Equal(t, Released, b.State())

	// Pointer-up outside the control still releases; a stray up is harmless.
	b.PointerUp()
	assert.Equal(t, Released, b.State())

	b.PointerDown()
	b.PointerDown()
	assert.Equal(t, Pressed, b.State())
}

func TestPressState_String(t *testing.T) {
	assert.Equal(t, "released", Released.String())
	assert.Equal(t, "pressed", Pressed.String())
	assert.Equal(t, "unknown", PressState(7).String())
}

func TestStyle_BrightnessOnlyWhilePressed(t *testing.T) {
	b := NewNavigation("/docs/core/chat", WithColors("primary", "white"))

	_, ok := b.Style().Get("filter")
	assert.False(t, ok)
	assert.NotContains(t, renderButton(t, b), "brightness")

	b.PointerDown()
	filter, ok := b.Style().Get("filter")
	require.True(t, ok)
	assert.Equal(t, "brightness(85%)", filter)
	assert.Contains(t, renderButton(t, b), "filter:brightness(85%)")

	b.PointerUp()
	assert.NotContains(t, renderButton(t, b), "brightness")
}

func TestDefaults(t *testing.T) {
	b := NewAction(nil)
	assert.Equal(t, SizeLarge, b.Size())

	width, _ := b.Style().Get("width")
	assert.Equal(t, "100%", width)

	b = NewAction(nil, WithSize(""))
	assert.Equal(t, SizeLarge, b.Size())

	b = NewAction(nil, WithSize(SizeSmall))
	assert.Equal(t, SizeSmall, b.Size())
}

func TestActivate_NavigationNeverCallsOnClick(t *testing.T) {
	nav := &recordingNavigator{}

	// A navigation button has no OnClick to call; the variant makes the
	// combination unrepresentable.
	b := NewNavigation("/docs/core/chat")
	require.NoError(t, b.Activate(context.Background(), nav))

	assert.Equal(t, []string{"/docs/core/chat"}, nav.Hrefs())
	assert.Equal(t, "/docs/core/chat", b.Href())
}

func TestActivate_ActionCallsOnClickOnce(t *testing.T) {
	nav := &recordingNavigator{}
	onClick, calls := counter()
	b := NewAction(onClick)

	b.PointerDown()
	require.NoError(t, b.Activate(context.Background(), nav))
	b.PointerUp()

	assert.Equal(t, 1, calls())
	assert.Equal(t, Released, b.State())
	assert.Empty(t, nav.Hrefs())
	assert.Empty(t, b.Href())
}

func TestActivate_InertVariants(t *testing.T) {
	assert.NoError(t, NewAction(nil).Activate(context.Background(), &recordingNavigator{}))
	assert.NoError(t, NewNavigation("/x").Activate(context.Background(), nil))

	nav := &recordingNavigator{}
	empty := NewNavigation("")
	assert.NoError(t, empty.Activate(context.Background(), nav))
	assert.Empty(t, nav.Hrefs())

	var sb strings.Builder
	require.NoError(t, empty.Render(context.Background(), &sb))
	assert.NotContains(t, sb.String(), "href=")
}

func TestActivate_WrapsError(t *testing.T) {
	boom := errors.New("boom")
	b := NewAction(func(context.Context) error { return boom })

	err := b.Activate(context.Background(), nil)
	assert.ErrorIs(t, err, boom)
}

func TestRender_Modes(t *testing.T) {
	nav := renderButton(t, NewNavigation("/docs/core/chat", WithText("Core: Chat"), WithID("next")))
	assert.True(t, strings.HasPrefix(nav, `<a class="btn-link" href="/docs/core/chat"`), nav)
	assert.Contains(t, nav, `class="btn btn-block btn-large"`)
	assert.Contains(t, nav, `lv-value-id="next"`)
	assert.Contains(t, nav, `data-press-state="released"`)
	assert.Contains(t, nav, "Core: Chat")
	assert.True(t, strings.HasSuffix(nav, "</span></a>"))

	action := renderButton(t, NewAction(nil, WithText("Go")))
	assert.True(t, strings.HasPrefix(action, `<button type="button"`), action)
	assert.NotContains(t, action, "href=")
	assert.Contains(t, action, `lv-click="click"`)
	assert.Contains(t, action, `lv-pointerdown="pointerdown" lv-pointerup="pointerup"`)
	assert.True(t, strings.HasSuffix(action, "</button>"))
}

func TestRender_EscapesText(t *testing.T) {
	out := renderButton(t, NewAction(nil, WithText("<script>")))
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestDispatch(t *testing.T) {
	onClick, calls := counter()
	b := NewAction(onClick)
	ctx := context.Background()

	for _, ev := range []string{EventPointerDown, EventClick, EventPointerUp} {
		handled, err := Dispatch(ctx, b, nil, ev)
		require.NoError(t, err)
		assert.True(t, handled, ev)
	}
	assert.Equal(t, 1, calls())
	assert.Equal(t, Released, b.State())

	handled, err := Dispatch(ctx, b, nil, "keydown")
	assert.NoError(t, err)
	assert.False(t, handled)
}

type captureTransport struct {
	mu       sync.Mutex
	messages []core.Message
}

func (c *captureTransport) Send(msg core.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
	return nil
}

func (c *captureTransport) Close() error      { return nil }
func (c *captureTransport) IsConnected() bool { return true }

func TestLive_NavigatesThroughSocket(t *testing.T) {
	transport := &captureTransport{}
	socket := core.NewSocket("s1", transport)
	ctx := core.BuildContext(context.Background(), socket, nil, nil)

	live := NewLive(NewNavigation("/docs/core/chat"))
	require.NoError(t, live.HandleEvent(ctx, EventPointerDown, nil))
	assert.Equal(t, Pressed, live.Button.State())

	require.NoError(t, live.HandleEvent(ctx, EventClick, nil))
	require.NoError(t, live.HandleEvent(ctx, EventPointerUp, nil))

	require.Len(t, transport.messages, 1)
	assert.Equal(t, NavigateEvent, transport.messages[0].Event)
	assert.Equal(t, "/docs/core/chat", transport.messages[0].Payload["to"])
	assert.Equal(t, Released, live.Button.State())

	assert.Error(t, live.HandleEvent(ctx, "bogus", nil))
}

func TestSocketNavigator_NoSocket(t *testing.T) {
	err := SocketNavigator{}.Navigate(context.Background(), "/x")
	assert.ErrorIs(t, err, ErrNoSocket)
}

func TestLive_RenderWrapsSlot(t *testing.T) {
	live := NewLive(NewAction(nil, WithText("Go")))
	var buf bytes.Buffer
	require.NoError(t, live.Render(context.Background()).Render(context.Background(), &buf))
	assert.True(t, strings.HasPrefix(buf.String(), `<div data-slot="button"><button`))
}
