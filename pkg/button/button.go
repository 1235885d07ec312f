// Package button implements a pressable, full-width button that either runs
// an action or navigates to a path, darkening while held down.
package button

import (
	"context"
	"fmt"
	"html"
	"io"
	"sync"

	"github.com/actionhero/docsite/pkg/core"
	"github.com/actionhero/docsite/pkg/theme"
)

// PressedFilter is the modifier applied on top of the base style while a
// button is held down.
const PressedFilter = "brightness(85%)"

// Live event names emitted by a rendered button.
const (
	EventPointerDown = "pointerdown"
	EventPointerUp   = "pointerup"
	EventClick       = "click"
)

// PressState is the visual interaction state of a button.
type PressState int

const (
	// Released is the initial state.
	Released PressState = iota
	// Pressed holds between pointer-down and the next pointer-up.
	Pressed
)

func (s PressState) String() string {
	switch s {
	case Released:
		return "released"
	case Pressed:
		return "pressed"
	default:
		return "unknown"
	}
}

// Size is a sizing token passed through to the theme.
type Size string

const (
	SizeLarge  Size = theme.SizeLarge
	SizeSmall  Size = theme.SizeSmall
	SizeXSmall Size = theme.SizeXSmall
)

// Navigator performs navigation to a site path.
type Navigator interface {
	Navigate(ctx context.Context, href string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, href string) error

func (f NavigatorFunc) Navigate(ctx context.Context, href string) error {
	return f(ctx, href)
}

// Variant selects what activating a button does.
type Variant interface {
	activate(ctx context.Context, nav Navigator) error
}

// ActionButton invokes OnClick when activated. A nil OnClick is inert.
type ActionButton struct {
	OnClick func(ctx context.Context) error
}

func (v ActionButton) activate(ctx context.Context, _ Navigator) error {
	if v.OnClick == nil {
		return nil
	}
	return v.OnClick(ctx)
}

// NavigationButton navigates to Href when activated. An empty Href is inert.
type NavigationButton struct {
	Href string
}

func (v NavigationButton) activate(ctx context.Context, nav Navigator) error {
	if nav == nil || v.Href == "" {
		return nil
	}
	return nav.Navigate(ctx, v.Href)
}

// Option configures a Button.
type Option func(*Button)

// WithColors sets the background and text colors. Palette names and
// literal CSS colors are both accepted.
func WithColors(bg, fg string) Option {
	return func(b *Button) {
		b.bg = bg
		b.fg = fg
	}
}

// WithSize sets the size token. Empty keeps the default.
func WithSize(size Size) Option {
	return func(b *Button) {
		if size != "" {
			b.size = size
		}
	}
}

// WithLabel sets the button content.
func WithLabel(label core.Renderer) Option {
	return func(b *Button) {
		b.label = label
	}
}

// WithText sets a plain-text label.
func WithText(text string) Option {
	return WithLabel(core.HTML(html.EscapeString(text)))
}

// WithID sets the element id. It also keys live events for the button.
func WithID(id string) Option {
	return func(b *Button) {
		b.id = id
	}
}

// Button is one pressable button instance. Its methods are safe for
// concurrent use.
type Button struct {
	id      string
	variant Variant
	bg, fg  string
	size    Size
	label   core.Renderer

	mu    sync.Mutex
	state PressState
}

// New creates a button for the given variant.
func New(variant Variant, opts ...Option) *Button {
	if variant == nil {
		variant = ActionButton{}
	}
	b := &Button{
		variant: variant,
		bg:      "primary",
		fg:      "white",
		size:    SizeLarge,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewAction creates a button that calls onClick when activated.
func NewAction(onClick func(ctx context.Context) error, opts ...Option) *Button {
	return New(ActionButton{OnClick: onClick}, opts...)
}

// NewNavigation creates a button that navigates to href when activated.
func NewNavigation(href string, opts ...Option) *Button {
	return New(NavigationButton{Href: href}, opts...)
}

// ID returns the element id, possibly empty.
func (b *Button) ID() string {
	return b.id
}

// Variant returns the button's variant.
func (b *Button) Variant() Variant {
	return b.variant
}

// Href returns the navigation target, or empty for action buttons.
func (b *Button) Href() string {
	if v, ok := b.variant.(NavigationButton); ok {
		return v.Href
	}
	return ""
}

// Size returns the size token.
func (b *Button) Size() Size {
	return b.size
}

// State returns the current press state.
func (b *Button) State() PressState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// PointerDown moves the button to Pressed.
func (b *Button) PointerDown() {
	b.mu.Lock()
	b.state = Pressed
	b.mu.Unlock()
}

// PointerUp moves the button to Released wherever the pointer is.
func (b *Button) PointerUp() {
	b.mu.Lock()
	b.state = Released
	b.mu.Unlock()
}

// Activate performs the button's action. Navigation buttons never run an
// action and action buttons never navigate.
func (b *Button) Activate(ctx context.Context, nav Navigator) error {
	if err := b.variant.activate(ctx, nav); err != nil {
		return fmt.Errorf("button activate: %w", err)
	}
	return nil
}

// Style returns the inline style for the current state.
func (b *Button) Style() theme.Style {
	s := theme.StyleFor(theme.RoleBig, b.bg, b.fg, string(b.size))
	s = s.Set("width", "100%")
	if b.State() == Pressed {
		s = s.Set("filter", PressedFilter)
	}
	return s
}

// Render implements core.Renderer.
func (b *Button) Render(ctx context.Context, w io.Writer) error {
	state := b.State()
	style := html.EscapeString(b.Style().CSS())

	idAttr := ""
	valueAttr := ""
	if b.id != "" {
		idAttr = fmt.Sprintf(` id="%s"`, html.EscapeString(b.id))
		valueAttr = fmt.Sprintf(` lv-value-id="%s"`, html.EscapeString(b.id))
	}
	hooks := fmt.Sprintf(`lv-pointerdown="%s" lv-pointerup="%s"%s data-press-state="%s"`,
		EventPointerDown, EventPointerUp, valueAttr, state)

	var err error
	switch v := b.variant.(type) {
	case NavigationButton:
		hrefAttr := ""
		if v.Href != "" {
			hrefAttr = fmt.Sprintf(` href="%s"`, html.EscapeString(v.Href))
		}
		_, err = fmt.Fprintf(w, `<a class="btn-link"%s lv-click="%s"%s><span%s class="btn btn-block btn-%s" role="button" style="%s" %s>`,
			hrefAttr, EventClick, valueAttr, idAttr, b.size, style, hooks)
	default:
		_, err = fmt.Fprintf(w, `<button type="button"%s class="btn btn-block btn-%s" style="%s" lv-click="%s" %s>`,
			idAttr, b.size, style, EventClick, hooks)
	}
	if err != nil {
		return err
	}

	if b.label != nil {
		if err := b.label.Render(ctx, w); err != nil {
			return err
		}
	}

	closing := `</button>`
	if _, ok := b.variant.(NavigationButton); ok {
		closing = `</span></a>`
	}
	_, err = io.WriteString(w, closing)
	return err
}
