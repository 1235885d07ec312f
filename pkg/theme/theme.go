// Package theme maps semantic colors and component roles to inline style
// attributes. Everything here is pure: the same inputs always produce the
// same Style.
package theme

import (
	"strings"
)

// Palette maps semantic color names to CSS colors.
var Palette = map[string]string{
	"bg":        "#FFFFFF",
	"bgAlt":     "#F5F7FA",
	"bgCode":    "#1E2430",
	"text":      "#1F2933",
	"textMuted": "#52606D",
	"border":    "#D9E2EC",

	"primary":   "#2E86DE",
	"secondary": "#8E44AD",
	"dark":      "#222831",
	"light":     "#F5F7FA",
	"white":     "#FFFFFF",
	"success":   "#27AE60",
	"warning":   "#F39C12",
	"danger":    "#C0392B",
}

// Role identifies a styled component family.
type Role string

const (
	// RoleBig is the full-width call-to-action button.
	RoleBig Role = "big"
	// RoleNav is a sidebar navigation entry.
	RoleNav Role = "nav"
)

// Sizes accepted by StyleFor. Unknown sizes fall back to SizeLarge.
const (
	SizeLarge  = "large"
	SizeSmall  = "small"
	SizeXSmall = "xsmall"
)

// Declaration is one CSS property/value pair.
type Declaration struct {
	Property string
	Value    string
}

// Style is an ordered set of CSS declarations with value semantics:
// Set returns a new Style and never mutates the receiver.
type Style struct {
	decls []Declaration
}

// Set returns a copy of s with property set to value. An existing
// property keeps its position.
func (s Style) Set(property, value string) Style {
	out := make([]Declaration, 0, len(s.decls)+1)
	replaced := false
	for _, d := range s.decls {
		if d.Property == property {
			out = append(out, Declaration{property, value})
			replaced = true
			continue
		}
		out = append(out, d)
	}
	if !replaced {
		out = append(out, Declaration{property, value})
	}
	return Style{decls: out}
}

// With returns a copy of s with every declaration of other applied on top.
func (s Style) With(other Style) Style {
	out := s
	for _, d := range other.decls {
		out = out.Set(d.Property, d.Value)
	}
	return out
}

// Get returns the value of property.
func (s Style) Get(property string) (string, bool) {
	for _, d := range s.decls {
		if d.Property == property {
			return d.Value, true
		}
	}
	return "", false
}

// Declarations returns a copy of the declarations in order.
func (s Style) Declarations() []Declaration {
	out := make([]Declaration, len(s.decls))
	copy(out, s.decls)
	return out
}

// Len returns the number of declarations.
func (s Style) Len() int {
	return len(s.decls)
}

// CSS renders the style as an inline style attribute value.
func (s Style) CSS() string {
	var sb strings.Builder
	for i, d := range s.decls {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(d.Property)
		sb.WriteByte(':')
		sb.WriteString(d.Value)
	}
	return sb.String()
}

// Color resolves a semantic color name. Anything not in the palette is
// passed through as a literal CSS color; empty resolves to fallback.
func Color(name, fallback string) string {
	if name == "" {
		return fallback
	}
	if c, ok := Palette[name]; ok {
		return c
	}
	return name
}

// StyleFor returns the base style for role in the given colors and size.
func StyleFor(role Role, bg, fg, size string) Style {
	var s Style
	switch role {
	case RoleNav:
		s = s.Set("color", Color(fg, Palette["textMuted"]))
		s = s.Set("background-color", Color(bg, "transparent"))
	default:
		background := Color(bg, Palette["primary"])
		s = s.Set("background-color", background)
		s = s.Set("border-color", background)
		s = s.Set("color", Color(fg, Palette["white"]))
		s = s.Set("border-radius", "0")
		s = s.Set("font-weight", "300")
		s = s.Set("text-transform", "uppercase")
	}

	switch size {
	case SizeSmall:
		s = s.Set("padding", "0.5rem 1rem").Set("font-size", "0.875rem")
	case SizeXSmall:
		s = s.Set("padding", "0.25rem 0.5rem").Set("font-size", "0.75rem")
	default:
		s = s.Set("padding", "1rem 1.75rem").Set("font-size", "1.125rem")
	}
	return s
}
