package theme

import (
	"fmt"
	"sort"
	"strings"
)

// Typography uses the system font stack.
var (
	FontFamily = `system-ui, -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif`
	FontMono   = `'SF Mono', SFMono-Regular, ui-monospace, 'DejaVu Sans Mono', Menlo, Consolas, monospace`
)

// StyleOption customizes the generated stylesheet.
type StyleOption func(*styleConfig)

type styleConfig struct {
	customColors map[string]string
	includeReset bool
}

// WithCustomColors overrides palette entries.
func WithCustomColors(colors map[string]string) StyleOption {
	return func(cfg *styleConfig) {
		for k, v := range colors {
			cfg.customColors[k] = v
		}
	}
}

// WithReset toggles the CSS reset.
func WithReset(include bool) StyleOption {
	return func(cfg *styleConfig) {
		cfg.includeReset = include
	}
}

// RenderStyles generates the site stylesheet. Output is deterministic.
func RenderStyles(opts ...StyleOption) string {
	cfg := &styleConfig{
		customColors: make(map[string]string),
		includeReset: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	colors := make(map[string]string, len(Palette)+len(cfg.customColors))
	for k, v := range Palette {
		colors[k] = v
	}
	for k, v := range cfg.customColors {
		colors[k] = v
	}

	var sb strings.Builder
	if cfg.includeReset {
		sb.WriteString(cssReset())
	}
	sb.WriteString(cssVariables(colors))
	sb.WriteString(cssBase())
	sb.WriteString(cssLayout())
	sb.WriteString(cssDocs())
	sb.WriteString(cssButtons())
	sb.WriteString(cssCode())
	sb.WriteString(cssAccessibility())
	return sb.String()
}

func cssReset() string {
	return `
*,*::before,*::after{box-sizing:border-box;margin:0;padding:0}
html{-webkit-text-size-adjust:100%;tab-size:4;scroll-behavior:smooth}
body{line-height:1.6;-webkit-font-smoothing:antialiased}
img,svg{display:block;max-width:100%}
input,button,textarea,select{font:inherit}
a{color:inherit}
`
}

func cssVariables(colors map[string]string) string {
	names := make([]string, 0, len(colors))
	for name := range colors {
		names = append(names, name)
	}
	sort.Strings(names)

	vars := make([]string, 0, len(names))
	for _, name := range names {
		vars = append(vars, fmt.Sprintf("--color-%s:%s", name, colors[name]))
	}
	return fmt.Sprintf(`:root{%s;--font-sans:%s;--font-mono:%s}`, strings.Join(vars, ";"), FontFamily, FontMono)
}

func cssBase() string {
	return `
body{font-family:var(--font-sans);background:var(--color-bg);color:var(--color-text);min-height:100vh}
h1{font-size:2.25rem;font-weight:300;line-height:1.2}
h2{font-size:1.5rem;font-weight:400;line-height:1.3}
h3{font-size:1.125rem;font-weight:600}
p{margin-bottom:0.75rem}
code{font-family:var(--font-mono);font-size:0.9em}
`
}

func cssLayout() string {
	return `
.container{width:100%;max-width:1200px;margin:0 auto;padding:0 1rem}
.site-header{border-bottom:1px solid var(--color-border);padding:0.75rem 0}
.site-header a{text-decoration:none;font-weight:700}
.site-header .logo{color:var(--color-text);margin-right:1.5rem}
.site-nav-link{color:var(--color-textMuted);font-size:0.875rem;margin-right:1rem}
.site-footer{border-top:1px solid var(--color-border);padding:1.5rem 0;margin-top:3rem;color:var(--color-textMuted);font-size:0.875rem}
`
}

func cssDocs() string {
	return `
.docs-title{display:flex;align-items:center;gap:1rem;padding:2rem 0 1rem}
.docs-title img{width:64px;height:64px}
.docs-layout{display:grid;grid-template-columns:1fr;gap:2rem;padding:1rem 0 2rem}
@media(min-width:768px){.docs-layout{grid-template-columns:240px 1fr}}
.docs-sidebar{position:sticky;top:1rem;height:fit-content}
.docs-nav-list{display:flex;flex-direction:column;gap:0.25rem;list-style:none}
.docs-nav-item{display:block;padding:0.5rem 0.75rem;border-radius:0.25rem;font-size:0.875rem;color:var(--color-textMuted);text-decoration:none}
.docs-nav-item:hover{color:var(--color-text);background:var(--color-bgAlt)}
.docs-nav-item-active{color:var(--color-primary);font-weight:600;border-left:3px solid var(--color-primary)}
.docs-content{min-width:0}
.docs-section{margin-bottom:2rem;scroll-margin-top:1rem}
.docs-section h2{padding-bottom:0.5rem;margin-bottom:0.75rem;border-bottom:1px solid var(--color-border)}
.docs-section ul,.docs-section ol{padding-left:1.25rem;margin-bottom:0.75rem}
.docs-section table{width:100%;border-collapse:collapse;margin:0.75rem 0}
.docs-section th,.docs-section td{padding:0.5rem;text-align:left;border-bottom:1px solid var(--color-border)}
.docs-links{display:grid;grid-template-columns:1fr;gap:1rem;margin-top:2rem}
@media(min-width:768px){.docs-links{grid-template-columns:1fr 1fr}}
`
}

func cssButtons() string {
	return `
.btn{display:inline-flex;align-items:center;justify-content:center;border:1px solid transparent;cursor:pointer;font-family:inherit;text-decoration:none;user-select:none}
.btn-block{display:flex;width:100%}
.btn-link{text-decoration:none;display:block}
`
}

func cssCode() string {
	return `
pre{background:var(--color-bgCode);color:#E6EDF3;border-radius:0.25rem;padding:1rem;overflow-x:auto;margin:0.75rem 0;font-size:0.8rem;line-height:1.5}
pre code{font-size:inherit}
:not(pre)>code{background:var(--color-bgAlt);padding:0.1rem 0.3rem;border-radius:0.2rem}
`
}

func cssAccessibility() string {
	return `
.skip-link{position:absolute;left:-9999px;top:0;padding:0.5rem 1rem;background:var(--color-primary);color:var(--color-white)}
.skip-link:focus{left:0}
.sr-only{position:absolute;width:1px;height:1px;padding:0;margin:-1px;overflow:hidden;clip:rect(0,0,0,0);white-space:nowrap;border:0}
:focus-visible{outline:2px solid var(--color-primary);outline-offset:2px}
@media(prefers-reduced-motion:reduce){*{transition-duration:0.01ms!important}}
`
}
