package website

import (
	"fmt"
	"html"
	"strings"

	"github.com/actionhero/docsite/pkg/theme"
)

func (cfg PageConfig) lang() string {
	if cfg.Language == "" {
		return "en"
	}
	return cfg.Language
}

func (cfg PageConfig) fullTitle() string {
	switch {
	case cfg.Title == "":
		return cfg.SiteName
	case cfg.SiteName == "" || cfg.SiteName == cfg.Title:
		return cfg.Title
	default:
		return cfg.Title + " | " + cfg.SiteName
	}
}

func nonceAttr(nonce string) string {
	if nonce == "" {
		return ""
	}
	return fmt.Sprintf(` nonce="%s"`, html.EscapeString(nonce))
}

// RenderHead generates the <head> element.
func RenderHead(cfg PageConfig) string {
	var sb strings.Builder

	themeColor := cfg.ThemeColor
	if themeColor == "" {
		themeColor = theme.Palette["primary"]
	}

	sb.WriteString("<head>\n")
	sb.WriteString(`<meta charset="UTF-8">` + "\n")
	sb.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1.0">` + "\n")
	fmt.Fprintf(&sb, "<title>%s</title>\n", html.EscapeString(cfg.fullTitle()))

	if cfg.Description != "" {
		fmt.Fprintf(&sb, `<meta name="description" content="%s">`+"\n", html.EscapeString(cfg.Description))
	}
	if cfg.URL != "" {
		fmt.Fprintf(&sb, `<link rel="canonical" href="%s">`+"\n", html.EscapeString(cfg.URL))
	}
	fmt.Fprintf(&sb, `<meta name="theme-color" content="%s">`+"\n", html.EscapeString(themeColor))

	sb.WriteString(renderOpenGraph(cfg))

	if cfg.Favicon != "" {
		fmt.Fprintf(&sb, `<link rel="icon" href="%s">`+"\n", html.EscapeString(cfg.Favicon))
	}

	fmt.Fprintf(&sb, "<style%s>\n", nonceAttr(cfg.Nonce))
	sb.WriteString(theme.RenderStyles())
	sb.WriteString("\n</style>\n")

	if cfg.ScriptSrc != "" {
		fmt.Fprintf(&sb, `<script src="%s" defer%s></script>`+"\n", html.EscapeString(cfg.ScriptSrc), nonceAttr(cfg.Nonce))
	}

	sb.WriteString("</head>\n")
	return sb.String()
}

func renderOpenGraph(cfg PageConfig) string {
	var sb strings.Builder

	sb.WriteString(`<meta property="og:type" content="article">` + "\n")
	if t := cfg.fullTitle(); t != "" {
		fmt.Fprintf(&sb, `<meta property="og:title" content="%s">`+"\n", html.EscapeString(t))
	}
	if cfg.Description != "" {
		fmt.Fprintf(&sb, `<meta property="og:description" content="%s">`+"\n", html.EscapeString(cfg.Description))
	}
	if cfg.URL != "" {
		fmt.Fprintf(&sb, `<meta property="og:url" content="%s">`+"\n", html.EscapeString(cfg.URL))
	}
	if cfg.SiteName != "" {
		fmt.Fprintf(&sb, `<meta property="og:site_name" content="%s">`+"\n", html.EscapeString(cfg.SiteName))
	}
	return sb.String()
}

// RenderHeader generates the site header with the logo and links.
func RenderHeader(cfg PageConfig, links []NavLink) string {
	var sb strings.Builder

	home := cfg.HomeHref
	if home == "" {
		home = "/"
	}

	sb.WriteString(`<a href="#main-content" class="skip-link">Skip to main content</a>` + "\n")
	sb.WriteString(`<header class="site-header" role="banner"><div class="container">`)
	fmt.Fprintf(&sb, `<a href="%s" class="logo">%s</a>`, html.EscapeString(home), html.EscapeString(cfg.SiteName))
	for _, link := range links {
		fmt.Fprintf(&sb, ` <a href="%s" class="site-nav-link">%s</a>`, html.EscapeString(link.URL), html.EscapeString(link.Label))
	}
	sb.WriteString("</div></header>\n")
	return sb.String()
}

// RenderFooter generates the site footer.
func RenderFooter(cfg PageConfig) string {
	return fmt.Sprintf(`<footer class="site-footer" role="contentinfo"><div class="container">%s</div></footer>`+"\n",
		html.EscapeString(cfg.SiteName))
}

// RenderDocument wraps body in a complete HTML document.
func RenderDocument(cfg PageConfig, links []NavLink, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="%s">
%s<body>
%s<div id="main-content" class="container">
%s
</div>
%s</body>
</html>`, html.EscapeString(cfg.lang()), RenderHead(cfg), RenderHeader(cfg, links), body, RenderFooter(cfg))
}
