// Package website wraps rendered documentation pages in the site's HTML
// document: head metadata, inline theme stylesheet, header, footer and the
// live client script.
package website

// DefaultScriptSrc is where the server mounts the live client script.
const DefaultScriptSrc = "/_live/docsite.js"

// PageConfig describes one HTML document.
type PageConfig struct {
	// Title is shown in the browser tab. It is suffixed with SiteName.
	Title string

	Description string

	// URL is the canonical URL of the page, if the site has a base URL.
	URL string

	SiteName string

	// Language defaults to "en".
	Language string

	// ThemeColor defaults to the palette primary.
	ThemeColor string

	Favicon string

	// Nonce is the CSP nonce for the inline style and script tags.
	Nonce string

	// ScriptSrc is the live client script. Empty disables the script,
	// as in static exports.
	ScriptSrc string

	// HomeHref is the target of the header logo. Defaults to "/".
	HomeHref string
}

// NavLink is a header link.
type NavLink struct {
	Label string
	URL   string
}
