// Package docs embeds the documentation pages served by default.
package docs

import (
	"embed"
	"io/fs"
)

//go:embed pages static
var files embed.FS

// FS returns the embedded content: page manifests and markdown under
// pages/, images under static/.
func FS() fs.FS {
	return files
}
