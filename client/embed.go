// Package client embeds the browser script that keeps a rendered page in
// sync with its live session.
package client

import (
	"embed"
	"io/fs"
	"net/http"
)

// ScriptName is the file name of the live client script.
const ScriptName = "docsite.js"

//go:embed src/*.js
var assets embed.FS

// Assets returns the embedded scripts rooted at their file names.
func Assets() fs.FS {
	fsys, err := fs.Sub(assets, "src")
	if err != nil {
		panic(err)
	}
	return fsys
}

// Handler serves the embedded scripts.
func Handler() http.Handler {
	return http.FileServer(http.FS(Assets()))
}

// GetFile returns the contents of an embedded script.
func GetFile(name string) ([]byte, error) {
	return assets.ReadFile("src/" + name)
}
