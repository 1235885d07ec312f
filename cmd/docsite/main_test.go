package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, args...))
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "docsite dev\n", out)
}

func TestPages_ListsEmbeddedDocs(t *testing.T) {
	out, err := run(t, "pages")
	require.NoError(t, err)
	assert.Contains(t, out, "/docs/core/chat")
	assert.Contains(t, out, "/docs/core/middleware")
}

func TestRender_WritesStaticSite(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "render", "--out", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 2 pages")

	_, err = os.Stat(filepath.Join(dir, "docs", "core", "middleware", "index.html"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "static", "images", "chat.svg"))
	assert.NoError(t, err)
}
