// Package pool reuses render buffers on the hot paths: the initial page
// render, every live diff and the static export.
package pool

import (
	"bytes"
	"context"
	"sync"

	"github.com/actionhero/docsite/pkg/core"
)

// maxPooledSize caps the buffers returned to the pool. A documentation page
// with large code blocks can exceed it once; keeping that buffer around
// would pin the memory for every later render.
const maxPooledSize = 256 * 1024

var buffers = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

// GetBuffer returns an empty buffer from the pool.
func GetBuffer() *bytes.Buffer {
	buf := buffers.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// PutBuffer returns buf to the pool. Oversized buffers are dropped.
func PutBuffer(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > maxPooledSize {
		return
	}
	buffers.Put(buf)
}

// RenderString renders r into a pooled buffer and returns the markup.
func RenderString(ctx context.Context, r core.Renderer) (string, error) {
	buf := GetBuffer()
	defer PutBuffer(buf)

	if err := r.Render(ctx, buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
