// Package transport carries live protocol messages over WebSocket
// connections, on both the server and the client side.
package transport

import (
	"errors"
	"fmt"
	"time"

	"github.com/actionhero/docsite/pkg/protocol"
)

// Transport errors.
var (
	ErrNotConnected     = errors.New("transport not connected")
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendTimeout      = errors.New("send timeout")
	ErrOriginNotAllowed = errors.New("origin not allowed")
)

// Transport is a bidirectional message stream.
type Transport interface {
	// Send queues msg for delivery.
	Send(msg *protocol.Message) error

	// Receive delivers decoded inbound messages. It is closed when the
	// transport shuts down.
	Receive() <-chan *protocol.Message

	// Done is closed once the transport has shut down.
	Done() <-chan struct{}

	Close() error
	IsConnected() bool
}

// Config holds transport tuning.
type Config struct {
	// ReadTimeout bounds the wait for the next inbound frame. Clients
	// heartbeat well inside it.
	ReadTimeout time.Duration

	// WriteTimeout bounds a single frame write and a blocked Send.
	WriteTimeout time.Duration

	// PingInterval is how often protocol-level pings are sent.
	PingInterval time.Duration

	// MaxMessageSize is the inbound frame limit in bytes.
	MaxMessageSize int64

	SendBufferSize    int
	ReceiveBufferSize int
}

// DefaultConfig returns production defaults.
func DefaultConfig() *Config {
	return &Config{
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		PingInterval:      30 * time.Second,
		MaxMessageSize:    64 * 1024,
		SendBufferSize:    64,
		ReceiveBufferSize: 64,
	}
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	switch {
	case c.ReadTimeout <= 0:
		return fmt.Errorf("transport: read timeout must be positive")
	case c.WriteTimeout <= 0:
		return fmt.Errorf("transport: write timeout must be positive")
	case c.PingInterval <= 0:
		return fmt.Errorf("transport: ping interval must be positive")
	case c.MaxMessageSize <= 0:
		return fmt.Errorf("transport: max message size must be positive")
	case c.SendBufferSize < 1 || c.ReceiveBufferSize < 1:
		return fmt.Errorf("transport: buffer sizes must be at least 1")
	}
	return nil
}
