package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"

	"github.com/actionhero/docsite/pkg/logging"
	"github.com/actionhero/docsite/pkg/protocol"
)

// WebSocketConfig holds origin checks for inbound upgrades.
type WebSocketConfig struct {
	// AllowedOrigins lists cross-origin pages allowed to connect. Same-origin
	// requests are always allowed. "*" allows every origin.
	AllowedOrigins []string

	// InsecureDevMode disables origin validation. Development only.
	InsecureDevMode bool
}

// DefaultWebSocketConfig allows same-origin connections only.
func DefaultWebSocketConfig() *WebSocketConfig {
	return &WebSocketConfig{}
}

// IsOriginAllowed reports whether a page served from origin may open a
// live connection to a server reached as requestHost.
func (c *WebSocketConfig) IsOriginAllowed(origin, requestHost string) bool {
	if c != nil && c.InsecureDevMode {
		return true
	}
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil || originURL.Host == "" {
		return false
	}
	if originURL.Host == requestHost {
		return true
	}

	if c == nil {
		return false
	}
	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
		if allowedURL, err := url.Parse(allowed); err == nil && allowedURL.Host == originURL.Host {
			return true
		}
	}
	return false
}

// originPatterns converts AllowedOrigins to the host patterns the
// websocket library checks on its own.
func (c *WebSocketConfig) originPatterns() []string {
	if c == nil {
		return nil
	}
	patterns := make([]string, 0, len(c.AllowedOrigins))
	for _, allowed := range c.AllowedOrigins {
		if u, err := url.Parse(allowed); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
			continue
		}
		patterns = append(patterns, allowed)
	}
	return patterns
}

// WebSocketTransport is a Transport over one websocket connection. The
// codec is fixed when the connection is established.
type WebSocketTransport struct {
	conn   *websocket.Conn
	codec  protocol.Codec
	config *Config
	logger logging.Logger

	sendCh  chan *protocol.Message
	recvCh  chan *protocol.Message
	closeCh chan struct{}

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	connected atomic.Bool
}

func newWebSocketTransport(conn *websocket.Conn, codec protocol.Codec, config *Config, logger logging.Logger) *WebSocketTransport {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	t := &WebSocketTransport{
		conn:    conn,
		codec:   codec,
		config:  config,
		logger:  logger,
		sendCh:  make(chan *protocol.Message, config.SendBufferSize),
		recvCh:  make(chan *protocol.Message, config.ReceiveBufferSize),
		closeCh: make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
	t.connected.Store(true)

	conn.SetReadLimit(config.MaxMessageSize)

	go t.readLoop()
	go t.writeLoop()
	go t.pingLoop()

	return t
}

// Acceptor upgrades HTTP requests to live connections.
type Acceptor struct {
	config *Config
	ws     *WebSocketConfig
	codecs *protocol.CodecRegistry
	logger logging.Logger
}

// NewAcceptor creates an acceptor. Nil arguments take defaults.
func NewAcceptor(config *Config, ws *WebSocketConfig, codecs *protocol.CodecRegistry, logger logging.Logger) *Acceptor {
	if config == nil {
		config = DefaultConfig()
	}
	if ws == nil {
		ws = DefaultWebSocketConfig()
	}
	if codecs == nil {
		codecs = protocol.NewCodecRegistry()
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Acceptor{config: config, ws: ws, codecs: codecs, logger: logger}
}

// Accept validates the origin, negotiates a codec through the websocket
// subprotocol and starts the connection loops. On failure the response
// has already been written.
func (a *Acceptor) Accept(w http.ResponseWriter, r *http.Request) (*WebSocketTransport, error) {
	origin := r.Header.Get("Origin")
	if !a.ws.IsOriginAllowed(origin, r.Host) {
		http.Error(w, "Forbidden: origin not allowed", http.StatusForbidden)
		return nil, fmt.Errorf("%w: %s", ErrOriginNotAllowed, origin)
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:       a.codecs.Subprotocols(),
		OriginPatterns:     a.ws.originPatterns(),
		InsecureSkipVerify: a.ws.InsecureDevMode,
	})
	if err != nil {
		return nil, fmt.Errorf("accept websocket: %w", err)
	}

	codec := a.codecs.ForSubprotocol(conn.Subprotocol())
	a.logger.Debug("websocket accepted",
		logging.String("remote", r.RemoteAddr),
		logging.String("codec", codec.Name()),
	)
	return newWebSocketTransport(conn, codec, a.config, a.logger), nil
}

// Dial opens a client connection to a live endpoint using codec.
func Dial(ctx context.Context, rawURL string, codec protocol.Codec, config *Config, header http.Header) (*WebSocketTransport, error) {
	if codec == nil {
		codec = protocol.NewJSONCodec()
	}
	conn, _, err := websocket.Dial(ctx, rawURL, &websocket.DialOptions{
		HTTPHeader:   header,
		Subprotocols: []string{protocol.Subprotocol(codec)},
	})
	if err != nil {
		return nil, fmt.Errorf("dial websocket: %w", err)
	}
	return newWebSocketTransport(conn, codec, config, nil), nil
}

// Codec returns the negotiated codec.
func (t *WebSocketTransport) Codec() protocol.Codec {
	return t.codec
}

// IsConnected reports whether the connection is still open.
func (t *WebSocketTransport) IsConnected() bool {
	return t.connected.Load()
}

// Receive implements Transport.
func (t *WebSocketTransport) Receive() <-chan *protocol.Message {
	return t.recvCh
}

// Done implements Transport.
func (t *WebSocketTransport) Done() <-chan struct{} {
	return t.closeCh
}

// Send queues msg, waiting at most WriteTimeout for buffer space.
func (t *WebSocketTransport) Send(msg *protocol.Message) error {
	if !t.IsConnected() {
		return ErrNotConnected
	}

	timer := time.NewTimer(t.config.WriteTimeout)
	defer timer.Stop()

	select {
	case t.sendCh <- msg:
		return nil
	case <-t.closeCh:
		return ErrConnectionClosed
	case <-timer.C:
		return ErrSendTimeout
	}
}

// Close shuts the connection down. It is safe to call more than once.
func (t *WebSocketTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		t.connected.Store(false)
		close(t.closeCh)
		err = t.conn.Close(websocket.StatusNormalClosure, "")
		t.cancel()
	})
	return err
}

func (t *WebSocketTransport) frameType() websocket.MessageType {
	if t.codec.Binary() {
		return websocket.MessageBinary
	}
	return websocket.MessageText
}

func (t *WebSocketTransport) readLoop() {
	defer close(t.recvCh)
	defer t.Close()

	for {
		ctx, cancel := context.WithTimeout(t.ctx, t.config.ReadTimeout)
		_, data, err := t.conn.Read(ctx)
		cancel()

		if err != nil {
			if status := websocket.CloseStatus(err); status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				select {
				case <-t.closeCh:
				default:
					t.logger.Debug("websocket read ended", logging.Err(err))
				}
			}
			return
		}

		msg, err := t.codec.Decode(data)
		if err != nil {
			t.logger.Warn("dropping undecodable frame", logging.Err(err), logging.Int("bytes", len(data)))
			continue
		}

		select {
		case t.recvCh <- msg:
		case <-t.closeCh:
			return
		}
	}
}

func (t *WebSocketTransport) writeLoop() {
	for {
		select {
		case msg := <-t.sendCh:
			data, err := t.codec.Encode(msg)
			if err != nil {
				t.logger.Error("encoding frame", logging.Err(err), logging.Event(msg.Event))
				continue
			}

			ctx, cancel := context.WithTimeout(t.ctx, t.config.WriteTimeout)
			err = t.conn.Write(ctx, t.frameType(), data)
			cancel()

			if err != nil {
				t.Close()
				return
			}

		case <-t.closeCh:
			return
		}
	}
}

func (t *WebSocketTransport) pingLoop() {
	ticker := time.NewTicker(t.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(t.ctx, t.config.WriteTimeout)
			err := t.conn.Ping(ctx)
			cancel()
			if err != nil {
				t.Close()
				return
			}
		case <-t.closeCh:
			return
		}
	}
}
