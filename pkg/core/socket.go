package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Socket errors.
var (
	ErrSocketClosed = errors.New("socket is closed")
	ErrSendFailed   = errors.New("failed to send message")
)

// DiffEvent is the push carrying changed slots.
const DiffEvent = "diff"

// Transport is what a Socket writes to.
type Transport interface {
	Send(msg Message) error
	Close() error
	IsConnected() bool
}

// Message is a server push.
type Message struct {
	Ref     string         `json:"ref,omitempty"`
	Topic   string         `json:"topic"`
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Socket is one live connection to a browser tab.
type Socket struct {
	id string

	// Unix nanoseconds of the last send or receive.
	lastActivity atomic.Int64

	mu        sync.RWMutex
	connected bool
	transport Transport
}

// NewSocket creates a connected socket writing to transport.
func NewSocket(id string, transport Transport) *Socket {
	s := &Socket{id: id, connected: true, transport: transport}
	s.UpdateActivity()
	return s
}

func (s *Socket) ID() string {
	return s.id
}

// Topic is the channel pushes are addressed to.
func (s *Socket) Topic() string {
	return "lv:" + s.id
}

func (s *Socket) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected && s.transport != nil && s.transport.IsConnected()
}

// LastActivity is when the socket last sent or received.
func (s *Socket) LastActivity() time.Time {
	return time.Unix(0, s.lastActivity.Load())
}

// UpdateActivity marks the socket active now.
func (s *Socket) UpdateActivity() {
	s.lastActivity.Store(time.Now().UnixNano())
}

// Send writes msg to the transport.
func (s *Socket) Send(msg Message) error {
	s.mu.RLock()
	connected, transport := s.connected, s.transport
	s.mu.RUnlock()

	if !connected || transport == nil || !transport.IsConnected() {
		return ErrSocketClosed
	}
	s.UpdateActivity()

	if err := transport.Send(msg); err != nil {
		if !s.IsConnected() {
			return ErrSocketClosed
		}
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return nil
}

// Push sends event on the socket's topic.
func (s *Socket) Push(event string, payload map[string]any) error {
	return s.Send(Message{Topic: s.Topic(), Event: event, Payload: payload})
}

// DiffPayload lists the slots that changed since the previous render:
// plain-text slots (s), markup slots (h), or the whole render (f) when the
// page has no slots.
type DiffPayload struct {
	Version   uint64            `json:"v"`
	Slots     map[string]string `json:"s,omitempty"`
	HTMLSlots map[string]string `json:"h,omitempty"`
	Full      string            `json:"f,omitempty"`
}

// IsEmpty reports whether nothing changed.
func (d *DiffPayload) IsEmpty() bool {
	return len(d.Slots) == 0 && len(d.HTMLSlots) == 0 && d.Full == ""
}

// SendDiff pushes d unless it is empty.
func (s *Socket) SendDiff(d *DiffPayload) error {
	if d == nil || d.IsEmpty() {
		return nil
	}
	return s.Push(DiffEvent, map[string]any{
		"v": d.Version,
		"s": d.Slots,
		"h": d.HTMLSlots,
		"f": d.Full,
	})
}

// Close marks the socket closed and closes its transport.
func (s *Socket) Close() error {
	s.mu.Lock()
	s.connected = false
	transport := s.transport
	s.mu.Unlock()

	if transport != nil {
		return transport.Close()
	}
	return nil
}

// SocketManager tracks open sockets and refuses new ones after Shutdown.
type SocketManager struct {
	mu         sync.RWMutex
	sockets    map[string]*Socket
	isShutdown bool
}

func NewSocketManager() *SocketManager {
	return &SocketManager{sockets: make(map[string]*Socket)}
}

func (sm *SocketManager) Add(socket *Socket) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sockets[socket.ID()] = socket
}

func (sm *SocketManager) Remove(id string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sockets, id)
}

func (sm *SocketManager) Get(id string) (*Socket, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	s, ok := sm.sockets[id]
	return s, ok
}

func (sm *SocketManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sockets)
}

// Shutdown closes every socket. It stops early with ctx.Err() if ctx
// ends first. Later calls do nothing.
func (sm *SocketManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	if sm.isShutdown {
		sm.mu.Unlock()
		return nil
	}
	sm.isShutdown = true
	sockets := make([]*Socket, 0, len(sm.sockets))
	for _, s := range sm.sockets {
		sockets = append(sockets, s)
	}
	sm.sockets = make(map[string]*Socket)
	sm.mu.Unlock()

	for _, s := range sockets {
		if err := ctx.Err(); err != nil {
			return err
		}
		_ = s.Close()
	}
	return nil
}

// IsShutdown reports whether Shutdown has been called.
func (sm *SocketManager) IsShutdown() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.isShutdown
}
