package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec errors.
var (
	ErrInvalidMessage = errors.New("invalid message format")
	ErrUnknownCodec   = errors.New("unknown codec")
)

// SubprotocolPrefix namespaces the websocket subprotocol of each codec.
const SubprotocolPrefix = "docsite."

// Codec encodes and decodes protocol messages.
type Codec interface {
	Encode(msg *Message) ([]byte, error)
	Decode(data []byte) (*Message, error)

	// Name is the short codec name used in configuration.
	Name() string

	// Binary reports whether frames must be sent as binary messages.
	Binary() bool
}

// Subprotocol returns the websocket subprotocol that selects c.
func Subprotocol(c Codec) string {
	return SubprotocolPrefix + c.Name()
}

// JSONCodec encodes messages as JSON objects.
type JSONCodec struct{}

func NewJSONCodec() *JSONCodec { return &JSONCodec{} }

func (c *JSONCodec) Encode(msg *Message) ([]byte, error) {
	return json.Marshal(msg)
}

func (c *JSONCodec) Decode(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return &msg, nil
}

func (c *JSONCodec) Name() string { return "json" }
func (c *JSONCodec) Binary() bool { return false }

// MsgPackCodec encodes messages as MessagePack maps.
type MsgPackCodec struct{}

func NewMsgPackCodec() *MsgPackCodec { return &MsgPackCodec{} }

func (c *MsgPackCodec) Encode(msg *Message) ([]byte, error) {
	return msgpack.Marshal(msg)
}

func (c *MsgPackCodec) Decode(data []byte) (*Message, error) {
	var msg Message
	if err := msgpack.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return &msg, nil
}

func (c *MsgPackCodec) Name() string { return "msgpack" }
func (c *MsgPackCodec) Binary() bool { return true }

// PhoenixCodec implements the Phoenix channel tuple format:
// [join_ref, ref, topic, event, payload].
type PhoenixCodec struct{}

func NewPhoenixCodec() *PhoenixCodec { return &PhoenixCodec{} }

func (c *PhoenixCodec) Encode(msg *Message) ([]byte, error) {
	tuple := []any{
		nullable(msg.JoinRef),
		nullable(msg.Ref),
		msg.Topic,
		msg.Event,
		msg.Payload,
	}
	return json.Marshal(tuple)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (c *PhoenixCodec) Decode(data []byte) (*Message, error) {
	var tuple []json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if len(tuple) != 5 {
		return nil, ErrInvalidMessage
	}

	msg := &Message{}

	var joinRef, ref *string
	if err := json.Unmarshal(tuple[0], &joinRef); err == nil && joinRef != nil {
		msg.JoinRef = *joinRef
	}
	if err := json.Unmarshal(tuple[1], &ref); err == nil && ref != nil {
		msg.Ref = *ref
	}
	if err := json.Unmarshal(tuple[2], &msg.Topic); err != nil {
		return nil, fmt.Errorf("%w: topic: %v", ErrInvalidMessage, err)
	}
	if err := json.Unmarshal(tuple[3], &msg.Event); err != nil {
		return nil, fmt.Errorf("%w: event: %v", ErrInvalidMessage, err)
	}
	if err := json.Unmarshal(tuple[4], &msg.Payload); err != nil {
		msg.Payload = make(map[string]any)
	}

	return msg, nil
}

func (c *PhoenixCodec) Name() string { return "phoenix" }
func (c *PhoenixCodec) Binary() bool { return false }

// CodecRegistry looks codecs up by name or subprotocol.
type CodecRegistry struct {
	codecs      map[string]Codec
	defaultName string
	mu          sync.RWMutex
}

// NewCodecRegistry returns a registry holding the JSON, MessagePack and
// Phoenix codecs with JSON as the default.
func NewCodecRegistry() *CodecRegistry {
	r := &CodecRegistry{codecs: make(map[string]Codec)}
	r.Register(NewJSONCodec())
	r.Register(NewMsgPackCodec())
	r.Register(NewPhoenixCodec())
	r.defaultName = "json"
	return r
}

// Register adds or replaces a codec.
func (r *CodecRegistry) Register(codec Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[codec.Name()] = codec
}

// Get returns the codec registered under name.
func (r *CodecRegistry) Get(name string) (Codec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codecs[name]
	return c, ok
}

// Default returns the default codec.
func (r *CodecRegistry) Default() Codec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.codecs[r.defaultName]
}

// SetDefault selects the default codec by name.
func (r *CodecRegistry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.codecs[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
	r.defaultName = name
	return nil
}

// Subprotocols lists every codec's subprotocol, default first.
func (r *CodecRegistry) Subprotocols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.codecs))
	for name := range r.codecs {
		if name != r.defaultName {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := []string{SubprotocolPrefix + r.defaultName}
	for _, name := range names {
		out = append(out, SubprotocolPrefix+name)
	}
	return out
}

// ForSubprotocol returns the codec a negotiated subprotocol selects. An
// empty or unknown subprotocol selects the default.
func (r *CodecRegistry) ForSubprotocol(sub string) Codec {
	if name, ok := strings.CutPrefix(sub, SubprotocolPrefix); ok {
		if c, found := r.Get(name); found {
			return c
		}
	}
	return r.Default()
}
