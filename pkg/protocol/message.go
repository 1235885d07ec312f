// Package protocol defines the live wire protocol between the browser and
// the docsite server.
package protocol

// Event names with protocol meaning. Everything else is an application
// event delivered to the component.
const (
	EventJoin      = "phx_join"
	EventLeave     = "phx_leave"
	EventReply     = "phx_reply"
	EventError     = "phx_error"
	EventHeartbeat = "heartbeat"
	EventDiff      = "diff"
)

// Reply statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// MessageType classifies a message by its event.
type MessageType uint8

const (
	MsgEvent MessageType = iota
	MsgJoin
	MsgLeave
	MsgReply
	MsgDiff
	MsgError
	MsgHeartbeat
)

func (mt MessageType) String() string {
	switch mt {
	case MsgJoin:
		return "join"
	case MsgLeave:
		return "leave"
	case MsgEvent:
		return "event"
	case MsgReply:
		return "reply"
	case MsgDiff:
		return "diff"
	case MsgError:
		return "error"
	case MsgHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

// Message is one frame of the live protocol.
type Message struct {
	// Ref correlates a reply with its request.
	Ref string `json:"ref,omitempty" msgpack:"ref,omitempty"`

	// JoinRef is the ref of the join that opened the channel.
	JoinRef string `json:"join_ref,omitempty" msgpack:"join_ref,omitempty"`

	// Topic is the channel, "lv:<socket id>" once joined.
	Topic string `json:"topic" msgpack:"topic"`

	Event   string         `json:"event" msgpack:"event"`
	Payload map[string]any `json:"payload,omitempty" msgpack:"payload,omitempty"`
}

// Type classifies the message by its event name.
func (m *Message) Type() MessageType {
	switch m.Event {
	case EventJoin:
		return MsgJoin
	case EventLeave:
		return MsgLeave
	case EventReply:
		return MsgReply
	case EventError:
		return MsgError
	case EventHeartbeat:
		return MsgHeartbeat
	case EventDiff:
		return MsgDiff
	default:
		return MsgEvent
	}
}

// GetPayloadString returns a string payload value or "".
func (m *Message) GetPayloadString(key string) string {
	if m.Payload == nil {
		return ""
	}
	if v, ok := m.Payload[key].(string); ok {
		return v
	}
	return ""
}

// GetPayloadMap returns a nested map payload value or nil.
func (m *Message) GetPayloadMap(key string) map[string]any {
	if m.Payload == nil {
		return nil
	}
	if v, ok := m.Payload[key].(map[string]any); ok {
		return v
	}
	return nil
}

// ReplyMessage creates a phx_reply for ref.
func ReplyMessage(ref, topic, status string, response map[string]any) *Message {
	if response == nil {
		response = map[string]any{}
	}
	return &Message{
		Ref:   ref,
		Topic: topic,
		Event: EventReply,
		Payload: map[string]any{
			"status":   status,
			"response": response,
		},
	}
}

// OkReply creates a successful reply.
func OkReply(ref, topic string, response map[string]any) *Message {
	return ReplyMessage(ref, topic, StatusOK, response)
}

// ErrorReply creates a failed reply carrying reason.
func ErrorReply(ref, topic, reason string) *Message {
	return ReplyMessage(ref, topic, StatusError, map[string]any{"reason": reason})
}

// JoinMessage creates a join request carrying the page params.
func JoinMessage(ref, topic string, params map[string]any) *Message {
	return &Message{Ref: ref, JoinRef: ref, Topic: topic, Event: EventJoin, Payload: params}
}

// EventMessage creates an application event.
func EventMessage(ref, topic, event string, payload map[string]any) *Message {
	return &Message{Ref: ref, Topic: topic, Event: event, Payload: payload}
}

// HeartbeatMessage creates a keepalive.
func HeartbeatMessage(ref string) *Message {
	return &Message{Ref: ref, Topic: "phoenix", Event: EventHeartbeat}
}
