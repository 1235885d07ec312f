package router

import (
	"github.com/actionhero/docsite/pkg/core"
	"github.com/actionhero/docsite/pkg/protocol"
	"github.com/actionhero/docsite/pkg/transport"
)

// transportAdapter lets a core.Socket push through a protocol transport.
type transportAdapter struct {
	t transport.Transport
}

func (a transportAdapter) Send(msg core.Message) error {
	return a.t.Send(&protocol.Message{
		Ref:     msg.Ref,
		Topic:   msg.Topic,
		Event:   msg.Event,
		Payload: msg.Payload,
	})
}

func (a transportAdapter) Close() error {
	return a.t.Close()
}

func (a transportAdapter) IsConnected() bool {
	return a.t.IsConnected()
}
