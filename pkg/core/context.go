package core

import "context"

type liveKey struct{}

// live is what a component can recover from its context.
type live struct {
	socket  *Socket
	session Session
	params  Params
}

// BuildContext attaches socket, session and params to ctx. socket is nil
// for an HTTP render.
func BuildContext(ctx context.Context, socket *Socket, session Session, params Params) context.Context {
	return context.WithValue(ctx, liveKey{}, live{socket: socket, session: session, params: params})
}

func fromContext(ctx context.Context) live {
	l, _ := ctx.Value(liveKey{}).(live)
	return l
}

// SocketFromContext returns the live socket, or nil outside a session.
func SocketFromContext(ctx context.Context) *Socket {
	return fromContext(ctx).socket
}

// SessionFromContext returns the visitor session.
func SessionFromContext(ctx context.Context) Session {
	return fromContext(ctx).session
}

// ParamsFromContext returns the mount params.
func ParamsFromContext(ctx context.Context) Params {
	return fromContext(ctx).params
}
